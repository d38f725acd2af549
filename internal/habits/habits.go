// Package habits flags repetitive tendencies in a single analyzed match:
// predictable recoveries, post-respawn panic, one-dimensional kill confirms
// and the like. Everything is computed locally from the timeline.
package habits

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/units"
)

// Severity ranks how urgently a habit deserves attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityNotable  Severity = "notable"
	SeverityInfo     Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityNotable:  1,
	SeverityInfo:     2,
}

// Habit is one detected tendency with the evidence behind it and a
// concrete suggestion for breaking it.
type Habit struct {
	Type        string   `json:"habit_type"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Severity    Severity `json:"severity"`
	Occurrences int      `json:"occurrences"`
	Suggestion  string   `json:"suggestion"`
}

// Report is the full habit readout for one match.
type Report struct {
	Habits  []Habit `json:"habits"`
	Summary string  `json:"summary"`
}

// Detect scans tl for repeated tendencies. Habits come back ordered most
// severe first.
func Detect(tl *match.Timeline) *Report {
	habits := []Habit{}
	habits = append(habits, detectRecovery(tl)...)
	habits = append(habits, detectPostDeathPanic(tl)...)
	habits = append(habits, detectKillFishing(tl)...)
	habits = append(habits, detectNeutralTendency(tl)...)
	habits = append(habits, detectDamageTrading(tl)...)
	habits = append(habits, detectEarlyDeaths(tl)...)

	sort.SliceStable(habits, func(i, j int) bool {
		return rank(habits[i].Severity) < rank(habits[j].Severity)
	})

	return &Report{
		Habits:  habits,
		Summary: buildSummary(habits),
	}
}

func rank(s Severity) int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return 2
}

// detectRecovery covers two recovery tells: getting edgeguarded over and
// over, and dying inside a narrow percent band.
func detectRecovery(tl *match.Timeline) []Habit {
	var habits []Habit

	if n := len(tl.GotEdgeguarded); n >= 2 {
		avg := 0.0
		for _, eg := range tl.GotEdgeguarded {
			avg += eg.VictimPercent
		}
		avg /= float64(n)

		severity := SeverityNotable
		if n >= 3 {
			severity = SeverityCritical
		}
		habits = append(habits, Habit{
			Type:        "recovery_predictable",
			Description: "Predictable recovery pattern",
			Evidence: fmt.Sprintf(
				"Got edgeguarded %d times (avg death at %s). Opponent is reading your recovery options.",
				n, units.FormatPercent(avg)),
			Severity:    severity,
			Occurrences: n,
			Suggestion: "Mix up recovery timing: sometimes go high, sometimes low, " +
				"delay your double jump, or drift to ledge vs. stage. " +
				"Don't always recover the same way.",
		})
	}

	if len(tl.StockLosses) >= 3 {
		var percents []float64
		for _, sl := range tl.StockLosses {
			if sl.Percent > 0 {
				percents = append(percents, sl.Percent)
			}
		}
		if len(percents) >= 3 {
			spread := stat.StdDev(percents, nil)
			avg := stat.Mean(percents, nil)
			if spread < 20 && avg < 120 {
				habits = append(habits, Habit{
					Type:        "consistent_death_range",
					Description: "Dying in a narrow percent range",
					Evidence: fmt.Sprintf(
						"Lost %d stocks all around %s (spread: %s). This suggests the opponent is reliably converting in the same situation.",
						len(percents), units.FormatPercent(avg), units.FormatPercent(spread)),
					Severity:    SeverityNotable,
					Occurrences: len(percents),
					Suggestion: "Vary your DI and defensive options at this percent range. " +
						"If you always DI the same way or pick the same escape option, " +
						"the opponent will keep converting.",
				})
			}
		}
	}

	return habits
}

func detectPostDeathPanic(tl *match.Timeline) []Habit {
	if len(tl.AfterDeath) == 0 {
		return nil
	}

	var panicDamage []float64
	for _, w := range tl.AfterDeath {
		if w.Behavior == match.BehaviorPanic {
			panicDamage = append(panicDamage, w.DamageTaken)
		}
	}
	if len(panicDamage) < 2 {
		return nil
	}

	severity := SeverityNotable
	if len(panicDamage) >= 3 {
		severity = SeverityCritical
	}
	return []Habit{{
		Type:        "post_death_panic",
		Description: "Taking heavy damage after respawning",
		Evidence: fmt.Sprintf(
			"In %d of %d respawns, you took an average of %s damage within 5 seconds. This suggests rushing in or panicking after losing a stock.",
			len(panicDamage), len(tl.AfterDeath), units.FormatPercent(stat.Mean(panicDamage, nil))),
		Severity:    severity,
		Occurrences: len(panicDamage),
		Suggestion: "After respawning, use your invincibility frames wisely. " +
			"Take a moment to assess, then re-engage safely. " +
			"Don't dash-attack or approach recklessly out of frustration.",
	}}
}

// detectKillFishing flags a tight cluster of kill percents, which usually
// means the player leans on a single kill setup.
func detectKillFishing(tl *match.Timeline) []Habit {
	if len(tl.Kills) < 3 {
		return nil
	}

	var percents []float64
	for _, k := range tl.Kills {
		if k.OpponentPercent > 0 {
			percents = append(percents, k.OpponentPercent)
		}
	}
	if len(percents) < 3 {
		return nil
	}

	spread := stat.StdDev(percents, nil)
	if spread >= 15 {
		return nil
	}

	return []Habit{{
		Type:        "kill_fishing",
		Description: "One-dimensional kill confirms",
		Evidence: fmt.Sprintf(
			"All %d kills were around %s (spread: %s). This suggests relying on a single kill setup.",
			len(percents), units.FormatPercent(stat.Mean(percents, nil)), units.FormatPercent(spread)),
		Severity:    SeverityNotable,
		Occurrences: len(percents),
		Suggestion: "Diversify your kill options. Practice different kill confirms " +
			"at various percents (edge traps, raw smash attacks, aerials, " +
			"edgeguards) to become less predictable.",
	}}
}

// detectNeutralTendency reads the balance of hits landed vs taken, plus
// overall momentum churn.
func detectNeutralTendency(tl *match.Timeline) []Habit {
	var habits []Habit

	dealt := len(tl.DamageDealt)
	taken := len(tl.DamageSpikes)

	if dealt+taken >= 4 {
		den := taken
		if den < 1 {
			den = 1
		}
		ratio := float64(dealt) / float64(den)

		if ratio < 0.5 && taken >= 4 {
			severity := SeverityInfo
			if taken >= 5 {
				severity = SeverityNotable
			}
			habits = append(habits, Habit{
				Type:        "passive_neutral",
				Description: "Passive neutral: taking more hits than landing",
				Evidence: fmt.Sprintf(
					"Landed %d significant hits but took %d damage spikes. Opponents are consistently winning neutral.",
					dealt, taken),
				Severity:    severity,
				Occurrences: taken,
				Suggestion: "Work on spacing and approach timing. Use safe pokes " +
					"to test the opponent's reactions before committing. " +
					"Don't just wait; use movement to create openings.",
			})
		} else if ratio > 2.5 && dealt >= 5 {
			habits = append(habits, Habit{
				Type:        "overaggressive_neutral",
				Description: "Very aggressive neutral: may be overcommitting",
				Evidence: fmt.Sprintf(
					"Landed %d hits vs %d taken. While winning neutral, heavy aggression can become predictable.",
					dealt, taken),
				Severity:    SeverityInfo,
				Occurrences: dealt,
				Suggestion: "Great neutral pressure, but check if you're getting punished " +
					"for overextending. Mix in some bait-and-punish play to keep " +
					"the opponent guessing.",
			})
		}
	}

	adv, dis := 0, 0
	for _, m := range tl.MomentumSwings {
		switch m.Type {
		case match.SwingAdvantage:
			adv++
		case match.SwingDisadvantage:
			dis++
		}
	}
	if adv >= 2 && dis >= 2 && adv+dis >= 5 {
		habits = append(habits, Habit{
			Type:        "momentum_volatile",
			Description: "Volatile momentum: frequent advantage/disadvantage swaps",
			Evidence: fmt.Sprintf(
				"%d momentum swings detected. The match had rapid back-and-forth exchanges.",
				adv+dis),
			Severity:    SeverityInfo,
			Occurrences: adv + dis,
			Suggestion: "Focus on maintaining advantage state longer. " +
				"After winning neutral, keep stage control and pursue " +
				"safe follow-ups instead of resetting to neutral.",
		})
	}

	return habits
}

// detectDamageTrading counts momentum reversals that land within 3 seconds
// of the previous swing.
func detectDamageTrading(tl *match.Timeline) []Habit {
	swings := tl.MomentumSwings
	if len(swings) < 4 {
		return nil
	}

	trades := 0
	for i := 1; i < len(swings); i++ {
		gap := swings[i].Timestamp - swings[i-1].Timestamp
		if swings[i].Type != swings[i-1].Type && gap < 3 {
			trades++
		}
	}
	if trades < 3 {
		return nil
	}

	severity := SeverityInfo
	if trades >= 4 {
		severity = SeverityNotable
	}
	return []Habit{{
		Type:        "damage_trading",
		Description: "Frequent damage trades",
		Evidence: fmt.Sprintf(
			"%d rapid momentum reversals detected. You're frequently trading hits instead of securing clean openings.",
			trades),
		Severity:    severity,
		Occurrences: trades,
		Suggestion: "After landing a hit, focus on safe follow-ups rather than " +
			"going for another immediate aggressive option. " +
			"Trading damage favors the opponent when they're at lower percent.",
	}}
}

// detectEarlyDeaths infers DI or positioning problems from non-fatal stocks
// lost below 80%.
func detectEarlyDeaths(tl *match.Timeline) []Habit {
	if len(tl.StockLosses) < 2 {
		return nil
	}

	var percents []float64
	for _, sl := range tl.StockLosses {
		if sl.Percent > 0 && sl.Percent < 80 && sl.StocksRemaining > 0 {
			percents = append(percents, sl.Percent)
		}
	}
	if len(percents) < 2 {
		return nil
	}

	severity := SeverityNotable
	if len(percents) >= 3 {
		severity = SeverityCritical
	}
	return []Habit{{
		Type:        "early_deaths",
		Description: "Dying at low percent: possible DI or positioning issue",
		Evidence: fmt.Sprintf(
			"Lost %d stocks below 80%% (avg: %s). This can indicate poor DI, bad recovery habits, or getting caught by kill setups.",
			len(percents), units.FormatPercent(stat.Mean(percents, nil))),
		Severity:    severity,
		Occurrences: len(percents),
		Suggestion: "Practice survival DI (hold away from the blast zone). " +
			"At these percents, you should be surviving most hits. " +
			"Review what killed you and practice the correct DI for those moves.",
	}}
}

func buildSummary(habits []Habit) string {
	if len(habits) == 0 {
		return "No significant habits detected in this match."
	}

	var critical, notable []string
	for _, h := range habits {
		switch h.Severity {
		case SeverityCritical:
			critical = append(critical, strings.ToLower(h.Description))
		case SeverityNotable:
			notable = append(notable, strings.ToLower(h.Description))
		}
	}

	var parts []string
	if len(critical) > 0 {
		parts = append(parts, fmt.Sprintf("%d critical habit%s found: %s.",
			len(critical), plural(len(critical)), strings.Join(critical, ", ")))
	}
	if len(notable) > 0 {
		parts = append(parts, fmt.Sprintf("%d notable pattern%s: %s.",
			len(notable), plural(len(notable)), strings.Join(notable, ", ")))
	}
	if len(parts) == 0 {
		return "Minor tendencies detected; keep playing to build a clearer picture."
	}
	return strings.Join(parts, " ")
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
