// Package skill estimates a player's skill tier from a single analyzed
// match. Eight metrics are read off the timeline, each mapped onto a 0-100
// score through piecewise-linear anchor curves, then combined into a
// weighted overall score with strengths and weaknesses.
package skill

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ringside-data/stock.report/internal/match"
)

// Tier buckets the weighted overall score.
type Tier string

const (
	TierTop  Tier = "top"
	TierHigh Tier = "high"
	TierMid  Tier = "mid"
	TierLow  Tier = "low"
)

// Metric is one scored skill dimension. Raw carries the measured value the
// score was derived from (damage, percent, seconds or a rate, depending on
// the metric).
type Metric struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Raw   float64 `json:"raw"`
	Score float64 `json:"score"`
}

// Profile is the full skill estimate for one match.
type Profile struct {
	Tier         Tier     `json:"tier"`
	OverallScore float64  `json:"overall_score"`
	Confidence   float64  `json:"confidence"`
	Metrics      []Metric `json:"metrics"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
}

type metricDef struct {
	name   string
	label  string
	weight float64
	score  func(float64) float64
}

// metricDefs fixes the metric order and weights. Weights sum to 1.
var metricDefs = []metricDef{
	{"damage_per_opening", "Damage Per Opening", 0.18, scoreDamagePerOpening},
	{"kill_efficiency", "Kill Efficiency", 0.15, scoreKillEfficiency},
	{"edgeguard_rate", "Edgeguard Rate", 0.10, scoreEdgeguardRate},
	{"death_percent", "Survival / Death Percent", 0.15, scoreDeathPercent},
	{"post_death_vulnerability", "Post-Death Composure", 0.10, scorePostDeathVulnerability},
	{"combo_quality", "Combo Quality", 0.12, scoreComboQuality},
	{"neutral_duration", "Neutral Pacing", 0.08, scoreNeutralDuration},
	{"lead_conversion", "Lead Conversion", 0.12, scoreLeadConversion},
}

// Estimate scores the analyzed player's performance on tl.
func Estimate(tl *match.Timeline) *Profile {
	raw := rawMetrics(tl)

	metrics := make([]Metric, 0, len(metricDefs))
	overall := 0.0
	for _, def := range metricDefs {
		score := round1(def.score(raw[def.name]))
		metrics = append(metrics, Metric{
			Name:  def.name,
			Label: def.label,
			Raw:   round2(raw[def.name]),
			Score: score,
		})
		overall += score * def.weight
	}

	tier := TierLow
	switch {
	case overall >= 70:
		tier = TierTop
	case overall >= 50:
		tier = TierHigh
	case overall >= 28:
		tier = TierMid
	}

	// Confidence grows with the amount of evidence: a dozen events is a
	// full read, fewer than three is barely a guess.
	nEvents := len(tl.Kills) + len(tl.StockLosses) + len(tl.Combos) +
		len(tl.DamageDealt) + len(tl.Edgeguards)
	confidence := math.Min(1.0, math.Max(0.2, float64(nEvents)/12))

	ranked := append([]Metric(nil), metrics...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	strengths := []string{}
	for _, m := range ranked[:3] {
		if m.Score >= 45 {
			strengths = append(strengths, m.Label)
		}
	}
	weaknesses := []string{}
	for _, m := range ranked[len(ranked)-3:] {
		if m.Score < 55 {
			weaknesses = append(weaknesses, m.Label)
		}
	}

	return &Profile{
		Tier:         tier,
		OverallScore: round1(overall),
		Confidence:   round2(confidence),
		Metrics:      metrics,
		Strengths:    strengths,
		Weaknesses:   weaknesses,
	}
}

// rawMetrics reads the measured metric inputs off the timeline. Metrics
// with no supporting events fall back to neutral mid-range defaults rather
// than rewarding or punishing missing data.
func rawMetrics(tl *match.Timeline) map[string]float64 {
	raw := make(map[string]float64, len(metricDefs))

	if n := len(tl.DamageDealt); n > 0 {
		xs := make([]float64, n)
		for i, e := range tl.DamageDealt {
			xs[i] = e.Damage
		}
		raw["damage_per_opening"] = stat.Mean(xs, nil)
	} else {
		raw["damage_per_opening"] = 0
	}

	var killPcts []float64
	for _, k := range tl.Kills {
		if k.OpponentPercent > 0 {
			killPcts = append(killPcts, k.OpponentPercent)
		}
	}
	if len(killPcts) > 0 {
		raw["kill_efficiency"] = stat.Mean(killPcts, nil)
	} else {
		raw["kill_efficiency"] = 150
	}

	totalKills := len(tl.Kills)
	if totalKills == 0 {
		totalKills = 1
	}
	raw["edgeguard_rate"] = float64(len(tl.Edgeguards)) / float64(totalKills)

	var deathPcts []float64
	for _, sl := range tl.StockLosses {
		if sl.Percent > 0 {
			deathPcts = append(deathPcts, sl.Percent)
		}
	}
	if len(deathPcts) > 0 {
		raw["death_percent"] = stat.Mean(deathPcts, nil)
	} else {
		raw["death_percent"] = 80
	}

	if n := len(tl.AfterDeath); n > 0 {
		xs := make([]float64, n)
		for i, w := range tl.AfterDeath {
			xs[i] = w.DamageTaken
		}
		raw["post_death_vulnerability"] = stat.Mean(xs, nil)
	} else {
		raw["post_death_vulnerability"] = 25
	}

	if n := len(tl.Combos); n > 0 {
		xs := make([]float64, n)
		for i, c := range tl.Combos {
			xs[i] = c.Damage
		}
		raw["combo_quality"] = stat.Mean(xs, nil)
	} else {
		raw["combo_quality"] = 0
	}

	if n := len(tl.NeutralPhases); n > 0 {
		xs := make([]float64, n)
		for i, p := range tl.NeutralPhases {
			xs[i] = p.Duration
		}
		raw["neutral_duration"] = stat.Mean(xs, nil)
	} else {
		raw["neutral_duration"] = 8
	}

	raw["lead_conversion"] = leadConversion(tl)

	return raw
}

// leadConversion walks the stock differential through kills (+1) and
// losses (-1) and measures how often a held lead survived the next stock
// event. Too little data reads as a neutral 0.5.
func leadConversion(tl *match.Timeline) float64 {
	type stockEvent struct {
		ts    float64
		delta int
	}
	events := make([]stockEvent, 0, len(tl.Kills)+len(tl.StockLosses))
	for _, k := range tl.Kills {
		events = append(events, stockEvent{k.Timestamp, +1})
	}
	for _, sl := range tl.StockLosses {
		events = append(events, stockEvent{sl.Timestamp, -1})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].ts < events[j].ts })

	if len(events) < 2 {
		return 0.5
	}

	differential := 0
	leadMoments := 0
	leadHeld := 0
	for _, e := range events {
		wasAhead := differential > 0
		differential += e.delta
		if wasAhead {
			leadMoments++
			if differential > 0 {
				leadHeld++
			}
		}
	}

	if leadMoments == 0 {
		return 0.5
	}
	return float64(leadHeld) / float64(leadMoments)
}

// lerp maps value from [lo, hi] into [0, 1], clamped.
func lerp(value, lo, hi float64) float64 {
	if hi <= lo {
		if value >= lo {
			return 1
		}
		return 0
	}
	return math.Max(0, math.Min(1, (value-lo)/(hi-lo)))
}

// Anchors: ~10 low, ~20 mid, ~32 high, ~45 top.
func scoreDamagePerOpening(avg float64) float64 {
	switch {
	case avg <= 5:
		return lerp(avg, 0, 5) * 15
	case avg <= 15:
		return 15 + lerp(avg, 5, 15)*20
	case avg <= 25:
		return 35 + lerp(avg, 15, 25)*20
	case avg <= 40:
		return 55 + lerp(avg, 25, 40)*25
	default:
		return 80 + lerp(avg, 40, 55)*20
	}
}

// Lower kill percent means stocks closed earlier. Anchors: ~70% top,
// ~90% high, ~115% mid, 145%+ low.
func scoreKillEfficiency(avgKillPercent float64) float64 {
	switch {
	case avgKillPercent >= 160:
		return lerp(160-avgKillPercent, 0, 20) * 10
	case avgKillPercent >= 130:
		return 10 + lerp(160-avgKillPercent, 0, 30)*20
	case avgKillPercent >= 100:
		return 30 + lerp(130-avgKillPercent, 0, 30)*25
	case avgKillPercent >= 80:
		return 55 + lerp(100-avgKillPercent, 0, 20)*25
	default:
		return 80 + lerp(80-avgKillPercent, 0, 20)*20
	}
}

// Anchors: 0 low, 0.10 mid, 0.20 high, 0.35+ top.
func scoreEdgeguardRate(rate float64) float64 {
	switch {
	case rate <= 0:
		return 0
	case rate <= 0.10:
		return lerp(rate, 0, 0.10) * 30
	case rate <= 0.20:
		return 30 + lerp(rate, 0.10, 0.20)*25
	case rate <= 0.35:
		return 55 + lerp(rate, 0.20, 0.35)*25
	default:
		return 80 + lerp(rate, 0.35, 0.50)*20
	}
}

// Higher average death percent means better survival. Anchors: <80 low,
// 80-110 mid, 110-140 high, 140+ top.
func scoreDeathPercent(avgDeath float64) float64 {
	switch {
	case avgDeath < 50:
		return lerp(avgDeath, 0, 50) * 10
	case avgDeath < 80:
		return 10 + lerp(avgDeath, 50, 80)*20
	case avgDeath < 110:
		return 30 + lerp(avgDeath, 80, 110)*25
	case avgDeath < 140:
		return 55 + lerp(avgDeath, 110, 140)*25
	default:
		return 80 + lerp(avgDeath, 140, 170)*20
	}
}

// Lower damage taken right after a respawn means better composure.
// Anchors: <10 top, 10-20 high, 20-35 mid, 35+ low.
func scorePostDeathVulnerability(avgDamageAfter float64) float64 {
	switch {
	case avgDamageAfter >= 45:
		return 5
	case avgDamageAfter >= 35:
		return 5 + lerp(45-avgDamageAfter, 0, 10)*15
	case avgDamageAfter >= 20:
		return 20 + lerp(35-avgDamageAfter, 0, 15)*30
	case avgDamageAfter >= 10:
		return 50 + lerp(20-avgDamageAfter, 0, 10)*25
	default:
		return 75 + lerp(10-avgDamageAfter, 0, 10)*25
	}
}

// Anchors: <20 low, 20-35 mid, 35-50 high, 50+ top.
func scoreComboQuality(avgComboDamage float64) float64 {
	switch {
	case avgComboDamage < 10:
		return lerp(avgComboDamage, 0, 10) * 10
	case avgComboDamage < 20:
		return 10 + lerp(avgComboDamage, 10, 20)*20
	case avgComboDamage < 35:
		return 30 + lerp(avgComboDamage, 20, 35)*25
	case avgComboDamage < 50:
		return 55 + lerp(avgComboDamage, 35, 50)*25
	default:
		return 80 + lerp(avgComboDamage, 50, 70)*20
	}
}

// Moderate neutral is healthy, excessive neutral reads as passive. Very
// short neutral is likely aggression but stays slightly ambiguous.
// Anchors: 2-4s top, 4-6s high, 6-10s mid, 10s+ low.
func scoreNeutralDuration(avgNeutral float64) float64 {
	switch {
	case avgNeutral >= 12:
		return 10
	case avgNeutral >= 10:
		return 10 + lerp(12-avgNeutral, 0, 2)*15
	case avgNeutral >= 6:
		return 25 + lerp(10-avgNeutral, 0, 4)*30
	case avgNeutral >= 4:
		return 55 + lerp(6-avgNeutral, 0, 2)*25
	case avgNeutral >= 2:
		return 80 + lerp(4-avgNeutral, 0, 2)*15
	default:
		return 90
	}
}

// Anchors: 0.3 low, 0.5 mid, 0.7 high, 0.85+ top.
func scoreLeadConversion(rate float64) float64 {
	return lerp(rate, 0.2, 0.9) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
