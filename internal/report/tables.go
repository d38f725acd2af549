package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ringside-data/stock.report/internal/habits"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/skill"
	"github.com/ringside-data/stock.report/internal/units"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// PrintSummary prints the one-line match header.
func PrintSummary(w io.Writer, meta Meta, stats match.Stats) {
	fmt.Fprintf(w, "\nMatch: %s  |  %s vs %s  |  Winner: %s  |  Duration: %s  |  Stocks left: %s / %s\n\n",
		meta.MatchID,
		meta.PlayerLabel(match.P1), meta.PlayerLabel(match.P2),
		winnerLabel(stats),
		units.FormatClock(stats.Duration),
		units.FormatStocksPtr(stats.P1FinalStocks), units.FormatStocksPtr(stats.P2FinalStocks))
}

func winnerLabel(stats match.Stats) string {
	if stats.Winner == match.WinnerUnknown {
		return "unknown"
	}
	if stats.WinnerVia == "" {
		return string(stats.Winner)
	}
	return fmt.Sprintf("%s via %s", stats.Winner, stats.WinnerVia)
}

// PrintEvents prints every reconstructed event in match-clock order.
func PrintEvents(w io.Writer, tl *match.Timeline) {
	table := newTable(w)
	table.Header("CLOCK", "EVENT", "PLAYER", "DETAIL")

	for _, e := range tl.Events() {
		table.Append(
			units.FormatClock(e.When()-tl.MatchStart),
			string(e.Kind()),
			eventPlayer(e),
			eventDetail(e),
		)
	}
	table.Render()
}

func eventPlayer(e match.Event) string {
	switch ev := e.(type) {
	case match.StockLossEvent:
		return string(ev.Player)
	case match.KillEvent:
		return string(match.P2)
	case match.DamageSpikeEvent:
		return string(ev.Player)
	case match.DamageDealtEvent:
		return string(ev.Player)
	case match.EdgeguardEvent:
		return string(ev.Victim)
	default:
		return "-"
	}
}

func eventDetail(e match.Event) string {
	switch ev := e.(type) {
	case match.StockLossEvent:
		detail := fmt.Sprintf("died at %s, %s left", units.FormatPercent(ev.Percent), units.FormatStocks(ev.StocksRemaining))
		if ev.GameEnder {
			detail += " (game)"
		}
		return detail
	case match.KillEvent:
		detail := fmt.Sprintf("opponent died at %s, %s left", units.FormatPercent(ev.OpponentPercent), units.FormatStocks(ev.OpponentStocksRemaining))
		if ev.GameWinner {
			detail += " (game)"
		}
		return detail
	case match.DamageSpikeEvent:
		return fmt.Sprintf("took %s (%s to %s)", units.FormatPercent(ev.Damage), units.FormatPercent(ev.FromPercent), units.FormatPercent(ev.ToPercent))
	case match.DamageDealtEvent:
		return fmt.Sprintf("dealt %s (%s to %s)", units.FormatPercent(ev.Damage), units.FormatPercent(ev.FromPercent), units.FormatPercent(ev.ToPercent))
	case match.ComboEvent:
		return fmt.Sprintf("%d hits for %s over %s", ev.HitCount, units.FormatPercent(ev.Damage), units.FormatSeconds(ev.End-ev.Start))
	case match.EdgeguardEvent:
		detail := fmt.Sprintf("victim at %s, score %d", units.FormatPercent(ev.VictimPercent), ev.Score)
		if ev.Confident {
			detail += " (confident)"
		}
		return detail
	case match.MomentumSwingEvent:
		return fmt.Sprintf("%s swing, dealt %s taken %s", ev.Type, units.FormatPercent(ev.DamageDealt), units.FormatPercent(ev.DamageTaken))
	case match.NeutralPhaseEvent:
		return fmt.Sprintf("no exchanges for %s", units.FormatSeconds(ev.Duration))
	default:
		return ""
	}
}

// PrintSkill prints the metric table followed by the tier line and
// strength/weakness callouts.
func PrintSkill(w io.Writer, p *skill.Profile) {
	table := newTable(w)
	table.Header("METRIC", "RAW", "SCORE")
	for _, m := range p.Metrics {
		table.Append(m.Label, fmt.Sprintf("%.2f", m.Raw), fmt.Sprintf("%.1f", m.Score))
	}
	table.Render()

	fmt.Fprintf(w, "\nTier: %s  |  Overall: %.1f  |  Confidence: %.2f\n", p.Tier, p.OverallScore, p.Confidence)
	if len(p.Strengths) > 0 {
		fmt.Fprintf(w, "Strengths:  %s\n", strings.Join(p.Strengths, ", "))
	}
	if len(p.Weaknesses) > 0 {
		fmt.Fprintf(w, "Weaknesses: %s\n", strings.Join(p.Weaknesses, ", "))
	}
}

// PrintHabits prints detected habits with their evidence, then the
// summary sentence.
func PrintHabits(w io.Writer, r *habits.Report) {
	if len(r.Habits) > 0 {
		table := newTable(w)
		table.Header("SEVERITY", "HABIT", "N", "EVIDENCE")
		for _, h := range r.Habits {
			table.Append(string(h.Severity), h.Description, strconv.Itoa(h.Occurrences), h.Evidence)
		}
		table.Render()
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, r.Summary)
}
