// Package report renders an analyzed match three ways: an interactive
// HTML chart page, a PNG image, and CLI tables. All renderers take the
// raw samples plus the finished timeline; display smoothing always uses
// the default window so charts look the same regardless of analysis
// tuning.
package report

import (
	"fmt"
	"sort"

	"github.com/ringside-data/stock.report/internal/match"
)

// Meta carries the identifying fields rendered in chart titles and the
// CLI summary line.
type Meta struct {
	MatchID     string
	P1Character string
	P2Character string
	Source      string
}

// PlayerLabel names a player for legends, including the character when
// known.
func (m Meta) PlayerLabel(p match.Player) string {
	name := "P1"
	char := m.P1Character
	if p == match.P2 {
		name = "P2"
		char = m.P2Character
	}
	if char == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, char)
}

// displaySeries is the per-sample chart input: clock-relative seconds
// plus both players' smoothed percents (nil where the whole window was
// unreadable).
type displaySeries struct {
	seconds []float64
	p1      []*float64
	p2      []*float64
}

func buildSeries(samples []match.Sample, matchStart float64) displaySeries {
	smoothed := match.Smooth(samples, match.DefaultConfig().SmoothingWindow)

	s := displaySeries{
		seconds: make([]float64, len(smoothed)),
		p1:      make([]*float64, len(smoothed)),
		p2:      make([]*float64, len(smoothed)),
	}
	for i := range smoothed {
		s.seconds[i] = smoothed[i].Timestamp - matchStart
		s.p1[i] = smoothed[i].P1Percent
		s.p2[i] = smoothed[i].P2Percent
	}
	return s
}

// nearestIndex maps an event timestamp onto the closest sample so
// markers land on the plotted series.
func (s displaySeries) nearestIndex(seconds float64) int {
	if len(s.seconds) == 0 {
		return 0
	}
	i := sort.SearchFloat64s(s.seconds, seconds)
	if i >= len(s.seconds) {
		return len(s.seconds) - 1
	}
	if i > 0 && seconds-s.seconds[i-1] < s.seconds[i]-seconds {
		return i - 1
	}
	return i
}
