package match

import (
	"math"
	"sort"
)

// dedupWindow collapses detection echoes within a category: after a
// stable sort by timestamp, an event within window seconds of the last
// kept one is dropped. Events isFinal reports true for are exempt, the
// match-ending death must survive no matter what it lands next to. Every
// kept event advances the window.
func dedupWindow[E Event](events []E, window float64, isFinal func(E) bool) []E {
	if len(events) == 0 {
		return events
	}
	sorted := make([]E, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].When() < sorted[j].When() })

	deduped := make([]E, 0, len(sorted))
	last := math.Inf(-1)
	for _, ev := range sorted {
		if isFinal(ev) || ev.When()-last > window {
			deduped = append(deduped, ev)
			last = ev.When()
		}
	}
	return deduped
}

func stockLossFinal(ev StockLossEvent) bool { return ev.StocksRemaining == 0 }

func killFinal(ev KillEvent) bool { return ev.OpponentStocksRemaining == 0 }

func neverFinal[E Event](E) bool { return false }
