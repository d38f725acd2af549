package match

import "sort"

// winnerStrategy inspects the raw samples and either names a winner with
// a short reason, or declines. Strategies run in priority order and the
// first opinion stands; a strategy with nothing conclusive to say must
// decline rather than guess.
type winnerStrategy func(raw []Sample) (Winner, string, bool)

// resolveWinner applies the strategy chain. Raw samples are used
// throughout: smoothing can erase the very stock reading that decides
// the match.
func resolveWinner(raw []Sample) (Winner, string) {
	strategies := []winnerStrategy{
		winnerByZeroStocks,
		winnerByLateStockLead,
		winnerByStockDrops,
		winnerByPercentGap,
	}
	for _, s := range strategies {
		if w, via, ok := s(raw); ok {
			return w, via
		}
	}
	return WinnerUnknown, ""
}

// winnerByZeroStocks finds the first sample where one player reads zero
// stocks while the other still has at least one. Reaching zero first is
// the loss condition, so this is the most direct signal available.
func winnerByZeroStocks(raw []Sample) (Winner, string, bool) {
	for _, s := range raw {
		p1, p2 := s.Stocks(P1), s.Stocks(P2)
		if p1 != nil && *p1 == 0 && p2 != nil && *p2 >= 1 {
			return WinnerP2, "zero_stocks", true
		}
		if p2 != nil && *p2 == 0 && p1 != nil && *p1 >= 1 {
			return WinnerP1, "zero_stocks", true
		}
	}
	return WinnerUnknown, "", false
}

// winnerByLateStockLead scans the last 30 samples newest-first for a
// frame where both stock readings are present and unequal.
func winnerByLateStockLead(raw []Sample) (Winner, string, bool) {
	start := 0
	if len(raw) > 30 {
		start = len(raw) - 30
	}
	for i := len(raw) - 1; i >= start; i-- {
		p1, p2 := raw[i].Stocks(P1), raw[i].Stocks(P2)
		if p1 == nil || p2 == nil || *p1 == *p2 {
			continue
		}
		if *p1 < *p2 {
			return WinnerP2, "late_stock_lead", true
		}
		return WinnerP1, "late_stock_lead", true
	}
	return WinnerUnknown, "", false
}

// winnerByStockDrops totals every frame-to-frame stock decrease per
// player across the whole match; whoever dropped more stocks lost.
func winnerByStockDrops(raw []Sample) (Winner, string, bool) {
	p1Drops, p2Drops := 0, 0
	for i := 1; i < len(raw); i++ {
		p1Drops += stockDrop(raw[i-1].Stocks(P1), raw[i].Stocks(P1))
		p2Drops += stockDrop(raw[i-1].Stocks(P2), raw[i].Stocks(P2))
	}
	if p1Drops > p2Drops {
		return WinnerP2, "stock_drops", true
	}
	if p2Drops > p1Drops {
		return WinnerP1, "stock_drops", true
	}
	return WinnerUnknown, "", false
}

// winnerByPercentGap is the last resort: on the final sample carrying
// both percents, a reading more than 20 points above the opponent marks
// the player most likely to have just been KO'd.
func winnerByPercentGap(raw []Sample) (Winner, string, bool) {
	for i := len(raw) - 1; i >= 0; i-- {
		p1, p2 := raw[i].Percent(P1), raw[i].Percent(P2)
		if p1 == nil || p2 == nil {
			continue
		}
		if *p1 > *p2+20 {
			return WinnerP2, "percent_gap", true
		}
		if *p2 > *p1+20 {
			return WinnerP1, "percent_gap", true
		}
		return WinnerUnknown, "", false
	}
	return WinnerUnknown, "", false
}

func stockDrop(prev, cur *int) int {
	if prev != nil && cur != nil && *cur < *prev {
		return *prev - *cur
	}
	return 0
}

// computeStats summarizes the raw sample stream: match duration, percent
// extremes and averages, the resolved winner, and the modal stock
// readings over the final stretch.
func computeStats(raw []Sample) Stats {
	stats := Stats{Winner: WinnerUnknown}
	if len(raw) == 0 {
		return stats
	}
	stats.Duration = raw[len(raw)-1].Timestamp

	stats.P1MaxPercent, stats.P1AvgPercent = percentSpread(raw, P1)
	stats.P2MaxPercent, stats.P2AvgPercent = percentSpread(raw, P2)
	stats.Winner, stats.WinnerVia = resolveWinner(raw)

	tail := raw
	if len(raw) > 15 {
		tail = raw[len(raw)-15:]
	}
	stats.P1FinalStocks = modalStocks(tail, P1)
	stats.P2FinalStocks = modalStocks(tail, P2)
	return stats
}

func percentSpread(raw []Sample, p Player) (maxPct, avgPct float64) {
	sum, n := 0.0, 0
	for _, s := range raw {
		v := s.Percent(p)
		if v == nil {
			continue
		}
		if *v > maxPct {
			maxPct = *v
		}
		sum += *v
		n++
	}
	if n > 0 {
		avgPct = sum / float64(n)
	}
	return maxPct, avgPct
}

// modalStocks returns the most frequent stock reading in the window, or
// nil when every reading is missing. Ties resolve to the smaller value,
// late-match OCR glitches overwhelmingly read high, not low.
func modalStocks(window []Sample, p Player) *int {
	counts := map[int]int{}
	for _, s := range window {
		if v := s.Stocks(p); v != nil {
			counts[*v]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)
	best := values[0]
	for _, v := range values[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return ptrInt(best)
}
