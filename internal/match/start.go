package match

// DetectStart locates the true match-start timestamp in the smoothed
// samples, skipping menu/loading noise. The primary signal is a run of
// StartRunLength consecutive samples where both players read at most
// StartPercentMax percent with a full stock count; the start backdates
// to the first sample of the run. When no clean run exists the fallback
// is the first sample after StartFallbackAfter seconds carrying any
// readable percent and any readable stock value. The bool reports
// whether either strategy resolved a boundary; callers treat false as
// "analyze everything".
func DetectStart(smoothed []Sample, cfg Config) (float64, bool) {
	run := 0
	for i := range smoothed {
		s := &smoothed[i]
		p1 := valueOr(s.P1Percent, 0)
		p2 := valueOr(s.P2Percent, 0)
		if p1 <= cfg.StartPercentMax && p2 <= cfg.StartPercentMax &&
			stocksEqual(s.P1Stocks, StartingStocks) && stocksEqual(s.P2Stocks, StartingStocks) {
			run++
			if run >= cfg.StartRunLength {
				return smoothed[i-(cfg.StartRunLength-1)].Timestamp, true
			}
		} else {
			run = 0
		}
	}

	for i := range smoothed {
		s := &smoothed[i]
		if s.Timestamp < cfg.StartFallbackAfter {
			continue
		}
		if (s.P1Percent != nil || s.P2Percent != nil) &&
			(s.P1Stocks != nil || s.P2Stocks != nil) {
			return s.Timestamp, true
		}
	}
	return 0, false
}

func stocksEqual(v *int, want int) bool {
	return v != nil && *v == want
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
