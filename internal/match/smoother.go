package match

import "sort"

// Smooth returns a same-length copy of samples with percent fields
// replaced by the median of a centered window of raw percent values and
// stock fields by the modal value in the same window. A raw 0 stock
// reading is always preserved verbatim: it is the signal that ends a
// life and must not be lost to majority voting. Null fields are filled
// from neighbors when the window has any readable value. The input is
// never modified.
func Smooth(samples []Sample, window int) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	if len(samples) < 3 || window < 2 {
		return out
	}

	half := window / 2
	for i := range samples {
		lo := max(0, i-half)
		hi := min(len(samples), i+half+1)

		if v, ok := windowMedian(samples[lo:hi], P1); ok {
			out[i].P1Percent = ptrFloat(v)
		}
		if v, ok := windowMedian(samples[lo:hi], P2); ok {
			out[i].P2Percent = ptrFloat(v)
		}

		if v, ok := windowMode(samples[lo:hi], P1); ok {
			if raw := samples[i].P1Stocks; raw != nil && *raw == 0 {
				out[i].P1Stocks = ptrInt(0)
			} else {
				out[i].P1Stocks = ptrInt(v)
			}
		}
		if v, ok := windowMode(samples[lo:hi], P2); ok {
			if raw := samples[i].P2Stocks; raw != nil && *raw == 0 {
				out[i].P2Stocks = ptrInt(0)
			} else {
				out[i].P2Stocks = ptrInt(v)
			}
		}
	}
	return out
}

// windowMedian picks the upper-median element of the non-null percent
// readings in the window. No averaging: the result is always a value
// the sensor actually reported.
func windowMedian(window []Sample, p Player) (float64, bool) {
	vals := make([]float64, 0, len(window))
	for i := range window {
		if v := window[i].Percent(p); v != nil {
			vals = append(vals, *v)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	return vals[len(vals)/2], true
}

// windowMode picks the most common non-null stock reading. Ties break
// toward the smaller count: stocks only ever decrease, so the lower
// reading is the safer belief.
func windowMode(window []Sample, p Player) (int, bool) {
	counts := make(map[int]int, 4)
	for i := range window {
		if v := window[i].Stocks(p); v != nil {
			counts[*v]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}
	best, bestCount := 0, -1
	vals := make([]int, 0, len(counts))
	for v := range counts {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	for _, v := range vals {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, true
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
