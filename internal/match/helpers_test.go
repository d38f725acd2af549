package match

// Test stream builders. Timestamps are seconds; one sample per second
// unless a test says otherwise.

// full returns a sample with every field readable.
func full(ts, p1, p2 float64, s1, s2 int) Sample {
	return Sample{
		Timestamp: ts,
		P1Percent: ptrFloat(p1),
		P2Percent: ptrFloat(p2),
		P1Stocks:  ptrInt(s1),
		P2Stocks:  ptrInt(s2),
	}
}

// pcts returns a sample with percents only.
func pcts(ts, p1, p2 float64) Sample {
	return Sample{Timestamp: ts, P1Percent: ptrFloat(p1), P2Percent: ptrFloat(p2)}
}

// pctsStocks returns a sample with the given percents and full stocks.
func pctsStocks(ts, p1, p2 float64) Sample {
	return full(ts, p1, p2, StartingStocks, StartingStocks)
}

// blank returns a sample with nothing readable.
func blank(ts float64) Sample {
	return Sample{Timestamp: ts}
}
