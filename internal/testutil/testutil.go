// Package testutil provides shared fixtures and assertion helpers.
//
// The scripted streams are deterministic. Tests that assert exact event
// timestamps rely on them staying stable, so extend them by adding new
// builders rather than editing the existing scripts.
package testutil

import (
	"testing"

	"github.com/ringside-data/stock.report/internal/match"
)

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Sample builds a sample with every field readable.
func Sample(ts, p1, p2 float64, s1, s2 int) match.Sample {
	return match.Sample{
		Timestamp: ts,
		P1Percent: FloatPtr(p1),
		P2Percent: FloatPtr(p2),
		P1Stocks:  IntPtr(s1),
		P2Stocks:  IntPtr(s2),
	}
}

// ScriptedMatch returns a 29-second stream sampled once a second: P1
// climbs to 85% and dies at t=7, rebuilds to 97% and dies again at
// t=19, while P2 chips to 30% and keeps all three stocks. The engine
// reads it as two stock losses and a late stock lead for P2.
func ScriptedMatch() []match.Sample {
	p1 := []float64{0, 0, 0, 20, 45, 70, 85, 0, 0, 5, 20, 40, 55, 70, 80, 90, 97, 97, 97, 8, 8, 10, 12, 12, 12, 12, 12, 12, 12}
	p2 := []float64{0, 0, 0, 2, 6, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30}

	samples := make([]match.Sample, len(p1))
	for i := range samples {
		s1 := 3
		if i >= 7 {
			s1 = 2
		}
		if i >= 19 {
			s1 = 1
		}
		samples[i] = Sample(float64(i), p1[i], p2[i], s1, 3)
	}
	return samples
}

// ScriptedMatchWithCharacters is ScriptedMatch with character reads on
// the first sample, the way an OCR source reports them once the
// portraits resolve.
func ScriptedMatchWithCharacters(p1Char, p2Char string) []match.Sample {
	samples := ScriptedMatch()
	samples[0].P1Character = p1Char
	samples[0].P2Character = p2Char
	return samples
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}
