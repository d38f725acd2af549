package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveWinnerZeroStocks(t *testing.T) {
	samples := []Sample{
		full(0, 0, 0, 3, 3),
		full(30, 80, 120, 1, 1),
		full(60, 95, 130, 1, 0),
		full(61, 95, 130, 1, 0),
	}
	w, via := resolveWinner(samples)
	if w != WinnerP1 || via != "zero_stocks" {
		t.Errorf("winner = %v via %q, want p1 via zero_stocks", w, via)
	}
}

func TestResolveWinnerLateStockLead(t *testing.T) {
	// Nobody reads zero, but the tail shows a one-stock lead.
	samples := []Sample{
		full(0, 0, 0, 3, 3),
		full(30, 60, 90, 2, 2),
		full(60, 80, 40, 1, 2),
		blank(61),
	}
	w, via := resolveWinner(samples)
	if w != WinnerP2 || via != "late_stock_lead" {
		t.Errorf("winner = %v via %q, want p2 via late_stock_lead", w, via)
	}
}

func TestResolveWinnerStockDrops(t *testing.T) {
	// Stock digits never read for both players at once, so the lead
	// strategies decline; the drop totals still tell the story.
	samples := []Sample{
		{Timestamp: 0, P1Stocks: ptrInt(3)},
		{Timestamp: 1, P1Stocks: ptrInt(2)},
		{Timestamp: 2, P2Stocks: ptrInt(3)},
		{Timestamp: 3, P2Stocks: ptrInt(3)},
		{Timestamp: 4, P1Stocks: ptrInt(2)},
		{Timestamp: 5, P1Stocks: ptrInt(1)},
		{Timestamp: 6},
	}
	w, via := resolveWinner(samples)
	if w != WinnerP2 || via != "stock_drops" {
		t.Errorf("winner = %v via %q, want p2 via stock_drops", w, via)
	}
}

func TestResolveWinnerPercentGap(t *testing.T) {
	samples := []Sample{
		pcts(0, 10, 10),
		pcts(30, 60, 25),
		pcts(60, 95, 30),
	}
	w, via := resolveWinner(samples)
	if w != WinnerP2 || via != "percent_gap" {
		t.Errorf("winner = %v via %q, want p2 via percent_gap", w, via)
	}
}

func TestResolveWinnerPercentGapOnlyFinalFrame(t *testing.T) {
	// Only the last frame with both percents gets an opinion; a wide
	// gap earlier in the match proves nothing about the result.
	samples := []Sample{
		pcts(0, 95, 10),
		pcts(30, 50, 45),
	}
	w, via := resolveWinner(samples)
	if w != WinnerUnknown || via != "" {
		t.Errorf("winner = %v via %q, want unknown", w, via)
	}
}

func TestResolveWinnerUnknown(t *testing.T) {
	if w, _ := resolveWinner([]Sample{blank(0), blank(1)}); w != WinnerUnknown {
		t.Errorf("winner = %v, want unknown", w)
	}
	if w, _ := resolveWinner(nil); w != WinnerUnknown {
		t.Errorf("winner of empty stream = %v, want unknown", w)
	}
}

func TestComputeStats(t *testing.T) {
	samples := []Sample{
		full(0, 10, 20, 3, 3),
		{Timestamp: 5, P1Percent: ptrFloat(50), P1Stocks: ptrInt(3), P2Stocks: ptrInt(3)},
		full(10, 90, 40, 2, 3),
		blank(12),
	}
	got := computeStats(samples)
	want := Stats{
		Duration:      12,
		Winner:        WinnerP2,
		WinnerVia:     "late_stock_lead",
		P1MaxPercent:  90,
		P2MaxPercent:  40,
		P1AvgPercent:  50,
		P2AvgPercent:  30,
		P1FinalStocks: ptrInt(3),
		P2FinalStocks: ptrInt(3),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	got := computeStats(nil)
	if got.Winner != WinnerUnknown || got.Duration != 0 {
		t.Errorf("empty stats = %+v", got)
	}
	if got.P1FinalStocks != nil || got.P2FinalStocks != nil {
		t.Error("final stocks resolved from no samples")
	}
}

func TestModalStocks(t *testing.T) {
	window := []Sample{
		full(0, 0, 0, 2, 3),
		full(1, 0, 0, 3, 3),
		full(2, 0, 0, 2, 3),
		blank(3),
		full(4, 0, 0, 3, 3),
	}
	// 2 and 3 both read twice for P1; the tie resolves low.
	if got := modalStocks(window, P1); got == nil || *got != 2 {
		t.Errorf("modal P1 stocks = %v, want 2", got)
	}
	if got := modalStocks(window, P2); got == nil || *got != 3 {
		t.Errorf("modal P2 stocks = %v, want 3", got)
	}
	if got := modalStocks([]Sample{blank(0)}, P1); got != nil {
		t.Errorf("modal stocks from nulls = %v, want nil", *got)
	}
}
