package match

import "testing"

func TestDedupWindowCollapsesRepeats(t *testing.T) {
	events := []StockLossEvent{
		{Timestamp: 10, Player: P1, Percent: 90, StocksRemaining: 2},
		{Timestamp: 12, Player: P1, Percent: 90, StocksRemaining: 2},
		{Timestamp: 14, Player: P1, Percent: 90, StocksRemaining: 2},
		{Timestamp: 16, Player: P1, Percent: 30, StocksRemaining: 1},
	}
	got := dedupWindow(events, 5, stockLossFinal)
	if len(got) != 2 {
		t.Fatalf("kept %d events, want 2", len(got))
	}
	if got[0].Timestamp != 10 || got[1].Timestamp != 16 {
		t.Errorf("kept timestamps %v and %v, want 10 and 16", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestDedupWindowFinalDeathSurvives(t *testing.T) {
	// The zero-stock death is always kept, even right after another
	// event, and it advances the window for what follows.
	events := []StockLossEvent{
		{Timestamp: 10, Player: P1, Percent: 85, StocksRemaining: 1},
		{Timestamp: 13, Player: P1, Percent: 120, StocksRemaining: 0},
		{Timestamp: 17, Player: P1, Percent: 120, StocksRemaining: 0},
	}
	got := dedupWindow(events, 5, stockLossFinal)
	// The third is itself final, so it survives too.
	if len(got) != 3 {
		t.Fatalf("kept %d events, want 3", len(got))
	}

	nonFinalTail := []StockLossEvent{
		{Timestamp: 10, Player: P1, Percent: 85, StocksRemaining: 1},
		{Timestamp: 13, Player: P1, Percent: 120, StocksRemaining: 0},
		{Timestamp: 17, Player: P1, Percent: 85, StocksRemaining: 1},
	}
	got = dedupWindow(nonFinalTail, 5, stockLossFinal)
	if len(got) != 2 {
		t.Fatalf("kept %d events, want 2", len(got))
	}
	if got[1].Timestamp != 13 {
		t.Errorf("second kept event at %v, want the final death at 13", got[1].Timestamp)
	}
}

func TestDedupWindowSortsByTimestamp(t *testing.T) {
	events := []DamageSpikeEvent{
		{Timestamp: 14, Player: P1, Damage: 25},
		{Timestamp: 2, Player: P1, Damage: 30},
		{Timestamp: 8, Player: P1, Damage: 35},
	}
	got := dedupWindow(events, 5, neverFinal[DamageSpikeEvent])
	if len(got) != 3 {
		t.Fatalf("kept %d events, want 3", len(got))
	}
	for i, want := range []float64{2, 8, 14} {
		if got[i].Timestamp != want {
			t.Errorf("got[%d].Timestamp = %v, want %v", i, got[i].Timestamp, want)
		}
	}
}

func TestDedupWindowEmpty(t *testing.T) {
	if got := dedupWindow(nil, 5, stockLossFinal); len(got) != 0 {
		t.Errorf("deduped nil input to %d events", len(got))
	}
}
