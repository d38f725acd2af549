package db

import (
	"context"
	"testing"
	"time"

	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/testutil"
	"github.com/ringside-data/stock.report/internal/timeutil"
)

func TestNewAnalysisWorker_Defaults(t *testing.T) {
	w := NewAnalysisWorker(nil, nil, 0, nil)

	if w.Clock == nil {
		t.Error("expected a default clock")
	}
	if w.Interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", w.Interval)
	}
	if w.StopChan == nil {
		t.Error("expected StopChan to be initialized")
	}
}

func TestAnalysisWorker_RunOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m := &Match{YouAreP1: true}
	if err := db.InsertMatch(m); err != nil {
		t.Fatalf("InsertMatch failed: %v", err)
	}
	if err := db.InsertSamples(ctx, m.ID, testutil.ScriptedMatch()); err != nil {
		t.Fatalf("InsertSamples failed: %v", err)
	}

	w := NewAnalysisWorker(db, match.New(match.DefaultConfig()), 0, nil)
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	got, err := db.GetMatch(m.ID)
	if err != nil {
		t.Fatalf("GetMatch failed: %v", err)
	}
	if got.AnalyzedAt == nil {
		t.Fatal("expected match to be marked analyzed")
	}
	if got.Winner != string(match.WinnerP2) {
		t.Errorf("winner = %q, want p2", got.Winner)
	}
	if got.DurationSeconds != 28 {
		t.Errorf("duration = %v, want 28", got.DurationSeconds)
	}

	events, err := db.EventsForMatch(m.ID)
	if err != nil {
		t.Fatalf("EventsForMatch failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected stored events after analysis")
	}
	losses := 0
	for _, ev := range events {
		if ev.Kind == string(match.KindStockLoss) {
			losses++
		}
	}
	if losses != 2 {
		t.Errorf("stored stock losses = %d, want 2", losses)
	}

	pending, err := db.MatchesNeedingAnalysis(ctx)
	if err != nil {
		t.Fatalf("MatchesNeedingAnalysis failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending matches after analysis = %v, want none", pending)
	}
}

func TestAnalysisWorker_RunOnce_NoPendingMatches(t *testing.T) {
	db := setupTestDB(t)

	w := NewAnalysisWorker(db, match.New(match.DefaultConfig()), 0, nil)
	if err := w.RunOnce(context.Background()); err != nil {
		t.Errorf("RunOnce on an empty database failed: %v", err)
	}
}

func TestAnalysisWorker_StartStop(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m := &Match{YouAreP1: true}
	if err := db.InsertMatch(m); err != nil {
		t.Fatalf("InsertMatch failed: %v", err)
	}
	if err := db.InsertSamples(ctx, m.ID, testutil.ScriptedMatch()); err != nil {
		t.Fatalf("InsertSamples failed: %v", err)
	}

	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	w := NewAnalysisWorker(db, match.New(match.DefaultConfig()), time.Second, clock)
	w.Start()
	defer w.Stop()

	// The worker goroutine registers its ticker asynchronously, so keep
	// advancing until a tick lands and the analysis shows up.
	deadline := time.Now().Add(5 * time.Second)
	analyzed := false
	for time.Now().Before(deadline) {
		clock.Advance(time.Second)

		got, err := db.GetMatch(m.ID)
		if err != nil {
			t.Fatalf("GetMatch failed: %v", err)
		}
		if got.AnalyzedAt != nil {
			analyzed = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !analyzed {
		t.Fatal("worker did not analyze the match after ticks")
	}
}
