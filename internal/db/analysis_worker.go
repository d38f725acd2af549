package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/monitoring"
	"github.com/ringside-data/stock.report/internal/timeutil"
)

// AnalysisWorker periodically looks for matches that have samples but no
// analysis yet, runs the reconstruction engine over them, and stores the
// resulting events and match outcome. Catches matches whose samples arrived
// over several uploads before any explicit analyze call.
type AnalysisWorker struct {
	DB       *DB
	Engine   *match.Engine
	Interval time.Duration
	Clock    timeutil.Clock
	StopChan chan struct{}
}

// NewAnalysisWorker builds a worker over db using engine. A nil clock gets
// the real clock; a non-positive interval defaults to 30 seconds.
func NewAnalysisWorker(db *DB, engine *match.Engine, interval time.Duration, clock timeutil.Clock) *AnalysisWorker {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AnalysisWorker{
		DB:       db,
		Engine:   engine,
		Interval: interval,
		Clock:    clock,
		StopChan: make(chan struct{}),
	}
}

// Start runs the periodic worker loop in a goroutine.
func (w *AnalysisWorker) Start() {
	go func() {
		ticker := w.Clock.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := w.RunOnce(context.Background()); err != nil {
					monitoring.Logf("analysis worker run error: %v", err)
				}
			case <-w.StopChan:
				return
			}
		}
	}()
}

// Stop requests the worker to stop.
func (w *AnalysisWorker) Stop() {
	close(w.StopChan)
}

// RunOnce analyzes every match currently waiting for analysis. A failure on
// one match is logged and does not block the rest.
func (w *AnalysisWorker) RunOnce(ctx context.Context) error {
	ids, err := w.DB.MatchesNeedingAnalysis(ctx)
	if err != nil {
		return fmt.Errorf("failed to list matches needing analysis: %w", err)
	}

	started := w.Clock.Now()
	analyzed := 0
	for _, id := range ids {
		if err := w.analyzeMatch(ctx, id); err != nil {
			monitoring.Logf("analysis worker: match %s: %v", id, err)
			continue
		}
		analyzed++
	}

	if analyzed > 0 {
		monitoring.Logf("analysis worker: analyzed %d of %d matches in %s",
			analyzed, len(ids), w.Clock.Since(started).Round(time.Millisecond))
	}

	return nil
}

func (w *AnalysisWorker) analyzeMatch(ctx context.Context, id string) error {
	m, err := w.DB.GetMatch(id)
	if err != nil {
		return err
	}
	samples, err := w.DB.GetSamples(id)
	if err != nil {
		return err
	}
	if !m.YouAreP1 {
		samples = match.SwapSamples(samples)
	}

	tl := w.Engine.Analyze(samples)

	rows, err := EventRowsFromTimeline(id, tl)
	if err != nil {
		return err
	}
	if err := w.DB.ReplaceEvents(ctx, id, rows); err != nil {
		return err
	}

	return w.DB.SetMatchResult(id, tl.Stats.Duration, string(tl.Stats.Winner))
}
