package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ringside-data/stock.report/internal/db"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/report"
)

// loadSamples reads a JSON array of telemetry samples from path.
func loadSamples(path string) ([]match.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	var samples []match.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples in %s", path)
	}

	return samples, nil
}

// charactersFromSamples lifts the first character reads out of the
// stream, the way OCR sources report them once the portraits resolve.
func charactersFromSamples(samples []match.Sample) (p1, p2 string) {
	for _, s := range samples {
		if p1 == "" && s.P1Character != "" {
			p1 = s.P1Character
		}
		if p2 == "" && s.P2Character != "" {
			p2 = s.P2Character
		}
		if p1 != "" && p2 != "" {
			break
		}
	}
	return p1, p2
}

// resolveInput accepts either a samples file or a stored match ID. A
// path that exists on disk wins; anything else is looked up in the
// database named by --db.
func resolveInput(engine *match.Engine, arg string) (report.Meta, []match.Sample, *match.Timeline, error) {
	if _, err := os.Stat(arg); err == nil {
		samples, err := loadSamples(arg)
		if err != nil {
			return report.Meta{}, nil, nil, err
		}

		p1Char, p2Char := charactersFromSamples(samples)
		meta := report.Meta{
			MatchID:     filepath.Base(arg),
			P1Character: p1Char,
			P2Character: p2Char,
			Source:      "file",
		}
		return meta, samples, engine.Analyze(samples), nil
	}

	return loadStoredMatch(engine, arg)
}

// loadStoredMatch analyzes a match already in the store. Stored samples
// and characters are in screen orientation, so right-side matches get
// swapped into the analyzed player's frame before the engine runs.
func loadStoredMatch(engine *match.Engine, id string) (report.Meta, []match.Sample, *match.Timeline, error) {
	database, err := db.NewDB(dbPath)
	if err != nil {
		return report.Meta{}, nil, nil, fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	m, err := database.GetMatch(id)
	if err != nil {
		return report.Meta{}, nil, nil, fmt.Errorf("load match %s: %w", id, err)
	}

	samples, err := database.GetSamples(id)
	if err != nil {
		return report.Meta{}, nil, nil, fmt.Errorf("load samples for %s: %w", id, err)
	}

	meta := report.Meta{
		MatchID:     m.ID,
		P1Character: m.P1Character,
		P2Character: m.P2Character,
		Source:      m.Source,
	}
	if !m.YouAreP1 {
		samples = match.SwapSamples(samples)
		meta.P1Character, meta.P2Character = meta.P2Character, meta.P1Character
	}
	return meta, samples, engine.Analyze(samples), nil
}

// saveMatch persists a freshly analyzed match: the row, its samples,
// the flattened events, and the outcome.
func saveMatch(ctx context.Context, samples []match.Sample, tl *match.Timeline, source, p1Char, p2Char string) (string, error) {
	database, err := db.NewDB(dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	m := &db.Match{
		Source:      source,
		YouAreP1:    true,
		P1Character: p1Char,
		P2Character: p2Char,
	}
	if err := database.InsertMatch(m); err != nil {
		return "", fmt.Errorf("insert match: %w", err)
	}
	if err := database.InsertSamples(ctx, m.ID, samples); err != nil {
		return "", fmt.Errorf("insert samples: %w", err)
	}

	rows, err := db.EventRowsFromTimeline(m.ID, tl)
	if err != nil {
		return "", fmt.Errorf("flatten events: %w", err)
	}
	if err := database.ReplaceEvents(ctx, m.ID, rows); err != nil {
		return "", fmt.Errorf("store events: %w", err)
	}

	if err := database.SetMatchResult(m.ID, tl.Stats.Duration, string(tl.Stats.Winner)); err != nil {
		return "", fmt.Errorf("record result: %w", err)
	}

	return m.ID, nil
}
