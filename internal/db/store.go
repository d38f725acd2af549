package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ringside-data/stock.report/internal/match"
)

// ErrNotFound is returned when a requested match does not exist.
var ErrNotFound = errors.New("match not found")

// Match is one recorded match. CreatedAt and AnalyzedAt are unix seconds;
// AnalyzedAt is nil until the analysis worker (or an explicit analyze) has
// written results for it.
type Match struct {
	ID              string   `json:"match_id"`
	CreatedAt       float64  `json:"created_at"`
	Source          string   `json:"source"`
	YouAreP1        bool     `json:"you_are_p1"`
	P1Character     string   `json:"p1_character"`
	P2Character     string   `json:"p2_character"`
	SampleCount     int      `json:"sample_count"`
	DurationSeconds float64  `json:"duration_seconds"`
	Winner          string   `json:"winner"`
	AnalyzedAt      *float64 `json:"analyzed_at"`
}

// InsertMatch creates a new match row. An empty ID is filled with a fresh
// UUID and a zero CreatedAt with the current time, both written back to m.
func (db *DB) InsertMatch(m *Match) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = float64(time.Now().UnixMilli()) / 1000.0
	}
	if m.Winner == "" {
		m.Winner = string(match.WinnerUnknown)
	}

	query := `
		INSERT INTO matches (
			match_id, created_at, source, you_are_p1,
			p1_character, p2_character, winner
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	youAreP1Int := 0
	if m.YouAreP1 {
		youAreP1Int = 1
	}

	_, err := db.DB.Exec(
		query,
		m.ID,
		m.CreatedAt,
		m.Source,
		youAreP1Int,
		m.P1Character,
		m.P2Character,
		m.Winner,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	return nil
}

// GetMatch retrieves a match by ID. Returns ErrNotFound when no such match
// exists.
func (db *DB) GetMatch(id string) (*Match, error) {
	query := `
		SELECT
			match_id, created_at, source, you_are_p1,
			p1_character, p2_character, sample_count,
			duration_seconds, winner, analyzed_at
		FROM matches
		WHERE match_id = ?
	`

	var m Match
	var youAreP1Int int

	err := db.DB.QueryRow(query, id).Scan(
		&m.ID,
		&m.CreatedAt,
		&m.Source,
		&youAreP1Int,
		&m.P1Character,
		&m.P2Character,
		&m.SampleCount,
		&m.DurationSeconds,
		&m.Winner,
		&m.AnalyzedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	m.YouAreP1 = youAreP1Int == 1

	return &m, nil
}

// ListMatches retrieves all matches, newest first.
func (db *DB) ListMatches() ([]Match, error) {
	query := `
		SELECT
			match_id, created_at, source, you_are_p1,
			p1_character, p2_character, sample_count,
			duration_seconds, winner, analyzed_at
		FROM matches
		ORDER BY created_at DESC
	`

	rows, err := db.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var youAreP1Int int

		err := rows.Scan(
			&m.ID,
			&m.CreatedAt,
			&m.Source,
			&youAreP1Int,
			&m.P1Character,
			&m.P2Character,
			&m.SampleCount,
			&m.DurationSeconds,
			&m.Winner,
			&m.AnalyzedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		m.YouAreP1 = youAreP1Int == 1
		matches = append(matches, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// DeleteMatch removes a match. Samples and events go with it via foreign key
// cascade. Returns ErrNotFound when no such match exists.
func (db *DB) DeleteMatch(id string) error {
	result, err := db.DB.Exec(`DELETE FROM matches WHERE match_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetMatchResult records the outcome of an analysis run and stamps
// analyzed_at. Returns ErrNotFound when no such match exists.
func (db *DB) SetMatchResult(id string, durationSeconds float64, winner string) error {
	query := `
		UPDATE matches SET
			duration_seconds = ?,
			winner = ?,
			analyzed_at = UNIXEPOCH('subsec')
		WHERE match_id = ?
	`

	result, err := db.DB.Exec(query, durationSeconds, winner, id)
	if err != nil {
		return fmt.Errorf("failed to set match result: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// InsertSamples appends telemetry samples to a match inside a single
// transaction. Sample order is preserved through the idx column, continuing
// after any rows already stored, and the match's denormalized sample_count
// is refreshed before commit.
func (db *DB) InsertSamples(ctx context.Context, matchID string, samples []match.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var nextIdx int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(idx) + 1, 0) FROM samples WHERE match_id = ?`,
		matchID,
	).Scan(&nextIdx)
	if err != nil {
		return fmt.Errorf("failed to find next sample index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (
			match_id, idx, timestamp,
			p1_percent, p2_percent, p1_stocks, p2_stocks,
			p1_character, p2_character
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range samples {
		_, err := stmt.ExecContext(ctx,
			matchID,
			nextIdx+i,
			s.Timestamp,
			s.P1Percent,
			s.P2Percent,
			s.P1Stocks,
			s.P2Stocks,
			s.P1Character,
			s.P2Character,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sample %d: %w", nextIdx+i, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE matches
		SET sample_count = (SELECT COUNT(*) FROM samples WHERE match_id = ?)
		WHERE match_id = ?
	`, matchID, matchID)
	if err != nil {
		return fmt.Errorf("failed to update sample count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit samples: %w", err)
	}

	return nil
}

// GetSamples retrieves a match's samples in insertion order.
func (db *DB) GetSamples(matchID string) ([]match.Sample, error) {
	query := `
		SELECT
			timestamp, p1_percent, p2_percent,
			p1_stocks, p2_stocks, p1_character, p2_character
		FROM samples
		WHERE match_id = ?
		ORDER BY idx ASC
	`

	rows, err := db.DB.Query(query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []match.Sample
	for rows.Next() {
		var s match.Sample
		err := rows.Scan(
			&s.Timestamp,
			&s.P1Percent,
			&s.P2Percent,
			&s.P1Stocks,
			&s.P2Stocks,
			&s.P1Character,
			&s.P2Character,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	return samples, nil
}

// MatchesNeedingAnalysis returns IDs of matches that have samples but no
// recorded analysis yet, oldest first.
func (db *DB) MatchesNeedingAnalysis(ctx context.Context) ([]string, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT match_id
		FROM matches
		WHERE sample_count > 0 AND analyzed_at IS NULL
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unanalyzed matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match IDs: %w", err)
	}

	return ids, nil
}
