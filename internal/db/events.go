package db

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ringside-data/stock.report/internal/match"
)

// EventRow is one detected event flattened for storage. Payload holds the
// event's full JSON as the engine produced it; Kind, Timestamp and Player
// are lifted out as columns for querying.
type EventRow struct {
	Key       string          `json:"event_key"`
	MatchID   string          `json:"match_id"`
	Kind      string          `json:"kind"`
	Timestamp float64         `json:"timestamp"`
	Player    string          `json:"player"`
	Payload   json.RawMessage `json:"payload"`
}

// EventRowsFromTimeline flattens a timeline's events into rows for matchID.
func EventRowsFromTimeline(matchID string, tl *match.Timeline) ([]EventRow, error) {
	events := tl.Events()
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s event: %w", ev.Kind(), err)
		}
		row := EventRow{
			MatchID:   matchID,
			Kind:      string(ev.Kind()),
			Timestamp: ev.When(),
			Player:    eventPlayer(ev),
			Payload:   payload,
		}
		row.Key = eventKey(row)
		rows = append(rows, row)
	}
	return rows, nil
}

// eventPlayer names the player an event is attributed to, empty when the
// event has no single subject. Kills and combos are always the analyzed
// player acting on the opponent.
func eventPlayer(ev match.Event) string {
	switch e := ev.(type) {
	case match.StockLossEvent:
		return string(e.Player)
	case match.KillEvent:
		return string(match.P2)
	case match.DamageSpikeEvent:
		return string(e.Player)
	case match.DamageDealtEvent:
		return string(e.Player)
	case match.ComboEvent:
		return string(match.P1)
	case match.EdgeguardEvent:
		return string(e.Victim)
	case match.MomentumSwingEvent:
		return string(match.P1)
	default:
		return ""
	}
}

// eventKey generates a stable key using SHA1(match|kind|timestamp|player)
// so re-analyzing a match overwrites its events instead of duplicating them.
func eventKey(row EventRow) string {
	keyRaw := fmt.Sprintf("%s|%s|%.3f|%s", row.MatchID, row.Kind, row.Timestamp, row.Player)
	sum := sha1.Sum([]byte(keyRaw))
	return fmt.Sprintf("%x", sum)
}

// ReplaceEvents swaps a match's stored events for rows inside a single
// transaction. Events from a previous analysis are deleted first, so a
// tuning change that suppresses an event also removes its stale row.
func (db *DB) ReplaceEvents(ctx context.Context, matchID string, rows []EventRow) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("failed to clear stale events: %w", err)
	}

	upsertStmt, err := tx.PrepareContext(ctx, `INSERT INTO events (event_key, match_id, kind, timestamp, player, payload, created_at) VALUES (?, ?, ?, ?, ?, ?, UNIXEPOCH('subsec')) ON CONFLICT(event_key) DO UPDATE SET payload=excluded.payload, created_at=excluded.created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare event upsert: %w", err)
	}
	defer upsertStmt.Close()

	for _, row := range rows {
		_, err := upsertStmt.ExecContext(ctx, row.Key, row.MatchID, row.Kind, row.Timestamp, row.Player, string(row.Payload))
		if err != nil {
			return fmt.Errorf("failed to upsert %s event at %.3f: %w", row.Kind, row.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}

	return nil
}

// EventsForMatch retrieves a match's stored events in timestamp order.
func (db *DB) EventsForMatch(matchID string) ([]EventRow, error) {
	query := `
		SELECT event_key, match_id, kind, timestamp, player, payload
		FROM events
		WHERE match_id = ?
		ORDER BY timestamp ASC, kind ASC
	`

	rows, err := db.DB.Query(query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var row EventRow
		var payload string
		err := rows.Scan(
			&row.Key,
			&row.MatchID,
			&row.Kind,
			&row.Timestamp,
			&row.Player,
			&payload,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		row.Payload = json.RawMessage(payload)
		out = append(out, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return out, nil
}
