// Package db persists matches, their raw telemetry samples, and the events
// derived from them in a sqlite database.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle for the match store.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path. Foreign keys,
// WAL journaling and a busy timeout are set through DSN pragmas; the schema
// itself is owned by the migrations under migrations/.
func NewDB(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	return &DB{sqlDB}, nil
}
