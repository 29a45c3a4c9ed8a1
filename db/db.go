// Package db provides database connection helpers and schema migration for
// the local sqlite quote store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // cgo-free sqlite driver registered as 'sqlite'
)

// Open opens (creating if needed) the sqlite database at path. WAL mode keeps
// readers unblocked during the occasional write burst; the busy timeout papers
// over transient lock contention between concurrent command handlers.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	dsn := "file:" + url.PathEscape(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return database, nil
}

// Migrate applies idempotent schema changes for all required tables and
// indices. The unique constraint on (guild_id, user_id, content) is the
// authoritative duplicate guard; the store's pre-check only exists for the
// friendlier rejection message.
func Migrate(ctx context.Context, database *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quotes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp INTEGER,
			channel_id TEXT,
			adder_user_id TEXT,
			added_timestamp INTEGER,
			uses INTEGER NOT NULL DEFAULT 0,
			UNIQUE(guild_id, user_id, content)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_guild_user ON quotes(guild_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_uses ON quotes(uses DESC)`,
	}
	for i, s := range stmts {
		if _, err := database.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("sqlite migrate step %d failed: %w", i, err)
		}
	}
	return nil
}
