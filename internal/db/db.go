// Package db holds the runtime activity store: durable records of
// lesson completions and prop status updates reported through the
// assistant. SQLite in WAL mode; schema migrates on open.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with svassist-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens the SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

// OpenMemory creates an in-memory database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every pooled connection would get its own empty in-memory
	// database, so pin the pool to one.
	sqlDB.SetMaxOpenConns(1)
	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS lesson_completions (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    lesson_id TEXT NOT NULL,
    school_id TEXT NOT NULL DEFAULT '',
    class TEXT NOT NULL DEFAULT '',
    section TEXT NOT NULL DEFAULT '',
    resident_id TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_completions_lesson ON lesson_completions(lesson_id);
CREATE INDEX IF NOT EXISTS idx_completions_school ON lesson_completions(school_id);
CREATE INDEX IF NOT EXISTS idx_completions_timestamp ON lesson_completions(timestamp);

CREATE TABLE IF NOT EXISTS prop_updates (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    prop_id TEXT NOT NULL,
    status TEXT NOT NULL,
    resident_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prop_updates_prop ON prop_updates(prop_id);
CREATE INDEX IF NOT EXISTS idx_prop_updates_timestamp ON prop_updates(timestamp);
`
