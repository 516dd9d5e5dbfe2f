package registry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the registry in a single SQLite table. This backend
// suits long-lived installations where the registry grows beyond what a
// flat JSON file handles comfortably.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS tokens (
	category TEXT NOT NULL,
	value    TEXT NOT NULL,
	suffix   TEXT NOT NULL,
	PRIMARY KEY (category, value)
);
CREATE INDEX IF NOT EXISTS idx_tokens_category ON tokens(category);
`

// NewSQLiteStore opens (or creates) the registry database at the given path.
// Use ":memory:" for an ephemeral database in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	// WAL + synchronous=NORMAL: the registry is rewritten after every
	// successful mutation, so write latency matters more than durability
	// of the very last transaction.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous: %w", err)
	}

	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: path}, nil
}

// Load reads every binding from the tokens table.
func (s *SQLiteStore) Load() (Snapshot, error) {
	rows, err := s.db.Query("SELECT category, value, suffix FROM tokens")
	if err != nil {
		return nil, fmt.Errorf("failed to query registry: %w", err)
	}
	defer rows.Close()

	snap := make(Snapshot)
	for rows.Next() {
		var category, value, suffix string
		if err := rows.Scan(&category, &value, &suffix); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}
		if snap[category] == nil {
			snap[category] = make(map[string]string)
		}
		snap[category][value] = suffix
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read registry rows: %w", err)
	}
	return snap, nil
}

// Save replaces the table contents with the given snapshot in one transaction.
func (s *SQLiteStore) Save(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin registry transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tokens"); err != nil {
		return fmt.Errorf("failed to clear registry: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO tokens (category, value, suffix) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare registry insert: %w", err)
	}
	defer stmt.Close()

	for category, values := range snap {
		for value, suffix := range values {
			if _, err := stmt.Exec(category, value, suffix); err != nil {
				return fmt.Errorf("failed to insert registry row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registry: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
