package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store reads survey datasets from a SQLite file. It never writes.
type Store struct {
	db *sql.DB
}

// Open opens an existing SQLite database read-only.
//
// The connection is configured with:
//   - mode=ro so accidental writes fail at the driver
//   - a 5-second busy timeout for lock contention with the
//     data-preparation pipeline
//   - a single connection; the loader reads sequentially
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open dataset store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect dataset store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for ad-hoc inspection. Prefer
// LoadDataset.
func (s *Store) DB() *sql.DB {
	return s.db
}

// hasTable reports whether the file carries the named table.
func (s *Store) hasTable(name string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect schema for %q: %w", name, err)
	}
	return count > 0, nil
}
