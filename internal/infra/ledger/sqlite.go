// Package ledger keeps the durable record of delivered items. The ledger is a
// write-once membership set: rows are inserted with ignore-on-conflict and
// never updated or deleted.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the sqlite-backed dedup ledger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	// A single writer is all the relay ever needs.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS processed_items (
    id           TEXT PRIMARY KEY,
    type         TEXT NOT NULL,
    published_at TEXT
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure ledger schema: %w", err)
	}

	slog.Info("ledger opened", slog.String("path", path))
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether itemID has already been recorded.
func (s *Store) Exists(ctx context.Context, itemID string) (bool, error) {
	const query = `
SELECT 1
FROM processed_items
WHERE id = ?
LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, query, itemID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists: QueryRowContext: %w", err)
	}
	return true, nil
}

// Record inserts a ledger row for itemID. Inserting an already-recorded id is
// a no-op, so calling Record twice is safe.
func (s *Store) Record(ctx context.Context, itemID, itemType string, publishedAt *time.Time) error {
	const query = `
INSERT OR IGNORE INTO processed_items (id, type, published_at)
VALUES (?, ?, ?)`

	var published sql.NullString
	if publishedAt != nil {
		published = sql.NullString{String: publishedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, query, itemID, itemType, published); err != nil {
		return fmt.Errorf("Record: ExecContext: %w", err)
	}
	return nil
}
