// Package store provides optional SQLite-backed snapshot persistence for
// a session's buffer — the "storage backends" external collaborator
// spec.md §1 leaves out of the core module and §7 treats as best-effort:
// a failed Load or Save is logged and never aborts the live session.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/singleflight"

	"collabotp/pkg/chunk"
	"collabotp/pkg/logging"
	"collabotp/pkg/otext"
)

// Snapshot is the persisted form of one document: its plain text, with no
// per-character authorship (the teacher's PersistedDocument drops
// authorship too — a loaded snapshot seeds a fresh buffer as an
// unattributed chunk, the same way the teacher loads plain text into a
// fresh ot.Document with no history).
type Snapshot struct {
	ID   string
	Text string
}

// Buffer builds a fresh otext.Buffer seeded with s.Text as a single
// unattributed chunk (author 0), the buffer a session starts from when a
// document is restored from storage rather than created new.
func (s *Snapshot) Buffer() *otext.Buffer {
	return otext.NewBufferFromChunk(chunk.New(0, s.Text))
}

// Store wraps a SQLite connection holding one row per document id.
type Store struct {
	db  *sql.DB
	log *logging.Logger

	loadGroup singleflight.Group
}

// New opens uri (a sqlite3 DSN, e.g. "file:collabd.db") and applies any
// pending migrations.
func New(uri string, log *logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", uri)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns id's persisted snapshot, or nil if none exists. Concurrent
// Load calls for the same id that arrive while a query is already in
// flight share its result rather than issuing redundant queries — the
// cold-start stampede a freshly-restarted demo server sees when many
// clients reconnect to the same document at once.
func (s *Store) Load(ctx context.Context, id string) (*Snapshot, error) {
	v, err, _ := s.loadGroup.Do(id, func() (any, error) {
		return s.load(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	snap, _ := v.(*Snapshot)
	return snap, nil
}

func (s *Store) load(ctx context.Context, id string) (*Snapshot, error) {
	var text string
	err := s.db.QueryRowContext(ctx, "SELECT text FROM document WHERE id = ?", id).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	return &Snapshot{ID: id, Text: text}, nil
}

// Save upserts id's current text, timestamped at unixNow (the caller's
// clock: Save never reads the clock itself — the package's one wall-clock
// read is in migrations.go's migrate, recording when each schema
// migration ran).
func (s *Store) Save(ctx context.Context, id, text string, unixNow int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document (id, text, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			updated_at = excluded.updated_at
	`, id, text, unixNow)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	return nil
}

// Count returns the total number of persisted documents, for the demo
// server's stats endpoint (the teacher's Stats.DatabaseSize).
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Delete removes id's persisted snapshot, if any.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM document WHERE id = ?", id); err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	return nil
}
