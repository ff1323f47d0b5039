// Package history persists packaging run records so operators can audit what
// was shipped, when, and from which source revision.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one packaging run outcome for one root or function unit.
type Record struct {
	RunID     string
	Root      string
	Archive   string
	Status    string
	Entries   int
	Bytes     int64
	Commit    string
	StartedAt time.Time
	Duration  time.Duration
}

// Store is a SQLite-backed run-history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if necessary creates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseOpenFailed, err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("%w: %w", ErrInitializeSchemaFailed, err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		root TEXT NOT NULL,
		archive TEXT NOT NULL,
		status TEXT NOT NULL,
		entries INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		commit_sha TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a run record. A missing RunID is assigned a fresh UUID;
// the (possibly assigned) RunID is returned.
func (s *Store) Append(ctx context.Context, r Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, root, archive, status, entries, bytes, commit_sha, started_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.RunID, r.Root, r.Archive, r.Status, r.Entries, r.Bytes, r.Commit, r.StartedAt.Unix(), r.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecordAppendFailed, err)
	}
	return r.RunID, nil
}

// Recent returns the most recent run records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, root, archive, status, entries, bytes, commit_sha, started_at, duration_ms FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordQueryFailed, err)
	}
	defer rows.Close()

	return s.scanRecords(rows)
}

// ByRoot returns all run records for one root, newest first.
func (s *Store) ByRoot(ctx context.Context, root string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, root, archive, status, entries, bytes, commit_sha, started_at, duration_ms FROM runs WHERE root = ? ORDER BY id DESC",
		root,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordQueryFailed, err)
	}
	defer rows.Close()

	return s.scanRecords(rows)
}

func (s *Store) scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var startedUnix, durationMS int64

		err := rows.Scan(&r.RunID, &r.Root, &r.Archive, &r.Status, &r.Entries, &r.Bytes, &r.Commit, &startedUnix, &durationMS)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRecordScanFailed, err)
		}

		r.StartedAt = time.Unix(startedUnix, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordScanFailed, err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
