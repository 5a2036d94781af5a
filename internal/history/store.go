// Package history persists job run outcomes in SQLite so operators can
// inspect what a schedule actually did. It records run history only;
// schedules themselves are rebuilt from configuration on every start.
// Uses modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/flemzord/cadence/internal/schedule"
)

const defaultBusyTimeout = 5000

// Compile-time interface guard.
var _ schedule.Recorder = (*Store)(nil)

// Store is a SQLite-backed run-history store implementing
// schedule.Recorder.
type Store struct {
	db *sql.DB
}

// Run is one persisted attempt, shaped for the admin API.
type Run struct {
	ID        int64            `json:"id"`
	Job       string           `json:"job"`
	Outcome   schedule.Outcome `json:"outcome"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	Err       string           `json:"error,omitempty"`
}

// Open opens (or creates) the database at path and migrates the schema.
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes).
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements schedule.Recorder.
func (s *Store) Record(ctx context.Context, ev schedule.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (job, outcome, started_at, duration_ms, error)
		VALUES (?, ?, ?, ?, ?)`,
		ev.Job, string(ev.Outcome), ev.StartedAt.UnixNano(),
		ev.Duration.Milliseconds(), ev.Err,
	)
	if err != nil {
		return fmt.Errorf("history: record run: %w", err)
	}
	return nil
}

// Recent returns the n most recent runs for a job, newest first.
func (s *Store) Recent(ctx context.Context, job string, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job, outcome, started_at, duration_ms, error
		FROM runs
		WHERE job = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`,
		job, n,
	)
	if err != nil {
		return nil, fmt.Errorf("history: recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			outcome    string
			startedAt  int64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Job, &outcome, &startedAt, &durationMS, &r.Err); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Outcome = schedule.Outcome(outcome)
		r.StartedAt = time.Unix(0, startedAt).UTC()
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}

	return runs, nil
}

// Prune deletes runs that started before cutoff and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM runs WHERE started_at < ?",
		cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: prune rows affected: %w", err)
	}
	return n, nil
}
