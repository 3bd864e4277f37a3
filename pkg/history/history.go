/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package history persists run reports to a local SQLite database so
// past CI runs on a machine can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yarneo/kokoro-ios-runner/pkg/runner"
)

// ErrRunNotFound indicates no recorded run matched the given ID.
var ErrRunNotFound = stderrors.New("run not found")

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Entry is one row of the history listing.
type Entry struct {
	RunID     string        `json:"runId" yaml:"runId"`
	Action    string        `json:"action" yaml:"action"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Succeeded bool          `json:"succeeded" yaml:"succeeded"`
}

// DefaultPath returns the history database location under the user
// config dir, creating parent directories as needed.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	dir := filepath.Join(base, "kokoro-ios-runner")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create history dir: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (and if needed initializes) the history database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run report.
func (s *Store) Record(ctx context.Context, report runner.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, action, started_at, duration_ms, succeeded, report) VALUES (?, ?, ?, ?, ?, ?)",
		report.RunID, report.Action, report.StartedAt.Unix(),
		report.Duration.Milliseconds(), boolToInt(report.Succeeded), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first. A non-positive limit
// returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT run_id, action, started_at, duration_ms, succeeded FROM runs ORDER BY started_at DESC, run_id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedUnix, durationMs, succeeded int64
		if err := rows.Scan(&e.RunID, &e.Action, &startedUnix, &durationMs, &succeeded); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.StartedAt = time.Unix(startedUnix, 0)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.Succeeded = succeeded != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return entries, nil
}

// Get returns the full report for a recorded run.
func (s *Store) Get(ctx context.Context, runID string) (runner.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM runs WHERE run_id = ?", runID).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return runner.Report{}, ErrRunNotFound
	}
	if err != nil {
		return runner.Report{}, fmt.Errorf("failed to query run %q: %w", runID, err)
	}

	var report runner.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return runner.Report{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
