// Package history persists run summaries to a local SQLite database so
// past runs can be inspected from the CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/uispec/uispec/packages/core/runner"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	environment TEXT NOT NULL,
	browser     TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_scenarios (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	name        TEXT NOT NULL,
	file        TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	error       TEXT,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_scenarios_run ON run_scenarios(run_id);
`

// Run is one recorded test run.
type Run struct {
	ID          string
	StartedAt   time.Time
	Environment string
	Browser     string
	Passed      int
	Failed      int
	Skipped     int
	Duration    time.Duration
}

// Store reads and writes run history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record writes one run and its scenario outcomes atomically.
func (s *Store) Record(ctx context.Context, run Run, results []*runner.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, environment, browser, passed, failed, skipped, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Environment, run.Browser,
		run.Passed, run.Failed, run.Skipped, run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_scenarios (run_id, name, file, passed, skipped, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		for _, sc := range result.Results {
			var errText sql.NullString
			if sc.Error != nil {
				errText = sql.NullString{String: sc.Error.Error(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, run.ID, sc.Name, result.File,
				sc.Passed, sc.Skipped, errText, sc.Duration.Milliseconds()); err != nil {
				return fmt.Errorf("record scenario %q: %w", sc.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, environment, browser, passed, failed, skipped, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Environment, &r.Browser,
			&r.Passed, &r.Failed, &r.Skipped, &durationMs); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ScenarioRecord is one scenario outcome inside a recorded run.
type ScenarioRecord struct {
	Name     string
	File     string
	Passed   bool
	Skipped  bool
	Error    string
	Duration time.Duration
}

// Scenarios returns the scenario outcomes of one run.
func (s *Store) Scenarios(ctx context.Context, runID string) ([]ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, file, passed, skipped, error, duration_ms
		 FROM run_scenarios WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []ScenarioRecord
	for rows.Next() {
		var rec ScenarioRecord
		var errText sql.NullString
		var durationMs int64
		if err := rows.Scan(&rec.Name, &rec.File, &rec.Passed, &rec.Skipped,
			&errText, &durationMs); err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		rec.Error = errText.String
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
