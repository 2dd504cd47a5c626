// Package runstore persists the run ledger: one record per pipeline run
// plus the per-stage outcomes, in a local SQLite database.
package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"trainpipe/internal/domain/entities"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for pipeline run records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger database at the given path, applying
// pragmas and the schema. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under the pipeline's strictly sequential writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun records a run and its stage outcomes in one transaction.
func (s *Store) SaveRun(ctx context.Context, run entities.RunRecord, stages []entities.StageRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, status, tracking_uri, experiment_name, max_iterations, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(run.Status),
		run.TrackingURI,
		run.ExperimentName,
		run.MaxIterations,
		string(run.Mode),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, stage := range stages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stages (run_id, seq, name, status, exit_code, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, stage.Seq, stage.Name, string(stage.Status), stage.ExitCode, stage.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stage %s: %w", stage.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]entities.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, status, tracking_uri, experiment_name, max_iterations, mode
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var runs []entities.RunRecord
	for rows.Next() {
		var run entities.RunRecord
		var started, finished, status, mode string
		if err := rows.Scan(&run.ID, &started, &finished, &status,
			&run.TrackingURI, &run.ExperimentName, &run.MaxIterations, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
		run.Status = entities.StageStatus(status)
		run.Mode = entities.TrainingMode(mode)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// StagesFor returns the stage outcomes of one run in execution order.
func (s *Store) StagesFor(ctx context.Context, runID string) ([]entities.StageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, name, status, exit_code, duration_ms
		FROM stages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var stages []entities.StageRecord
	for rows.Next() {
		var stage entities.StageRecord
		var status string
		if err := rows.Scan(&stage.RunID, &stage.Seq, &stage.Name, &status,
			&stage.ExitCode, &stage.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stage.Status = entities.StageStatus(status)
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stages: %w", err)
	}

	return stages, nil
}
