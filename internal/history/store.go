package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run summarizes one completed analysis.
type Run struct {
	ID               string
	Accession        string
	Root             string
	StartedAt        time.Time
	FinishedAt       time.Time
	Bulk             bool
	NewPaths         int
	StalePaths       int
	KeptPaths        int
	Records          int
	JoinedRows       int
	ResultRows       int
	EncodingWarnings int
	SkippedArtifacts int
	Files            int
	TotalMB          float64
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record saves a finished run. A run without an ID is assigned one.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO runs (
			id, accession, root, started_at, finished_at, bulk,
			new_paths, stale_paths, kept_paths, records, joined_rows, result_rows,
			encoding_warnings, skipped_artifacts, files, total_mb
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Accession,
			run.Root,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.FinishedAt.UTC().Format(time.RFC3339Nano),
			boolToInt(run.Bulk),
			run.NewPaths,
			run.StalePaths,
			run.KeptPaths,
			run.Records,
			run.JoinedRows,
			run.ResultRows,
			run.EncodingWarnings,
			run.SkippedArtifacts,
			run.Files,
			run.TotalMB,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

const selectRuns = `SELECT id, accession, root, started_at, finished_at, bulk,
	new_paths, stale_paths, kept_paths, records, joined_rows, result_rows,
	encoding_warnings, skipped_artifacts, files, total_mb FROM runs`

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	return s.query(ctx, selectRuns+" ORDER BY started_at DESC LIMIT ?", limit)
}

// ForAccession returns up to limit runs for one accession, newest first.
func (s *Store) ForAccession(ctx context.Context, accession string, limit int) ([]Run, error) {
	return s.query(ctx, selectRuns+" WHERE accession = ? ORDER BY started_at DESC LIMIT ?", accession, limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Run, error) {
	var runs []Run
	err := retryOnBusy(ctx, func() error {
		runs = nil
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run               Run
		started, finished string
		bulk              int
	)
	if err := rows.Scan(
		&run.ID,
		&run.Accession,
		&run.Root,
		&started,
		&finished,
		&bulk,
		&run.NewPaths,
		&run.StalePaths,
		&run.KeptPaths,
		&run.Records,
		&run.JoinedRows,
		&run.ResultRows,
		&run.EncodingWarnings,
		&run.SkippedArtifacts,
		&run.Files,
		&run.TotalMB,
	); err != nil {
		return Run{}, err
	}
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	run.Bulk = bulk != 0
	return run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
