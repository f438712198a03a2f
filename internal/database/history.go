package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/catalogscan/catalogscan/internal/model"
)

// Run statuses stored in runs.status.
const (
	RunRunning  = "running"
	RunComplete = "complete"
	RunAborted  = "aborted"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores run and per-term results.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string, opts Options) (*HistoryDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS term_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		term_year TEXT NOT NULL,
		term_season TEXT NOT NULL,
		term_code TEXT NOT NULL,
		term_name TEXT NOT NULL,
		status TEXT NOT NULL,
		discovered INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		rate_limited INTEGER NOT NULL DEFAULT 0,
		hard_blocked INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		requests INTEGER NOT NULL DEFAULT 0,
		advisory INTEGER NOT NULL DEFAULT 0,
		digest TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_term_results_run ON term_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_term_results_code ON term_results(term_code);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// BeginRun records the start of a run.
func (h *HistoryDB) BeginRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)`,
		runID, formatTime(startedAt), RunRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun marks a run complete or aborted.
func (h *HistoryDB) FinishRun(ctx context.Context, runID string, finishedAt time.Time, aborted bool) error {
	status := RunComplete
	if aborted {
		status = RunAborted
	}
	res, err := h.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ? WHERE id = ?`,
		formatTime(finishedAt), status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordTerm stores one term's result under runID.
func (h *HistoryDB) RecordTerm(ctx context.Context, runID string, r model.TermResult) error {
	query := `
	INSERT INTO term_results (
		run_id, term_year, term_season, term_code, term_name, status,
		discovered, succeeded, failed, rate_limited, hard_blocked, skipped,
		requests, advisory, digest, error, started_at, duration_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.ExecContext(ctx, query,
		runID, r.Term.Year, string(r.Term.Season), r.Code, r.Name, string(r.Status),
		r.Discovered, r.Succeeded, r.Failed, r.RateLimited, r.HardBlocked, r.Skipped,
		r.Requests, r.Advisory, r.Digest, r.Error, formatTime(r.StartedAt), r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert term result: %w", err)
	}
	return nil
}

// LastTermStatus returns the most recently recorded status for termCode.
// The boolean is false when the term has never been recorded.
func (h *HistoryDB) LastTermStatus(ctx context.Context, termCode string) (model.TermStatus, bool, error) {
	var status string
	err := h.db.QueryRowContext(ctx,
		`SELECT status FROM term_results WHERE term_code = ? ORDER BY id DESC LIMIT 1`,
		termCode,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query term status: %w", err)
	}
	return model.TermStatus(status), true, nil
}

// RunRecord is one row of the runs table with its term count.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running or after a crash
	Status     string
	Terms      int
}

// ListRuns returns up to limit runs, newest first.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
	SELECT r.id, r.started_at, COALESCE(r.finished_at, ''), r.status, COUNT(t.id)
	FROM runs r LEFT JOIN term_results t ON t.run_id = r.id
	GROUP BY r.id
	ORDER BY r.started_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			rec               RunRecord
			started, finished string
		)
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Status, &rec.Terms); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finished)
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// TermResults returns the term results of one run in processing order.
func (h *HistoryDB) TermResults(ctx context.Context, runID string) ([]model.TermResult, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT term_year, term_season, term_code, term_name, status,
		discovered, succeeded, failed, rate_limited, hard_blocked, skipped,
		requests, advisory, COALESCE(digest, ''), COALESCE(error, ''), started_at, duration_ms
	FROM term_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query term results: %w", err)
	}
	defer rows.Close()

	var results []model.TermResult
	for rows.Next() {
		var (
			r          model.TermResult
			season     string
			status     string
			started    string
			durationMS int64
		)
		if err := rows.Scan(
			&r.Term.Year, &season, &r.Code, &r.Name, &status,
			&r.Discovered, &r.Succeeded, &r.Failed, &r.RateLimited, &r.HardBlocked, &r.Skipped,
			&r.Requests, &r.Advisory, &r.Digest, &r.Error, &started, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan term result: %w", err)
		}
		r.Term.Season = model.Season(season)
		r.Status = model.TermStatus(status)
		r.Written = r.Digest != ""
		r.StartedAt = parseTime(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
