// Package history persists verification runs in SQLite so past results can
// be listed per run and per script.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/proofrunner/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunSummary is one stored run.
type RunSummary struct {
	ID        string
	WorkDir   string
	Verifier  string
	StartedAt time.Time
	Duration  time.Duration
	Passed    bool
	Total     int
	PassCount int
}

// ScriptRecord is one stored script outcome.
type ScriptRecord struct {
	RunID     string
	StartedAt time.Time
	Position  int
	Script    models.Script
	Passed    bool
	Reason    models.Reason
	ExitCode  *int // Nil when the verifier never ran
	Error     string
	Duration  time.Duration
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a run and all of its script outcomes atomically
func (s *Store) RecordRun(ctx context.Context, report *models.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, work_dir, verifier, started_at, duration_ms, passed) VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.WorkDir,
		report.Verifier,
		report.StartedAt.UTC().Format(timeLayout),
		report.Duration.Milliseconds(),
		report.Passed(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, o := range report.Outcomes {
		var exitCode sql.NullInt64
		var duration int64
		if o.Invocation != nil {
			exitCode = sql.NullInt64{Int64: int64(o.Invocation.ExitCode), Valid: true}
			duration = o.Invocation.Duration.Milliseconds()
		}
		var errText sql.NullString
		if o.Err != nil {
			errText = sql.NullString{String: o.Err.Error(), Valid: true}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO script_results (run_id, position, script, passed, reason, exit_code, error, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID, i, o.Script.String(), o.Passed, string(o.Reason), exitCode, errText, duration,
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", o.Script, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.work_dir, r.verifier, r.started_at, r.duration_ms, r.passed,
       COUNT(sr.position), COALESCE(SUM(CASE WHEN sr.passed THEN 1 ELSE 0 END), 0)
FROM runs r
LEFT JOIN script_results sr ON sr.run_id = r.id
GROUP BY r.id
ORDER BY r.started_at DESC, r.rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			run        RunSummary
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&run.ID, &run.WorkDir, &run.Verifier, &startedAt, &durationMS, &run.Passed, &run.Total, &run.PassCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunResults returns the script outcomes of one run in their original order
func (s *Store) RunResults(ctx context.Context, runID string) ([]ScriptRecord, error) {
	return s.queryScripts(ctx, `WHERE sr.run_id = ? ORDER BY sr.position ASC`, runID)
}

// ScriptHistory returns up to limit outcomes for a script, newest first
func (s *Store) ScriptHistory(ctx context.Context, script models.Script, limit int) ([]ScriptRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScripts(ctx, `WHERE sr.script = ? ORDER BY r.started_at DESC, r.rowid DESC LIMIT ?`, script.String(), limit)
}

func (s *Store) queryScripts(ctx context.Context, clause string, args ...interface{}) ([]ScriptRecord, error) {
	query := `
SELECT sr.run_id, r.started_at, sr.position, sr.script, sr.passed, sr.reason, sr.exit_code, sr.error, sr.duration_ms
FROM script_results sr
JOIN runs r ON r.id = sr.run_id
` + clause

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query script results: %w", err)
	}
	defer rows.Close()

	var records []ScriptRecord
	for rows.Next() {
		var (
			rec        ScriptRecord
			startedAt  string
			script     string
			reason     string
			exitCode   sql.NullInt64
			errText    sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&rec.RunID, &startedAt, &rec.Position, &script, &rec.Passed, &reason, &exitCode, &errText, &durationMS); err != nil {
			return nil, fmt.Errorf("scan script result: %w", err)
		}
		if rec.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		rec.Script = models.Script(script)
		rec.Reason = models.Reason(reason)
		if exitCode.Valid {
			code := int(exitCode.Int64)
			rec.ExitCode = &code
		}
		rec.Error = errText.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate script results: %w", err)
	}
	return records, nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}
