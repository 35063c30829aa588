// Package sqlite provides the run ledger: a SQLite record of every
// pipeline run and its per-chart outcomes.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO. The schema is managed through versioned
// migrations embedded from the migrations/ directory. By default the
// database lives at ~/.chartpress/data/ledger.db.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arcline-labs/chartpress/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.RunLedger = (*Ledger)(nil)

// Ledger is a SQLite-backed run ledger.
type Ledger struct {
	db   *sql.DB
	path string
}

// NewLedger opens (and migrates) the ledger database under dataDir.
// If dataDir is empty, defaults to ~/.chartpress/data.
func NewLedger(dataDir string) (*Ledger, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".chartpress", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	// WAL mode for better concurrency between writer and readers.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	l := &Ledger{db: db, path: dbPath}
	if err := l.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// Record stores a finished run and its per-chart outcomes atomically.
func (l *Ledger) Record(ctx context.Context, report *domain.RunReport) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, spreadsheet_id, date_key, started_at, finished_at, succeeded, failed, skipped_stores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.SpreadsheetID,
		report.DateKey,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		report.Succeeded(),
		report.Failures(),
		strings.Join(report.SkippedStores, ","),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range report.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_results (run_id, store, chart_title, filename, outcome, reason)
			VALUES (?, ?, ?, ?, ?, ?)`,
			report.ID, r.Store, r.ChartTitle, r.Filename, string(r.Outcome), r.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", r.Filename, err)
		}
	}

	return tx.Commit()
}

// List returns the most recent runs, newest first.
func (l *Ledger) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, spreadsheet_id, date_key, started_at, finished_at, succeeded, failed
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var (
			s                     domain.RunSummary
			startedAt, finishedAt string
		)
		if err := rows.Scan(&s.ID, &s.SpreadsheetID, &s.DateKey, &startedAt, &finishedAt, &s.Succeeded, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = parseStoredTime(startedAt)
		s.FinishedAt = parseStoredTime(finishedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// parseStoredTime parses an RFC3339 timestamp column. Returns zero time
// if the value is empty or invalid.
func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// migrate applies any unapplied *.up.sql files in version order.
func (l *Ledger) migrate(fsys embed.FS) error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := l.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := l.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
