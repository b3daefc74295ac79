// Package export writes finished scans to a SQLite report file. The file is
// output only; bigdirs never reads it back.
package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/riadafridishibly/bigdirs/scanner"
)

type Exporter struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root TEXT NOT NULL,
    threshold INTEGER NOT NULL,
    state TEXT NOT NULL,
    total_size INTEGER NOT NULL,
    dirs INTEGER NOT NULL,
    files INTEGER NOT NULL,
    errors INTEGER NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    rank INTEGER NOT NULL,
    path TEXT NOT NULL,
    size INTEGER NOT NULL,
    PRIMARY KEY (scan_id, rank)
);

CREATE TABLE IF NOT EXISTS scan_errors (
    scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    op TEXT NOT NULL,
    class TEXT NOT NULL,
    message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_path ON results(path);
`

// Open creates (or appends to) the report database at path.
func Open(path string) (*Exporter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("export path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Exporter{db: db}, nil
}

func (e *Exporter) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// WriteSession stores a finished session with its results and kept errors in
// one transaction and returns the new scan id.
func (e *Exporter) WriteSession(ctx context.Context, s *scanner.Session) (int64, error) {
	if !s.State().Terminal() {
		return 0, fmt.Errorf("scan of %s is still %s", s.Root(), s.State())
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	sum := s.Summary()
	res, err := tx.ExecContext(ctx, `
        INSERT INTO scans (root, threshold, state, total_size, dirs, files, errors, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Root(), s.Threshold(), s.State().String(), sum.TotalSize, sum.Dirs, sum.Files, sum.Errors,
		sum.StartedAt.UnixNano(), sum.FinishedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("scan id: %w", err)
	}

	if err := insertResults(ctx, tx, id, s.Snapshot()); err != nil {
		return 0, err
	}
	if err := insertErrors(ctx, tx, id, s.Errors()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit export: %w", err)
	}

	log.Debugf("Exported scan %d of %s", id, s.Root())
	return id, nil
}

func insertResults(ctx context.Context, tx *sql.Tx, scanID int64, results scanner.ResultSet) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results (scan_id, rank, path, size) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx, scanID, i+1, r.Path, r.Size); err != nil {
			return fmt.Errorf("insert result %s: %w", r.Path, err)
		}
	}
	return nil
}

func insertErrors(ctx context.Context, tx *sql.Tx, scanID int64, errs []error) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scan_errors (scan_id, path, op, class, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare errors: %w", err)
	}
	defer stmt.Close()

	for _, scanErr := range errs {
		var path, op string
		var entryErr *scanner.EntryError
		if errors.As(scanErr, &entryErr) {
			path, op = entryErr.Path, entryErr.Op
		}
		if _, err := stmt.ExecContext(ctx, scanID, path, op, scanner.ClassName(scanErr), scanErr.Error()); err != nil {
			return fmt.Errorf("insert error for %s: %w", path, err)
		}
	}
	return nil
}

// Count returns the number of rows in one of the report tables.
func (e *Exporter) Count(ctx context.Context, table string) (int64, error) {
	switch table {
	case "scans", "results", "scan_errors":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int64
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
