// Package sqlite provides the default journal backend: an embedded sqlite
// file next to the rest of the installation's state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"medilog/internal/journal/core"
)

// Journal implements core.Journal on a single sqlite table.
type Journal struct {
	db   *sql.DB
	path string
}

// New opens or creates the journal database at path (default
// ./medilog-journal.db).
func New(path string) (*Journal, error) {
	if path == "" {
		path = "medilog-journal.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS journal (
		id         TEXT PRIMARY KEY,
		operation  TEXT NOT NULL,
		success    INTEGER NOT NULL,
		entity     TEXT NOT NULL DEFAULT '',
		subject_id TEXT NOT NULL DEFAULT '',
		detail     TEXT NOT NULL DEFAULT '',
		at         TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{db: db, path: path}, nil
}

func (j *Journal) Append(ctx context.Context, entry core.Entry) error {
	success := 0
	if entry.Success {
		success = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO journal (id, operation, success, entity, subject_id, detail, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Operation, success, entry.Entity, entry.SubjectID, entry.Detail, entry.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]core.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, operation, success, entity, subject_id, detail, at FROM journal ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []core.Entry
	for rows.Next() {
		var e core.Entry
		var success int
		var at string
		if err := rows.Scan(&e.ID, &e.Operation, &success, &e.Entity, &e.SubjectID, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Success = success != 0
		if ts, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) Close() error { return j.db.Close() }
