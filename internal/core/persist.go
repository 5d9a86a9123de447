package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"medilog/internal/archive"
)

// backupTimestampLayout is an ISO-8601-like timestamp with colons replaced so
// the suffix is safe on every filesystem. Fixed microsecond width keeps
// backup names sortable.
const backupTimestampLayout = "2006-01-02T15-04-05.000000"

var backupNow = time.Now

// backupKey names a backup copy of the given file: the original file name
// plus a timestamp suffix.
func backupKey(path string) string {
	return filepath.Base(path) + "." + backupNow().Format(backupTimestampLayout)
}

// saveDocument persists a JSON document over the file at path. If the file
// already exists its current content is first copied into the archive under a
// timestamped key; that step is best-effort and never blocks the save. The
// write itself goes to a temp file in the same directory and is renamed into
// place so a crash mid-write cannot tear the primary file.
func saveDocument(ctx context.Context, ar archive.Store, path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if current, err := os.ReadFile(path); err == nil {
		// Failure to create the backup is swallowed; the save proceeds.
		_, _ = ar.Put(ctx, backupKey(path), bytes.NewReader(current), archive.PutOptions{ContentType: "application/json"})
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
