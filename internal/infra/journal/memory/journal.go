// Package memory provides an in-memory journal backend for tests and
// ephemeral environments.
package memory

import (
	"context"
	"sync"

	"medilog/internal/journal/core"
)

// Journal implements core.Journal in process memory.
type Journal struct {
	mu      sync.RWMutex
	entries []core.Entry
}

// New returns an empty in-memory journal.
func New() *Journal { return &Journal{} }

func (j *Journal) Append(ctx context.Context, entry core.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]core.Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	n := len(j.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]core.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}

func (j *Journal) Close() error { return nil }
