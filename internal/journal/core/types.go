// Package core defines the abstractions shared by the journal backends.
// Higher layers depend on the wrapper package journal instead.
package core

import (
	"context"
	"time"
)

// Driver identifies a concrete journal backend implementation.
type Driver string

const (
	// DriverMemory keeps entries in process memory (tests / ephemeral).
	DriverMemory Driver = "memory"
	// DriverSQLite appends to an embedded sqlite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres appends to a PostgreSQL server.
	DriverPostgres Driver = "postgres"
)

// Entry is one journaled service operation.
type Entry struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Success   bool      `json:"success"`
	Entity    string    `json:"entity,omitempty"`
	SubjectID string    `json:"subject_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Journal is an append-only operation log. Append failures never block the
// operation that produced the entry; callers log and move on.
type Journal interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
