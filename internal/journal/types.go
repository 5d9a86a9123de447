// Package journal provides a durable append-only log of service operations.
// It mirrors the audit stream into a queryable backend so an operator can
// answer "what changed, and when" after the fact without digging through
// timestamped backup files.
package journal

import (
	"medilog/internal/journal/core"
)

type (
	// Driver identifies a journal backend driver.
	Driver = core.Driver
	// Entry is one journaled service operation.
	Entry = core.Entry
	// Journal is the interface for journal backends.
	Journal = core.Journal
)

const (
	// DriverMemory keeps entries in process memory (tests / ephemeral).
	DriverMemory = core.DriverMemory
	// DriverSQLite appends to an embedded sqlite file.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres appends to a PostgreSQL server.
	DriverPostgres = core.DriverPostgres
)
