package journal

import (
	"fmt"
	"os"

	"medilog/internal/infra/journal/memory"
	"medilog/internal/infra/journal/postgres"
	"medilog/internal/infra/journal/sqlite"
)

// Open selects a Journal implementation using environment variables.
// Defaults to sqlite when unset.
//
//	MEDILOG_JOURNAL_DRIVER: memory|sqlite|postgres (default sqlite)
//	MEDILOG_JOURNAL_SQLITE_PATH: path to sqlite file (default ./medilog-journal.db)
//	MEDILOG_JOURNAL_POSTGRES_DSN: postgres DSN when driver=postgres
func Open() (Journal, error) {
	driver := os.Getenv("MEDILOG_JOURNAL_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		path := os.Getenv("MEDILOG_JOURNAL_SQLITE_PATH")
		return sqlite.New(path)
	case DriverPostgres:
		dsn := os.Getenv("MEDILOG_JOURNAL_POSTGRES_DSN")
		return postgres.New(dsn)
	default:
		return nil, fmt.Errorf("unknown journal driver %s", driver)
	}
}

// NewMemory returns an in-memory journal suitable for tests.
func NewMemory() Journal { return memory.New() }
