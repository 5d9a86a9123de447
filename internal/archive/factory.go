package archive

import (
	"context"
	"fmt"
	"os"

	"medilog/internal/infra/archive/fs"
	"medilog/internal/infra/archive/memory"
	"medilog/internal/infra/archive/s3"
)

// Open selects an archive.Store implementation using environment variables.
// The root argument is the data directory the filesystem driver writes its
// sibling backup copies into.
//
//	MEDILOG_ARCHIVE_DRIVER: fs|s3|memory (default fs)
//	(S3 specific variables documented in the s3 driver)
func Open(ctx context.Context, root string) (Store, error) {
	driver := os.Getenv("MEDILOG_ARCHIVE_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(root)
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}

// NewFilesystem constructs a filesystem-backed archive rooted at the provided
// directory. Returns Store so call sites depend on the interface.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}

// NewMemory returns an in-memory archive suitable for tests.
func NewMemory() Store { return memory.New() }

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return s3.NewMockForTests() }
