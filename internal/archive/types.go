// Package archive re-exports the backup archive abstractions so that the rest
// of the module depends on a single stable import path instead of the infra
// driver packages.
package archive

import (
	"medilog/internal/archive/core"
)

type (
	// Driver identifies an archive backend driver.
	Driver = core.Driver
	// PutOptions configures an archive write.
	PutOptions = core.PutOptions
	// Info describes a stored backup copy.
	Info = core.Info
	// Store is the interface for backup archive backends.
	Store = core.Store
)

const (
	// DriverFilesystem keeps timestamped backup copies next to the data files.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 ships backup copies to an S3-compatible bucket.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)
