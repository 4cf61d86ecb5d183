// Package blob re-exports the archive store abstraction and provides the
// driver factory used at process startup.
package blob

import (
	"context"
	"fmt"
	"os"

	"limscore/internal/infra/blob/core"
	"limscore/internal/infra/blob/fs"
	"limscore/internal/infra/blob/memory"
	"limscore/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for archive blob backends.
	Store = core.Store
)

// Driver identifiers.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// Sentinel errors re-exported for callers.
var (
	ErrExists      = core.ErrExists
	ErrNotFound    = core.ErrNotFound
	ErrUnsupported = core.ErrUnsupported
)

// OpenFromEnv selects and constructs a store from LIMSCORE_ARCHIVE_DRIVER
// (default fs). The fs driver roots at LIMSCORE_ARCHIVE_ROOT.
func OpenFromEnv(ctx context.Context) (Store, error) {
	driver := Driver(os.Getenv("LIMSCORE_ARCHIVE_DRIVER"))
	switch driver {
	case "", DriverFilesystem:
		return fs.New(os.Getenv("LIMSCORE_ARCHIVE_ROOT"))
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", driver)
	}
}
