// Package registry abstracts the external record system the engine
// reconciles against. The vendor's HTTP/XML protocol is out of scope; this
// package only names the GET/POST/PUT-style record operations the engine
// consumes, and ships an in-memory implementation for tests and offline runs.
package registry

import (
	"context"

	"limscore/pkg/domain"
)

// Client is the record-operation surface the engine depends on. Lookups
// return domain.NotFoundError on a clean miss; CreateLot returns
// domain.ConflictError when the (kit, lot number) pair already exists and
// domain.TerminalError for data problems no retry can fix. Anything else is
// a transport failure.
type Client interface {
	ListEntities(ctx context.Context, scope string) ([]domain.EntityRecord, error)
	GetEntity(ctx context.Context, id string) (domain.EntityRecord, error)

	LookupKit(ctx context.Context, name string) (domain.ReagentKitRef, error)
	LookupLot(ctx context.Context, kitID, lotNumber string) (domain.ReagentLotRecord, error)
	// ListLots returns the full unfiltered lot listing for a kit; the
	// conflict-recovery path searches this rather than repeating the
	// narrower LookupLot, which may itself be unreliable.
	ListLots(ctx context.Context, kitID string) ([]domain.ReagentLotRecord, error)
	CreateLot(ctx context.Context, lot domain.ReagentLotRecord) (domain.ReagentLotRecord, error)

	ListProjects(ctx context.Context) ([]domain.ProjectRecord, error)
	RenameProject(ctx context.Context, id, name string) error

	// FetchArchive retrieves the opaque compressed container of specimen
	// files referenced by handle.
	FetchArchive(ctx context.Context, handle string) ([]byte, error)
}
