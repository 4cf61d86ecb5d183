// Package domain defines the core value types, error taxonomy, and run
// reporting primitives used by limscore.
package domain

import (
	"strings"
	"time"
)

// ProjectRef identifies the owning project of an entity.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri,omitempty"`
}

// EntityRecord is an addressable sample or analyte record in the external
// system. Records are only ever constructed from external lookups; the engine
// never fabricates identifiers.
type EntityRecord struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Location string      `json:"location,omitempty"` // container coordinate, e.g. "A:3"
	Project  *ProjectRef `json:"project,omitempty"`
}

// SpecimenFile is a raw result file pulled out of a run archive. The origin
// name may carry a path-like prefix from the archive layout.
type SpecimenFile struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// BaseFilename returns the file name with any path prefix stripped.
func (f SpecimenFile) BaseFilename() string {
	name := f.Name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Basename returns the file name with path prefix and extension stripped.
func (f SpecimenFile) Basename() string {
	name := f.BaseFilename()
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// Extension returns the file extension including the leading dot, or "".
func (f SpecimenFile) Extension() string {
	name := f.BaseFilename()
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

// SpecimenBundle groups the files sharing one basename (a result file and its
// companion text files) into a single logical unit.
type SpecimenBundle struct {
	Basename string         `json:"basename"`
	Files    []SpecimenFile `json:"files"`
}

// Extensions lists the member file extensions in bundle order.
func (b SpecimenBundle) Extensions() []string {
	exts := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		exts = append(exts, f.Extension())
	}
	return exts
}

// MatchResult pairs an entity with the bundle claimed for it, if any.
type MatchResult struct {
	Entity EntityRecord    `json:"entity"`
	Bundle *SpecimenBundle `json:"bundle,omitempty"`
}

// Matched reports whether a bundle was claimed for the entity.
func (m MatchResult) Matched() bool { return m.Bundle != nil }

// ManifestItem is one matched bundle together with its owning entity.
type ManifestItem struct {
	Bundle SpecimenBundle `json:"bundle"`
	Entity EntityRecord   `json:"entity"`
}

// ProjectManifest aggregates the matched bundles destined for one project
// package. Items keep the insertion order of the originating match list.
type ProjectManifest struct {
	Project ProjectRef     `json:"project"`
	Items   []ManifestItem `json:"items"`
}

// FileCount returns the total number of files across all items.
func (m ProjectManifest) FileCount() int {
	n := 0
	for _, it := range m.Items {
		n += len(it.Bundle.Files)
	}
	return n
}

// ArchiveName is the deterministic archive file name for the manifest.
func (m ProjectManifest) ArchiveName() string {
	return m.Project.Name + "_sequencing_files.zip"
}

// ReagentKitRef identifies a reagent kit by its natural name key.
type ReagentKitRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LotStatus enumerates reagent lot states recognised by the external system.
type LotStatus string

// Lot statuses carried on created or resolved lot records.
const (
	LotStatusActive   LotStatus = "ACTIVE"
	LotStatusArchived LotStatus = "ARCHIVED"
)

// ReagentLotRecord is an externally keyed reagent lot. ID is assigned only
// after a successful creation or lookup; at most one record may exist per
// (kit, lot number) pair.
type ReagentLotRecord struct {
	ID        string        `json:"id,omitempty"`
	Kit       ReagentKitRef `json:"kit"`
	LotNumber string        `json:"lot_number"`
	Expiry    time.Time     `json:"expiry"`
	Status    LotStatus     `json:"status,omitempty"`
}

// Consumable describes one physical labware item declared by run metadata.
// CompactExpiry is the 4-character month/year code printed on the consumable.
type Consumable struct {
	Name          string `json:"name"`
	Barcode       string `json:"barcode,omitempty"`
	PartNumber    string `json:"part_number,omitempty"`
	LotNumber     string `json:"lot_number"`
	CompactExpiry string `json:"expiry"`
}

// RunMetadata is the structured run record consumed by the ingestion flow.
// Fields beyond the recognised configuration surface are passed through
// opaquely in Extra.
type RunMetadata struct {
	RunName      string            `json:"run_name"`
	ProtocolName string            `json:"protocol_name"`
	RunStatus    string            `json:"run_status"`
	SampleIDs    []string          `json:"samples"` // declared identity list, order-preserving
	IndexStrip   string            `json:"index_strip"`
	Consumables  []Consumable      `json:"consumables,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// DeclaresSample reports whether name is on the run's declared identity list.
func (r RunMetadata) DeclaresSample(name string) bool {
	for _, id := range r.SampleIDs {
		if id == name {
			return true
		}
	}
	return false
}

// IndexAssignment binds one entity to a logical dual-index code derived from
// the carrier ordinal and slot position.
type IndexAssignment struct {
	Entity   EntityRecord `json:"entity"`
	Carrier  string       `json:"carrier"`  // carrier barcode
	Ordinal  int          `json:"ordinal"`  // parsed carrier ordinal, 1..24
	Slot     int          `json:"slot"`     // carrier-relative position, 1..8
	Code     string       `json:"code"`     // logical dual-index code
	Location string       `json:"location"` // container coordinate that drove the sort
}

// ProjectRecord is a project as listed by the external system, used by the
// rename review flow.
type ProjectRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OpenDate string `json:"open_date,omitempty"`
	URI      string `json:"uri,omitempty"`
}
