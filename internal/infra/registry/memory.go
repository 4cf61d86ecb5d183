package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"limscore/pkg/domain"
)

// Memory is an in-process Client used by tests and offline runs. It enforces
// the same invariants the vendor system does (one lot per (kit, lot number)
// pair, expiry must be in the future at creation time) and reports
// violations with vendor-style free text so the conflict classification path
// is exercised end to end.
type Memory struct {
	mu       sync.Mutex
	entities map[string]domain.EntityRecord
	order    []string                             // entity listing order
	kits     map[string]domain.ReagentKitRef      // keyed by name
	lots     map[string][]domain.ReagentLotRecord // keyed by kit ID
	projects map[string]domain.ProjectRecord
	projOrd  []string
	archives map[string][]byte
	now      func() time.Time
}

// NewMemory returns an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		entities: make(map[string]domain.EntityRecord),
		kits:     make(map[string]domain.ReagentKitRef),
		lots:     make(map[string][]domain.ReagentLotRecord),
		projects: make(map[string]domain.ProjectRecord),
		archives: make(map[string][]byte),
		now:      time.Now,
	}
}

// SetClock overrides the clock used for expiry validation (tests).
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

// AddEntity seeds an entity record, assigning an identifier if absent.
func (m *Memory) AddEntity(e domain.EntityRecord) domain.EntityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.entities[e.ID] = e
	m.order = append(m.order, e.ID)
	return e
}

// AddKit seeds a reagent kit, assigning an identifier if absent.
func (m *Memory) AddKit(kit domain.ReagentKitRef) domain.ReagentKitRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kit.ID == "" {
		kit.ID = uuid.NewString()
	}
	m.kits[kit.Name] = kit
	return kit
}

// AddProject seeds a project record, assigning an identifier if absent.
func (m *Memory) AddProject(p domain.ProjectRecord) domain.ProjectRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.projects[p.ID] = p
	m.projOrd = append(m.projOrd, p.ID)
	return p
}

// PutArchive seeds an archive payload under handle.
func (m *Memory) PutArchive(handle string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[handle] = data
}

// ListEntities returns all seeded entities in insertion order; scope is
// accepted for interface parity and ignored.
func (m *Memory) ListEntities(_ context.Context, _ string) ([]domain.EntityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EntityRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entities[id])
	}
	return out, nil
}

// GetEntity returns the entity with id.
func (m *Memory) GetEntity(_ context.Context, id string) (domain.EntityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok {
		return domain.EntityRecord{}, domain.NotFoundError{Resource: "entity", Key: id}
	}
	return e, nil
}

// LookupKit resolves a kit by its natural name key.
func (m *Memory) LookupKit(_ context.Context, name string) (domain.ReagentKitRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kit, ok := m.kits[name]
	if !ok {
		return domain.ReagentKitRef{}, domain.NotFoundError{Resource: "kit", Key: name}
	}
	return kit, nil
}

// LookupLot resolves a lot by kit and lot number.
func (m *Memory) LookupLot(_ context.Context, kitID, lotNumber string) (domain.ReagentLotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lot := range m.lots[kitID] {
		if lot.LotNumber == lotNumber {
			return lot, nil
		}
	}
	return domain.ReagentLotRecord{}, domain.NotFoundError{Resource: "lot", Key: kitID + "/" + lotNumber}
}

// ListLots returns the full lot listing for a kit.
func (m *Memory) ListLots(_ context.Context, kitID string) ([]domain.ReagentLotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ReagentLotRecord(nil), m.lots[kitID]...), nil
}

// CreateLot creates a lot, enforcing one record per (kit, lot number) and
// rejecting expiry dates already in the past. Violations are reported the way
// the vendor system reports them, as free text, then classified.
func (m *Memory) CreateLot(_ context.Context, lot domain.ReagentLotRecord) (domain.ReagentLotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.lots[lot.Kit.ID] {
		if existing.LotNumber == lot.LotNumber {
			msg := fmt.Sprintf("reagent lot with number '%s' already exists for this kit", lot.LotNumber)
			return domain.ReagentLotRecord{}, classifyCreateMessage(msg, "lot", lot.Kit.ID+"/"+lot.LotNumber)
		}
	}
	if lot.Expiry.Before(m.now()) {
		msg := "cannot create reagent lot: expiry date is in the past"
		return domain.ReagentLotRecord{}, classifyCreateMessage(msg, "lot", lot.Kit.ID+"/"+lot.LotNumber)
	}
	lot.ID = uuid.NewString()
	if lot.Status == "" {
		lot.Status = domain.LotStatusActive
	}
	m.lots[lot.Kit.ID] = append(m.lots[lot.Kit.ID], lot)
	return lot, nil
}

// ListProjects returns all seeded projects in insertion order.
func (m *Memory) ListProjects(_ context.Context) ([]domain.ProjectRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ProjectRecord, 0, len(m.projOrd))
	for _, id := range m.projOrd {
		out = append(out, m.projects[id])
	}
	return out, nil
}

// RenameProject updates a project's display name.
func (m *Memory) RenameProject(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.NotFoundError{Resource: "project", Key: id}
	}
	p.Name = name
	m.projects[id] = p
	return nil
}

// FetchArchive returns the archive payload seeded under handle.
func (m *Memory) FetchArchive(_ context.Context, handle string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.archives[handle]
	if !ok {
		return nil, domain.NotFoundError{Resource: "file", Key: handle}
	}
	return append([]byte(nil), data...), nil
}

// classifyCreateMessage maps vendor-style free text onto the typed error
// taxonomy via the shared marker tables.
func classifyCreateMessage(msg, resource, key string) error {
	switch {
	case IsDuplicateMessage(msg):
		return domain.ConflictError{Resource: resource, Key: key, Message: msg}
	case IsTerminalMessage(msg):
		return domain.TerminalError{Reason: msg}
	default:
		return domain.TransportError{Op: "create " + resource, Err: fmt.Errorf("%s", strings.TrimSpace(msg))}
	}
}

var _ Client = (*Memory)(nil)
