package registry

import (
	"context"
	"testing"
	"time"

	"limscore/pkg/domain"
)

func TestIsDuplicateMessage(t *testing.T) {
	for _, msg := range []string{
		"reagent lot with number 'L1' already exists for this kit",
		"Duplicate lot number",
		"field lot_number must be unique",
		"value is not unique",
	} {
		if !IsDuplicateMessage(msg) {
			t.Fatalf("expected %q classified as duplicate", msg)
		}
	}
	if IsDuplicateMessage("internal server error") {
		t.Fatalf("unrelated text must not classify as duplicate")
	}
}

func TestIsTerminalMessage(t *testing.T) {
	if !IsTerminalMessage("cannot create reagent lot: expiry date is in the past") {
		t.Fatalf("expected past-expiry text classified as terminal")
	}
	if IsTerminalMessage("connection refused") {
		t.Fatalf("transport text must not classify as terminal")
	}
}

func TestMemoryLookupsReturnNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.GetEntity(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := m.LookupKit(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := m.LookupLot(ctx, "k", "l"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := m.FetchArchive(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMemoryListEntitiesInsertionOrder(t *testing.T) {
	m := NewMemory()
	m.AddEntity(domain.EntityRecord{Name: "B"})
	m.AddEntity(domain.EntityRecord{Name: "A"})
	entities, err := m.ListEntities(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entities) != 2 || entities[0].Name != "B" || entities[1].Name != "A" {
		t.Fatalf("expected insertion order, got %+v", entities)
	}
	if entities[0].ID == "" {
		t.Fatalf("expected assigned identifier")
	}
}

func TestMemoryCreateLotEnforcesUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	kit := m.AddKit(domain.ReagentKitRef{Name: "Kit"})
	lot := domain.ReagentLotRecord{
		Kit:       kit,
		LotNumber: "L1",
		Expiry:    time.Now().Add(24 * time.Hour),
	}

	created, err := m.CreateLot(ctx, lot)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Status != domain.LotStatusActive {
		t.Fatalf("unexpected created lot %+v", created)
	}

	_, err = m.CreateLot(ctx, lot)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError on duplicate, got %v", err)
	}

	lots, err := m.ListLots(ctx, kit.ID)
	if err != nil {
		t.Fatalf("list lots: %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("duplicate creation must not add a record, got %d", len(lots))
	}
}

func TestMemoryCreateLotRejectsPastExpiry(t *testing.T) {
	m := NewMemory()
	m.SetClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	kit := m.AddKit(domain.ReagentKitRef{Name: "Kit"})
	_, err := m.CreateLot(context.Background(), domain.ReagentLotRecord{
		Kit:       kit,
		LotNumber: "L1",
		Expiry:    time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if !domain.IsTerminal(err) {
		t.Fatalf("expected TerminalError for past expiry, got %v", err)
	}
}

func TestMemoryRenameProject(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := m.AddProject(domain.ProjectRecord{Name: "before"})
	if err := m.RenameProject(ctx, p.ID, "after"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	projects, err := m.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if projects[0].Name != "after" {
		t.Fatalf("expected rename applied, got %q", projects[0].Name)
	}
	if err := m.RenameProject(ctx, "missing", "x"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMemoryFetchArchiveReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.PutArchive("h", []byte("abc"))
	data, err := m.FetchArchive(context.Background(), "h")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data[0] = 'X'
	again, _ := m.FetchArchive(context.Background(), "h")
	if string(again) != "abc" {
		t.Fatalf("stored archive must be immune to caller mutation, got %q", again)
	}
}
