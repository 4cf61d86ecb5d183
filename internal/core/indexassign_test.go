package core

import (
	"testing"

	"limscore/pkg/domain"
)

func TestParseCarrierOrdinal(t *testing.T) {
	cases := []struct {
		barcode string
		want    int
		ok      bool
	}{
		{"n0025191-683300068234680726-05", 5, true},
		{"abc-01", 1, true},
		{"abc-24", 24, true},
		{"abc-00", 0, false},
		{"abc-25", 0, false},
		{"abc-xyz", 0, false},
		{"nodelimiter", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseCarrierOrdinal(tc.barcode)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseCarrierOrdinal(%q) = (%d, %v), want (%d, %v)", tc.barcode, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCarrierLabel(t *testing.T) {
	if got := CarrierLabel(5); got != "D5" {
		t.Fatalf("expected D5, got %s", got)
	}
}

func TestLogicalCodeFormula(t *testing.T) {
	code, findings := LogicalCode(5, 1)
	if len(findings) != 0 {
		t.Fatalf("unexpected findings: %v", findings)
	}
	if got := CodeNumber(code); got != 33 {
		t.Fatalf("expected code number 33 for ordinal 5 slot 1, got %d", got)
	}
}

func TestLogicalCodeCoversDistinctContiguousBlocks(t *testing.T) {
	seen := make(map[int]struct{})
	for ordinal := 1; ordinal <= CarrierCount; ordinal++ {
		first, _ := LogicalCode(ordinal, 1)
		last, _ := LogicalCode(ordinal, SlotsPerCarrier)
		if CodeNumber(last)-CodeNumber(first) != SlotsPerCarrier-1 {
			t.Fatalf("ordinal %d block not contiguous: %s..%s", ordinal, first, last)
		}
		for slot := 1; slot <= SlotsPerCarrier; slot++ {
			code, findings := LogicalCode(ordinal, slot)
			if len(findings) != 0 {
				t.Fatalf("in-range input produced findings: %v", findings)
			}
			n := CodeNumber(code)
			if n < 1 || n > CarrierCount*SlotsPerCarrier {
				t.Fatalf("code number %d out of range", n)
			}
			if _, dup := seen[n]; dup {
				t.Fatalf("duplicate code number %d", n)
			}
			seen[n] = struct{}{}
		}
	}
	if len(seen) != CarrierCount*SlotsPerCarrier {
		t.Fatalf("expected %d distinct codes, got %d", CarrierCount*SlotsPerCarrier, len(seen))
	}
	for ordinal := 1; ordinal < CarrierCount; ordinal++ {
		last, _ := LogicalCode(ordinal, SlotsPerCarrier)
		next, _ := LogicalCode(ordinal+1, 1)
		if CodeNumber(last)+1 != CodeNumber(next) {
			t.Fatalf("blocks %d and %d are not adjacent: %s then %s", ordinal, ordinal+1, last, next)
		}
	}
}

func TestLogicalCodeClampsOutOfRange(t *testing.T) {
	code, findings := LogicalCode(0, 9)
	if len(findings) != 2 {
		t.Fatalf("expected both clamp findings, got %v", findings)
	}
	if got := CodeNumber(code); got != 1 {
		t.Fatalf("expected clamped code 1, got %d", got)
	}
	for _, f := range findings {
		if f.Severity != domain.SeverityWarn {
			t.Fatalf("clamp finding should be a warning, got %s", f.Severity)
		}
	}
}

func TestCoordinateSortOrder(t *testing.T) {
	run := domain.RunMetadata{
		IndexStrip: "abc-01",
		SampleIDs:  []string{"W", "X", "Y", "Z"},
	}
	entities := []domain.EntityRecord{
		{ID: "w", Name: "W", Location: ""},
		{ID: "x", Name: "X", Location: "A:2"},
		{ID: "y", Name: "Y", Location: "A:1"},
		{ID: "z", Name: "Z", Location: "B:1"},
	}
	result := AssignIndexes(run, entities)
	want := []string{"Y", "X", "Z", "W"}
	if len(result.Assignments) != len(want) {
		t.Fatalf("expected %d assignments, got %d", len(want), len(result.Assignments))
	}
	for i, name := range want {
		if result.Assignments[i].Entity.Name != name {
			t.Fatalf("slot %d: expected %s, got %s", i+1, name, result.Assignments[i].Entity.Name)
		}
	}
	var sawUnparseable bool
	for _, f := range result.Findings {
		if f.Code == "coordinate-unparseable" && f.EntityID == "w" {
			sawUnparseable = true
		}
	}
	if !sawUnparseable {
		t.Fatalf("expected coordinate-unparseable finding for W, got %v", result.Findings)
	}
}

func TestAssignIndexesEndToEnd(t *testing.T) {
	run := domain.RunMetadata{
		IndexStrip: "n0025191-683300068234680726-05",
		SampleIDs:  []string{"Sample1", "Sample2", "Sample3"},
	}
	entities := []domain.EntityRecord{
		{ID: "1", Name: "Sample1", Location: "A:1"},
		{ID: "2", Name: "Sample2", Location: "A:2"},
		{ID: "3", Name: "Sample3", Location: "A:3"},
	}
	result := AssignIndexes(run, entities)
	if result.Ordinal != 5 || result.Label != "D5" {
		t.Fatalf("expected ordinal 5 label D5, got %d %s", result.Ordinal, result.Label)
	}
	wantCodes := []int{33, 34, 35}
	for i, a := range result.Assignments {
		if got := CodeNumber(a.Code); got != wantCodes[i] {
			t.Fatalf("assignment %d: expected code %d, got %d", i, wantCodes[i], got)
		}
		if a.Slot != i+1 {
			t.Fatalf("assignment %d: expected slot %d, got %d", i, i+1, a.Slot)
		}
	}
}

func TestAssignIndexesUnparseableBarcodeFallsBack(t *testing.T) {
	run := domain.RunMetadata{
		IndexStrip: "garbage",
		SampleIDs:  []string{"Sample1"},
	}
	entities := []domain.EntityRecord{{ID: "1", Name: "Sample1", Location: "A:1"}}
	result := AssignIndexes(run, entities)
	if result.Ordinal != 1 {
		t.Fatalf("expected fallback ordinal 1, got %d", result.Ordinal)
	}
	if got := CodeNumber(result.Assignments[0].Code); got != 1 {
		t.Fatalf("expected code 1 from fallback ordinal, got %d", got)
	}
	var flagged bool
	for _, f := range result.Findings {
		if f.Code == "carrier-barcode-unparseable" && f.Severity == domain.SeverityWarn {
			flagged = true
		}
	}
	if !flagged {
		t.Fatalf("expected carrier-barcode-unparseable warning, got %v", result.Findings)
	}
}

func TestAssignIndexesSkipsUndeclaredSamples(t *testing.T) {
	run := domain.RunMetadata{
		IndexStrip: "abc-01",
		SampleIDs:  []string{"Declared"},
	}
	entities := []domain.EntityRecord{
		{ID: "1", Name: "Stray", Location: "A:1"},
		{ID: "2", Name: "Declared", Location: "B:1"},
	}
	result := AssignIndexes(run, entities)
	if len(result.Assignments) != 1 || result.Assignments[0].Entity.Name != "Declared" {
		t.Fatalf("expected only the declared sample assigned, got %+v", result.Assignments)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "Stray" {
		t.Fatalf("expected Stray skipped, got %v", result.Skipped)
	}
	// Skipped entities must not consume a slot.
	if result.Assignments[0].Slot != 1 {
		t.Fatalf("expected declared sample at slot 1, got %d", result.Assignments[0].Slot)
	}
}

func TestAssignIndexesDeterministic(t *testing.T) {
	run := domain.RunMetadata{
		IndexStrip: "abc-02",
		SampleIDs:  []string{"S1", "S2", "S3"},
	}
	entities := []domain.EntityRecord{
		{ID: "1", Name: "S1", Location: "B:2"},
		{ID: "2", Name: "S2", Location: "A:1"},
		{ID: "3", Name: "S3", Location: "A:10"},
	}
	first := AssignIndexes(run, entities)
	second := AssignIndexes(run, entities)
	for i := range first.Assignments {
		if first.Assignments[i] != second.Assignments[i] {
			t.Fatalf("assignment %d differs across identical runs", i)
		}
	}
	// Numeric column comparison: A:10 sorts after A:1, before B:2.
	want := []string{"S2", "S3", "S1"}
	for i, name := range want {
		if first.Assignments[i].Entity.Name != name {
			t.Fatalf("slot %d: expected %s, got %s", i+1, name, first.Assignments[i].Entity.Name)
		}
	}
}
