package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"limscore/pkg/domain"
)

// Dual-index geometry: a carrier strip holds 8 ordered slots and 24 carriers
// exist, so logical codes span 1..192. Codes for one carrier occupy a
// contiguous block of 8 and blocks never overlap across carriers.
const (
	SlotsPerCarrier = 8
	CarrierCount    = 24
)

// codePrefix is embedded in every logical index code.
const codePrefix = "Index_"

// ParseCarrierOrdinal extracts the carrier ordinal from a strip barcode. The
// ordinal is the integer value of the segment after the final '-' delimiter,
// e.g. "n0025191-683300068234680726-05" -> 5. Returns ok=false when the
// barcode has no such segment or the value falls outside [1,24].
func ParseCarrierOrdinal(barcode string) (int, bool) {
	if barcode == "" {
		return 0, false
	}
	parts := strings.Split(barcode, "-")
	if len(parts) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || n < 1 || n > CarrierCount {
		return 0, false
	}
	return n, true
}

// CarrierLabel returns the textual strip label for an ordinal, e.g. 5 -> "D5".
func CarrierLabel(ordinal int) string {
	return fmt.Sprintf("D%d", ordinal)
}

// LogicalCode computes the dual-index code for a carrier ordinal and slot.
// Both arguments are 1-based and independently clamped to 1 when out of
// range; clamping is reported through the returned findings rather than an
// error. The code number is (ordinal-1)*8 + slot.
func LogicalCode(ordinal, slot int) (string, []Finding) {
	var findings []Finding
	if ordinal < 1 || ordinal > CarrierCount {
		findings = append(findings, Finding{
			Severity: SeverityWarn,
			Code:     "carrier-ordinal-clamped",
			Message:  fmt.Sprintf("carrier ordinal %d outside [1,%d], using 1", ordinal, CarrierCount),
		})
		ordinal = 1
	}
	if slot < 1 || slot > SlotsPerCarrier {
		findings = append(findings, Finding{
			Severity: SeverityWarn,
			Code:     "slot-clamped",
			Message:  fmt.Sprintf("slot %d outside [1,%d], using 1", slot, SlotsPerCarrier),
		})
		slot = 1
	}
	number := (ordinal-1)*SlotsPerCarrier + slot
	return fmt.Sprintf("%s%d", codePrefix, number), findings
}

// CodeNumber extracts the numeric part of a logical code produced by
// LogicalCode. Returns 0 when the code does not carry the expected prefix.
func CodeNumber(code string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(code, codePrefix))
	if err != nil {
		return 0
	}
	return n
}

// positionKey is the sortable form of a container coordinate. Coordinates
// that fail to parse sort after every valid coordinate, keeping their
// original relative order among themselves.
type positionKey struct {
	row   string
	col   int
	valid bool
}

// parsePosition parses a "ROW:COLUMN" coordinate, e.g. "A:3" -> (A, 3).
func parsePosition(pos string) positionKey {
	parts := strings.Split(pos, ":")
	if len(parts) == 2 {
		if col, err := strconv.Atoi(parts[1]); err == nil {
			return positionKey{row: parts[0], col: col, valid: true}
		}
	}
	return positionKey{}
}

func (k positionKey) less(other positionKey) bool {
	if k.valid != other.valid {
		return k.valid
	}
	if !k.valid {
		return false // invalid keys compare equal; stable sort preserves input order
	}
	if k.row != other.row {
		return k.row < other.row
	}
	return k.col < other.col
}

// AssignmentResult carries the computed index assignments plus the entities
// that were skipped and any data-quality findings.
type AssignmentResult struct {
	Carrier     string
	Ordinal     int
	Label       string
	Assignments []IndexAssignment
	Skipped     []string // entity names present physically but not declared by the run
	Findings    []Finding
}

// AssignIndexes computes the deterministic physical-to-logical index mapping
// for one run. Only entities named on the run's declared sample list
// participate; physical-only entities are recorded as skipped and never
// consume a slot. Participants are sorted by parsed container coordinate and
// assigned slots 1..N in that order; a single carrier's 8 slots are treated
// as sufficient for the whole run. Entities whose coordinate is missing or
// unparseable still receive a slot at the end of the sort order, flagged as a
// warning because arbitrary ordering may not reflect the intended layout.
func AssignIndexes(run RunMetadata, entities []EntityRecord) AssignmentResult {
	result := AssignmentResult{Carrier: run.IndexStrip}

	ordinal, ok := ParseCarrierOrdinal(run.IndexStrip)
	if !ok {
		result.Findings = append(result.Findings, Finding{
			Severity: SeverityWarn,
			Code:     "carrier-barcode-unparseable",
			Message:  fmt.Sprintf("could not parse carrier ordinal from barcode %q, defaulting to 1", run.IndexStrip),
		})
		ordinal = 1
	}
	result.Ordinal = ordinal
	result.Label = CarrierLabel(ordinal)

	type participant struct {
		entity EntityRecord
		key    positionKey
	}
	var participants []participant
	for _, e := range entities {
		if !run.DeclaresSample(e.Name) {
			result.Skipped = append(result.Skipped, e.Name)
			result.Findings = append(result.Findings, Finding{
				Severity: SeverityLog,
				Code:     "undeclared-sample",
				Message:  fmt.Sprintf("sample %q present in container but not declared by run, skipping", e.Name),
				EntityID: e.ID,
			})
			continue
		}
		key := parsePosition(e.Location)
		if !key.valid {
			result.Findings = append(result.Findings, Finding{
				Severity: SeverityWarn,
				Code:     "coordinate-unparseable",
				Message:  fmt.Sprintf("container coordinate %q for sample %q is unparseable, sorting last", e.Location, e.Name),
				EntityID: e.ID,
			})
		}
		participants = append(participants, participant{entity: e, key: key})
	}

	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].key.less(participants[j].key)
	})

	for i, p := range participants {
		slot := i + 1
		code, findings := LogicalCode(ordinal, slot)
		result.Findings = append(result.Findings, findings...)
		result.Assignments = append(result.Assignments, domain.IndexAssignment{
			Entity:   p.entity,
			Carrier:  run.IndexStrip,
			Ordinal:  ordinal,
			Slot:     slot,
			Code:     code,
			Location: p.entity.Location,
		})
	}
	return result
}
