// Package core implements the reconciliation, packaging, and index-assignment
// engine: it matches loose result files to known entities, aggregates matches
// into per-project packaging manifests, resolves reagent lots idempotently,
// and derives deterministic dual-index codes from physical layout.
package core

import (
	"strings"

	"limscore/pkg/domain"
)

// systemArtifactMarker flags archive entries written by desktop zip tools
// rather than the instrument; such entries never belong to a specimen.
const systemArtifactMarker = "__MACOSX"

// BundleSet is an ordered collection of specimen bundles keyed by basename.
// Order is first appearance in the input file list, which keeps both grouping
// and the downstream match scan deterministic.
type BundleSet struct {
	order   []string
	bundles map[string]*SpecimenBundle
}

// Len returns the number of bundles in the set.
func (s *BundleSet) Len() int { return len(s.order) }

// Basenames returns the bundle keys in set order.
func (s *BundleSet) Basenames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the bundle for basename, or nil.
func (s *BundleSet) Get(basename string) *SpecimenBundle {
	return s.bundles[basename]
}

func (s *BundleSet) remove(basename string) {
	if _, ok := s.bundles[basename]; !ok {
		return
	}
	delete(s.bundles, basename)
	for i, name := range s.order {
		if name == basename {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ExtensionCounts tallies member files per extension across the whole set.
// Files without an extension are counted under "".
func (s *BundleSet) ExtensionCounts() map[string]int {
	counts := make(map[string]int)
	for _, name := range s.order {
		for _, f := range s.bundles[name].Files {
			counts[f.Extension()]++
		}
	}
	return counts
}

// GroupFiles partitions files into bundles by basename with the extension
// stripped. Directory markers and system-artifact entries are excluded. The
// same input set always yields the same grouping: every retained file appears
// in exactly one bundle, in input order.
func GroupFiles(files []SpecimenFile) *BundleSet {
	set := &BundleSet{bundles: make(map[string]*SpecimenBundle)}
	for _, f := range files {
		if strings.HasSuffix(f.Name, "/") || strings.Contains(f.Name, systemArtifactMarker) {
			continue
		}
		base := f.Basename()
		bundle, ok := set.bundles[base]
		if !ok {
			bundle = &SpecimenBundle{Basename: base}
			set.bundles[base] = bundle
			set.order = append(set.order, base)
		}
		bundle.Files = append(bundle.Files, f)
	}
	return set
}

// MatchOutcome carries one MatchResult per entity plus the bundles left
// unclaimed after the pass. Unmatched entities and bundles are reported,
// never silently dropped.
type MatchOutcome struct {
	Results          []MatchResult
	UnmatchedBundles []string
}

// MatchEntities claims bundles for entities by case-insensitive substring
// containment: for each entity, in the supplied order, the first bundle whose
// basename contains the entity name wins, and a claimed bundle is removed
// from consideration for later entities. There is no scoring or longest-match
// preference; ties resolve by enumeration order. Matching never fails;
// absence is represented as a result without a bundle.
func MatchEntities(entities []EntityRecord, bundles *BundleSet) MatchOutcome {
	remaining := &BundleSet{
		order:   append([]string(nil), bundles.order...),
		bundles: make(map[string]*SpecimenBundle, len(bundles.bundles)),
	}
	for name, b := range bundles.bundles {
		remaining.bundles[name] = b
	}

	outcome := MatchOutcome{Results: make([]MatchResult, 0, len(entities))}
	for _, entity := range entities {
		needle := strings.ToUpper(entity.Name)
		result := MatchResult{Entity: entity}
		if needle != "" {
			for _, basename := range remaining.order {
				if strings.Contains(strings.ToUpper(basename), needle) {
					result.Bundle = remaining.bundles[basename]
					remaining.remove(basename)
					break
				}
			}
		}
		outcome.Results = append(outcome.Results, result)
	}
	outcome.UnmatchedBundles = remaining.Basenames()
	return outcome
}

// ReportMatches folds a match outcome into a run report: matched and
// unmatched counts plus findings for everything left over.
func ReportMatches(report *domain.RunReport, outcome MatchOutcome) {
	for _, m := range outcome.Results {
		report.Counts.Processed++
		if m.Matched() {
			report.Counts.Matched++
		} else {
			report.Counts.Unmatched++
			report.Warn("no-match", "no file bundle matched entity "+m.Entity.Name, m.Entity.ID)
		}
	}
	for _, basename := range outcome.UnmatchedBundles {
		report.Warn("unclaimed-bundle", "file bundle "+basename+" matched no entity", "")
	}
}
