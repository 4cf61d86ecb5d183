package core

// DropReason records why a match was excluded from aggregation.
type DropReason string

// Matches are dropped when they carry no bundle or no resolved owning project.
const (
	DropNoBundle  DropReason = "no-bundle"
	DropNoProject DropReason = "no-project"
)

// Drop is one excluded match together with its reason.
type Drop struct {
	Entity EntityRecord
	Reason DropReason
}

// ManifestSet is an ordered collection of project manifests keyed by project
// identifier. Order is first appearance in the aggregated match list.
type ManifestSet struct {
	order     []string
	manifests map[string]*ProjectManifest
}

// Len returns the number of manifests.
func (s *ManifestSet) Len() int { return len(s.order) }

// ProjectIDs returns the manifest keys in set order.
func (s *ManifestSet) ProjectIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the manifest for projectID, or nil.
func (s *ManifestSet) Get(projectID string) *ProjectManifest {
	return s.manifests[projectID]
}

// Manifests returns the manifests in set order.
func (s *ManifestSet) Manifests() []*ProjectManifest {
	out := make([]*ProjectManifest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.manifests[id])
	}
	return out
}

// AggregateByProject groups matches by owning project. Only matches holding
// both a bundle and a resolved project are included; everything else is
// returned as a Drop with its reason. Within a project, items keep the
// insertion order of the match list. Aggregating the same match list twice
// yields structurally equal manifest sets.
func AggregateByProject(matches []MatchResult) (*ManifestSet, []Drop) {
	set := &ManifestSet{manifests: make(map[string]*ProjectManifest)}
	var drops []Drop
	for _, m := range matches {
		if m.Bundle == nil {
			drops = append(drops, Drop{Entity: m.Entity, Reason: DropNoBundle})
			continue
		}
		if m.Entity.Project == nil {
			drops = append(drops, Drop{Entity: m.Entity, Reason: DropNoProject})
			continue
		}
		proj := *m.Entity.Project
		manifest, ok := set.manifests[proj.ID]
		if !ok {
			manifest = &ProjectManifest{Project: proj}
			set.manifests[proj.ID] = manifest
			set.order = append(set.order, proj.ID)
		}
		manifest.Items = append(manifest.Items, ManifestItem{Bundle: *m.Bundle, Entity: m.Entity})
	}
	return set, drops
}
