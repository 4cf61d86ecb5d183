package core

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// ManifestState tracks how far a project package has progressed through
// publication. States only ever advance.
type ManifestState int

// Publication stages in order.
const (
	StateNone ManifestState = iota
	StateCreated
	StateUploaded
	StatePublished
	StateNotified
)

func (s ManifestState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateUploaded:
		return "uploaded"
	case StatePublished:
		return "published"
	case StateNotified:
		return "notified"
	default:
		return "none"
	}
}

// BuildArchive materialises a project manifest into an archive-ready byte
// stream. Entry order follows the manifest's bundle order exactly, and each
// bundle contributes all of its files under their original basenames, so the
// same manifest always produces the same entry sequence.
func BuildArchive(manifest ProjectManifest) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, item := range manifest.Items {
		for _, f := range item.Bundle.Files {
			entry, err := w.Create(f.BaseFilename())
			if err != nil {
				return nil, fmt.Errorf("create archive entry %s: %w", f.BaseFilename(), err)
			}
			if _, err := entry.Write(f.Data); err != nil {
				return nil, fmt.Errorf("write archive entry %s: %w", f.BaseFilename(), err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// PublicationTracker records per-manifest publication state so a re-run can
// detect and skip already-completed stages. Advancement is monotonic: an
// attempt to regress is rejected and the stored state is untouched.
type PublicationTracker struct {
	mu     sync.Mutex
	states map[string]ManifestState
}

// NewPublicationTracker returns an empty tracker.
func NewPublicationTracker() *PublicationTracker {
	return &PublicationTracker{states: make(map[string]ManifestState)}
}

// State returns the recorded state for manifestID, StateNone if unseen.
func (t *PublicationTracker) State(manifestID string) ManifestState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[manifestID]
}

// Advance moves manifestID to state. Advancing to the current state is a
// no-op; moving backwards is an error.
func (t *PublicationTracker) Advance(manifestID string, state ManifestState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.states[manifestID]
	if state < current {
		return fmt.Errorf("manifest %s: cannot regress from %s to %s", manifestID, current, state)
	}
	t.states[manifestID] = state
	return nil
}

// Completed reports whether manifestID has reached at least state.
func (t *PublicationTracker) Completed(manifestID string, state ManifestState) bool {
	return t.State(manifestID) >= state
}

// Snapshot returns a copy of all recorded states, sorted by manifest ID for
// stable reporting.
func (t *PublicationTracker) Snapshot() []ManifestStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ManifestStatus, 0, len(t.states))
	for id, state := range t.states {
		out = append(out, ManifestStatus{ManifestID: id, State: state})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ManifestID < out[j].ManifestID })
	return out
}

// ManifestStatus is one tracker entry.
type ManifestStatus struct {
	ManifestID string        `json:"manifest_id"`
	State      ManifestState `json:"state"`
}
