// Package memory implements an in-process SeenStore for tests.
package memory

import (
	"context"
	"sync"

	"limscore/pkg/domain"
)

// Store holds the processed-identifier set in process memory.
type Store struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// New returns an empty in-memory seen store.
func New() *Store { return &Store{ids: make(map[string]struct{})} }

// Load returns a copy of the stored set.
func (s *Store) Load(context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// Save replaces the stored set with a copy of ids.
func (s *Store) Save(_ context.Context, ids map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]struct{}, len(ids))
	for id := range ids {
		next[id] = struct{}{}
	}
	s.ids = next
	return nil
}

var _ domain.SeenStore = (*Store)(nil)
