// Package memory implements an in-memory document backend for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"innkeeper/internal/document"
)

var _ document.Backend = (*Store)(nil)

// Store keeps documents in process memory.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New returns an empty in-memory backend.
func New() *Store { return &Store{docs: make(map[string][]byte)} }

// Driver returns the backend driver identifier.
func (s *Store) Driver() document.Driver { return document.DriverMemory }

// Read returns a copy of the named document.
func (s *Store) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[name]
	if !ok {
		return nil, document.ErrNotExist
	}
	return cloneBytes(data), nil
}

// Write replaces the named document.
func (s *Store) Write(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = cloneBytes(data)
	return nil
}

// Delete removes the named document. Deleting a missing document is a no-op.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
	return nil
}

// Names lists stored document names in order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for name := range s.docs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func cloneBytes(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
