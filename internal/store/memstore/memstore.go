// Package memstore provides an in-memory report store for testing.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/discochess/evalbar/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu      sync.RWMutex
	reports map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		reports: make(map[string][]byte),
	}
}

// Put reads r fully and keeps a copy under name.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[name] = data
	return nil
}

// Get returns a reader over the report stored under name.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.reports[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Names returns the stored report names in order (for test assertions).
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.reports))
	for name := range s.reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
