// Package params holds the runtime parameters set by inbound OSC messages.
// The audio callback reads them on every block, so the lock is held only for
// a single map access.
package params

import (
	"maps"
	"sync"
	"time"
)

// Entry is one stored parameter.
type Entry struct {
	Name    string
	Kind    Kind
	Value   Value
	Updated time.Time
}

// Store is a concurrency-safe, last-write-wins map from address to value.
// The zero value is not usable; call NewStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Set stores v under name, replacing any previous value.
func (s *Store) Set(name string, v Value) {
	e := Entry{
		Name:    name,
		Kind:    Classify(name),
		Value:   v,
		Updated: s.now(),
	}
	s.mu.Lock()
	s.entries[name] = e
	s.mu.Unlock()
}

// SetFloat stores a scalar value.
func (s *Store) SetFloat(name string, f float64) {
	s.Set(name, Scalar(f))
}

// Get returns the value stored under name, or def if absent.
func (s *Store) Get(name string, def Value) Value {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return def
	}
	return e.Value
}

// Float returns the scalar stored under name (the first element for lists),
// or def if absent.
func (s *Store) Float(name string, def float64) float64 {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return def
	}
	return e.Value.Float(def)
}

// Lookup returns the full entry for name.
func (s *Store) Lookup(name string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	return e, ok
}

// Len returns the number of stored parameters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a point-in-time copy of all entries. Values are immutable,
// so the copy is safe to keep.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}
