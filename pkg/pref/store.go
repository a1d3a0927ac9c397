package pref

import (
	stderrors "errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = stderrors.New("no such preference")

// Entry is one stored preference: its JSON value and when it was written.
type Entry struct {
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists preference entries by key.
type Store interface {
	Get(key string) (Entry, error)
	Put(key string, e Entry) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// MemStore is an in-memory Store, used when no database path is
// configured and in tests.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Entry)}
}

// Get implements Store.
func (s *MemStore) Get(key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return Entry{Value: append([]byte(nil), e.Value...), UpdatedAt: e.UpdatedAt}, nil
}

// Put implements Store.
func (s *MemStore) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Value: append([]byte(nil), e.Value...), UpdatedAt: e.UpdatedAt}
	return nil
}

// Delete implements Store.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Keys implements Store.
func (s *MemStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (s *MemStore) Close() error {
	return nil
}
