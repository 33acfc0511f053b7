package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. Entries live as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

// NewMemoryStore creates a store with an empty entry for every key.
func NewMemoryStore() *MemoryStore {
	entries := make(map[Key]Entry, len(knownKeys))
	for _, k := range knownKeys {
		entries[k] = Entry{}
	}
	return &MemoryStore{entries: entries}
}

// Get returns the entry for key.
func (s *MemoryStore) Get(_ context.Context, key Key) (Entry, error) {
	if err := ValidateKey(key); err != nil {
		return Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key], nil
}

// Set overwrites the entry for key.
func (s *MemoryStore) Set(_ context.Context, key Key, entry Entry) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	entry.Data = normalizeData(entry.Data)

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Invalidate resets the entry for key to empty with zero timestamps.
func (s *MemoryStore) Invalidate(_ context.Context, key Key) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[key] = Entry{}
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
