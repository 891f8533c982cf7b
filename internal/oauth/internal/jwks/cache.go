package jwks

import (
	"context"
	"sync"
	"time"
)

// Entry is the cached result of the last successful fetch of one key-set
// URI. Entries are replaced, never mutated, once stored.
type Entry struct {
	Keys         *JWKS     `json:"data"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Fresh reports whether the entry may be served without revalidation.
func (e *Entry) Fresh(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}

// EntryStore persists cache entries by key-set URI. Stale entries must be
// kept: they carry the validators for conditional revalidation.
type EntryStore interface {
	// Load returns the entry for uri, or nil when there is none.
	Load(ctx context.Context, uri string) (*Entry, error)

	// Store replaces the entry for uri.
	Store(ctx context.Context, uri string, entry *Entry) error
}

// MemoryStore is an in-process EntryStore.
// It is safe for concurrent use by multiple goroutines.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Load implements EntryStore.
func (s *MemoryStore) Load(_ context.Context, uri string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries[uri], nil
}

// Store implements EntryStore.
func (s *MemoryStore) Store(_ context.Context, uri string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[uri] = entry
	return nil
}

// Len returns the number of URIs with an entry, fresh or stale.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
