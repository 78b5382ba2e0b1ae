package aliasserver

import (
	"context"
	"sync"
	"time"
)

// Record is a stored alias. The JSON shape matches the wire contract of the
// creation endpoint.
type Record struct {
	// ID is the alias identifier.
	ID string `json:"id"`

	// Path is the short URI clients fetch in place of Target.
	Path string `json:"path"`

	// Href is the absolute URL of the alias.
	Href string `json:"href"`

	// Target is the original, possibly over-long path.
	Target string `json:"target"`
}

// Store persists alias records.
//
// A ttl of zero means the record never expires. Get reports a miss, not an
// error, for unknown or expired aliases; errors are reserved for backend
// failures.
type Store interface {
	Put(ctx context.Context, rec Record, ttl time.Duration) error
	Get(ctx context.Context, id string) (Record, bool, error)
	Delete(ctx context.Context, id string) error
}

// memoryEntry pairs a record with its expiry deadline. A zero deadline means
// no expiry.
type memoryEntry struct {
	rec      Record
	deadline time.Time
}

// MemoryStore is an in-process Store backed by a mutex-protected map.
//
// Expired entries are dropped lazily on Get. The zero value is not usable;
// construct with NewMemoryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is swappable for deterministic expiry tests.
	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put stores rec under its ID, replacing any previous record.
func (s *MemoryStore) Put(_ context.Context, rec Record, ttl time.Duration) error {
	entry := memoryEntry{rec: rec}
	if ttl > 0 {
		entry.deadline = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[rec.ID] = entry
	s.mu.Unlock()
	return nil
}

// Get returns the record for id, or a miss when unknown or expired.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return Record{}, false, nil
	}
	if !entry.deadline.IsZero() && !s.now().Before(entry.deadline) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return Record{}, false, nil
	}
	return entry.rec, true, nil
}

// Delete removes the record for id. Deleting an unknown id is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored records, including any not yet reaped.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
