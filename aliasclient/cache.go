package aliasclient

import "sync"

// AliasCache maps logical target paths to their server-issued alias records.
//
// A target is present only after it was confirmed too long to fetch directly
// (or rejected by the server with 414) and an alias was successfully created
// for it. Entries are removed when a cached alias turns out to be expired
// and are never proactively evicted or persisted.
//
// Implementations must be safe for concurrent use. The only mutation
// patterns are insert-on-create (last writer wins) and delete-then-recreate.
type AliasCache interface {
	// Get returns the alias record for target, if present.
	Get(target string) (AliasRecord, bool)

	// Set stores the alias record for target, replacing any previous entry.
	Set(target string, rec AliasRecord)

	// Delete removes the entry for target, if present.
	Delete(target string)

	// Len returns the number of cached aliases.
	Len() int
}

// MemoryCache is the default in-process AliasCache.
//
// Each Client owns its own MemoryCache unless one is injected with
// WithAliasCache, so independent clients never share alias state.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]AliasRecord
}

// NewMemoryCache creates an empty in-process alias cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]AliasRecord)}
}

// Get returns the alias record for target, if present.
func (c *MemoryCache) Get(target string) (AliasRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[target]
	return rec, ok
}

// Set stores the alias record for target.
func (c *MemoryCache) Set(target string, rec AliasRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[target] = rec
}

// Delete removes the entry for target.
func (c *MemoryCache) Delete(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, target)
}

// Len returns the number of cached aliases.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
