package cache

import (
	"context"
	"sync"
	"time"

	appcheque "github.com/propman/backend/internal/application/cheque"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemorySummaryCache is the in-process fallback used when Redis is not
// configured. Entries are evicted lazily on read.
type MemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemorySummaryCache creates an empty in-memory summary cache
func NewMemorySummaryCache() *MemorySummaryCache {
	return &MemorySummaryCache{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a cached snapshot. A cache miss returns nil, nil.
func (c *MemorySummaryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

// Set stores a snapshot with the given TTL
func (c *MemorySummaryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

var _ appcheque.SummaryCache = (*MemorySummaryCache)(nil)
