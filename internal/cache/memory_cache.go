package cache

import (
	"context"
	"sync"
	"time"
)

const maxMemoryEntries = 512

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryAdvisoryCache is an in-process cache used when no Redis is
// configured. Expired entries are swept on write and the map holds at most
// maxEntries values.
type MemoryAdvisoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

func NewMemoryAdvisoryCache() *MemoryAdvisoryCache {
	return &MemoryAdvisoryCache{entries: map[string]memoryEntry{}, maxEntries: maxMemoryEntries, now: time.Now}
}

func (c *MemoryAdvisoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryAdvisoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if value == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictSoonestLocked()
	}
	c.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	return nil
}

func (c *MemoryAdvisoryCache) evictSoonestLocked() {
	var (
		victim string
		first  time.Time
	)
	for k, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(first) {
			victim, first = k, entry.expiresAt
		}
	}
	delete(c.entries, victim)
}
