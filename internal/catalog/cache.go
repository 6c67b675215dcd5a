package catalog

import (
	"context"
	"sync"
	"time"
)

// entry is one cached catalog response plus the fetch used to refresh it.
type entry struct {
	value     any
	fetchedAt time.Time
	refresh   func(ctx context.Context) (any, error)
}

// Cache is a TTL cache for catalog responses. Entries remember their fetch
// function so a background sweep can refresh stale entries without the
// original request context.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// GetOrFetch returns the cached value for key when fresh, otherwise runs
// fetch and caches the result. The second return reports a cache hit.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Since(e.fetchedAt) < c.ttl {
		return e.value, true, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		// Serve the stale value when the upstream is down; the refresh
		// sweep will retry later.
		if ok {
			return e.value, true, nil
		}
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = &entry{value: value, fetchedAt: time.Now(), refresh: fetch}
	c.mu.Unlock()

	return value, false, nil
}

// RefreshStale re-fetches every entry older than the TTL. Entries whose
// refresh fails are dropped so the next request fetches anew.
func (c *Cache) RefreshStale(ctx context.Context) (refreshed, dropped int) {
	c.mu.RLock()
	stale := make(map[string]*entry)
	for key, e := range c.entries {
		if time.Since(e.fetchedAt) >= c.ttl {
			stale[key] = e
		}
	}
	c.mu.RUnlock()

	for key, e := range stale {
		value, err := e.refresh(ctx)

		c.mu.Lock()
		if err != nil {
			delete(c.entries, key)
			dropped++
		} else {
			c.entries[key] = &entry{value: value, fetchedAt: time.Now(), refresh: e.refresh}
			refreshed++
		}
		c.mu.Unlock()
	}

	return refreshed, dropped
}

// Invalidate drops all entries.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
