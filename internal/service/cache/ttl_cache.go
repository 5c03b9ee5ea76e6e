// Package cache provides the raw-response cache sitting in front of the
// source adapters. Entries expire per key; staleness is a pure function of
// lookup time, there is no background eviction.
package cache

import (
	"sync"
	"time"
)

// TTL classes by source volatility.
const (
	TTLVolatile time.Duration = 5 * time.Minute
	TTLShort    time.Duration = 10 * time.Minute
	TTLMedium   time.Duration = 15 * time.Minute
	TTLLong     time.Duration = 20 * time.Minute
	TTLStable   time.Duration = 30 * time.Minute
)

type entry struct {
	v         any
	fetchedAt time.Time
	ttl       time.Duration
}

// TTLCache is the process-wide response cache. Get never returns a stale
// entry: once age exceeds the entry's TTL the key reads as absent, which is
// the caller's signal to refetch.
type TTLCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{m: make(map[string]entry), now: time.Now}
}

// Get returns the cached value if present and fresh.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.ttl > 0 && c.now().Sub(e.fetchedAt) > e.ttl {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

// Set stores v under key, unconditionally overwriting any existing entry.
// A non-positive ttl keeps the entry until Clear.
func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	c.mu.Lock()
	c.m[key] = entry{v: v, fetchedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Clear drops all entries; used for forced refresh.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}

// Delete drops one key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// GetTyped is a typed read helper over Get.
func GetTyped[T any](c *TTLCache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
