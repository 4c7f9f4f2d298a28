package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	v  V
	ts time.Time
}

// TTLCache memoizes values for a fixed duration. Entries are never evicted,
// only overwritten or judged stale by timestamp on read; the key space is
// bounded by configuration so unbounded growth is acceptable within one
// process lifetime. A TTL of zero disables memoization entirely.
type TTLCache[V any] struct {
	mu  sync.RWMutex
	m   map[string]entry[V]
	ttl time.Duration
	now func() time.Time
}

func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		m:   make(map[string]entry[V]),
		ttl: ttl,
		now: time.Now,
	}
}

// SetClock replaces the time source for deterministic expiry tests.
func (c *TTLCache[V]) SetClock(now func() time.Time) { c.now = now }

func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.ttl <= 0 || c.now().Sub(e.ts) > c.ttl {
		return zero, false
	}
	return e.v, true
}

func (c *TTLCache[V]) Set(key string, v V) {
	c.mu.Lock()
	c.m[key] = entry[V]{v: v, ts: c.now()}
	c.mu.Unlock()
}

func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
