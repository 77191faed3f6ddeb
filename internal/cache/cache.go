package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/example/calcapi/internal/types"
)

// Value is a computed sum and when it was produced.
type Value struct {
	Sum        int64
	ComputedAt time.Time
}

type item struct {
	val       Value
	expiresAt time.Time
}

// Cache is a TTL cache of sums. Concurrent misses on one key share a single computation.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	group singleflight.Group
}

func New(ttl time.Duration) *Cache {
	return &Cache{items: make(map[string]item), ttl: ttl}
}

// GetOrCompute returns the cached value for key while it is fresh, otherwise runs compute
// once for all concurrent callers and stores the result. The returned source is
// types.SourceCache or types.SourceComputed, and empty on error. Errors are not cached.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (Value, error)) (Value, string, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(it.expiresAt) {
		return it.val, types.SourceCache, nil
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = item{val: v, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return Value{}, "", err
	}
	return res.(Value), types.SourceComputed, nil
}

// Purge drops expired entries and reports how many were removed.
func (c *Cache) Purge() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, it := range c.items {
		if !now.Before(it.expiresAt) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
