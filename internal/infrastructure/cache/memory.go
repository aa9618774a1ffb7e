package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryEntry struct {
	storedAt time.Time
	payload  string
}

// MemoryCache keeps entries in process memory. Age is checked against the
// injected clock; go-cache's janitor only reclaims memory.
type MemoryCache struct {
	items *gocache.Cache
	opts  Options
}

func NewMemoryCache(opts Options) *MemoryCache {
	opts = opts.normalize()
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if opts.TTL > 0 {
		expiration = opts.TTL
		cleanup = opts.TTL
	}
	return &MemoryCache{
		items: gocache.New(expiration, cleanup),
		opts:  opts,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	x, found := c.items.Get(key)
	if !found {
		return "", false
	}
	e, ok := x.(memoryEntry)
	if !ok {
		c.items.Delete(key)
		return "", false
	}
	if c.opts.expired(e.storedAt) {
		c.items.Delete(key)
		return "", false
	}
	return e.payload, true
}

func (c *MemoryCache) Set(_ context.Context, key, payload string) error {
	c.items.Set(key, memoryEntry{storedAt: c.opts.Now(), payload: payload}, gocache.DefaultExpiration)
	return nil
}

func (c *MemoryCache) Prune(_ context.Context) error {
	c.items.DeleteExpired()
	for key, item := range c.items.Items() {
		e, ok := item.Object.(memoryEntry)
		if !ok || c.opts.expired(e.storedAt) {
			c.items.Delete(key)
		}
	}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.items.Flush()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
