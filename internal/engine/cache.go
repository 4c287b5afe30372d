package engine

import (
	"context"
	"sync"
	"time"

	"logiroute/internal/model"
)

// RouteCache holds rendered route results for a short freshness window.
// Implementations must be safe for concurrent use.
type RouteCache interface {
	Get(ctx context.Context, key string) (model.RouteResult, bool)
	Set(ctx context.Context, key string, res model.RouteResult, ttl time.Duration)
}

type cacheEntry struct {
	res     model.RouteResult
	expires time.Time
}

// MemoryCache is the default in-process cache, used when no REDIS_URL
// is configured. Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]cacheEntry{}}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (model.RouteResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return model.RouteResult{}, false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return model.RouteResult{}, false
	}
	return e.res, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, res model.RouteResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{res: res, expires: time.Now().Add(ttl)}
}
