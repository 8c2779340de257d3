// ABOUTME: Typed in-memory cache with TTL-based expiration
// ABOUTME: Keeps slow-changing provider reads (doctors, profiles) off the network

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache is safe for concurrent use. A zero TTL disables caching.
type Cache[V any] struct {
	store sync.Map
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// New creates a cache and starts its background sweeper
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	if ttl > 0 {
		go c.startCleanup(sweepInterval(ttl))
	}
	return c
}

// Get returns a live value for key
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return zero, false
	}

	e := val.(entry[V])
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return zero, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

// Set stores value with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.store.Store(key, entry[V]{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	})
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

// Clear drops key
func (c *Cache[V]) Clear(key string) {
	c.store.Delete(key)
}

// Purge drops every entry
func (c *Cache[V]) Purge() {
	c.store.Range(func(key, _ any) bool {
		c.store.Delete(key)
		return true
	})
}

// Close stops the background sweeper
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.store.Range(func(key, val any) bool {
				if now.After(val.(entry[V]).expiresAt) {
					c.store.Delete(key)
				}
				return true
			})
		}
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}
