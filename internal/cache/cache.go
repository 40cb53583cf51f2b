// Package cache is a small in-memory TTL cache for query and
// narration results. Keys are hashed so callers can feed raw query
// strings of any length.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
}

func New() *Cache {
	c := &Cache{
		items: make(map[string]entry),
	}

	// Cleanup expired items every hour
	go c.cleanupLoop()

	return c
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		// expired entries are reaped by the cleanup loop
		return nil, false
	}

	return e.value, true
}

// GenerateKey hashes an operation name and its argument signature into
// a fixed-width cache key.
func (c *Cache) GenerateKey(op, args string) string {
	h := sha256.New()
	h.Write([]byte(op + "|" + args))
	return hex.EncodeToString(h.Sum(nil))
}

// Size reports the number of entries, expired ones included until the
// next sweep.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}
