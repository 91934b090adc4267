// Package cache implements the account-listing side cache, in memory and
// on Redis.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/custodia/pkg/dto"
)

type memoryEntry struct {
	accounts  []dto.AccountRead
	expiresAt time.Time
}

// MemoryCache is a bounded-TTL in-memory listing cache. Expired entries
// are dropped lazily on read and swept periodically.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an in-memory cache and starts its sweeper.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{entries: make(map[string]memoryEntry)}
	go c.sweep()
	return c
}

// Get returns the cached listing, or ok=false on a miss or expiry.
func (c *MemoryCache) Get(_ context.Context, key string) ([]dto.AccountRead, bool, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.accounts, true, nil
}

// Set stores a listing under key for at most ttl.
func (c *MemoryCache) Set(_ context.Context, key string, accounts []dto.AccountRead, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{accounts: accounts, expiresAt: time.Now().Add(ttl)}
	return nil
}

// InvalidateUser drops every cached listing for the user's email.
func (c *MemoryCache) InvalidateUser(_ context.Context, email string) error {
	prefix := "accounts:" + email + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// sweep removes expired entries so abandoned keys do not accumulate.
func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
