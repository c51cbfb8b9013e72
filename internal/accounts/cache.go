package accounts

import (
	"sync"
	"time"

	"github.com/velmaris/votekeep/internal/models"
)

// accountCache is a bounded read-through cache keyed by account id.
// Entries expire after ttl and every write path invalidates the key it
// touched, so the cache only ever shortcuts repeated reads.
type accountCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	max     int
}

type cacheEntry struct {
	account   models.Account
	expiresAt time.Time
}

func newAccountCache(ttl time.Duration, max int) *accountCache {
	if max <= 0 {
		max = 256
	}
	return &accountCache{entries: make(map[string]cacheEntry), ttl: ttl, max: max}
}

func (c *accountCache) get(id string, now time.Time) (models.Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return models.Account{}, false
	}
	if now.After(e.expiresAt) {
		delete(c.entries, id)
		return models.Account{}, false
	}
	return e.account, true
}

func (c *accountCache) put(a models.Account, now time.Time) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		c.evictLocked(now)
	}
	c.entries[a.ID] = cacheEntry{account: a, expiresAt: now.Add(c.ttl)}
}

func (c *accountCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// evictLocked drops expired entries first and, if the cache is still at
// capacity, removes an arbitrary entry so the map stays bounded.
func (c *accountCache) evictLocked(now time.Time) {
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
	if len(c.entries) < c.max {
		return
	}
	for id := range c.entries {
		delete(c.entries, id)
		return
	}
}
