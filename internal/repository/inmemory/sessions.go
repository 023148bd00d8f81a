package inmemory

import (
	"sync"
	"time"

	"wedding-rsvp/internal/auth"
)

// InMemorySessionCache remembers access tokens that the auth service already
// accepted, so repeated admin requests skip the round trip until the TTL ends.
type InMemorySessionCache struct {
	mu    sync.RWMutex
	items map[string]sessionItem
}

const maxCachedSessions = 1024

type sessionItem struct {
	value     auth.User
	expiresAt time.Time
}

func NewInMemorySessionCache() *InMemorySessionCache {
	return &InMemorySessionCache{
		items: make(map[string]sessionItem),
	}
}

func (c *InMemorySessionCache) GetByToken(token string) (auth.User, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[token]
	c.mu.RUnlock()
	if !ok {
		return auth.User{}, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[token]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, token)
		}
		c.mu.Unlock()
		return auth.User{}, false
	}

	return item.value, true
}

func (c *InMemorySessionCache) SetByToken(token string, user auth.User, ttl time.Duration) {
	if token == "" || ttl <= 0 {
		c.DeleteByToken(token)
		return
	}

	if c.Len() >= maxCachedSessions {
		c.Prune()
	}

	c.mu.Lock()
	c.items[token] = sessionItem{
		value:     user,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemorySessionCache) DeleteByToken(token string) {
	c.mu.Lock()
	delete(c.items, token)
	c.mu.Unlock()
}

func (c *InMemorySessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Prune drops expired entries.
func (c *InMemorySessionCache) Prune() int {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	for token, item := range c.items {
		if !item.expiresAt.After(now) {
			delete(c.items, token)
			removed++
		}
	}
	c.mu.Unlock()
	return removed
}
