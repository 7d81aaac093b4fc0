// Package permcache memoizes permission-check results for a short window so
// hot paths do not re-traverse the permission graph on every request.
//
// The key always includes the identity: caching by permission name alone
// would leak one identity's grant to another.
package permcache

import (
	"container/list"
	"sync"
	"time"
)

// Key identifies one cached check. Both fields participate in equality.
type Key struct {
	IdentityID string
	Permission string
}

type entry struct {
	key       Key
	granted   bool
	expiresAt time.Time
}

// Cache is a bounded LRU with per-entry TTL measured from insertion.
// Entries race-expire by TTL; Clear is the only explicit invalidation and is
// invoked on logout. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	items    map[Key]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

// New creates a cache holding at most capacity entries, each valid for ttl
// from insertion. Panics on a non-positive capacity or ttl: both are static
// configuration, so a bad value is a wiring bug.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity < 1 {
		panic("permcache: capacity must be >= 1")
	}
	if ttl <= 0 {
		panic("permcache: ttl must be positive")
	}
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		items:    make(map[Key]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached result for key, or ok=false on a miss or an expired
// entry. Expired entries are evicted on sight.
func (c *Cache) Get(key Key) (granted, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, exists := c.items[key]
	if !exists {
		return false, false
	}
	ent := el.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		return false, false
	}
	c.order.MoveToFront(el)
	return ent.granted, true
}

// Put stores a check result, restarting the TTL. The least recently used
// entry is evicted when the cache is full.
func (c *Cache) Put(key Key, granted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, exists := c.items[key]; exists {
		ent := el.Value.(*entry)
		ent.granted = granted
		ent.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
	c.items[key] = c.order.PushFront(&entry{key: key, granted: granted, expiresAt: expiresAt})
}

// Clear empties the whole cache. Called on logout; safe to call concurrently
// with reads.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[Key]*list.Element, c.capacity)
	c.order.Init()
}

// Len returns the number of live entries, counting not-yet-evicted expired
// ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
