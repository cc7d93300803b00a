// internal/cache/lru.go
//
// Small thread-safe LRU with an optional idle TTL.  The session store keeps
// console sessions here; OnEvict lets it stop a session's live slug
// validators when the entry is pushed out, expires, or is removed.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a least-recently-used cache safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	cap     int
	ttl     time.Duration
	ll      *list.List
	dict    map[K]*list.Element
	onEvict func(K, V)
	now     func() time.Time
}

type entry[K comparable, V any] struct {
	key  K
	val  V
	seen time.Time
}

// Option tunes an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithTTL expires entries not touched for ttl.  Zero disables expiry.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *LRU[K, V]) { c.ttl = ttl }
}

// WithOnEvict registers fn, called outside the lock for every entry that
// leaves the cache.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// New returns an LRU with the given capacity.  Panics on capacity < 1.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	c := &LRU[K, V]{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[K]*list.Element, capacity),
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value for key and marks it most recently used.  Expired
// entries are removed and reported as misses.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	ele, hit := c.dict[key]
	if !hit {
		c.mu.Unlock()
		return zero, false
	}
	e := ele.Value.(*entry[K, V])
	if c.expired(e) {
		c.removeElement(ele)
		c.mu.Unlock()
		c.evicted(e)
		return zero, false
	}
	e.seen = c.now()
	c.ll.MoveToFront(ele)
	c.mu.Unlock()
	return e.val, true
}

// Add inserts or replaces a value.  Replacing does not call OnEvict.
func (c *LRU[K, V]) Add(key K, val V) {
	var out []*entry[K, V]

	c.mu.Lock()
	if ele, hit := c.dict[key]; hit {
		e := ele.Value.(*entry[K, V])
		e.val, e.seen = val, c.now()
		c.ll.MoveToFront(ele)
	} else {
		c.dict[key] = c.ll.PushFront(&entry[K, V]{key: key, val: val, seen: c.now()})
		for c.ll.Len() > c.cap {
			last := c.ll.Back()
			out = append(out, last.Value.(*entry[K, V]))
			c.removeElement(last)
		}
	}
	c.mu.Unlock()

	for _, e := range out {
		c.evicted(e)
	}
}

// Remove deletes key, reporting whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	ele, hit := c.dict[key]
	if !hit {
		c.mu.Unlock()
		return false
	}
	e := ele.Value.(*entry[K, V])
	c.removeElement(ele)
	c.mu.Unlock()
	c.evicted(e)
	return true
}

// Sweep removes every expired entry and returns how many went.
func (c *LRU[K, V]) Sweep() int {
	if c.ttl <= 0 {
		return 0
	}
	var out []*entry[K, V]
	c.mu.Lock()
	for ele := c.ll.Back(); ele != nil; {
		prev := ele.Prev()
		e := ele.Value.(*entry[K, V])
		if c.expired(e) {
			out = append(out, e)
			c.removeElement(ele)
		}
		ele = prev
	}
	c.mu.Unlock()
	for _, e := range out {
		c.evicted(e)
	}
	return len(out)
}

// Len reports the current size.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return c.ttl > 0 && c.now().Sub(e.seen) > c.ttl
}

// removeElement must be called with mu held.
func (c *LRU[K, V]) removeElement(ele *list.Element) {
	c.ll.Remove(ele)
	delete(c.dict, ele.Value.(*entry[K, V]).key)
}

func (c *LRU[K, V]) evicted(e *entry[K, V]) {
	if c.onEvict != nil {
		c.onEvict(e.key, e.val)
	}
}
