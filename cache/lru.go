// Package cache provides a small in-memory LRU with per-entry expiry, used to
// keep recently viewed posts from the history browser.
package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultCapacity = 200
	defaultTTL      = time.Minute
)

// LRU is a size-bounded cache whose entries also expire after a TTL.
// It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	items    map[K]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

type item[K comparable, V any] struct {
	expiresAt time.Time
	key       K
	value     V
}

// New creates an LRU. Non-positive capacity or ttl fall back to defaults.
func New[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LRU[K, V]{
		items:    make(map[K]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a fresh value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	it := el.Value.(*item[K, V])
	if c.now().After(it.expiresAt) {
		c.removeElement(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return it.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		it := el.Value.(*item[K, V])
		it.value = value
		it.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.capacity {
		c.removeElement(c.order.Back())
	}
	c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value, expiresAt: expiresAt})
}

// Remove drops key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

// Len counts entries, including expired ones not yet collected.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Must be called with lock held.
func (c *LRU[K, V]) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	it := el.Value.(*item[K, V])
	c.order.Remove(el)
	delete(c.items, it.key)
}
