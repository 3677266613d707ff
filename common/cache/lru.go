// Package cache provides a bounded least recently used cache.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a concurrency safe least recently used cache holding at most Cap
// entries
type LRU[K comparable, V any] struct {
	Cap   int
	m     sync.Mutex
	l     *list.List
	items map[K]*list.Element
	hits  uint64
	miss  uint64
}

type item[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache returns a new LRU cache with input capacity, a capacity below 1
// is treated as 1
func NewLRUCache[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		Cap:   capacity,
		l:     list.New(),
		items: make(map[K]*list.Element, capacity),
	}
}

// Add adds a value to the cache, evicting the oldest entry when full
func (c *LRU[K, V]) Add(key K, value V) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.items[key]; ok {
		c.l.MoveToFront(e)
		e.Value.(*item[K, V]).value = value
		return
	}
	c.items[key] = c.l.PushFront(&item[K, V]{key, value})
	if c.l.Len() > c.Cap {
		c.removeOldest()
	}
}

// Get returns the value stored for key and whether it was found
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.items[key]; ok {
		c.hits++
		c.l.MoveToFront(e)
		return e.Value.(*item[K, V]).value, true
	}
	c.miss++
	var zero V
	return zero, false
}

// Contains check if key is in cache this does not update LRU
func (c *LRU[K, V]) Contains(key K) bool {
	c.m.Lock()
	defer c.m.Unlock()
	_, ok := c.items[key]
	return ok
}

// Remove removes key from the cache, returns true if the key was removed
func (c *LRU[K, V]) Remove(key K) bool {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.items[key]; ok {
		c.removeElement(e)
		return true
	}
	return false
}

// Clear is used to completely clear the cache
func (c *LRU[K, V]) Clear() {
	c.m.Lock()
	defer c.m.Unlock()
	clear(c.items)
	c.l.Init()
}

// Len returns the number of cached entries
func (c *LRU[K, V]) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.l.Len()
}

// Stats returns the hit and miss counters
func (c *LRU[K, V]) Stats() (hits, misses uint64) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.hits, c.miss
}

func (c *LRU[K, V]) removeOldest() {
	if e := c.l.Back(); e != nil {
		c.removeElement(e)
	}
}

func (c *LRU[K, V]) removeElement(e *list.Element) {
	c.l.Remove(e)
	delete(c.items, e.Value.(*item[K, V]).key)
}
