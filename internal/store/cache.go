package store

import (
	"sort"
	"sync"
)

// Cache is a generic, concurrency-safe, in-memory key-value cache.
// Failed loads are not cached, so a later call retries the loader.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewCache creates a new, empty Cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{
		items: make(map[string]T),
	}
}

// Set inserts or updates a value for the given key.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	c.items[key] = value
	c.mu.Unlock()
}

// Get retrieves a value by key. Returns the value and true if found,
// or the zero value and false if not.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	return v, ok
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. The second return value reports whether load ran.
// Concurrent misses on the same key may each call load; the last write wins.
func (c *Cache[T]) GetOrLoad(key string, load func() (T, error)) (T, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, false, nil
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, true, err
	}
	c.Set(key, v)
	return v, true, nil
}

// Len returns the number of items in the cache.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Keys returns all keys in sorted order.
func (c *Cache[T]) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
