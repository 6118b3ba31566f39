package assets

import (
	"sync"
)

// Cache is an in-memory byte cache keyed by asset path. Key toggles refetch
// the same files over and over; the cache keeps those swaps off the source.
type Cache struct {
	mu    sync.Mutex
	data  map[string][]byte
	bytes int

	hits   int
	misses int
}

func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an entry.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an entry, replacing any previous value.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.data[key]; ok {
		c.bytes -= len(old)
	}
	c.data[key] = data
	c.bytes += len(data)
}

// Invalidate drops one entry, forcing the next Get to miss. The watcher
// calls this when a file changes on disk.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.data[key]; ok {
		c.bytes -= len(old)
		delete(c.data, key)
	}
}

// Clear drops everything and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string][]byte)
	c.bytes = 0
	c.hits = 0
	c.misses = 0
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Bytes returns the total cached payload size.
func (c *Cache) Bytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}
