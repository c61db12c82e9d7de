package cache

import "sync"

// MemoryCache is a map-backed Cache guarded by a RWMutex. It has no eviction;
// it is meant for the lifetime of one CLI run or batch.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string][]byte),
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.data[key]
	return value, exists
}

// Put keeps its own copy of content.
func (c *MemoryCache) Put(key string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = append([]byte(nil), content...)
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string][]byte)
}

// Size returns the number of cached references.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
