package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/platinummonkey/paise/pkg/ids"
)

// MemoryCache is a bounded in-process LRU cache backing the test and
// development profile's cache provider.
type MemoryCache struct {
	mu         sync.Mutex
	partitions map[string]*lru.Cache[ids.CacheId, []byte]
	size       int
}

// NewMemoryCache creates a MemoryCache whose per-partition LRU holds up to
// size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = 4096
	}
	return &MemoryCache{partitions: make(map[string]*lru.Cache[ids.CacheId, []byte]), size: size}
}

func (c *MemoryCache) partition(key string) *lru.Cache[ids.CacheId, []byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.partitions[key]
	if !ok {
		p, _ = lru.New[ids.CacheId, []byte](c.size)
		c.partitions[key] = p
	}
	return p
}

func (c *MemoryCache) Put(_ context.Context, partition string, value []byte) (ids.CacheId, error) {
	id := ids.NewCacheId()
	stored := make([]byte, len(value))
	copy(stored, value)
	c.partition(partition).Add(id, stored)
	return id, nil
}

func (c *MemoryCache) Get(_ context.Context, partition string, id ids.CacheId) ([]byte, error) {
	value, ok := c.partition(partition).Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (c *MemoryCache) Remove(_ context.Context, partition string, id ids.CacheId) error {
	c.partition(partition).Remove(id)
	return nil
}

func (c *MemoryCache) RemoveAll(_ context.Context, partition string, cacheIDs []ids.CacheId) error {
	p := c.partition(partition)
	for _, id := range cacheIDs {
		p.Remove(id)
	}
	return nil
}

func (c *MemoryCache) Close() error { return nil }
