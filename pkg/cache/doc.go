// Package cache implements the cache_provider extension point (§4.1):
// MemoryCache (test/development, bounded LRU) and RedisCache (production).
package cache
