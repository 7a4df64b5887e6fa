package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/paise/pkg/ids"
)

// RedisCache is the production-profile Cache, grounded directly on the
// teacher's postgres.RedisCache (pkg/storage/postgres/cache.go): same
// client construction and connectivity check, repointed at raw content
// bytes instead of marshaled API records.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and verifies reachability with Ping.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func redisCacheKey(partition string, id ids.CacheId) string {
	return "cache:" + partition + ":" + string(id)
}

func (c *RedisCache) Put(ctx context.Context, partition string, value []byte) (ids.CacheId, error) {
	id := ids.NewCacheId()
	if err := c.client.Set(ctx, redisCacheKey(partition, id), value, 0).Err(); err != nil {
		return "", fmt.Errorf("cache: redis put: %w", err)
	}
	return id, nil
}

func (c *RedisCache) Get(ctx context.Context, partition string, id ids.CacheId) ([]byte, error) {
	value, err := c.client.Get(ctx, redisCacheKey(partition, id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get: %w", err)
	}
	return value, nil
}

func (c *RedisCache) Remove(ctx context.Context, partition string, id ids.CacheId) error {
	if err := c.client.Del(ctx, redisCacheKey(partition, id)).Err(); err != nil {
		return fmt.Errorf("cache: redis remove: %w", err)
	}
	return nil
}

func (c *RedisCache) RemoveAll(ctx context.Context, partition string, cacheIDs []ids.CacheId) error {
	if len(cacheIDs) == 0 {
		return nil
	}
	keys := make([]string, len(cacheIDs))
	for i, id := range cacheIDs {
		keys[i] = redisCacheKey(partition, id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: redis remove all: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }
