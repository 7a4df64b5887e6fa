package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/ids"
)

func suites(t *testing.T) map[string]cache.Cache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisCache, err := cache.NewRedisCache(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { redisCache.Close() })

	return map[string]cache.Cache{
		"memory": cache.NewMemoryCache(64),
		"redis":  redisCache,
	}
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range suites(t) {
		t.Run(name, func(t *testing.T) {
			id, err := c.Put(ctx, "p.a", []byte("hello"))
			require.NoError(t, err)

			value, err := c.Get(ctx, "p.a", id)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), value)
		})
	}
}

func TestCache_GetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	for name, c := range suites(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "p.a", "does-not-exist")
			assert.ErrorIs(t, err, cache.ErrNotFound)
		})
	}
}

func TestCache_RemoveAll(t *testing.T) {
	ctx := context.Background()
	for name, c := range suites(t) {
		t.Run(name, func(t *testing.T) {
			id1, err := c.Put(ctx, "p.a", []byte("one"))
			require.NoError(t, err)
			id2, err := c.Put(ctx, "p.a", []byte("two"))
			require.NoError(t, err)

			require.NoError(t, c.RemoveAll(ctx, "p.a", []ids.CacheId{id1, id2}))

			_, err = c.Get(ctx, "p.a", id1)
			assert.ErrorIs(t, err, cache.ErrNotFound)
			_, err = c.Get(ctx, "p.a", id2)
			assert.ErrorIs(t, err, cache.ErrNotFound)
		})
	}
}

func TestCache_PartitionIsolation(t *testing.T) {
	ctx := context.Background()
	for name, c := range suites(t) {
		t.Run(name, func(t *testing.T) {
			id, err := c.Put(ctx, "p.a", []byte("secret"))
			require.NoError(t, err)

			_, err = c.Get(ctx, "p.b", id)
			assert.ErrorIs(t, err, cache.ErrNotFound)
		})
	}
}
