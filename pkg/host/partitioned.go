package host

import (
	"context"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/state"
)

// PartitionedState restricts a raw state.StateStore to the one partition
// named by a plugin's identity. Plugins only ever see this surface; the
// core alone calls the raw StateStore with explicit partition strings
// (§4.3 "the raw StateStore/Cache protocols ... are used only by the core").
type PartitionedState struct {
	store     state.StateStore
	partition string
}

func newPartitionedState(store state.StateStore, identity PluginIdentity) *PartitionedState {
	return &PartitionedState{store: store, partition: string(identity)}
}

func (s *PartitionedState) Get(ctx context.Context, key string) ([]byte, int, error) {
	return s.store.Get(ctx, s.partition, key)
}

func (s *PartitionedState) Set(ctx context.Context, key string, value []byte, version int) error {
	if state.IsReservedPartition(s.partition) {
		return &perrors.ReservedPartition{Partition: s.partition}
	}
	return s.store.Set(ctx, s.partition, key, value, version)
}

func (s *PartitionedState) Delete(ctx context.Context, key string) error {
	if state.IsReservedPartition(s.partition) {
		return &perrors.ReservedPartition{Partition: s.partition}
	}
	return s.store.Delete(ctx, s.partition, key)
}

func (s *PartitionedState) ListKeys(ctx context.Context) ([]string, error) {
	return s.store.ListKeys(ctx, s.partition)
}

func (s *PartitionedState) ListVersionsBelow(ctx context.Context, v int) ([]state.Entry, error) {
	return s.store.ListVersionsBelow(ctx, s.partition, v)
}

// ClearPartition removes every key this plugin owns, used by reset_action
// (§4.8) via the reset host.
func (s *PartitionedState) ClearPartition(ctx context.Context) error {
	if state.IsReservedPartition(s.partition) {
		return &perrors.ReservedPartition{Partition: s.partition}
	}
	return s.store.ClearPartition(ctx, s.partition)
}

// PartitionedCache restricts a raw cache.Cache to one plugin's partition,
// mirroring PartitionedState.
type PartitionedCache struct {
	cache     cache.Cache
	partition string
}

func newPartitionedCache(c cache.Cache, identity PluginIdentity) *PartitionedCache {
	return &PartitionedCache{cache: c, partition: string(identity)}
}

func (c *PartitionedCache) Put(ctx context.Context, value []byte) (ids.CacheId, error) {
	if state.IsReservedPartition(c.partition) {
		return "", &perrors.ReservedPartition{Partition: c.partition}
	}
	return c.cache.Put(ctx, c.partition, value)
}

func (c *PartitionedCache) Get(ctx context.Context, id ids.CacheId) ([]byte, error) {
	return c.cache.Get(ctx, c.partition, id)
}

func (c *PartitionedCache) Remove(ctx context.Context, id ids.CacheId) error {
	if state.IsReservedPartition(c.partition) {
		return &perrors.ReservedPartition{Partition: c.partition}
	}
	return c.cache.Remove(ctx, c.partition, id)
}

func (c *PartitionedCache) RemoveAll(ctx context.Context, cacheIDs []ids.CacheId) error {
	if state.IsReservedPartition(c.partition) {
		return &perrors.ReservedPartition{Partition: c.partition}
	}
	return c.cache.RemoveAll(ctx, c.partition, cacheIDs)
}
