// Package cache implements §4.1's cache_provider contract. A Cache stores
// bytes under a CacheId it generates on Put, scoped by the caller's
// partition the same way StateStore is; the host layer supplies the
// partition string, so this package only ever sees it as an argument.
package cache

import (
	"context"
	"errors"

	"github.com/platinummonkey/paise/pkg/ids"
)

// ErrNotFound is returned by Get when id is absent from the partition.
var ErrNotFound = errors.New("cache: id not found")

// Cache is the contract every cache_provider must satisfy.
type Cache interface {
	// Put stores value under a freshly generated CacheId in partition.
	Put(ctx context.Context, partition string, value []byte) (ids.CacheId, error)

	// Get retrieves the value stored at (partition, id).
	Get(ctx context.Context, partition string, id ids.CacheId) ([]byte, error)

	// Remove deletes (partition, id). Removing an absent id is not an error.
	Remove(ctx context.Context, partition string, id ids.CacheId) error

	// RemoveAll deletes every id in ids within partition — the mechanism
	// behind the cleanup_cache task (§4.6).
	RemoveAll(ctx context.Context, partition string, ids []ids.CacheId) error

	// Close releases any underlying resources.
	Close() error
}
