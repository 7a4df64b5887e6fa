// Package datastore implements §4.1's data_store_provider contract. A
// DataStore is the durable record of indexed items: it owns ItemId
// assignment, enforces the §3 invariant that at most one stored item
// shares a source_url, and returns the CacheId set freed by a removal so
// the pipeline can enqueue cleanup_cache (§4.6).
package datastore

import (
	"context"
	"errors"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// ErrNotFound is returned when an item is absent.
var ErrNotFound = errors.New("datastore: item not found")

// Item pairs a stored item's identity, metadata, content bytes, and the
// CacheIds of any cache entries created on its behalf (e.g. a fetcher's raw
// response cached ahead of extraction).
type Item struct {
	ID       ids.ItemId
	Metadata metadata.Metadata
	Content  []byte
	CacheIDs []ids.CacheId
}

// DataStore is the contract every data_store_provider must satisfy.
type DataStore interface {
	// AddItem stores content under a freshly assigned ItemId, or — if an
	// item with the same source_url already exists — updates that item in
	// place and returns its existing id (§3 invariant 2).
	AddItem(ctx context.Context, content []byte, md metadata.Metadata) (ids.ItemId, error)

	// GetItem retrieves a stored item by id.
	GetItem(ctx context.Context, id ids.ItemId) (Item, error)

	// GetBySourceURL looks up an item by its canonical source_url, used by
	// the task runtime's at-most-once-per-fingerprint dedup check (§4.5).
	GetBySourceURL(ctx context.Context, sourceURL string) (Item, error)

	// UpdateMetadata applies patch to the item's metadata via
	// Metadata.Merge and persists the result (§4.6 "via
	// data_store.update_metadata at task boundaries").
	UpdateMetadata(ctx context.Context, id ids.ItemId, patch metadata.Patch) (metadata.Metadata, error)

	// RemoveItem deletes an item and returns the CacheId set it held, for
	// the caller to route through cleanup_cache.
	RemoveItem(ctx context.Context, id ids.ItemId) ([]ids.CacheId, error)

	// AssociateCache records that cacheID was created on behalf of id, so a
	// later RemoveItem can report it for cleanup.
	AssociateCache(ctx context.Context, id ids.ItemId, cacheID ids.CacheId) error

	// ListItems returns every stored ItemId, used by soft and hard reset
	// (§4.8).
	ListItems(ctx context.Context) ([]ids.ItemId, error)

	// Close releases any underlying resources.
	Close() error
}
