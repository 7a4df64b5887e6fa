package datastore

import (
	"context"
	"sync"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// MemoryDataStore is the in-process DataStore backing the test profile.
type MemoryDataStore struct {
	mu          sync.RWMutex
	items       map[ids.ItemId]Item
	bySourceURL map[string]ids.ItemId
}

// NewMemoryDataStore creates an empty in-memory DataStore.
func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{
		items:       make(map[ids.ItemId]Item),
		bySourceURL: make(map[string]ids.ItemId),
	}
}

func (d *MemoryDataStore) AddItem(_ context.Context, content []byte, md metadata.Metadata) (ids.ItemId, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.bySourceURL[md.SourceURL]; ok {
		item := d.items[existing]
		item.Content = content
		item.Metadata = md
		d.items[existing] = item
		return existing, nil
	}

	id := ids.NewItemId()
	d.items[id] = Item{ID: id, Metadata: md, Content: content}
	if md.SourceURL != "" {
		d.bySourceURL[md.SourceURL] = id
	}
	return id, nil
}

func (d *MemoryDataStore) GetItem(_ context.Context, id ids.ItemId) (Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	item, ok := d.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

func (d *MemoryDataStore) GetBySourceURL(_ context.Context, sourceURL string) (Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.bySourceURL[sourceURL]
	if !ok {
		return Item{}, ErrNotFound
	}
	return d.items[id], nil
}

func (d *MemoryDataStore) UpdateMetadata(_ context.Context, id ids.ItemId, patch metadata.Patch) (metadata.Metadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return metadata.Metadata{}, ErrNotFound
	}
	merged := item.Metadata.Merge(patch)
	item.Metadata = merged
	d.items[id] = item
	return merged, nil
}

func (d *MemoryDataStore) RemoveItem(_ context.Context, id ids.ItemId) ([]ids.CacheId, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(d.items, id)
	if item.Metadata.SourceURL != "" {
		delete(d.bySourceURL, item.Metadata.SourceURL)
	}
	return item.CacheIDs, nil
}

func (d *MemoryDataStore) AssociateCache(_ context.Context, id ids.ItemId, cacheID ids.CacheId) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return ErrNotFound
	}
	item.CacheIDs = append(item.CacheIDs, cacheID)
	d.items[id] = item
	return nil
}

func (d *MemoryDataStore) ListItems(_ context.Context) ([]ids.ItemId, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]ids.ItemId, 0, len(d.items))
	for id := range d.items {
		out = append(out, id)
	}
	return out, nil
}

func (d *MemoryDataStore) Close() error { return nil }
