package datastore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

func suites(t *testing.T) map[string]datastore.DataStore {
	t.Helper()

	sqliteStore, err := datastore.NewSQLiteDataStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]datastore.DataStore{
		"memory": datastore.NewMemoryDataStore(),
		"sqlite": sqliteStore,
	}
}

func TestDataStore_AddAndGetItem(t *testing.T) {
	ctx := context.Background()
	for name, store := range suites(t) {
		t.Run(name, func(t *testing.T) {
			md := metadata.Metadata{SourceURL: "file:///tmp/a.txt", Title: "hello"}
			id, err := store.AddItem(ctx, []byte("hello"), md)
			require.NoError(t, err)

			item, err := store.GetItem(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), item.Content)
			assert.Equal(t, "hello", item.Metadata.Title)
		})
	}
}

func TestDataStore_AddItemDedupsBySourceURL(t *testing.T) {
	ctx := context.Background()
	for name, store := range suites(t) {
		t.Run(name, func(t *testing.T) {
			md := metadata.Metadata{SourceURL: "file:///tmp/a.txt"}
			id1, err := store.AddItem(ctx, []byte("v1"), md)
			require.NoError(t, err)

			id2, err := store.AddItem(ctx, []byte("v2"), md)
			require.NoError(t, err)

			assert.Equal(t, id1, id2)

			item, err := store.GetItem(ctx, id1)
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), item.Content)
		})
	}
}

func TestDataStore_GetBySourceURLNotFound(t *testing.T) {
	ctx := context.Background()
	for name, store := range suites(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetBySourceURL(ctx, "file:///does/not/exist")
			assert.ErrorIs(t, err, datastore.ErrNotFound)
		})
	}
}

func TestDataStore_UpdateMetadataMerges(t *testing.T) {
	ctx := context.Background()
	for name, store := range suites(t) {
		t.Run(name, func(t *testing.T) {
			md := metadata.Metadata{SourceURL: "file:///tmp/a.txt", Tags: []string{"x"}}
			id, err := store.AddItem(ctx, []byte("c"), md)
			require.NoError(t, err)

			state := metadata.StateStored
			merged, err := store.UpdateMetadata(ctx, id, metadata.Patch{
				ProcessingState: &state,
				Tags:            []string{"y"},
			})
			require.NoError(t, err)
			assert.Equal(t, metadata.StateStored, merged.ProcessingState)
			assert.Equal(t, []string{"x", "y"}, merged.Tags)
		})
	}
}

func TestDataStore_RemoveItemReturnsCacheIDs(t *testing.T) {
	ctx := context.Background()
	for name, store := range suites(t) {
		t.Run(name, func(t *testing.T) {
			id, err := store.AddItem(ctx, []byte("c"), metadata.Metadata{SourceURL: "u"})
			require.NoError(t, err)
			require.NoError(t, store.AssociateCache(ctx, id, ids.CacheId("cache-1")))

			cacheIDs, err := store.RemoveItem(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []ids.CacheId{"cache-1"}, cacheIDs)

			_, err = store.GetItem(ctx, id)
			assert.ErrorIs(t, err, datastore.ErrNotFound)
		})
	}
}

func TestDataStore_ListItems(t *testing.T) {
	ctx := context.Background()
	for name, store := range suites(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.AddItem(ctx, []byte("a"), metadata.Metadata{SourceURL: "u1"})
			require.NoError(t, err)
			_, err = store.AddItem(ctx, []byte("b"), metadata.Metadata{SourceURL: "u2"})
			require.NoError(t, err)

			items, err := store.ListItems(ctx)
			require.NoError(t, err)
			assert.Len(t, items, 2)
		})
	}
}
