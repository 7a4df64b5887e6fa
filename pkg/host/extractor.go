package host

import (
	"context"

	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// ExtractorHost is handed to content_extractor.extract (§4.3). Unlike the
// fetcher host its storage access is the full DataStore — extractors write
// items directly via Storage().AddItem, not through a deferred task.
type ExtractorHost struct {
	*Host
	cache   *PartitionedCache
	storage datastore.DataStore
}

// Cache returns this plugin's partitioned cache surface.
func (h *ExtractorHost) Cache() *PartitionedCache { return h.cache }

// Storage returns the full data store (§4.3 "Extractor host: storage (full
// DataStore)").
func (h *ExtractorHost) Storage() datastore.DataStore { return h.storage }

// ExtractFile enqueues a recursive extract_content task (§4.6 "may recurse
// via host.extract_file(sub_content, sub_metadata)").
func (h *ExtractorHost) ExtractFile(ctx context.Context, content []byte, md metadata.Metadata) (ids.TaskId, error) {
	return enqueueExtract(ctx, h.runtime, content, md)
}

// StoreFile enqueues a store_content task instead of writing through
// Storage() directly, for extractors that want the write to happen off
// their own call stack (§4.6 "store_content... so extractors can defer
// storage").
func (h *ExtractorHost) StoreFile(ctx context.Context, content []byte, md metadata.Metadata) (ids.TaskId, error) {
	payload := tasks.Payload{
		"content":  content,
		"metadata": md.AsMap(),
	}
	return h.runtime.Enqueue(ctx, tasks.StoreContent, payload)
}
