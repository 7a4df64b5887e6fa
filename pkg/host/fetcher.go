package host

import (
	"context"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// FetcherHost is handed to content_fetcher.fetch (§4.3).
type FetcherHost struct {
	*Host
	cache *PartitionedCache
}

// Cache returns this plugin's partitioned cache surface.
func (h *FetcherHost) Cache() *PartitionedCache { return h.cache }

// ExtractFile enqueues an extract_content task for content/md (§4.3
// "extract_file(content, metadata) which enqueues an extraction task").
// The pipeline does not auto-invoke extraction after fetch; fetchers call
// this explicitly once they have produced content.
func (h *FetcherHost) ExtractFile(ctx context.Context, content []byte, md metadata.Metadata) (ids.TaskId, error) {
	return enqueueExtract(ctx, h.runtime, content, md)
}

func enqueueExtract(ctx context.Context, runtime *tasks.Runtime, content []byte, md metadata.Metadata) (ids.TaskId, error) {
	payload := tasks.Payload{
		"content":  content,
		"metadata": md.AsMap(),
	}
	return runtime.Enqueue(ctx, tasks.ExtractContent, payload)
}
