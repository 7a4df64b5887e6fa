package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/registry"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// Functions builds the four task functions of §4.6 over one run's
// singletons. It holds no state of its own beyond the references needed to
// dispatch into the registry and the data store.
type Functions struct {
	registry *registry.Registry
	hosts    *host.Factory
	store    datastore.DataStore
	cache    cache.Cache
	logger   logrus.FieldLogger
}

// New builds a Functions bound to one run's registry, host factory, data
// store, and cache.
func New(reg *registry.Registry, hosts *host.Factory, store datastore.DataStore, cacheImpl cache.Cache, logger logrus.FieldLogger) *Functions {
	return &Functions{registry: reg, hosts: hosts, store: store, cache: cacheImpl, logger: logger}
}

// TaskFunctions returns the name→function map phase 4 registers with the
// task runtime.
func (f *Functions) TaskFunctions() map[tasks.Name]tasks.Func {
	return map[tasks.Name]tasks.Func{
		tasks.FetchContent:   f.fetchContent,
		tasks.ExtractContent: f.extractContent,
		tasks.StoreContent:   f.storeContent,
		tasks.CleanupCache:   f.cleanupCache,
	}
}

// fetchContent selects the first content_fetcher that claims the url,
// transitions the item to fetching, and calls Fetch (§4.6). No fetcher
// claiming the url is a permanent failure; any error the fetcher
// itself returns is passed through so the task queue's own transient/
// permanent classification (§4.5) applies.
func (f *Functions) fetchContent(ctx context.Context, payload tasks.Payload) error {
	url, _ := payload["source_url"].(string)
	if url == "" {
		url, _ = payload["url"].(string)
	}
	if url == "" {
		return perrors.Permanent(fmt.Errorf("fetch_content: payload missing source_url"))
	}

	md := decodePayloadMetadata(payload)
	md = md.Copy(metadata.Changes{SourceURL: &url})

	// Record the item before fetcher selection, so a NoFetcher failure has
	// something to land the terminal state on.
	if err := f.upsertState(ctx, url, md, metadata.StatePending); err != nil {
		return err
	}

	identity, fetcher, ok := f.selectFetcher(url)
	if !ok {
		err := perrors.Permanent(&perrors.NoFetcher{URL: url})
		f.markFailed(ctx, url, err)
		return err
	}

	if err := f.upsertState(ctx, url, md, metadata.StateFetching); err != nil {
		return err
	}

	fetcherHost := f.hosts.NewFetcherHost(identity)
	if err := fetcher.Fetch(ctx, fetcherHost, url); err != nil {
		f.markFailed(ctx, url, err)
		return err
	}
	return nil
}

// extractContent selects a content_extractor by preferred mime type, then
// by CanExtract, transitions the item to extracting, and calls Extract.
// Extract is responsible for writing the result (directly via
// ExtractorHost.Storage or deferred via ExtractorHost.StoreFile); this
// function only owns the extracting→stored transition and the subsequent
// completion check (§4.6, Open Question 1).
func (f *Functions) extractContent(ctx context.Context, payload tasks.Payload) error {
	content, _ := payload["content"].([]byte)
	md := decodePayloadMetadata(payload)
	if md.SourceURL == "" {
		return perrors.Permanent(fmt.Errorf("extract_content: payload metadata missing source_url"))
	}

	if err := f.upsertState(ctx, md.SourceURL, md, metadata.StateExtracting); err != nil {
		return err
	}

	identity, extractor, ok := f.selectExtractor(md.SourceURL, md.MimeType)
	if !ok {
		err := perrors.Permanent(&perrors.NoExtractor{URL: md.SourceURL})
		f.markFailed(ctx, md.SourceURL, err)
		return err
	}

	extractorHost := f.hosts.NewExtractorHost(identity)
	if err := extractor.Extract(ctx, extractorHost, content, md); err != nil {
		f.markFailed(ctx, md.SourceURL, err)
		return err
	}

	if err := f.upsertState(ctx, md.SourceURL, md, metadata.StateStored); err != nil {
		return err
	}
	item, err := f.store.GetBySourceURL(ctx, md.SourceURL)
	if err != nil {
		return err
	}
	f.maybeComplete(ctx, item.ID)
	return nil
}

// storeContent is the task form of add_item, letting an extractor defer
// the write instead of calling Storage().AddItem synchronously from within
// Extract (§4.6).
func (f *Functions) storeContent(ctx context.Context, payload tasks.Payload) error {
	content, _ := payload["content"].([]byte)
	md := decodePayloadMetadata(payload)
	if md.SourceURL == "" {
		return perrors.Permanent(fmt.Errorf("store_content: payload metadata missing source_url"))
	}

	stored := metadata.StateStored
	md = md.Copy(metadata.Changes{ProcessingState: &stored})
	id, err := f.store.AddItem(ctx, content, md)
	if err != nil {
		return err
	}
	f.maybeComplete(ctx, id)
	return nil
}

// cleanupCache removes every cache entry a removed item held, scoped to the
// plugin partition that created them (§4.6 "calls cache.remove_all").
func (f *Functions) cleanupCache(ctx context.Context, payload tasks.Payload) error {
	partition, _ := payload["partition"].(string)
	raw, _ := payload["cache_ids"].([]interface{})

	cacheIDs := make([]ids.CacheId, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			cacheIDs = append(cacheIDs, ids.CacheId(s))
		}
	}
	if len(cacheIDs) == 0 {
		return nil
	}
	return f.cache.RemoveAll(ctx, partition, cacheIDs)
}

// upsertState records state on the item for sourceURL, creating it (with
// md as its initial metadata) if this is the first time the pipeline has
// touched this source_url, or patching just processing_state if an item
// already exists. Using UpdateMetadata on the existing-item path means it
// never disturbs content a prior step already stored.
func (f *Functions) upsertState(ctx context.Context, sourceURL string, md metadata.Metadata, state metadata.ProcessingState) error {
	existing, err := f.store.GetBySourceURL(ctx, sourceURL)
	if err == datastore.ErrNotFound {
		withState := md.Copy(metadata.Changes{ProcessingState: &state})
		_, err := f.store.AddItem(ctx, nil, withState)
		return err
	}
	if err != nil {
		return err
	}
	_, err = f.store.UpdateMetadata(ctx, existing.ID, metadata.Patch{ProcessingState: &state})
	return err
}

// markFailed records the terminal failed state and a failure reason on the
// item for sourceURL, if one exists yet. Called from the failure paths of
// fetch_content and extract_content, distinct from QueuedHandle.OnFailed's queue-wide
// hook (which covers retries exhausted at the queue layer, not a single
// task invocation's own failure path).
func (f *Functions) markFailed(ctx context.Context, sourceURL string, cause error) {
	item, err := f.store.GetBySourceURL(ctx, sourceURL)
	if err != nil {
		return
	}
	failed := metadata.StateFailed
	_, _ = f.store.UpdateMetadata(ctx, item.ID, metadata.Patch{
		ProcessingState: &failed,
		Extra:           map[string]string{"failure_reason": cause.Error()},
	})
}

func decodePayloadMetadata(payload tasks.Payload) metadata.Metadata {
	m, _ := payload["metadata"].(map[string]interface{})
	return metadata.FromMap(m)
}
