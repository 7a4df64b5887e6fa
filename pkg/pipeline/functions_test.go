package pipeline_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/configuration"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/pipeline"
	"github.com/platinummonkey/paise/pkg/registry"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

type stubFetcher struct {
	scheme  string
	fetchFn func(ctx context.Context, h *host.FetcherHost, url string) error
}

func (f *stubFetcher) CanFetch(url string) bool { return f.scheme == "" || hasPrefix(url, f.scheme) }
func (f *stubFetcher) Fetch(ctx context.Context, h *host.FetcherHost, url string) error {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, h, url)
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

type stubExtractor struct {
	mimeTypes []string
	extractFn func(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error
}

func (e *stubExtractor) PreferredMimeTypes() []string { return e.mimeTypes }
func (e *stubExtractor) CanExtract(sourceURL, mimeType string) bool {
	return true
}
func (e *stubExtractor) Extract(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error {
	if e.extractFn != nil {
		return e.extractFn(ctx, h, content, md)
	}
	return nil
}

func newTestFunctions(t *testing.T, reg *registry.Registry) (*pipeline.Functions, datastore.DataStore, *tasks.Runtime) {
	t.Helper()

	store := datastore.NewMemoryDataStore()
	cacheImpl := cache.NewMemoryCache(64)
	handle := tasks.NewInlineHandle()
	runtime := tasks.NewRuntime(handle, store)

	view, err := configuration.Build(context.Background(), state.NewMemoryStateStore(), nil, "")
	require.NoError(t, err)

	hosts := host.NewFactory(logrus.New(), view, state.NewMemoryStateStore(), cacheImpl, store, runtime)

	fns := pipeline.New(reg, hosts, store, cacheImpl, logrus.New())
	for name, fn := range fns.TaskFunctions() {
		runtime.Register(name, fn)
	}
	require.NoError(t, runtime.Start(context.Background()))

	return fns, store, runtime
}

func TestFetchContent_NoFetcherMarksFailed(t *testing.T) {
	reg := registry.New()
	reg.CloseProviderPhase()

	_, store, runtime := newTestFunctions(t, reg)

	_, scheduled, err := runtime.ScheduleFetch(context.Background(), "https://example.com/a", nil)
	require.NoError(t, err)
	assert.True(t, scheduled)

	item, err := store.GetBySourceURL(context.Background(), tasks.CanonicalizeURL("https://example.com/a"))
	require.NoError(t, err)
	assert.Equal(t, metadata.StateFailed, item.Metadata.ProcessingState)
}

func TestFetchExtractLeafItemCompletesDirectly(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.KindContentFetcher, "fetcher", &stubFetcher{
		fetchFn: func(ctx context.Context, h *host.FetcherHost, url string) error {
			md := metadata.Metadata{SourceURL: url, MimeType: "text/plain"}
			_, err := h.ExtractFile(ctx, []byte("hello"), md)
			return err
		},
	}))
	require.NoError(t, reg.Register(registry.KindContentExtractor, "extractor", &stubExtractor{
		mimeTypes: []string{"text/plain"},
		extractFn: func(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error {
			_, err := h.Storage().AddItem(ctx, content, md)
			return err
		},
	}))
	reg.CloseProviderPhase()

	_, store, runtime := newTestFunctions(t, reg)

	_, scheduled, err := runtime.ScheduleFetch(context.Background(), "https://example.com/leaf", nil)
	require.NoError(t, err)
	assert.True(t, scheduled)

	item, err := store.GetBySourceURL(context.Background(), tasks.CanonicalizeURL("https://example.com/leaf"))
	require.NoError(t, err)
	assert.Equal(t, metadata.StateCompleted, item.Metadata.ProcessingState)
}

func TestFetchExtractParentWaitsForChild(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.KindContentFetcher, "fetcher", &stubFetcher{
		fetchFn: func(ctx context.Context, h *host.FetcherHost, url string) error {
			md := metadata.Metadata{SourceURL: url, MimeType: "application/x-archive"}
			_, err := h.ExtractFile(ctx, []byte("archive"), md)
			return err
		},
	}))

	var childEnqueued bool
	require.NoError(t, reg.Register(registry.KindContentExtractor, "extractor", &stubExtractor{
		mimeTypes: []string{"application/x-archive"},
		extractFn: func(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error {
			id, err := h.Storage().AddItem(ctx, content, md)
			if err != nil {
				return err
			}
			if !childEnqueued {
				childEnqueued = true
				childMD := metadata.Metadata{SourceURL: md.SourceURL + "#child", MimeType: "text/plain", ParentID: string(id)}
				_, err := h.ExtractFile(ctx, []byte("child content"), childMD)
				return err
			}
			return nil
		},
	}))
	reg.CloseProviderPhase()

	_, store, runtime := newTestFunctions(t, reg)

	_, scheduled, err := runtime.ScheduleFetch(context.Background(), "https://example.com/archive", nil)
	require.NoError(t, err)
	assert.True(t, scheduled)

	parent, err := store.GetBySourceURL(context.Background(), tasks.CanonicalizeURL("https://example.com/archive"))
	require.NoError(t, err)
	assert.Equal(t, metadata.StateCompleted, parent.Metadata.ProcessingState)

	child, err := store.GetBySourceURL(context.Background(), "https://example.com/archive#child")
	require.NoError(t, err)
	assert.Equal(t, metadata.StateCompleted, child.Metadata.ProcessingState)
}

var _ = ids.ItemId("")
