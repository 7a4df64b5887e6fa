package extractors_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/configuration"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/extractors"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

func newExtractorHost(t *testing.T) (*host.ExtractorHost, *datastore.MemoryDataStore) {
	t.Helper()
	store := state.NewMemoryStateStore()
	view, err := configuration.Build(context.Background(), store, nil, "")
	require.NoError(t, err)

	ds := datastore.NewMemoryDataStore()
	rt := tasks.NewRuntime(tasks.NewInlineHandle(), ds)
	require.NoError(t, rt.Start(context.Background()))

	f := host.NewFactory(logrus.New(), view, store, cache.NewMemoryCache(64), ds, rt)
	return f.NewExtractorHost(host.PluginIdentity("extractor-under-test")), ds
}

func TestTextExtractor_PreferredMimeTypesAndCanExtract(t *testing.T) {
	e := extractors.NewTextExtractor()
	assert.Equal(t, []string{"text/plain"}, e.PreferredMimeTypes())
	assert.True(t, e.CanExtract("https://example.com/a", "text/plain"))
	assert.True(t, e.CanExtract("https://example.com/a", ""))
	assert.False(t, e.CanExtract("https://example.com/a", "text/html"))
}

func TestTextExtractor_Extract_StoresContentAndDerivesTitleFromFirstLine(t *testing.T) {
	h, ds := newExtractorHost(t)

	err := extractors.NewTextExtractor().Extract(context.Background(), h, []byte("\n  Hello World  \nbody text\n"), metadata.Metadata{SourceURL: "https://example.com/a"})
	require.NoError(t, err)

	item, err := ds.GetBySourceURL(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", item.Metadata.Title)
	assert.Equal(t, "text/plain", item.Metadata.MimeType)
	assert.Equal(t, []byte("\n  Hello World  \nbody text\n"), item.Content)
}

func TestTextExtractor_Extract_DoesNotOverrideExistingTitleOrMimeType(t *testing.T) {
	h, ds := newExtractorHost(t)

	md := metadata.Metadata{SourceURL: "https://example.com/b", Title: "Given Title", MimeType: "application/x-custom"}
	err := extractors.NewTextExtractor().Extract(context.Background(), h, []byte("ignored first line"), md)
	require.NoError(t, err)

	item, err := ds.GetBySourceURL(context.Background(), "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, "Given Title", item.Metadata.Title)
	assert.Equal(t, "application/x-custom", item.Metadata.MimeType)
}

func TestHTMLExtractor_PreferredMimeTypesAndCanExtract(t *testing.T) {
	e := extractors.NewHTMLExtractor()
	assert.Equal(t, []string{"text/html"}, e.PreferredMimeTypes())
	assert.True(t, e.CanExtract("https://example.com/a", "text/html"))
	assert.True(t, e.CanExtract("https://example.com/a.htm", ""))
	assert.False(t, e.CanExtract("https://example.com/a", "text/plain"))
}

func TestHTMLExtractor_Extract_LiftsTitleAndStripsTags(t *testing.T) {
	h, ds := newExtractorHost(t)

	body := []byte("<html><head><title>  My  Page </title><style>.x{color:red}</style></head>" +
		"<body><script>alert(1)</script><p>Hello <b>World</b></p></body></html>")

	err := extractors.NewHTMLExtractor().Extract(context.Background(), h, body, metadata.Metadata{SourceURL: "https://example.com/p"})
	require.NoError(t, err)

	item, err := ds.GetBySourceURL(context.Background(), "https://example.com/p")
	require.NoError(t, err)
	assert.Equal(t, "My Page", item.Metadata.Title)
	assert.Equal(t, "text/html", item.Metadata.MimeType)
	assert.NotContains(t, string(item.Content), "<")
	assert.NotContains(t, string(item.Content), "alert(1)")
	assert.Contains(t, string(item.Content), "Hello World")
}

func TestHTMLExtractor_Extract_DoesNotOverrideExistingTitle(t *testing.T) {
	h, ds := newExtractorHost(t)

	body := []byte("<html><title>Ignored</title><body>text</body></html>")
	err := extractors.NewHTMLExtractor().Extract(context.Background(), h, body, metadata.Metadata{SourceURL: "https://example.com/q", Title: "Given"})
	require.NoError(t, err)

	item, err := ds.GetBySourceURL(context.Background(), "https://example.com/q")
	require.NoError(t, err)
	assert.Equal(t, "Given", item.Metadata.Title)
}
