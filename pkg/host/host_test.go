package host_test

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
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

func newTestFactory(t *testing.T) (*host.Factory, *tasks.Runtime) {
	t.Helper()
	store := state.NewMemoryStateStore()
	view, err := configuration.Build(context.Background(), store, nil, "")
	require.NoError(t, err)

	ds := datastore.NewMemoryDataStore()
	handle := tasks.NewInlineHandle()
	rt := tasks.NewRuntime(handle, ds)

	f := host.NewFactory(logrus.New(), view, store, cache.NewMemoryCache(64), ds, rt)
	return f, rt
}

func TestPartitionedState_IsolatedAcrossPlugins(t *testing.T) {
	f, rt := newTestFactory(t)
	rt.Register(tasks.FetchContent, func(context.Context, tasks.Payload) error { return nil })
	require.NoError(t, rt.Start(context.Background()))

	hostP := f.NewHost(host.PluginIdentity("plugin-p"))
	hostQ := f.NewHost(host.PluginIdentity("plugin-q"))

	ctx := context.Background()
	require.NoError(t, hostP.State().Set(ctx, "k", []byte("p-value"), 1))

	_, _, err := hostQ.State().Get(ctx, "k")
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestPartitionedState_RejectsWritesToReservedPartition(t *testing.T) {
	f, rt := newTestFactory(t)
	rt.Register(tasks.FetchContent, func(context.Context, tasks.Payload) error { return nil })
	require.NoError(t, rt.Start(context.Background()))

	h := f.NewHost(host.PluginIdentity("_system.core"))
	ctx := context.Background()

	err := h.State().Set(ctx, "k", []byte("v"), 0)
	var reserved *perrors.ReservedPartition
	require.ErrorAs(t, err, &reserved)

	err = h.State().Delete(ctx, "k")
	require.ErrorAs(t, err, &reserved)

	err = h.State().ClearPartition(ctx)
	require.ErrorAs(t, err, &reserved)

	fh := f.NewFetcherHost(host.PluginIdentity("_system.core"))
	_, err = fh.Cache().Put(ctx, []byte("v"))
	require.ErrorAs(t, err, &reserved)
}

func TestFetcherHost_ExtractFileEnqueuesExtractContent(t *testing.T) {
	f, rt := newTestFactory(t)
	var gotName tasks.Name
	rt.Register(tasks.ExtractContent, func(_ context.Context, _ tasks.Payload) error {
		gotName = tasks.ExtractContent
		return nil
	})
	require.NoError(t, rt.Start(context.Background()))

	fh := f.NewFetcherHost(host.PluginIdentity("fetcher-1"))
	_, err := fh.ExtractFile(context.Background(), []byte("body"), metadata.Metadata{SourceURL: "u"})
	require.NoError(t, err)
	assert.Equal(t, tasks.ExtractContent, gotName)
}

func TestHost_ScheduleFetchEnqueuesFetchContent(t *testing.T) {
	f, rt := newTestFactory(t)
	var gotURL string
	rt.Register(tasks.FetchContent, func(_ context.Context, payload tasks.Payload) error {
		gotURL, _ = payload["url"].(string)
		return nil
	})
	require.NoError(t, rt.Start(context.Background()))

	h := f.NewHost(host.PluginIdentity("source-1"))
	_, scheduled, err := h.ScheduleFetch(context.Background(), "https://example.com/a", nil)
	require.NoError(t, err)
	assert.True(t, scheduled)
	assert.Equal(t, "https://example.com/a", gotURL)
}
