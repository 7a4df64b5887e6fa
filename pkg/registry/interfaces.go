package registry

import (
	"context"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/config"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// ConfigurationProvider supplies one default YAML document (§4.1).
type ConfigurationProvider interface {
	ID() string
	DefaultDocument() string
}

// TaskQueueProvider constructs the run's TaskQueueHandle.
type TaskQueueProvider interface {
	Create(cfg *config.Config) (tasks.Handle, error)
}

// StateStoreProvider constructs the run's StateStore.
type StateStoreProvider interface {
	Create(cfg *config.Config) (state.StateStore, error)
}

// CacheProvider constructs the run's Cache.
type CacheProvider interface {
	Create(cfg *config.Config) (cache.Cache, error)
}

// DataStoreProvider constructs the run's DataStore.
type DataStoreProvider interface {
	Create(cfg *config.Config) (datastore.DataStore, error)
}

// ContentSource starts and stops a long-lived content-discovery activity
// (§4.3, §4.4 phase 5).
type ContentSource interface {
	Start(ctx context.Context, h *host.SourceHost) error
	Stop(ctx context.Context, h *host.SourceHost) error
}

// ContentFetcher claims and fetches a URL (§4.6 fetch_content).
type ContentFetcher interface {
	CanFetch(url string) bool
	Fetch(ctx context.Context, h *host.FetcherHost, url string) error
}

// ContentExtractor claims and extracts fetched content (§4.6 extract_content).
type ContentExtractor interface {
	CanExtract(sourceURL, mimeType string) bool
	PreferredMimeTypes() []string
	Extract(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error
}

// LifecycleAction runs at startup/shutdown (§4.4).
type LifecycleAction interface {
	Startup(ctx context.Context, h *host.Host) error
	Shutdown(ctx context.Context, h *host.Host) error
}

// ResetAction implements an administrative soft/hard reset (§4.8).
type ResetAction interface {
	Reset(ctx context.Context, h *host.Host, hard bool) error
}

// CLICommand is one command a cli_command_contributor exposes. The core
// only cares about its shape (§4.1 "out of core scope beyond shape"); the
// actual CLI wiring lives in cmd/paise.
type CLICommand struct {
	Name        string
	Description string
}

// CLICommandContributor supplies CLI surface beyond the core's scope.
type CLICommandContributor interface {
	Commands() []CLICommand
}
