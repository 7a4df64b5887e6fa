package host

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/configuration"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// Factory constructs per-plugin Host façades from the run's singletons
// (§4.3 "HostFactory"). Façades are cheap and created lazily — one per
// plugin identity, never shared across identities.
type Factory struct {
	logger     logrus.FieldLogger
	config     *configuration.View
	stateStore state.StateStore
	cache      cache.Cache
	dataStore  datastore.DataStore
	runtime    *tasks.Runtime
	scheduler  *cron.Cron
}

// NewFactory builds a Factory over the run's constructed singletons. cfg
// may be nil only in tests that do not exercise configuration lookups.
func NewFactory(logger logrus.FieldLogger, cfg *configuration.View, stateStore state.StateStore, cacheImpl cache.Cache, dataStore datastore.DataStore, runtime *tasks.Runtime) *Factory {
	return &Factory{
		logger:     logger,
		config:     cfg,
		stateStore: stateStore,
		cache:      cacheImpl,
		dataStore:  dataStore,
		runtime:    runtime,
		scheduler:  cron.New(),
	}
}

// Start activates the shared schedule_next_run cron scheduler. Called once
// entering phase 5.
func (f *Factory) Start() { f.scheduler.Start() }

// Stop drains the cron scheduler. Any run still in flight is allowed to
// finish (cron.Cron's own semantics); callers bound this with the run's
// shutdown grace period.
func (f *Factory) Stop() {
	ctx := f.scheduler.Stop()
	<-ctx.Done()
}

func (f *Factory) base(identity PluginIdentity) *Host {
	return &Host{
		identity: identity,
		logger:   f.logger.WithField("plugin", string(identity)),
		config:   f.config,
		state:    newPartitionedState(f.stateStore, identity),
		runtime:  f.runtime,
	}
}

// NewHost builds the base façade, for lifecycle_action, data_store_provider,
// and reset_action (§4.3 "Lifecycle host / data-store host / reset host:
// base only").
func (f *Factory) NewHost(identity PluginIdentity) *Host {
	return f.base(identity)
}

// NewSourceHost builds the façade for content_source.start/stop.
func (f *Factory) NewSourceHost(identity PluginIdentity) *SourceHost {
	return &SourceHost{
		Host:      f.base(identity),
		dataStore: f.dataStore,
		scheduler: f.scheduler,
	}
}

// NewFetcherHost builds the façade for content_fetcher.fetch.
func (f *Factory) NewFetcherHost(identity PluginIdentity) *FetcherHost {
	base := f.base(identity)
	return &FetcherHost{
		Host:  base,
		cache: newPartitionedCache(f.cache, identity),
	}
}

// NewExtractorHost builds the façade for content_extractor.extract.
func (f *Factory) NewExtractorHost(identity PluginIdentity) *ExtractorHost {
	base := f.base(identity)
	return &ExtractorHost{
		Host:    base,
		cache:   newPartitionedCache(f.cache, identity),
		storage: f.dataStore,
	}
}
