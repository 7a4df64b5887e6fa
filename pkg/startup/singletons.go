package startup

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/configuration"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/observability"
	"github.com/platinummonkey/paise/pkg/registry"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// SingletonSet owns every run-wide singleton constructed in phase 3: the
// logger, configuration view, state store, cache, data store, task queue
// handle, task registry, and a reference back to the plugin registry
// (§4.3 "SingletonSet owns"). It is passed to HostFactory, and task
// functions registered in phase 4 close over it.
type SingletonSet struct {
	Logger        logrus.FieldLogger
	Configuration *configuration.View
	StateStore    state.StateStore
	Cache         cache.Cache
	DataStore     datastore.DataStore
	TaskQueue     tasks.Handle
	Runtime       *tasks.Runtime
	Registry      *registry.Registry
	Hosts         *host.Factory

	// OTel holds the OpenTelemetry tracer/meter providers InitOTel started
	// in phase 3, or nil when config.ObservabilityConfig.OTelEnabled is
	// false or InitOTel failed. Shutdown hands it to observability.ShutdownOTel.
	OTel *observability.OTelProviders
}

// HealthCheck pings the state store, cache, and data store and reports
// their combined status. cmd/paise serves the same checks over the
// diagnostics server's /health routes through its own HealthChecker; the
// startup smoke test calls this directly against in-memory providers.
func (s *SingletonSet) HealthCheck(ctx context.Context) observability.HealthStatus {
	return observability.NewHealthChecker(s.StateStore, s.Cache, s.DataStore).Check(ctx)
}
