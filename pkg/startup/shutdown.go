package startup

import (
	"context"

	"github.com/platinummonkey/paise/pkg/observability"
)

// Shutdown reverses Start's final phases: content sources are stopped,
// lifecycle actions are torn down, the shared scheduler drains, the task
// queue is flushed, and the singletons are closed in the reverse of their
// construction order (task queue, data store, cache, state store). Every
// step is best-effort — failures are logged on the run's own logger rather
// than returned, since a partial shutdown is still the only option once
// the process is exiting (§4.4 "Shutdown").
func (o *Orchestrator) Shutdown(ctx context.Context) {
	singles := o.singles
	if singles == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, o.gracePeriod)
	defer cancel()

	for _, e := range singles.Registry.ContentSources() {
		h := singles.Hosts.NewSourceHost(e.Identity)
		if err := e.Instance.Stop(ctx, h); err != nil {
			singles.Logger.WithError(err).WithField("identity", e.Identity).Warn("content source stop failed")
		}
	}

	singles.Hosts.Stop()

	for _, e := range singles.Registry.LifecycleActions() {
		h := singles.Hosts.NewHost(e.Identity)
		if err := e.Instance.Shutdown(ctx, h); err != nil {
			singles.Logger.WithError(err).WithField("identity", e.Identity).Warn("lifecycle action shutdown failed")
		}
	}

	if err := singles.Runtime.Stop(ctx); err != nil {
		singles.Logger.WithError(err).Warn("task queue did not drain within the grace period")
	}

	if err := singles.DataStore.Close(); err != nil {
		singles.Logger.WithError(err).Warn("data store close failed")
	}
	if err := singles.Cache.Close(); err != nil {
		singles.Logger.WithError(err).Warn("cache close failed")
	}
	if err := singles.StateStore.Close(); err != nil {
		singles.Logger.WithError(err).Warn("state store close failed")
	}

	if err := observability.ShutdownOTel(ctx, singles.OTel, singles.Logger); err != nil {
		singles.Logger.WithError(err).Warn("OpenTelemetry shutdown failed")
	}
}
