package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/paise/pkg/config"
	"github.com/platinummonkey/paise/pkg/configuration"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/observability"
	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/registry"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// TaskFunctionsFactory builds the four task functions once every
// infrastructure singleton exists (§4.4 phase 4; §9 "two-phase task
// initialization" — tasks.Func closes over a SingletonSet that does not
// exist until phase 3 completes). The caller supplies this rather than
// pkg/startup importing pkg/pipeline directly; cmd/paise builds it from
// pipeline.New over the SingletonSet's registry, hosts, data store, cache
// and logger.
type TaskFunctionsFactory func(singles *SingletonSet) map[tasks.Name]tasks.Func

// Orchestrator runs the five-phase startup sequence of §4.4 over a static
// Registration list, and reverses it on Shutdown.
type Orchestrator struct {
	cfg           *config.Config
	registrations []Registration
	taskFactory   TaskFunctionsFactory
	gracePeriod   time.Duration

	reg     *registry.Registry
	singles *SingletonSet
}

// NewOrchestrator builds an unstarted orchestrator. gracePeriod bounds
// Shutdown's drain of the task queue (§5 "cancellation and timeouts"); 0
// defaults to 30s.
func NewOrchestrator(cfg *config.Config, registrations []Registration, taskFactory TaskFunctionsFactory, gracePeriod time.Duration) *Orchestrator {
	if gracePeriod <= 0 {
		gracePeriod = 30 * time.Second
	}
	return &Orchestrator{
		cfg:           cfg,
		registrations: registrations,
		taskFactory:   taskFactory,
		gracePeriod:   gracePeriod,
	}
}

// Start runs phases 1 through 5 and returns the constructed SingletonSet.
// Any failure in phases 1-3 aborts the run with the first error, named by
// phase (§4.4 "Phase failure policy"). Phase 5 failures isolate per-plugin
// and do not abort the run.
func (o *Orchestrator) Start(ctx context.Context) (*SingletonSet, error) {
	reg, bootLogger, hook, err := o.bootstrap()
	if err != nil {
		return nil, fmt.Errorf("startup: phase 1 (register providers): %w", err)
	}
	o.reg = reg

	reg.CloseProviderPhase() // phase 2: infrastructure providers are now all known

	singles, err := o.constructSingletons(ctx, reg, bootLogger, hook)
	if err != nil {
		return nil, fmt.Errorf("startup: phase 3 (construct singletons): %w", err)
	}
	o.singles = singles

	if err := o.registerTasks(singles); err != nil {
		return nil, fmt.Errorf("startup: phase 4 (register tasks): %w", err)
	}
	if err := singles.Runtime.Start(ctx); err != nil {
		return nil, fmt.Errorf("startup: phase 4 (start task runtime): %w", err)
	}

	o.loadConsumersAndStart(ctx, singles)

	return singles, nil
}

// phase 1: install a buffering logger, construct an empty registry, and
// register every provider-kind entry from the static registration list.
// The first rejected registration is returned as the phase's error.
func (o *Orchestrator) bootstrap() (*registry.Registry, *logrus.Logger, *observability.BufferingHook, error) {
	bootLogger, hook := observability.NewBootstrapLogger()
	reg := registry.New()

	for _, r := range o.registrations {
		if !registry.IsProviderKind(r.Kind) {
			continue
		}
		if err := reg.Register(r.Kind, r.Identity, r.Instance); err != nil {
			return nil, nil, nil, fmt.Errorf("provider %q (%s): %w", r.Identity, r.Kind, err)
		}
	}

	return reg, bootLogger, hook, nil
}

// phase 3: construct state store, configuration view, cache, data store,
// and task queue in that fixed order, then swap the bootstrap logger for
// the configured one and replay its buffered records.
func (o *Orchestrator) constructSingletons(ctx context.Context, reg *registry.Registry, bootLogger *logrus.Logger, hook *observability.BufferingHook) (*SingletonSet, error) {
	stateEntries := reg.StateStoreProviders()
	if len(stateEntries) == 0 {
		return nil, &perrors.MissingSingleton{Kind: string(registry.KindStateStoreProvider)}
	}
	warnIfMultiple(bootLogger, registry.KindStateStoreProvider, len(stateEntries), stateEntries[0].Identity)
	stateStore, err := stateEntries[0].Instance.Create(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("state store %q: %w", stateEntries[0].Identity, err)
	}

	docs := make([]configuration.ProviderDocument, 0, reg.Count(registry.KindConfigurationProvider))
	for _, e := range reg.ConfigurationProviders() {
		docs = append(docs, configuration.ProviderDocument{ID: e.Instance.ID(), DefaultDocument: e.Instance.DefaultDocument()})
	}
	configView, err := configuration.Build(ctx, stateStore, docs, o.cfg.UserConfigDir)
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	cacheEntries := reg.CacheProviders()
	if len(cacheEntries) == 0 {
		return nil, &perrors.MissingSingleton{Kind: string(registry.KindCacheProvider)}
	}
	warnIfMultiple(bootLogger, registry.KindCacheProvider, len(cacheEntries), cacheEntries[0].Identity)
	cacheImpl, err := cacheEntries[0].Instance.Create(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("cache %q: %w", cacheEntries[0].Identity, err)
	}

	dataStoreEntries := reg.DataStoreProviders()
	if len(dataStoreEntries) == 0 {
		return nil, &perrors.MissingSingleton{Kind: string(registry.KindDataStoreProvider)}
	}
	warnIfMultiple(bootLogger, registry.KindDataStoreProvider, len(dataStoreEntries), dataStoreEntries[0].Identity)
	dataStore, err := dataStoreEntries[0].Instance.Create(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("data store %q: %w", dataStoreEntries[0].Identity, err)
	}

	taskQueueEntries := reg.TaskQueueProviders()
	if len(taskQueueEntries) == 0 {
		return nil, &perrors.MissingSingleton{Kind: string(registry.KindTaskQueueProvider)}
	}
	warnIfMultiple(bootLogger, registry.KindTaskQueueProvider, len(taskQueueEntries), taskQueueEntries[0].Identity)
	taskHandle, err := taskQueueEntries[0].Instance.Create(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("task queue %q: %w", taskQueueEntries[0].Identity, err)
	}
	// InlineHandle has no OnFailed hook: its failures return synchronously to
	// the ScheduleFetch/Enqueue caller, who is responsible for recording them.
	if qh, ok := taskHandle.(*tasks.QueuedHandle); ok {
		qh.OnFailed(func(rec tasks.Record, failure error) {
			sourceURL, _ := rec.Payload["source_url"].(string)
			if sourceURL == "" {
				return
			}
			item, err := dataStore.GetBySourceURL(context.Background(), sourceURL)
			if err != nil {
				return
			}
			failed := metadata.StateFailed
			reason := failure.Error()
			_, _ = dataStore.UpdateMetadata(context.Background(), item.ID, metadata.Patch{
				ProcessingState: &failed,
				Extra:           map[string]string{"failure_reason": reason},
			})
		})
	}

	runtime := tasks.NewRuntime(taskHandle, dataStore)

	logger := observability.NewLogger(o.cfg.Observability.LogLevel, o.cfg.Observability.LogJSON)
	hook.Replay(logger)

	otelProviders, otelMetrics := o.initOTel(ctx, logger)
	if qh, ok := taskHandle.(*tasks.QueuedHandle); ok {
		qh.SetLogger(logger)
		qh.SetOTelMetrics(otelMetrics)
	}

	singles := &SingletonSet{
		Logger:        logger,
		Configuration: configView,
		StateStore:    stateStore,
		Cache:         cacheImpl,
		DataStore:     dataStore,
		TaskQueue:     taskHandle,
		Runtime:       runtime,
		Registry:      reg,
		OTel:          otelProviders,
	}
	singles.Hosts = host.NewFactory(logger, configView, stateStore, cacheImpl, dataStore, runtime)

	return singles, nil
}

// initOTel starts the OpenTelemetry tracer/meter providers named in
// config.ObservabilityConfig when enabled, giving pkg/tasks's per-task
// spans (SPEC_FULL.md §11) a real OTLP exporter instead of the no-op global tracer.
// A failure here is logged and treated as "disabled for this run" rather
// than aborting startup, matching phase 5's plugin-failure isolation.
func (o *Orchestrator) initOTel(ctx context.Context, logger logrus.FieldLogger) (*observability.OTelProviders, *observability.OTelMetrics) {
	obs := o.cfg.Observability
	if !obs.OTelEnabled {
		return nil, nil
	}

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        true,
		Endpoint:       obs.OTelEndpoint,
		ServiceName:    obs.OTelServiceName,
		ServiceVersion: obs.OTelServiceVersion,
		Insecure:       obs.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("OpenTelemetry init failed, continuing without tracing/metrics export")
		return nil, nil
	}

	metrics, err := observability.NewOTelMetrics()
	if err != nil {
		logger.WithError(err).Warn("OTel metrics init failed, continuing without per-task OTel metrics")
		return providers, nil
	}
	return providers, metrics
}

// warnIfMultiple logs when more than one provider registered for kind,
// naming the winner (§4.7 "the first one in discovery order wins and the
// rest are ignored with a warning").
func warnIfMultiple(logger logrus.FieldLogger, kind registry.Kind, count int, winner host.PluginIdentity) {
	if count <= 1 {
		return
	}
	logger.WithField("kind", kind).WithField("winner", winner).WithField("candidates", count).
		Warn("multiple providers registered for kind, first registered wins")
}

// phase 4: build the four task functions now that singletons exist, and
// register each with the runtime.
func (o *Orchestrator) registerTasks(singles *SingletonSet) error {
	fns := o.taskFactory(singles)
	for _, name := range []tasks.Name{tasks.FetchContent, tasks.ExtractContent, tasks.StoreContent, tasks.CleanupCache} {
		fn, ok := fns[name]
		if !ok {
			return fmt.Errorf("no task function supplied for %q", name)
		}
		singles.Runtime.Register(name, fn)
	}
	return nil
}

// phase 5: register every consumer-kind entry, start the shared scheduler,
// then call startup(host) on every lifecycle_action followed by
// start(host) on every content_source. Per-plugin failures are logged as
// PluginFailed and do not abort the run (§4.4 "Phase failure policy").
func (o *Orchestrator) loadConsumersAndStart(ctx context.Context, singles *SingletonSet) {
	for _, r := range o.registrations {
		if registry.IsProviderKind(r.Kind) {
			continue
		}
		if err := singles.Registry.Register(r.Kind, r.Identity, r.Instance); err != nil {
			singles.Logger.WithError(err).WithField("kind", r.Kind).WithField("identity", r.Identity).
				Error("consumer registration rejected")
		}
	}

	singles.Hosts.Start()

	for _, e := range singles.Registry.LifecycleActions() {
		h := singles.Hosts.NewHost(e.Identity)
		if err := e.Instance.Startup(ctx, h); err != nil {
			logPluginFailed(singles.Logger, e.Identity, registry.KindLifecycleAction, err)
		}
	}

	for _, e := range singles.Registry.ContentSources() {
		h := singles.Hosts.NewSourceHost(e.Identity)
		if err := e.Instance.Start(ctx, h); err != nil {
			logPluginFailed(singles.Logger, e.Identity, registry.KindContentSource, err)
		}
	}

	singles.Registry.CloseConsumerPhase()
}

func logPluginFailed(logger logrus.FieldLogger, identity host.PluginIdentity, kind registry.Kind, err error) {
	failure := &perrors.PluginFailed{PluginIdentity: string(identity), Kind: string(kind), Err: err}
	logger.WithError(failure).Warn("plugin disabled for this run")
}
