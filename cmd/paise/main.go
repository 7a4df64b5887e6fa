// Command paise runs the content-indexing engine: it loads configuration
// from the environment, registers the profile's providers alongside the
// reference fetchers/extractors/content_source, runs the five-phase
// startup sequence, and blocks until a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/paise/pkg/adminreset"
	"github.com/platinummonkey/paise/pkg/config"
	"github.com/platinummonkey/paise/pkg/extractors"
	"github.com/platinummonkey/paise/pkg/fetchers"
	"github.com/platinummonkey/paise/pkg/observability"
	"github.com/platinummonkey/paise/pkg/pipeline"
	"github.com/platinummonkey/paise/pkg/providers"
	"github.com/platinummonkey/paise/pkg/registry"
	"github.com/platinummonkey/paise/pkg/sources/dirsource"
	"github.com/platinummonkey/paise/pkg/startup"
	"github.com/platinummonkey/paise/pkg/tasks"
)

func main() {
	resetHard := flag.Bool("reset-hard", false, "run a hard reset_action sweep and exit")
	resetSoft := flag.Bool("reset-soft", false, "run a soft reset_action sweep and exit")
	watchRoot := flag.String("watch", "", "directory to index (overrides PAISE_WATCH_ROOT)")
	addr := flag.String("addr", ":8090", "address for the metrics/health diagnostics server")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "paise:", err)
		os.Exit(1)
	}

	root := *watchRoot
	if root == "" {
		root = os.Getenv("PAISE_WATCH_ROOT")
	}

	registrations := buildRegistrations(root)

	orch := startup.NewOrchestrator(cfg, registrations, taskFunctionsFactory, 30*time.Second)

	ctx := context.Background()
	singles, err := orch.Start(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "paise: startup failed:", err)
		os.Exit(1)
	}

	if *resetHard || *resetSoft {
		err := adminreset.Run(ctx, singles.Registry, singles.Hosts, singles.DataStore, singles.Runtime, singles.Logger, *resetHard)
		if err != nil {
			fmt.Fprintln(os.Stderr, "paise: reset failed:", err)
			os.Exit(1)
		}
		return
	}

	promRegistry := prometheus.NewRegistry()
	observability.NewMetrics(promRegistry)
	healthChecker := observability.NewHealthChecker(singles.StateStore, singles.Cache, singles.DataStore)

	mux := http.NewServeMux()
	observability.RegisterMetricsEndpoint(mux, promRegistry)
	observability.RegisterHealthRoutes(mux, healthChecker)
	diagnosticsServer := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		if err := diagnosticsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			singles.Logger.WithError(err).Error("diagnostics server stopped")
		}
	}()

	shutdownManager := observability.NewShutdownManager(singles.Logger, 30*time.Second)
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		return diagnosticsServer.Shutdown(ctx)
	})
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		orch.Shutdown(ctx)
		return nil
	})

	if err := shutdownManager.WaitForShutdown(); err != nil {
		singles.Logger.WithError(err).Error("shutdown did not complete cleanly")
		os.Exit(1)
	}
}

// taskFunctionsFactory builds the four task functions over the
// SingletonSet phase 3 constructs; startup.NewOrchestrator takes this as a
// callback to avoid pkg/startup importing pkg/pipeline directly.
func taskFunctionsFactory(singles *startup.SingletonSet) map[tasks.Name]tasks.Func {
	fns := pipeline.New(singles.Registry, singles.Hosts, singles.DataStore, singles.Cache, singles.Logger)
	return fns.TaskFunctions()
}

// buildRegistrations assembles the static plugin list this binary ships
// with: the profile-selected infrastructure providers plus the reference
// fetchers, extractors, and the directory content_source (§4.7).
func buildRegistrations(watchRoot string) []startup.Registration {
	regs := []startup.Registration{
		{Kind: registry.KindStateStoreProvider, Identity: "core.state", Instance: providers.StateStoreProvider{}},
		{Kind: registry.KindCacheProvider, Identity: "core.cache", Instance: providers.CacheProvider{}},
		{Kind: registry.KindDataStoreProvider, Identity: "core.datastore", Instance: providers.DataStoreProvider{}},
		{Kind: registry.KindTaskQueueProvider, Identity: "core.tasks", Instance: providers.TaskQueueProvider{Concurrency: 4, BackoffMax: 2 * time.Minute}},
		{Kind: registry.KindConfigurationProvider, Identity: "core.config", Instance: providers.CoreConfigurationProvider{}},

		{Kind: registry.KindContentFetcher, Identity: "core.fetcher.file", Instance: fetchers.NewFileFetcher()},
		{Kind: registry.KindContentFetcher, Identity: "core.fetcher.http", Instance: fetchers.NewHTTPFetcher(30 * time.Second)},
		{Kind: registry.KindContentExtractor, Identity: "core.extractor.text", Instance: extractors.NewTextExtractor()},
		{Kind: registry.KindContentExtractor, Identity: "core.extractor.html", Instance: extractors.NewHTMLExtractor()},
	}

	if watchRoot != "" {
		regs = append(regs, startup.Registration{
			Kind:     registry.KindContentSource,
			Identity: "core.source.dir",
			Instance: dirsource.New(watchRoot, 10*time.Minute),
		})
	}

	return regs
}
