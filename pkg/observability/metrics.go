package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments exposed by a running index: task
// throughput, registry population, config reloads, and the durable provider
// surface (cache/data store) each plugin kind touches.
type Metrics struct {
	// Task pipeline metrics
	TasksEnqueuedTotal  *prometheus.CounterVec
	TasksCompletedTotal *prometheus.CounterVec
	TaskDuration        *prometheus.HistogramVec
	TaskAttempts        *prometheus.HistogramVec

	// Registry metrics
	RegisteredExtensions *prometheus.GaugeVec

	// Configuration metrics
	ConfigReloadsTotal *prometheus.CounterVec
	ConfigChangedPaths *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec

	// Data store metrics
	DataStoreOperationsTotal   *prometheus.CounterVec
	DataStoreOperationErrors  *prometheus.CounterVec
	DataStoreOperationDuration *prometheus.HistogramVec

	// Content source / fetcher / extractor metrics
	ContentDiscoveredTotal *prometheus.CounterVec
	ContentFetchedTotal    *prometheus.CounterVec
	ContentFetchErrors     *prometheus.CounterVec
	ContentExtractedTotal  *prometheus.CounterVec
	ContentExtractErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers every metric against registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		TasksEnqueuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_tasks_enqueued_total",
				Help: "Total number of tasks enqueued, by task name",
			},
			[]string{"task"},
		),
		TasksCompletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_tasks_completed_total",
				Help: "Total number of tasks that finished processing, by task name and outcome",
			},
			[]string{"task", "outcome"},
		),
		TaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paise_task_duration_seconds",
				Help:    "Task execution duration in seconds, by task name",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		TaskAttempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paise_task_attempts",
				Help:    "Number of attempts a task took before reaching a terminal state",
				Buckets: []float64{1, 2, 3, 5, 8, 13},
			},
			[]string{"task"},
		),

		RegisteredExtensions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paise_registry_extensions",
				Help: "Number of registered extension-point instances, by kind",
			},
			[]string{"kind"},
		),

		ConfigReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_config_reloads_total",
				Help: "Total number of configuration subsystem builds/reloads, by outcome",
			},
			[]string{"outcome"},
		),
		ConfigChangedPaths: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_config_changed_paths_total",
				Help: "Total number of dotted-path leaves that changed across a config reload",
			},
			[]string{"change"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_cache_hits_total",
				Help: "Total number of cache hits, by partition",
			},
			[]string{"partition"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_cache_misses_total",
				Help: "Total number of cache misses, by partition",
			},
			[]string{"partition"},
		),
		CacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_cache_evictions_total",
				Help: "Total number of cache evictions, by partition",
			},
			[]string{"partition"},
		),

		DataStoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_datastore_operations_total",
				Help: "Total number of data store operations, by operation",
			},
			[]string{"operation"},
		),
		DataStoreOperationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_datastore_operation_errors_total",
				Help: "Total number of data store operation errors, by operation",
			},
			[]string{"operation"},
		),
		DataStoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paise_datastore_operation_duration_seconds",
				Help:    "Data store operation duration in seconds, by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ContentDiscoveredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_content_discovered_total",
				Help: "Total number of items discovered by a content source",
			},
			[]string{"source"},
		),
		ContentFetchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_content_fetched_total",
				Help: "Total number of successful fetches, by fetcher",
			},
			[]string{"fetcher"},
		),
		ContentFetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_content_fetch_errors_total",
				Help: "Total number of fetch errors, by fetcher",
			},
			[]string{"fetcher"},
		),
		ContentExtractedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_content_extracted_total",
				Help: "Total number of successful extractions, by extractor",
			},
			[]string{"extractor"},
		),
		ContentExtractErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paise_content_extract_errors_total",
				Help: "Total number of extraction errors, by extractor",
			},
			[]string{"extractor"},
		),
	}

	registry.MustRegister(
		m.TasksEnqueuedTotal,
		m.TasksCompletedTotal,
		m.TaskDuration,
		m.TaskAttempts,
		m.RegisteredExtensions,
		m.ConfigReloadsTotal,
		m.ConfigChangedPaths,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
		m.DataStoreOperationsTotal,
		m.DataStoreOperationErrors,
		m.DataStoreOperationDuration,
		m.ContentDiscoveredTotal,
		m.ContentFetchedTotal,
		m.ContentFetchErrors,
		m.ContentExtractedTotal,
		m.ContentExtractErrors,
	)

	return m
}

// RegisterMetricsEndpoint exposes registry on mux at /metrics. cmd/paise
// wires this into its own diagnostics listener; the indexing core itself
// has no HTTP API.
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
