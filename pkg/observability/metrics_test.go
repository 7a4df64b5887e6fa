package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	t.Run("creates and registers all metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		if metrics == nil {
			t.Fatal("NewMetrics returned nil")
		}
		if metrics.TasksEnqueuedTotal == nil {
			t.Error("TasksEnqueuedTotal is nil")
		}
		if metrics.TaskDuration == nil {
			t.Error("TaskDuration is nil")
		}
		if metrics.RegisteredExtensions == nil {
			t.Error("RegisteredExtensions is nil")
		}
		if metrics.ConfigReloadsTotal == nil {
			t.Error("ConfigReloadsTotal is nil")
		}
		if metrics.CacheHitsTotal == nil {
			t.Error("CacheHitsTotal is nil")
		}
		if metrics.DataStoreOperationsTotal == nil {
			t.Error("DataStoreOperationsTotal is nil")
		}
		if metrics.ContentFetchedTotal == nil {
			t.Error("ContentFetchedTotal is nil")
		}
		if metrics.ContentExtractedTotal == nil {
			t.Error("ContentExtractedTotal is nil")
		}
	})

	t.Run("metrics are registered with registry", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.TasksEnqueuedTotal.WithLabelValues("fetch_content").Add(0)
		metrics.RegisteredExtensions.WithLabelValues("content_fetcher").Set(0)

		families, err := registry.Gather()
		if err != nil {
			t.Fatalf("Failed to gather metrics: %v", err)
		}
		if len(families) == 0 {
			t.Error("No metrics registered in registry")
		}

		metricNames := make(map[string]bool)
		for _, family := range families {
			metricNames[family.GetName()] = true
		}

		expectedMetrics := []string{
			"paise_tasks_enqueued_total",
			"paise_registry_extensions",
		}
		for _, name := range expectedMetrics {
			if !metricNames[name] {
				t.Errorf("Expected metric %s not found in registry", name)
			}
		}
	})

	t.Run("panics on duplicate registration", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)

		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic on duplicate registration, but didn't panic")
			}
		}()
		NewMetrics(registry)
	})
}

func TestMetrics_TaskMetrics(t *testing.T) {
	t.Run("record enqueue and completion", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.TasksEnqueuedTotal.WithLabelValues("fetch_content").Inc()
		metrics.TasksCompletedTotal.WithLabelValues("fetch_content", "success").Inc()

		expected := `
# HELP paise_tasks_enqueued_total Total number of tasks enqueued, by task name
# TYPE paise_tasks_enqueued_total counter
paise_tasks_enqueued_total{task="fetch_content"} 1
`
		if err := testutil.CollectAndCompare(metrics.TasksEnqueuedTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}

		expected = `
# HELP paise_tasks_completed_total Total number of tasks that finished processing, by task name and outcome
# TYPE paise_tasks_completed_total counter
paise_tasks_completed_total{outcome="success",task="fetch_content"} 1
`
		if err := testutil.CollectAndCompare(metrics.TasksCompletedTotal, strings.NewReader(expected)); err != nil {
			t.Errorf("Unexpected metric value: %v", err)
		}
	})

	t.Run("observe task duration and attempts", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.TaskDuration.WithLabelValues("extract_content").Observe(0.25)
		metrics.TaskAttempts.WithLabelValues("extract_content").Observe(3)

		if testutil.CollectAndCount(metrics.TaskDuration) != 1 {
			t.Error("expected 1 duration metric family")
		}
		if testutil.CollectAndCount(metrics.TaskAttempts) != 1 {
			t.Error("expected 1 attempts metric family")
		}
	})
}

func TestMetrics_RegistryMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.RegisteredExtensions.WithLabelValues("content_extractor").Set(3)

	expected := `
# HELP paise_registry_extensions Number of registered extension-point instances, by kind
# TYPE paise_registry_extensions gauge
paise_registry_extensions{kind="content_extractor"} 3
`
	if err := testutil.CollectAndCompare(metrics.RegisteredExtensions, strings.NewReader(expected)); err != nil {
		t.Errorf("Unexpected metric value: %v", err)
	}
}

func TestMetrics_ConfigMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.ConfigReloadsTotal.WithLabelValues("success").Inc()
	metrics.ConfigChangedPaths.WithLabelValues("modified").Add(4)

	if testutil.CollectAndCount(metrics.ConfigReloadsTotal) != 1 {
		t.Error("expected 1 config reload metric")
	}
	if testutil.CollectAndCount(metrics.ConfigChangedPaths) != 1 {
		t.Error("expected 1 config changed-paths metric")
	}
}

func TestMetrics_CacheMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.CacheHitsTotal.WithLabelValues("fetcher:http").Inc()
	metrics.CacheMissesTotal.WithLabelValues("fetcher:http").Inc()
	metrics.CacheEvictionsTotal.WithLabelValues("fetcher:http").Inc()

	expected := `
# HELP paise_cache_hits_total Total number of cache hits, by partition
# TYPE paise_cache_hits_total counter
paise_cache_hits_total{partition="fetcher:http"} 1
`
	if err := testutil.CollectAndCompare(metrics.CacheHitsTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("Unexpected metric value: %v", err)
	}
}

func TestMetrics_DataStoreMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.DataStoreOperationsTotal.WithLabelValues("put_item").Inc()
	metrics.DataStoreOperationErrors.WithLabelValues("put_item").Inc()
	metrics.DataStoreOperationDuration.WithLabelValues("put_item").Observe(0.01)

	if testutil.CollectAndCount(metrics.DataStoreOperationsTotal) != 1 {
		t.Error("expected 1 datastore operation metric")
	}
	if testutil.CollectAndCount(metrics.DataStoreOperationDuration) != 1 {
		t.Error("expected 1 datastore duration metric")
	}
}

func TestMetrics_ContentPipelineMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.ContentDiscoveredTotal.WithLabelValues("dirsource").Inc()
	metrics.ContentFetchedTotal.WithLabelValues("httpfetcher").Inc()
	metrics.ContentFetchErrors.WithLabelValues("httpfetcher").Inc()
	metrics.ContentExtractedTotal.WithLabelValues("textextractor").Inc()
	metrics.ContentExtractErrors.WithLabelValues("textextractor").Inc()

	expected := `
# HELP paise_content_fetched_total Total number of successful fetches, by fetcher
# TYPE paise_content_fetched_total counter
paise_content_fetched_total{fetcher="httpfetcher"} 1
`
	if err := testutil.CollectAndCompare(metrics.ContentFetchedTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("Unexpected metric value: %v", err)
	}
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	t.Run("registers metrics endpoint", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)
		metrics.RegisteredExtensions.WithLabelValues("content_source").Set(2)

		mux := http.NewServeMux()
		RegisterMetricsEndpoint(mux, registry)

		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, rec.Code)
		}

		body := rec.Body.String()
		if !strings.Contains(body, "paise_registry_extensions") {
			t.Error("Expected paise_registry_extensions in metrics output")
		}
	})

	t.Run("metrics endpoint only responds to /metrics path", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)

		mux := http.NewServeMux()
		RegisterMetricsEndpoint(mux, registry)

		req := httptest.NewRequest("GET", "/other", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status code %d for non-metrics path, got %d", http.StatusNotFound, rec.Code)
		}
	})
}
