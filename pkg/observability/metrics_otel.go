package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds the OpenTelemetry counterparts of Metrics, for
// deployments that export via an OTLP collector instead of (or alongside)
// Prometheus scraping.
type OTelMetrics struct {
	tasksEnqueuedTotal  metric.Int64Counter
	tasksCompletedTotal metric.Int64Counter
	taskDuration        metric.Float64Histogram

	cacheHitsTotal   metric.Int64Counter
	cacheMissesTotal metric.Int64Counter

	dataStoreOperationsTotal metric.Int64Counter
	dataStoreOperationErrors metric.Int64Counter
	dataStoreOperationDuration metric.Float64Histogram
}

// NewOTelMetrics creates a new OTel metrics instance.
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/platinummonkey/paise")

	m := &OTelMetrics{}
	var err error

	m.tasksEnqueuedTotal, err = meter.Int64Counter(
		"paise.tasks.enqueued",
		metric.WithDescription("Total number of tasks enqueued"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_enqueued counter: %w", err)
	}

	m.tasksCompletedTotal, err = meter.Int64Counter(
		"paise.tasks.completed",
		metric.WithDescription("Total number of tasks that reached a terminal state"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_completed counter: %w", err)
	}

	m.taskDuration, err = meter.Float64Histogram(
		"paise.task.duration",
		metric.WithDescription("Task execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task_duration histogram: %w", err)
	}

	m.cacheHitsTotal, err = meter.Int64Counter(
		"paise.cache.hits",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache_hits counter: %w", err)
	}

	m.cacheMissesTotal, err = meter.Int64Counter(
		"paise.cache.misses",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache_misses counter: %w", err)
	}

	m.dataStoreOperationsTotal, err = meter.Int64Counter(
		"paise.datastore.operations",
		metric.WithDescription("Total number of data store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore_operations counter: %w", err)
	}

	m.dataStoreOperationErrors, err = meter.Int64Counter(
		"paise.datastore.operation_errors",
		metric.WithDescription("Total number of data store operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore_operation_errors counter: %w", err)
	}

	m.dataStoreOperationDuration, err = meter.Float64Histogram(
		"paise.datastore.operation.duration",
		metric.WithDescription("Data store operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore_operation_duration histogram: %w", err)
	}

	return m, nil
}

// RecordTask records a task's terminal outcome and duration.
func (m *OTelMetrics) RecordTask(ctx context.Context, taskName, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("task", taskName),
		attribute.String("outcome", outcome),
	}
	m.tasksCompletedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("task", taskName)))
}

// RecordTaskEnqueued records a task being enqueued.
func (m *OTelMetrics) RecordTaskEnqueued(ctx context.Context, taskName string) {
	m.tasksEnqueuedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("task", taskName)))
}

// RecordCacheHit records a cache hit in the given partition.
func (m *OTelMetrics) RecordCacheHit(ctx context.Context, partition string) {
	m.cacheHitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("partition", partition)))
}

// RecordCacheMiss records a cache miss in the given partition.
func (m *OTelMetrics) RecordCacheMiss(ctx context.Context, partition string) {
	m.cacheMissesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("partition", partition)))
}

// RecordDataStoreOperation records a data store operation's outcome and
// duration.
func (m *OTelMetrics) RecordDataStoreOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
	}
	m.dataStoreOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dataStoreOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if err != nil {
		m.dataStoreOperationErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
