package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/observability"
	"github.com/platinummonkey/paise/pkg/perrors"
)

var tracer = otel.Tracer("github.com/platinummonkey/paise/pkg/tasks")

// QueuedHandle persists enqueued tasks on a channel and consumes them with
// a bounded pool of worker goroutines (§4.5 "queued handle"; §5 "pool of
// worker threads"). Start launches a fixed pool of concurrency worker
// goroutines, each holding a slot of a weighted semaphore of the same size
// while it executes a task. Enqueue callers that outrun the workers queue
// up in the channel's 256-record buffer and block once it is full.
type QueuedHandle struct {
	concurrency int
	backoffMax  time.Duration
	queue       chan Record

	mu       sync.Mutex
	dispatch DispatchFunc

	sem *semaphore.Weighted
	eg  *errgroup.Group
	egCtx context.Context
	cancelWorkers context.CancelFunc

	onFailed func(rec Record, err error)

	logger      logrus.FieldLogger
	otelMetrics *observability.OTelMetrics
}

// NewQueuedHandle creates an unstarted queued handle. concurrency bounds
// simultaneously-executing tasks; backoffMax bounds total retry time for a
// TransientError before it is recorded as permanently failed (§4.5).
func NewQueuedHandle(concurrency int, backoffMax time.Duration) *QueuedHandle {
	if concurrency <= 0 {
		concurrency = 4
	}
	if backoffMax <= 0 {
		backoffMax = 2 * time.Minute
	}
	return &QueuedHandle{
		concurrency: concurrency,
		backoffMax:  backoffMax,
		queue:       make(chan Record, 256),
		sem:         semaphore.NewWeighted(int64(concurrency)),
	}
}

func (h *QueuedHandle) Mode() Mode { return ModeQueued }

// OnFailed registers a callback invoked when a task exhausts retries or
// fails permanently, so callers can persist the terminal failure (§7).
func (h *QueuedHandle) OnFailed(fn func(rec Record, err error)) {
	h.onFailed = fn
}

// SetLogger installs the logger used to report a recovered worker panic
// (§5 "pool of worker threads" must survive one task's panic without
// taking the whole pool down). Defaults to logrus's standard logger.
func (h *QueuedHandle) SetLogger(logger logrus.FieldLogger) {
	h.logger = logger
}

// SetOTelMetrics installs the OpenTelemetry metrics recorder so every
// dispatched task's outcome and duration is exported alongside the span
// Start opens for it, instead of only through Prometheus.
func (h *QueuedHandle) SetOTelMetrics(m *observability.OTelMetrics) {
	h.otelMetrics = m
}

func (h *QueuedHandle) loggerOrDefault() logrus.FieldLogger {
	if h.logger != nil {
		return h.logger
	}
	return logrus.StandardLogger()
}

func (h *QueuedHandle) Start(ctx context.Context, dispatch DispatchFunc) error {
	h.mu.Lock()
	h.dispatch = dispatch
	h.mu.Unlock()

	workerCtx, cancel := context.WithCancel(context.Background())
	h.cancelWorkers = cancel
	eg, egCtx := errgroup.WithContext(workerCtx)
	h.eg = eg
	h.egCtx = egCtx

	for i := 0; i < h.concurrency; i++ {
		eg.Go(func() error {
			h.drainLoop(egCtx)
			return nil
		})
	}
	return nil
}

func (h *QueuedHandle) drainLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-h.queue:
			if !ok {
				return
			}
			if err := h.sem.Acquire(ctx, 1); err != nil {
				return
			}
			h.execute(ctx, rec)
			h.sem.Release(1)
		}
	}
}

func (h *QueuedHandle) execute(ctx context.Context, rec Record) {
	ctx, span := tracer.Start(ctx, string(rec.Name), trace.WithAttributes(
		attribute.String("task.id", string(rec.ID)),
	))
	defer span.End()
	start := time.Now()

	// EncodePayload/DecodePayload round-trip here to honor the wire-shape
	// contract (Open Question 2) even though the channel carries the
	// record in-process.
	encoded, err := EncodePayload(rec.Payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.recordOutcome(ctx, rec.Name, "failed", start)
		h.fail(rec, err)
		return
	}
	payload := DecodePayload(encoded)

	policy := backoff.WithMaxElapsedTime(backoff.NewExponentialBackOff(), h.backoffMax)
	operation := func() (opErr error) {
		defer observability.RecoverPanicWithCallback(h.loggerOrDefault(), fmt.Sprintf("queued task dispatch: %s", rec.Name), func() {
			opErr = backoff.Permanent(fmt.Errorf("task %s panicked", rec.Name))
		})

		rec.Attempts++
		dispatchErr := h.dispatch(ctx, rec.Name, payload)
		if dispatchErr == nil {
			return nil
		}

		var permanent *perrors.PermanentError
		if errors.As(dispatchErr, &permanent) {
			return backoff.Permanent(dispatchErr)
		}
		return dispatchErr
	}

	if err := backoff.Retry(operation, policy); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.recordOutcome(ctx, rec.Name, "failed", start)
		h.fail(rec, err)
		return
	}
	h.recordOutcome(ctx, rec.Name, "completed", start)
}

func (h *QueuedHandle) recordOutcome(ctx context.Context, name Name, outcome string, start time.Time) {
	if h.otelMetrics != nil {
		h.otelMetrics.RecordTask(ctx, string(name), outcome, time.Since(start))
	}
}

func (h *QueuedHandle) fail(rec Record, err error) {
	rec.State = StateFailed
	rec.LastError = err.Error()
	if h.onFailed != nil {
		h.onFailed(rec, err)
	}
}

func (h *QueuedHandle) Enqueue(ctx context.Context, name Name, payload Payload) (ids.TaskId, error) {
	rec := Record{ID: ids.NewTaskId(), Name: name, Payload: payload, State: StateQueued}
	select {
	case h.queue <- rec:
		return rec.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (h *QueuedHandle) Stop(ctx context.Context) error {
	close(h.queue)

	done := make(chan struct{})
	go func() {
		h.eg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if h.cancelWorkers != nil {
			h.cancelWorkers()
		}
		return ctx.Err()
	}
}
