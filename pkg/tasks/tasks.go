// Package tasks implements §4.5's TaskRuntime: the task-queue-provider
// contract, the inline and queued execution modes, the name→function task
// registry, retry/backoff for TransientError, and the at-most-once-per-
// fingerprint dedup rule for fetch_content.
package tasks

import (
	"context"

	"github.com/platinummonkey/paise/pkg/ids"
)

// Name identifies one of the four task functions (§4.4 phase 4).
type Name string

const (
	FetchContent   Name = "fetch_content"
	ExtractContent Name = "extract_content"
	StoreContent   Name = "store_content"
	CleanupCache   Name = "cleanup_cache"
)

// Payload is the dictionary form every task function receives (§6 "task
// payload wire shape"), constrained to scalars, byte sequences, strings,
// lists, and maps.
type Payload map[string]interface{}

// Func is a task function closing over SingletonSet (§9 "two-phase task
// initialization"); defined once singletons exist, in phase 4.
type Func func(ctx context.Context, payload Payload) error

// State is a TaskRecord's lifecycle position (§3).
type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Record is the internal task-queue record (§3 "TaskRecord"). The core
// does not dictate its physical form beyond this shape; callers see it
// only through QueuedHandle.OnFailed.
type Record struct {
	ID         ids.TaskId
	Name       Name
	Payload    Payload
	State      State
	Attempts   int
	LastError  string
}

// DispatchFunc invokes the registered task function for name, looked up
// from the runtime's name→function registry.
type DispatchFunc func(ctx context.Context, name Name, payload Payload) error

// Handle is what a task_queue_provider constructs (§4.1): either the
// inline sentinel (synchronous execution at enqueue time) or a queued
// handle (persisted, consumed by worker goroutines).
type Handle interface {
	// Mode reports whether this handle executes inline or queued.
	Mode() Mode

	// Start wires the handle to the task registry's dispatch function.
	// Queued handles spin up their worker pool here; inline handles just
	// remember dispatch for Enqueue to call directly.
	Start(ctx context.Context, dispatch DispatchFunc) error

	// Enqueue submits name/payload for execution and returns the assigned
	// TaskId. Inline handles block until the task (and anything it
	// recursively enqueues) completes; queued handles return immediately
	// after persisting the record.
	Enqueue(ctx context.Context, name Name, payload Payload) (ids.TaskId, error)

	// Stop drains in-flight work, bounded by the runtime's configured
	// grace period (§5 "cancellation and timeouts").
	Stop(ctx context.Context) error
}

// Mode distinguishes the two task_queue_provider handle shapes (§4.5).
type Mode string

const (
	ModeInline Mode = "inline"
	ModeQueued Mode = "queued"
)
