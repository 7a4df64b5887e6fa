package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// Runtime binds a Handle to the name→function task registry built in
// phase 4 (§4.4) and owns the fetch_content dedup rule (§4.5, §9 "at-most-
// once-per-fingerprint scheduling").
type Runtime struct {
	handle Handle
	store  datastore.DataStore

	mu       sync.RWMutex
	handlers map[Name]Func
}

// NewRuntime wraps handle, using store to resolve the fetch_content dedup
// check against an item's existing processing state.
func NewRuntime(handle Handle, store datastore.DataStore) *Runtime {
	return &Runtime{
		handle:   handle,
		store:    store,
		handlers: make(map[Name]Func),
	}
}

// Register binds name to fn. Phase 4 calls this exactly once per task
// function before Start.
func (r *Runtime) Register(name Name, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Start wires the registry's dispatch function into the underlying handle.
func (r *Runtime) Start(ctx context.Context) error {
	return r.handle.Start(ctx, r.dispatch)
}

// Stop drains the underlying handle.
func (r *Runtime) Stop(ctx context.Context) error {
	return r.handle.Stop(ctx)
}

func (r *Runtime) dispatch(ctx context.Context, name Name, payload Payload) error {
	r.mu.RLock()
	fn, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("tasks: no handler registered for %q", name)
	}
	return fn(ctx, payload)
}

// Enqueue submits an arbitrary task function by name, with no dedup
// checking. extract_content, store_content, and cleanup_cache all go
// through this path; only fetch_content uses ScheduleFetch.
func (r *Runtime) Enqueue(ctx context.Context, name Name, payload Payload) (ids.TaskId, error) {
	return r.handle.Enqueue(ctx, name, payload)
}

// ScheduleFetch enqueues fetch_content for sourceURL unless an item already
// exists for the canonicalized URL in a state where re-fetching would race
// or duplicate work: any terminal state (stored/completed/failed), or
// fetching itself (Open Question 3 — a source re-announcing a URL while
// its own fetch is still in flight must not spawn a second one). Returns
// scheduled=false when suppressed.
func (r *Runtime) ScheduleFetch(ctx context.Context, sourceURL string, payload Payload) (id ids.TaskId, scheduled bool, err error) {
	canonical := CanonicalizeURL(sourceURL)

	existing, err := r.store.GetBySourceURL(ctx, canonical)
	if err != nil && err != datastore.ErrNotFound {
		return "", false, err
	}
	if err == nil {
		state := existing.Metadata.ProcessingState
		if state.Terminal() || state == metadata.StateFetching {
			return "", false, nil
		}
	}

	if payload == nil {
		payload = Payload{}
	}
	payload["source_url"] = canonical

	id, err = r.handle.Enqueue(ctx, FetchContent, payload)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// CanonicalizeURL normalizes a source URL for the dedup fingerprint: lower-
// cases scheme and host, drops a default port, drops any fragment, and
// strips a single trailing slash from the path. Parse failures and strings
// with no scheme pass through unchanged, so malformed "URLs" (e.g. a bare
// filesystem path from a directory source) still dedup on exact match.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}
