package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/state"
)

// healthCheckPartition is a dedicated, non-reserved partition HealthChecker
// uses to probe the state store and cache without colliding with any
// plugin's own keys.
const healthCheckPartition = "_health"

// HealthChecker pings the durable providers a running index depends on:
// the state store, cache, and data store. It is the in-process analogue of
// a database ping, adapted to the three provider contracts this system
// actually has (§4.1).
type HealthChecker struct {
	state state.StateStore
	cache cache.Cache
	store datastore.DataStore
}

// NewHealthChecker creates a new health checker. Any of the three
// dependencies may be nil, in which case that dependency is skipped.
func NewHealthChecker(stateStore state.StateStore, cacheImpl cache.Cache, dataStore datastore.DataStore) *HealthChecker {
	return &HealthChecker{
		state: stateStore,
		cache: cacheImpl,
		store: dataStore,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ms,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns a simple liveness probe (always returns 200 if the
// process is running).
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness returns a readiness probe, checking every configured dependency.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(status)
}

// Check pings the state store, cache, and data store and rolls up their
// individual statuses.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Dependencies: make(map[string]DependencyStatus),
	}

	if h.state != nil {
		dep := h.checkState(ctx)
		status.Dependencies["state_store"] = dep
		status.Status = worstOf(status.Status, dep.Status)
	}
	if h.cache != nil {
		dep := h.checkCache(ctx)
		status.Dependencies["cache"] = dep
		status.Status = worstOf(status.Status, dep.Status)
	}
	if h.store != nil {
		dep := h.checkDataStore(ctx)
		status.Dependencies["data_store"] = dep
		status.Status = worstOf(status.Status, dep.Status)
	}

	return status
}

// worstOf returns whichever of current/next is the more severe status.
func worstOf(current, next string) string {
	if current == StatusUnhealthy || next == StatusUnhealthy {
		return StatusUnhealthy
	}
	if current == StatusDegraded || next == StatusDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *HealthChecker) checkState(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{Status: StatusHealthy, Timestamp: time.Now()}

	if _, err := h.state.ListKeys(ctx, healthCheckPartition); err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}
	status.Latency = time.Since(start)
	return status
}

func (h *HealthChecker) checkCache(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{Status: StatusHealthy, Timestamp: time.Now()}

	id, err := h.cache.Put(ctx, healthCheckPartition, []byte("ping"))
	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
		status.Latency = time.Since(start)
		return status
	}
	if err := h.cache.Remove(ctx, healthCheckPartition, id); err != nil {
		status.Status = StatusDegraded
		status.Message = "ping entry left behind: " + err.Error()
	}
	status.Latency = time.Since(start)
	return status
}

func (h *HealthChecker) checkDataStore(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{Status: StatusHealthy, Timestamp: time.Now()}

	if _, err := h.store.ListItems(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}
	status.Latency = time.Since(start)
	return status
}

// RegisterHealthRoutes registers health check endpoints on a diagnostics
// mux (the same one metrics.go's RegisterMetricsEndpoint uses).
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/health", checker.Readiness)
	mux.HandleFunc("/health/live", checker.Liveness)
	mux.HandleFunc("/health/ready", checker.Readiness)
}
