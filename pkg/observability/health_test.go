package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/state"
)

// failingStateStore fails every call, for testing the unhealthy path
// without needing a real broken backend.
type failingStateStore struct {
	state.StateStore
}

func (failingStateStore) ListKeys(ctx context.Context, partition string) ([]string, error) {
	return nil, errors.New("state store unreachable")
}

type failingCache struct {
	cache.Cache
}

func (failingCache) Put(ctx context.Context, partition string, value []byte) (ids.CacheId, error) {
	return "", errors.New("cache unreachable")
}

type failingDataStore struct {
	datastore.DataStore
}

func (failingDataStore) ListItems(ctx context.Context) ([]ids.ItemId, error) {
	return nil, errors.New("data store unreachable")
}

func TestNewHealthChecker(t *testing.T) {
	t.Run("with nil dependencies", func(t *testing.T) {
		checker := NewHealthChecker(nil, nil, nil)
		if checker == nil {
			t.Fatal("Expected non-nil checker")
		}
	})

	t.Run("with real in-memory providers", func(t *testing.T) {
		checker := NewHealthChecker(state.NewMemoryStateStore(), cache.NewMemoryCache(16), datastore.NewMemoryDataStore())
		if checker.state == nil || checker.cache == nil || checker.store == nil {
			t.Error("expected all three dependencies to be set")
		}
	})
}

func TestHealthChecker_Liveness(t *testing.T) {
	checker := NewHealthChecker(nil, nil, nil)

	req := httptest.NewRequest("GET", "/health/live", nil)
	rr := httptest.NewRecorder()
	checker.Liveness(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("Liveness check returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != StatusHealthy {
		t.Errorf("Expected status %s, got %v", StatusHealthy, response["status"])
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	t.Run("healthy readiness with no dependencies", func(t *testing.T) {
		checker := NewHealthChecker(nil, nil, nil)

		req := httptest.NewRequest("GET", "/health/ready", nil)
		rr := httptest.NewRecorder()
		checker.Readiness(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Readiness check returned wrong status code: got %v want %v", status, http.StatusOK)
		}
	})

	t.Run("unhealthy readiness with failed state store", func(t *testing.T) {
		checker := NewHealthChecker(failingStateStore{}, nil, nil)

		req := httptest.NewRequest("GET", "/health/ready", nil)
		rr := httptest.NewRecorder()
		checker.Readiness(rr, req)

		if status := rr.Code; status != http.StatusServiceUnavailable {
			t.Errorf("Expected status %v for unhealthy, got %v", http.StatusServiceUnavailable, status)
		}

		var response HealthStatus
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Status != StatusUnhealthy {
			t.Errorf("Expected status %s, got %s", StatusUnhealthy, response.Status)
		}
	})
}

func TestHealthChecker_Check(t *testing.T) {
	t.Run("no dependencies", func(t *testing.T) {
		checker := NewHealthChecker(nil, nil, nil)
		status := checker.Check(context.Background())

		if status.Status != StatusHealthy {
			t.Errorf("Expected status %s, got %s", StatusHealthy, status.Status)
		}
		if len(status.Dependencies) != 0 {
			t.Errorf("Expected 0 dependencies, got %d", len(status.Dependencies))
		}
		if status.Timestamp.IsZero() {
			t.Error("Expected non-zero timestamp")
		}
	})

	t.Run("with healthy providers", func(t *testing.T) {
		checker := NewHealthChecker(state.NewMemoryStateStore(), cache.NewMemoryCache(16), datastore.NewMemoryDataStore())
		status := checker.Check(context.Background())

		if status.Status != StatusHealthy {
			t.Errorf("Expected status %s, got %s", StatusHealthy, status.Status)
		}
		if len(status.Dependencies) != 3 {
			t.Errorf("Expected 3 dependencies, got %d", len(status.Dependencies))
		}
		for name, dep := range status.Dependencies {
			if dep.Status != StatusHealthy {
				t.Errorf("dependency %s: expected healthy, got %s", name, dep.Status)
			}
		}
	})

	t.Run("unhealthy state store makes overall status unhealthy", func(t *testing.T) {
		checker := NewHealthChecker(failingStateStore{}, cache.NewMemoryCache(16), datastore.NewMemoryDataStore())
		status := checker.Check(context.Background())

		if status.Status != StatusUnhealthy {
			t.Errorf("Expected status %s, got %s", StatusUnhealthy, status.Status)
		}
		if status.Dependencies["state_store"].Status != StatusUnhealthy {
			t.Error("expected state_store dependency to be unhealthy")
		}
		if status.Dependencies["cache"].Status != StatusHealthy {
			t.Error("expected cache dependency to stay healthy")
		}
	})

	t.Run("unhealthy cache makes overall status unhealthy", func(t *testing.T) {
		checker := NewHealthChecker(state.NewMemoryStateStore(), failingCache{}, datastore.NewMemoryDataStore())
		status := checker.Check(context.Background())

		if status.Status != StatusUnhealthy {
			t.Errorf("Expected status %s, got %s", StatusUnhealthy, status.Status)
		}
	})

	t.Run("unhealthy data store makes overall status unhealthy", func(t *testing.T) {
		checker := NewHealthChecker(state.NewMemoryStateStore(), cache.NewMemoryCache(16), failingDataStore{})
		status := checker.Check(context.Background())

		if status.Status != StatusUnhealthy {
			t.Errorf("Expected status %s, got %s", StatusUnhealthy, status.Status)
		}
	})
}

func TestRegisterHealthRoutes(t *testing.T) {
	t.Run("registers all routes", func(t *testing.T) {
		mux := http.NewServeMux()
		checker := NewHealthChecker(nil, nil, nil)
		RegisterHealthRoutes(mux, checker)

		for _, path := range []string{"/health", "/health/live", "/health/ready"} {
			req := httptest.NewRequest("GET", path, nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if status := rr.Code; status != http.StatusOK {
				t.Errorf("%s returned wrong status code: got %v want %v", path, status, http.StatusOK)
			}
		}
	})

	t.Run("routes reflect dependency health", func(t *testing.T) {
		mux := http.NewServeMux()
		checker := NewHealthChecker(state.NewMemoryStateStore(), nil, nil)
		RegisterHealthRoutes(mux, checker)

		req := httptest.NewRequest("GET", "/health", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		var response HealthStatus
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if _, ok := response.Dependencies["state_store"]; !ok {
			t.Error("Expected state_store dependency in response")
		}
	})
}

func TestHealthStatus_Values(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("Expected StatusHealthy to be 'healthy', got %s", StatusHealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("Expected StatusDegraded to be 'degraded', got %s", StatusDegraded)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("Expected StatusUnhealthy to be 'unhealthy', got %s", StatusUnhealthy)
	}
}

func TestDependencyStatus_Latency(t *testing.T) {
	status := DependencyStatus{
		Status:    StatusHealthy,
		Latency:   50 * time.Millisecond,
		Timestamp: time.Now(),
	}
	if status.Latency != 50*time.Millisecond {
		t.Errorf("Expected latency 50ms, got %v", status.Latency)
	}
}

func TestHealthStatus_JSON(t *testing.T) {
	original := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().Round(time.Second),
		Dependencies: map[string]DependencyStatus{
			"state_store": {
				Status:    StatusHealthy,
				Message:   "OK",
				Latency:   10 * time.Millisecond,
				Timestamp: time.Now().Round(time.Second),
			},
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded HealthStatus
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded.Status != original.Status {
		t.Errorf("Status mismatch: got %s, want %s", decoded.Status, original.Status)
	}
}
