package startup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/observability"
	"github.com/platinummonkey/paise/pkg/startup"
)

// TestSmoke_FullStartupHealthCheckShutdown exercises the full five-phase
// orchestration end to end against in-memory stand-ins for every durable
// provider, then calls SingletonSet.HealthCheck the way an operator's
// readiness probe would, and finally shuts the run down cleanly. This is
// the surface SPEC_FULL.md §12 describes as the startup smoke test.
func TestSmoke_FullStartupHealthCheckShutdown(t *testing.T) {
	o := startup.NewOrchestrator(testConfig(), baseRegistrations(), noopTaskFactory, time.Second)

	singles, err := o.Start(context.Background())
	require.NoError(t, err)

	status := singles.HealthCheck(context.Background())
	assert.Equal(t, observability.StatusHealthy, status.Status)
	assert.Equal(t, observability.StatusHealthy, status.Dependencies["state_store"].Status)
	assert.Equal(t, observability.StatusHealthy, status.Dependencies["cache"].Status)
	assert.Equal(t, observability.StatusHealthy, status.Dependencies["data_store"].Status)

	o.Shutdown(context.Background())
}
