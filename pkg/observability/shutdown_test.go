package observability_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/observability"
)

func TestShutdownManager_RunsRegisteredFuncs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mgr := observability.NewShutdownManager(logger, time.Second)

	var calls int32
	mgr.RegisterShutdownFunc(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	mgr.RegisterShutdownFunc(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, mgr.Trigger())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestShutdownManager_ReportsFuncErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mgr := observability.NewShutdownManager(logger, time.Second)
	mgr.RegisterShutdownFunc(func(context.Context) error {
		return errors.New("close failed")
	})

	err := mgr.Trigger()
	assert.Error(t, err)
}

func TestShutdownManager_TimesOutSlowFuncs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mgr := observability.NewShutdownManager(logger, 20*time.Millisecond)
	mgr.RegisterShutdownFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := mgr.Trigger()
	assert.Error(t, err)
}
