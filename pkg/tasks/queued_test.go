package tasks_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/tasks"
)

func TestQueuedHandle_ExecutesEnqueuedTasks(t *testing.T) {
	handle := tasks.NewQueuedHandle(2, time.Second)
	var count int32
	var wg sync.WaitGroup
	wg.Add(3)

	err := handle.Start(context.Background(), func(_ context.Context, _ tasks.Name, _ tasks.Payload) error {
		atomic.AddInt32(&count, 1)
		wg.Done()
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := handle.Enqueue(context.Background(), tasks.ExtractContent, tasks.Payload{"i": i})
		require.NoError(t, err)
	}

	waitOrTimeout(t, &wg, 2*time.Second)
	assert.EqualValues(t, 3, atomic.LoadInt32(&count))
	require.NoError(t, handle.Stop(context.Background()))
}

func TestQueuedHandle_PermanentErrorDoesNotRetry(t *testing.T) {
	handle := tasks.NewQueuedHandle(1, 5*time.Second)
	var attempts int32
	var failed tasks.Record
	handle.OnFailed(func(rec tasks.Record, _ error) { failed = rec })

	done := make(chan struct{})
	err := handle.Start(context.Background(), func(_ context.Context, _ tasks.Name, _ tasks.Payload) error {
		n := atomic.AddInt32(&attempts, 1)
		defer func() {
			if n == 1 {
				close(done)
			}
		}()
		return perrors.Permanent(errors.New("boom"))
	})
	require.NoError(t, err)

	_, err = handle.Enqueue(context.Background(), tasks.FetchContent, tasks.Payload{})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never executed")
	}
	time.Sleep(50 * time.Millisecond)

	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
	assert.Equal(t, tasks.StateFailed, failed.State)
	require.NoError(t, handle.Stop(context.Background()))
}

func TestQueuedHandle_DispatchPanicIsRecoveredAndRecordedAsFailed(t *testing.T) {
	handle := tasks.NewQueuedHandle(1, 5*time.Second)
	var failed tasks.Record
	var survivorRan int32
	failedCh := make(chan struct{})
	survivorDone := make(chan struct{})

	handle.OnFailed(func(rec tasks.Record, _ error) {
		failed = rec
		close(failedCh)
	})

	err := handle.Start(context.Background(), func(_ context.Context, name tasks.Name, _ tasks.Payload) error {
		if name == tasks.FetchContent {
			panic("dispatch exploded")
		}
		atomic.AddInt32(&survivorRan, 1)
		close(survivorDone)
		return nil
	})
	require.NoError(t, err)

	_, err = handle.Enqueue(context.Background(), tasks.FetchContent, tasks.Payload{})
	require.NoError(t, err)

	select {
	case <-failedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("panic was never recorded as a failure")
	}
	assert.Equal(t, tasks.StateFailed, failed.State)

	// The worker pool itself must still be alive after the panic: a second
	// task enqueued afterward still runs (§5 "pool of worker threads" must
	// survive one task's panic).
	_, err = handle.Enqueue(context.Background(), tasks.ExtractContent, tasks.Payload{})
	require.NoError(t, err)

	select {
	case <-survivorDone:
	case <-time.After(2 * time.Second):
		t.Fatal("worker pool did not process a task enqueued after a panic")
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&survivorRan))

	require.NoError(t, handle.Stop(context.Background()))
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for tasks to complete")
	}
}
