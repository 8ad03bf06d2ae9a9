package periodic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestLoopTicksUntilCancelled(t *testing.T) {
	var runs atomic.Int64
	loop := NewLoop("test", time.Millisecond, time.Millisecond, func(context.Context) {
		runs.Inc()
	})
	assert.Equal(t, "test", loop.Name())

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, loop.Stop(stopCtx))

	stopped := runs.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestLoopCancelledBeforeFirstRun(t *testing.T) {
	var runs atomic.Int64
	loop := NewLoop("test", time.Hour, time.Hour, func(context.Context) {
		runs.Inc()
	})

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, loop.Stop(stopCtx))
	assert.Zero(t, runs.Load())
}

func TestStopHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	loop := NewLoop("slow", 0, time.Hour, func(context.Context) {
		<-release
	})
	loop.Start(context.Background())
	defer close(release)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer stopCancel()
	assert.ErrorIs(t, loop.Stop(stopCtx), context.DeadlineExceeded)
}
