package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBoundsInFlightTasks(t *testing.T) {
	const capacity = 3
	const tasks = 20

	l := NewLimiter(capacity)

	var inFlight, peak, done atomic.Int64
	for i := 0; i < tasks; i++ {
		err := l.Go(context.Background(), func() {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			done.Add(1)
		})
		require.NoError(t, err)
	}
	l.Wait()

	assert.Equal(t, int64(tasks), done.Load())
	assert.LessOrEqual(t, peak.Load(), int64(capacity))
	assert.Equal(t, int64(0), inFlight.Load())
}

func TestLimiterFailedTaskDoesNotBlockOthers(t *testing.T) {
	l := NewLimiter(1)

	var done atomic.Int64
	require.NoError(t, l.Go(context.Background(), func() {
		// A "failed" task simply returns; nothing to propagate.
		done.Add(1)
	}))
	require.NoError(t, l.Go(context.Background(), func() {
		done.Add(1)
	}))
	l.Wait()

	assert.Equal(t, int64(2), done.Load())
}

func TestLimiterCancelledWhileQueued(t *testing.T) {
	l := NewLimiter(1)

	release := make(chan struct{})
	require.NoError(t, l.Go(context.Background(), func() {
		<-release
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Go(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	l.Wait()
}
