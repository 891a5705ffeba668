package uistate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
)

func startDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d := NewDispatcher(logger.NewNop())
	d.Start(context.Background())
	t.Cleanup(d.Stop)
	return d
}

func TestDoRunsSerially(t *testing.T) {
	d := startDispatcher(t)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Do(context.Background(), func() { counter++ }))
		}()
	}
	wg.Wait()

	var got int
	require.NoError(t, d.Do(context.Background(), func() { got = counter }))
	assert.Equal(t, 100, got)
}

func TestPostPreservesOrder(t *testing.T) {
	d := startDispatcher(t)
	var seen []int
	for i := 0; i < 10; i++ {
		i := i
		d.Post(func() { seen = append(seen, i) })
	}

	var got []int
	require.NoError(t, d.Do(context.Background(), func() { got = append(got, seen...) }))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	d := startDispatcher(t)
	require.NoError(t, d.Do(context.Background(), func() { panic("boom") }))

	ran := false
	require.NoError(t, d.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestDoAfterStop(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	d.Start(context.Background())
	d.Stop()

	err := d.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)

	// Post never blocks on a stopped dispatcher.
	d.Post(func() {})
}

func TestStopWithoutStart(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	d.Stop()
	assert.ErrorIs(t, d.Do(context.Background(), func() {}), ErrStopped)
}

func TestContextCancelStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(logger.NewNop())
	d.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		return d.Do(context.Background(), func() {}) == ErrStopped
	}, time.Second, 10*time.Millisecond)
}
