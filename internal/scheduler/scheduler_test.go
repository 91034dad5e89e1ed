package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testScheduler() *Scheduler {
	return &Scheduler{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSpawnRunsAfterDelayAndRepeats(t *testing.T) {
	s := testScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s.spawn(ctx, "test", 10*time.Millisecond, 10*time.Millisecond, func() error {
		runs.Add(1)
		return nil
	})

	assert.Eventually(t, func() bool { return runs.Load() >= 3 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	s.wg.Wait()
}

func TestSpawnStopsOnCancel(t *testing.T) {
	s := testScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	s.spawn(ctx, "test", time.Hour, time.Hour, func() error {
		runs.Add(1)
		return nil
	})

	cancel()
	s.wg.Wait()
	assert.Equal(t, int32(0), runs.Load())
}

func TestRunCycleContainsPanics(t *testing.T) {
	s := testScheduler()

	assert.NotPanics(t, func() {
		s.runCycle("test", func() error { panic("boom") })
	})

	// A panicked cycle must not poison the next one.
	ran := false
	s.runCycle("test", func() error {
		ran = true
		return nil
	})
	assert.True(t, ran)
}

func TestRunCycleLogsErrors(t *testing.T) {
	s := testScheduler()

	assert.NotPanics(t, func() {
		s.runCycle("test", func() error { return assert.AnError })
	})
}
