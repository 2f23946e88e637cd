package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Hour, time.UTC)
	var calls atomic.Int32
	fired := make(chan struct{}, 1)

	err := s.Start(context.Background(), func(time.Time) {
		calls.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one run, got %d", got)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}

func TestIntervalSchedulerTicks(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(10*time.Millisecond, time.UTC)
	var calls atomic.Int32
	if err := s.Start(context.Background(), func(time.Time) { calls.Add(1) }); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = s.Stop(context.Background())

	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", calls.Load())
	}
}

func TestIntervalSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(0, nil)
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("start with nil job: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
