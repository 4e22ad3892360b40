package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCronSchedulerTriggersJob(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	sc := NewCronScheduler("@every 100ms")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sc.Start(ctx, func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 runs, got %d", runs.Load())
		case <-time.After(20 * time.Millisecond):
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := sc.Stop(stopCtx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	sc := NewCronScheduler("not a cron spec")
	err := sc.Start(context.Background(), func(time.Time) {})
	if err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestCronSchedulerNilJobIsNoop(t *testing.T) {
	t.Parallel()

	sc := NewCronScheduler("@every 1m")
	if err := sc.Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job should be a no-op, got %v", err)
	}
	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}
