package usecase

import (
	"context"
	"time"

	"NoticeScanner/internal/ports"
)

// Scheduler wires the cron driver with the poll pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start/stop recurring poll cycles.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the poll cycle with the provided scheduler. Cycle errors
// are already logged inside the pipeline; the trigger swallows them so one
// bad cycle never stops the schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		_ = s.pipeline.PollCycle(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop tears down the trigger, then waits for in-flight units.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	if err := s.driver.Stop(ctx); err != nil {
		return err
	}
	if s.pipeline == nil {
		return nil
	}
	return s.pipeline.Wait(ctx)
}
