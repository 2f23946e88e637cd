package usecase

import (
	"context"
	"log/slog"
	"time"

	"BangerBoard/internal/ports"
)

// Job is one recurring task executed on every scheduler tick.
type Job struct {
	Name string
	Run  func(ctx context.Context, trigger time.Time) error
}

// Scheduler wires the ticking driver with the recurring jobs.
type Scheduler struct {
	driver ports.Scheduler
	jobs   []Job
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, logger *slog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, jobs: jobs, logger: logger.With("component", "scheduler")}
}

// ScrapeJob runs a full scrape of every show.
func ScrapeJob(o *ScrapeOrchestrator) Job {
	return Job{Name: "scrape-shows", Run: func(ctx context.Context, _ time.Time) error {
		_, err := o.ScrapeAll(ctx)
		return err
	}}
}

// Start registers the jobs with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || len(s.jobs) == 0 {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) { s.RunOnce(ctx, trigger) })
}

// RunOnce executes every job sequentially; a failing job does not stop the rest.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	for _, job := range s.jobs {
		if err := job.Run(ctx, trigger); err != nil {
			s.logger.Error("job failed", "job", job.Name, "error", err)
			continue
		}
		s.logger.Info("job finished", "job", job.Name, "trigger", trigger)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
