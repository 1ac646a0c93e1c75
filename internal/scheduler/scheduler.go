// Package scheduler drives the recurring background jobs (stats sync,
// fee claim, eligibility check, prize draw) on fixed UTC cron schedules.
// Jobs are independent of one another; overlap of the same job type is
// prevented by a per-job single-flight guard.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

// Job is one recurring background task.
type Job struct {
	// Name identifies the job type in logs and guards.
	Name string
	// Spec is the cron schedule, evaluated in UTC.
	Spec string
	// Guard is the single-flight latch for this job type. Injected so
	// overlap behavior can be tested in isolation; Register creates one
	// when nil.
	Guard *Guard
	// Run executes one invocation. A returned error is logged and the
	// invocation is retried naturally at the next tick.
	Run func(ctx context.Context) error
}

// Scheduler owns the cron runner and the registered jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler with a UTC cron runner. UTC keeps the draw
// window boundaries aligned with the window identifiers.
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
	}
}

// Register schedules a job. The job's failures never propagate to the
// scheduler; they are logged and the guard is released regardless.
func (s *Scheduler) Register(job Job) error {
	if job.Guard == nil {
		job.Guard = NewGuard(job.Name)
	}
	_, err := s.cron.AddFunc(job.Spec, func() {
		Invoke(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s with spec %q: %w", job.Name, job.Spec, err)
	}
	slog.Info("Job scheduled", "job", job.Name, "spec", job.Spec)
	return nil
}

// Invoke runs one invocation of a job under its guard. Exposed so tests
// and startup warm-up runs use the exact same path as cron triggers.
func Invoke(ctx context.Context, job Job) {
	if !job.Guard.TryAcquire() {
		slog.Info("Skipping run, previous invocation still in progress", "job", job.Name)
		return
	}
	start := time.Now()
	defer func() {
		job.Guard.Release()
		if r := recover(); r != nil {
			slog.Error("Job panicked", "job", job.Name, "panic", r)
		}
	}()

	if err := job.Run(ctx); err != nil {
		slog.Error("Job failed", "job", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Info("Job completed", "job", job.Name, "duration", time.Since(start))
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts new triggers and returns a context that is done once all
// in-flight jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
