// Package scheduler runs periodic maintenance jobs, such as re-syncing the
// post index against the content directory, on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with named jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.Mutex
	jobs   map[string]cron.EntryID
}

// New creates a Scheduler. Overlapping runs of the same job are skipped.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Validate reports whether spec is a standard cron expression or a
// descriptor such as "@every 10m" or "@hourly".
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Add registers job under name, replacing any previous job with that name.
// Errors returned by job are logged.
func (s *Scheduler) Add(name, spec string, job func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.jobs[name]; ok {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		if err := job(); err != nil {
			s.logger.Warn("scheduler: job failed", slog.String("job", name), slog.String("error", err.Error()))
			return
		}
		s.logger.Debug("scheduler: job done", slog.String("job", name))
	})
	if err != nil {
		return fmt.Errorf("scheduler: add %s: %w", name, err)
	}
	s.jobs[name] = id
	s.logger.Info("scheduler: job scheduled", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped")
	return nil
}
