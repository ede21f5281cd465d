package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Scheduler wraps a gocron scheduler for periodic reindexing.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// ScheduleReindex runs task on the cron expression. Six-field expressions
// carry a leading seconds field. Overlapping runs are skipped.
func (s *Scheduler) ScheduleReindex(ctx context.Context, expr string, task func(ctx context.Context)) (string, error) {
	withSeconds := len(strings.Fields(expr)) == 6
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, withSeconds),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			s.logger.Info("Executing scheduled reindex", logfields.JobName("reindex"))
			task(ctx)
		}),
		gocron.WithName("reindex"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create reindex job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
