// AngelaMos | 2026
// scheduler.go

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/liahub/platform/internal/assignment"
	"github.com/liahub/platform/internal/auth"
	"github.com/liahub/platform/internal/config"
)

const jobTimeout = 30 * time.Second

// Scheduler runs the periodic maintenance work: expired refresh
// tokens are purged on the configured cron schedule, and resolved
// assignments past the retention window are deleted daily.
type Scheduler struct {
	cron        *cron.Cron
	tokens      auth.Repository
	assignments *assignment.Service
	cfg         config.JobsConfig
	logger      *slog.Logger
}

func NewScheduler(
	tokens auth.Repository,
	assignments *assignment.Service,
	cfg config.JobsConfig,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		tokens:      tokens,
		assignments: assignments,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(
		s.cfg.TokenPurgeSchedule, s.purgeExpiredTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(
		"@daily", s.purgeResolvedAssignments); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("job scheduler started",
		"token_purge_schedule", s.cfg.TokenPurgeSchedule,
		"assignment_retention", s.cfg.AssignmentRetention,
	)
	return nil
}

// Stop halts scheduling and waits for running jobs, bounded so
// shutdown cannot hang on a stuck job.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		s.logger.Warn("job scheduler stop timed out")
	}
}

func (s *Scheduler) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("purge expired tokens failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("purged expired refresh tokens", "count", deleted)
	}
}

func (s *Scheduler) purgeResolvedAssignments() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.assignments.PurgeResolved(
		ctx, s.cfg.AssignmentRetention)
	if err != nil {
		s.logger.Error("purge resolved assignments failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("purged resolved assignments", "count", deleted)
	}
}
