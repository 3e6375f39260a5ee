// Package scheduler runs the periodic maintenance jobs of the server on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/pkg/metrics"
)

const (
	JobInternCompletion = "intern_completion"
	JobTokenCleanup     = "token_cleanup"

	jobTimeout = 5 * time.Minute
)

// JobFunc does one run of a job and reports how many rows it touched
type JobFunc func(ctx context.Context, now time.Time) (int64, error)

// Scheduler wraps a cron runner whose jobs are logged and counted
type Scheduler struct {
	cron    *cron.Cron
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a scheduler using UTC schedules
func New(m *metrics.Metrics, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Add registers fn under name on a standard five-field cron spec
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("Scheduled job")
	return nil
}

// Start runs the registered jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := s.now()
	n, err := fn(ctx, start.UTC())
	s.metrics.SchedulerRun(name, err)

	if err != nil {
		s.logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		return
	}
	s.logger.Info().
		Str("job", name).
		Int64("affected", n).
		Dur("duration", time.Since(start)).
		Msg("Scheduled job finished")
}

// InternCompleter closes internships whose end date has passed
type InternCompleter interface {
	CompleteExpired(ctx context.Context, today time.Time) (int64, error)
}

// TokenCleaner purges stale refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context, now time.Time, revokedRetention time.Duration) (int64, error)
}

// CompleteInterns moves active internships past their end date to done
func CompleteInterns(interns InternCompleter) JobFunc {
	return func(ctx context.Context, now time.Time) (int64, error) {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return interns.CompleteExpired(ctx, today)
	}
}

// CleanupTokens deletes expired refresh tokens and revoked ones older than retention
func CleanupTokens(tokens TokenCleaner, retention time.Duration) JobFunc {
	return func(ctx context.Context, now time.Time) (int64, error) {
		return tokens.CleanupExpiredTokens(ctx, now, retention)
	}
}
