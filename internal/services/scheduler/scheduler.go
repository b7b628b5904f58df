package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Runner executes one full discovery session.
type Runner func(ctx context.Context) error

// Scheduler drives recurring discovery sessions from a cron expression.
// Overlapping runs are prevented: a tick that fires while the previous
// session is still active is skipped with a log.
type Scheduler struct {
	runner  Runner
	cron    *cron.Cron
	logger  arbor.ILogger
	running atomic.Bool
}

// NewScheduler creates a scheduler around the session runner
func NewScheduler(runner Runner, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		runner: runner,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the schedule and begins ticking. The expression uses the
// standard five cron fields.
func (s *Scheduler) Start(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("empty schedule expression")
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		s.RunNow(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Discovery scheduler started")

	return nil
}

// RunNow executes one discovery session immediately, unless a session is
// already active. Reports whether a session was started.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Previous discovery run still active, skipping this tick")
		return false
	}
	defer s.running.Store(false)

	started := time.Now()
	s.logger.Info().Msg("Starting scheduled discovery run")

	if err := s.runner(ctx); err != nil {
		s.logger.Error().
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("Scheduled discovery run failed")
		return true
	}

	s.logger.Info().
		Dur("duration", time.Since(started)).
		Msg("Scheduled discovery run completed")
	return true
}

// Stop halts the ticker and waits for an in-flight run to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Discovery scheduler stopped")
}
