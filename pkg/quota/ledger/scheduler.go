package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Checkpointer is implemented by stores that support explicit
// maintenance flushes. SQLiteStore implements it; MemoryStore does not
// need to.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Scheduler runs periodic storage maintenance on a cron schedule.
//
// Maintenance is limited to backend housekeeping (WAL checkpoints).
// Window resets are deliberately not scheduled work: they stay lazy and
// happen at read/commit time, so the service needs no always-on process
// to be correct.
type Scheduler struct {
	target   Checkpointer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// NewScheduler creates a maintenance scheduler.
//
// Common cron expressions:
//   - "0 3 * * *"   - daily at 3 AM
//   - "*/30 * * * *" - every 30 minutes
//
// If schedule is empty, Start does nothing.
func NewScheduler(target Checkpointer, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		target:   target,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "ledger.scheduler"),
	}
}

// Start begins scheduled maintenance. It returns once the cron runner is
// started; jobs execute on the cron goroutine until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("maintenance schedule not configured, skipping scheduler")
		return nil
	}
	if s.target == nil {
		s.logger.Info("ledger store does not support checkpointing, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runMaintenance(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("ledger maintenance scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled maintenance. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false

	s.logger.Info("ledger maintenance scheduler stopped")
}

func (s *Scheduler) runMaintenance(ctx context.Context) {
	if err := s.target.Checkpoint(ctx); err != nil {
		s.logger.Warn("ledger maintenance failed", "error", err)
		return
	}
	s.logger.Debug("ledger maintenance completed")
}
