package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
)

// BackfillRunner rebuilds recent months for a set of clinics
type BackfillRunner interface {
	Run(ctx context.Context, months int, clinicIDs []uuid.UUID) (*appledger.BackfillResult, error)
}

// BackfillSchedulerConfig holds configuration for the monthly backfill
type BackfillSchedulerConfig struct {
	// Enabled determines if the scheduled loop is started
	Enabled bool

	// DayOfMonth (1-28) and Hour (0-23) pick the monthly run time
	DayOfMonth int
	Hour       int

	// Months is how many recent months each run rebuilds
	Months int

	// RunTimeout bounds a whole run across all clinics
	RunTimeout time.Duration

	// Location of the schedule; nil means UTC
	Location *time.Location
}

// DefaultBackfillSchedulerConfig returns default configuration
func DefaultBackfillSchedulerConfig() BackfillSchedulerConfig {
	return BackfillSchedulerConfig{
		Enabled:    true,
		DayOfMonth: 1,
		Hour:       2,
		Months:     6,
		RunTimeout: time.Hour,
	}
}

// BackfillScheduler runs the ledger backfill once a month and on demand.
// Runs never overlap.
type BackfillScheduler struct {
	runner BackfillRunner
	logger *zap.Logger
	config BackfillSchedulerConfig

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  bool
	last      *appledger.BackfillResult
}

// NewBackfillScheduler creates a new backfill scheduler
func NewBackfillScheduler(runner BackfillRunner, logger *zap.Logger, config BackfillSchedulerConfig) *BackfillScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultBackfillSchedulerConfig()
	if config.DayOfMonth < 1 || config.DayOfMonth > 28 {
		config.DayOfMonth = defaults.DayOfMonth
	}
	if config.Hour < 0 || config.Hour > 23 {
		config.Hour = defaults.Hour
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaults.RunTimeout
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &BackfillScheduler{
		runner: runner,
		logger: logger.Named("backfill_scheduler"),
		config: config,
		now:    time.Now,
		after:  time.After,
	}
}

// Start starts the scheduler. Triggers are accepted even when the monthly
// loop is disabled.
func (s *BackfillScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.ctx, s.cancel = ctx, cancel
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info("Monthly backfill is disabled; manual triggers only")
		return nil
	}

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Backfill scheduler started",
		zap.Int("day_of_month", s.config.DayOfMonth),
		zap.Int("hour", s.config.Hour),
		zap.Int("months", s.config.Months),
	)
	return nil
}

// Stop cancels any running backfill and waits for it to return
func (s *BackfillScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Backfill scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Backfill scheduler stop timed out")
		return ctx.Err()
	}
}

// NextRun returns the first scheduled time strictly after now
func (s *BackfillScheduler) NextRun(now time.Time) time.Time {
	now = now.In(s.config.Location)
	next := time.Date(now.Year(), now.Month(), s.config.DayOfMonth, s.config.Hour, 0, 0, 0, s.config.Location)
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

func (s *BackfillScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		nextRun := s.NextRun(s.now())
		delay := nextRun.Sub(s.now())

		s.logger.Info("Monthly backfill scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Backfill loop stopping")
			return
		case <-s.after(delay):
			if err := s.execute(ctx, s.config.Months, nil); err != nil {
				s.logger.Warn("Scheduled backfill skipped", zap.Error(err))
			}
		}
	}
}

// TriggerNow starts a run in the background. months <= 0 uses the configured
// count; empty clinicIDs means every active clinic.
func (s *BackfillScheduler) TriggerNow(months int, clinicIDs []uuid.UUID) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrRunInProgress
	}
	s.inFlight = true
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Info("Triggering immediate backfill", zap.Int("months", months), zap.Int("clinics", len(clinicIDs)))

	go func() {
		defer s.wg.Done()
		s.runLocked(ctx, months, clinicIDs)
	}()
	return nil
}

// LastResult returns the summary of the most recent completed run
func (s *BackfillScheduler) LastResult() *appledger.BackfillResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// IsRunning returns whether the scheduler is running
func (s *BackfillScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Busy reports whether a backfill run is in flight
func (s *BackfillScheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *BackfillScheduler) execute(ctx context.Context, months int, clinicIDs []uuid.UUID) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrRunInProgress
	}
	s.inFlight = true
	s.mu.Unlock()

	s.runLocked(ctx, months, clinicIDs)
	return nil
}

// runLocked expects inFlight to be set by the caller and clears it
func (s *BackfillScheduler) runLocked(ctx context.Context, months int, clinicIDs []uuid.UUID) {
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if months <= 0 {
		months = s.config.Months
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	startTime := s.now()
	result, err := s.runner.Run(runCtx, months, clinicIDs)
	duration := s.now().Sub(startTime)

	if result != nil {
		s.mu.Lock()
		s.last = result
		s.mu.Unlock()
	}

	if err != nil {
		fields := []zap.Field{zap.Duration("duration", duration), zap.Error(err)}
		if result != nil {
			fields = append(fields, zap.Int("processed", result.Processed), zap.Int("failed", len(result.Failures)))
		}
		s.logger.Error("Backfill run aborted", fields...)
		return
	}

	s.logger.Info("Backfill run completed",
		zap.Duration("duration", duration),
		zap.Int("clinics", result.Clinics),
		zap.Int("cells", result.Planned()),
		zap.Int("processed", result.Processed),
		zap.Int("failed", len(result.Failures)),
		zap.Bool("interrupted", result.Interrupted),
	)
}
