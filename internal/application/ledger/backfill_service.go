package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BackfillConfig contains configuration for BackfillService
type BackfillConfig struct {
	Months      int
	CellTimeout time.Duration
}

// DefaultBackfillConfig returns default configuration
func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{
		Months:      6,
		CellTimeout: 2 * time.Minute,
	}
}

// Cell is one (clinic, month) pair of a backfill run
type Cell struct {
	ClinicID uuid.UUID
	Month    time.Time
}

// CellFailure records one (clinic, month) cell that could not be refreshed
type CellFailure struct {
	ClinicID uuid.UUID
	Month    time.Time
	Err      error
}

// BackfillResult summarizes one backfill run
type BackfillResult struct {
	Clinics     int
	Months      []time.Time
	Processed   int
	Cells       []Cell // refreshed cells, in run order
	Failures    []CellFailure
	Interrupted bool // ctx ended before every cell ran
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Planned is the number of cells the run planned
func (r *BackfillResult) Planned() int {
	return r.Clinics * len(r.Months)
}

// Builder refreshes one clinic month
type Builder interface {
	Build(ctx context.Context, clinicID uuid.UUID, month time.Time) (*BuildResult, error)
}

// BackfillService rebuilds recent months for a set of clinics, one cell at a time
type BackfillService struct {
	scope   TransactionScope
	builder Builder
	logger  *zap.Logger
	cfg     BackfillConfig
	now     func() time.Time
}

// NewBackfillService creates a new BackfillService
func NewBackfillService(scope TransactionScope, builder Builder, logger *zap.Logger, cfg BackfillConfig) *BackfillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultBackfillConfig()
	if cfg.Months <= 0 {
		cfg.Months = defaults.Months
	}
	if cfg.CellTimeout <= 0 {
		cfg.CellTimeout = defaults.CellTimeout
	}
	return &BackfillService{
		scope:   scope,
		builder: builder,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run refreshes the most recent months (current month included) for clinicIDs.
// months <= 0 uses the configured default; an empty clinicIDs means every active clinic.
// A failing cell is recorded and the run continues; only cancellation of ctx stops it early.
func (s *BackfillService) Run(ctx context.Context, months int, clinicIDs []uuid.UUID) (*BackfillResult, error) {
	if months <= 0 {
		months = s.cfg.Months
	}
	result := &BackfillResult{StartedAt: s.now().UTC()}

	if len(clinicIDs) == 0 {
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			clinicIDs, err = repos.Clinics().ListActiveIDs(ctx)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list active clinics: %w", err)
		}
	}
	result.Clinics = len(clinicIDs)
	result.Months = ledger.RecentMonths(s.now(), months)

	s.logger.Info("Starting backfill",
		zap.Int("clinics", result.Clinics),
		zap.Int("months", len(result.Months)),
	)

	var runErr error
cells:
	for _, clinicID := range clinicIDs {
		for _, month := range result.Months {
			if err := ctx.Err(); err != nil {
				runErr = err
				break cells
			}
			if err := s.runCell(ctx, clinicID, month); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					runErr = ctx.Err()
					break cells
				}
				result.Failures = append(result.Failures, CellFailure{ClinicID: clinicID, Month: month, Err: err})
				s.logger.Warn("Backfill cell failed",
					zap.String("clinic_id", clinicID.String()),
					zap.String("month", month.Format("2006-01")),
					zap.Error(err),
				)
				continue
			}
			result.Processed++
			result.Cells = append(result.Cells, Cell{ClinicID: clinicID, Month: month})
		}
	}

	result.FinishedAt = s.now().UTC()
	result.Interrupted = runErr != nil
	s.logger.Info("Backfill finished",
		zap.Int("cells", result.Planned()),
		zap.Int("processed", result.Processed),
		zap.Int("failed", len(result.Failures)),
		zap.Bool("interrupted", result.Interrupted),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, runErr
}

func (s *BackfillService) runCell(ctx context.Context, clinicID uuid.UUID, month time.Time) error {
	cellCtx, cancel := context.WithTimeout(ctx, s.cfg.CellTimeout)
	defer cancel()
	_, err := s.builder.Build(cellCtx, clinicID, month)
	return err
}
