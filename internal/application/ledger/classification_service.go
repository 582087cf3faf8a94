package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClassifyStats counts what one classification pass did
type ClassifyStats struct {
	Enumerated int
	Created    int
	Updated    int
	Unchanged  int
}

// ClassificationService upserts every source record of a clinic month into the ledger
type ClassificationService struct {
	scope  TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewClassificationService creates a new ClassificationService
func NewClassificationService(scope TransactionScope, logger *zap.Logger) *ClassificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassificationService{
		scope:  scope,
		logger: logger,
		now:    time.Now,
	}
}

// Classify runs ClassifyIn in its own transaction after validating the clinic and month.
// It returns the ledger rows created or changed.
func (s *ClassificationService) Classify(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error) {
	if err := ledger.ValidateMonth(month, s.now()); err != nil {
		return nil, err
	}
	var touched []ledger.ClassifiedTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := requireClinic(ctx, repos, clinicID); err != nil {
			return err
		}
		var err error
		touched, _, err = s.ClassifyIn(ctx, repos, clinicID, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}

// Transactions lists the ledger rows bucketed into a clinic month, oldest first
func (s *ClassificationService) Transactions(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error) {
	if err := ledger.ValidateMonth(month, s.now()); err != nil {
		return nil, err
	}
	var rows []ledger.ClassifiedTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rows, err = repos.Ledger().FindByMonth(ctx, clinicID, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClassifyIn classifies the month inside the caller's transaction
func (s *ClassificationService) ClassifyIn(ctx context.Context, repos TransactionalRepositories, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, ClassifyStats, error) {
	window := ledger.MonthWindow(month)
	txRepo := repos.Ledger()
	now := s.now()

	var stats ClassifyStats
	touched := make([]ledger.ClassifiedTransaction, 0)
	for _, adapter := range repos.Sources().All() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		records, err := adapter.Enumerate(ctx, clinicID, window)
		if err != nil {
			return nil, stats, fmt.Errorf("enumerate %s: %w", adapter.Origin(), err)
		}
		stats.Enumerated += len(records)

		for _, rec := range records {
			row, outcome, err := upsert(ctx, txRepo, clinicID, adapter.Origin(), rec, now)
			if err != nil {
				return nil, stats, err
			}
			switch outcome {
			case outcomeCreated:
				stats.Created++
				touched = append(touched, *row)
			case outcomeUpdated:
				stats.Updated++
				touched = append(touched, *row)
			default:
				stats.Unchanged++
			}
		}
	}

	s.logger.Debug("Classified clinic month",
		zap.String("clinic_id", clinicID.String()),
		zap.String("month", ledger.MonthOf(month).Format("2006-01")),
		zap.Int("enumerated", stats.Enumerated),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("unchanged", stats.Unchanged),
	)
	return touched, stats, nil
}

type upsertOutcome int

const (
	outcomeUnchanged upsertOutcome = iota
	outcomeCreated
	outcomeUpdated
)

// upsert inserts the record's row or reconciles the existing one.
// A concurrent insert of the same raw id is retried once as an update.
func upsert(ctx context.Context, repo ledger.TransactionRepository, clinicID uuid.UUID, origin ledger.Origin, rec ledger.NormalizedRecord, now time.Time) (*ledger.ClassifiedTransaction, upsertOutcome, error) {
	rawID := ledger.RawID(origin, rec.SourceKey)

	existing, err := repo.FindByRawID(ctx, clinicID, rawID)
	switch {
	case err == nil:
		return reconcile(ctx, repo, existing, origin, rec, now)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, outcomeUnchanged, err
	}

	row := ledger.NewClassifiedTransaction(clinicID, origin, rec, now)
	err = repo.Create(ctx, row)
	if err == nil {
		return row, outcomeCreated, nil
	}
	if !errors.Is(err, ledger.ErrDuplicateRawID) {
		return nil, outcomeUnchanged, err
	}

	existing, err = repo.FindByRawID(ctx, clinicID, rawID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, outcomeUnchanged, fmt.Errorf("%w: %s", ledger.ErrUpsertConflict, rawID)
	}
	if err != nil {
		return nil, outcomeUnchanged, err
	}
	return reconcile(ctx, repo, existing, origin, rec, now)
}

func reconcile(ctx context.Context, repo ledger.TransactionRepository, row *ledger.ClassifiedTransaction, origin ledger.Origin, rec ledger.NormalizedRecord, now time.Time) (*ledger.ClassifiedTransaction, upsertOutcome, error) {
	if !row.Reconcile(origin, rec, now) {
		return row, outcomeUnchanged, nil
	}
	if err := repo.Update(ctx, row); err != nil {
		return nil, outcomeUnchanged, err
	}
	return row, outcomeUpdated, nil
}

// requireClinic maps a missing clinic to ErrUnknownClinic
func requireClinic(ctx context.Context, repos TransactionalRepositories, clinicID uuid.UUID) error {
	if clinicID == uuid.Nil {
		return ledger.ErrUnknownClinic
	}
	if _, err := repos.Clinics().FindByID(ctx, clinicID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.ErrUnknownClinic
		}
		return err
	}
	return nil
}
