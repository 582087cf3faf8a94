package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxComputer computes and stores tax figures inside a caller's transaction
type TaxComputer interface {
	ComputeIn(ctx context.Context, repos TransactionalRepositories, clinicID uuid.UUID, month time.Time) (*tax.Figures, error)
}

// snapshotOrigins are the sources whose revenue feeds the snapshot
var snapshotOrigins = []ledger.Origin{ledger.OriginService, ledger.OriginManual, ledger.OriginProductSale}

// BuildResult is everything one refresh of a clinic month produced
type BuildResult struct {
	Snapshot *ledger.MonthlySnapshot
	Touched  []ledger.ClassifiedTransaction
	Stats    ClassifyStats
	Figures  *tax.Figures
}

// SnapshotService refreshes a clinic month: snapshot, ledger and tax figures in one transaction
type SnapshotService struct {
	scope      TransactionScope
	classifier *ClassificationService
	taxes      TaxComputer
	logger     *zap.Logger
	now        func() time.Time
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(scope TransactionScope, classifier *ClassificationService, taxes TaxComputer, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		scope:      scope,
		classifier: classifier,
		taxes:      taxes,
		logger:     logger,
		now:        time.Now,
	}
}

// Build validates the clinic and month and runs BuildIn in its own transaction
func (s *SnapshotService) Build(ctx context.Context, clinicID uuid.UUID, month time.Time) (*BuildResult, error) {
	if err := ledger.ValidateMonth(month, s.now()); err != nil {
		return nil, err
	}
	var result *BuildResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := requireClinic(ctx, repos, clinicID); err != nil {
			return err
		}
		var err error
		result, err = s.BuildIn(ctx, repos, clinicID, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BuildIn recomputes the snapshot from the billing sources, upserts it,
// then classifies the month and computes its taxes.
func (s *SnapshotService) BuildIn(ctx context.Context, repos TransactionalRepositories, clinicID uuid.UUID, month time.Time) (*BuildResult, error) {
	service, product, err := s.sourceRevenue(ctx, repos, clinicID, month)
	if err != nil {
		return nil, err
	}

	snapshot := ledger.NewMonthlySnapshot(clinicID, month, service, product, s.now())
	if err := repos.Snapshots().Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}

	touched, stats, err := s.classifier.ClassifyIn(ctx, repos, clinicID, month)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Snapshot: snapshot, Touched: touched, Stats: stats}
	if s.taxes != nil {
		figures, err := s.taxes.ComputeIn(ctx, repos, clinicID, month)
		if err != nil {
			return nil, err
		}
		result.Figures = figures
	}

	s.logger.Info("Snapshot built",
		zap.String("clinic_id", clinicID.String()),
		zap.String("month", snapshot.Month.Format("2006-01")),
		zap.String("service_revenue", snapshot.ServiceRevenue.StringFixed(2)),
		zap.String("product_revenue", snapshot.ProductRevenue.StringFixed(2)),
		zap.Int("ledger_rows_touched", len(touched)),
	)
	return result, nil
}

// Find returns the stored snapshot of a clinic month
func (s *SnapshotService) Find(ctx context.Context, clinicID uuid.UUID, month time.Time) (*ledger.MonthlySnapshot, error) {
	var snapshot *ledger.MonthlySnapshot
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		snapshot, err = repos.Snapshots().FindByMonth(ctx, clinicID, month)
		return err
	})
	return snapshot, err
}

// sourceRevenue sums realized revenue straight from the adapters; receivables are left out
func (s *SnapshotService) sourceRevenue(ctx context.Context, repos TransactionalRepositories, clinicID uuid.UUID, month time.Time) (decimal.Decimal, decimal.Decimal, error) {
	window := ledger.MonthWindow(month)
	sources := repos.Sources()
	service, product := decimal.Zero, decimal.Zero

	for _, origin := range snapshotOrigins {
		adapter, ok := sources.Get(origin)
		if !ok {
			continue
		}
		records, err := adapter.Enumerate(ctx, clinicID, window)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("enumerate %s: %w", origin, err)
		}
		for _, rec := range records {
			switch rec.Category {
			case ledger.CategoryRevenueService:
				service = service.Add(rec.Value)
			case ledger.CategoryRevenueProduct:
				product = product.Add(rec.Value)
			}
		}
	}
	return service, product, nil
}
