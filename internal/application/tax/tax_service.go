package tax

import (
	"context"
	"errors"
	"fmt"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceConfig contains configuration for TaxService
type ServiceConfig struct {
	DefaultServiceTaxRate decimal.Decimal
	WithholdingRate       decimal.Decimal
	WithholdingThreshold  decimal.Decimal
	Policy                tax.BracketPolicy
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultServiceTaxRate: decimal.RequireFromString("0.05"),
		WithholdingRate:       decimal.RequireFromString("0.015"),
		WithholdingThreshold:  decimal.RequireFromString("666.67"),
		Policy:                tax.FixedTablePolicy{Table: tax.AnnexIII()},
	}
}

// TaxService computes and stores the tax figures of a clinic month from ledger aggregates
type TaxService struct {
	scope  appledger.TransactionScope
	cfg    ServiceConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewTaxService creates a new TaxService
func NewTaxService(scope appledger.TransactionScope, cfg ServiceConfig, logger *zap.Logger) *TaxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Policy == nil {
		cfg.Policy = tax.FixedTablePolicy{Table: tax.AnnexIII()}
	}
	return &TaxService{scope: scope, cfg: cfg, logger: logger, now: time.Now}
}

// Compute validates the month and runs ComputeIn in its own transaction
func (s *TaxService) Compute(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error) {
	if err := ledger.ValidateMonth(month, s.now()); err != nil {
		return nil, err
	}
	var figures *tax.Figures
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		figures, err = s.ComputeIn(ctx, repos, clinicID, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return figures, nil
}

// ComputeIn gathers the inputs inside the caller's transaction, calculates and upserts the figures.
// The ledger is only read.
func (s *TaxService) ComputeIn(ctx context.Context, repos appledger.TransactionalRepositories, clinicID uuid.UUID, month time.Time) (*tax.Figures, error) {
	profile, err := repos.Clinics().FindByID(ctx, clinicID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ledger.ErrUnknownClinic
		}
		return nil, err
	}

	in, err := s.inputs(ctx, repos, profile.ID, month)
	if err != nil {
		return nil, err
	}
	in.SimplifiedRegime = profile.UsesSimplifiedRegime()
	in.ServiceTaxRate = s.cfg.DefaultServiceTaxRate
	if profile.ServiceTaxRate != nil {
		in.ServiceTaxRate = *profile.ServiceTaxRate
	}
	in.Withholding = tax.WithholdingRule{
		Rate:           s.cfg.WithholdingRate,
		Threshold:      s.cfg.WithholdingThreshold,
		AlwaysRequired: profile.WithholdingAlwaysRequired,
	}

	figures := tax.NewFigures(clinicID, month, tax.Calculate(in, s.cfg.Policy), s.now())
	if err := repos.TaxFigures().Upsert(ctx, figures); err != nil {
		return nil, fmt.Errorf("upsert tax figures: %w", err)
	}

	s.logger.Debug("Tax figures computed",
		zap.String("clinic_id", clinicID.String()),
		zap.String("month", figures.Month.Format("2006-01")),
		zap.String("service_tax", figures.ServiceTax.StringFixed(2)),
		zap.String("simplified_tax", figures.SimplifiedTax.StringFixed(2)),
		zap.String("fator_r", figures.FatorR.StringFixed(4)),
		zap.String("bracket_table", figures.BracketTable),
	)
	return figures, nil
}

// Find returns the stored figures of a clinic month
func (s *TaxService) Find(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error) {
	var figures *tax.Figures
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		figures, err = repos.TaxFigures().FindByMonth(ctx, clinicID, month)
		return err
	})
	return figures, err
}

func (s *TaxService) inputs(ctx context.Context, repos appledger.TransactionalRepositories, clinicID uuid.UUID, month time.Time) (tax.Inputs, error) {
	current := ledger.MonthWindow(month)
	trailing := ledger.TrailingWindow(month, ledger.TrailingMonths)
	txRepo := repos.Ledger()

	var in tax.Inputs
	var err error
	if in.ServiceRevenue, err = txRepo.SumValues(ctx, clinicID, current, ledger.CategoryRevenueService); err != nil {
		return in, fmt.Errorf("sum service revenue: %w", err)
	}
	if in.ProductRevenue, err = txRepo.SumValues(ctx, clinicID, current, ledger.CategoryRevenueProduct); err != nil {
		return in, fmt.Errorf("sum product revenue: %w", err)
	}
	if in.TrailingRevenue, err = txRepo.SumValues(ctx, clinicID, trailing, ledger.RevenueCategories()...); err != nil {
		return in, fmt.Errorf("sum trailing revenue: %w", err)
	}
	payroll, err := txRepo.SumValues(ctx, clinicID, trailing, ledger.CategoryPayrollLike)
	if err != nil {
		return in, fmt.Errorf("sum trailing payroll: %w", err)
	}
	in.TrailingPayroll = payroll.Abs()

	if in.ContractorPayments, err = repos.ContractorPayments().ContractorPayments(ctx, clinicID, current); err != nil {
		return in, fmt.Errorf("contractor payments: %w", err)
	}
	return in, nil
}

var _ appledger.TaxComputer = (*TaxService)(nil)
