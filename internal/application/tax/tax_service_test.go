package tax_test

import (
	"context"
	"testing"
	"time"

	apptax "github.com/clinicfin/backend/internal/application/tax"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/clinicfin/backend/internal/infrastructure/persistence"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/dbtest"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var month = ledger.MonthOf(time.Now()).AddDate(0, -1, 0)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T, cfg apptax.ServiceConfig) (*gorm.DB, *apptax.TaxService) {
	db := dbtest.Open(t)
	scope := persistence.NewGormTransactionScope(db, source.NewRegistry(source.AllCapabilities(), nil))
	return db, apptax.NewTaxService(scope, cfg, nil)
}

func addClinic(t *testing.T, db *gorm.DB, mutate func(*models.ClinicModel)) uuid.UUID {
	c := models.ClinicModel{BaseModel: dbtest.Base(), Name: "Pet Care", TaxRegime: "simples", Active: true}
	if mutate != nil {
		mutate(&c)
	}
	dbtest.Insert(t, db, &c)
	return c.ID
}

// addLedger writes ledger rows directly so trailing windows can be shaped freely
func addLedger(t *testing.T, db *gorm.DB, clinicID uuid.UUID, monthsAgo int, category ledger.Category, value string) {
	repo := persistence.NewGormClassifiedTransactionRepository(db)
	rec := ledger.NormalizedRecord{
		SourceKey:   uuid.NewString(),
		OccurredAt:  month.AddDate(0, -monthsAgo, 3),
		Description: string(category),
		Value:       dec(value),
		Category:    category,
	}
	require.NoError(t, repo.Create(context.Background(), ledger.NewClassifiedTransaction(clinicID, ledger.OriginManual, rec, time.Now())))
}

func TestCompute_UsesTrailingWindow(t *testing.T) {
	db, svc := setup(t, apptax.DefaultServiceConfig())
	clinicID := addClinic(t, db, nil)

	addLedger(t, db, clinicID, 0, ledger.CategoryRevenueService, "10000")
	addLedger(t, db, clinicID, 0, ledger.CategoryRevenueProduct, "5000")
	addLedger(t, db, clinicID, 0, ledger.CategoryReceivablePending, "99999")
	addLedger(t, db, clinicID, 6, ledger.CategoryRevenueService, "200000")
	addLedger(t, db, clinicID, 11, ledger.CategoryRevenueService, "5000")
	// thirteen months back is outside the window
	addLedger(t, db, clinicID, 12, ledger.CategoryRevenueService, "900000")

	figures, err := svc.Compute(context.Background(), clinicID, month)
	require.NoError(t, err)

	assert.True(t, dec("220000").Equal(figures.TrailingRevenue), figures.TrailingRevenue.String())
	require.NotNil(t, figures.BracketIndex)
	assert.Equal(t, 1, *figures.BracketIndex)
	// (220000 * 0.112 - 9360) / 220000 = 0.069454...
	assert.True(t, dec("0.0695").Equal(figures.EffectiveRate), figures.EffectiveRate.String())
	assert.True(t, dec("1041.82").Equal(figures.SimplifiedTax), figures.SimplifiedTax.String())
	assert.True(t, dec("500").Equal(figures.ServiceTax), figures.ServiceTax.String())
	assert.True(t, dec("180000").Equal(figures.ProjectedAnnualRevenue))

	again, err := svc.Compute(context.Background(), clinicID, month)
	require.NoError(t, err)
	assert.Equal(t, figures.Computation, again.Computation)

	stored, err := svc.Find(context.Background(), clinicID, month)
	require.NoError(t, err)
	assert.True(t, figures.SimplifiedTax.Equal(stored.SimplifiedTax))
}

func TestCompute_ClinicProfile(t *testing.T) {
	t.Run("percentage rate override", func(t *testing.T) {
		db, svc := setup(t, apptax.DefaultServiceConfig())
		rate := dec("3")
		clinicID := addClinic(t, db, func(c *models.ClinicModel) { c.ServiceTaxRate = &rate })
		addLedger(t, db, clinicID, 0, ledger.CategoryRevenueService, "1000")

		figures, err := svc.Compute(context.Background(), clinicID, month)
		require.NoError(t, err)
		assert.True(t, dec("30").Equal(figures.ServiceTax), figures.ServiceTax.String())
	})

	t.Run("non simplified regime", func(t *testing.T) {
		db, svc := setup(t, apptax.DefaultServiceConfig())
		clinicID := addClinic(t, db, func(c *models.ClinicModel) { c.TaxRegime = "lucro_presumido" })
		addLedger(t, db, clinicID, 0, ledger.CategoryRevenueService, "1000")

		figures, err := svc.Compute(context.Background(), clinicID, month)
		require.NoError(t, err)
		assert.Nil(t, figures.BracketIndex)
		assert.True(t, figures.SimplifiedTax.IsZero())
		assert.True(t, dec("50").Equal(figures.ServiceTax))
	})

	t.Run("withholding always required", func(t *testing.T) {
		db, svc := setup(t, apptax.DefaultServiceConfig())
		clinicID := addClinic(t, db, func(c *models.ClinicModel) { c.WithholdingAlwaysRequired = true })
		dbtest.Insert(t, db, &models.VetPaymentModel{
			BaseModel: dbtest.Base(), ClinicID: clinicID, PaidOn: month.AddDate(0, 0, 2),
			ProviderName: "Dra. Lia", Amount: dec("200"),
		})

		figures, err := svc.Compute(context.Background(), clinicID, month)
		require.NoError(t, err)
		assert.True(t, dec("3").Equal(figures.Withholding), figures.Withholding.String())
	})
}

func TestCompute_FatorRPolicy(t *testing.T) {
	cfg := apptax.DefaultServiceConfig()
	cfg.Policy = tax.NewFatorRPolicy(tax.DefaultFatorRThreshold)

	db, svc := setup(t, cfg)
	lowPayroll := addClinic(t, db, nil)
	highPayroll := addClinic(t, db, nil)
	for _, id := range []uuid.UUID{lowPayroll, highPayroll} {
		addLedger(t, db, id, 0, ledger.CategoryRevenueService, "10000")
	}
	addLedger(t, db, lowPayroll, 0, ledger.CategoryPayrollLike, "-1000")
	addLedger(t, db, highPayroll, 0, ledger.CategoryPayrollLike, "-3000")

	low, err := svc.Compute(context.Background(), lowPayroll, month)
	require.NoError(t, err)
	assert.Equal(t, "annex_v", low.BracketTable)
	assert.True(t, dec("0.1").Equal(low.FatorR))
	assert.True(t, dec("1550").Equal(low.SimplifiedTax), low.SimplifiedTax.String())

	high, err := svc.Compute(context.Background(), highPayroll, month)
	require.NoError(t, err)
	assert.Equal(t, "annex_iii", high.BracketTable)
	assert.True(t, dec("0.3").Equal(high.FatorR))
	assert.True(t, dec("600").Equal(high.SimplifiedTax), high.SimplifiedTax.String())
}

func TestCompute_UnknownClinic(t *testing.T) {
	_, svc := setup(t, apptax.DefaultServiceConfig())
	_, err := svc.Compute(context.Background(), uuid.New(), month)
	assert.ErrorIs(t, err, ledger.ErrUnknownClinic)
}
