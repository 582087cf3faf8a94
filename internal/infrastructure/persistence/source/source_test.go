package source

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/dbtest"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	june   = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	window = ledger.MonthWindow(june)
)

func at(day int) time.Time {
	return june.AddDate(0, 0, day-1).Add(10 * time.Hour)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func byKey(records []ledger.NormalizedRecord) map[string]ledger.NormalizedRecord {
	out := make(map[string]ledger.NormalizedRecord, len(records))
	for _, r := range records {
		out[r.SourceKey] = r
	}
	return out
}

func TestDetect(t *testing.T) {
	t.Run("full schema", func(t *testing.T) {
		db := dbtest.Open(t)
		caps := Detect(context.Background(), db, zap.NewNop())
		assert.Equal(t, AllCapabilities(), caps)
		assert.Len(t, caps.Origins(), 5)
	})

	t.Run("optional tables missing", func(t *testing.T) {
		db := dbtest.OpenEmpty(t)
		require.NoError(t, db.AutoMigrate(&models.ServiceItemModel{}, &models.OrderModel{}, &models.OrderItemModel{}, &models.ProductModel{}))

		caps := Detect(context.Background(), db, zap.NewNop())
		assert.True(t, caps.ServiceItems)
		assert.False(t, caps.ServiceCatalog)
		assert.False(t, caps.Budgets)
		assert.True(t, caps.Orders)
		assert.True(t, caps.OrderItemUnitPrice)
		assert.False(t, caps.ManualEntries)
		assert.False(t, caps.VetPayments)
		assert.False(t, caps.Expenses)
		assert.Equal(t, []ledger.Origin{ledger.OriginService, ledger.OriginProductSale}, caps.Origins())

		set := NewRegistry(caps, nil).Adapters(db)
		assert.Equal(t, 2, set.Len())
		_, ok := set.Get(ledger.OriginExpense)
		assert.False(t, ok)
	})

	t.Run("empty database", func(t *testing.T) {
		caps := Detect(context.Background(), dbtest.OpenEmpty(t), zap.NewNop())
		assert.Empty(t, caps.Origins())
	})
}

func TestServiceAdapter_Enumerate(t *testing.T) {
	db := dbtest.Open(t)
	clinicID := uuid.New()

	svc := models.ServiceCatalogModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Name: "Consulta", Price: dec("150")}
	paid := models.BudgetModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Status: "paid"}
	open := models.BudgetModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Status: "pending"}
	dbtest.Insert(t, db, &svc, &paid, &open)

	walkIn := models.ServiceItemModel{BaseModel: dbtest.Base(), ClinicID: clinicID, ServiceID: &svc.ID, Amount: dec("150"), PerformedAt: at(3)}
	billed := models.ServiceItemModel{BaseModel: dbtest.Base(), ClinicID: clinicID, BudgetID: &paid.ID, Description: "Vacina V10", Amount: dec("90"), PerformedAt: at(5)}
	quoted := models.ServiceItemModel{BaseModel: dbtest.Base(), ClinicID: clinicID, BudgetID: &open.ID, Description: "Cirurgia", Amount: dec("800"), PerformedAt: at(7)}
	lastMonth := models.ServiceItemModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Description: "Banho", Amount: dec("40"), PerformedAt: june.Add(-time.Hour)}
	otherClinic := models.ServiceItemModel{BaseModel: dbtest.Base(), ClinicID: uuid.New(), Description: "Banho", Amount: dec("40"), PerformedAt: at(3)}
	dbtest.Insert(t, db, &walkIn, &billed, &quoted, &lastMonth, &otherClinic)

	adapter := NewServiceAdapter(db, AllCapabilities(), zap.NewNop())
	records, err := adapter.Enumerate(context.Background(), clinicID, window)
	require.NoError(t, err)
	require.Len(t, records, 3)

	got := byKey(records)
	assert.Equal(t, ledger.CategoryRevenueService, got[walkIn.ID.String()].Category)
	assert.Equal(t, "Consulta", got[walkIn.ID.String()].Description)
	assert.Equal(t, "Consulta", got[walkIn.ID.String()].Subcategory)
	assert.True(t, dec("150").Equal(got[walkIn.ID.String()].Value))

	assert.Equal(t, ledger.CategoryRevenueService, got[billed.ID.String()].Category)
	assert.Equal(t, ledger.CategoryReceivablePending, got[quoted.ID.String()].Category)
	assert.True(t, got[quoted.ID.String()].OccurredAt.Equal(at(7)))
}

func TestProductSaleAdapter_Enumerate(t *testing.T) {
	db := dbtest.Open(t)
	clinicID := uuid.New()

	racao := models.ProductModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Name: "Racao Premium", Price: dec("120")}
	coleira := models.ProductModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Name: "Coleira", Price: dec("35")}
	dbtest.Insert(t, db, &racao, &coleira)

	shipped := models.OrderModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Status: "shipped", PlacedAt: at(2)}
	waiting := models.OrderModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Status: "pending", PlacedAt: at(4)}
	cancelled := models.OrderModel{BaseModel: dbtest.Base(), ClinicID: clinicID, Status: "cancelled", PlacedAt: at(4)}
	dbtest.Insert(t, db, &shipped, &waiting, &cancelled)

	frozen := dec("100")
	frozenLine := models.OrderItemModel{BaseModel: dbtest.Base(), OrderID: shipped.ID, ProductID: racao.ID, Quantity: 2, UnitPrice: &frozen}
	catalogLine := models.OrderItemModel{BaseModel: dbtest.Base(), OrderID: shipped.ID, ProductID: coleira.ID, Quantity: 1}
	pendingLine := models.OrderItemModel{BaseModel: dbtest.Base(), OrderID: waiting.ID, ProductID: coleira.ID, Quantity: 3}
	cancelledLine := models.OrderItemModel{BaseModel: dbtest.Base(), OrderID: cancelled.ID, ProductID: coleira.ID, Quantity: 1}
	dbtest.Insert(t, db, &frozenLine, &catalogLine, &pendingLine, &cancelledLine)

	adapter := NewProductSaleAdapter(db, AllCapabilities(), zap.NewNop())
	records, err := adapter.Enumerate(context.Background(), clinicID, window)
	require.NoError(t, err)
	require.Len(t, records, 3)

	got := byKey(records)
	assert.True(t, dec("200").Equal(got[frozenLine.ID.String()].Value), "frozen unit price wins over catalog")
	assert.Equal(t, "Racao Premium x2", got[frozenLine.ID.String()].Description)
	assert.Equal(t, ledger.CategoryRevenueProduct, got[frozenLine.ID.String()].Category)

	assert.True(t, dec("35").Equal(got[catalogLine.ID.String()].Value), "catalog price fallback")

	assert.Equal(t, ledger.CategoryReceivablePending, got[pendingLine.ID.String()].Category)
	assert.True(t, dec("105").Equal(got[pendingLine.ID.String()].Value))

	_, found := got[cancelledLine.ID.String()]
	assert.False(t, found)
}

func TestManualEntryAdapter_Enumerate(t *testing.T) {
	db := dbtest.Open(t)
	clinicID := uuid.New()
	entry := models.ManualEntryModel{BaseModel: dbtest.Base(), ClinicID: clinicID, EntryDate: at(10), Description: "Ajuste caixa", Amount: dec("55.50")}
	dbtest.Insert(t, db, &entry)

	records, err := NewManualEntryAdapter(db, zap.NewNop()).Enumerate(context.Background(), clinicID, window)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ledger.CategoryRevenueService, records[0].Category)
	assert.Equal(t, ledger.SubcategoryManualAdjustment, records[0].Subcategory)
	assert.True(t, dec("55.5").Equal(records[0].Value))
}

func TestVetPaymentAdapter(t *testing.T) {
	db := dbtest.Open(t)
	clinicID := uuid.New()
	withInvoice := models.VetPaymentModel{BaseModel: dbtest.Base(), ClinicID: clinicID, PaidOn: at(15), ProviderName: "Dra. Ana", Description: "Plantao", Amount: dec("1200"), InvoiceNumber: "123", WithholdingRequired: true}
	bare := models.VetPaymentModel{BaseModel: dbtest.Base(), ClinicID: clinicID, PaidOn: at(20), ProviderName: "Dr. Joao", Amount: dec("-400")}
	dbtest.Insert(t, db, &withInvoice, &bare)

	adapter := NewVetPaymentAdapter(db, AllCapabilities(), zap.NewNop())

	t.Run("ledger records are negative payroll", func(t *testing.T) {
		records, err := adapter.Enumerate(context.Background(), clinicID, window)
		require.NoError(t, err)
		got := byKey(records)
		require.Len(t, got, 2)

		assert.Equal(t, "Plantao - NF 123", got[withInvoice.ID.String()].Description)
		assert.True(t, dec("-1200").Equal(got[withInvoice.ID.String()].Value))
		assert.Equal(t, ledger.CategoryPayrollLike, got[withInvoice.ID.String()].Category)
		assert.Equal(t, "Dra. Ana", got[withInvoice.ID.String()].Subcategory)

		assert.Equal(t, "Dr. Joao", got[bare.ID.String()].Description)
		assert.True(t, dec("-400").Equal(got[bare.ID.String()].Value))
	})

	t.Run("contractor payments are positive", func(t *testing.T) {
		payments, err := adapter.ContractorPayments(context.Background(), clinicID, window)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, dec("1200").Equal(payments[0].Amount))
		assert.True(t, payments[0].WithholdingRequired)
		assert.True(t, dec("400").Equal(payments[1].Amount))
		assert.False(t, payments[1].WithholdingRequired)
	})
}

func TestExpenseAdapter_Enumerate(t *testing.T) {
	db := dbtest.Open(t)
	clinicID := uuid.New()
	flagged := models.ExpenseModel{BaseModel: dbtest.Base(), ClinicID: clinicID, IncurredOn: at(1), Description: "Compra racao", IsInventory: true, Amount: dec("500")}
	byKind := models.ExpenseModel{BaseModel: dbtest.Base(), ClinicID: clinicID, IncurredOn: at(2), Description: "Fornecedor X", Kind: "Mercadória p/ Revenda", Amount: dec("300")}
	rent := models.ExpenseModel{BaseModel: dbtest.Base(), ClinicID: clinicID, IncurredOn: at(3), Description: "Aluguel", Kind: "Aluguel", Amount: dec("2000")}
	dbtest.Insert(t, db, &flagged, &byKind, &rent)

	records, err := NewExpenseAdapter(db, AllCapabilities(), zap.NewNop()).Enumerate(context.Background(), clinicID, window)
	require.NoError(t, err)
	got := byKey(records)
	require.Len(t, got, 3)

	assert.Equal(t, ledger.CategoryCostOfGoods, got[flagged.ID.String()].Category)
	assert.Equal(t, ledger.CategoryCostOfGoods, got[byKind.ID.String()].Category)
	assert.Equal(t, ledger.CategoryGenericExpense, got[rent.ID.String()].Category)
	assert.True(t, dec("-2000").Equal(got[rent.ID.String()].Value))
}

func TestAdapters_MissingRelationYieldsNothing(t *testing.T) {
	db := dbtest.OpenEmpty(t)
	require.NoError(t, db.AutoMigrate(&models.ClinicModel{}))
	ctx := context.Background()

	set := NewRegistry(AllCapabilities(), zap.NewNop()).Adapters(db)
	require.Equal(t, 5, set.Len())

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, a := range NewRegistry(AllCapabilities(), zap.NewNop()).Adapters(tx).All() {
			records, err := a.Enumerate(ctx, uuid.New(), window)
			require.NoError(t, err, a.Origin())
			assert.Empty(t, records)
		}
		// the transaction is still usable after the failed reads
		return tx.Create(&models.ClinicModel{BaseModel: dbtest.Base(), Name: "Vet Centro", Active: true}).Error
	})
	require.NoError(t, err)

	payments, err := NewVetPaymentAdapter(db, AllCapabilities(), zap.NewNop()).ContractorPayments(ctx, uuid.New(), window)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestIsMissingRelation(t *testing.T) {
	assert.True(t, IsMissingRelation(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, IsMissingRelation(fmt.Errorf("query: %w", &pgconn.PgError{Code: "42703"})))
	assert.False(t, IsMissingRelation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsMissingRelation(errors.New("no such table: expenses")))
	assert.False(t, IsMissingRelation(errors.New("connection refused")))
	assert.False(t, IsMissingRelation(nil))
}

func TestInventoryKind(t *testing.T) {
	cases := map[string]bool{
		"Estoque":               true,
		"MERCADORIA":            true,
		"revenda de acessórios": true,
		"Inventory":             true,
		"Estóque":               true,
		"aluguel":               false,
		"":                      false,
	}
	for kind, want := range cases {
		assert.Equal(t, want, isInventoryKind(kind), kind)
	}
}
