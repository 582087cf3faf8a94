package payment_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	apppayment "github.com/clinicfin/backend/internal/application/payment"
	apptax "github.com/clinicfin/backend/internal/application/tax"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/persistence"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/dbtest"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "test-webhook-secret-0123456789"

// MockProviderClient is a mock implementation of payment.ProviderClient
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) FetchPayment(ctx context.Context, id string) (*payment.ProviderPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProviderPayment), args.Error(1)
}

type harness struct {
	db       *gorm.DB
	provider *MockProviderClient
	verifier *payment.SignatureVerifier
	svc      *apppayment.ReconciliationService
	clinicID uuid.UUID
	month    time.Time
}

func newHarness(t *testing.T) *harness {
	db := dbtest.Open(t)
	scope := persistence.NewGormTransactionScope(db, source.NewRegistry(source.AllCapabilities(), nil))
	classifier := appledger.NewClassificationService(scope, nil)
	snapshots := appledger.NewSnapshotService(scope, classifier, apptax.NewTaxService(scope, apptax.DefaultServiceConfig(), nil), nil)
	verifier, err := payment.NewSignatureVerifier(secret)
	require.NoError(t, err)
	provider := new(MockProviderClient)

	clinic := models.ClinicModel{BaseModel: dbtest.Base(), Name: "Clinica Centro", TaxRegime: "simples", Active: true}
	dbtest.Insert(t, db, &clinic)

	return &harness{
		db:       db,
		provider: provider,
		verifier: verifier,
		svc: apppayment.NewReconciliationService(scope, verifier, provider, classifier, snapshots, nil, nil,
			apppayment.DefaultReconciliationConfig()),
		clinicID: clinic.ID,
		month:    ledger.MonthOf(time.Now()).AddDate(0, -1, 0),
	}
}

func (h *harness) day(n int) time.Time {
	return h.month.AddDate(0, 0, n-1).Add(14 * time.Hour)
}

// order seeds a pending order of one 40.00 line and the payment opened at checkout
func (h *harness) order(t *testing.T) (models.OrderModel, *payment.Payment) {
	product := models.ProductModel{BaseModel: dbtest.Base(), ClinicID: h.clinicID, Name: "Vermifugo", Price: decimal.NewFromInt(40)}
	order := models.OrderModel{BaseModel: dbtest.Base(), ClinicID: h.clinicID, Status: "pending", PlacedAt: h.day(8)}
	dbtest.Insert(t, h.db, &product, &order,
		&models.OrderItemModel{BaseModel: dbtest.Base(), OrderID: order.ID, ProductID: product.ID, Quantity: 1})

	p := payment.NewPayment(h.clinicID, payment.OrderReference(order.ID), decimal.NewFromInt(40), order.PlacedAt)
	require.NoError(t, persistence.NewGormPaymentRepository(h.db).Create(context.Background(), p))
	return order, p
}

// budget seeds a pending budget with one 300.00 service line and the payment opened for it
func (h *harness) budget(t *testing.T) (models.BudgetModel, *payment.Payment) {
	budget := models.BudgetModel{BaseModel: dbtest.Base(), ClinicID: h.clinicID, Status: "pending"}
	dbtest.Insert(t, h.db, &budget,
		&models.ServiceItemModel{BaseModel: dbtest.Base(), ClinicID: h.clinicID, BudgetID: &budget.ID, Description: "Cirurgia", Amount: decimal.NewFromInt(300), PerformedAt: h.day(9)})

	p := payment.NewPayment(h.clinicID, payment.BudgetReference(budget.ID), decimal.NewFromInt(300), h.day(9))
	require.NoError(t, persistence.NewGormPaymentRepository(h.db).Create(context.Background(), p))
	return budget, p
}

func (h *harness) providerDoc(id, status string, p *payment.Payment) *payment.ProviderPayment {
	approved := h.day(10)
	return &payment.ProviderPayment{ID: id, Status: status, ExternalReference: p.Reference.String(), Amount: p.Amount, ApprovedAt: &approved}
}

func (h *harness) deliver(eventID, resourceID string) (*apppayment.WebhookResult, error) {
	body := []byte(fmt.Sprintf(`{"id":%q,"type":"payment","action":"payment.updated","data":{"id":%q}}`, eventID, resourceID))
	return h.svc.HandleWebhook(context.Background(), body, "sha256="+h.verifier.Sign(body))
}

func (h *harness) count(t *testing.T, model interface{}) int64 {
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func (h *harness) storedStatus(t *testing.T, id uuid.UUID) payment.Status {
	p, err := persistence.NewGormPaymentRepository(h.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func TestHandleWebhook_OrderApproved(t *testing.T) {
	h := newHarness(t)
	order, p := h.order(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-100").Return(h.providerDoc("mp-100", "approved", p), nil).Once()

	result, err := h.deliver("evt-1", "mp-100")
	require.NoError(t, err)

	assert.Equal(t, apppayment.OutcomeOK, result.Outcome)
	assert.True(t, result.Transitioned)
	assert.True(t, result.FulfillmentCreated)
	assert.Equal(t, payment.StatusCompleted, result.Status)
	assert.Equal(t, payment.StatusCompleted, h.storedStatus(t, p.ID))

	var stored models.OrderModel
	require.NoError(t, h.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "paid", stored.Status)
	assert.NotNil(t, stored.PaidAt)

	var rows []models.ClassifiedTransactionModel
	require.NoError(t, h.db.Where("clinic_id = ? AND origin = ?", h.clinicID, "product_sale").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, string(ledger.CategoryRevenueProduct), rows[0].Category)
	h.provider.AssertExpectations(t)
}

func TestHandleWebhook_ReplaySafety(t *testing.T) {
	h := newHarness(t)
	order, p := h.order(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-200").Return(h.providerDoc("mp-200", "approved", p), nil)

	first, err := h.deliver("evt-a", "mp-200")
	require.NoError(t, err)
	assert.Equal(t, apppayment.OutcomeOK, first.Outcome)

	for i := 0; i < 3; i++ {
		again, err := h.deliver("evt-a", "mp-200")
		require.NoError(t, err)
		assert.Equal(t, apppayment.OutcomeAlreadyProcessed, again.Outcome)
	}
	// only the first delivery of evt-a reached the provider
	h.provider.AssertNumberOfCalls(t, "FetchPayment", 1)

	other, err := h.deliver("evt-b", "mp-200")
	require.NoError(t, err)
	assert.Equal(t, apppayment.OutcomeAlreadyProcessed, other.Outcome)

	var count int64
	require.NoError(t, h.db.Model(&models.FulfillmentRequestModel{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	delivery, err := persistence.NewGormWebhookDeliveryRepository(h.db).FindByEventID(context.Background(), "evt-a")
	require.NoError(t, err)
	assert.Equal(t, 4, delivery.Attempts)
}

func TestHandleWebhook_ConcurrentDeliveries(t *testing.T) {
	h := newHarness(t)
	order, p := h.order(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-300").Return(h.providerDoc("mp-300", "approved", p), nil)

	var wg sync.WaitGroup
	outcomes := make([]apppayment.Outcome, 5)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := h.deliver(fmt.Sprintf("evt-%d", i), "mp-300")
			if assert.NoError(t, err) {
				outcomes[i] = result.Outcome
			}
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, o := range outcomes {
		if o == apppayment.OutcomeOK {
			ok++
		}
	}
	assert.Equal(t, 1, ok)

	var count int64
	require.NoError(t, h.db.Model(&models.FulfillmentRequestModel{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleWebhook_BadSignatureWritesNothing(t *testing.T) {
	h := newHarness(t)
	_, p := h.order(t)
	body := []byte(`{"id":"evt-x","type":"payment","data":{"id":"mp-1"}}`)
	signature := h.verifier.Sign(body)
	tampered := []byte(`{"id":"evt-x","type":"payment","data":{"id":"mp-2"}}`)

	_, err := h.svc.HandleWebhook(context.Background(), tampered, signature)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.Equal(t, "BAD_SIGNATURE", shared.CodeOf(err))

	_, err = h.svc.HandleWebhook(context.Background(), body, "")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	assert.Zero(t, h.count(t, &models.WebhookDeliveryModel{}))
	assert.Zero(t, h.count(t, &models.ClassifiedTransactionModel{}))
	assert.Zero(t, h.count(t, &models.FulfillmentRequestModel{}))
	assert.Equal(t, payment.StatusPending, h.storedStatus(t, p.ID))
	h.provider.AssertNotCalled(t, "FetchPayment", mock.Anything, mock.Anything)
}

func TestHandleWebhook_MalformedPayload(t *testing.T) {
	h := newHarness(t)
	body := []byte(`{"type":"payment","data":{}}`)

	_, err := h.svc.HandleWebhook(context.Background(), body, h.verifier.Sign(body))
	assert.ErrorIs(t, err, payment.ErrInvalidPayload)
}

func TestHandleWebhook_ProviderFailureIsRetryable(t *testing.T) {
	h := newHarness(t)
	_, p := h.order(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-400").Return(nil, errors.New("dial tcp: i/o timeout")).Once()

	_, err := h.deliver("evt-400", "mp-400")
	assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
	assert.Equal(t, "INTERNAL_RETRYABLE", shared.CodeOf(err))
	assert.Zero(t, h.count(t, &models.WebhookDeliveryModel{}))
	assert.Equal(t, payment.StatusPending, h.storedStatus(t, p.ID))

	// the provider's redelivery then succeeds
	h.provider.On("FetchPayment", mock.Anything, "mp-400").Return(h.providerDoc("mp-400", "approved", p), nil).Once()
	result, err := h.deliver("evt-400", "mp-400")
	require.NoError(t, err)
	assert.Equal(t, apppayment.OutcomeOK, result.Outcome)
}

func TestHandleWebhook_UnknownReference(t *testing.T) {
	h := newHarness(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-500").Return(&payment.ProviderPayment{
		ID: "mp-500", Status: "approved", ExternalReference: "order-" + uuid.NewString(),
	}, nil).Once()

	result, err := h.deliver("evt-500", "mp-500")
	require.NoError(t, err)
	assert.Equal(t, apppayment.OutcomeIgnored, result.Outcome)
	assert.Zero(t, h.count(t, &models.FulfillmentRequestModel{}))
}

func TestHandleWebhook_NonPaymentNotification(t *testing.T) {
	h := newHarness(t)
	body := []byte(`{"id":"evt-600","type":"plan","data":{"id":"plan-1"}}`)

	result, err := h.svc.HandleWebhook(context.Background(), body, h.verifier.Sign(body))
	require.NoError(t, err)
	assert.Equal(t, apppayment.OutcomeIgnored, result.Outcome)
	h.provider.AssertNotCalled(t, "FetchPayment", mock.Anything, mock.Anything)
}

func TestHandleWebhook_RejectedOrder(t *testing.T) {
	h := newHarness(t)
	order, p := h.order(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-700").Return(h.providerDoc("mp-700", "rejected", p), nil).Once()

	result, err := h.deliver("evt-700", "mp-700")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, result.Status)
	assert.False(t, result.FulfillmentCreated)

	var stored models.OrderModel
	require.NoError(t, h.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "failed", stored.Status)
	assert.Zero(t, h.count(t, &models.FulfillmentRequestModel{}))
}

func TestHandleWebhook_StillPending(t *testing.T) {
	h := newHarness(t)
	_, p := h.order(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-800").Return(h.providerDoc("mp-800", "in_process", p), nil).Once()

	result, err := h.deliver("evt-800", "mp-800")
	require.NoError(t, err)
	assert.Equal(t, apppayment.OutcomeOK, result.Outcome)
	assert.False(t, result.Transitioned)
	assert.Equal(t, payment.StatusPending, h.storedStatus(t, p.ID))

	// the pending order line is still classified as a receivable
	var rows []models.ClassifiedTransactionModel
	require.NoError(t, h.db.Where("origin = ?", "product_sale").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, string(ledger.CategoryReceivablePending), rows[0].Category)
}

func TestHandleWebhook_BudgetApprovedRebuildsMonth(t *testing.T) {
	h := newHarness(t)
	budget, p := h.budget(t)
	h.provider.On("FetchPayment", mock.Anything, "mp-900").Return(h.providerDoc("mp-900", "approved", p), nil).Once()

	result, err := h.deliver("evt-900", "mp-900")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, result.Status)

	var stored models.BudgetModel
	require.NoError(t, h.db.First(&stored, "id = ?", budget.ID).Error)
	assert.Equal(t, "paid", stored.Status)

	snapshot, err := persistence.NewGormMonthlySnapshotRepository(h.db).FindByMonth(context.Background(), h.clinicID, h.month)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(snapshot.ServiceRevenue), snapshot.ServiceRevenue.String())

	figures, err := persistence.NewGormTaxFiguresRepository(h.db).FindByMonth(context.Background(), h.clinicID, h.month)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(figures.ServiceTax), figures.ServiceTax.String())
}

func TestHandleWebhook_ApprovedInLaterMonth(t *testing.T) {
	h := newHarness(t)
	order, p := h.order(t)
	approved := h.month.AddDate(0, 1, 2).Add(10 * time.Hour)
	h.provider.On("FetchPayment", mock.Anything, "mp-1000").Return(&payment.ProviderPayment{
		ID: "mp-1000", Status: "approved", ExternalReference: p.Reference.String(), Amount: p.Amount, ApprovedAt: &approved,
	}, nil).Once()

	result, err := h.deliver("evt-1000", "mp-1000")
	require.NoError(t, err)
	assert.True(t, result.Transitioned)

	// the order's own month is refreshed even though approval landed a month later
	var rows []models.ClassifiedTransactionModel
	require.NoError(t, h.db.Where("clinic_id = ? AND origin = ?", h.clinicID, "product_sale").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, string(ledger.CategoryRevenueProduct), rows[0].Category)
	assert.True(t, h.month.Equal(rows[0].Month.UTC()), rows[0].Month.String())

	var stored models.OrderModel
	require.NoError(t, h.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "paid", stored.Status)
}
