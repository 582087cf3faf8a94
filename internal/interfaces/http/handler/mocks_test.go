package handler

import (
	"context"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	apppayment "github.com/clinicfin/backend/internal/application/payment"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockClassifier struct{ mock.Mock }

func (m *MockClassifier) Classify(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error) {
	args := m.Called(ctx, clinicID, month)
	rows, _ := args.Get(0).([]ledger.ClassifiedTransaction)
	return rows, args.Error(1)
}

func (m *MockClassifier) Transactions(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error) {
	args := m.Called(ctx, clinicID, month)
	rows, _ := args.Get(0).([]ledger.ClassifiedTransaction)
	return rows, args.Error(1)
}

type MockSnapshotBuilder struct{ mock.Mock }

func (m *MockSnapshotBuilder) Build(ctx context.Context, clinicID uuid.UUID, month time.Time) (*appledger.BuildResult, error) {
	args := m.Called(ctx, clinicID, month)
	r, _ := args.Get(0).(*appledger.BuildResult)
	return r, args.Error(1)
}

func (m *MockSnapshotBuilder) Find(ctx context.Context, clinicID uuid.UUID, month time.Time) (*ledger.MonthlySnapshot, error) {
	args := m.Called(ctx, clinicID, month)
	s, _ := args.Get(0).(*ledger.MonthlySnapshot)
	return s, args.Error(1)
}

type MockTaxCalculator struct{ mock.Mock }

func (m *MockTaxCalculator) Compute(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error) {
	args := m.Called(ctx, clinicID, month)
	f, _ := args.Get(0).(*tax.Figures)
	return f, args.Error(1)
}

func (m *MockTaxCalculator) Find(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error) {
	args := m.Called(ctx, clinicID, month)
	f, _ := args.Get(0).(*tax.Figures)
	return f, args.Error(1)
}

type MockBackfillTrigger struct{ mock.Mock }

func (m *MockBackfillTrigger) TriggerNow(months int, clinicIDs []uuid.UUID) error {
	return m.Called(months, clinicIDs).Error(0)
}

func (m *MockBackfillTrigger) LastResult() *appledger.BackfillResult {
	r, _ := m.Called().Get(0).(*appledger.BackfillResult)
	return r
}

func (m *MockBackfillTrigger) Busy() bool {
	return m.Called().Bool(0)
}

func (m *MockBackfillTrigger) IsRunning() bool {
	return m.Called().Bool(0)
}

func (m *MockBackfillTrigger) NextRun(now time.Time) time.Time {
	return m.Called(now).Get(0).(time.Time)
}

type MockWebhookReconciler struct{ mock.Mock }

func (m *MockWebhookReconciler) HandleWebhook(ctx context.Context, body []byte, signature string) (*apppayment.WebhookResult, error) {
	args := m.Called(ctx, body, signature)
	r, _ := args.Get(0).(*apppayment.WebhookResult)
	return r, args.Error(1)
}
