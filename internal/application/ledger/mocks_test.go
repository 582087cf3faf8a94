package ledger

import (
	"context"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByRawID(ctx context.Context, clinicID uuid.UUID, rawID string) (*ledger.ClassifiedTransaction, error) {
	args := m.Called(ctx, clinicID, rawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ClassifiedTransaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *ledger.ClassifiedTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *ledger.ClassifiedTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) SumValues(ctx context.Context, clinicID uuid.UUID, window ledger.Window, categories ...ledger.Category) (decimal.Decimal, error) {
	args := m.Called(ctx, clinicID, window, categories)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) FindByMonth(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error) {
	args := m.Called(ctx, clinicID, month)
	return args.Get(0).([]ledger.ClassifiedTransaction), args.Error(1)
}

// MockBuilder is a mock implementation of Builder
type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) Build(ctx context.Context, clinicID uuid.UUID, month time.Time) (*BuildResult, error) {
	args := m.Called(ctx, clinicID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BuildResult), args.Error(1)
}

// staticAdapter returns fixed records for one origin
type staticAdapter struct {
	origin  ledger.Origin
	records []ledger.NormalizedRecord
}

func (a staticAdapter) Origin() ledger.Origin { return a.origin }

func (a staticAdapter) Enumerate(context.Context, uuid.UUID, ledger.Window) ([]ledger.NormalizedRecord, error) {
	return a.records, nil
}

// fakeRepos exposes a ledger repository and adapters; other accessors are unused here
type fakeRepos struct {
	TransactionalRepositories
	ledger  ledger.TransactionRepository
	sources ledger.AdapterSet
}

func (r fakeRepos) Ledger() ledger.TransactionRepository { return r.ledger }
func (r fakeRepos) Sources() ledger.AdapterSet           { return r.sources }

// fakeScope runs fn with fixed repositories
type fakeScope struct {
	repos TransactionalRepositories
}

func (s fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}
