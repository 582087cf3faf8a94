package persistence

import (
	"context"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	"github.com/clinicfin/backend/internal/domain/clinic"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SourceFactory binds the registered source adapters to a connection or transaction
type SourceFactory interface {
	Adapters(db *gorm.DB) ledger.AdapterSet
	ContractorPayments(db *gorm.DB) tax.ContractorPaymentSource
}

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db      *gorm.DB
	sources SourceFactory
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, sources SourceFactory) *GormTransactionScope {
	return &GormTransactionScope{db: db, sources: sources}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, sources: s.sources})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx      *gorm.DB
	sources SourceFactory
}

func (r *gormTransactionalRepositories) Clinics() clinic.Repository {
	return NewGormClinicRepository(r.tx)
}

func (r *gormTransactionalRepositories) Ledger() ledger.TransactionRepository {
	return NewGormClassifiedTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Snapshots() ledger.SnapshotRepository {
	return NewGormMonthlySnapshotRepository(r.tx)
}

func (r *gormTransactionalRepositories) TaxFigures() tax.FiguresRepository {
	return NewGormTaxFiguresRepository(r.tx)
}

// Sources returns the adapters registered at startup, reading through the transaction
func (r *gormTransactionalRepositories) Sources() ledger.AdapterSet {
	if r.sources == nil {
		return ledger.NewAdapterSet()
	}
	return r.sources.Adapters(r.tx)
}

func (r *gormTransactionalRepositories) ContractorPayments() tax.ContractorPaymentSource {
	if r.sources == nil {
		return noContractorPayments{}
	}
	return r.sources.ContractorPayments(r.tx)
}

func (r *gormTransactionalRepositories) Payments() payment.Repository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Deliveries() payment.DeliveryRepository {
	return NewGormWebhookDeliveryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Fulfillments() payment.FulfillmentRepository {
	return NewGormFulfillmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) BillingTargets() payment.TargetRepository {
	return NewGormBillingTargetRepository(r.tx)
}

type noContractorPayments struct{}

func (noContractorPayments) ContractorPayments(context.Context, uuid.UUID, ledger.Window) ([]tax.ContractorPayment, error) {
	return nil, nil
}

// Ensure GormTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
