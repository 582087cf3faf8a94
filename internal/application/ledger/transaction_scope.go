package ledger

import (
	"context"

	"github.com/clinicfin/backend/internal/domain/clinic"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/tax"
)

// TransactionScope runs a unit of work in one database transaction.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories and source adapters bound to one transaction
type TransactionalRepositories interface {
	Clinics() clinic.Repository
	Ledger() ledger.TransactionRepository
	Snapshots() ledger.SnapshotRepository
	TaxFigures() tax.FiguresRepository
	Sources() ledger.AdapterSet
	ContractorPayments() tax.ContractorPaymentSource
	Payments() payment.Repository
	Deliveries() payment.DeliveryRepository
	Fulfillments() payment.FulfillmentRepository
	BillingTargets() payment.TargetRepository
}
