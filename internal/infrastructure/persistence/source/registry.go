package source

import (
	"context"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry builds adapters for the detected capabilities
type Registry struct {
	caps   Capabilities
	logger *zap.Logger
}

// NewRegistry creates a registry; a nil logger is replaced by a no-op logger
func NewRegistry(caps Capabilities, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{caps: caps, logger: logger}
}

// Capabilities returns the detected capabilities
func (r *Registry) Capabilities() Capabilities {
	return r.caps
}

// Adapters returns the registered adapters reading through db
func (r *Registry) Adapters(db *gorm.DB) ledger.AdapterSet {
	var adapters []ledger.SourceAdapter
	if r.caps.ServiceItems {
		adapters = append(adapters, NewServiceAdapter(db, r.caps, r.logger))
	}
	if r.caps.Orders {
		adapters = append(adapters, NewProductSaleAdapter(db, r.caps, r.logger))
	}
	if r.caps.ManualEntries {
		adapters = append(adapters, NewManualEntryAdapter(db, r.logger))
	}
	if r.caps.VetPayments {
		adapters = append(adapters, NewVetPaymentAdapter(db, r.caps, r.logger))
	}
	if r.caps.Expenses {
		adapters = append(adapters, NewExpenseAdapter(db, r.caps, r.logger))
	}
	return ledger.NewAdapterSet(adapters...)
}

// ContractorPayments returns the contractor payment source reading through db
func (r *Registry) ContractorPayments(db *gorm.DB) tax.ContractorPaymentSource {
	if !r.caps.VetPayments {
		return noContractorPayments{}
	}
	return NewVetPaymentAdapter(db, r.caps, r.logger)
}

type noContractorPayments struct{}

func (noContractorPayments) ContractorPayments(context.Context, uuid.UUID, ledger.Window) ([]tax.ContractorPayment, error) {
	return nil, nil
}
