package source

import (
	"context"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VetPaymentAdapter reads payments to contracted veterinarians.
// It feeds the ledger as payroll-like outflows and the tax service as contractor payments.
type VetPaymentAdapter struct {
	r    reader
	caps Capabilities
}

// NewVetPaymentAdapter creates a contractor payment adapter
func NewVetPaymentAdapter(db *gorm.DB, caps Capabilities, logger *zap.Logger) *VetPaymentAdapter {
	return &VetPaymentAdapter{r: reader{db: db, origin: ledger.OriginVetPayment, logger: logger}, caps: caps}
}

// Origin implements ledger.SourceAdapter
func (a *VetPaymentAdapter) Origin() ledger.Origin { return ledger.OriginVetPayment }

type vetPaymentRow struct {
	ID                  uuid.UUID
	PaidOn              time.Time
	ProviderName        string
	Description         string
	Amount              decimal.Decimal
	InvoiceNumber       *string
	WithholdingRequired *bool
}

func (a *VetPaymentAdapter) load(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]vetPaymentRow, error) {
	var rows []vetPaymentRow
	err := a.r.scan(ctx, &rows, func(db *gorm.DB) *gorm.DB {
		cols := []string{"id", "paid_on", "provider_name", "description", "amount"}
		if a.caps.VetPaymentInvoice {
			cols = append(cols, "invoice_number")
		}
		if a.caps.VetPaymentWithholding {
			cols = append(cols, "withholding_required")
		}
		return db.Table("vet_payments").
			Select(cols).
			Where("clinic_id = ? AND paid_on >= ? AND paid_on < ?", clinicID, window.Start, window.End).
			Order("paid_on, id")
	})
	return rows, err
}

// Enumerate implements ledger.SourceAdapter
func (a *VetPaymentAdapter) Enumerate(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]ledger.NormalizedRecord, error) {
	rows, err := a.load(ctx, clinicID, window)
	if err != nil {
		return tolerate(nil, err)
	}

	records := make([]ledger.NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		description := row.Description
		if description == "" {
			description = row.ProviderName
		}
		if row.InvoiceNumber != nil && *row.InvoiceNumber != "" {
			description += " - NF " + *row.InvoiceNumber
		}
		records = append(records, ledger.NormalizedRecord{
			SourceKey:   row.ID.String(),
			OccurredAt:  row.PaidOn,
			Description: description,
			Value:       row.Amount.Abs().Neg(),
			Category:    ledger.CategoryPayrollLike,
			Subcategory: row.ProviderName,
		})
	}
	return records, nil
}

// ContractorPayments implements tax.ContractorPaymentSource
func (a *VetPaymentAdapter) ContractorPayments(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]tax.ContractorPayment, error) {
	rows, err := a.load(ctx, clinicID, window)
	if err != nil {
		if _, terr := tolerate(nil, err); terr == nil {
			return nil, nil
		}
		return nil, err
	}
	payments := make([]tax.ContractorPayment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, tax.ContractorPayment{
			Amount:              row.Amount.Abs(),
			WithholdingRequired: row.WithholdingRequired != nil && *row.WithholdingRequired,
		})
	}
	return payments, nil
}
