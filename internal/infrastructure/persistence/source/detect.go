package source

import (
	"context"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Capabilities records which source tables and optional columns exist.
// It is computed once per process and never mutated.
type Capabilities struct {
	ServiceItems          bool
	ServiceCatalog        bool
	Budgets               bool
	Orders                bool
	OrderItemUnitPrice    bool
	ManualEntries         bool
	VetPayments           bool
	VetPaymentInvoice     bool
	VetPaymentWithholding bool
	Expenses              bool
	ExpenseKind           bool
	ExpenseInventoryFlag  bool
}

// AllCapabilities describes a fully provisioned schema
func AllCapabilities() Capabilities {
	return Capabilities{
		ServiceItems: true, ServiceCatalog: true, Budgets: true,
		Orders: true, OrderItemUnitPrice: true,
		ManualEntries: true,
		VetPayments:   true, VetPaymentInvoice: true, VetPaymentWithholding: true,
		Expenses: true, ExpenseKind: true, ExpenseInventoryFlag: true,
	}
}

// Origins lists the origins whose adapters are registered
func (c Capabilities) Origins() []ledger.Origin {
	var out []ledger.Origin
	if c.ServiceItems {
		out = append(out, ledger.OriginService)
	}
	if c.Orders {
		out = append(out, ledger.OriginProductSale)
	}
	if c.ManualEntries {
		out = append(out, ledger.OriginManual)
	}
	if c.VetPayments {
		out = append(out, ledger.OriginVetPayment)
	}
	if c.Expenses {
		out = append(out, ledger.OriginExpense)
	}
	return out
}

type schemaInspector struct {
	m gorm.Migrator
}

func (s schemaInspector) table(name string, columns ...string) bool {
	if !s.m.HasTable(name) {
		return false
	}
	for _, col := range columns {
		if !s.m.HasColumn(name, col) {
			return false
		}
	}
	return true
}

func (s schemaInspector) column(table, column string) bool {
	return s.m.HasColumn(table, column)
}

// Detect inspects the database schema and reports which sources can be read
func Detect(ctx context.Context, db *gorm.DB, logger *zap.Logger) Capabilities {
	s := schemaInspector{m: db.WithContext(ctx).Migrator()}

	var c Capabilities
	c.ServiceItems = s.table("service_items", "id", "clinic_id", "description", "amount", "performed_at")
	if c.ServiceItems {
		c.ServiceCatalog = s.column("service_items", "service_id") && s.table("services", "id", "name")
		c.Budgets = s.column("service_items", "budget_id") && s.table("budgets", "id", "status")
	}

	c.Orders = s.table("orders", "id", "clinic_id", "status", "placed_at") &&
		s.table("order_items", "id", "order_id", "product_id", "quantity") &&
		s.table("products", "id", "name", "price")
	if c.Orders {
		c.OrderItemUnitPrice = s.column("order_items", "unit_price")
	}

	c.ManualEntries = s.table("manual_entries", "id", "clinic_id", "entry_date", "description", "amount")

	c.VetPayments = s.table("vet_payments", "id", "clinic_id", "paid_on", "provider_name", "description", "amount")
	if c.VetPayments {
		c.VetPaymentInvoice = s.column("vet_payments", "invoice_number")
		c.VetPaymentWithholding = s.column("vet_payments", "withholding_required")
	}

	c.Expenses = s.table("expenses", "id", "clinic_id", "incurred_on", "description", "amount")
	if c.Expenses {
		c.ExpenseKind = s.column("expenses", "kind")
		c.ExpenseInventoryFlag = s.column("expenses", "is_inventory")
	}

	origins := make([]string, 0, 5)
	for _, o := range c.Origins() {
		origins = append(origins, string(o))
	}
	logger.Info("Source capability detection finished",
		zap.Strings("origins", origins),
		zap.Bool("service_catalog", c.ServiceCatalog),
		zap.Bool("budgets", c.Budgets),
		zap.Bool("order_item_unit_price", c.OrderItemUnitPrice),
		zap.Bool("vet_payment_invoice", c.VetPaymentInvoice),
		zap.Bool("expense_kind", c.ExpenseKind),
		zap.Bool("expense_inventory_flag", c.ExpenseInventoryFlag),
	)
	return c
}
