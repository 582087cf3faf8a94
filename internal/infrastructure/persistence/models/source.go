package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceCatalogModel is a catalog service offered by a clinic.
type ServiceCatalogModel struct {
	BaseModel
	ClinicID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ServiceCatalogModel) TableName() string {
	return "services"
}

// BudgetModel is a quote/invoice grouping service items, settled by a payment.
type BudgetModel struct {
	BaseModel
	ClinicID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status   string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PaidAt   *time.Time
}

// TableName returns the table name for GORM
func (BudgetModel) TableName() string {
	return "budgets"
}

// ServiceItemModel is one billed service line.
type ServiceItemModel struct {
	BaseModel
	ClinicID    uuid.UUID       `gorm:"type:uuid;not null;index:ix_service_items_clinic_date,priority:1"`
	ServiceID   *uuid.UUID      `gorm:"type:uuid"`
	BudgetID    *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PerformedAt time.Time       `gorm:"not null;index:ix_service_items_clinic_date,priority:2"`
}

// TableName returns the table name for GORM
func (ServiceItemModel) TableName() string {
	return "service_items"
}

// ProductModel is a catalog product.
type ProductModel struct {
	BaseModel
	ClinicID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// OrderModel is a cart order.
type OrderModel struct {
	BaseModel
	ClinicID uuid.UUID `gorm:"type:uuid;not null;index:ix_orders_clinic_date,priority:1"`
	Status   string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PlacedAt time.Time `gorm:"not null;index:ix_orders_clinic_date,priority:2"`
	PaidAt   *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one order line; UnitPrice is the price frozen at checkout.
type OrderItemModel struct {
	BaseModel
	OrderID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity  int              `gorm:"not null"`
	UnitPrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ManualEntryModel is an operator-entered revenue adjustment.
type ManualEntryModel struct {
	BaseModel
	ClinicID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryDate   time.Time       `gorm:"not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ManualEntryModel) TableName() string {
	return "manual_entries"
}

// VetPaymentModel is a payment to a contractor veterinarian.
type VetPaymentModel struct {
	BaseModel
	ClinicID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaidOn              time.Time       `gorm:"not null;index"`
	ProviderName        string          `gorm:"type:varchar(200);not null"`
	Description         string          `gorm:"type:varchar(500)"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InvoiceNumber       string          `gorm:"type:varchar(60)"`
	WithholdingRequired bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VetPaymentModel) TableName() string {
	return "vet_payments"
}

// ExpenseModel is an operating expense.
type ExpenseModel struct {
	BaseModel
	ClinicID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	IncurredOn  time.Time       `gorm:"not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Kind        string          `gorm:"type:varchar(60)"`
	IsInventory bool            `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}
