package source

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// order statuses as stored by the storefront
const (
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
	OrderStatusFailed    = "failed"
)

// ProductSaleAdapter reads product order lines
type ProductSaleAdapter struct {
	r    reader
	caps Capabilities
}

// NewProductSaleAdapter creates an order line adapter
func NewProductSaleAdapter(db *gorm.DB, caps Capabilities, logger *zap.Logger) *ProductSaleAdapter {
	return &ProductSaleAdapter{r: reader{db: db, origin: ledger.OriginProductSale, logger: logger}, caps: caps}
}

// Origin implements ledger.SourceAdapter
func (a *ProductSaleAdapter) Origin() ledger.Origin { return ledger.OriginProductSale }

type orderLineRow struct {
	ID           uuid.UUID
	PlacedAt     time.Time
	OrderStatus  string
	ProductName  string
	Quantity     int
	UnitPrice    decimal.NullDecimal
	CatalogPrice decimal.NullDecimal
}

// Enumerate implements ledger.SourceAdapter.
// Cancelled and failed orders are skipped; pending orders are receivables.
func (a *ProductSaleAdapter) Enumerate(ctx context.Context, clinicID uuid.UUID, window ledger.Window) ([]ledger.NormalizedRecord, error) {
	var rows []orderLineRow
	err := a.r.scan(ctx, &rows, func(db *gorm.DB) *gorm.DB {
		cols := []string{
			"oi.id AS id", "o.placed_at AS placed_at", "o.status AS order_status",
			"p.name AS product_name", "oi.quantity AS quantity", "p.price AS catalog_price",
		}
		if a.caps.OrderItemUnitPrice {
			cols = append(cols, "oi.unit_price AS unit_price")
		}
		return db.Table("order_items AS oi").
			Joins("JOIN orders AS o ON o.id = oi.order_id").
			Joins("JOIN products AS p ON p.id = oi.product_id").
			Select(cols).
			Where("o.clinic_id = ? AND o.placed_at >= ? AND o.placed_at < ?", clinicID, window.Start, window.End).
			Where("o.status NOT IN ?", []string{OrderStatusCancelled, OrderStatusFailed}).
			Order("o.placed_at, oi.id")
	})
	if err != nil {
		return tolerate(nil, err)
	}

	records := make([]ledger.NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		price := row.CatalogPrice.Decimal
		if row.UnitPrice.Valid {
			price = row.UnitPrice.Decimal
		}
		category := ledger.CategoryRevenueProduct
		if row.OrderStatus == OrderStatusPending {
			category = ledger.CategoryReceivablePending
		}
		records = append(records, ledger.NormalizedRecord{
			SourceKey:   row.ID.String(),
			OccurredAt:  row.PlacedAt,
			Description: fmt.Sprintf("%s x%d", row.ProductName, row.Quantity),
			Value:       price.Mul(decimal.NewFromInt(int64(row.Quantity))),
			Category:    category,
			Subcategory: row.ProductName,
		})
	}
	return records, nil
}
