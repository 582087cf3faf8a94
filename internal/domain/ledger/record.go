package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// NormalizedRecord is one source record mapped to ledger shape by its adapter
type NormalizedRecord struct {
	SourceKey   string
	OccurredAt  time.Time
	Description string
	Value       decimal.Decimal
	Category    Category
	Subcategory string
}

// RawID builds the origin-namespaced idempotency key of a source record
func RawID(origin Origin, sourceKey string) string {
	return string(origin) + ":" + sourceKey
}
