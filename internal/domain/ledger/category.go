package ledger

// Origin identifies the kind of source a ledger row was classified from
type Origin string

const (
	OriginService     Origin = "service"
	OriginProductSale Origin = "product_sale"
	OriginManual      Origin = "manual"
	OriginVetPayment  Origin = "vet_payment"
	OriginExpense     Origin = "expense"
)

// Origins lists every origin in enumeration order
func Origins() []Origin {
	return []Origin{OriginService, OriginProductSale, OriginManual, OriginVetPayment, OriginExpense}
}

// IsValid reports whether o is a known origin
func (o Origin) IsValid() bool {
	switch o {
	case OriginService, OriginProductSale, OriginManual, OriginVetPayment, OriginExpense:
		return true
	}
	return false
}

// Category is the accounting bucket of a ledger row
type Category string

const (
	CategoryRevenueService    Category = "revenue_service"
	CategoryRevenueProduct    Category = "revenue_product"
	CategoryPayrollLike       Category = "payroll_like"
	CategoryCostOfGoods       Category = "cost_of_goods"
	CategoryGenericExpense    Category = "generic_expense"
	CategoryReceivablePending Category = "receivable_pending"
)

// SubcategoryManualAdjustment marks rows that came from operator-entered adjustments.
// Manual entries are folded into service revenue until a dedicated category exists.
const SubcategoryManualAdjustment = "manual_adjustment"

// RevenueCategories are the categories that count as realized revenue
func RevenueCategories() []Category {
	return []Category{CategoryRevenueService, CategoryRevenueProduct}
}

// IsRevenue reports whether c counts as realized revenue
func (c Category) IsRevenue() bool {
	return c == CategoryRevenueService || c == CategoryRevenueProduct
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryRevenueService, CategoryRevenueProduct, CategoryPayrollLike,
		CategoryCostOfGoods, CategoryGenericExpense, CategoryReceivablePending:
		return true
	}
	return false
}
