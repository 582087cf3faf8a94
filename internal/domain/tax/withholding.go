package tax

import "github.com/shopspring/decimal"

// ContractorPayment is a payment to a non-employee provider within the month
type ContractorPayment struct {
	Amount              decimal.Decimal
	WithholdingRequired bool
}

// WithholdingRule decides when and how much is withheld from a contractor payment
type WithholdingRule struct {
	Rate           decimal.Decimal
	Threshold      decimal.Decimal
	AlwaysRequired bool
}

// Applies reports whether withholding is due on p
func (r WithholdingRule) Applies(p ContractorPayment) bool {
	return r.AlwaysRequired || p.WithholdingRequired || p.Amount.Abs().GreaterThanOrEqual(r.Threshold)
}

// WithholdingFor returns the unrounded amount withheld from p
func WithholdingFor(p ContractorPayment, r WithholdingRule) decimal.Decimal {
	if !r.Applies(p) {
		return decimal.Zero
	}
	return p.Amount.Abs().Mul(r.Rate)
}

// TotalWithholding sums withholding over payments, rounded to cents
func TotalWithholding(payments []ContractorPayment, r WithholdingRule) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(WithholdingFor(p, r))
	}
	return RoundMoney(total)
}
