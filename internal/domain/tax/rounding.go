package tax

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half-up to cents
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundRatio rounds half-up to four decimal places
func RoundRatio(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// NormalizeRate turns a percentage such as 5 into 0.05; fractions are returned unchanged
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// FatorR is trailing payroll-like spend over trailing revenue, zero if either is zero
func FatorR(trailingPayroll, trailingRevenue decimal.Decimal) decimal.Decimal {
	payroll := trailingPayroll.Abs()
	if payroll.IsZero() || !trailingRevenue.IsPositive() {
		return decimal.Zero
	}
	return RoundRatio(payroll.Div(trailingRevenue))
}
