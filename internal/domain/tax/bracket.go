package tax

import "github.com/shopspring/decimal"

// Bracket is one row of a progressive table: revenue ceiling, nominal rate and fixed deduction
type Bracket struct {
	Limit     decimal.Decimal
	Rate      decimal.Decimal
	Deduction decimal.Decimal
}

// Table is an ordered bracket list, ascending by Limit
type Table struct {
	Name     string
	Brackets []Bracket
}

func bracket(limit, rate, deduction string) Bracket {
	return Bracket{
		Limit:     decimal.RequireFromString(limit),
		Rate:      decimal.RequireFromString(rate),
		Deduction: decimal.RequireFromString(deduction),
	}
}

// AnnexIII is the Simples Nacional table for service activities
func AnnexIII() Table {
	return Table{
		Name: "annex_iii",
		Brackets: []Bracket{
			bracket("180000", "0.06", "0"),
			bracket("360000", "0.112", "9360"),
			bracket("720000", "0.135", "17640"),
			bracket("1800000", "0.16", "35640"),
			bracket("3600000", "0.21", "125640"),
			bracket("4800000", "0.33", "648000"),
		},
	}
}

// AnnexV is the Simples Nacional table for services with a low payroll share
func AnnexV() Table {
	return Table{
		Name: "annex_v",
		Brackets: []Bracket{
			bracket("180000", "0.155", "0"),
			bracket("360000", "0.18", "4500"),
			bracket("720000", "0.195", "9900"),
			bracket("1800000", "0.205", "17100"),
			bracket("3600000", "0.23", "62100"),
			bracket("4800000", "0.305", "540000"),
		},
	}
}

// SelectBracket returns the index of the first bracket whose limit trailing revenue does
// not exceed, or the last bracket when it exceeds every limit.
// No bracket is selected for zero or negative revenue.
func SelectBracket(table Table, trailingRevenue decimal.Decimal) (int, bool) {
	if len(table.Brackets) == 0 || !trailingRevenue.IsPositive() {
		return -1, false
	}
	for i, b := range table.Brackets {
		if trailingRevenue.LessThanOrEqual(b.Limit) {
			return i, true
		}
	}
	return len(table.Brackets) - 1, true
}

// EffectiveRate computes (trailing × nominal − deduction) / trailing
func EffectiveRate(b Bracket, trailingRevenue decimal.Decimal) decimal.Decimal {
	if !trailingRevenue.IsPositive() {
		return decimal.Zero
	}
	rate := trailingRevenue.Mul(b.Rate).Sub(b.Deduction).Div(trailingRevenue)
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}
