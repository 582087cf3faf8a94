package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BracketPolicy picks the bracket table for a clinic month
type BracketPolicy interface {
	TableFor(fatorR decimal.Decimal) Table
}

// FixedTablePolicy always uses one table
type FixedTablePolicy struct {
	Table Table
}

// TableFor implements BracketPolicy
func (p FixedTablePolicy) TableFor(decimal.Decimal) Table {
	return p.Table
}

// FatorRPolicy uses AtOrAbove when Fator R reaches Threshold and Below otherwise
type FatorRPolicy struct {
	Threshold decimal.Decimal
	AtOrAbove Table
	Below     Table
}

// DefaultFatorRThreshold is the payroll share that keeps services in annex III
var DefaultFatorRThreshold = decimal.RequireFromString("0.28")

// NewFatorRPolicy returns the annex III / annex V policy
func NewFatorRPolicy(threshold decimal.Decimal) FatorRPolicy {
	return FatorRPolicy{Threshold: threshold, AtOrAbove: AnnexIII(), Below: AnnexV()}
}

// TableFor implements BracketPolicy
func (p FatorRPolicy) TableFor(fatorR decimal.Decimal) Table {
	if fatorR.GreaterThanOrEqual(p.Threshold) {
		return p.AtOrAbove
	}
	return p.Below
}

const (
	PolicyFixed  = "fixed"
	PolicyFatorR = "fator_r"
)

// PolicyByName resolves a configured policy name
func PolicyByName(name string, threshold decimal.Decimal) (BracketPolicy, error) {
	switch name {
	case "", PolicyFixed:
		return FixedTablePolicy{Table: AnnexIII()}, nil
	case PolicyFatorR:
		if threshold.IsZero() {
			threshold = DefaultFatorRThreshold
		}
		return NewFatorRPolicy(threshold), nil
	default:
		return nil, fmt.Errorf("tax: unknown bracket policy %q", name)
	}
}
