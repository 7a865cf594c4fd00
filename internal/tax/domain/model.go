package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultLabel is used when a jurisdiction has no table entry.
const DefaultLabel = "Tax"

// Case names the branch of the jurisdiction decision that produced a policy.
type Case string

const (
	CaseReverseCharge Case = "reverse_charge"
	CaseTable         Case = "table"
	CaseDefault       Case = "default"
)

// Policy is the tax applied to a proposal. Rate is a percentage in [0, 100].
type Policy struct {
	Rate    decimal.Decimal `json:"rate"`
	Label   string          `json:"label"`
	Enabled bool            `json:"enabled"`
}

// Subject is the part of a lead the resolver looks at.
type Subject struct {
	Country  string
	HasTaxID bool
}

// DefaultPolicy is the zero-tax fallback for unknown jurisdictions.
func DefaultPolicy() Policy {
	return Policy{Rate: decimal.Zero, Label: DefaultLabel, Enabled: false}
}

var hundred = decimal.NewFromInt(100)

// ValidateRate rejects rates outside [0, 100].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return ErrInvalidTaxRate
	}
	return nil
}

// WithRate returns a copy of p with a manual rate. Label and enabled are kept.
func (p Policy) WithRate(rate decimal.Decimal) (Policy, error) {
	if err := ValidateRate(rate); err != nil {
		return p, err
	}
	p.Rate = rate
	return p, nil
}

// Toggled returns a copy of p with enabled flipped. Rate and label are kept so
// toggling twice restores the original policy.
func (p Policy) Toggled() Policy {
	p.Enabled = !p.Enabled
	return p
}
