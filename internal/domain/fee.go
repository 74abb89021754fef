package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType selects how a fee contributes to cost.
type FeeType string

const (
	FeeFixed      FeeType = "fixed"
	FeePercentage FeeType = "percentage"
	FeeMixed      FeeType = "mixed"
)

// IsValid reports whether the fee type is known.
func (t FeeType) IsValid() bool {
	return t == FeeFixed || t == FeePercentage || t == FeeMixed
}

// UsesPercentage reports whether the fee has a variable part.
func (t FeeType) UsesPercentage() bool {
	return t == FeePercentage || t == FeeMixed
}

// FeeSetting is a flat, percentage or mixed fee. An empty or "*" TransactionType applies to all types.
type FeeSetting struct {
	ID              string
	Name            string
	Type            FeeType
	FixedAmount     decimal.Decimal
	Percentage      decimal.Decimal
	Currency        string
	TransactionType string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the fee's own invariants.
func (f *FeeSetting) Validate() error {
	verr := &ValidationError{}

	if !f.Type.IsValid() {
		verr.Add("type", "must be one of: fixed percentage mixed")
	}
	if f.FixedAmount.IsNegative() {
		verr.Add("fixed_amount", "must not be negative")
	}
	if f.Type.UsesPercentage() && !ValidPercentage(f.Percentage) {
		verr.Add("percentage", "must be between 0 and 100")
	}
	if f.Currency != "" && !IsValidCurrency(f.Currency) {
		verr.Add("currency", "must be a supported ISO 4217 currency code")
	}

	return verr.OrNil()
}
