package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionType selects the commission formula of a tier.
type CommissionType string

const (
	CommissionFixed                 CommissionType = "fixed"
	CommissionPercentage            CommissionType = "percentage"
	CommissionPercentagePlusFixed   CommissionType = "percentage_plus_fixed"
	CommissionPercentageWithMinimum CommissionType = "percentage_with_minimum"
)

// IsValid reports whether the commission type is known.
func (t CommissionType) IsValid() bool {
	switch t {
	case CommissionFixed, CommissionPercentage, CommissionPercentagePlusFixed, CommissionPercentageWithMinimum:
		return true
	}
	return false
}

// CommissionTier is one amount bracket with its own commission formula.
// A nil MaxAmount means the bracket is unbounded above.
type CommissionTier struct {
	ID              string
	Name            string
	TransactionType string
	MinAmount       decimal.Decimal
	MaxAmount       *decimal.Decimal
	Type            CommissionType
	Percentage      decimal.Decimal
	FixedAmount     decimal.Decimal
	Order           int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Contains reports whether amount falls inside the bracket (both bounds inclusive).
func (t *CommissionTier) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.MinAmount) {
		return false
	}
	return t.MaxAmount == nil || amount.LessThanOrEqual(*t.MaxAmount)
}

// Validate checks the tier's own invariants.
func (t *CommissionTier) Validate() error {
	verr := &ValidationError{}

	if !t.Type.IsValid() {
		verr.Add("type", "must be one of: fixed percentage percentage_plus_fixed percentage_with_minimum")
	}
	if t.MinAmount.IsNegative() {
		verr.Add("min_amount", "must not be negative")
	}
	if t.MaxAmount != nil && t.MaxAmount.LessThanOrEqual(t.MinAmount) {
		verr.Add("max_amount", "must be greater than min_amount")
	}
	if t.Type != CommissionFixed && !ValidPercentage(t.Percentage) {
		verr.Add("percentage", "must be between 0 and 100")
	}
	if t.FixedAmount.IsNegative() {
		verr.Add("fixed_amount", "must not be negative")
	}

	return verr.OrNil()
}

// Clone returns a deep copy of the tier.
func (t CommissionTier) Clone() CommissionTier {
	if t.MaxAmount != nil {
		t.MaxAmount = DecimalPtr(*t.MaxAmount)
	}
	return t
}
