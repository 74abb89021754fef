package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LiquidityStatus is the state of a two-phase liquidity transfer.
type LiquidityStatus string

const (
	LiquidityPending LiquidityStatus = "pending"
	LiquiditySettled LiquidityStatus = "settled"
	LiquidityFailed  LiquidityStatus = "failed"
)

// LiquidityTransfer moves funds between two agencies in one currency.
// Balances change only on settlement.
type LiquidityTransfer struct {
	ID            string
	FromAgencyID  string
	ToAgencyID    string
	Currency      string
	Amount        decimal.Decimal
	Status        LiquidityStatus
	Reference     string
	FailureReason string
	InitiatedBy   string
	CreatedAt     time.Time
	SettledAt     *time.Time
	UpdatedAt     time.Time
}

// Validate validates the transfer request.
func (t *LiquidityTransfer) Validate() error {
	if t.FromAgencyID == t.ToAgencyID {
		return ErrSameAgency
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return ValidateCurrency(t.Currency)
}
