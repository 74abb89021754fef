package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgencyBalance is the liquidity an agency holds in one currency.
type AgencyBalance struct {
	AgencyID  string
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}

// ValidateDebit checks if the balance can be debited by amount.
func (b *AgencyBalance) ValidateDebit(amount decimal.Decimal) error {
	if b.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientLiquidity
	}
	return nil
}

// ApplyDebit returns the new balance after debit.
func (b *AgencyBalance) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return b.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after credit.
func (b *AgencyBalance) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return b.Balance.Add(amount)
}
