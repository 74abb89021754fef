// Package liquidity models inter-agency liquidity moves as an explicit
// two-phase operation: Initiate records intent, Settle applies balances.
package liquidity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// InitiateInput describes a requested liquidity move.
type InitiateInput struct {
	ID           string
	FromAgencyID string
	ToAgencyID   string
	Currency     string
	Amount       decimal.Decimal
	Reference    string
	InitiatedBy  string
}

// Initiate returns a pending transfer. No balance changes yet.
func Initiate(in InitiateInput, now time.Time) (*domain.LiquidityTransfer, error) {
	t := &domain.LiquidityTransfer{
		ID:           in.ID,
		FromAgencyID: strings.TrimSpace(in.FromAgencyID),
		ToAgencyID:   strings.TrimSpace(in.ToAgencyID),
		Currency:     domain.NormalizeCurrency(in.Currency),
		Amount:       in.Amount,
		Status:       domain.LiquidityPending,
		Reference:    in.Reference,
		InitiatedBy:  in.InitiatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if t.FromAgencyID == "" || t.ToAgencyID == "" {
		return nil, fmt.Errorf("%w: both agencies are required", domain.ErrValidation)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Settlement is the result of settling a transfer: the settled record and
// both updated balances.
type Settlement struct {
	Transfer *domain.LiquidityTransfer
	From     domain.AgencyBalance
	To       domain.AgencyBalance
}

// Settle applies a pending transfer to the two agency balances.
func Settle(t *domain.LiquidityTransfer, from, to domain.AgencyBalance, now time.Time) (*Settlement, error) {
	if t.Status != domain.LiquidityPending {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrInvalidLiquidityState, t.ID, t.Status)
	}
	if from.AgencyID != t.FromAgencyID || to.AgencyID != t.ToAgencyID || from.Currency != t.Currency || to.Currency != t.Currency {
		return nil, fmt.Errorf("%w: balances do not match transfer %s", domain.ErrValidation, t.ID)
	}
	if err := from.ValidateDebit(t.Amount); err != nil {
		return nil, err
	}

	settled := *t
	settled.Status = domain.LiquiditySettled
	settled.SettledAt = &now
	settled.UpdatedAt = now

	from.Balance = from.ApplyDebit(t.Amount)
	from.Version++
	from.UpdatedAt = now
	to.Balance = to.ApplyCredit(t.Amount)
	to.Version++
	to.UpdatedAt = now

	return &Settlement{Transfer: &settled, From: from, To: to}, nil
}

// Fail marks a pending transfer as failed. Balances are untouched.
func Fail(t *domain.LiquidityTransfer, reason string, now time.Time) (*domain.LiquidityTransfer, error) {
	if t.Status != domain.LiquidityPending {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrInvalidLiquidityState, t.ID, t.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: failure reason is required", domain.ErrValidation)
	}

	failed := *t
	failed.Status = domain.LiquidityFailed
	failed.FailureReason = strings.TrimSpace(reason)
	failed.UpdatedAt = now
	return &failed, nil
}
