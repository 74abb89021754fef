package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/pricing"
	"github.com/iho/goremit/internal/usecase"
)

// CreateRateRequest represents a request to store an exchange rate.
type CreateRateRequest struct {
	FromCurrency string          `json:"from_currency" validate:"required,currency"`
	ToCurrency   string          `json:"to_currency" validate:"required,currency"`
	BaseRate     decimal.Decimal `json:"base_rate"`
	TotalSpread  decimal.Decimal `json:"total_spread"`
	Inactive     bool            `json:"inactive,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRateRequest) ToUseCaseInput() usecase.CreateRateInput {
	return usecase.CreateRateInput{
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		BaseRate:     r.BaseRate,
		TotalSpread:  r.TotalSpread,
		Inactive:     r.Inactive,
	}
}

// CreateTierRequest represents a request to add a commission tier.
type CreateTierRequest struct {
	Name            string                `json:"name" validate:"required"`
	TransactionType string                `json:"transaction_type"`
	MinAmount       decimal.Decimal       `json:"min_amount"`
	MaxAmount       *decimal.Decimal      `json:"max_amount"`
	Type            domain.CommissionType `json:"type" validate:"required"`
	Percentage      decimal.Decimal       `json:"percentage"`
	FixedAmount     decimal.Decimal       `json:"fixed_amount"`
	Order           int                   `json:"order"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTierRequest) ToUseCaseInput() usecase.CreateTierInput {
	return usecase.CreateTierInput{
		Name:            r.Name,
		TransactionType: r.TransactionType,
		MinAmount:       r.MinAmount,
		MaxAmount:       r.MaxAmount,
		Type:            r.Type,
		Percentage:      r.Percentage,
		FixedAmount:     r.FixedAmount,
		Order:           r.Order,
	}
}

// AdjustTierMaxRequest moves a tier's upper bound. A null max makes the tier unbounded.
type AdjustTierMaxRequest struct {
	MaxAmount *decimal.Decimal `json:"max_amount"`
}

// CreateFeeRequest represents a request to add a fee setting.
type CreateFeeRequest struct {
	Name            string          `json:"name" validate:"required"`
	Type            domain.FeeType  `json:"type" validate:"required"`
	FixedAmount     decimal.Decimal `json:"fixed_amount"`
	Percentage      decimal.Decimal `json:"percentage"`
	Currency        string          `json:"currency" validate:"omitempty,currency"`
	TransactionType string          `json:"transaction_type"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateFeeRequest) ToUseCaseInput() usecase.CreateFeeInput {
	return usecase.CreateFeeInput{
		Name:            r.Name,
		Type:            r.Type,
		FixedAmount:     r.FixedAmount,
		Percentage:      r.Percentage,
		Currency:        r.Currency,
		TransactionType: r.TransactionType,
	}
}

// CreateApprovalRuleRequest represents a request to add an approval rule.
type CreateApprovalRuleRequest struct {
	Name            string          `json:"name" validate:"required"`
	TransactionType string          `json:"transaction_type"`
	Currency        string          `json:"currency" validate:"omitempty,currency"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateApprovalRuleRequest) ToUseCaseInput() usecase.CreateApprovalRuleInput {
	return usecase.CreateApprovalRuleInput{
		Name:            r.Name,
		TransactionType: r.TransactionType,
		Currency:        r.Currency,
		MaxAmount:       r.MaxAmount,
	}
}

// PriceRequest represents a request to price a transaction.
type PriceRequest struct {
	Amount       decimal.Decimal        `json:"amount"`
	FromCurrency string                 `json:"from_currency" validate:"required,currency"`
	ToCurrency   string                 `json:"to_currency" validate:"required,currency"`
	Type         domain.TransactionType `json:"type" validate:"required"`
	Direction    domain.Direction       `json:"direction"`
	// Manual overrides replace the configured rate, commission or fees.
	ManualRate       *decimal.Decimal `json:"manual_rate,omitempty"`
	ManualCommission *decimal.Decimal `json:"manual_commission,omitempty"`
	ManualFees       *decimal.Decimal `json:"manual_fees,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PriceRequest) ToUseCaseInput() usecase.PriceInput {
	return usecase.PriceInput{
		Amount:       r.Amount,
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		Type:         r.Type,
		Direction:    r.Direction,
		Overrides: pricing.Overrides{
			Rate:       r.ManualRate,
			Commission: r.ManualCommission,
			Fees:       r.ManualFees,
		},
	}
}

// SubmitTransactionRequest represents a request to book a transaction.
type SubmitTransactionRequest struct {
	AgencyID     string `json:"agency_id" validate:"required"`
	AgentID      string `json:"agent_id" validate:"required"`
	TillID       string `json:"till_id"`
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
	PriceRequest
}

// ToUseCaseInput converts to use case input.
func (r *SubmitTransactionRequest) ToUseCaseInput() usecase.SubmitTransactionInput {
	return usecase.SubmitTransactionInput{
		AgencyID:     r.AgencyID,
		AgentID:      r.AgentID,
		TillID:       r.TillID,
		SenderName:   r.SenderName,
		ReceiverName: r.ReceiverName,
		PriceInput:   r.PriceRequest.ToUseCaseInput(),
	}
}

// ReasonRequest carries a free-text justification (cancel, reject, fail, document).
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// CashOperationRequest represents a till cash movement.
type CashOperationRequest struct {
	AgencyID    string                   `json:"agency_id" validate:"required"`
	AgentID     string                   `json:"agent_id" validate:"required"`
	TillID      string                   `json:"till_id" validate:"required"`
	Type        domain.CashOperationType `json:"type" validate:"required,oneof=cash_in cash_out"`
	Currency    string                   `json:"currency" validate:"required,currency"`
	Amount      decimal.Decimal          `json:"amount"`
	Description string                   `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *CashOperationRequest) ToUseCaseInput() usecase.CashOperationInput {
	return usecase.CashOperationInput{
		AgencyID:    r.AgencyID,
		AgentID:     r.AgentID,
		TillID:      r.TillID,
		Type:        r.Type,
		Currency:    r.Currency,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// CreateReconciliationRequest compares a till's counted cash with its books.
type CreateReconciliationRequest struct {
	AgencyID   string          `json:"agency_id" validate:"required"`
	AgentID    string          `json:"agent_id" validate:"required"`
	TillID     string          `json:"till_id" validate:"required"`
	Currency   string          `json:"currency" validate:"required,currency"`
	ActualCash decimal.Decimal `json:"actual_cash"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateReconciliationRequest) ToUseCaseInput() usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		AgencyID:   r.AgencyID,
		AgentID:    r.AgentID,
		TillID:     r.TillID,
		Currency:   r.Currency,
		ActualCash: r.ActualCash,
	}
}

// ReportQuery holds the reconciliation report filters.
type ReportQuery struct {
	AgencyID string
	AgentID  string
	Currency string
	From     time.Time
	To       time.Time
}

// ToFilter converts to the domain filter.
func (q ReportQuery) ToFilter() domain.ReconciliationFilter {
	return domain.ReconciliationFilter{
		AgencyID: q.AgencyID,
		AgentID:  q.AgentID,
		Currency: q.Currency,
		From:     q.From,
		To:       q.To,
	}
}

// InitiateLiquidityRequest represents a request to move liquidity between agencies.
type InitiateLiquidityRequest struct {
	FromAgencyID string          `json:"from_agency_id" validate:"required"`
	ToAgencyID   string          `json:"to_agency_id" validate:"required"`
	Currency     string          `json:"currency" validate:"required,currency"`
	Amount       decimal.Decimal `json:"amount"`
	Reference    string          `json:"reference"`
}

// ToUseCaseInput converts to use case input.
func (r *InitiateLiquidityRequest) ToUseCaseInput() usecase.InitiateLiquidityInput {
	return usecase.InitiateLiquidityInput{
		FromAgencyID: r.FromAgencyID,
		ToAgencyID:   r.ToAgencyID,
		Currency:     r.Currency,
		Amount:       r.Amount,
		Reference:    r.Reference,
	}
}
