package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/cancellation"
	"github.com/iho/goremit/internal/engine/liquidity"
	"github.com/iho/goremit/internal/engine/pricing"
	"github.com/iho/goremit/internal/engine/rate"
	"github.com/iho/goremit/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorFromDomain builds an error response listing the invalid fields of verr.
func ErrorFromDomain(message string, verr *domain.ValidationError) ErrorResponse {
	resp := ErrorResponse{Error: message}
	if verr != nil {
		for _, f := range verr.Fields {
			resp.Fields = append(resp.Fields, FieldError{Field: f.Field, Message: f.Message})
		}
	}
	return resp
}

// ListResponse wraps a paged list.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// NewListResponse maps items with conv.
func NewListResponse[S, T any](items []S, conv func(*S) T, limit, offset int) ListResponse[T] {
	out := make([]T, len(items))
	for i := range items {
		out[i] = conv(&items[i])
	}
	return ListResponse[T]{Items: out, Limit: limit, Offset: offset}
}

// RateResponse represents an exchange rate setting.
type RateResponse struct {
	ID           string          `json:"id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	BaseRate     decimal.Decimal `json:"base_rate"`
	TotalSpread  decimal.Decimal `json:"total_spread"`
	BidRate      decimal.Decimal `json:"bid_rate"`
	AskRate      decimal.Decimal `json:"ask_rate"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RateFromDomain converts a domain rate to response.
func RateFromDomain(r *domain.ExchangeRateSetting) RateResponse {
	return RateResponse{
		ID:           r.ID,
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		BaseRate:     r.BaseRate,
		TotalSpread:  r.TotalSpread,
		BidRate:      r.BidRate,
		AskRate:      r.AskRate,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
	}
}

// QuoteResponse represents a bid/ask quotation.
type QuoteResponse struct {
	From             string          `json:"from"`
	To               string          `json:"to"`
	BaseRate         decimal.Decimal `json:"base_rate"`
	BidRate          decimal.Decimal `json:"bid_rate"`
	AskRate          decimal.Decimal `json:"ask_rate"`
	Spread           decimal.Decimal `json:"spread"`
	SpreadPercentage decimal.Decimal `json:"spread_percentage"`
	Inverted         bool            `json:"inverted"`
}

// QuoteFromDomain converts a quotation to response.
func QuoteFromDomain(q rate.Quotation) QuoteResponse {
	return QuoteResponse{
		From:             q.From,
		To:               q.To,
		BaseRate:         q.BaseRate,
		BidRate:          q.BidRate,
		AskRate:          q.AskRate,
		Spread:           q.Spread,
		SpreadPercentage: q.SpreadPercentage,
		Inverted:         q.Inverted,
	}
}

// TierResponse represents a commission tier.
type TierResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	TransactionType string                `json:"transaction_type,omitempty"`
	MinAmount       decimal.Decimal       `json:"min_amount"`
	MaxAmount       *decimal.Decimal      `json:"max_amount"`
	Type            domain.CommissionType `json:"type"`
	Percentage      decimal.Decimal       `json:"percentage"`
	FixedAmount     decimal.Decimal       `json:"fixed_amount"`
	Order           int                   `json:"order"`
	IsActive        bool                  `json:"is_active"`
}

// TierFromDomain converts a domain tier to response.
func TierFromDomain(t *domain.CommissionTier) TierResponse {
	return TierResponse{
		ID:              t.ID,
		Name:            t.Name,
		TransactionType: t.TransactionType,
		MinAmount:       t.MinAmount,
		MaxAmount:       t.MaxAmount,
		Type:            t.Type,
		Percentage:      t.Percentage,
		FixedAmount:     t.FixedAmount,
		Order:           t.Order,
		IsActive:        t.IsActive,
	}
}

// FeeResponse represents a fee setting.
type FeeResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            domain.FeeType  `json:"type"`
	FixedAmount     decimal.Decimal `json:"fixed_amount"`
	Percentage      decimal.Decimal `json:"percentage"`
	Currency        string          `json:"currency,omitempty"`
	TransactionType string          `json:"transaction_type,omitempty"`
	IsActive        bool            `json:"is_active"`
}

// FeeFromDomain converts a domain fee setting to response.
func FeeFromDomain(f *domain.FeeSetting) FeeResponse {
	return FeeResponse{
		ID:              f.ID,
		Name:            f.Name,
		Type:            f.Type,
		FixedAmount:     f.FixedAmount,
		Percentage:      f.Percentage,
		Currency:        f.Currency,
		TransactionType: f.TransactionType,
		IsActive:        f.IsActive,
	}
}

// ApprovalRuleResponse represents an approval rule.
type ApprovalRuleResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	TransactionType string          `json:"transaction_type,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	IsActive        bool            `json:"is_active"`
}

// ApprovalRuleFromDomain converts a domain rule to response.
func ApprovalRuleFromDomain(r *domain.ApprovalRule) ApprovalRuleResponse {
	return ApprovalRuleResponse{
		ID:              r.ID,
		Name:            r.Name,
		TransactionType: r.TransactionType,
		Currency:        r.Currency,
		MaxAmount:       r.MaxAmount,
		IsActive:        r.IsActive,
	}
}

// PriceResponse represents a priced, unsaved transaction.
type PriceResponse struct {
	FromCurrency     string                 `json:"from_currency"`
	ToCurrency       string                 `json:"to_currency"`
	Type             domain.TransactionType `json:"type"`
	Direction        domain.Direction       `json:"direction"`
	Amount           decimal.Decimal        `json:"amount"`
	BaseRate         decimal.Decimal        `json:"base_rate"`
	Spread           decimal.Decimal        `json:"spread"`
	AppliedRate      decimal.Decimal        `json:"applied_rate"`
	ManualRate       bool                   `json:"manual_rate"`
	Commission       decimal.Decimal        `json:"commission"`
	CommissionTierID string                 `json:"commission_tier_id,omitempty"`
	Fees             decimal.Decimal        `json:"fees"`
	TotalCost        decimal.Decimal        `json:"total_cost"`
	NetAmount        decimal.Decimal        `json:"net_amount"`
	FinalAmount      decimal.Decimal        `json:"final_amount"`
	ConvertedAmount  decimal.Decimal        `json:"converted_amount"`
}

// PriceFromDomain converts a pricing result to response.
func PriceFromDomain(r *pricing.Result) PriceResponse {
	return PriceResponse{
		FromCurrency:     r.FromCurrency,
		ToCurrency:       r.ToCurrency,
		Type:             r.Type,
		Direction:        r.Direction,
		Amount:           r.Amount,
		BaseRate:         r.BaseRate,
		Spread:           r.Spread,
		AppliedRate:      r.AppliedRate,
		ManualRate:       r.ManualRate,
		Commission:       r.Commission,
		CommissionTierID: r.CommissionTierID,
		Fees:             r.Fees,
		TotalCost:        r.TotalCost,
		NetAmount:        r.NetAmount,
		FinalAmount:      r.FinalAmount,
		ConvertedAmount:  r.ConvertedAmount,
	}
}

// TransactionResponse represents a stored transaction.
type TransactionResponse struct {
	ID               string                   `json:"id"`
	AgencyID         string                   `json:"agency_id"`
	AgentID          string                   `json:"agent_id"`
	TillID           string                   `json:"till_id,omitempty"`
	Type             domain.TransactionType   `json:"type"`
	Direction        domain.Direction         `json:"direction"`
	SenderName       string                   `json:"sender_name,omitempty"`
	ReceiverName     string                   `json:"receiver_name,omitempty"`
	Amount           decimal.Decimal          `json:"amount"`
	FromCurrency     string                   `json:"from_currency"`
	ToCurrency       string                   `json:"to_currency"`
	ExchangeRate     decimal.Decimal          `json:"exchange_rate"`
	Spread           decimal.Decimal          `json:"spread"`
	AppliedRate      decimal.Decimal          `json:"applied_rate"`
	Commission       decimal.Decimal          `json:"commission"`
	CommissionTierID string                   `json:"commission_tier_id,omitempty"`
	Fees             decimal.Decimal          `json:"fees"`
	TotalCost        decimal.Decimal          `json:"total_cost"`
	NetAmount        decimal.Decimal          `json:"net_amount"`
	FinalAmount      decimal.Decimal          `json:"final_amount"`
	ConvertedAmount  decimal.Decimal          `json:"converted_amount"`
	Status           domain.TransactionStatus `json:"status"`
	ReversalOf       string                   `json:"reversal_of,omitempty"`
	CreatedBy        string                   `json:"created_by"`
	CreatedAt        time.Time                `json:"created_at"`
	CompletedAt      *time.Time               `json:"completed_at,omitempty"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID,
		AgencyID:         t.AgencyID,
		AgentID:          t.AgentID,
		TillID:           t.TillID,
		Type:             t.Type,
		Direction:        t.Direction,
		SenderName:       t.SenderName,
		ReceiverName:     t.ReceiverName,
		Amount:           t.Amount,
		FromCurrency:     t.FromCurrency,
		ToCurrency:       t.ToCurrency,
		ExchangeRate:     t.ExchangeRate,
		Spread:           t.Spread,
		AppliedRate:      t.AppliedRate,
		Commission:       t.Commission,
		CommissionTierID: t.CommissionTierID,
		Fees:             t.Fees,
		TotalCost:        t.TotalCost,
		NetAmount:        t.NetAmount,
		FinalAmount:      t.FinalAmount,
		ConvertedAmount:  t.ConvertedAmount,
		Status:           t.Status,
		ReversalOf:       t.ReversalOf,
		CreatedBy:        t.CreatedBy,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
	}
}

// EntryResponse represents a ledger entry.
type EntryResponse struct {
	ID              string             `json:"id"`
	TransactionID   string             `json:"transaction_id"`
	AgencyID        string             `json:"agency_id"`
	AccountCode     string             `json:"account_code"`
	AccountType     domain.AccountType `json:"account_type"`
	Currency        string             `json:"currency"`
	DebitAmount     decimal.Decimal    `json:"debit_amount"`
	CreditAmount    decimal.Decimal    `json:"credit_amount"`
	Balance         decimal.Decimal    `json:"balance"`
	Description     string             `json:"description,omitempty"`
	IsReversalEntry bool               `json:"is_reversal_entry"`
	ReversedEntryID string             `json:"reversed_entry_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		TransactionID:   e.TransactionID,
		AgencyID:        e.AgencyID,
		AccountCode:     e.AccountCode,
		AccountType:     e.AccountType,
		Currency:        e.Currency,
		DebitAmount:     e.DebitAmount,
		CreditAmount:    e.CreditAmount,
		Balance:         e.Balance,
		Description:     e.Description,
		IsReversalEntry: e.IsReversalEntry,
		ReversedEntryID: e.ReversedEntryID,
		CreatedAt:       e.CreatedAt,
	}
}

// CurrencyBalanceResponse is one currency's position.
type CurrencyBalanceResponse struct {
	Currency         string          `json:"currency"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	NetPosition      decimal.Decimal `json:"net_position"`
}

func balancesFromDomain(m map[string]domain.CurrencyBalance) []CurrencyBalanceResponse {
	out := make([]CurrencyBalanceResponse, 0, len(m))
	for _, b := range m {
		out = append(out, CurrencyBalanceResponse{
			Currency:         b.Currency,
			TotalAssets:      b.TotalAssets,
			TotalLiabilities: b.TotalLiabilities,
			TotalRevenue:     b.TotalRevenue,
			TotalExpenses:    b.TotalExpenses,
			NetPosition:      b.NetPosition,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// AgencyLedgerResponse is an agency's per-currency position.
type AgencyLedgerResponse struct {
	AgencyID   string                    `json:"agency_id"`
	Balances   []CurrencyBalanceResponse `json:"balances"`
	EntryCount int                       `json:"entry_count"`
}

// AgencyLedgerFromDomain converts an agency ledger to response.
func AgencyLedgerFromDomain(l domain.AgencyLedger) AgencyLedgerResponse {
	return AgencyLedgerResponse{
		AgencyID:   l.AgencyID,
		Balances:   balancesFromDomain(l.Balances),
		EntryCount: l.EntryCount,
	}
}

// ConsolidatedLedgerResponse is the network-wide position.
type ConsolidatedLedgerResponse struct {
	Balances    []CurrencyBalanceResponse `json:"balances"`
	AgencyCount int                       `json:"agency_count"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// ConsolidatedFromDomain converts a consolidated ledger to response.
func ConsolidatedFromDomain(l domain.ConsolidatedLedger) ConsolidatedLedgerResponse {
	return ConsolidatedLedgerResponse{
		Balances:    balancesFromDomain(l.Balances),
		AgencyCount: l.AgencyCount,
		GeneratedAt: l.GeneratedAt,
	}
}

// PendingResponse represents a transaction awaiting approval.
type PendingResponse struct {
	ID              string                `json:"id"`
	TransactionID   string                `json:"transaction_id"`
	AgencyID        string                `json:"agency_id"`
	RuleID          string                `json:"rule_id"`
	Amount          decimal.Decimal       `json:"amount"`
	Currency        string                `json:"currency"`
	Status          domain.ApprovalStatus `json:"status"`
	RequestedBy     string                `json:"requested_by"`
	RequestedByName string                `json:"requested_by_name,omitempty"`
	ApprovedBy      string                `json:"approved_by,omitempty"`
	ApprovedByName  string                `json:"approved_by_name,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	TreatedAt       *time.Time            `json:"treated_at,omitempty"`
}

// PendingFromDomain converts a pending transaction to response.
func PendingFromDomain(p *domain.PendingTransaction) PendingResponse {
	return PendingResponse{
		ID:              p.ID,
		TransactionID:   p.TransactionID,
		AgencyID:        p.AgencyID,
		RuleID:          p.RuleID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          p.Status,
		RequestedBy:     p.RequestedBy,
		RequestedByName: p.RequestedByName,
		ApprovedBy:      p.ApprovedBy,
		ApprovedByName:  p.ApprovedByName,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		TreatedAt:       p.TreatedAt,
	}
}

// ApprovalDecisionResponse is a treated request, with the transaction it completed.
type ApprovalDecisionResponse struct {
	Approval    PendingResponse      `json:"approval"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// CancellationResponse represents a cancellation.
type CancellationResponse struct {
	ID                    string                    `json:"id"`
	OriginalTransactionID string                    `json:"original_transaction_id"`
	ReversalTransactionID string                    `json:"reversal_transaction_id"`
	AgencyID              string                    `json:"agency_id"`
	Reason                string                    `json:"reason"`
	CancelledBy           string                    `json:"cancelled_by"`
	CancelledByName       string                    `json:"cancelled_by_name,omitempty"`
	Status                domain.CancellationStatus `json:"status"`
	PostingError          string                    `json:"posting_error,omitempty"`
	CreatedAt             time.Time                 `json:"created_at"`
	PostedAt              *time.Time                `json:"posted_at,omitempty"`
}

// CancellationFromDomain converts a cancellation to response.
func CancellationFromDomain(c *domain.Cancellation) CancellationResponse {
	return CancellationResponse{
		ID:                    c.ID,
		OriginalTransactionID: c.OriginalTransactionID,
		ReversalTransactionID: c.ReversalTransactionID,
		AgencyID:              c.AgencyID,
		Reason:                c.Reason,
		CancelledBy:           c.CancelledBy,
		CancelledByName:       c.CancelledByName,
		Status:                c.Status,
		PostingError:          c.PostingError,
		CreatedAt:             c.CreatedAt,
		PostedAt:              c.PostedAt,
	}
}

// CancelResponse is a cancellation with its reversal transaction.
type CancelResponse struct {
	Cancellation CancellationResponse `json:"cancellation"`
	Reversal     *TransactionResponse `json:"reversal,omitempty"`
}

// CancelFromDomain converts a cancel result to response.
func CancelFromDomain(r *usecase.CancelResult) CancelResponse {
	resp := CancelResponse{Cancellation: CancellationFromDomain(r.Cancellation)}
	if r.Reversal != nil {
		t := TransactionFromDomain(r.Reversal)
		resp.Reversal = &t
	}
	return resp
}

// DecisionResponse says whether a transaction may be cancelled now.
type DecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// DecisionFromDomain converts a cancellation decision to response.
func DecisionFromDomain(d cancellation.Decision) DecisionResponse {
	return DecisionResponse{Allowed: d.Allowed, Reason: d.Reason}
}

// CashOperationResponse represents a till cash movement.
type CashOperationResponse struct {
	ID          string                   `json:"id"`
	AgencyID    string                   `json:"agency_id"`
	AgentID     string                   `json:"agent_id"`
	TillID      string                   `json:"till_id"`
	Type        domain.CashOperationType `json:"type"`
	Currency    string                   `json:"currency"`
	Amount      decimal.Decimal          `json:"amount"`
	Description string                   `json:"description,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// CashOperationFromDomain converts a cash operation to response.
func CashOperationFromDomain(op *domain.CashOperation) CashOperationResponse {
	return CashOperationResponse{
		ID:          op.ID,
		AgencyID:    op.AgencyID,
		AgentID:     op.AgentID,
		TillID:      op.TillID,
		Type:        op.Type,
		Currency:    op.Currency,
		Amount:      op.Amount,
		Description: op.Description,
		CreatedAt:   op.CreatedAt,
	}
}

// ReconciliationResponse represents a reconciliation entry.
type ReconciliationResponse struct {
	ID                 string                      `json:"id"`
	AgencyID           string                      `json:"agency_id"`
	AgentID            string                      `json:"agent_id"`
	TillID             string                      `json:"till_id"`
	Currency           string                      `json:"currency"`
	TheoreticalBalance decimal.Decimal             `json:"theoretical_balance"`
	ActualCash         decimal.Decimal             `json:"actual_cash"`
	Variance           decimal.Decimal             `json:"variance"`
	TotalDebits        decimal.Decimal             `json:"total_debits"`
	TotalCredits       decimal.Decimal             `json:"total_credits"`
	TransactionCount   int                         `json:"transaction_count"`
	CashOperationCount int                         `json:"cash_operation_count"`
	Status             domain.ReconciliationStatus `json:"status"`
	Notes              string                      `json:"notes,omitempty"`
	ReviewedBy         string                      `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time                  `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
}

// ReconciliationFromDomain converts a reconciliation entry to response.
func ReconciliationFromDomain(e *domain.ReconciliationEntry) ReconciliationResponse {
	return ReconciliationResponse{
		ID:                 e.ID,
		AgencyID:           e.AgencyID,
		AgentID:            e.AgentID,
		TillID:             e.TillID,
		Currency:           e.Currency,
		TheoreticalBalance: e.TheoreticalBalance,
		ActualCash:         e.ActualCash,
		Variance:           e.Variance,
		TotalDebits:        e.TotalDebits,
		TotalCredits:       e.TotalCredits,
		TransactionCount:   e.TransactionCount,
		CashOperationCount: e.CashOperationCount,
		Status:             e.Status,
		Notes:              e.Notes,
		ReviewedBy:         e.ReviewedBy,
		ReviewedAt:         e.ReviewedAt,
		CreatedAt:          e.CreatedAt,
	}
}

// ReportStatsResponse summarizes a reconciliation report.
type ReportStatsResponse struct {
	TotalEntries    int             `json:"total_entries"`
	BalancedEntries int             `json:"balanced_entries"`
	VarianceEntries int             `json:"variance_entries"`
	AverageVariance decimal.Decimal `json:"average_variance"`
	MaxVariance     decimal.Decimal `json:"max_variance"`
}

// ReportResponse represents a reconciliation report.
type ReportResponse struct {
	AgencyID    string                   `json:"agency_id,omitempty"`
	From        time.Time                `json:"from"`
	To          time.Time                `json:"to"`
	Entries     []ReconciliationResponse `json:"entries"`
	Stats       ReportStatsResponse      `json:"stats"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// ReportFromDomain converts a reconciliation report to response.
func ReportFromDomain(r domain.ReconciliationReport) ReportResponse {
	entries := make([]ReconciliationResponse, len(r.Entries))
	for i := range r.Entries {
		entries[i] = ReconciliationFromDomain(&r.Entries[i])
	}
	return ReportResponse{
		AgencyID: r.AgencyID,
		From:     r.From,
		To:       r.To,
		Entries:  entries,
		Stats: ReportStatsResponse{
			TotalEntries:    r.Stats.TotalEntries,
			BalancedEntries: r.Stats.BalancedEntries,
			VarianceEntries: r.Stats.VarianceEntries,
			AverageVariance: r.Stats.AverageVariance,
			MaxVariance:     r.Stats.MaxVariance,
		},
		GeneratedAt: r.GeneratedAt,
	}
}

// LiquidityResponse represents a liquidity transfer.
type LiquidityResponse struct {
	ID            string                 `json:"id"`
	FromAgencyID  string                 `json:"from_agency_id"`
	ToAgencyID    string                 `json:"to_agency_id"`
	Currency      string                 `json:"currency"`
	Amount        decimal.Decimal        `json:"amount"`
	Status        domain.LiquidityStatus `json:"status"`
	Reference     string                 `json:"reference,omitempty"`
	FailureReason string                 `json:"failure_reason,omitempty"`
	InitiatedBy   string                 `json:"initiated_by"`
	CreatedAt     time.Time              `json:"created_at"`
	SettledAt     *time.Time             `json:"settled_at,omitempty"`
}

// LiquidityFromDomain converts a liquidity transfer to response.
func LiquidityFromDomain(t *domain.LiquidityTransfer) LiquidityResponse {
	return LiquidityResponse{
		ID:            t.ID,
		FromAgencyID:  t.FromAgencyID,
		ToAgencyID:    t.ToAgencyID,
		Currency:      t.Currency,
		Amount:        t.Amount,
		Status:        t.Status,
		Reference:     t.Reference,
		FailureReason: t.FailureReason,
		InitiatedBy:   t.InitiatedBy,
		CreatedAt:     t.CreatedAt,
		SettledAt:     t.SettledAt,
	}
}

// BalanceResponse represents an agency's liquidity in one currency.
type BalanceResponse struct {
	AgencyID  string          `json:"agency_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceFromDomain converts an agency balance to response.
func BalanceFromDomain(b *domain.AgencyBalance) BalanceResponse {
	return BalanceResponse{
		AgencyID:  b.AgencyID,
		Currency:  b.Currency,
		Balance:   b.Balance,
		Version:   b.Version,
		UpdatedAt: b.UpdatedAt,
	}
}

// SettlementResponse is a settled transfer with both resulting balances.
type SettlementResponse struct {
	Transfer LiquidityResponse `json:"transfer"`
	From     BalanceResponse   `json:"from"`
	To       BalanceResponse   `json:"to"`
}

// SettlementFromDomain converts a settlement to response.
func SettlementFromDomain(s *liquidity.Settlement) SettlementResponse {
	return SettlementResponse{
		Transfer: LiquidityFromDomain(s.Transfer),
		From:     BalanceFromDomain(&s.From),
		To:       BalanceFromDomain(&s.To),
	}
}
