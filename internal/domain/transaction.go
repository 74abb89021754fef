package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction for tier, fee and approval matching.
type TransactionType string

const (
	TransactionTransfer      TransactionType = "transfer"
	TransactionInternational TransactionType = "international_transfer"
	TransactionExchange      TransactionType = "exchange"
)

// IsValid reports whether the type is known.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTransfer, TransactionInternational, TransactionExchange:
		return true
	}
	return false
}

// WildcardType matches every transaction type in tier, fee and rule tables.
const WildcardType = "*"

// MatchesType reports whether a configured type applies to t.
// An empty or wildcard configuration matches every type.
func MatchesType(configured string, t TransactionType) bool {
	return configured == "" || configured == WildcardType || configured == string(t)
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionPending         TransactionStatus = "pending"
	TransactionPendingApproval TransactionStatus = "pending_approval"
	TransactionRejected        TransactionStatus = "rejected"
	TransactionCompleted       TransactionStatus = "completed"
	TransactionCancelled       TransactionStatus = "cancelled"
)

// Transaction is a priced transfer between two currencies.
//
// ConvertedAmount (Amount × AppliedRate) is the amount booked in ToCurrency.
// NetAmount and FinalAmount describe the customer-facing net figures only.
type Transaction struct {
	ID               string
	AgencyID         string
	AgentID          string
	TillID           string
	Type             TransactionType
	Direction        Direction
	SenderName       string
	ReceiverName     string
	Amount           decimal.Decimal
	FromCurrency     string
	ToCurrency       string
	ExchangeRate     decimal.Decimal
	Spread           decimal.Decimal
	AppliedRate      decimal.Decimal
	Commission       decimal.Decimal
	CommissionTierID string
	Fees             decimal.Decimal
	TotalCost        decimal.Decimal
	NetAmount        decimal.Decimal
	FinalAmount      decimal.Decimal
	ConvertedAmount  decimal.Decimal
	Status           TransactionStatus
	ReversalOf       string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// IsInternational reports whether the transaction crosses borders.
func (t *Transaction) IsInternational() bool {
	return t.Type == TransactionInternational
}

// IsReversal reports whether the transaction reverses another one.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOf != ""
}

// Complete moves a pending transaction to completed.
func (t *Transaction) Complete(now time.Time) error {
	if t.Status != TransactionPending && t.Status != TransactionPendingApproval {
		return ErrInvalidTransactionState
	}
	t.Status = TransactionCompleted
	t.UpdatedAt = now
	t.CompletedAt = &now
	return nil
}

// BookingTime is the instant used for the cancellation window.
func (t *Transaction) BookingTime() time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.CreatedAt
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	AgencyID string
	AgentID  string
	Currency string
	Status   TransactionStatus
	Limit    int
	Offset   int
}
