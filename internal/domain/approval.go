package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the maker-checker state of a pending transaction.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRule requires approval for transactions of a type and currency
// whose amount exceeds MaxAmount.
type ApprovalRule struct {
	ID              string
	Name            string
	TransactionType string
	Currency        string
	MaxAmount       decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
}

// Matches reports whether the rule applies to tx.
func (r *ApprovalRule) Matches(tx *Transaction) bool {
	if !r.IsActive || !MatchesType(r.TransactionType, tx.Type) {
		return false
	}
	if r.Currency != "" && r.Currency != tx.FromCurrency {
		return false
	}
	return tx.Amount.GreaterThan(r.MaxAmount)
}

// PendingTransaction is a maker-checker case gating one transaction.
type PendingTransaction struct {
	ID              string
	TransactionID   string
	AgencyID        string
	RuleID          string
	Amount          decimal.Decimal
	Currency        string
	Status          ApprovalStatus
	RequestedBy     string
	RequestedByName string
	ApprovedBy      string
	ApprovedByName  string
	RejectionReason string
	CreatedAt       time.Time
	TreatedAt       *time.Time
}

// IsTreated reports whether a decision has been recorded.
func (p *PendingTransaction) IsTreated() bool {
	return p.Status != ApprovalPending
}
