package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashOperationType is the direction of a physical cash movement at a till.
type CashOperationType string

const (
	CashIn  CashOperationType = "cash_in"
	CashOut CashOperationType = "cash_out"
)

// IsValid reports whether the operation type is known.
func (t CashOperationType) IsValid() bool {
	return t == CashIn || t == CashOut
}

// CashOperation is a till deposit or withdrawal outside of transactions.
type CashOperation struct {
	ID          string
	AgencyID    string
	AgentID     string
	TillID      string
	Type        CashOperationType
	Currency    string
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// ReconciliationStatus classifies a reconciliation variance.
type ReconciliationStatus string

const (
	ReconciliationBalanced   ReconciliationStatus = "balanced"
	ReconciliationDocumented ReconciliationStatus = "variance_documented"
	ReconciliationUnresolved ReconciliationStatus = "variance_unresolved"
)

// ReconciliationEntry compares a till's theoretical balance with counted cash.
type ReconciliationEntry struct {
	ID                 string
	AgencyID           string
	AgentID            string
	TillID             string
	Currency           string
	TheoreticalBalance decimal.Decimal
	ActualCash         decimal.Decimal
	Variance           decimal.Decimal
	TotalDebits        decimal.Decimal
	TotalCredits       decimal.Decimal
	TransactionCount   int
	CashOperationCount int
	Status             ReconciliationStatus
	Notes              string
	ReviewedBy         string
	ReviewedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReconciliationStats summarizes a set of reconciliation entries.
type ReconciliationStats struct {
	TotalEntries    int
	BalancedEntries int
	VarianceEntries int
	AverageVariance decimal.Decimal
	MaxVariance     decimal.Decimal
}

// ReconciliationReport is a dated set of entries with their stats.
type ReconciliationReport struct {
	AgencyID    string
	From        time.Time
	To          time.Time
	Entries     []ReconciliationEntry
	Stats       ReconciliationStats
	GeneratedAt time.Time
}

// ReconciliationFilter narrows reconciliation listings.
type ReconciliationFilter struct {
	AgencyID string
	AgentID  string
	Currency string
	From     time.Time
	To       time.Time
}
