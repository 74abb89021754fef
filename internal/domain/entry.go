package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is one of the four account classes a ledger line can touch.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// Account codes used by the posting template.
const (
	AccountCodeCash       = "cash"
	AccountCodeFXClearing = "fx_clearing"
	AccountCodeCommission = "commission"
	AccountCodeFees       = "fees"
)

// LedgerEntry is one immutable posting line. Exactly one of DebitAmount and
// CreditAmount is non-zero; Balance is +debit or −credit.
type LedgerEntry struct {
	ID              string
	TransactionID   string
	AgencyID        string
	AccountCode     string
	AccountType     AccountType
	Currency        string
	DebitAmount     decimal.Decimal
	CreditAmount    decimal.Decimal
	Balance         decimal.Decimal
	Description     string
	IsReversalEntry bool
	ReversedEntryID string
	CreatedAt       time.Time
}

// IsDebit reports whether the line is on the debit side.
func (e *LedgerEntry) IsDebit() bool {
	return e.DebitAmount.IsPositive()
}

// CurrencyBalance aggregates one currency's lines by account type.
type CurrencyBalance struct {
	Currency         string
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalRevenue     decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetPosition      decimal.Decimal
}

// AgencyLedger is every currency balance of one agency.
type AgencyLedger struct {
	AgencyID   string
	Balances   map[string]CurrencyBalance
	EntryCount int
}

// ConsolidatedLedger sums agency ledgers per currency.
type ConsolidatedLedger struct {
	Balances    map[string]CurrencyBalance
	AgencyCount int
	GeneratedAt time.Time
}
