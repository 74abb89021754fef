// Package ledger generates double-entry postings for priced transactions and
// aggregates them into agency and consolidated balances.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// IDFunc supplies entry identifiers.
type IDFunc func() string

type line struct {
	code        string
	accountType domain.AccountType
	currency    string
	debit       bool
	amount      decimal.Decimal
	description string
}

// Post generates the posting template for a completed transaction. Every
// primary line is paired with a contra line on the currency's FX clearing
// account, so debits equal credits in each currency.
func Post(tx *domain.Transaction, newID IDFunc, now time.Time) ([]domain.LedgerEntry, error) {
	if tx.Status != domain.TransactionCompleted {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrTransactionNotCompleted, tx.ID, tx.Status)
	}
	if !tx.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	from, to := tx.FromCurrency, tx.ToCurrency
	outflow := tx.Amount.Add(tx.Fees)

	lines := []line{
		{domain.AccountCodeCash, domain.AccountAsset, from, false, outflow, "Cash out " + from},
		{domain.AccountCodeFXClearing, domain.AccountLiability, from, true, outflow, "FX clearing " + from},
		{domain.AccountCodeCash, domain.AccountAsset, to, true, tx.ConvertedAmount, "Cash in " + to},
		{domain.AccountCodeFXClearing, domain.AccountLiability, to, false, tx.ConvertedAmount, "FX clearing " + to},
	}

	if tx.Commission.IsPositive() {
		lines = append(lines,
			line{domain.AccountCodeCommission, domain.AccountRevenue, from, true, tx.Commission, "Commission"},
			line{domain.AccountCodeFXClearing, domain.AccountLiability, from, false, tx.Commission, "FX clearing commission"},
		)
	}
	if tx.Fees.IsPositive() {
		lines = append(lines,
			line{domain.AccountCodeFees, domain.AccountExpense, from, false, tx.Fees, "Fees"},
			line{domain.AccountCodeFXClearing, domain.AccountLiability, from, true, tx.Fees, "FX clearing fees"},
		)
	}

	entries := make([]domain.LedgerEntry, 0, len(lines))
	for _, l := range lines {
		if !l.amount.IsPositive() {
			return nil, fmt.Errorf("%w: %s line of %s is %s", domain.ErrInvalidAmount, l.description, tx.ID, l.amount)
		}
		e := domain.LedgerEntry{
			ID:            newID(),
			TransactionID: tx.ID,
			AgencyID:      tx.AgencyID,
			AccountCode:   l.code,
			AccountType:   l.accountType,
			Currency:      l.currency,
			DebitAmount:   decimal.Zero,
			CreditAmount:  decimal.Zero,
			Description:   l.description,
			CreatedAt:     now,
		}
		if l.debit {
			e.DebitAmount = l.amount
			e.Balance = l.amount
		} else {
			e.CreditAmount = l.amount
			e.Balance = l.amount.Neg()
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Reverse produces one reversal line per original line: debit and credit are
// swapped and the balance negated. Reversal lines cannot be reversed again.
func Reverse(entries []domain.LedgerEntry, reversalTxID string, newID IDFunc, now time.Time) ([]domain.LedgerEntry, error) {
	if len(entries) == 0 {
		return nil, domain.ErrNoEntriesToReverse
	}

	out := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsReversalEntry {
			return nil, fmt.Errorf("%w: %s", domain.ErrReversalOfReversal, e.ID)
		}
		out = append(out, domain.LedgerEntry{
			ID:              newID(),
			TransactionID:   reversalTxID,
			AgencyID:        e.AgencyID,
			AccountCode:     e.AccountCode,
			AccountType:     e.AccountType,
			Currency:        e.Currency,
			DebitAmount:     e.CreditAmount,
			CreditAmount:    e.DebitAmount,
			Balance:         e.Balance.Neg(),
			Description:     "Reversal: " + e.Description,
			IsReversalEntry: true,
			ReversedEntryID: e.ID,
			CreatedAt:       now,
		})
	}

	return out, nil
}

// AggregateBalance sums the balances of one currency's lines by account type.
func AggregateBalance(entries []domain.LedgerEntry, currency string) domain.CurrencyBalance {
	b := zeroBalance(currency)
	for _, e := range entries {
		if e.Currency != currency {
			continue
		}
		switch e.AccountType {
		case domain.AccountAsset:
			b.TotalAssets = b.TotalAssets.Add(e.Balance)
		case domain.AccountLiability:
			b.TotalLiabilities = b.TotalLiabilities.Add(e.Balance)
		case domain.AccountRevenue:
			b.TotalRevenue = b.TotalRevenue.Add(e.Balance)
		case domain.AccountExpense:
			b.TotalExpenses = b.TotalExpenses.Add(e.Balance)
		}
	}
	return withNet(b)
}

// BuildAgencyLedger aggregates an agency's lines for every currency they touch.
func BuildAgencyLedger(agencyID string, entries []domain.LedgerEntry) domain.AgencyLedger {
	own := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.AgencyID == agencyID {
			own = append(own, e)
		}
	}

	l := domain.AgencyLedger{
		AgencyID:   agencyID,
		Balances:   make(map[string]domain.CurrencyBalance),
		EntryCount: len(own),
	}
	for _, c := range currencies(own) {
		l.Balances[c] = AggregateBalance(own, c)
	}
	return l
}

// Consolidate sums agency ledgers per currency.
func Consolidate(ledgers []domain.AgencyLedger, now time.Time) domain.ConsolidatedLedger {
	out := domain.ConsolidatedLedger{
		Balances:    make(map[string]domain.CurrencyBalance),
		AgencyCount: len(ledgers),
		GeneratedAt: now,
	}

	for _, l := range ledgers {
		for c, b := range l.Balances {
			acc, ok := out.Balances[c]
			if !ok {
				acc = zeroBalance(c)
			}
			acc.TotalAssets = acc.TotalAssets.Add(b.TotalAssets)
			acc.TotalLiabilities = acc.TotalLiabilities.Add(b.TotalLiabilities)
			acc.TotalRevenue = acc.TotalRevenue.Add(b.TotalRevenue)
			acc.TotalExpenses = acc.TotalExpenses.Add(b.TotalExpenses)
			out.Balances[c] = withNet(acc)
		}
	}

	return out
}

// CheckBalanced verifies that debits equal credits in every currency.
func CheckBalanced(entries []domain.LedgerEntry) error {
	debits := map[string]decimal.Decimal{}
	credits := map[string]decimal.Decimal{}
	for _, e := range entries {
		debits[e.Currency] = debits[e.Currency].Add(e.DebitAmount)
		credits[e.Currency] = credits[e.Currency].Add(e.CreditAmount)
	}

	for _, c := range currencies(entries) {
		if !debits[c].Equal(credits[c]) {
			return fmt.Errorf("%w: %s debits=%s credits=%s", domain.ErrLedgerUnbalanced, c, debits[c], credits[c])
		}
	}
	return nil
}

// currencies returns the sorted set of currencies touched by entries.
func currencies(entries []domain.LedgerEntry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !seen[e.Currency] {
			seen[e.Currency] = true
			out = append(out, e.Currency)
		}
	}
	sort.Strings(out)
	return out
}

func zeroBalance(currency string) domain.CurrencyBalance {
	return domain.CurrencyBalance{
		Currency:         currency,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalRevenue:     decimal.Zero,
		TotalExpenses:    decimal.Zero,
		NetPosition:      decimal.Zero,
	}
}

func withNet(b domain.CurrencyBalance) domain.CurrencyBalance {
	b.NetPosition = b.TotalAssets.Sub(b.TotalLiabilities).Add(b.TotalRevenue).Sub(b.TotalExpenses)
	return b
}
