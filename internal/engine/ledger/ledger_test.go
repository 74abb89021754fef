package ledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/iho/goremit/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seqIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func completedTx() *domain.Transaction {
	return &domain.Transaction{
		ID:              "tx1",
		AgencyID:        "ag1",
		Amount:          d("100"),
		FromCurrency:    "EUR",
		ToCurrency:      "USD",
		Commission:      d("3"),
		Fees:            d("2.5"),
		ConvertedAmount: d("109"),
		Status:          domain.TransactionCompleted,
	}
}

func TestPost(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	entries, err := Post(completedTx(), seqIDs("e"), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(entries))
	}

	cashOut := entries[0]
	if cashOut.AccountCode != domain.AccountCodeCash || cashOut.Currency != "EUR" || !cashOut.CreditAmount.Equal(d("102.5")) || !cashOut.Balance.Equal(d("-102.5")) {
		t.Fatalf("unexpected cash-out line %+v", cashOut)
	}
	cashIn := entries[2]
	if cashIn.Currency != "USD" || !cashIn.DebitAmount.Equal(d("109")) || !cashIn.Balance.Equal(d("109")) {
		t.Fatalf("unexpected cash-in line %+v", cashIn)
	}
	if entries[4].AccountType != domain.AccountRevenue || !entries[4].DebitAmount.Equal(d("3")) {
		t.Fatalf("unexpected commission line %+v", entries[4])
	}
	if entries[6].AccountType != domain.AccountExpense || !entries[6].CreditAmount.Equal(d("2.5")) {
		t.Fatalf("unexpected fees line %+v", entries[6])
	}

	for _, e := range entries {
		if e.DebitAmount.IsPositive() == e.CreditAmount.IsPositive() {
			t.Fatalf("line %s must have exactly one side set", e.ID)
		}
	}

	if err := CheckBalanced(entries); err != nil {
		t.Fatalf("posting should balance: %v", err)
	}
}

func TestPostSkipsZeroCosts(t *testing.T) {
	t.Parallel()

	tx := completedTx()
	tx.Commission = decimal.Zero
	tx.Fees = decimal.Zero

	entries, err := Post(tx, seqIDs("e"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(entries))
	}
}

func TestPostRejectsZeroLines(t *testing.T) {
	t.Parallel()

	tx := completedTx()
	tx.ConvertedAmount = d("0.00")

	entries, err := Post(tx, seqIDs("e"), time.Now())
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestPostRequiresCompleted(t *testing.T) {
	t.Parallel()

	tx := completedTx()
	tx.Status = domain.TransactionPendingApproval
	if _, err := Post(tx, seqIDs("e"), time.Now()); !errors.Is(err, domain.ErrTransactionNotCompleted) {
		t.Fatalf("expected ErrTransactionNotCompleted, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	entries, _ := Post(completedTx(), seqIDs("e"), now)

	reversed, err := Reverse(entries, "rev1", seqIDs("r"), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, r := range reversed {
		orig := entries[i]
		if !r.Balance.Equal(orig.Balance.Neg()) || !r.DebitAmount.Equal(orig.CreditAmount) || !r.CreditAmount.Equal(orig.DebitAmount) {
			t.Fatalf("line %d not mirrored: %+v vs %+v", i, r, orig)
		}
		if !r.IsReversalEntry || r.ReversedEntryID != orig.ID || r.TransactionID != "rev1" {
			t.Fatalf("line %d missing reversal markers: %+v", i, r)
		}
	}

	all := append(append([]domain.LedgerEntry{}, entries...), reversed...)
	for _, c := range []string{"EUR", "USD"} {
		b := AggregateBalance(all, c)
		if !b.NetPosition.IsZero() || !b.TotalAssets.IsZero() {
			t.Fatalf("%s should net to zero after reversal: %+v", c, b)
		}
	}

	if _, err := Reverse(reversed, "rev2", seqIDs("x"), now); !errors.Is(err, domain.ErrReversalOfReversal) {
		t.Fatalf("expected ErrReversalOfReversal, got %v", err)
	}
	if _, err := Reverse(nil, "rev3", seqIDs("x"), now); !errors.Is(err, domain.ErrNoEntriesToReverse) {
		t.Fatalf("expected ErrNoEntriesToReverse, got %v", err)
	}
}

func TestAggregateAndConsolidate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a, _ := Post(completedTx(), seqIDs("a"), now)

	other := completedTx()
	other.ID, other.AgencyID = "tx2", "ag2"
	b, _ := Post(other, seqIDs("b"), now)

	all := append(append([]domain.LedgerEntry{}, a...), b...)

	l1 := BuildAgencyLedger("ag1", all)
	if l1.EntryCount != len(a) || len(l1.Balances) != 2 {
		t.Fatalf("unexpected agency ledger %+v", l1)
	}

	eur := l1.Balances["EUR"]
	if !eur.TotalAssets.Equal(d("-102.5")) || !eur.TotalRevenue.Equal(d("3")) || !eur.TotalExpenses.Equal(d("-2.5")) {
		t.Fatalf("unexpected EUR balance %+v", eur)
	}
	want := eur.TotalAssets.Sub(eur.TotalLiabilities).Add(eur.TotalRevenue).Sub(eur.TotalExpenses)
	if !eur.NetPosition.Equal(want) {
		t.Fatalf("net position %s != %s", eur.NetPosition, want)
	}

	l2 := BuildAgencyLedger("ag2", all)
	cons := Consolidate([]domain.AgencyLedger{l1, l2}, now)
	if cons.AgencyCount != 2 || len(cons.Balances) != 2 {
		t.Fatalf("unexpected consolidation %+v", cons)
	}
	if !cons.Balances["USD"].TotalAssets.Equal(d("218")) {
		t.Fatalf("expected consolidated USD assets 218, got %s", cons.Balances["USD"].TotalAssets)
	}
}

func TestCheckBalancedDetectsDrift(t *testing.T) {
	t.Parallel()

	entries, _ := Post(completedTx(), seqIDs("e"), time.Now())
	entries[0].CreditAmount = d("100")

	if err := CheckBalanced(entries); !errors.Is(err, domain.ErrLedgerUnbalanced) {
		t.Fatalf("expected ErrLedgerUnbalanced, got %v", err)
	}
}

func TestPostingAlwaysBalances(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := func(label string, lo int64) decimal.Decimal {
			return decimal.New(rapid.Int64Range(lo, 10_000_000).Draw(t, label), -2)
		}
		tx := &domain.Transaction{
			ID:              "tx",
			AgencyID:        "ag",
			Amount:          cents("amount", 1),
			FromCurrency:    "EUR",
			ToCurrency:      "XOF",
			Commission:      cents("commission", 0),
			Fees:            cents("fees", 0),
			ConvertedAmount: cents("converted", 1),
			Status:          domain.TransactionCompleted,
		}

		entries, err := Post(tx, seqIDs("e"), time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := CheckBalanced(entries); err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if e.DebitAmount.IsZero() == e.CreditAmount.IsZero() {
				t.Fatalf("line %s must have exactly one non-zero side: debit %s credit %s", e.ID, e.DebitAmount, e.CreditAmount)
			}
		}

		reversed, err := Reverse(entries, "rev", seqIDs("r"), time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range entries {
			if !reversed[i].Balance.Equal(entries[i].Balance.Neg()) {
				t.Fatalf("reversal line %d does not negate balance", i)
			}
		}
	})
}
