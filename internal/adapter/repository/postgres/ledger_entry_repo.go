package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const ledgerEntryColumns = `id, transaction_id, agency_id, account_code, account_type, currency,
	debit_amount, credit_amount, balance, description, is_reversal_entry, reversed_entry_id, created_at`

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	db DBTX
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(db DBTX) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: db}
}

// CreateBatch inserts every line of a posting in one round trip.
func (r *LedgerEntryRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.ID,
			e.TransactionID,
			e.AgencyID,
			e.AccountCode,
			string(e.AccountType),
			e.Currency,
			decimalToNumeric(e.DebitAmount),
			decimalToNumeric(e.CreditAmount),
			decimalToNumeric(e.Balance),
			e.Description,
			e.IsReversalEntry,
			e.ReversedEntryID,
			e.CreatedAt,
		})
	}

	_, err := tx.(*Tx).PgxTx().CopyFrom(ctx,
		pgx.Identifier{"ledger_entries"},
		[]string{
			"id", "transaction_id", "agency_id", "account_code", "account_type", "currency",
			"debit_amount", "credit_amount", "balance", "description", "is_reversal_entry",
			"reversed_entry_id", "created_at",
		},
		pgx.CopyFromRows(rows),
	)
	return err
}

// GetByTransaction lists the lines posted for a transaction.
func (r *LedgerEntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ledgerEntryColumns+` FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY id`, transactionID)
	return collect(rows, err, scanLedgerEntry)
}

// ListByAgency lists every line booked for an agency.
func (r *LedgerEntryRepository) ListByAgency(ctx context.Context, agencyID string) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ledgerEntryColumns+` FROM ledger_entries
		WHERE agency_id = $1
		ORDER BY created_at, id`, agencyID)
	return collect(rows, err, scanLedgerEntry)
}

// ListAgencies lists every agency with at least one line.
func (r *LedgerEntryRepository) ListAgencies(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT agency_id FROM ledger_entries ORDER BY agency_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// TotalsByCurrency sums debits and credits per currency.
func (r *LedgerEntryRepository) TotalsByCurrency(ctx context.Context) ([]usecase.CurrencyTotals, error) {
	rows, err := r.db.Query(ctx, `
		SELECT currency, COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM ledger_entries
		GROUP BY currency
		ORDER BY currency`)
	return collect(rows, err, func(row rowScanner) (usecase.CurrencyTotals, error) {
		var (
			t               usecase.CurrencyTotals
			debits, credits pgtype.Numeric
		)
		err := row.Scan(&t.Currency, &debits, &credits)
		t.Debits = numericToDecimal(debits)
		t.Credits = numericToDecimal(credits)
		return t, err
	})
}

func scanLedgerEntry(row rowScanner) (domain.LedgerEntry, error) {
	var (
		e                      domain.LedgerEntry
		accountType            string
		debit, credit, balance pgtype.Numeric
	)
	err := row.Scan(
		&e.ID, &e.TransactionID, &e.AgencyID, &e.AccountCode, &accountType, &e.Currency,
		&debit, &credit, &balance, &e.Description, &e.IsReversalEntry, &e.ReversedEntryID, &e.CreatedAt,
	)
	if err != nil {
		return e, err
	}
	e.AccountType = domain.AccountType(accountType)
	e.DebitAmount = numericToDecimal(debit)
	e.CreditAmount = numericToDecimal(credit)
	e.Balance = numericToDecimal(balance)
	return e, nil
}
