package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const transactionColumns = `id, agency_id, agent_id, till_id, type, direction, sender_name, receiver_name,
	amount, from_currency, to_currency, exchange_rate, spread, applied_rate, commission,
	commission_tier_id, fees, total_cost, net_amount, final_amount, converted_amount,
	status, reversal_of, created_by, created_at, updated_at, completed_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		t.ID,
		t.AgencyID,
		t.AgentID,
		t.TillID,
		string(t.Type),
		string(t.Direction),
		t.SenderName,
		t.ReceiverName,
		decimalToNumeric(t.Amount),
		t.FromCurrency,
		t.ToCurrency,
		decimalToNumeric(t.ExchangeRate),
		decimalToNumeric(t.Spread),
		decimalToNumeric(t.AppliedRate),
		decimalToNumeric(t.Commission),
		t.CommissionTierID,
		decimalToNumeric(t.Fees),
		decimalToNumeric(t.TotalCost),
		decimalToNumeric(t.NetAmount),
		decimalToNumeric(t.FinalAmount),
		decimalToNumeric(t.ConvertedAmount),
		string(t.Status),
		t.ReversalOf,
		t.CreatedBy,
		t.CreatedAt,
		t.UpdatedAt,
		timePtrToPg(t.CompletedAt),
	)
	return err
}

// Update stores the lifecycle fields of a transaction.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE transactions SET status = $2, updated_at = $3, completed_at = $4
		WHERE id = $1`,
		t.ID, string(t.Status), t.UpdatedAt, timePtrToPg(t.CompletedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// GetByID retrieves a transaction.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return transactionOrNotFound(row)
}

// GetByIDForUpdate retrieves and locks a transaction.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	row := txConn(tx).QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	return transactionOrNotFound(row)
}

// List lists transactions matching filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.AgencyID != "" {
		add("agency_id = $%d", filter.AgencyID)
	}
	if filter.AgentID != "" {
		add("agent_id = $%d", filter.AgentID)
	}
	if filter.Currency != "" {
		args = append(args, filter.Currency)
		conds = append(conds, fmt.Sprintf("(from_currency = $%d OR to_currency = $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	return collect(rows, err, scanTransaction)
}

func transactionOrNotFound(row pgx.Row) (*domain.Transaction, error) {
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		t                                      domain.Transaction
		typ, direction, status                 string
		amount, rate, spread, applied          pgtype.Numeric
		commission, fees, totalCost, netAmount pgtype.Numeric
		finalAmount, convertedAmount           pgtype.Numeric
		completedAt                            pgtype.Timestamptz
	)
	err := row.Scan(
		&t.ID, &t.AgencyID, &t.AgentID, &t.TillID, &typ, &direction, &t.SenderName, &t.ReceiverName,
		&amount, &t.FromCurrency, &t.ToCurrency, &rate, &spread, &applied, &commission,
		&t.CommissionTierID, &fees, &totalCost, &netAmount, &finalAmount, &convertedAmount,
		&status, &t.ReversalOf, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt, &completedAt,
	)
	if err != nil {
		return t, err
	}
	t.Type = domain.TransactionType(typ)
	t.Direction = domain.Direction(direction)
	t.Status = domain.TransactionStatus(status)
	t.Amount = numericToDecimal(amount)
	t.ExchangeRate = numericToDecimal(rate)
	t.Spread = numericToDecimal(spread)
	t.AppliedRate = numericToDecimal(applied)
	t.Commission = numericToDecimal(commission)
	t.Fees = numericToDecimal(fees)
	t.TotalCost = numericToDecimal(totalCost)
	t.NetAmount = numericToDecimal(netAmount)
	t.FinalAmount = numericToDecimal(finalAmount)
	t.ConvertedAmount = numericToDecimal(convertedAmount)
	t.CompletedAt = pgToTimePtr(completedAt)
	return t, nil
}
