package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const reconciliationColumns = `id, agency_id, agent_id, till_id, currency, theoretical_balance, actual_cash,
	variance, total_debits, total_credits, transaction_count, cash_operation_count, status, notes,
	reviewed_by, reviewed_at, created_at, updated_at`

// ReconciliationRepository implements usecase.ReconciliationRepository.
type ReconciliationRepository struct {
	db DBTX
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(db DBTX) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// Create inserts a reconciliation entry within a transaction.
func (r *ReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.ReconciliationEntry) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO reconciliation_entries (`+reconciliationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		e.ID,
		e.AgencyID,
		e.AgentID,
		e.TillID,
		e.Currency,
		decimalToNumeric(e.TheoreticalBalance),
		decimalToNumeric(e.ActualCash),
		decimalToNumeric(e.Variance),
		decimalToNumeric(e.TotalDebits),
		decimalToNumeric(e.TotalCredits),
		e.TransactionCount,
		e.CashOperationCount,
		string(e.Status),
		e.Notes,
		e.ReviewedBy,
		timePtrToPg(e.ReviewedAt),
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

// Update stores the review state of an entry.
func (r *ReconciliationRepository) Update(ctx context.Context, tx usecase.Transaction, e *domain.ReconciliationEntry) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE reconciliation_entries
		SET status = $2, notes = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1`,
		e.ID, string(e.Status), e.Notes, e.ReviewedBy, timePtrToPg(e.ReviewedAt), e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReconciliationNotFound
	}
	return nil
}

// GetByID retrieves a reconciliation entry.
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.ReconciliationEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reconciliationColumns+` FROM reconciliation_entries WHERE id = $1`, id)
	return reconciliationOrNotFound(row)
}

// GetByIDForUpdate retrieves and locks a reconciliation entry.
func (r *ReconciliationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ReconciliationEntry, error) {
	row := txConn(tx).QueryRow(ctx, `SELECT `+reconciliationColumns+` FROM reconciliation_entries WHERE id = $1 FOR UPDATE`, id)
	return reconciliationOrNotFound(row)
}

// List lists entries matching filter, oldest first.
func (r *ReconciliationRepository) List(ctx context.Context, filter domain.ReconciliationFilter) ([]domain.ReconciliationEntry, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation_entries WHERE TRUE`
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		query += fmt.Sprintf(cond, len(args))
	}

	if filter.AgencyID != "" {
		add(" AND agency_id = $%d", filter.AgencyID)
	}
	if filter.AgentID != "" {
		add(" AND agent_id = $%d", filter.AgentID)
	}
	if filter.Currency != "" {
		add(" AND currency = $%d", filter.Currency)
	}
	if !filter.From.IsZero() {
		add(" AND created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add(" AND created_at <= $%d", filter.To)
	}
	query += " ORDER BY created_at"

	rows, err := r.db.Query(ctx, query, args...)
	return collect(rows, err, scanReconciliation)
}

func reconciliationOrNotFound(row pgx.Row) (*domain.ReconciliationEntry, error) {
	e, err := scanReconciliation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReconciliationNotFound
		}
		return nil, err
	}
	return &e, nil
}

func scanReconciliation(row rowScanner) (domain.ReconciliationEntry, error) {
	var (
		e                             domain.ReconciliationEntry
		theoretical, actual, variance pgtype.Numeric
		debits, credits               pgtype.Numeric
		status                        string
		reviewedAt                    pgtype.Timestamptz
	)
	err := row.Scan(
		&e.ID, &e.AgencyID, &e.AgentID, &e.TillID, &e.Currency, &theoretical, &actual,
		&variance, &debits, &credits, &e.TransactionCount, &e.CashOperationCount, &status, &e.Notes,
		&e.ReviewedBy, &reviewedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	e.TheoreticalBalance = numericToDecimal(theoretical)
	e.ActualCash = numericToDecimal(actual)
	e.Variance = numericToDecimal(variance)
	e.TotalDebits = numericToDecimal(debits)
	e.TotalCredits = numericToDecimal(credits)
	e.Status = domain.ReconciliationStatus(status)
	e.ReviewedAt = pgToTimePtr(reviewedAt)
	return e, err
}
