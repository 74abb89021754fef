package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const pendingColumns = `id, transaction_id, agency_id, rule_id, amount, currency, status, requested_by,
	requested_by_name, approved_by, approved_by_name, rejection_reason, created_at, treated_at`

// ApprovalRepository implements usecase.ApprovalRepository.
type ApprovalRepository struct {
	db DBTX
}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(db DBTX) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Create inserts a pending case within a transaction.
func (r *ApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.PendingTransaction) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO pending_transactions (`+pendingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID,
		p.TransactionID,
		p.AgencyID,
		p.RuleID,
		decimalToNumeric(p.Amount),
		p.Currency,
		string(p.Status),
		p.RequestedBy,
		p.RequestedByName,
		p.ApprovedBy,
		p.ApprovedByName,
		p.RejectionReason,
		p.CreatedAt,
		timePtrToPg(p.TreatedAt),
	)
	return err
}

// Update stores the decision on a pending case.
func (r *ApprovalRepository) Update(ctx context.Context, tx usecase.Transaction, p *domain.PendingTransaction) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE pending_transactions
		SET status = $2, approved_by = $3, approved_by_name = $4, rejection_reason = $5, treated_at = $6
		WHERE id = $1`,
		p.ID, string(p.Status), p.ApprovedBy, p.ApprovedByName, p.RejectionReason, timePtrToPg(p.TreatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApprovalNotFound
	}
	return nil
}

// GetByID retrieves a pending case.
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_transactions WHERE id = $1`, id)
	return pendingOrNotFound(row)
}

// GetByIDForUpdate retrieves and locks a pending case.
func (r *ApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PendingTransaction, error) {
	row := txConn(tx).QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_transactions WHERE id = $1 FOR UPDATE`, id)
	return pendingOrNotFound(row)
}

// ListByStatus lists pending cases in a status, oldest first.
func (r *ApprovalRepository) ListByStatus(ctx context.Context, status domain.ApprovalStatus, limit, offset int) ([]domain.PendingTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pendingColumns+` FROM pending_transactions
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, string(status), limit, offset)
	return collect(rows, err, scanPending)
}

func pendingOrNotFound(row pgx.Row) (*domain.PendingTransaction, error) {
	p, err := scanPending(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApprovalNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanPending(row rowScanner) (domain.PendingTransaction, error) {
	var (
		p         domain.PendingTransaction
		amount    pgtype.Numeric
		status    string
		treatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&p.ID, &p.TransactionID, &p.AgencyID, &p.RuleID, &amount, &p.Currency, &status, &p.RequestedBy,
		&p.RequestedByName, &p.ApprovedBy, &p.ApprovedByName, &p.RejectionReason, &p.CreatedAt, &treatedAt,
	)
	p.Amount = numericToDecimal(amount)
	p.Status = domain.ApprovalStatus(status)
	p.TreatedAt = pgToTimePtr(treatedAt)
	return p, err
}
