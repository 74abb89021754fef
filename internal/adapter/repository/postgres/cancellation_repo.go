package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const cancellationColumns = `id, original_transaction_id, reversal_transaction_id, agency_id, reason,
	cancelled_by, cancelled_by_name, status, posting_error, created_at, updated_at, posted_at`

// CancellationRepository implements usecase.CancellationRepository.
type CancellationRepository struct {
	db DBTX
}

// NewCancellationRepository creates a new CancellationRepository.
func NewCancellationRepository(db DBTX) *CancellationRepository {
	return &CancellationRepository{db: db}
}

// Create inserts a cancellation within a transaction.
func (r *CancellationRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Cancellation) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO cancellations (`+cancellationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID,
		c.OriginalTransactionID,
		c.ReversalTransactionID,
		c.AgencyID,
		c.Reason,
		c.CancelledBy,
		c.CancelledByName,
		string(c.Status),
		c.PostingError,
		c.CreatedAt,
		c.UpdatedAt,
		timePtrToPg(c.PostedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrInvalidTransactionState
	}
	return err
}

// Update stores the posting state of a cancellation.
func (r *CancellationRepository) Update(ctx context.Context, tx usecase.Transaction, c *domain.Cancellation) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE cancellations SET status = $2, posting_error = $3, updated_at = $4, posted_at = $5
		WHERE id = $1`,
		c.ID, string(c.Status), c.PostingError, c.UpdatedAt, timePtrToPg(c.PostedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCancellationNotFound
	}
	return nil
}

// GetByID retrieves a cancellation.
func (r *CancellationRepository) GetByID(ctx context.Context, id string) (*domain.Cancellation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cancellationColumns+` FROM cancellations WHERE id = $1`, id)
	return cancellationOrNotFound(row)
}

// GetByIDForUpdate retrieves and locks a cancellation.
func (r *CancellationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Cancellation, error) {
	row := txConn(tx).QueryRow(ctx, `SELECT `+cancellationColumns+` FROM cancellations WHERE id = $1 FOR UPDATE`, id)
	return cancellationOrNotFound(row)
}

// ListByStatus lists cancellations in a status, oldest first.
func (r *CancellationRepository) ListByStatus(ctx context.Context, status domain.CancellationStatus, limit, offset int) ([]domain.Cancellation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+cancellationColumns+` FROM cancellations
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, string(status), limit, offset)
	return collect(rows, err, scanCancellation)
}

func cancellationOrNotFound(row pgx.Row) (*domain.Cancellation, error) {
	c, err := scanCancellation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCancellationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanCancellation(row rowScanner) (domain.Cancellation, error) {
	var (
		c        domain.Cancellation
		status   string
		postedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&c.ID, &c.OriginalTransactionID, &c.ReversalTransactionID, &c.AgencyID, &c.Reason,
		&c.CancelledBy, &c.CancelledByName, &status, &c.PostingError, &c.CreatedAt, &c.UpdatedAt, &postedAt,
	)
	c.Status = domain.CancellationStatus(status)
	c.PostedAt = pgToTimePtr(postedAt)
	return c, err
}
