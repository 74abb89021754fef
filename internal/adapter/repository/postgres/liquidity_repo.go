package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const liquidityColumns = `id, from_agency_id, to_agency_id, currency, amount, status, reference,
	failure_reason, initiated_by, created_at, settled_at, updated_at`

// LiquidityRepository implements usecase.LiquidityRepository.
type LiquidityRepository struct {
	db DBTX
}

// NewLiquidityRepository creates a new LiquidityRepository.
func NewLiquidityRepository(db DBTX) *LiquidityRepository {
	return &LiquidityRepository{db: db}
}

// Create inserts a liquidity transfer within a transaction.
func (r *LiquidityRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.LiquidityTransfer) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO liquidity_transfers (`+liquidityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID,
		t.FromAgencyID,
		t.ToAgencyID,
		t.Currency,
		decimalToNumeric(t.Amount),
		string(t.Status),
		t.Reference,
		t.FailureReason,
		t.InitiatedBy,
		t.CreatedAt,
		timePtrToPg(t.SettledAt),
		t.UpdatedAt,
	)
	return err
}

// Update stores the lifecycle state of a transfer.
func (r *LiquidityRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.LiquidityTransfer) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE liquidity_transfers
		SET status = $2, failure_reason = $3, settled_at = $4, updated_at = $5
		WHERE id = $1`,
		t.ID, string(t.Status), t.FailureReason, timePtrToPg(t.SettledAt), t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLiquidityTransferNotFound
	}
	return nil
}

// GetByID retrieves a transfer.
func (r *LiquidityRepository) GetByID(ctx context.Context, id string) (*domain.LiquidityTransfer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+liquidityColumns+` FROM liquidity_transfers WHERE id = $1`, id)
	return liquidityOrNotFound(row)
}

// GetByIDForUpdate retrieves and locks a transfer.
func (r *LiquidityRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LiquidityTransfer, error) {
	row := txConn(tx).QueryRow(ctx, `SELECT `+liquidityColumns+` FROM liquidity_transfers WHERE id = $1 FOR UPDATE`, id)
	return liquidityOrNotFound(row)
}

func liquidityOrNotFound(row pgx.Row) (*domain.LiquidityTransfer, error) {
	var (
		t         domain.LiquidityTransfer
		amount    pgtype.Numeric
		status    string
		settledAt pgtype.Timestamptz
	)
	err := row.Scan(
		&t.ID, &t.FromAgencyID, &t.ToAgencyID, &t.Currency, &amount, &status, &t.Reference,
		&t.FailureReason, &t.InitiatedBy, &t.CreatedAt, &settledAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLiquidityTransferNotFound
		}
		return nil, err
	}
	t.Amount = numericToDecimal(amount)
	t.Status = domain.LiquidityStatus(status)
	t.SettledAt = pgToTimePtr(settledAt)
	return &t, nil
}
