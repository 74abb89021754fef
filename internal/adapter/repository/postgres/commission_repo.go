package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const commissionTierColumns = `id, name, transaction_type, min_amount, max_amount, type, percentage, fixed_amount, tier_order, is_active, created_at, updated_at`

// CommissionTierRepository implements usecase.CommissionTierRepository.
type CommissionTierRepository struct {
	db DBTX
}

// NewCommissionTierRepository creates a new CommissionTierRepository.
func NewCommissionTierRepository(db DBTX) *CommissionTierRepository {
	return &CommissionTierRepository{db: db}
}

// Create inserts a tier within a transaction.
func (r *CommissionTierRepository) Create(ctx context.Context, tx usecase.Transaction, tier *domain.CommissionTier) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO commission_tiers (`+commissionTierColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tier.ID,
		tier.Name,
		tier.TransactionType,
		decimalToNumeric(tier.MinAmount),
		decimalPtrToNumeric(tier.MaxAmount),
		string(tier.Type),
		decimalToNumeric(tier.Percentage),
		decimalToNumeric(tier.FixedAmount),
		tier.Order,
		tier.IsActive,
		tier.CreatedAt,
		tier.UpdatedAt,
	)
	return err
}

// Update stores a tier's bounds, formula and state.
func (r *CommissionTierRepository) Update(ctx context.Context, tx usecase.Transaction, tier *domain.CommissionTier) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE commission_tiers
		SET name = $2, min_amount = $3, max_amount = $4, type = $5, percentage = $6,
		    fixed_amount = $7, tier_order = $8, is_active = $9, updated_at = $10
		WHERE id = $1`,
		tier.ID,
		tier.Name,
		decimalToNumeric(tier.MinAmount),
		decimalPtrToNumeric(tier.MaxAmount),
		string(tier.Type),
		decimalToNumeric(tier.Percentage),
		decimalToNumeric(tier.FixedAmount),
		tier.Order,
		tier.IsActive,
		tier.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTierNotFound
	}
	return nil
}

// ListForUpdate locks and lists every tier.
func (r *CommissionTierRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]domain.CommissionTier, error) {
	rows, err := txConn(tx).Query(ctx, `
		SELECT `+commissionTierColumns+` FROM commission_tiers
		ORDER BY transaction_type, min_amount
		FOR UPDATE`)
	return collect(rows, err, scanCommissionTier)
}

// List lists every tier ordered by lower bound.
func (r *CommissionTierRepository) List(ctx context.Context) ([]domain.CommissionTier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+commissionTierColumns+` FROM commission_tiers
		ORDER BY transaction_type, min_amount`)
	return collect(rows, err, scanCommissionTier)
}

func scanCommissionTier(row rowScanner) (domain.CommissionTier, error) {
	var (
		t                         domain.CommissionTier
		typ                       string
		minAmount, maxAmount, pct pgtype.Numeric
		fixed                     pgtype.Numeric
	)
	err := row.Scan(&t.ID, &t.Name, &t.TransactionType, &minAmount, &maxAmount, &typ, &pct, &fixed, &t.Order, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.Type = domain.CommissionType(typ)
	t.MinAmount = numericToDecimal(minAmount)
	t.MaxAmount = numericToDecimalPtr(maxAmount)
	t.Percentage = numericToDecimal(pct)
	t.FixedAmount = numericToDecimal(fixed)
	return t, nil
}
