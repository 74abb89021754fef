package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const feeColumns = `id, name, type, fixed_amount, percentage, currency, transaction_type, is_active, created_at, updated_at`

// FeeRepository implements usecase.FeeRepository.
type FeeRepository struct {
	db DBTX
}

// NewFeeRepository creates a new FeeRepository.
func NewFeeRepository(db DBTX) *FeeRepository {
	return &FeeRepository{db: db}
}

// Create inserts a fee setting within a transaction.
func (r *FeeRepository) Create(ctx context.Context, tx usecase.Transaction, fee *domain.FeeSetting) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO fee_settings (`+feeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		fee.ID,
		fee.Name,
		string(fee.Type),
		decimalToNumeric(fee.FixedAmount),
		decimalToNumeric(fee.Percentage),
		fee.Currency,
		fee.TransactionType,
		fee.IsActive,
		fee.CreatedAt,
		fee.UpdatedAt,
	)
	return err
}

// List lists every fee setting.
func (r *FeeRepository) List(ctx context.Context) ([]domain.FeeSetting, error) {
	rows, err := r.db.Query(ctx, `SELECT `+feeColumns+` FROM fee_settings ORDER BY created_at`)
	return collect(rows, err, scanFee)
}

func scanFee(row rowScanner) (domain.FeeSetting, error) {
	var (
		f          domain.FeeSetting
		typ        string
		fixed, pct pgtype.Numeric
	)
	err := row.Scan(&f.ID, &f.Name, &typ, &fixed, &pct, &f.Currency, &f.TransactionType, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	f.Type = domain.FeeType(typ)
	f.FixedAmount = numericToDecimal(fixed)
	f.Percentage = numericToDecimal(pct)
	return f, nil
}
