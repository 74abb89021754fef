package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const exchangeRateColumns = `id, from_currency, to_currency, base_rate, total_spread, bid_rate, ask_rate, is_active, created_at, updated_at`

// ExchangeRateRepository implements usecase.ExchangeRateRepository.
type ExchangeRateRepository struct {
	db DBTX
}

// NewExchangeRateRepository creates a new ExchangeRateRepository.
func NewExchangeRateRepository(db DBTX) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Create inserts a rate within a transaction.
func (r *ExchangeRateRepository) Create(ctx context.Context, tx usecase.Transaction, rate *domain.ExchangeRateSetting) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO exchange_rates (`+exchangeRateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rate.ID,
		rate.FromCurrency,
		rate.ToCurrency,
		decimalToNumeric(rate.BaseRate),
		decimalToNumeric(rate.TotalSpread),
		decimalToNumeric(rate.BidRate),
		decimalToNumeric(rate.AskRate),
		rate.IsActive,
		rate.CreatedAt,
		rate.UpdatedAt,
	)
	return err
}

// DeactivatePair deactivates the active quote of a pair, if any.
func (r *ExchangeRateRepository) DeactivatePair(ctx context.Context, tx usecase.Transaction, from, to string, updatedAt time.Time) error {
	_, err := txConn(tx).Exec(ctx, `
		UPDATE exchange_rates SET is_active = FALSE, updated_at = $3
		WHERE from_currency = $1 AND to_currency = $2 AND is_active`,
		from, to, updatedAt,
	)
	return err
}

// ListActive lists every active quote.
func (r *ExchangeRateRepository) ListActive(ctx context.Context) ([]domain.ExchangeRateSetting, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+exchangeRateColumns+` FROM exchange_rates
		WHERE is_active
		ORDER BY from_currency, to_currency`)
	return collect(rows, err, scanExchangeRate)
}

// List lists stored quotes, newest first.
func (r *ExchangeRateRepository) List(ctx context.Context, limit, offset int) ([]domain.ExchangeRateSetting, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+exchangeRateColumns+` FROM exchange_rates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return collect(rows, err, scanExchangeRate)
}

func scanExchangeRate(row rowScanner) (domain.ExchangeRateSetting, error) {
	var (
		r                      domain.ExchangeRateSetting
		base, spread, bid, ask pgtype.Numeric
	)
	err := row.Scan(&r.ID, &r.FromCurrency, &r.ToCurrency, &base, &spread, &bid, &ask, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	r.BaseRate = numericToDecimal(base)
	r.TotalSpread = numericToDecimal(spread)
	r.BidRate = numericToDecimal(bid)
	r.AskRate = numericToDecimal(ask)
	return r, nil
}
