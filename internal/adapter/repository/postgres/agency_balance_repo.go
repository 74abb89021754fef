package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

// AgencyBalanceRepository implements usecase.AgencyBalanceRepository.
type AgencyBalanceRepository struct {
	db DBTX
}

// NewAgencyBalanceRepository creates a new AgencyBalanceRepository.
func NewAgencyBalanceRepository(db DBTX) *AgencyBalanceRepository {
	return &AgencyBalanceRepository{db: db}
}

// GetForUpdate locks the balance row, creating a zero balance if absent.
func (r *AgencyBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, agencyID, currency string) (*domain.AgencyBalance, error) {
	conn := txConn(tx)

	_, err := conn.Exec(ctx, `
		INSERT INTO agency_balances (agency_id, currency, balance, version, updated_at)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (agency_id, currency) DO NOTHING`, agencyID, currency, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	row := conn.QueryRow(ctx, `
		SELECT agency_id, currency, balance, version, updated_at
		FROM agency_balances
		WHERE agency_id = $1 AND currency = $2
		FOR UPDATE`, agencyID, currency)
	b, err := scanAgencyBalance(row)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update stores a balance read with GetForUpdate.
func (r *AgencyBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.AgencyBalance) error {
	tag, err := txConn(tx).Exec(ctx, `
		UPDATE agency_balances SET balance = $3, version = GREATEST(version + 1, $4), updated_at = $5
		WHERE agency_id = $1 AND currency = $2`,
		balance.AgencyID,
		balance.Currency,
		decimalToNumeric(balance.Balance),
		balance.Version,
		balance.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByAgency lists every currency balance of an agency.
func (r *AgencyBalanceRepository) ListByAgency(ctx context.Context, agencyID string) ([]domain.AgencyBalance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT agency_id, currency, balance, version, updated_at
		FROM agency_balances
		WHERE agency_id = $1
		ORDER BY currency`, agencyID)
	return collect(rows, err, scanAgencyBalance)
}

func scanAgencyBalance(row rowScanner) (domain.AgencyBalance, error) {
	var (
		b       domain.AgencyBalance
		balance pgtype.Numeric
	)
	err := row.Scan(&b.AgencyID, &b.Currency, &balance, &b.Version, &b.UpdatedAt)
	b.Balance = numericToDecimal(balance)
	return b, err
}
