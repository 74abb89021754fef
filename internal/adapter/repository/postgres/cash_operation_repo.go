package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

// CashOperationRepository implements usecase.CashOperationRepository.
type CashOperationRepository struct {
	db DBTX
}

// NewCashOperationRepository creates a new CashOperationRepository.
func NewCashOperationRepository(db DBTX) *CashOperationRepository {
	return &CashOperationRepository{db: db}
}

// Create inserts a cash operation within a transaction.
func (r *CashOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.CashOperation) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO cash_operations (id, agency_id, agent_id, till_id, type, currency, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		op.ID,
		op.AgencyID,
		op.AgentID,
		op.TillID,
		string(op.Type),
		op.Currency,
		decimalToNumeric(op.Amount),
		op.Description,
		op.CreatedAt,
	)
	return err
}

// ListByTill lists the operations recorded on one till in one currency.
func (r *CashOperationRepository) ListByTill(ctx context.Context, agencyID, agentID, tillID, currency string) ([]domain.CashOperation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, agency_id, agent_id, till_id, type, currency, amount, description, created_at
		FROM cash_operations
		WHERE agency_id = $1 AND agent_id = $2 AND till_id = $3 AND currency = $4
		ORDER BY created_at`, agencyID, agentID, tillID, currency)
	return collect(rows, err, func(row rowScanner) (domain.CashOperation, error) {
		var (
			op     domain.CashOperation
			typ    string
			amount pgtype.Numeric
		)
		err := row.Scan(&op.ID, &op.AgencyID, &op.AgentID, &op.TillID, &typ, &op.Currency, &amount, &op.Description, &op.CreatedAt)
		op.Type = domain.CashOperationType(typ)
		op.Amount = numericToDecimal(amount)
		return op, err
	})
}
