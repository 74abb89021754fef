package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

// ApprovalRuleRepository implements usecase.ApprovalRuleRepository.
type ApprovalRuleRepository struct {
	db DBTX
}

// NewApprovalRuleRepository creates a new ApprovalRuleRepository.
func NewApprovalRuleRepository(db DBTX) *ApprovalRuleRepository {
	return &ApprovalRuleRepository{db: db}
}

// Create inserts an approval rule within a transaction.
func (r *ApprovalRuleRepository) Create(ctx context.Context, tx usecase.Transaction, rule *domain.ApprovalRule) error {
	_, err := txConn(tx).Exec(ctx, `
		INSERT INTO approval_rules (id, name, transaction_type, currency, max_amount, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rule.ID,
		rule.Name,
		rule.TransactionType,
		rule.Currency,
		decimalToNumeric(rule.MaxAmount),
		rule.IsActive,
		rule.CreatedAt,
	)
	return err
}

// List lists every approval rule, lowest threshold first.
func (r *ApprovalRuleRepository) List(ctx context.Context) ([]domain.ApprovalRule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, transaction_type, currency, max_amount, is_active, created_at
		FROM approval_rules
		ORDER BY max_amount, created_at`)
	return collect(rows, err, func(row rowScanner) (domain.ApprovalRule, error) {
		var (
			rule domain.ApprovalRule
			max  pgtype.Numeric
		)
		err := row.Scan(&rule.ID, &rule.Name, &rule.TransactionType, &rule.Currency, &max, &rule.IsActive, &rule.CreatedAt)
		rule.MaxAmount = numericToDecimal(max)
		return rule, err
	})
}
