package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const auditColumns = `id, user_id, action, resource_type, resource_id, request_id,
	before_state, after_state, status, error_message, created_at`

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	db DBTX
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit log outside any business transaction.
// Used for failures that roll the business transaction back.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return insertAudit(ctx, r.db, log)
}

// CreateTx inserts an audit log in the same transaction as the change it records.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return insertAudit(ctx, txConn(tx), log)
}

func insertAudit(ctx context.Context, db DBTX, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	before, err := marshalState(log.BeforeState)
	if err != nil {
		return err
	}
	after, err := marshalState(log.AfterState)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.ID,
		log.UserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		before,
		after,
		log.Status,
		log.ErrorMessage,
		log.CreatedAt,
	)
	return err
}

// List retrieves audit logs matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE TRUE`
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		query += fmt.Sprintf(cond, len(args))
	}

	if filter.UserID != "" {
		add(" AND user_id = $%d", filter.UserID)
	}
	if filter.Action != "" {
		add(" AND action = $%d", filter.Action)
	}
	if filter.ResourceType != "" {
		add(" AND resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		add(" AND resource_id = $%d", filter.ResourceID)
	}
	if filter.StartDate != nil {
		add(" AND created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add(" AND created_at <= $%d", *filter.EndDate)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		add(" LIMIT $%d", filter.Limit)
	}
	if filter.Offset > 0 {
		add(" OFFSET $%d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	logs, err := collect(rows, err, scanAuditLog)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.AuditLog, len(logs))
	for i := range logs {
		out[i] = &logs[i]
	}
	return out, nil
}

// GetByResourceID retrieves every audit log for a resource.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.List(ctx, domain.AuditFilter{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
}

func scanAuditLog(row rowScanner) (domain.AuditLog, error) {
	var (
		log           domain.AuditLog
		before, after []byte
	)
	err := row.Scan(
		&log.ID, &log.UserID, &log.Action, &log.ResourceType, &log.ResourceID, &log.RequestID,
		&before, &after, &log.Status, &log.ErrorMessage, &log.CreatedAt,
	)
	if err != nil {
		return log, err
	}
	if len(before) > 0 {
		_ = json.Unmarshal(before, &log.BeforeState)
	}
	if len(after) > 0 {
		_ = json.Unmarshal(after, &log.AfterState)
	}
	return log, nil
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}
