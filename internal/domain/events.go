package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted       = "transaction.completed"
	EventTypeTransactionPendingApproval = "transaction.pending_approval"
	EventTypeApprovalApproved           = "approval.approved"
	EventTypeApprovalRejected           = "approval.rejected"
	EventTypeCancellationCompleted      = "cancellation.completed"
	EventTypeCancellationUnposted       = "cancellation.unposted"
	EventTypeReconciliationCreated      = "reconciliation.created"
	EventTypeReconciliationReviewed     = "reconciliation.reviewed"
	EventTypeLiquidityInitiated         = "liquidity.initiated"
	EventTypeLiquiditySettled           = "liquidity.settled"
	EventTypeLiquidityFailed            = "liquidity.failed"
	EventTypeSettingsChanged            = "settings.changed"
)

// Aggregate types
const (
	AggregateTypeTransaction    = "transaction"
	AggregateTypeApproval       = "approval"
	AggregateTypeCancellation   = "cancellation"
	AggregateTypeReconciliation = "reconciliation"
	AggregateTypeLiquidity      = "liquidity_transfer"
	AggregateTypeSettings       = "settings"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
