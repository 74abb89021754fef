package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/approval"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// ApprovalUseCase lets a checker approve or reject pending transactions.
type ApprovalUseCase struct {
	txManager    TransactionManager
	approvalRepo ApprovalRepository
	txRepo       TransactionRepository
	entryRepo    LedgerEntryRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	audit        auditor
	poster       poster
	metrics      *metrics.Metrics
}

func NewApprovalUseCase(
	txManager TransactionManager,
	approvalRepo ApprovalRepository,
	txRepo TransactionRepository,
	entryRepo LedgerEntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *ApprovalUseCase {
	logger = logger.With().Str("component", "approvals").Logger()
	return &ApprovalUseCase{
		txManager:    txManager,
		approvalRepo: approvalRepo,
		txRepo:       txRepo,
		entryRepo:    entryRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		audit:        auditor{repo: auditRepo, idGen: idGen, metrics: metrics},
		poster:       poster{idGen: idGen, logger: logger, metrics: metrics},
		metrics:      metrics,
	}
}

// Get returns an approval case by ID.
func (uc *ApprovalUseCase) Get(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	return uc.approvalRepo.GetByID(ctx, id)
}

// List lists approval cases in a status.
func (uc *ApprovalUseCase) List(ctx context.Context, status domain.ApprovalStatus, limit, offset int) ([]domain.PendingTransaction, error) {
	if status == "" {
		status = domain.ApprovalPending
	}
	return uc.approvalRepo.ListByStatus(ctx, status, pageSize(limit), offset)
}

// Approve approves a pending case, completes its transaction and posts the
// ledger entries atomically.
func (uc *ApprovalUseCase) Approve(ctx context.Context, id string) (*domain.PendingTransaction, *domain.Transaction, error) {
	checker, err := uc.checker(ctx)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	var (
		decided *domain.PendingTransaction
		tx      *domain.Transaction
		posted  int
	)

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, dbTx Transaction) error {
		p, err := uc.approvalRepo.GetByIDForUpdate(txCtx, dbTx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		decided, err = approval.Approve(p, checker.ID, checker.Name, now)
		if err != nil {
			return err
		}

		tx, err = uc.txRepo.GetByIDForUpdate(txCtx, dbTx, p.TransactionID)
		if err != nil {
			return err
		}
		if err := tx.Complete(now); err != nil {
			return err
		}

		entries, err := uc.poster.post(tx, now)
		if err != nil {
			return err
		}
		posted = len(entries)

		if err := uc.approvalRepo.Update(txCtx, dbTx, decided); err != nil {
			return err
		}
		if err := uc.txRepo.Update(txCtx, dbTx, tx); err != nil {
			return err
		}
		if err := uc.entryRepo.CreateBatch(txCtx, dbTx, entries); err != nil {
			return err
		}

		if err := uc.outboxRepo.Create(txCtx, dbTx, decisionEvent(uc.idGen, decided, domain.EventTypeApprovalApproved, now)); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, dbTx, completedEvent(uc.idGen, tx, now)); err != nil {
			return err
		}

		return uc.audit.record(txCtx, dbTx, domain.AuditActionApprovalApprove, domain.AggregateTypeApproval, p.ID, p, decided)
	})
	if err != nil {
		return nil, nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalDecisions.WithLabelValues(string(domain.ApprovalApproved)).Inc()
	}
	uc.poster.completed(tx, posted, start)

	return decided, tx, nil
}

// Reject rejects a pending case and its transaction.
func (uc *ApprovalUseCase) Reject(ctx context.Context, id, reason string) (*domain.PendingTransaction, error) {
	checker, err := uc.checker(ctx)
	if err != nil {
		return nil, err
	}

	var decided *domain.PendingTransaction
	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, dbTx Transaction) error {
		p, err := uc.approvalRepo.GetByIDForUpdate(txCtx, dbTx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		decided, err = approval.Reject(p, checker.ID, checker.Name, reason, now)
		if err != nil {
			return err
		}

		tx, err := uc.txRepo.GetByIDForUpdate(txCtx, dbTx, p.TransactionID)
		if err != nil {
			return err
		}
		if tx.Status != domain.TransactionPendingApproval {
			return domain.ErrInvalidTransactionState
		}
		tx.Status = domain.TransactionRejected
		tx.UpdatedAt = now

		if err := uc.approvalRepo.Update(txCtx, dbTx, decided); err != nil {
			return err
		}
		if err := uc.txRepo.Update(txCtx, dbTx, tx); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, dbTx, decisionEvent(uc.idGen, decided, domain.EventTypeApprovalRejected, now)); err != nil {
			return err
		}

		return uc.audit.record(txCtx, dbTx, domain.AuditActionApprovalReject, domain.AggregateTypeApproval, p.ID, p, decided)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalDecisions.WithLabelValues(string(domain.ApprovalRejected)).Inc()
	}

	return decided, nil
}

func (uc *ApprovalUseCase) checker(ctx context.Context) (*domain.Actor, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanApprove() {
		return nil, domain.ErrInsufficientRole
	}
	return actor, nil
}

func decisionEvent(idGen IDGenerator, p *domain.PendingTransaction, eventType string, now time.Time) *domain.OutboxEvent {
	return newEvent(idGen, domain.AggregateTypeApproval, p.ID, eventType, map[string]any{
		"approval_id":    p.ID,
		"transaction_id": p.TransactionID,
		"decided_by":     p.ApprovedBy,
		"reason":         p.RejectionReason,
	}, now)
}
