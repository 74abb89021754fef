package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/reconciliation"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// ReconciliationUseCase records till cash movements and reconciles tills
// against counted cash.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	recRepo     ReconciliationRepository
	cashRepo    CashOperationRepository
	txRepo      TransactionRepository
	balanceRepo AgencyBalanceRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	locker      *KeyedLocker
	audit       auditor
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txManager TransactionManager,
	recRepo ReconciliationRepository,
	cashRepo CashOperationRepository,
	txRepo TransactionRepository,
	balanceRepo AgencyBalanceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		recRepo:     recRepo,
		cashRepo:    cashRepo,
		txRepo:      txRepo,
		balanceRepo: balanceRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrier,
		locker:      NewKeyedLocker(),
		audit:       auditor{repo: auditRepo, idGen: idGen, metrics: metrics},
		metrics:     metrics,
	}
}

// SetLocker shares l with other use cases that change agency balances.
func (uc *ReconciliationUseCase) SetLocker(l *KeyedLocker) {
	if l != nil {
		uc.locker = l
	}
}

// CashOperationInput is the input for recording a till cash movement.
type CashOperationInput struct {
	AgencyID    string                   `json:"agency_id" validate:"required"`
	AgentID     string                   `json:"agent_id" validate:"required"`
	TillID      string                   `json:"till_id" validate:"required"`
	Type        domain.CashOperationType `json:"type" validate:"required,oneof=cash_in cash_out"`
	Currency    string                   `json:"currency" validate:"required,currency"`
	Amount      decimal.Decimal          `json:"amount"`
	Description string                   `json:"description"`
}

// RecordCashOperation stores a cash movement and applies it to the agency's
// liquidity balance in the same currency.
func (uc *ReconciliationUseCase) RecordCashOperation(ctx context.Context, input CashOperationInput) (*domain.CashOperation, error) {
	input.Currency = domain.NormalizeCurrency(input.Currency)

	verr := &domain.ValidationError{}
	if err := domain.MergeValidation(verr, domain.ValidateStruct(input)); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		verr.Add("amount", "must be positive")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	op := &domain.CashOperation{
		ID:          uc.idGen.Generate(),
		AgencyID:    input.AgencyID,
		AgentID:     input.AgentID,
		TillID:      input.TillID,
		Type:        input.Type,
		Currency:    input.Currency,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
	}

	unlock := uc.locker.Lock(balanceKey(op.AgencyID, op.Currency))
	defer unlock()

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		balance, err := uc.balanceRepo.GetForUpdate(txCtx, tx, op.AgencyID, op.Currency)
		if err != nil {
			return err
		}

		if op.Type == domain.CashOut {
			if err := balance.ValidateDebit(op.Amount); err != nil {
				return err
			}
			balance.Balance = balance.ApplyDebit(op.Amount)
		} else {
			balance.Balance = balance.ApplyCredit(op.Amount)
		}
		balance.Version++
		balance.UpdatedAt = now

		if err := uc.cashRepo.Create(txCtx, tx, op); err != nil {
			return err
		}
		if err := uc.balanceRepo.Update(txCtx, tx, balance); err != nil {
			return err
		}

		return uc.audit.record(txCtx, tx, domain.AuditActionCashOperation, "cash_operation", op.ID, nil, op)
	})
	if err != nil {
		return nil, err
	}

	return op, nil
}

// CreateEntryInput is the input for reconciling a till.
type CreateEntryInput struct {
	AgencyID   string
	AgentID    string
	TillID     string
	Currency   string
	ActualCash decimal.Decimal
}

// CreateEntry computes the till's theoretical balance from the agent's
// transactions and the till's cash operations, and stores the comparison
// with counted cash.
func (uc *ReconciliationUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.ReconciliationEntry, error) {
	currency := domain.NormalizeCurrency(input.Currency)

	txs, err := uc.txRepo.List(ctx, domain.TransactionFilter{
		AgencyID: input.AgencyID,
		AgentID:  input.AgentID,
		Currency: currency,
	})
	if err != nil {
		return nil, err
	}

	ops, err := uc.cashRepo.ListByTill(ctx, input.AgencyID, input.AgentID, input.TillID, currency)
	if err != nil {
		return nil, err
	}

	entry, err := reconciliation.BuildEntry(reconciliation.Input{
		ID:         uc.idGen.Generate(),
		AgencyID:   input.AgencyID,
		AgentID:    input.AgentID,
		TillID:     input.TillID,
		Currency:   currency,
		ActualCash: input.ActualCash,
	}, txs, ops, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		if err := uc.recRepo.Create(txCtx, tx, entry); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, reconciliationEvent(uc.idGen, entry, domain.EventTypeReconciliationCreated)); err != nil {
			return err
		}
		return uc.audit.record(txCtx, tx, domain.AuditActionReconciliationBuild, domain.AggregateTypeReconciliation, entry.ID, nil, entry)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationEntries.WithLabelValues(string(entry.Status)).Inc()
	}

	return entry, nil
}

// Document attaches the reviewer's explanation to an unresolved variance.
func (uc *ReconciliationUseCase) Document(ctx context.Context, id, notes string) (*domain.ReconciliationEntry, error) {
	return uc.review(ctx, id, func(e *domain.ReconciliationEntry, reviewer string, now time.Time) (*domain.ReconciliationEntry, error) {
		return reconciliation.Document(e, reviewer, notes, now)
	})
}

// Resolve closes a documented variance.
func (uc *ReconciliationUseCase) Resolve(ctx context.Context, id string) (*domain.ReconciliationEntry, error) {
	return uc.review(ctx, id, reconciliation.Resolve)
}

func (uc *ReconciliationUseCase) review(
	ctx context.Context,
	id string,
	transition func(*domain.ReconciliationEntry, string, time.Time) (*domain.ReconciliationEntry, error),
) (*domain.ReconciliationEntry, error) {
	if err := checkRole(ctx, domain.Role.CanApprove); err != nil {
		return nil, err
	}
	reviewer := domain.ActorID(ctx)

	var updated *domain.ReconciliationEntry
	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		entry, err := uc.recRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		updated, err = transition(entry, reviewer, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := uc.recRepo.Update(txCtx, tx, updated); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, reconciliationEvent(uc.idGen, updated, domain.EventTypeReconciliationReviewed)); err != nil {
			return err
		}
		return uc.audit.record(txCtx, tx, domain.AuditActionReconciliationEdit, domain.AggregateTypeReconciliation, id, entry, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Report builds the reconciliation report of an agency over [from, to).
func (uc *ReconciliationUseCase) Report(ctx context.Context, filter domain.ReconciliationFilter) (domain.ReconciliationReport, error) {
	entries, err := uc.recRepo.List(ctx, filter)
	if err != nil {
		return domain.ReconciliationReport{}, err
	}
	return reconciliation.BuildReport(filter.AgencyID, filter.From, filter.To, entries, time.Now().UTC()), nil
}

func reconciliationEvent(idGen IDGenerator, e *domain.ReconciliationEntry, eventType string) *domain.OutboxEvent {
	return newEvent(idGen, domain.AggregateTypeReconciliation, e.ID, eventType, map[string]any{
		"reconciliation_id": e.ID,
		"agency_id":         e.AgencyID,
		"agent_id":          e.AgentID,
		"till_id":           e.TillID,
		"currency":          e.Currency,
		"variance":          e.Variance.String(),
		"status":            string(e.Status),
	}, e.UpdatedAt)
}
