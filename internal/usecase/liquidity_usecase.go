package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/liquidity"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// LiquidityUseCase moves liquidity between agencies in two phases.
type LiquidityUseCase struct {
	txManager    TransactionManager
	transferRepo LiquidityRepository
	balanceRepo  AgencyBalanceRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	locker       *KeyedLocker
	audit        auditor
	metrics      *metrics.Metrics
}

func NewLiquidityUseCase(
	txManager TransactionManager,
	transferRepo LiquidityRepository,
	balanceRepo AgencyBalanceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *LiquidityUseCase {
	return &LiquidityUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		balanceRepo:  balanceRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		locker:       NewKeyedLocker(),
		audit:        auditor{repo: auditRepo, idGen: idGen, metrics: metrics},
		metrics:      metrics,
	}
}

// SetLocker shares l with other use cases that change agency balances.
func (uc *LiquidityUseCase) SetLocker(l *KeyedLocker) {
	if l != nil {
		uc.locker = l
	}
}

// InitiateLiquidityInput is the input for requesting a liquidity move.
type InitiateLiquidityInput struct {
	FromAgencyID string
	ToAgencyID   string
	Currency     string
	Amount       decimal.Decimal
	Reference    string
}

// Initiate records a pending liquidity transfer. Balances are not touched.
func (uc *LiquidityUseCase) Initiate(ctx context.Context, input InitiateLiquidityInput) (*domain.LiquidityTransfer, error) {
	if err := checkRole(ctx, domain.Role.CanApprove); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t, err := liquidity.Initiate(liquidity.InitiateInput{
		ID:           uc.idGen.Generate(),
		FromAgencyID: input.FromAgencyID,
		ToAgencyID:   input.ToAgencyID,
		Currency:     input.Currency,
		Amount:       input.Amount,
		Reference:    input.Reference,
		InitiatedBy:  domain.ActorID(ctx),
	}, now)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		if err := uc.transferRepo.Create(txCtx, tx, t); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, liquidityEvent(uc.idGen, t, domain.EventTypeLiquidityInitiated)); err != nil {
			return err
		}
		return uc.audit.record(txCtx, tx, domain.AuditActionLiquidityInitiate, domain.AggregateTypeLiquidity, t.ID, nil, t)
	})
	if err != nil {
		return nil, err
	}

	uc.count(t.Status)

	return t, nil
}

// Settle applies a pending transfer to both agency balances. Balance rows
// are locked in agency order so concurrent settlements cannot deadlock.
func (uc *LiquidityUseCase) Settle(ctx context.Context, id string) (*liquidity.Settlement, error) {
	if err := checkRole(ctx, domain.Role.CanApprove); err != nil {
		return nil, err
	}

	pending, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := uc.locker.LockAll(
		balanceKey(pending.FromAgencyID, pending.Currency),
		balanceKey(pending.ToAgencyID, pending.Currency),
	)
	defer unlock()

	var settlement *liquidity.Settlement
	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		t, err := uc.transferRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		from, to, err := uc.lockBalances(txCtx, tx, t)
		if err != nil {
			return err
		}

		settlement, err = liquidity.Settle(t, *from, *to, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := uc.balanceRepo.Update(txCtx, tx, &settlement.From); err != nil {
			return err
		}
		if err := uc.balanceRepo.Update(txCtx, tx, &settlement.To); err != nil {
			return err
		}
		if err := uc.transferRepo.Update(txCtx, tx, settlement.Transfer); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, liquidityEvent(uc.idGen, settlement.Transfer, domain.EventTypeLiquiditySettled)); err != nil {
			return err
		}
		return uc.audit.record(txCtx, tx, domain.AuditActionLiquiditySettle, domain.AggregateTypeLiquidity, t.ID, t, settlement.Transfer)
	})
	if err != nil {
		return nil, err
	}

	uc.count(settlement.Transfer.Status)

	return settlement, nil
}

func (uc *LiquidityUseCase) lockBalances(ctx context.Context, tx Transaction, t *domain.LiquidityTransfer) (from, to *domain.AgencyBalance, err error) {
	if t.FromAgencyID < t.ToAgencyID {
		if from, err = uc.balanceRepo.GetForUpdate(ctx, tx, t.FromAgencyID, t.Currency); err != nil {
			return nil, nil, err
		}
		to, err = uc.balanceRepo.GetForUpdate(ctx, tx, t.ToAgencyID, t.Currency)
		return from, to, err
	}

	if to, err = uc.balanceRepo.GetForUpdate(ctx, tx, t.ToAgencyID, t.Currency); err != nil {
		return nil, nil, err
	}
	from, err = uc.balanceRepo.GetForUpdate(ctx, tx, t.FromAgencyID, t.Currency)
	return from, to, err
}

// Fail marks a pending transfer as failed.
func (uc *LiquidityUseCase) Fail(ctx context.Context, id, reason string) (*domain.LiquidityTransfer, error) {
	if err := checkRole(ctx, domain.Role.CanApprove); err != nil {
		return nil, err
	}

	var failed *domain.LiquidityTransfer
	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		t, err := uc.transferRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		failed, err = liquidity.Fail(t, reason, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := uc.transferRepo.Update(txCtx, tx, failed); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, liquidityEvent(uc.idGen, failed, domain.EventTypeLiquidityFailed)); err != nil {
			return err
		}
		return uc.audit.record(txCtx, tx, domain.AuditActionLiquidityFail, domain.AggregateTypeLiquidity, t.ID, t, failed)
	})
	if err != nil {
		return nil, err
	}

	uc.count(failed.Status)

	return failed, nil
}

// Get returns a liquidity transfer by ID.
func (uc *LiquidityUseCase) Get(ctx context.Context, id string) (*domain.LiquidityTransfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// Balances lists an agency's liquidity balances.
func (uc *LiquidityUseCase) Balances(ctx context.Context, agencyID string) ([]domain.AgencyBalance, error) {
	return uc.balanceRepo.ListByAgency(ctx, agencyID)
}

func (uc *LiquidityUseCase) count(status domain.LiquidityStatus) {
	if uc.metrics != nil {
		uc.metrics.LiquidityTransfers.WithLabelValues(string(status)).Inc()
	}
}

func liquidityEvent(idGen IDGenerator, t *domain.LiquidityTransfer, eventType string) *domain.OutboxEvent {
	return newEvent(idGen, domain.AggregateTypeLiquidity, t.ID, eventType, map[string]any{
		"transfer_id":    t.ID,
		"from_agency_id": t.FromAgencyID,
		"to_agency_id":   t.ToAgencyID,
		"currency":       t.Currency,
		"amount":         t.Amount.String(),
		"status":         string(t.Status),
		"failure_reason": t.FailureReason,
	}, t.UpdatedAt)
}
