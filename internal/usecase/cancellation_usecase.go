package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/cancellation"
	"github.com/iho/goremit/internal/engine/ledger"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// CancellationUseCase authorizes and executes transaction cancellations.
type CancellationUseCase struct {
	txManager  TransactionManager
	cancelRepo CancellationRepository
	txRepo     TransactionRepository
	entryRepo  LedgerEntryRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	retrier    Retrier
	audit      auditor
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	policy     cancellation.Policy
}

func NewCancellationUseCase(
	txManager TransactionManager,
	cancelRepo CancellationRepository,
	txRepo TransactionRepository,
	entryRepo LedgerEntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *CancellationUseCase {
	return &CancellationUseCase{
		txManager:  txManager,
		cancelRepo: cancelRepo,
		txRepo:     txRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		retrier:    retrier,
		audit:      auditor{repo: auditRepo, idGen: idGen, metrics: metrics},
		logger:     logger.With().Str("component", "cancellations").Logger(),
		metrics:    metrics,
		policy:     cancellation.DefaultPolicy(),
	}
}

// SetWindow overrides the cancellation window.
func (uc *CancellationUseCase) SetWindow(window time.Duration) {
	if window > 0 {
		uc.policy.Window = window
	}
}

// CanCancel reports whether the authenticated actor may cancel a transaction.
func (uc *CancellationUseCase) CanCancel(ctx context.Context, transactionID string) (cancellation.Decision, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return cancellation.Decision{}, err
	}

	tx, err := uc.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return cancellation.Decision{}, err
	}

	return uc.policy.CanCancel(tx, *actor, time.Now().UTC()), nil
}

// CancelInput is the input for cancelling a transaction.
type CancelInput struct {
	TransactionID string
	Reason        string
}

// CancelResult is a cancellation with the reversal transaction it booked.
type CancelResult struct {
	Cancellation *domain.Cancellation
	Reversal     *domain.Transaction
}

// Cancel cancels a completed transaction: it books the reversal transaction,
// reverses the original ledger entries and marks the original cancelled. When
// the entries cannot be reversed the cancellation is stored as
// completed_unposted and reported to operators.
func (uc *CancellationUseCase) Cancel(ctx context.Context, input CancelInput) (*CancelResult, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		result  *CancelResult
		denied  bool
		postErr error
	)

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, dbTx Transaction) error {
		denied, postErr = false, nil

		original, err := uc.txRepo.GetByIDForUpdate(txCtx, dbTx, input.TransactionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if d := uc.policy.CanCancel(original, *actor, now); !d.Allowed {
			denied = true
			return fmt.Errorf("%w: %s", domain.ErrCancellationNotAllowed, d.Reason)
		}

		reversal, err := cancellation.BuildReversal(original, actor.ID, actor.Name, input.Reason, now)
		if err != nil {
			return err
		}

		c := &domain.Cancellation{
			ID:                    uc.idGen.Generate(),
			OriginalTransactionID: original.ID,
			ReversalTransactionID: reversal.ID,
			AgencyID:              original.AgencyID,
			Reason:                reversal.Reason,
			CancelledBy:           actor.ID,
			CancelledByName:       actor.Name,
			Status:                domain.CancellationReversalPending,
			CreatedAt:             now,
			UpdatedAt:             now,
		}

		var reversed []domain.LedgerEntry
		reversed, postErr = uc.reverse(txCtx, original.ID, reversal.ID, now)
		if postErr != nil {
			err = c.MarkUnposted(postErr, now)
		} else {
			err = c.MarkPosted(now)
		}
		if err != nil {
			return err
		}

		before := *original
		original.Status = domain.TransactionCancelled
		original.UpdatedAt = now
		reversalTx := reversal.AsTransaction()

		if err := uc.txRepo.Update(txCtx, dbTx, original); err != nil {
			return err
		}
		if err := uc.txRepo.Create(txCtx, dbTx, reversalTx); err != nil {
			return err
		}
		if err := uc.cancelRepo.Create(txCtx, dbTx, c); err != nil {
			return err
		}
		if len(reversed) > 0 {
			if err := uc.entryRepo.CreateBatch(txCtx, dbTx, reversed); err != nil {
				return err
			}
		}

		if err := uc.outboxRepo.Create(txCtx, dbTx, cancellationEvent(uc.idGen, c, now)); err != nil {
			return err
		}
		if err := uc.audit.record(txCtx, dbTx, domain.AuditActionCancellationCreate, domain.AggregateTypeTransaction, original.ID, &before, original); err != nil {
			return err
		}

		result = &CancelResult{Cancellation: c, Reversal: reversalTx}
		return nil
	})
	if err != nil {
		if denied && uc.metrics != nil {
			uc.metrics.CancellationsDenied.WithLabelValues(string(actor.Role)).Inc()
		}
		return nil, err
	}

	if postErr != nil {
		uc.unposted(result.Cancellation, postErr)
	} else if uc.metrics != nil {
		uc.metrics.CancellationsCompleted.Inc()
	}

	return result, nil
}

// RetryPosting reverses the ledger entries of a completed_unposted
// cancellation and moves it to completed.
func (uc *CancellationUseCase) RetryPosting(ctx context.Context, cancellationID string) (*domain.Cancellation, error) {
	if err := checkRole(ctx, domain.Role.CanApprove); err != nil {
		return nil, err
	}

	var c *domain.Cancellation
	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, dbTx Transaction) error {
		var err error
		c, err = uc.cancelRepo.GetByIDForUpdate(txCtx, dbTx, cancellationID)
		if err != nil {
			return err
		}
		if c.Status != domain.CancellationCompletedUnposted {
			return fmt.Errorf("%w: %s is %s", domain.ErrInvalidCancellationState, c.ID, c.Status)
		}

		now := time.Now().UTC()
		reversed, err := uc.reverse(txCtx, c.OriginalTransactionID, c.ReversalTransactionID, now)
		if err != nil {
			return err
		}

		before := *c
		if err := c.MarkPosted(now); err != nil {
			return err
		}

		if err := uc.entryRepo.CreateBatch(txCtx, dbTx, reversed); err != nil {
			return err
		}
		if err := uc.cancelRepo.Update(txCtx, dbTx, c); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, dbTx, cancellationEvent(uc.idGen, c, now)); err != nil {
			return err
		}

		return uc.audit.record(txCtx, dbTx, domain.AuditActionCancellationRepost, domain.AggregateTypeCancellation, c.ID, &before, c)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().Str("cancellation_id", c.ID).Msg("reversal postings recovered")
	if uc.metrics != nil {
		uc.metrics.CancellationsCompleted.Inc()
	}

	return c, nil
}

// Get returns a cancellation by ID.
func (uc *CancellationUseCase) Get(ctx context.Context, id string) (*domain.Cancellation, error) {
	return uc.cancelRepo.GetByID(ctx, id)
}

// ListUnposted lists cancellations whose reversal postings are missing.
func (uc *CancellationUseCase) ListUnposted(ctx context.Context, limit, offset int) ([]domain.Cancellation, error) {
	return uc.cancelRepo.ListByStatus(ctx, domain.CancellationCompletedUnposted, pageSize(limit), offset)
}

func (uc *CancellationUseCase) reverse(ctx context.Context, originalID, reversalID string, now time.Time) ([]domain.LedgerEntry, error) {
	entries, err := uc.entryRepo.GetByTransaction(ctx, originalID)
	if err != nil {
		return nil, err
	}

	reversed, err := ledger.Reverse(entries, reversalID, uc.idGen.Generate, now)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckBalanced(reversed); err != nil {
		return nil, err
	}

	return reversed, nil
}

func (uc *CancellationUseCase) unposted(c *domain.Cancellation, cause error) {
	uc.logger.Error().Err(cause).
		Str("cancellation_id", c.ID).
		Str("transaction_id", c.OriginalTransactionID).
		Msg("cancellation completed without reversal postings")
	if uc.metrics != nil {
		uc.metrics.CancellationsUnposted.Inc()
	}
}

func cancellationEvent(idGen IDGenerator, c *domain.Cancellation, now time.Time) *domain.OutboxEvent {
	eventType := domain.EventTypeCancellationCompleted
	if c.Status == domain.CancellationCompletedUnposted {
		eventType = domain.EventTypeCancellationUnposted
	}
	return newEvent(idGen, domain.AggregateTypeCancellation, c.ID, eventType, map[string]any{
		"cancellation_id":         c.ID,
		"original_transaction_id": c.OriginalTransactionID,
		"reversal_transaction_id": c.ReversalTransactionID,
		"agency_id":               c.AgencyID,
		"status":                  string(c.Status),
		"posting_error":           c.PostingError,
	}, now)
}
