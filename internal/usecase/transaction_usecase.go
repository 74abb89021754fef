package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/approval"
	"github.com/iho/goremit/internal/engine/ledger"
	"github.com/iho/goremit/internal/engine/pricing"
	"github.com/iho/goremit/internal/engine/rate"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// PricingTables is the configuration a transaction is priced against.
type PricingTables struct {
	Rates []domain.ExchangeRateSetting
	Tiers []domain.CommissionTier
	Fees  []domain.FeeSetting
	Rules []domain.ApprovalRule
}

// TableSource loads the current pricing tables.
type TableSource interface {
	Tables(ctx context.Context) (*PricingTables, error)
}

// Tables loads the current pricing tables, rates from the cache.
func (uc *SettingsUseCase) Tables(ctx context.Context) (*PricingTables, error) {
	rates, err := uc.ActiveRates(ctx)
	if err != nil {
		return nil, err
	}
	tiers, err := uc.tierRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	fees, err := uc.feeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := uc.ruleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &PricingTables{Rates: rates, Tiers: tiers, Fees: fees, Rules: rules}, nil
}

// TransactionUseCase prices, submits and books transactions.
type TransactionUseCase struct {
	txManager    TransactionManager
	tables       TableSource
	txRepo       TransactionRepository
	approvalRepo ApprovalRepository
	entryRepo    LedgerEntryRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	audit        auditor
	poster       poster
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	margin       *rate.Margin
}

func NewTransactionUseCase(
	txManager TransactionManager,
	tables TableSource,
	txRepo TransactionRepository,
	approvalRepo ApprovalRepository,
	entryRepo LedgerEntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *TransactionUseCase {
	uc := &TransactionUseCase{
		txManager:    txManager,
		tables:       tables,
		txRepo:       txRepo,
		approvalRepo: approvalRepo,
		entryRepo:    entryRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		audit:        auditor{repo: auditRepo, idGen: idGen, metrics: metrics},
		logger:       logger.With().Str("component", "transactions").Logger(),
		metrics:      metrics,
	}
	uc.poster = poster{idGen: idGen, logger: uc.logger, metrics: metrics}
	return uc
}

// SetMargin overrides the default sell and buy margins.
func (uc *TransactionUseCase) SetMargin(m rate.Margin) {
	uc.margin = &m
}

// PriceInput is the input for pricing a transaction.
type PriceInput struct {
	Amount       decimal.Decimal        `json:"amount"`
	FromCurrency string                 `json:"from_currency"`
	ToCurrency   string                 `json:"to_currency"`
	Type         domain.TransactionType `json:"type"`
	Direction    domain.Direction       `json:"direction"`
	Overrides    pricing.Overrides      `json:"-"`
}

// Price prices a transaction against the current tables without storing it.
func (uc *TransactionUseCase) Price(ctx context.Context, input PriceInput) (*pricing.Result, error) {
	tables, err := uc.tables.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return uc.price(input, tables)
}

func (uc *TransactionUseCase) price(input PriceInput, tables *PricingTables) (*pricing.Result, error) {
	res, err := pricing.Price(pricing.Request{
		Amount:       input.Amount,
		FromCurrency: input.FromCurrency,
		ToCurrency:   input.ToCurrency,
		Type:         input.Type,
		Direction:    input.Direction,
		Rates:        tables.Rates,
		Tiers:        tables.Tiers,
		Fees:         tables.Fees,
		Margin:       uc.margin,
		Overrides:    input.Overrides,
	})
	if err != nil {
		uc.pricingFailed(input, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsPriced.Inc()
	}

	return res, nil
}

func (uc *TransactionUseCase) pricingFailed(input PriceInput, err error) {
	reason := "validation"
	if errors.Is(err, domain.ErrRateNotFound) {
		reason = "missing_rate"
		pair := fmt.Sprintf("%s/%s", domain.NormalizeCurrency(input.FromCurrency), domain.NormalizeCurrency(input.ToCurrency))
		uc.logger.Warn().Str("pair", pair).Msg("no active exchange rate")
		if uc.metrics != nil {
			uc.metrics.MissingRates.WithLabelValues(pair).Inc()
		}
	}
	if uc.metrics != nil {
		uc.metrics.TransactionErrors.WithLabelValues(reason).Inc()
	}
}

// SubmitTransactionInput is the input for submitting a transaction.
type SubmitTransactionInput struct {
	AgencyID     string `json:"agency_id" validate:"required"`
	AgentID      string `json:"agent_id" validate:"required"`
	TillID       string `json:"till_id"`
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
	PriceInput
}

// Submit prices and stores a transaction. When an approval rule matches, the
// transaction waits in pending_approval; otherwise it completes and its
// ledger entries are posted in the same database transaction.
func (uc *TransactionUseCase) Submit(ctx context.Context, input SubmitTransactionInput) (*domain.Transaction, error) {
	start := time.Now()

	verr := &domain.ValidationError{}
	if err := domain.MergeValidation(verr, domain.ValidateStruct(input)); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	tables, err := uc.tables.Tables(ctx)
	if err != nil {
		return nil, err
	}

	res, err := uc.price(input.PriceInput, tables)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		AgencyID:     input.AgencyID,
		AgentID:      input.AgentID,
		TillID:       input.TillID,
		SenderName:   input.SenderName,
		ReceiverName: input.ReceiverName,
		Status:       domain.TransactionPending,
		CreatedBy:    domain.ActorID(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res.ApplyTo(tx)

	req := approval.CheckRequiresApproval(tx, tables.Rules)
	if req.Required {
		return uc.submitForApproval(ctx, tx, req.Rule, now)
	}

	if err := tx.Complete(now); err != nil {
		return nil, err
	}
	entries, err := uc.poster.post(tx, now)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, dbTx Transaction) error {
		if err := uc.txRepo.Create(txCtx, dbTx, tx); err != nil {
			return err
		}
		if err := uc.entryRepo.CreateBatch(txCtx, dbTx, entries); err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(txCtx, dbTx, completedEvent(uc.idGen, tx, now)); err != nil {
			return err
		}
		return uc.audit.record(txCtx, dbTx, domain.AuditActionTransactionSubmit, domain.AggregateTypeTransaction, tx.ID, nil, tx)
	})
	if err != nil {
		return nil, err
	}

	uc.poster.completed(tx, len(entries), start)

	return tx, nil
}

func (uc *TransactionUseCase) submitForApproval(ctx context.Context, tx *domain.Transaction, rule *domain.ApprovalRule, now time.Time) (*domain.Transaction, error) {
	tx.Status = domain.TransactionPendingApproval

	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := approval.Submit(tx, rule, actor.ID, actor.Name, uc.idGen.Generate(), now)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, dbTx Transaction) error {
		if err := uc.txRepo.Create(txCtx, dbTx, tx); err != nil {
			return err
		}
		if err := uc.approvalRepo.Create(txCtx, dbTx, pending); err != nil {
			return err
		}
		event := newEvent(uc.idGen, domain.AggregateTypeTransaction, tx.ID, domain.EventTypeTransactionPendingApproval, map[string]any{
			"transaction_id": tx.ID,
			"approval_id":    pending.ID,
			"rule_id":        rule.ID,
			"amount":         tx.Amount.String(),
			"currency":       tx.FromCurrency,
		}, now)
		if err := uc.outboxRepo.Create(txCtx, dbTx, event); err != nil {
			return err
		}
		return uc.audit.record(txCtx, dbTx, domain.AuditActionTransactionSubmit, domain.AggregateTypeTransaction, tx.ID, nil, tx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalsRequested.Inc()
	}

	return tx, nil
}

// poster turns completed transactions into checked ledger postings.
type poster struct {
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// post builds and checks the ledger entries of a completed transaction.
func (p poster) post(tx *domain.Transaction, now time.Time) ([]domain.LedgerEntry, error) {
	entries, err := ledger.Post(tx, p.idGen.Generate, now)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckBalanced(entries); err != nil {
		if p.metrics != nil {
			p.metrics.LedgerImbalances.Inc()
		}
		p.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("generated postings do not balance")
		return nil, err
	}
	return entries, nil
}

func (p poster) completed(tx *domain.Transaction, entries int, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.TransactionsCompleted.WithLabelValues(string(tx.Type), tx.FromCurrency, tx.ToCurrency).Inc()
	p.metrics.TransactionAmount.WithLabelValues(tx.FromCurrency).Observe(tx.Amount.InexactFloat64())
	p.metrics.TransactionDuration.Observe(time.Since(start).Seconds())
	p.metrics.LedgerEntriesPosted.Add(float64(entries))
}

func completedEvent(idGen IDGenerator, tx *domain.Transaction, now time.Time) *domain.OutboxEvent {
	return newEvent(idGen, domain.AggregateTypeTransaction, tx.ID, domain.EventTypeTransactionCompleted, map[string]any{
		"transaction_id":   tx.ID,
		"agency_id":        tx.AgencyID,
		"type":             string(tx.Type),
		"amount":           tx.Amount.String(),
		"from_currency":    tx.FromCurrency,
		"to_currency":      tx.ToCurrency,
		"applied_rate":     tx.AppliedRate.String(),
		"converted_amount": tx.ConvertedAmount.String(),
	}, now)
}

// Get returns a transaction by ID.
func (uc *TransactionUseCase) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// List lists transactions matching filter.
func (uc *TransactionUseCase) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	filter.Limit = pageSize(filter.Limit)
	return uc.txRepo.List(ctx, filter)
}
