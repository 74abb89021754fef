package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/commission"
	"github.com/iho/goremit/internal/engine/rate"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// SettingsUseCase manages the rate, commission, fee and approval tables.
type SettingsUseCase struct {
	txManager  TransactionManager
	rateRepo   ExchangeRateRepository
	tierRepo   CommissionTierRepository
	feeRepo    FeeRepository
	ruleRepo   ApprovalRuleRepository
	outboxRepo OutboxRepository
	rateCache  RateCache
	idGen      IDGenerator
	retrier    Retrier
	audit      auditor
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	cacheTTL   time.Duration
}

func NewSettingsUseCase(
	txManager TransactionManager,
	rateRepo ExchangeRateRepository,
	tierRepo CommissionTierRepository,
	feeRepo FeeRepository,
	ruleRepo ApprovalRuleRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	rateCache RateCache,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *SettingsUseCase {
	return &SettingsUseCase{
		txManager:  txManager,
		rateRepo:   rateRepo,
		tierRepo:   tierRepo,
		feeRepo:    feeRepo,
		ruleRepo:   ruleRepo,
		outboxRepo: outboxRepo,
		rateCache:  rateCache,
		idGen:      idGen,
		retrier:    retrier,
		audit:      auditor{repo: auditRepo, idGen: idGen, metrics: metrics},
		logger:     logger.With().Str("component", "settings").Logger(),
		metrics:    metrics,
		cacheTTL:   DefaultRateCacheTTL,
	}
}

// SetRateCacheTTL overrides how long the active rate table is cached.
func (uc *SettingsUseCase) SetRateCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
}

// CreateRateInput is the input for publishing an exchange rate.
type CreateRateInput struct {
	FromCurrency string
	ToCurrency   string
	BaseRate     decimal.Decimal
	TotalSpread  decimal.Decimal
	// Inactive stores the rate without replacing the active quote.
	Inactive bool
}

// CreateRate stores a new rate. An active rate replaces the pair's previous
// active quote.
func (uc *SettingsUseCase) CreateRate(ctx context.Context, input CreateRateInput) (*domain.ExchangeRateSetting, error) {
	if err := checkRole(ctx, domain.Role.CanConfigure); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	setting, err := domain.NewExchangeRateSetting(uc.idGen.Generate(), input.FromCurrency, input.ToCurrency,
		input.BaseRate, input.TotalSpread, !input.Inactive, now)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		if setting.IsActive {
			if err := uc.rateRepo.DeactivatePair(txCtx, tx, setting.FromCurrency, setting.ToCurrency, now); err != nil {
				return err
			}
		}
		if err := uc.rateRepo.Create(txCtx, tx, setting); err != nil {
			return err
		}
		return uc.settingsChanged(txCtx, tx, "exchange_rate", setting.ID, nil, setting, now)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateRates(ctx)

	return setting, nil
}

// ListRates lists stored rates, newest first.
func (uc *SettingsUseCase) ListRates(ctx context.Context, limit, offset int) ([]domain.ExchangeRateSetting, error) {
	return uc.rateRepo.List(ctx, pageSize(limit), offset)
}

// ActiveRates returns the active rate table, served from the cache when warm.
func (uc *SettingsUseCase) ActiveRates(ctx context.Context) ([]domain.ExchangeRateSetting, error) {
	if uc.rateCache != nil {
		rates, ok, err := uc.rateCache.GetActive(ctx)
		switch {
		case err != nil:
			uc.logger.Warn().Err(err).Msg("rate cache read failed")
		case ok:
			uc.cacheLookup("hit")
			return rates, nil
		default:
			uc.cacheLookup("miss")
		}
	}

	rates, err := uc.rateRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if uc.rateCache != nil {
		if err := uc.rateCache.SetActive(ctx, rates, uc.cacheTTL); err != nil {
			uc.logger.Warn().Err(err).Msg("rate cache write failed")
		}
	}

	return rates, nil
}

// Quote returns the active quote for a pair.
func (uc *SettingsUseCase) Quote(ctx context.Context, from, to string, allowInverse bool) (rate.Quotation, error) {
	rates, err := uc.ActiveRates(ctx)
	if err != nil {
		return rate.Quotation{}, err
	}

	from, to = domain.NormalizeCurrency(from), domain.NormalizeCurrency(to)
	q, err := rate.Quote(from, to, rates, rate.QuoteOptions{AllowInverse: allowInverse})
	if errors.Is(err, domain.ErrRateNotFound) {
		uc.missingRate(from, to)
	}
	return q, err
}

// CreateTierInput is the input for creating a commission tier.
type CreateTierInput struct {
	Name            string
	TransactionType string
	MinAmount       decimal.Decimal
	MaxAmount       *decimal.Decimal
	Type            domain.CommissionType
	Percentage      decimal.Decimal
	FixedAmount     decimal.Decimal
	Order           int
}

// CreateTier stores a new active commission tier.
func (uc *SettingsUseCase) CreateTier(ctx context.Context, input CreateTierInput) (*domain.CommissionTier, error) {
	if err := checkRole(ctx, domain.Role.CanConfigure); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tier := &domain.CommissionTier{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		TransactionType: input.TransactionType,
		MinAmount:       input.MinAmount,
		MaxAmount:       input.MaxAmount,
		Type:            input.Type,
		Percentage:      input.Percentage,
		FixedAmount:     input.FixedAmount,
		Order:           input.Order,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tier.Validate(); err != nil {
		return nil, err
	}

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		existing, err := uc.tierRepo.ListForUpdate(txCtx, tx)
		if err != nil {
			return err
		}
		if err := commission.CheckOverlap(existing, *tier); err != nil {
			return err
		}

		if err := uc.tierRepo.Create(txCtx, tx, tier); err != nil {
			return err
		}
		return uc.settingsChanged(txCtx, tx, "commission_tier", tier.ID, nil, tier, now)
	})
	if err != nil {
		return nil, err
	}

	return tier, nil
}

// ListTiers lists all commission tiers.
func (uc *SettingsUseCase) ListTiers(ctx context.Context) ([]domain.CommissionTier, error) {
	return uc.tierRepo.List(ctx)
}

// AdjustTierMax changes one tier's upper bound and shifts the following tiers
// of the same transaction type. The whole cascade is stored atomically.
func (uc *SettingsUseCase) AdjustTierMax(ctx context.Context, tierID string, newMax *decimal.Decimal) ([]domain.CommissionTier, error) {
	if err := checkRole(ctx, domain.Role.CanConfigure); err != nil {
		return nil, err
	}

	var adjusted []domain.CommissionTier
	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		all, err := uc.tierRepo.ListForUpdate(txCtx, tx)
		if err != nil {
			return err
		}

		var edited *domain.CommissionTier
		for i := range all {
			if all[i].ID == tierID {
				edited = &all[i]
				break
			}
		}
		if edited == nil {
			return domain.ErrTierNotFound
		}

		group := make([]domain.CommissionTier, 0, len(all))
		for _, t := range all {
			if t.TransactionType == edited.TransactionType {
				group = append(group, t)
			}
		}

		adjusted, err = commission.AdjustSubsequentTiers(group, tierID, newMax)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		before := make(map[string]domain.CommissionTier, len(group))
		for _, t := range group {
			before[t.ID] = t
		}
		for i := range adjusted {
			if sameBounds(before[adjusted[i].ID], adjusted[i]) {
				continue
			}
			adjusted[i].UpdatedAt = now
			if err := uc.tierRepo.Update(txCtx, tx, &adjusted[i]); err != nil {
				return err
			}
		}

		return uc.settingsChanged(txCtx, tx, "commission_tier", tierID, group, adjusted, now)
	})
	if err != nil {
		return nil, err
	}

	return adjusted, nil
}

func sameBounds(a, b domain.CommissionTier) bool {
	if !a.MinAmount.Equal(b.MinAmount) {
		return false
	}
	if a.MaxAmount == nil || b.MaxAmount == nil {
		return a.MaxAmount == nil && b.MaxAmount == nil
	}
	return a.MaxAmount.Equal(*b.MaxAmount)
}

// CreateFeeInput is the input for creating a fee setting.
type CreateFeeInput struct {
	Name            string
	Type            domain.FeeType
	FixedAmount     decimal.Decimal
	Percentage      decimal.Decimal
	Currency        string
	TransactionType string
}

// CreateFee stores a new active fee setting.
func (uc *SettingsUseCase) CreateFee(ctx context.Context, input CreateFeeInput) (*domain.FeeSetting, error) {
	if err := checkRole(ctx, domain.Role.CanConfigure); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fee := &domain.FeeSetting{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		Type:            input.Type,
		FixedAmount:     input.FixedAmount,
		Percentage:      input.Percentage,
		Currency:        domain.NormalizeCurrency(input.Currency),
		TransactionType: input.TransactionType,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := fee.Validate(); err != nil {
		return nil, err
	}

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		if err := uc.feeRepo.Create(txCtx, tx, fee); err != nil {
			return err
		}
		return uc.settingsChanged(txCtx, tx, "fee", fee.ID, nil, fee, now)
	})
	if err != nil {
		return nil, err
	}

	return fee, nil
}

// ListFees lists all fee settings.
func (uc *SettingsUseCase) ListFees(ctx context.Context) ([]domain.FeeSetting, error) {
	return uc.feeRepo.List(ctx)
}

// CreateApprovalRuleInput is the input for creating an approval rule.
type CreateApprovalRuleInput struct {
	Name            string
	TransactionType string
	Currency        string
	MaxAmount       decimal.Decimal
}

// CreateApprovalRule stores a new active approval rule.
func (uc *SettingsUseCase) CreateApprovalRule(ctx context.Context, input CreateApprovalRuleInput) (*domain.ApprovalRule, error) {
	if err := checkRole(ctx, domain.Role.CanConfigure); err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if input.Name == "" {
		verr.Add("name", "is required")
	}
	if input.MaxAmount.IsNegative() {
		verr.Add("max_amount", "must not be negative")
	}
	currency := domain.NormalizeCurrency(input.Currency)
	if currency != "" && !domain.IsValidCurrency(currency) {
		verr.Add("currency", "must be a supported ISO 4217 currency code")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule := &domain.ApprovalRule{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		TransactionType: input.TransactionType,
		Currency:        currency,
		MaxAmount:       input.MaxAmount,
		IsActive:        true,
		CreatedAt:       now,
	}

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		if err := uc.ruleRepo.Create(txCtx, tx, rule); err != nil {
			return err
		}
		return uc.settingsChanged(txCtx, tx, "approval_rule", rule.ID, nil, rule, now)
	})
	if err != nil {
		return nil, err
	}

	return rule, nil
}

// ListApprovalRules lists all approval rules.
func (uc *SettingsUseCase) ListApprovalRules(ctx context.Context) ([]domain.ApprovalRule, error) {
	return uc.ruleRepo.List(ctx)
}

func (uc *SettingsUseCase) settingsChanged(ctx context.Context, tx Transaction, kind, id string, before, after any, now time.Time) error {
	event := newEvent(uc.idGen, domain.AggregateTypeSettings, id, domain.EventTypeSettingsChanged, map[string]any{
		"kind":       kind,
		"id":         id,
		"changed_by": domain.ActorID(ctx),
	}, now)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return uc.audit.record(ctx, tx, domain.AuditActionSettingsChange, kind, id, before, after)
}

func (uc *SettingsUseCase) invalidateRates(ctx context.Context) {
	if uc.rateCache == nil {
		return
	}
	if err := uc.rateCache.Invalidate(ctx); err != nil {
		uc.logger.Warn().Err(err).Msg("rate cache invalidation failed")
	}
}

func (uc *SettingsUseCase) cacheLookup(result string) {
	if uc.metrics != nil {
		uc.metrics.RateCacheLookups.WithLabelValues(result).Inc()
	}
}

func (uc *SettingsUseCase) missingRate(from, to string) {
	pair := fmt.Sprintf("%s/%s", from, to)
	uc.logger.Warn().Str("pair", pair).Msg("no active exchange rate")
	if uc.metrics != nil {
		uc.metrics.MissingRates.WithLabelValues(pair).Inc()
	}
}
