package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
	"github.com/iho/goremit/internal/usecase/mocks"
)

func TestSettingsUseCase_CreateRateReplacesActivePair(t *testing.T) {
	w := newWorld(t)
	ctx := as(domain.RoleManager, "manager-1", "")

	// Warm the cache so the invalidation is observable.
	_, err := w.settings.ActiveRates(ctx)
	require.NoError(t, err)

	created, err := w.settings.CreateRate(ctx, usecase.CreateRateInput{
		FromCurrency: "eur",
		ToCurrency:   "usd",
		BaseRate:     d("1.10"),
		TotalSpread:  d("0.02"),
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", created.FromCurrency)
	assert.True(t, created.IsActive)
	assert.Equal(t, 1, w.cache.Invalidations)

	active, err := w.settings.ActiveRates(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)

	q, err := w.settings.Quote(ctx, "EUR", "USD", false)
	require.NoError(t, err)
	assert.Equal(t, "1.09", q.BidRate.String())
	assert.Equal(t, "1.11", q.AskRate.String())

	assert.Equal(t, []string{domain.EventTypeSettingsChanged}, w.outbox.EventTypes())
}

func TestSettingsUseCase_InactiveRateKeepsCurrentQuote(t *testing.T) {
	w := newWorld(t)

	_, err := w.settings.CreateRate(context.Background(), usecase.CreateRateInput{
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		BaseRate:     d("1.50"),
		TotalSpread:  d("0"),
		Inactive:     true,
	})
	require.NoError(t, err)

	q, err := w.settings.Quote(context.Background(), "EUR", "USD", false)
	require.NoError(t, err)
	assert.Equal(t, "1.085", q.BaseRate.String())
}

func TestSettingsUseCase_ActiveRatesServedFromCache(t *testing.T) {
	w := newWorld(t)

	for i := 0; i < 3; i++ {
		_, err := w.settings.ActiveRates(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, w.rates.ListActiveCalls)
}

func TestSettingsUseCase_QuoteMissingPair(t *testing.T) {
	w := newWorld(t)

	_, err := w.settings.Quote(context.Background(), "GBP", "JPY", true)
	assert.ErrorIs(t, err, domain.ErrRateNotFound)

	q, err := w.settings.Quote(context.Background(), "USD", "EUR", true)
	require.NoError(t, err)
	assert.True(t, q.Inverted)
}

func TestSettingsUseCase_ConfigurationNeedsManager(t *testing.T) {
	w := newWorld(t)
	ctx := as(domain.RoleAgent, "agent-1", "agency-1")

	_, err := w.settings.CreateRate(ctx, usecase.CreateRateInput{FromCurrency: "EUR", ToCurrency: "GBP", BaseRate: d("0.85")})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = w.settings.CreateFee(ctx, usecase.CreateFeeInput{Name: "x", Type: domain.FeeFixed, FixedAmount: d("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = w.settings.CreateApprovalRule(ctx, usecase.CreateApprovalRuleInput{Name: "x", MaxAmount: d("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	assert.Empty(t, w.outbox.EventTypes())
}

func TestSettingsUseCase_CreateRateRejectsBadInput(t *testing.T) {
	w := newWorld(t)

	_, err := w.settings.CreateRate(context.Background(), usecase.CreateRateInput{
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		BaseRate:     d("1.1"),
		TotalSpread:  d("-0.1"),
	})
	assert.ErrorIs(t, err, domain.ErrNegativeSpread)
}

func TestSettingsUseCase_AdjustTierMaxCascades(t *testing.T) {
	tiers := mocks.NewMockCommissionTierRepository(
		domain.CommissionTier{ID: "t1", MinAmount: d("0"), MaxAmount: domain.DecimalPtr(d("1000")), Type: domain.CommissionFixed, FixedAmount: d("5"), Order: 1, IsActive: true},
		domain.CommissionTier{ID: "t2", MinAmount: d("1000"), MaxAmount: domain.DecimalPtr(d("5000")), Type: domain.CommissionFixed, FixedAmount: d("10"), Order: 2, IsActive: true},
		domain.CommissionTier{ID: "t3", MinAmount: d("5000"), Type: domain.CommissionPercentage, Percentage: d("0.5"), Order: 3, IsActive: true},
		domain.CommissionTier{ID: "x1", TransactionType: "exchange", MinAmount: d("0"), Type: domain.CommissionFixed, FixedAmount: d("1"), Order: 1, IsActive: true},
	)
	outbox := mocks.NewMockOutboxRepository()
	uc := usecase.NewSettingsUseCase(mocks.NewMockTransactionManager(), mocks.NewMockExchangeRateRepository(), tiers,
		mocks.NewMockFeeRepository(), mocks.NewMockApprovalRuleRepository(), outbox, nil, nil,
		mocks.NewMockIDGenerator(), nil, zerolog.Nop(), nil)

	adjusted, err := uc.AdjustTierMax(context.Background(), "t1", domain.DecimalPtr(d("1500")))
	require.NoError(t, err)
	require.Len(t, adjusted, 3)

	byID := map[string]domain.CommissionTier{}
	stored, err := tiers.List(context.Background())
	require.NoError(t, err)
	for _, tier := range stored {
		byID[tier.ID] = tier
	}

	assert.Equal(t, "1500", byID["t1"].MaxAmount.String())
	assert.Equal(t, "1500", byID["t2"].MinAmount.String())
	assert.Equal(t, "5500", byID["t2"].MaxAmount.String())
	assert.Equal(t, "5500", byID["t3"].MinAmount.String())
	assert.Nil(t, byID["t3"].MaxAmount)
	assert.Equal(t, "0", byID["x1"].MinAmount.String())
	assert.Equal(t, 3, tiers.UpdateCalls)
	assert.Equal(t, []string{domain.EventTypeSettingsChanged}, outbox.EventTypes())
}

func TestSettingsUseCase_AdjustTierMaxErrors(t *testing.T) {
	w := newWorld(t)

	_, err := w.settings.AdjustTierMax(context.Background(), "missing", domain.DecimalPtr(d("10")))
	assert.ErrorIs(t, err, domain.ErrTierNotFound)

	_, err = w.settings.AdjustTierMax(context.Background(), "tier-1", domain.DecimalPtr(d("0")))
	assert.ErrorIs(t, err, domain.ErrInvalidTierBounds)
	assert.Equal(t, 0, w.tiers.UpdateCalls)
}

func TestSettingsUseCase_TablesPickUpNewTier(t *testing.T) {
	w := newWorld(t)

	_, err := w.settings.CreateTier(context.Background(), usecase.CreateTierInput{
		Name:            "exchange",
		TransactionType: "exchange",
		MinAmount:       d("0"),
		Type:            domain.CommissionFixed,
		FixedAmount:     d("1"),
		Order:           1,
	})
	require.NoError(t, err)

	tables, err := w.settings.Tables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables.Rates, 1)
	assert.Len(t, tables.Tiers, 2)
	assert.Len(t, tables.Fees, 1)
	assert.Empty(t, tables.Rules)
}

func TestSettingsUseCase_CreateTierRejectsOverlap(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	create := func(min string, max string) error {
		_, err := w.settings.CreateTier(ctx, usecase.CreateTierInput{
			Name:            "transfer " + min,
			TransactionType: string(domain.TransactionTransfer),
			MinAmount:       d(min),
			MaxAmount:       domain.DecimalPtr(d(max)),
			Type:            domain.CommissionFixed,
			FixedAmount:     d("1"),
			Order:           1,
		})
		return err
	}

	require.NoError(t, create("0", "1000"))
	assert.ErrorIs(t, create("500", "2000"), domain.ErrTierOverlap)
	require.NoError(t, create("1000", "2000"))

	tiers, err := w.tiers.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tiers, 3)
}
