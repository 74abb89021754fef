package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/rate"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tables(t require.TestingT) ([]domain.ExchangeRateSetting, []domain.CommissionTier, []domain.FeeSetting) {
	r, err := domain.NewExchangeRateSetting("r1", "EUR", "USD", d("1.0850"), d("0.0100"), true, time.Now())
	require.NoError(t, err)

	tiers := []domain.CommissionTier{
		{ID: "t1", MinAmount: d("0"), Type: domain.CommissionPercentagePlusFixed, Percentage: d("1"), FixedAmount: d("2"), Order: 1, IsActive: true},
	}
	fees := []domain.FeeSetting{
		{ID: "f1", Type: domain.FeeFixed, FixedAmount: d("2.50"), IsActive: true},
	}
	return []domain.ExchangeRateSetting{*r}, tiers, fees
}

func TestPriceEndToEndScenario(t *testing.T) {
	t.Parallel()
	rates, tiers, fees := tables(t)

	res, err := Price(Request{
		Amount:       d("100"),
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Direction:    domain.DirectionReceive,
		Rates:        rates,
		Tiers:        tiers,
		Fees:         fees,
		Margin:       &rate.Margin{},
	})
	require.NoError(t, err)

	assert.Equal(t, "1.09", res.AppliedRate.String())
	assert.Equal(t, "3", res.Commission.String())
	assert.Equal(t, "t1", res.CommissionTierID)
	assert.Equal(t, "2.5", res.Fees.String())
	assert.Equal(t, "5.5", res.TotalCost.String())
	assert.Equal(t, "94.5", res.NetAmount.String())
	assert.Equal(t, "103.01", res.FinalAmount.String())
	assert.Equal(t, "109", res.ConvertedAmount.String())
	assert.True(t, res.BaseRate.Equal(d("1.085")))
}

func TestPriceOverridesWin(t *testing.T) {
	t.Parallel()
	rates, tiers, fees := tables(t)

	manualRate, manualCommission, manualFees := d("1.2"), d("1"), d("0")
	res, err := Price(Request{
		Amount:       d("100"),
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Rates:        rates,
		Tiers:        tiers,
		Fees:         fees,
		Overrides:    Overrides{Rate: &manualRate, Commission: &manualCommission, Fees: &manualFees},
	})
	require.NoError(t, err)

	assert.True(t, res.ManualRate)
	assert.Equal(t, "120", res.ConvertedAmount.String())
	assert.Equal(t, "1", res.Commission.String())
	assert.True(t, res.Fees.IsZero())
	assert.Empty(t, res.CommissionTierID)
}

func TestPriceManualRateWithoutConfiguredPair(t *testing.T) {
	t.Parallel()

	manual := d("655.957")
	res, err := Price(Request{
		Amount:       d("10"),
		FromCurrency: "EUR",
		ToCurrency:   "XOF",
		Overrides:    Overrides{Rate: &manual},
	})
	require.NoError(t, err)
	assert.Equal(t, "6559.57", res.ConvertedAmount.String())
	assert.True(t, res.BaseRate.Equal(manual))
	assert.True(t, res.Commission.IsZero(), "no tier is a valid zero commission")
}

func TestPriceMissingRate(t *testing.T) {
	t.Parallel()

	_, err := Price(Request{Amount: d("10"), FromCurrency: "EUR", ToCurrency: "GBP"})
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestPriceValidation(t *testing.T) {
	t.Parallel()

	_, err := Price(Request{Amount: d("0"), FromCurrency: "EUR", ToCurrency: "eur"})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)

	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["amount"])
	assert.True(t, fields["to_currency"])

	_, err = Price(Request{Amount: d("10"), FromCurrency: "EURO", ToCurrency: ""})
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
}

func TestPriceRejectsSubMinorUnits(t *testing.T) {
	t.Parallel()

	rates, tiers, fees := tables(t)

	tests := []struct {
		name       string
		amount     string
		manualRate *decimal.Decimal
	}{
		{"amount below a cent", "0.001", nil},
		{"three decimals", "100.005", nil},
		{"converted amount rounds to zero", "0.01", domain.DecimalPtr(d("0.3"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Price(Request{
				Amount:       d(tt.amount),
				FromCurrency: "EUR",
				ToCurrency:   "USD",
				Rates:        rates,
				Tiers:        tiers,
				Fees:         fees,
				Overrides:    Overrides{Rate: tt.manualRate, Commission: domain.DecimalPtr(decimal.Zero), Fees: domain.DecimalPtr(decimal.Zero)},
			})

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, "amount", verr.Fields[0].Field)
		})
	}

	res, err := Price(Request{Amount: d("100.10"), FromCurrency: "EUR", ToCurrency: "USD", Rates: rates, Tiers: tiers, Fees: fees})
	require.NoError(t, err, "trailing zeros stay within two decimals")
	assert.True(t, res.ConvertedAmount.IsPositive())
}

func TestPriceInvariants(t *testing.T) {
	rates, tiers, fees := tables(t)

	rapid.Check(t, func(t *rapid.T) {
		amount := decimal.New(rapid.Int64Range(1, 100_000_000).Draw(t, "cents"), -2)
		dir := rapid.SampledFrom([]domain.Direction{domain.DirectionSend, domain.DirectionReceive}).Draw(t, "direction")

		res, err := Price(Request{
			Amount:       amount,
			FromCurrency: "EUR",
			ToCurrency:   "USD",
			Direction:    dir,
			Rates:        rates,
			Tiers:        tiers,
			Fees:         fees,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.TotalCost.Equal(res.Commission.Add(res.Fees)) {
			t.Fatalf("total cost %s != commission %s + fees %s", res.TotalCost, res.Commission, res.Fees)
		}
		if !res.NetAmount.Equal(amount.Sub(res.TotalCost)) {
			t.Fatalf("net amount mismatch")
		}
		if !res.ConvertedAmount.Equal(amount.Mul(res.AppliedRate).Round(2)) {
			t.Fatalf("converted amount mismatch")
		}
	})
}
