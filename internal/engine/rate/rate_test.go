package rate

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goremit/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func eurUSD(t *testing.T) []domain.ExchangeRateSetting {
	t.Helper()
	r, err := domain.NewExchangeRateSetting("r1", "EUR", "USD", d("1.0850"), d("0.0100"), true, time.Now())
	require.NoError(t, err)
	return []domain.ExchangeRateSetting{*r}
}

func TestQuote(t *testing.T) {
	t.Parallel()
	rates := eurUSD(t)

	q, err := Quote("eur", "usd", rates, QuoteOptions{})
	require.NoError(t, err)
	assert.True(t, q.BidRate.Equal(d("1.08")))
	assert.True(t, q.AskRate.Equal(d("1.09")))
	assert.True(t, q.Spread.Equal(d("0.01")))
	assert.Equal(t, "0.92", q.SpreadPercentage.Round(2).String())

	_, err = Quote("USD", "EUR", rates, QuoteOptions{})
	assert.True(t, errors.Is(err, domain.ErrRateNotFound), "no silent inversion")

	inv, err := Quote("USD", "EUR", rates, QuoteOptions{AllowInverse: true})
	require.NoError(t, err)
	assert.True(t, inv.Inverted)
	assert.True(t, inv.BidRate.Equal(decimal.NewFromInt(1).Div(d("1.09"))))
	assert.True(t, inv.AskRate.Equal(decimal.NewFromInt(1).Div(d("1.08"))))
}

func TestQuoteIgnoresInactive(t *testing.T) {
	t.Parallel()
	rates := eurUSD(t)
	rates[0].IsActive = false

	_, err := Quote("EUR", "USD", rates, QuoteOptions{})
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestApplicableRate(t *testing.T) {
	t.Parallel()
	rates := eurUSD(t)

	send, err := ApplicableRate("EUR", "USD", rates, domain.DirectionSend, nil)
	require.NoError(t, err)
	assert.True(t, send.Equal(d("1.0746")), "got %s", send)

	recv, err := ApplicableRate("EUR", "USD", rates, domain.DirectionReceive, nil)
	require.NoError(t, err)
	assert.True(t, recv.Equal(d("1.09545")), "got %s", recv)

	zero := &Margin{}
	ask, err := ApplicableRate("EUR", "USD", rates, domain.DirectionReceive, zero)
	require.NoError(t, err)
	assert.True(t, ask.Equal(d("1.09")))

	_, err = ApplicableRate("EUR", "USD", rates, "sideways", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConvert(t *testing.T) {
	t.Parallel()
	rates := eurUSD(t)

	got, err := Convert(d("100"), "EUR", "USD", rates, ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, "108.5", got.String())

	manual := d("2")
	got, err = Convert(d("10.005"), "EUR", "GBP", nil, ConvertOptions{ManualRate: &manual})
	require.NoError(t, err)
	assert.Equal(t, "20.01", got.String())

	got, err = Convert(d("100"), "EUR", "GBP", rates, ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
	assert.True(t, got.IsZero())

	got, err = Convert(d("94.50"), "EUR", "USD", rates, ConvertOptions{Direction: domain.DirectionReceive, Margin: &Margin{}})
	require.NoError(t, err)
	assert.Equal(t, "103.01", got.String())
}
