// Package rate computes bid/ask quotes and directional customer rates from a
// rate table supplied by the caller.
package rate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// DefaultMarginRate applies to both directions when no margin is given.
	DefaultMarginRate = decimal.RequireFromString("0.005")
)

// Quotation is the resolved quote for an ordered currency pair.
type Quotation struct {
	From             string
	To               string
	BaseRate         decimal.Decimal
	BidRate          decimal.Decimal
	AskRate          decimal.Decimal
	Spread           decimal.Decimal
	SpreadPercentage decimal.Decimal
	Inverted         bool
}

// QuoteOptions tunes pair resolution.
type QuoteOptions struct {
	// AllowInverse lets a to→from rate answer a from→to request.
	AllowInverse bool
}

// Margin is the house margin applied on top of the bid or ask side.
type Margin struct {
	Sell decimal.Decimal
	Buy  decimal.Decimal
}

// DefaultMargin returns the 0.5% margin used for both directions.
func DefaultMargin() Margin {
	return Margin{Sell: DefaultMarginRate, Buy: DefaultMarginRate}
}

// ConvertOptions controls Convert.
type ConvertOptions struct {
	// ManualRate overrides every configured rate.
	ManualRate *decimal.Decimal
	// Direction selects bid or ask with margin. Empty converts at the base rate.
	Direction    domain.Direction
	Margin       *Margin
	AllowInverse bool
}

// Quote returns the active quote for from→to.
func Quote(from, to string, rates []domain.ExchangeRateSetting, opts QuoteOptions) (Quotation, error) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)

	if r := find(from, to, rates); r != nil {
		return Quotation{
			From:             from,
			To:               to,
			BaseRate:         r.BaseRate,
			BidRate:          r.BidRate,
			AskRate:          r.AskRate,
			Spread:           r.TotalSpread,
			SpreadPercentage: r.TotalSpread.Div(r.BaseRate).Mul(hundred),
		}, nil
	}

	if opts.AllowInverse {
		if r := find(to, from, rates); r != nil {
			base := one.Div(r.BaseRate)
			bid := one.Div(r.AskRate)
			ask := one.Div(r.BidRate)
			spread := ask.Sub(bid)
			return Quotation{
				From:             from,
				To:               to,
				BaseRate:         base,
				BidRate:          bid,
				AskRate:          ask,
				Spread:           spread,
				SpreadPercentage: spread.Div(base).Mul(hundred),
				Inverted:         true,
			}, nil
		}
	}

	return Quotation{}, fmt.Errorf("%w: %s/%s", domain.ErrRateNotFound, from, to)
}

// ApplicableRate returns the customer rate for a directional operation.
// Send uses bid × (1 − sell margin), receive uses ask × (1 + buy margin).
// A nil margin means DefaultMargin.
func ApplicableRate(from, to string, rates []domain.ExchangeRateSetting, direction domain.Direction, margin *Margin) (decimal.Decimal, error) {
	q, err := Quote(from, to, rates, QuoteOptions{})
	if err != nil {
		return decimal.Zero, err
	}
	return ApplyMargin(q, direction, margin)
}

// ApplyMargin applies the directional margin to an already resolved quote.
func ApplyMargin(q Quotation, direction domain.Direction, margin *Margin) (decimal.Decimal, error) {
	m := DefaultMargin()
	if margin != nil {
		m = *margin
	}

	switch direction {
	case domain.DirectionSend:
		return q.BidRate.Mul(one.Sub(m.Sell)), nil
	case domain.DirectionReceive:
		return q.AskRate.Mul(one.Add(m.Buy)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown direction %q", domain.ErrValidation, direction)
	}
}

// Convert converts amount from→to, rounded to minor units.
// An unknown pair yields zero together with ErrRateNotFound.
func Convert(amount decimal.Decimal, from, to string, rates []domain.ExchangeRateSetting, opts ConvertOptions) (decimal.Decimal, error) {
	if opts.ManualRate != nil {
		return domain.RoundMoney(amount.Mul(*opts.ManualRate)), nil
	}

	if domain.NormalizeCurrency(from) == domain.NormalizeCurrency(to) {
		return domain.RoundMoney(amount), nil
	}

	q, err := Quote(from, to, rates, QuoteOptions{AllowInverse: opts.AllowInverse})
	if err != nil {
		return decimal.Zero, err
	}

	r := q.BaseRate
	if opts.Direction != "" {
		r, err = ApplyMargin(q, opts.Direction, opts.Margin)
		if err != nil {
			return decimal.Zero, err
		}
	}

	return domain.RoundMoney(amount.Mul(r)), nil
}

func find(from, to string, rates []domain.ExchangeRateSetting) *domain.ExchangeRateSetting {
	for i := range rates {
		if rates[i].IsActive && rates[i].Matches(from, to) {
			return &rates[i]
		}
	}
	return nil
}
