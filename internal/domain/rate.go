package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells which side of the quote applies to a customer operation.
type Direction string

const (
	// DirectionSend: the customer sells the source currency to the house (bid side).
	DirectionSend Direction = "send"
	// DirectionReceive: the customer buys the destination currency from the house (ask side).
	DirectionReceive Direction = "receive"
)

// IsValid reports whether the direction is known.
func (d Direction) IsValid() bool {
	return d == DirectionSend || d == DirectionReceive
}

// ExchangeRateSetting is a configured quote for an ordered currency pair.
type ExchangeRateSetting struct {
	ID           string
	FromCurrency string
	ToCurrency   string
	BaseRate     decimal.Decimal
	TotalSpread  decimal.Decimal
	BidRate      decimal.Decimal
	AskRate      decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var two = decimal.NewFromInt(2)

// NewExchangeRateSetting validates the quote and derives bid/ask from base and spread.
func NewExchangeRateSetting(id, from, to string, baseRate, totalSpread decimal.Decimal, active bool, now time.Time) (*ExchangeRateSetting, error) {
	from = NormalizeCurrency(from)
	to = NormalizeCurrency(to)

	verr := &ValidationError{}
	if !IsValidCurrency(from) {
		verr.Add("from_currency", "must be a supported ISO 4217 currency code")
	}
	if !IsValidCurrency(to) {
		verr.Add("to_currency", "must be a supported ISO 4217 currency code")
	}
	if from == to && from != "" {
		verr.Add("to_currency", "must differ from from_currency")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if !baseRate.IsPositive() {
		return nil, fmt.Errorf("%w: base rate %s", ErrInvalidRate, baseRate)
	}
	if totalSpread.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeSpread, totalSpread)
	}

	half := totalSpread.Div(two)
	bid := baseRate.Sub(half)
	if !bid.IsPositive() {
		return nil, fmt.Errorf("%w: spread %s leaves a non-positive bid", ErrInvalidRate, totalSpread)
	}

	return &ExchangeRateSetting{
		ID:           id,
		FromCurrency: from,
		ToCurrency:   to,
		BaseRate:     baseRate,
		TotalSpread:  totalSpread,
		BidRate:      bid,
		AskRate:      baseRate.Add(half),
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Matches reports whether the setting quotes the ordered pair from→to.
func (r *ExchangeRateSetting) Matches(from, to string) bool {
	return r.FromCurrency == from && r.ToCurrency == to
}
