package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
)

const activeRatesKey = "rates:active"

type cachedRate struct {
	ID           string          `json:"id"`
	FromCurrency string          `json:"from"`
	ToCurrency   string          `json:"to"`
	BaseRate     decimal.Decimal `json:"base_rate"`
	TotalSpread  decimal.Decimal `json:"total_spread"`
	BidRate      decimal.Decimal `json:"bid_rate"`
	AskRate      decimal.Decimal `json:"ask_rate"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// RateCache implements usecase.RateCache on top of a byte cache.
type RateCache struct {
	cache usecase.Cache
}

// NewRateCache creates a new RateCache.
func NewRateCache(cache usecase.Cache) *RateCache {
	return &RateCache{cache: cache}
}

// GetActive returns the cached active rate table.
func (c *RateCache) GetActive(ctx context.Context) ([]domain.ExchangeRateSetting, bool, error) {
	raw, err := c.cache.Get(ctx, activeRatesKey)
	if err != nil || raw == nil {
		return nil, false, err
	}

	var cached []cachedRate
	if err := json.Unmarshal(raw, &cached); err != nil {
		// A table we cannot read is a miss; the caller reloads and overwrites it.
		return nil, false, nil
	}

	rates := make([]domain.ExchangeRateSetting, 0, len(cached))
	for _, r := range cached {
		rates = append(rates, domain.ExchangeRateSetting{
			ID:           r.ID,
			FromCurrency: r.FromCurrency,
			ToCurrency:   r.ToCurrency,
			BaseRate:     r.BaseRate,
			TotalSpread:  r.TotalSpread,
			BidRate:      r.BidRate,
			AskRate:      r.AskRate,
			IsActive:     true,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return rates, true, nil
}

// SetActive stores the active rate table.
func (c *RateCache) SetActive(ctx context.Context, rates []domain.ExchangeRateSetting, ttl time.Duration) error {
	cached := make([]cachedRate, 0, len(rates))
	for _, r := range rates {
		if !r.IsActive {
			continue
		}
		cached = append(cached, cachedRate{
			ID:           r.ID,
			FromCurrency: r.FromCurrency,
			ToCurrency:   r.ToCurrency,
			BaseRate:     r.BaseRate,
			TotalSpread:  r.TotalSpread,
			BidRate:      r.BidRate,
			AskRate:      r.AskRate,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, activeRatesKey, raw, ttl)
}

// Invalidate drops the cached table.
func (c *RateCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, activeRatesKey)
}
