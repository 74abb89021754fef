// Package pricing turns a transfer request into a fully priced transaction by
// combining the rate, commission and fee engines.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/commission"
	"github.com/iho/goremit/internal/engine/fee"
	"github.com/iho/goremit/internal/engine/rate"
)

// Overrides are operator-entered values that win over configured tables.
type Overrides struct {
	Rate       *decimal.Decimal
	Commission *decimal.Decimal
	Fees       *decimal.Decimal
}

// Request is everything needed to price one transaction.
type Request struct {
	Amount       decimal.Decimal
	FromCurrency string
	ToCurrency   string
	Type         domain.TransactionType
	Direction    domain.Direction
	Rates        []domain.ExchangeRateSetting
	Tiers        []domain.CommissionTier
	Fees         []domain.FeeSetting
	Margin       *rate.Margin
	Overrides    Overrides
}

// Result is a priced transaction.
type Result struct {
	FromCurrency     string
	ToCurrency       string
	Type             domain.TransactionType
	Direction        domain.Direction
	Amount           decimal.Decimal
	BaseRate         decimal.Decimal
	Spread           decimal.Decimal
	AppliedRate      decimal.Decimal
	ManualRate       bool
	Commission       decimal.Decimal
	CommissionTierID string
	Fees             decimal.Decimal
	TotalCost        decimal.Decimal
	NetAmount        decimal.Decimal
	FinalAmount      decimal.Decimal
	ConvertedAmount  decimal.Decimal
}

// Price validates req and prices it. Rate, commission and fees are resolved
// in that order; each override replaces its engine.
func Price(req Request) (*Result, error) {
	req.FromCurrency = domain.NormalizeCurrency(req.FromCurrency)
	req.ToCurrency = domain.NormalizeCurrency(req.ToCurrency)
	if req.Type == "" {
		req.Type = domain.TransactionTransfer
	}
	if req.Direction == "" {
		req.Direction = domain.DirectionSend
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	res := &Result{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Type:         req.Type,
		Direction:    req.Direction,
		Amount:       req.Amount,
	}

	q, qerr := rate.Quote(req.FromCurrency, req.ToCurrency, req.Rates, rate.QuoteOptions{})
	if qerr == nil {
		res.BaseRate = q.BaseRate
		res.Spread = q.Spread
	}

	switch {
	case req.Overrides.Rate != nil:
		res.AppliedRate = *req.Overrides.Rate
		res.ManualRate = true
		if qerr != nil {
			res.BaseRate = *req.Overrides.Rate
		}
	case qerr != nil:
		return nil, qerr
	default:
		r, err := rate.ApplyMargin(q, req.Direction, req.Margin)
		if err != nil {
			return nil, err
		}
		res.AppliedRate = r
	}

	if req.Overrides.Commission != nil {
		res.Commission = domain.RoundMoney(*req.Overrides.Commission)
	} else {
		tier := commission.ResolveTier(req.Amount, req.Tiers, req.Type)
		res.Commission = domain.RoundMoney(commission.Amount(req.Amount, tier))
		if tier != nil {
			res.CommissionTierID = tier.ID
		}
	}

	if req.Overrides.Fees != nil {
		res.Fees = domain.RoundMoney(*req.Overrides.Fees)
	} else {
		res.Fees = fee.Total(fee.ApplicableFees(req.Fees, req.Type), req.Amount)
	}

	res.TotalCost = res.Commission.Add(res.Fees)
	res.NetAmount = req.Amount.Sub(res.TotalCost)
	res.FinalAmount = domain.RoundMoney(res.NetAmount.Mul(res.AppliedRate))
	res.ConvertedAmount = domain.RoundMoney(req.Amount.Mul(res.AppliedRate))
	if !res.ConvertedAmount.IsPositive() {
		verr := &domain.ValidationError{}
		verr.Add("amount", "converts to less than one minor unit of "+req.ToCurrency)
		return nil, verr
	}

	return res, nil
}

// ApplyTo copies the priced figures onto tx.
func (r *Result) ApplyTo(tx *domain.Transaction) {
	tx.Amount = r.Amount
	tx.FromCurrency = r.FromCurrency
	tx.ToCurrency = r.ToCurrency
	tx.Type = r.Type
	tx.Direction = r.Direction
	tx.ExchangeRate = r.BaseRate
	tx.Spread = r.Spread
	tx.AppliedRate = r.AppliedRate
	tx.Commission = r.Commission
	tx.CommissionTierID = r.CommissionTierID
	tx.Fees = r.Fees
	tx.TotalCost = r.TotalCost
	tx.NetAmount = r.NetAmount
	tx.FinalAmount = r.FinalAmount
	tx.ConvertedAmount = r.ConvertedAmount
}

func validate(req Request) error {
	verr := &domain.ValidationError{}

	if !req.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	} else if req.Amount.GreaterThan(decimal.RequireFromString(domain.MaxTransactionAmount)) {
		verr.Add("amount", "exceeds the maximum transaction amount")
	} else if !req.Amount.Equal(domain.RoundMoney(req.Amount)) {
		verr.Add("amount", fmt.Sprintf("must have at most %d decimal places", domain.MoneyScale))
	}

	checkCurrency(verr, "from_currency", req.FromCurrency)
	checkCurrency(verr, "to_currency", req.ToCurrency)

	if req.FromCurrency != "" && req.FromCurrency == req.ToCurrency {
		verr.Add("to_currency", "must differ from from_currency")
	}
	if !req.Type.IsValid() {
		verr.Add("type", "must be one of: transfer international_transfer exchange")
	}
	if !req.Direction.IsValid() {
		verr.Add("direction", "must be one of: send receive")
	}
	if r := req.Overrides.Rate; r != nil && !r.IsPositive() {
		verr.Add("manual_rate", "must be greater than zero")
	}
	if c := req.Overrides.Commission; c != nil && c.IsNegative() {
		verr.Add("manual_commission", "must not be negative")
	}
	if f := req.Overrides.Fees; f != nil && f.IsNegative() {
		verr.Add("manual_fees", "must not be negative")
	}

	return verr.OrNil()
}

func checkCurrency(verr *domain.ValidationError, field, code string) {
	switch {
	case strings.TrimSpace(code) == "":
		verr.Add(field, "is required")
	case len(code) != domain.CurrencyCodeLength:
		verr.Add(field, "must be a 3-letter currency code")
	case !domain.IsValidCurrency(code):
		verr.Add(field, "must be a supported ISO 4217 currency code")
	}
}
