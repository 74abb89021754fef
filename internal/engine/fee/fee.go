// Package fee selects applicable fees and computes third-party cost breakdowns.
package fee

import (
	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// ApplicableFees returns the active fees matching txType or untyped.
func ApplicableFees(fees []domain.FeeSetting, txType domain.TransactionType) []domain.FeeSetting {
	out := make([]domain.FeeSetting, 0, len(fees))
	for _, f := range fees {
		if f.IsActive && domain.MatchesType(f.TransactionType, txType) {
			out = append(out, f)
		}
	}
	return out
}

// Applied returns the unrounded contribution of one fee on amount.
func Applied(f domain.FeeSetting, amount decimal.Decimal) decimal.Decimal {
	switch f.Type {
	case domain.FeeFixed:
		return f.FixedAmount
	case domain.FeePercentage:
		return domain.Percent(amount, f.Percentage)
	case domain.FeeMixed:
		return f.FixedAmount.Add(domain.Percent(amount, f.Percentage))
	default:
		return decimal.Zero
	}
}

// Total sums the applied amounts of fees on amount, rounded once.
func Total(fees []domain.FeeSetting, amount decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, f := range fees {
		sum = sum.Add(Applied(f, amount))
	}
	return domain.RoundMoney(sum)
}

// Line is one fee's share of a breakdown.
type Line struct {
	FeeID         string
	Name          string
	Type          domain.FeeType
	AppliedAmount decimal.Decimal
}

// Breakdown is the full cost of routing an amount through third parties.
type Breakdown struct {
	Lines               []Line
	Capital             decimal.Decimal
	FixedFees           decimal.Decimal
	VariableFees        decimal.Decimal
	TotalThirdPartyCost decimal.Decimal
}

// ThirdPartyBreakdown computes the capital and fee split for amount at
// exchangeRate. Totals are rounded at aggregation; lines carry rounded
// amounts for display.
func ThirdPartyBreakdown(amount, exchangeRate decimal.Decimal, fees []domain.FeeSetting) Breakdown {
	var (
		fixed    = decimal.Zero
		variable = decimal.Zero
		lines    = make([]Line, 0, len(fees))
	)

	for _, f := range fees {
		var fx, vr decimal.Decimal
		switch f.Type {
		case domain.FeeFixed:
			fx = f.FixedAmount
		case domain.FeePercentage:
			vr = domain.Percent(amount, f.Percentage)
		case domain.FeeMixed:
			fx = f.FixedAmount
			vr = domain.Percent(amount, f.Percentage)
		default:
			continue
		}

		fixed = fixed.Add(fx)
		variable = variable.Add(vr)
		lines = append(lines, Line{
			FeeID:         f.ID,
			Name:          f.Name,
			Type:          f.Type,
			AppliedAmount: domain.RoundMoney(fx.Add(vr)),
		})
	}

	capital := amount.Mul(exchangeRate)

	return Breakdown{
		Lines:               lines,
		Capital:             domain.RoundMoney(capital),
		FixedFees:           domain.RoundMoney(fixed),
		VariableFees:        domain.RoundMoney(variable),
		TotalThirdPartyCost: domain.RoundMoney(capital.Add(fixed).Add(variable)),
	}
}
