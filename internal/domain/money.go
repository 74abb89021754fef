package domain

import "github.com/shopspring/decimal"

// MoneyScale is the minor-unit precision used for every currency handled here.
const MoneyScale = 2

var (
	hundred = decimal.NewFromInt(100)

	// BalancedTolerance is the largest absolute variance still considered balanced.
	BalancedTolerance = decimal.RequireFromString("0.01")
)

// RoundMoney rounds to MoneyScale decimals, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Percent returns amount × pct / 100 without rounding.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// ValidPercentage reports whether pct lies in [0, 100].
func ValidPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// DecimalPtr returns a pointer to d.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
