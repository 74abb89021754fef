// Package commission resolves tiered commissions and maintains tier boundaries.
package commission

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// ResolveTier returns the first active tier (by Order) of txType containing
// amount, or nil when no tier is configured for it.
func ResolveTier(amount decimal.Decimal, tiers []domain.CommissionTier, txType domain.TransactionType) *domain.CommissionTier {
	candidates := make([]domain.CommissionTier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive && domain.MatchesType(t.TransactionType, txType) {
			candidates = append(candidates, t)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Order < candidates[j].Order
	})

	for i := range candidates {
		if candidates[i].Contains(amount) {
			found := candidates[i].Clone()
			return &found
		}
	}

	return nil
}

// Amount computes the unrounded commission for amount under tier.
// A nil tier yields zero.
func Amount(amount decimal.Decimal, tier *domain.CommissionTier) decimal.Decimal {
	if tier == nil {
		return decimal.Zero
	}

	switch tier.Type {
	case domain.CommissionFixed:
		return tier.FixedAmount
	case domain.CommissionPercentage:
		return domain.Percent(amount, tier.Percentage)
	case domain.CommissionPercentagePlusFixed:
		return domain.Percent(amount, tier.Percentage).Add(tier.FixedAmount)
	case domain.CommissionPercentageWithMinimum:
		return decimal.Max(domain.Percent(amount, tier.Percentage), tier.FixedAmount)
	default:
		return decimal.Zero
	}
}

// AdjustSubsequentTiers sets the edited tier's MaxAmount and cascades the
// change to every following tier (sorted by MinAmount): each one starts at
// the previous tier's new maximum and keeps its width. Cascading stops at an
// unbounded tier. The input slice is left untouched.
func AdjustSubsequentTiers(tiers []domain.CommissionTier, editedID string, newMax *decimal.Decimal) ([]domain.CommissionTier, error) {
	out := make([]domain.CommissionTier, len(tiers))
	for i := range tiers {
		out[i] = tiers[i].Clone()
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinAmount.LessThan(out[j].MinAmount)
	})

	idx := -1
	for i := range out {
		if out[i].ID == editedID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTierNotFound, editedID)
	}

	edited := &out[idx]
	if idx > 0 {
		prev := out[idx-1]
		if prev.MaxAmount == nil || edited.MinAmount.LessThan(*prev.MaxAmount) {
			return nil, fmt.Errorf("%w: %s starts below %s", domain.ErrTierOverlap, edited.ID, prev.ID)
		}
	}

	if newMax == nil {
		if idx != len(out)-1 {
			return nil, domain.ErrUnboundedTierNotLast
		}
		edited.MaxAmount = nil
		return out, nil
	}

	if !edited.MinAmount.LessThan(*newMax) {
		return nil, fmt.Errorf("%w: %s min %s max %s", domain.ErrInvalidTierBounds, edited.ID, edited.MinAmount, newMax)
	}
	edited.MaxAmount = domain.DecimalPtr(*newMax)

	for i := idx + 1; i < len(out); i++ {
		prevMax := *out[i-1].MaxAmount
		cur := &out[i]

		if cur.MaxAmount == nil {
			cur.MinAmount = prevMax
			break
		}

		width := cur.MaxAmount.Sub(cur.MinAmount)
		cur.MinAmount = prevMax
		cur.MaxAmount = domain.DecimalPtr(prevMax.Add(width))
	}

	return out, nil
}

// CheckOverlap rejects candidate when its range intersects an active tier
// configured for the same transaction type. Tiers may share a boundary.
func CheckOverlap(tiers []domain.CommissionTier, candidate domain.CommissionTier) error {
	for _, t := range tiers {
		if !t.IsActive || t.ID == candidate.ID || !sameType(t.TransactionType, candidate.TransactionType) {
			continue
		}
		if below(candidate.MinAmount, t.MaxAmount) && below(t.MinAmount, candidate.MaxAmount) {
			return fmt.Errorf("%w: %s", domain.ErrTierOverlap, t.ID)
		}
	}
	return nil
}

// below reports whether v < upper, a nil upper bound being unbounded.
func below(v decimal.Decimal, upper *decimal.Decimal) bool {
	return upper == nil || v.LessThan(*upper)
}

func sameType(a, b string) bool {
	if a == "" {
		a = domain.WildcardType
	}
	if b == "" {
		b = domain.WildcardType
	}
	return a == b
}

// ValidateCoverage checks that the active tiers of txType, sorted by
// MinAmount, are contiguous and that only the last one is unbounded.
func ValidateCoverage(tiers []domain.CommissionTier, txType domain.TransactionType) error {
	active := make([]domain.CommissionTier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive && domain.MatchesType(t.TransactionType, txType) {
			active = append(active, t)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MinAmount.LessThan(active[j].MinAmount)
	})

	for i, t := range active {
		last := i == len(active)-1
		if t.MaxAmount == nil {
			if !last {
				return fmt.Errorf("%w: %s", domain.ErrUnboundedTierNotLast, t.ID)
			}
			continue
		}
		if !t.MinAmount.LessThan(*t.MaxAmount) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidTierBounds, t.ID)
		}
		if !last && !t.MaxAmount.Equal(active[i+1].MinAmount) {
			return fmt.Errorf("%w: %s ends at %s, %s starts at %s",
				domain.ErrTierCoverageGap, t.ID, t.MaxAmount, active[i+1].ID, active[i+1].MinAmount)
		}
	}

	return nil
}
