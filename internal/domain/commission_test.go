package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCommissionTierValidate(t *testing.T) {
	t.Parallel()

	upper := decimal.NewFromInt(100)
	tests := []struct {
		name    string
		tier    CommissionTier
		wantErr bool
	}{
		{"valid bounded", CommissionTier{Type: CommissionPercentage, MinAmount: decimal.Zero, MaxAmount: &upper, Percentage: decimal.NewFromInt(2)}, false},
		{"valid unbounded fixed", CommissionTier{Type: CommissionFixed, MinAmount: upper, FixedAmount: decimal.NewFromInt(5)}, false},
		{"unknown type", CommissionTier{Type: "tiered"}, true},
		{"max not above min", CommissionTier{Type: CommissionFixed, MinAmount: upper, MaxAmount: &upper}, true},
		{"percentage above 100", CommissionTier{Type: CommissionPercentage, Percentage: decimal.NewFromInt(101)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tier.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCommissionTierCloneIsDeep(t *testing.T) {
	t.Parallel()

	upper := decimal.NewFromInt(100)
	orig := CommissionTier{ID: "t1", MaxAmount: &upper}
	c := orig.Clone()
	*c.MaxAmount = decimal.NewFromInt(5)

	if !orig.MaxAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatal("clone shares MaxAmount with original")
	}
}

func TestFeeSettingValidate(t *testing.T) {
	t.Parallel()

	ok := FeeSetting{Type: FeeMixed, FixedAmount: decimal.NewFromInt(1), Percentage: decimal.NewFromInt(2), Currency: "EUR"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := FeeSetting{Type: FeePercentage, Percentage: decimal.NewFromInt(-1)}
	if err := bad.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
