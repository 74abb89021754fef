package commission

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/iho/goremit/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal { return domain.DecimalPtr(d(s)) }

func ladder() []domain.CommissionTier {
	return []domain.CommissionTier{
		{ID: "t3", MinAmount: d("1000"), MaxAmount: nil, Type: domain.CommissionFixed, FixedAmount: d("25"), Order: 3, IsActive: true},
		{ID: "t1", MinAmount: d("0"), MaxAmount: ptr("100"), Type: domain.CommissionFixed, FixedAmount: d("2"), Order: 1, IsActive: true},
		{ID: "t2", MinAmount: d("100"), MaxAmount: ptr("1000"), Type: domain.CommissionPercentagePlusFixed, Percentage: d("1"), FixedAmount: d("2"), Order: 2, IsActive: true},
	}
}

func TestResolveTier(t *testing.T) {
	t.Parallel()

	tiers := ladder()
	tiers = append(tiers, domain.CommissionTier{ID: "inactive", MinAmount: d("0"), Order: 0, IsActive: false})
	tiers = append(tiers, domain.CommissionTier{ID: "exchange-only", TransactionType: "exchange", MinAmount: d("0"), Order: 0, IsActive: true})

	tests := []struct {
		amount string
		want   string
	}{
		{"50", "t1"},
		{"100", "t1"},
		{"100.01", "t2"},
		{"1000", "t2"},
		{"5000", "t3"},
	}

	for _, tt := range tests {
		got := ResolveTier(d(tt.amount), tiers, domain.TransactionTransfer)
		if got == nil || got.ID != tt.want {
			t.Fatalf("amount %s: expected %s, got %+v", tt.amount, tt.want, got)
		}
	}

	if got := ResolveTier(d("5"), tiers, domain.TransactionExchange); got == nil || got.ID != "exchange-only" {
		t.Fatalf("expected exchange-only tier, got %+v", got)
	}

	if got := ResolveTier(d("5"), nil, domain.TransactionTransfer); got != nil {
		t.Fatalf("expected no tier, got %+v", got)
	}
}

func TestAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tier *domain.CommissionTier
		want string
	}{
		{"nil tier", nil, "0"},
		{"fixed", &domain.CommissionTier{Type: domain.CommissionFixed, FixedAmount: d("4")}, "4"},
		{"percentage", &domain.CommissionTier{Type: domain.CommissionPercentage, Percentage: d("1.5")}, "3"},
		{"percentage plus fixed", &domain.CommissionTier{Type: domain.CommissionPercentagePlusFixed, Percentage: d("1"), FixedAmount: d("2")}, "4"},
		{"minimum wins", &domain.CommissionTier{Type: domain.CommissionPercentageWithMinimum, Percentage: d("1"), FixedAmount: d("5")}, "5"},
		{"percentage wins", &domain.CommissionTier{Type: domain.CommissionPercentageWithMinimum, Percentage: d("3"), FixedAmount: d("5")}, "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(d("200"), tt.tier)
			if !got.Equal(d(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAdjustSubsequentTiers(t *testing.T) {
	t.Parallel()

	tiers := []domain.CommissionTier{
		{ID: "a", MinAmount: d("0"), MaxAmount: ptr("100"), IsActive: true},
		{ID: "b", MinAmount: d("100"), MaxAmount: ptr("500"), IsActive: true},
		{ID: "c", MinAmount: d("500"), MaxAmount: ptr("1000"), IsActive: true},
		{ID: "d", MinAmount: d("1000"), IsActive: true},
	}

	got, err := AdjustSubsequentTiers(tiers, "a", ptr("150"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct{ min, max string }{
		{"0", "150"}, {"150", "550"}, {"550", "1050"}, {"1050", ""},
	}
	for i, w := range want {
		if !got[i].MinAmount.Equal(d(w.min)) {
			t.Errorf("tier %s min: expected %s, got %s", got[i].ID, w.min, got[i].MinAmount)
		}
		if w.max == "" {
			if got[i].MaxAmount != nil {
				t.Errorf("tier %s should stay unbounded", got[i].ID)
			}
			continue
		}
		if got[i].MaxAmount == nil || !got[i].MaxAmount.Equal(d(w.max)) {
			t.Errorf("tier %s max: expected %s, got %v", got[i].ID, w.max, got[i].MaxAmount)
		}
	}

	if !tiers[1].MinAmount.Equal(d("100")) || !tiers[0].MaxAmount.Equal(d("100")) {
		t.Fatal("input tiers were mutated")
	}

	if err := ValidateCoverage(got, domain.TransactionTransfer); err != nil {
		t.Fatalf("adjusted tiers should stay contiguous: %v", err)
	}
}

func TestAdjustSubsequentTiersRejects(t *testing.T) {
	t.Parallel()

	tiers := ladder()

	tests := []struct {
		name   string
		tiers  []domain.CommissionTier
		id     string
		newMax *decimal.Decimal
		want   error
	}{
		{"unknown tier", tiers, "missing", ptr("10"), domain.ErrTierNotFound},
		{"max not above min", tiers, "t2", ptr("100"), domain.ErrInvalidTierBounds},
		{"unbounded in the middle", tiers, "t1", nil, domain.ErrUnboundedTierNotLast},
		{"overlap with previous", []domain.CommissionTier{
			{ID: "x", MinAmount: d("0"), MaxAmount: ptr("200")},
			{ID: "y", MinAmount: d("150"), MaxAmount: ptr("300")},
		}, "y", ptr("400"), domain.ErrTierOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AdjustSubsequentTiers(tt.tiers, tt.id, tt.newMax)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateCoverage(t *testing.T) {
	t.Parallel()

	if err := ValidateCoverage(ladder(), domain.TransactionTransfer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gap := ladder()
	gap[2].MinAmount = d("101")
	if err := ValidateCoverage(gap, domain.TransactionTransfer); !errors.Is(err, domain.ErrTierCoverageGap) {
		t.Fatalf("expected ErrTierCoverageGap, got %v", err)
	}

	open := ladder()
	open[1].MaxAmount = nil
	if err := ValidateCoverage(open, domain.TransactionTransfer); !errors.Is(err, domain.ErrUnboundedTierNotLast) {
		t.Fatalf("expected ErrUnboundedTierNotLast, got %v", err)
	}
}

func TestAdjustPreservesCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(t, "tiers")
		tiers := make([]domain.CommissionTier, 0, n)
		lower := decimal.Zero
		for i := 0; i < n; i++ {
			tier := domain.CommissionTier{ID: string(rune('a' + i)), MinAmount: lower, IsActive: true}
			if i < n-1 {
				upper := lower.Add(decimal.NewFromInt(rapid.Int64Range(1, 10_000).Draw(t, "width")))
				tier.MaxAmount = domain.DecimalPtr(upper)
				lower = upper
			}
			tiers = append(tiers, tier)
		}

		edit := rapid.IntRange(0, n-2).Draw(t, "edit")
		newMax := tiers[edit].MinAmount.Add(decimal.NewFromInt(rapid.Int64Range(1, 10_000).Draw(t, "newWidth")))

		got, err := AdjustSubsequentTiers(tiers, tiers[edit].ID, &newMax)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := ValidateCoverage(got, domain.TransactionTransfer); err != nil {
			t.Fatalf("coverage broken: %v", err)
		}
		for i := edit + 1; i < n-1; i++ {
			wantWidth := tiers[i].MaxAmount.Sub(tiers[i].MinAmount)
			if !got[i].MaxAmount.Sub(got[i].MinAmount).Equal(wantWidth) {
				t.Fatalf("tier %s width changed", got[i].ID)
			}
		}
	})
}

func TestCheckOverlap(t *testing.T) {
	t.Parallel()

	existing := []domain.CommissionTier{
		{ID: "low", TransactionType: "transfer", MinAmount: d("0"), MaxAmount: ptr("1000"), IsActive: true},
		{ID: "open", TransactionType: "exchange", MinAmount: d("500"), IsActive: true},
		{ID: "any", MinAmount: d("0"), MaxAmount: ptr("100"), IsActive: true},
		{ID: "old", TransactionType: "transfer", MinAmount: d("5000"), MaxAmount: ptr("9000"), IsActive: false},
	}

	tests := []struct {
		name      string
		candidate domain.CommissionTier
		wantErr   bool
	}{
		{"inside existing range", domain.CommissionTier{TransactionType: "transfer", MinAmount: d("500"), MaxAmount: ptr("2000")}, true},
		{"shares a boundary", domain.CommissionTier{TransactionType: "transfer", MinAmount: d("1000"), MaxAmount: ptr("2000")}, false},
		{"unbounded candidate", domain.CommissionTier{TransactionType: "transfer", MinAmount: d("999")}, true},
		{"below unbounded tier", domain.CommissionTier{TransactionType: "exchange", MinAmount: d("0"), MaxAmount: ptr("500")}, false},
		{"above unbounded tier start", domain.CommissionTier{TransactionType: "exchange", MinAmount: d("100000"), MaxAmount: ptr("200000")}, true},
		{"other type", domain.CommissionTier{TransactionType: "deposit", MinAmount: d("0"), MaxAmount: ptr("1000")}, false},
		{"wildcard forms are one type", domain.CommissionTier{TransactionType: domain.WildcardType, MinAmount: d("50"), MaxAmount: ptr("60")}, true},
		{"inactive tier ignored", domain.CommissionTier{TransactionType: "transfer", MinAmount: d("6000"), MaxAmount: ptr("7000")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOverlap(existing, tt.candidate)
			if tt.wantErr && !errors.Is(err, domain.ErrTierOverlap) {
				t.Fatalf("expected ErrTierOverlap, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}
