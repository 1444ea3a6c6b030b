package adjust

import (
	"errors"
	"testing"

	"FinCast/internal/domain/models"
)

func mustApply(t *testing.T, base float64, assetType string, years int, ir, inf float64) models.Adjustment {
	t.Helper()
	adj, err := Apply(base, assetType, years, ir, inf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return adj
}

func TestApplyStockScenario(t *testing.T) {
	adj := mustApply(t, 150, "Stock", 5, 5, 2)
	if got := Round2(adj.GrowthApplied); got != 224.51 {
		t.Fatalf("unexpected growth applied %v", got)
	}
	if got := Round2(adj.Adjusted); got != 231.25 {
		t.Fatalf("unexpected adjusted %v", got)
	}
	if adj.GrowthPercent != "50%" {
		t.Fatalf("unexpected growth percent %q", adj.GrowthPercent)
	}
}

func TestApplyZeroYears(t *testing.T) {
	adj := mustApply(t, 100, "Bond", 0, 3, 3)
	if adj.GrowthApplied != 100 || adj.Adjusted != 100 || adj.GrowthPercent != "0%" {
		t.Fatalf("unexpected adjustment %+v", adj)
	}
}

func TestApplyDefaultGrowth(t *testing.T) {
	adj := mustApply(t, 100, "Collectibles", 1, 0, 0)
	if Round2(adj.GrowthApplied) != 105 || adj.GrowthPercent != "5%" {
		t.Fatalf("unexpected adjustment %+v", adj)
	}
}

func TestApplyNegativeRealRate(t *testing.T) {
	adj := mustApply(t, 100, "Stock", 1, 1, 6)
	if Round2(adj.Adjusted) != 102.98 {
		t.Fatalf("unexpected adjusted %v", adj.Adjusted)
	}
}

func TestApplyMonotonicInYears(t *testing.T) {
	prev := 0.0
	for y := 0; y <= 30; y++ {
		adj := mustApply(t, 10, "Cryptocurrency", y, 0, 0)
		if adj.GrowthApplied <= prev {
			t.Fatalf("growth not increasing at year %d", y)
		}
		prev = adj.GrowthApplied
	}
}

func TestApplyRisesWithInterestRate(t *testing.T) {
	prev := mustApply(t, 100, "Stock", 5, -10, 2).Adjusted
	for ir := -9.5; ir <= 20; ir += 0.5 {
		got := mustApply(t, 100, "Stock", 5, ir, 2).Adjusted
		if got <= prev {
			t.Fatalf("adjusted did not rise at interest %v: %v <= %v", ir, got, prev)
		}
		prev = got
	}
}

func TestApplyFallsWithInflationRate(t *testing.T) {
	prev := mustApply(t, 100, "Real Estate", 10, 4, -10).Adjusted
	for inf := -9.5; inf <= 20; inf += 0.5 {
		got := mustApply(t, 100, "Real Estate", 10, 4, inf).Adjusted
		if got >= prev {
			t.Fatalf("adjusted did not fall at inflation %v: %v >= %v", inf, got, prev)
		}
		prev = got
	}
}

func TestApplyLongHorizon(t *testing.T) {
	adj := mustApply(t, 100, "Bond", 200, 0, 0)
	if adj.GrowthApplied <= 100 || adj.GrowthPercent == "" {
		t.Fatalf("unexpected adjustment %+v", adj)
	}

	_, err := Apply(100, "Cryptocurrency", 10000, 5, 2)
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
}

func TestGrowthPercentLarge(t *testing.T) {
	if got := GrowthPercent(1e20); got != "10000000000000000000000%" {
		t.Fatalf("unexpected large percent %q", got)
	}
	if got := GrowthPercent(2); got != "100%" {
		t.Fatalf("unexpected percent %q", got)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		1.234:   1.23,
		1.236:   1.24,
		-1.2345: -1.23,
		0:       0,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}
