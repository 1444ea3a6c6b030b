package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func series(closes ...float64) []models.PricePoint {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Time: start.AddDate(0, i, 0), Close: c}
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-4 }

func TestBuild(t *testing.T) {
	fv, err := Build(series(100, 110, 99, 108.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv.Close != 108.9 {
		t.Fatalf("unexpected close %v", fv.Close)
	}
	if !near(fv.MovingAverage, 105.9667) {
		t.Fatalf("unexpected moving average %v", fv.MovingAverage)
	}
	if !near(fv.Volatility, 0.11547) {
		t.Fatalf("unexpected volatility %v", fv.Volatility)
	}
	if !near(fv.PriceChange, 0.1) {
		t.Fatalf("unexpected price change %v", fv.PriceChange)
	}
}

func TestBuildUsesLatestWindowOnly(t *testing.T) {
	fv, err := Build(series(1, 2, 3, 50, 50, 50, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv.MovingAverage != 50 || fv.Volatility != 0 || fv.PriceChange != 0 {
		t.Fatalf("unexpected features %+v", fv)
	}
}

func TestBuildInsufficientHistory(t *testing.T) {
	for n := 0; n < MinObservations; n++ {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100
		}
		if _, err := Build(series(closes...)); !errors.Is(err, ErrInsufficientHistory) {
			t.Fatalf("n=%d: expected insufficient history, got %v", n, err)
		}
	}
}

func TestBuildRejectsNonFinite(t *testing.T) {
	if _, err := Build(series(100, 0, 10, 20)); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected non-finite error, got %v", err)
	}
}

func TestSampleStd(t *testing.T) {
	if got := SampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !near(got, 2.13809) {
		t.Fatalf("unexpected std %v", got)
	}
	if !math.IsNaN(SampleStd([]float64{1})) {
		t.Fatalf("expected NaN for single value")
	}
}
