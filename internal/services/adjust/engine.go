package adjust

import (
	"errors"
	"fmt"
	"math"

	"FinCast/internal/domain/catalog"
	"FinCast/internal/domain/models"
)

// ErrNonFinite is returned when compounding overflows float64.
var ErrNonFinite = errors.New("adjusted prediction is not finite")

// Apply compounds base by the category growth factor over years, then
// corrects for the real interest rate (interest minus inflation, in percent).
func Apply(base float64, assetType string, years int, interestRate, inflationRate float64) (models.Adjustment, error) {
	g := catalog.GrowthFactor(assetType)
	compound := math.Pow(g, float64(years))
	grown := base * compound
	adjusted := grown * (1 + (interestRate-inflationRate)/100)
	if !finite(compound) || !finite(grown) || !finite(adjusted) {
		return models.Adjustment{}, fmt.Errorf("%d years at %.3f: %w", years, g, ErrNonFinite)
	}
	return models.Adjustment{
		GrowthApplied: grown,
		Adjusted:      adjusted,
		GrowthPercent: GrowthPercent(compound),
	}, nil
}

// GrowthPercent renders a compound multiplier as a whole percentage, e.g. 1.4967 -> "50%".
func GrowthPercent(compound float64) string {
	pct := math.Round((compound - 1) * 100)
	if math.Abs(pct) < 1e15 {
		return fmt.Sprintf("%d%%", int64(pct))
	}
	return fmt.Sprintf("%.0f%%", pct)
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func finite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }
