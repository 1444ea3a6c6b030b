package features

import (
	"errors"
	"fmt"
	"math"

	"FinCast/internal/domain/models"
)

// Window is the rolling length for the moving average and volatility.
const Window = 3

// MinObservations is the shortest history that yields Window percent changes.
const MinObservations = Window + 1

// ErrInsufficientHistory means the series is too short for the rolling window.
var ErrInsufficientHistory = errors.New("insufficient price history")

// ErrNonFinite means a computed feature is NaN or infinite.
var ErrNonFinite = errors.New("non-finite feature value")

// PctChange returns close[i]/close[i-1]-1 for i >= 1.
func PctChange(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStd returns the standard deviation with n-1 in the denominator.
func SampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Build derives the feature vector for the latest observation in history.
func Build(history []models.PricePoint) (models.FeatureVector, error) {
	if len(history) < MinObservations {
		return models.FeatureVector{}, fmt.Errorf("%w: have %d observations, need %d",
			ErrInsufficientHistory, len(history), MinObservations)
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Close
	}
	pct := PctChange(closes)

	fv := models.FeatureVector{
		Close:         closes[len(closes)-1],
		MovingAverage: Mean(closes[len(closes)-Window:]),
		Volatility:    SampleStd(pct[len(pct)-Window:]),
		PriceChange:   pct[len(pct)-1],
	}
	for i, v := range fv.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.FeatureVector{}, fmt.Errorf("%w: %s", ErrNonFinite, models.FeatureNames[i])
		}
	}
	return fv, nil
}
