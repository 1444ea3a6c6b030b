package service

import (
	"context"

	"FinCast/internal/domain/models"
)

// Predictor maps a feature vector to a base price prediction.
type Predictor interface {
	Predict(ctx context.Context, fv models.FeatureVector) (float64, error)
	// Ready reports whether the model can serve predictions.
	Ready() bool
	Name() string
}
