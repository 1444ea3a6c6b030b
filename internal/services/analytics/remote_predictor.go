package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// RemotePredictor delegates inference to a model service exposing POST /predict.
type RemotePredictor struct {
	base     *HTTPServiceBase
	model    string
	attempts int
}

// NewRemotePredictor targets serviceURL. attempts < 1 means a single try.
func NewRemotePredictor(serviceURL, model string, timeout time.Duration, attempts int) *RemotePredictor {
	if model == "" {
		model = "linear_model"
	}
	return &RemotePredictor{
		base:     NewHTTPServiceBase(serviceURL, timeout),
		model:    model,
		attempts: attempts,
	}
}

type predictReq struct {
	Model    string             `json:"model"`
	Features map[string]float64 `json:"features"`
	Order    []string           `json:"order"`
}

type predictResp struct {
	Prediction *float64 `json:"prediction"`
}

func (p *RemotePredictor) Predict(ctx context.Context, fv models.FeatureVector) (float64, error) {
	var pr predictResp
	req := predictReq{Model: p.model, Features: fv.Map(), Order: models.FeatureNames[:]}
	if err := p.base.PostJSONWithRetry(ctx, "/predict", req, &pr, p.attempts); err != nil {
		return 0, fmt.Errorf("remote predict: %w", err)
	}
	if pr.Prediction == nil {
		return 0, fmt.Errorf("remote predict: response missing prediction")
	}
	if math.IsNaN(*pr.Prediction) || math.IsInf(*pr.Prediction, 0) {
		return 0, fmt.Errorf("remote predict: non-finite prediction")
	}
	return *pr.Prediction, nil
}

func (p *RemotePredictor) Ready() bool { return p.base.baseURL != "" }

func (p *RemotePredictor) Name() string { return "remote:" + p.model }

var _ domsvc.Predictor = (*RemotePredictor)(nil)
