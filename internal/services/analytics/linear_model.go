package analytics

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"

	"gopkg.in/yaml.v3"
)

// LinearArtifact is the on-disk form of a fitted linear regression.
// JSON artifacts decode too since YAML is a superset.
type LinearArtifact struct {
	Name         string    `yaml:"name"`
	Features     []string  `yaml:"features"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
}

// LinearModel evaluates intercept + sum(coef[i] * x[i]).
type LinearModel struct {
	name      string
	intercept float64
	coef      [4]float64
}

// LoadLinearModel reads and validates an artifact from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	m, err := ParseLinearModel(b)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

// ParseLinearModel decodes an artifact and checks it against the model feature order.
func ParseLinearModel(b []byte) (*LinearModel, error) {
	var a LinearArtifact
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return NewLinearModel(a)
}

// NewLinearModel validates a and builds the model.
func NewLinearModel(a LinearArtifact) (*LinearModel, error) {
	if len(a.Features) != len(models.FeatureNames) {
		return nil, fmt.Errorf("expected %d features, got %d", len(models.FeatureNames), len(a.Features))
	}
	for i, name := range models.FeatureNames {
		if a.Features[i] != name {
			return nil, fmt.Errorf("feature %d: expected %q, got %q", i, name, a.Features[i])
		}
	}
	if len(a.Coefficients) != len(models.FeatureNames) {
		return nil, fmt.Errorf("expected %d coefficients, got %d", len(models.FeatureNames), len(a.Coefficients))
	}

	m := &LinearModel{name: a.Name, intercept: a.Intercept}
	if m.name == "" {
		m.name = "linear_model"
	}
	copy(m.coef[:], a.Coefficients)
	for _, c := range append([]float64{m.intercept}, a.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("non-finite parameter in artifact")
		}
	}
	return m, nil
}

func (m *LinearModel) Predict(_ context.Context, fv models.FeatureVector) (float64, error) {
	y := m.intercept
	for i, x := range fv.Values() {
		y += m.coef[i] * x
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("linear model: non-finite prediction")
	}
	return y, nil
}

func (m *LinearModel) Ready() bool { return m != nil }

func (m *LinearModel) Name() string { return m.name }

var _ domsvc.Predictor = (*LinearModel)(nil)
