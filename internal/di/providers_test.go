package di

import (
	"os"
	"path/filepath"
	"testing"

	"FinCast/internal/service/ratelimit"
	"FinCast/pkg/config"
	applogger "FinCast/pkg/logger"
)

const testModel = `name: test
features: ["Close", "30D_MA", "Volatility", "Price Change"]
intercept: 0
coefficients: [1, 0, 0, 0]
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(testModel), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	cfg, err := config.Parse([]byte("environment: test\nmodel:\n  path: " + path + "\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestProvidePredictorFile(t *testing.T) {
	cfg := testConfig(t)
	p, err := ProvidePredictor(cfg, applogger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Ready() || p.Name() != "test" {
		t.Fatalf("unexpected predictor %s", p.Name())
	}

	cfg.Model.Path = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := ProvidePredictor(cfg, applogger.Nop()); err == nil {
		t.Fatalf("expected load failure")
	}
}

func TestProvidePredictorRemote(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Backend = "remote"
	cfg.Model.ServiceURL = "http://model:8000"
	p, err := ProvidePredictor(cfg, applogger.Nop())
	if err != nil || p.Name() != "remote:linear_model" {
		t.Fatalf("unexpected predictor %v %v", p, err)
	}
}

func TestProvideLimiter(t *testing.T) {
	cfg := testConfig(t)
	l, err := ProvideLimiter(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := l.(ratelimit.Unlimited); !ok {
		t.Fatalf("disabled limiter should be Unlimited, got %T", l)
	}

	cfg.RateLimit.Enabled = true
	l, err = ProvideLimiter(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := l.(*ratelimit.TokenBucket); !ok {
		t.Fatalf("memory backend should be a token bucket, got %T", l)
	}
}

func TestProvideForecastSinkNone(t *testing.T) {
	s, err := ProvideForecastSink(testConfig(t), applogger.Nop(), nil)
	if err != nil || s.Name() != "none" {
		t.Fatalf("unexpected sink %v %v", s, err)
	}
}
