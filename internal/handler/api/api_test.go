package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/usecase"

	"github.com/labstack/echo/v4"
)

type stubSource struct {
	points []models.PricePoint
	err    error
	calls  int
}

func (s *stubSource) Fetch(context.Context, string) ([]models.PricePoint, error) {
	s.calls++
	return s.points, s.err
}

type stubPredictor struct {
	value float64
	ready bool
}

func (p *stubPredictor) Predict(context.Context, models.FeatureVector) (float64, error) {
	return p.value, nil
}
func (p *stubPredictor) Ready() bool  { return p.ready }
func (p *stubPredictor) Name() string { return "stub" }

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) { return false, errors.New("redis down") }
func (brokenLimiter) Close() error                                 { return nil }

func closes(vs ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(vs))
	for i, v := range vs {
		out[i] = models.PricePoint{Time: time.Unix(int64(i), 0), Close: v}
	}
	return out
}

func newEcho(src *stubSource, limiter ratelimit.Limiter) *echo.Echo {
	pipe := usecase.NewForecastPipeline(src, &stubPredictor{value: 150, ready: true})
	e := echo.New()
	NewForecastEchoHandler(nil, pipe, limiter).RegisterRoutes(e)
	NewHealthHandler(pipe.Ready, "stub").RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

const appleBody = `{"asset_type":"Stock","asset_name":"AAPL","interest_rate":5,"inflation_rate":2}`

func TestForecastSuccess(t *testing.T) {
	e := newEcho(&stubSource{points: closes(140, 145, 148, 150)}, nil)
	rec := do(e, http.MethodPost, "/api/forecast", appleBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Fatalf("unexpected content type %s", ct)
	}
	body := decode(t, rec)
	want := map[string]interface{}{
		"asset":                   "Apple",
		"current_price":           150.0,
		"predicted_price_5_years": 231.25,
		"interest_rate":           5.0,
		"inflation_rate":          2.0,
		"forecast_years":          5.0,
		"growth_applied":          "50%",
	}
	if len(body) != len(want) {
		t.Fatalf("unexpected keys %v", body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s = %v, want %v", k, body[k], v)
		}
	}
}

func TestForecastHorizonKey(t *testing.T) {
	e := newEcho(&stubSource{points: closes(1, 2, 3, 4)}, nil)
	rec := do(e, http.MethodPost, "/api/forecast",
		`{"asset_type":"Bond","asset_name":"Corporate Bond","interest_rate":1,"inflation_rate":1,"forecast_years":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("display name is not a valid asset name, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/forecast",
		`{"asset_type":"Bond","asset_name":"LQD","interest_rate":1,"inflation_rate":1,"forecast_years":10}`)
	body := decode(t, rec)
	if _, ok := body["predicted_price_10_years"]; !ok {
		t.Fatalf("missing horizon key in %v", body)
	}
	if body["asset"] != "Corporate Bond" {
		t.Fatalf("expected display name in response, got %v", body["asset"])
	}
}

func TestForecastMethodNotAllowed(t *testing.T) {
	src := &stubSource{points: closes(1, 2, 3, 4)}
	e := newEcho(src, nil)
	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := do(e, m, "/api/forecast", appleBody)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: unexpected status %d", m, rec.Code)
		}
		if got := decode(t, rec)["error"]; got != msgMethodNotAllowed {
			t.Fatalf("%s: unexpected error %v", m, got)
		}
	}
	if src.calls != 0 {
		t.Fatalf("non-POST must not fetch")
	}
}

func TestForecastClientErrors(t *testing.T) {
	e := newEcho(&stubSource{points: closes(1, 2, 3, 4)}, nil)
	cases := map[string]struct {
		body string
		msg  string
	}{
		"unknown asset":  {`{"asset_type":"Stock","asset_name":"Google","interest_rate":5,"inflation_rate":2}`, usecase.MsgInvalidAsset},
		"missing rate":   {`{"asset_type":"Stock","asset_name":"AAPL","inflation_rate":2}`, "interest_rate is required"},
		"zero years":     {`{"asset_type":"Stock","asset_name":"AAPL","interest_rate":5,"inflation_rate":2,"forecast_years":0}`, "forecast_years must be greater than or equal to 1"},
		"malformed json": {`{"asset_type":`, ""},
	}
	for name, c := range cases {
		rec := do(e, http.MethodPost, "/api/forecast", c.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: unexpected status %d", name, rec.Code)
		}
		got, _ := decode(t, rec)["error"].(string)
		if c.msg != "" && got != c.msg {
			t.Fatalf("%s: error = %q, want %q", name, got, c.msg)
		}
		if got == "" {
			t.Fatalf("%s: empty error message", name)
		}
	}
}

func TestForecastNoData(t *testing.T) {
	e := newEcho(&stubSource{err: drepo.ErrNoData}, nil)
	rec := do(e, http.MethodPost, "/api/forecast", appleBody)
	if rec.Code != http.StatusNotFound || decode(t, rec)["error"] != usecase.MsgNoData {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestForecastRateLimited(t *testing.T) {
	e := newEcho(&stubSource{points: closes(1, 2, 3, 4)}, ratelimit.NewTokenBucket(1, time.Hour))
	if rec := do(e, http.MethodPost, "/api/forecast", appleBody); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	rec := do(e, http.MethodPost, "/api/forecast", appleBody)
	if rec.Code != http.StatusTooManyRequests || decode(t, rec)["error"] != msgRateLimited {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestForecastLimiterFailsOpen(t *testing.T) {
	e := newEcho(&stubSource{points: closes(1, 2, 3, 4)}, brokenLimiter{})
	if rec := do(e, http.MethodPost, "/api/forecast", appleBody); rec.Code != http.StatusOK {
		t.Fatalf("limiter errors must not block, got %d", rec.Code)
	}
}

func TestAssets(t *testing.T) {
	e := newEcho(&stubSource{}, nil)
	rec := do(e, http.MethodGet, "/api/assets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var out assetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Types) != 5 || len(out.Assets) != 9 {
		t.Fatalf("unexpected catalog %+v", out)
	}
}

func TestHealth(t *testing.T) {
	e := newEcho(&stubSource{}, nil)
	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("unexpected ready status %d", rec.Code)
	}

	notReady := echo.New()
	NewHealthHandler(func() bool { return false }, "m").RegisterRoutes(notReady)
	if rec := do(notReady, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
