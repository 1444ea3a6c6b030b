package usecase

import (
	"context"
	"errors"
	"time"

	"FinCast/internal/domain/catalog"
	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/adjust"
	"FinCast/internal/services/features"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"

	"github.com/google/uuid"
)

const (
	MsgInvalidAsset = "Invalid asset type or name"
	MsgNoData       = "No data found for this asset"
)

// PipelineOption configures ForecastPipeline.
type PipelineOption func(*ForecastPipeline)

// ForecastPipeline runs fetch, features, prediction and adjustment for one request.
type ForecastPipeline struct {
	source      drepo.HistorySource
	predictor   domsvc.Predictor
	sink        drepo.ForecastSink
	metrics     drepo.Metrics
	log         *applogger.Logger
	sinkTimeout time.Duration
	now         func() time.Time
	newID       func() string
}

// NewForecastPipeline wires the pipeline. Sink and metrics default to no-ops.
func NewForecastPipeline(source drepo.HistorySource, predictor domsvc.Predictor, opts ...PipelineOption) *ForecastPipeline {
	p := &ForecastPipeline{
		source:      source,
		predictor:   predictor,
		sink:        nopSink{},
		metrics:     nopMetrics{},
		log:         applogger.Nop(),
		sinkTimeout: 2 * time.Second,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSink sets where successful forecasts are recorded.
func WithSink(s drepo.ForecastSink) PipelineOption {
	return func(p *ForecastPipeline) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m drepo.Metrics) PipelineOption {
	return func(p *ForecastPipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *ForecastPipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithSinkTimeout bounds each sink write.
func WithSinkTimeout(d time.Duration) PipelineOption {
	return func(p *ForecastPipeline) { p.sinkTimeout = d }
}

// WithClock overrides time.Now and the record ID generator.
func WithClock(now func() time.Time, newID func() string) PipelineOption {
	return func(p *ForecastPipeline) {
		p.now = now
		p.newID = newID
	}
}

// Ready reports whether the model can serve.
func (p *ForecastPipeline) Ready() bool {
	return p.predictor != nil && p.predictor.Ready()
}

// Validate resolves the asset and checks the remaining fields.
// The catalog is checked first so an unknown asset wins over missing rates.
func (p *ForecastPipeline) Validate(ctx context.Context, req *models.ForecastRequest) (catalog.Asset, error) {
	asset, ok := catalog.Lookup(req.AssetType, req.AssetName)
	if !ok {
		return catalog.Asset{}, xhttp.BadRequestError(MsgInvalidAsset).WithField("asset_name")
	}
	if err := xhttp.ValidateStruct(ctx, req); err != nil {
		return catalog.Asset{}, err
	}
	return asset, nil
}

// Forecast validates req and produces the adjusted prediction.
// Every returned error is an *xhttp.AppError.
func (p *ForecastPipeline) Forecast(ctx context.Context, req *models.ForecastRequest) (*models.ForecastResult, error) {
	asset, err := p.Validate(ctx, req)
	if err != nil {
		p.metrics.RecordForecast(req.AssetType, "invalid")
		return nil, err
	}
	if !p.Ready() {
		p.metrics.RecordForecast(asset.Type, "unavailable")
		return nil, xhttp.ServiceUnavailableError("Model is not ready")
	}

	start := time.Now()
	history, err := p.source.Fetch(ctx, asset.Ticker)
	p.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, drepo.ErrNoData) {
			p.metrics.RecordForecast(asset.Type, "not_found")
			return nil, xhttp.NotFoundError(MsgNoData).WithError(err)
		}
		p.metrics.RecordForecast(asset.Type, "upstream_error")
		p.metrics.RecordError("fetch")
		p.log.Error("market data fetch failed",
			applogger.String("ticker", asset.Ticker),
			applogger.Error(err),
		)
		return nil, xhttp.BadGatewayError("Market data source unavailable: " + err.Error()).WithError(err)
	}

	fv, err := features.Build(history)
	if err != nil {
		p.metrics.RecordForecast(asset.Type, "insufficient_history")
		if errors.Is(err, features.ErrInsufficientHistory) {
			return nil, xhttp.UnprocessableError("Insufficient price history for this asset").WithError(err)
		}
		return nil, xhttp.UnprocessableError("Price history produced invalid features").WithError(err)
	}
	p.metrics.RecordLastPrice(asset.Ticker, fv.Close)

	start = time.Now()
	base, err := p.predictor.Predict(ctx, fv)
	p.metrics.RecordLatency("predict", time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordForecast(asset.Type, "model_error")
		p.metrics.RecordError("predict")
		p.log.Error("prediction failed",
			applogger.String("model", p.predictor.Name()),
			applogger.Error(err),
		)
		return nil, xhttp.InternalError(err.Error()).WithError(err)
	}

	years := req.Years()
	adj, err := adjust.Apply(base, asset.Type, years, *req.InterestRate, *req.InflationRate)
	if err != nil {
		p.metrics.RecordForecast(asset.Type, "overflow")
		return nil, xhttp.UnprocessableError("Forecast horizon is too long for this asset").WithError(err)
	}

	res := &models.ForecastResult{
		AssetType:     asset.Type,
		AssetName:     asset.Name,
		Ticker:        asset.Ticker,
		CurrentPrice:  adjust.Round2(fv.Close),
		BasePredicted: base,
		Predicted:     adjust.Round2(adj.Adjusted),
		GrowthApplied: adj.GrowthPercent,
		InterestRate:  *req.InterestRate,
		InflationRate: *req.InflationRate,
		Years:         years,
		Features:      fv,
	}
	p.metrics.RecordForecast(asset.Type, "ok")
	p.record(ctx, res)
	return res, nil
}

// record emits res to the sink. Failures never reach the caller.
func (p *ForecastPipeline) record(ctx context.Context, res *models.ForecastResult) {
	rec := models.NewForecastRecord(p.newID(), p.predictor.Name(), res, p.now())

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.sinkTimeout)
	defer cancel()

	if err := p.sink.Record(sctx, rec); err != nil {
		p.metrics.RecordSinkWrite(p.sink.Name(), false)
		p.log.Warn("forecast sink write failed",
			applogger.String("sink", p.sink.Name()),
			applogger.String("ticker", rec.Ticker),
			applogger.Error(err),
		)
		return
	}
	p.metrics.RecordSinkWrite(p.sink.Name(), true)
}

type nopSink struct{}

func (nopSink) Record(context.Context, *models.ForecastRecord) error { return nil }
func (nopSink) Name() string                                         { return "none" }
func (nopSink) Close() error                                         { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string, string)   {}
func (nopMetrics) RecordSinkWrite(string, bool)    {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
