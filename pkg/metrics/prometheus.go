package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts  *prometheus.CounterVec
	sinkWrites *prometheus.CounterVec
	errors     *prometheus.CounterVec
	lastPrice  *prometheus.GaugeVec
	latency    *prometheus.HistogramVec
}

// New registers the forecast collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_forecasts_total",
				Help: "Forecast requests by asset type and outcome",
			},
			[]string{"asset_type", "outcome"},
		),
		sinkWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_sink_writes_total",
				Help: "Forecast records written to the configured sink",
			},
			[]string{"sink", "result"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_last_price",
				Help: "Last observed close for a ticker",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_operation_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordForecast counts a finished forecast request.
func (r *Recorder) RecordForecast(assetType, outcome string) {
	r.forecasts.WithLabelValues(assetType, outcome).Inc()
}

// RecordSinkWrite counts a sink write attempt.
func (r *Recorder) RecordSinkWrite(sink string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.sinkWrites.WithLabelValues(sink, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
