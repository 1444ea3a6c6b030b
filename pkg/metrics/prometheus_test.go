package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordForecast("Stock", "ok")
	r.RecordForecast("Stock", "ok")
	r.RecordForecast("Bond", "not_found")
	r.RecordSinkWrite("kafka", false)
	r.RecordError("upstream")
	r.RecordLastPrice("AAPL", 150.5)
	r.RecordLatency("fetch", 0.2)

	if got := testutil.ToFloat64(r.forecasts.WithLabelValues("Stock", "ok")); got != 2 {
		t.Fatalf("unexpected forecast count %v", got)
	}
	if got := testutil.ToFloat64(r.sinkWrites.WithLabelValues("kafka", "error")); got != 1 {
		t.Fatalf("unexpected sink count %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")); got != 150.5 {
		t.Fatalf("unexpected last price %v", got)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("unexpected latency series %d", n)
	}
}

func TestRecorderSeparateRegistries(t *testing.T) {
	// second registration on a fresh registry must not panic
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
