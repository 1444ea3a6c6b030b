package config

import (
	"strings"
	"testing"
	"time"
)

const minimal = `
environment: test
model:
  path: models/linear_model.yaml
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if c.MarketData.Range != "5y" || c.MarketData.Interval != "1mo" {
		t.Fatalf("unexpected market data window %s/%s", c.MarketData.Range, c.MarketData.Interval)
	}
	if c.MarketData.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", c.MarketData.Timeout)
	}
	if c.Model.Backend != "file" || c.Sink.Type != "none" {
		t.Fatalf("unexpected backends model=%s sink=%s", c.Model.Backend, c.Sink.Type)
	}
}

func TestParseRejectsUnknownSink(t *testing.T) {
	_, err := Parse([]byte(minimal + "sink:\n  type: s3\n"))
	if err == nil || !strings.Contains(err.Error(), "sink.type") {
		t.Fatalf("expected sink.type error, got %v", err)
	}
}

func TestParseRequiresModelLocation(t *testing.T) {
	_, err := Parse([]byte("environment: test\nmodel:\n  backend: remote\n"))
	if err == nil || !strings.Contains(err.Error(), "service_url") {
		t.Fatalf("expected service_url error, got %v", err)
	}
}

func TestParseKafkaSinkNeedsBrokers(t *testing.T) {
	_, err := Parse([]byte(minimal + "sink:\n  type: kafka\n"))
	if err == nil || !strings.Contains(err.Error(), "kafka.brokers") {
		t.Fatalf("expected kafka.brokers error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := map[string]string{
		"PORT":          "9090",
		"SINK":          "kafka",
		"KAFKA_BROKERS": "k1:9092, k2:9092",
		"MODEL_PATH":    "/opt/model.yaml",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	if c.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if c.Sink.Type != "kafka" || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected kafka override %+v", c.Kafka.Brokers)
	}
	if c.Model.Path != "/opt/model.yaml" {
		t.Fatalf("unexpected model path %s", c.Model.Path)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
}

func TestParseRedisLimiterNeedsHost(t *testing.T) {
	_, err := Parse([]byte(minimal + "ratelimit:\n  enabled: true\n  backend: redis\n"))
	if err == nil || !strings.Contains(err.Error(), "ratelimit.redis.host") {
		t.Fatalf("expected redis host error, got %v", err)
	}
}

func TestParseSinkQueueDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal + "sink:\n  async: true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Sink.Workers != 2 || c.Sink.QueueSize != 256 || c.Sink.RetryDelay != 500*time.Millisecond {
		t.Fatalf("unexpected sink queue defaults %+v", c.Sink)
	}
}

func TestSampleConfigParses(t *testing.T) {
	c, err := Load("../../config/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.RateLimit.Enabled || c.Kafka.RequiredAcks != -1 {
		t.Fatalf("unexpected sample config %+v", c.RateLimit)
	}
}
