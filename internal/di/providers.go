package di

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/repository"
	"FinCast/internal/domain/service"
	"FinCast/internal/handler/api"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/service/yahoo"
	"FinCast/internal/services/analytics"
	"FinCast/internal/usecase"
	"FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/queue"
	"FinCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHistorySource creates the Yahoo chart client.
func ProvideHistorySource(cfg *config.Config) repository.HistorySource {
	return yahoo.New(
		yahoo.WithBaseURL(cfg.MarketData.BaseURL),
		yahoo.WithRange(cfg.MarketData.Range),
		yahoo.WithInterval(cfg.MarketData.Interval),
		yahoo.WithAdjusted(cfg.MarketData.Adjusted),
		yahoo.WithTimeout(cfg.MarketData.Timeout),
		yahoo.WithRetry(cfg.MarketData.RetryMax, cfg.MarketData.Backoff),
	)
}

// ProvidePredictor loads the model. A load failure aborts startup.
func ProvidePredictor(cfg *config.Config, l *applogger.Logger) (service.Predictor, error) {
	switch cfg.Model.Backend {
	case "remote":
		p := analytics.NewRemotePredictor(cfg.Model.ServiceURL, "linear_model", cfg.Model.Timeout, 2)
		l.Info("model backend ready", applogger.String("backend", "remote"), applogger.String("url", cfg.Model.ServiceURL))
		return p, nil
	default:
		m, err := analytics.LoadLinearModel(cfg.Model.Path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		l.Info("model loaded", applogger.String("path", cfg.Model.Path), applogger.String("name", m.Name()))
		return m, nil
	}
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the forecasts table exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(true),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.ForecastSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer keyed by ticker.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideForecastSink selects the sink named by sink.type.
func ProvideForecastSink(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (repository.ForecastSink, error) {
	var (
		sink repository.ForecastSink
		err  error
	)
	switch cfg.Sink.Type {
	case "kafka":
		var p *pkgkafka.Producer
		if p, err = ProvideKafkaProducer(cfg); err == nil {
			sink = internalrepo.NewKafkaForecastPublisher(p, cfg.Kafka.Topic)
		}
	case "clickhouse":
		var ch *pkgch.Client
		if ch, err = ProvideClickHouseClient(cfg); err == nil {
			sink = internalrepo.NewCHForecastStore(ch, cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
		}
	default:
		sink = internalrepo.NoopSink{}
	}
	if err != nil {
		return nil, err
	}
	if cfg.Sink.Async && cfg.Sink.Type != "none" {
		inner := sink
		if sink, err = internalrepo.NewAsyncSink(inner, l, m, queue.QueueConfig{
			Workers:    cfg.Sink.Workers,
			QueueSize:  cfg.Sink.QueueSize,
			RetryLimit: cfg.Sink.RetryLimit,
			RetryDelay: cfg.Sink.RetryDelay,
			JobTimeout: cfg.Sink.Timeout,
		}, cfg.Server.ShutdownTimeout); err != nil {
			_ = inner.Close()
			return nil, err
		}
	}
	l.Info("forecast sink ready", applogger.String("sink", sink.Name()))
	return sink, nil
}

// ProvideLimiter builds the /api/forecast rate limiter.
func ProvideLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.Unlimited{}, nil
	}
	if rl.Backend == "redis" {
		counter, err := cache.NewRedisCounter(
			cache.WithRedisHost(rl.Redis.Host),
			cache.WithRedisPort(rl.Redis.Port),
			cache.WithRedisPassword(rl.Redis.Password),
			cache.WithRedisDB(rl.Redis.DB),
			cache.WithRedisPrefix(rl.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("rate limit redis: %w", err)
		}
		return ratelimit.NewWindowLimiter(counter, rl.Limit, rl.Window), nil
	}
	return ratelimit.NewTokenBucket(rl.Limit, rl.Window), nil
}

// ProvideForecastPipeline wires the forecast use case.
func ProvideForecastPipeline(
	cfg *config.Config,
	source repository.HistorySource,
	predictor service.Predictor,
	sink repository.ForecastSink,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastPipeline {
	return usecase.NewForecastPipeline(source, predictor,
		usecase.WithSink(sink),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithSinkTimeout(cfg.Sink.Timeout),
	)
}

// ProvideForecastHandler creates the forecast API handler.
func ProvideForecastHandler(l *applogger.Logger, p *usecase.ForecastPipeline, limiter ratelimit.Limiter) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l, p, limiter)
}

// ProvideHealthHandler creates the probe handler.
func ProvideHealthHandler(p *usecase.ForecastPipeline, predictor service.Predictor) *api.HealthHandler {
	return api.NewHealthHandler(p.Ready, predictor.Name())
}

// ProvideHTTPServer creates the Echo server with every handler registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, fh *api.ForecastEchoHandler, hh *api.HealthHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer([]xhttp.Handler{fh, hh},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application and registers resources to close on shutdown.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	sink repository.ForecastSink,
	limiter ratelimit.Limiter,
) *server.App {
	app := server.New(srv, l, cfg.Server.ShutdownTimeout)
	app.OnShutdown("sink", sink)
	app.OnShutdown("ratelimit", limiter)
	return app
}
