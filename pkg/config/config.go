package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"FinCast/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	MarketData struct {
		BaseURL  string        `yaml:"base_url"`
		Range    string        `yaml:"range"`
		Interval string        `yaml:"interval"`
		Adjusted bool          `yaml:"adjusted"`
		Timeout  time.Duration `yaml:"timeout"`
		RetryMax int           `yaml:"retry_max"`
		Backoff  time.Duration `yaml:"backoff"`
	} `yaml:"market_data"`
	Model struct {
		Backend    string        `yaml:"backend"`
		Path       string        `yaml:"path"`
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"model"`
	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"ratelimit"`
	Sink struct {
		Type       string        `yaml:"type"`
		Timeout    time.Duration `yaml:"timeout"`
		Async      bool          `yaml:"async"`
		Workers    int           `yaml:"workers"`
		QueueSize  int           `yaml:"queue_size"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"sink"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment lookup function.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("FINCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := getenv("MARKET_DATA_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := getenv("SINK"); v != "" {
		c.Sink.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitTrim(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.RateLimit.Redis.Host = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.RateLimit.Redis.Password = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.Range == "" {
		c.MarketData.Range = "5y"
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = "1mo"
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 10 * time.Second
	}
	if c.MarketData.Backoff == 0 {
		c.MarketData.Backoff = 200 * time.Millisecond
	}
	if c.Model.Backend == "" {
		c.Model.Backend = "file"
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 3 * time.Second
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.RateLimit.Redis.Port == 0 {
		c.RateLimit.Redis.Port = 6379
	}
	if c.RateLimit.Redis.Prefix == "" {
		c.RateLimit.Redis.Prefix = "fincast"
	}
	if c.Sink.Type == "" {
		c.Sink.Type = "none"
	}
	if c.Sink.Timeout == 0 {
		c.Sink.Timeout = 2 * time.Second
	}
	if c.Sink.Workers == 0 {
		c.Sink.Workers = 2
	}
	if c.Sink.QueueSize == 0 {
		c.Sink.QueueSize = 256
	}
	if c.Sink.RetryDelay == 0 {
		c.Sink.RetryDelay = 500 * time.Millisecond
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "fincast.forecasts"
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
	if c.Kafka.Producer.MaxAttempts == 0 {
		c.Kafka.Producer.MaxAttempts = 3
	}
	if c.Kafka.Producer.WriteTimeout == 0 {
		c.Kafka.Producer.WriteTimeout = 10 * time.Second
	}
	if c.Kafka.Producer.ReadTimeout == 0 {
		c.Kafka.Producer.ReadTimeout = 10 * time.Second
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "fincast"
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "forecasts"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Model.Backend {
	case "file":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for file backend")
		}
	case "remote":
		if c.Model.ServiceURL == "" {
			return fmt.Errorf("model.service_url is required for remote backend")
		}
	default:
		return fmt.Errorf("model.backend must be 'file' or 'remote', got '%s'", c.Model.Backend)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
			return fmt.Errorf("ratelimit.backend must be 'memory' or 'redis', got '%s'", c.RateLimit.Backend)
		}
		if c.RateLimit.Limit < 1 {
			return fmt.Errorf("ratelimit.limit must be positive")
		}
		if c.RateLimit.Backend == "redis" && c.RateLimit.Redis.Host == "" {
			return fmt.Errorf("ratelimit.redis.host is required for redis backend")
		}
	}
	switch c.Sink.Type {
	case "none":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when sink.type is kafka")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when sink.type is clickhouse")
		}
	default:
		return fmt.Errorf("sink.type must be 'none', 'kafka' or 'clickhouse', got '%s'", strings.TrimSpace(c.Sink.Type))
	}
	return nil
}
