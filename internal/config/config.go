// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Fees      FeesConfig      `mapstructure:"fees"`
	Orderbook OrderbookConfig `mapstructure:"orderbook"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// FeesConfig controls which fee schedules are loaded.
type FeesConfig struct {
	ScheduleDir string   `mapstructure:"schedule_dir"` // overrides embedded schedules per venue
	Venues      []string `mapstructure:"venues"`       // empty = all
}

// OrderbookConfig holds the live orderbook API settings.
type OrderbookConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"` // 0 disables the in-process cache
	CacheSize         int           `mapstructure:"cache_size"`
	RedisAddr         string        `mapstructure:"redis_addr"` // empty disables the shared cache
	RedisPassword     string        `mapstructure:"redis_password"`
	RedisDB           int           `mapstructure:"redis_db"`
	RedisTTL          time.Duration `mapstructure:"redis_ttl"` // must be positive when redis_addr is set
}

// OracleConfig holds estimation policy.
type OracleConfig struct {
	MinProfitPct float64 `mapstructure:"min_profit_pct"`
	LiveOnly     bool    `mapstructure:"live_only"`
}

// MinProfitPctDecimal returns the profitability threshold as decimal.Decimal.
func (c *OracleConfig) MinProfitPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPct)
}

// ServerConfig holds the serve-mode listeners.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	HealthPort   int           `mapstructure:"health_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin, otlp-grpc, otlp-http, console
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("FEEORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "FEEORACLE_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "FEEORACLE_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "FEEORACLE_LOG_LEVEL", "LOG_LEVEL")

	// Fees
	v.BindEnv("fees.schedule_dir", "FEEORACLE_SCHEDULE_DIR")

	// Orderbook API
	v.BindEnv("orderbook.enabled", "FEEORACLE_ORDERBOOK_ENABLED")
	v.BindEnv("orderbook.base_url", "FEEORACLE_ORDERBOOK_URL", "REPLAY_LABS_BASE_URL")
	v.BindEnv("orderbook.api_key", "FEEORACLE_ORDERBOOK_API_KEY", "REPLAY_LABS_API_KEY")
	v.BindEnv("orderbook.redis_addr", "FEEORACLE_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("orderbook.redis_password", "FEEORACLE_REDIS_PASSWORD", "REDIS_PASSWORD")
	v.BindEnv("orderbook.redis_ttl", "FEEORACLE_REDIS_TTL")

	// Oracle
	v.BindEnv("oracle.min_profit_pct", "FEEORACLE_MIN_PROFIT_PCT")
	v.BindEnv("oracle.live_only", "FEEORACLE_LIVE_ONLY")

	// Server
	v.BindEnv("server.port", "FEEORACLE_PORT", "PORT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "FEEORACLE_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "FEEORACLE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "FEEORACLE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "replay-fee-oracle")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Fees defaults
	v.SetDefault("fees.schedule_dir", "")
	v.SetDefault("fees.venues", []string{})

	// Orderbook defaults
	v.SetDefault("orderbook.enabled", false)
	v.SetDefault("orderbook.base_url", "https://api.replaylab.io")
	v.SetDefault("orderbook.timeout", "10s")
	v.SetDefault("orderbook.requests_per_minute", 120)
	v.SetDefault("orderbook.cache_ttl", "2s")
	v.SetDefault("orderbook.cache_size", 512)
	v.SetDefault("orderbook.redis_db", 0)
	v.SetDefault("orderbook.redis_ttl", "5s")

	// Oracle defaults
	v.SetDefault("oracle.min_profit_pct", 0.5)
	v.SetDefault("oracle.live_only", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "replay-fee-oracle")
	v.SetDefault("telemetry.trace_provider", "otlp-grpc")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Orderbook.Enabled {
		if c.Orderbook.BaseURL == "" {
			return fmt.Errorf("orderbook.base_url is required when orderbook.enabled")
		}
		if _, err := url.ParseRequestURI(c.Orderbook.BaseURL); err != nil {
			return fmt.Errorf("invalid orderbook.base_url: %w", err)
		}
		if c.Orderbook.APIKey == "" {
			return fmt.Errorf("orderbook.api_key is required when orderbook.enabled")
		}
	}
	if c.Orderbook.Timeout <= 0 {
		return fmt.Errorf("orderbook.timeout must be positive")
	}
	if c.Orderbook.RequestsPerMinute < 0 || c.Orderbook.CacheSize < 0 {
		return fmt.Errorf("orderbook.requests_per_minute and orderbook.cache_size cannot be negative")
	}
	if c.Orderbook.RedisAddr != "" && c.Orderbook.RedisTTL <= 0 {
		return fmt.Errorf("orderbook.redis_ttl must be positive when orderbook.redis_addr is set")
	}
	if c.Oracle.MinProfitPct < 0 {
		return fmt.Errorf("oracle.min_profit_pct cannot be negative")
	}
	if c.Oracle.LiveOnly && !c.Orderbook.Enabled {
		return fmt.Errorf("oracle.live_only requires orderbook.enabled")
	}
	return nil
}
