package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marketpulse/pulse/internal/core"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Indicator IndicatorConfig `mapstructure:"indicator"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// SourcesConfig controls the quote cascade. Order is fixed; sources
// can only be switched off.
type SourcesConfig struct {
	NSE          SourceConfig `mapstructure:"nse"`
	Yahoo        SourceConfig `mapstructure:"yahoo"`
	AlphaVantage SourceConfig `mapstructure:"alphavantage"`
	TradingView  SourceConfig `mapstructure:"tradingview"`
	Groww        SourceConfig `mapstructure:"groww"`
}

type SourceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

type CacheConfig struct {
	QuoteTTL      time.Duration `mapstructure:"quote_ttl"`
	PredictionTTL time.Duration `mapstructure:"prediction_ttl"`
	MarketTTL     time.Duration `mapstructure:"market_ttl"`
}

// ForecastConfig selects the prediction strategy. "model" falls back
// to "statistical" when the artifact cannot be loaded.
type ForecastConfig struct {
	Strategy  string `mapstructure:"strategy"`
	ModelPath string `mapstructure:"model_path"`
}

// IndicatorConfig selects the extra-indicator strategy: "placeholder"
// or "standard".
type IndicatorConfig struct {
	Extras string `mapstructure:"extras"`
	Seed   int64  `mapstructure:"seed"`
}

type SchedulerConfig struct {
	QuoteInterval      time.Duration `mapstructure:"quote_interval"`
	PredictionInterval time.Duration `mapstructure:"prediction_interval"`
	DriftInterval      time.Duration `mapstructure:"drift_interval"`
	QuoteBatch         int           `mapstructure:"quote_batch"`
	PredictionBatch    int           `mapstructure:"prediction_batch"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Sources: SourcesConfig{
			NSE:          SourceConfig{Enabled: true},
			Yahoo:        SourceConfig{Enabled: true},
			AlphaVantage: SourceConfig{Enabled: true},
			TradingView:  SourceConfig{Enabled: true},
			Groww:        SourceConfig{Enabled: true},
		},
		Cache: CacheConfig{
			QuoteTTL:      5 * time.Second,
			PredictionTTL: 30 * time.Second,
			MarketTTL:     30 * time.Second,
		},
		Forecast: ForecastConfig{
			Strategy: "statistical",
		},
		Indicator: IndicatorConfig{
			Extras: "placeholder",
		},
		Scheduler: SchedulerConfig{
			QuoteInterval:      3 * time.Second,
			PredictionInterval: 9 * time.Second,
			DriftInterval:      5 * time.Second,
			QuoteBatch:         5,
			PredictionBatch:    3,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Cache.QuoteTTL <= 0 || c.Cache.PredictionTTL <= 0 || c.Cache.MarketTTL <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache TTLs must be positive"))
	}

	switch c.Forecast.Strategy {
	case "statistical":
	case "model":
		if c.Forecast.ModelPath == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("model_path required when strategy is model"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown forecast strategy %q", c.Forecast.Strategy))
	}

	switch c.Indicator.Extras {
	case "placeholder", "standard":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown indicator extras %q", c.Indicator.Extras))
	}

	if c.Scheduler.QuoteInterval <= 0 || c.Scheduler.PredictionInterval <= 0 || c.Scheduler.DriftInterval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scheduler intervals must be positive"))
	}
	if c.Scheduler.QuoteBatch < 1 || c.Scheduler.PredictionBatch < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scheduler batch sizes must be at least 1"))
	}

	return nil
}
