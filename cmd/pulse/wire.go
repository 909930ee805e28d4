package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/cache"
	"github.com/marketpulse/pulse/internal/cascade"
	"github.com/marketpulse/pulse/internal/config"
	"github.com/marketpulse/pulse/internal/feed"
	"github.com/marketpulse/pulse/internal/fetcher"
	"github.com/marketpulse/pulse/internal/fetcher/alphavantage"
	"github.com/marketpulse/pulse/internal/fetcher/groww"
	"github.com/marketpulse/pulse/internal/fetcher/nse"
	"github.com/marketpulse/pulse/internal/fetcher/tradingview"
	"github.com/marketpulse/pulse/internal/fetcher/yahoo"
	"github.com/marketpulse/pulse/internal/forecast"
	"github.com/marketpulse/pulse/internal/indicator"
	"github.com/marketpulse/pulse/internal/market"
	"github.com/marketpulse/pulse/internal/metrics"
	"github.com/marketpulse/pulse/internal/registry"
)

// loadConfig reads the config file when one was given, otherwise runs
// on defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildFetchers assembles the cascade sources in priority order.
func buildFetchers(cfg *config.Config) []fetcher.Fetcher {
	var fetchers []fetcher.Fetcher
	if cfg.Sources.NSE.Enabled {
		fetchers = append(fetchers, nse.New())
	}
	if cfg.Sources.Yahoo.Enabled {
		fetchers = append(fetchers, yahoo.New())
	}
	if cfg.Sources.AlphaVantage.Enabled {
		fetchers = append(fetchers, alphavantage.New(cfg.Sources.AlphaVantage.APIKey))
	}
	if cfg.Sources.TradingView.Enabled {
		fetchers = append(fetchers, tradingview.New())
	}
	if cfg.Sources.Groww.Enabled {
		fetchers = append(fetchers, groww.New())
	}
	return fetchers
}

// buildService wires the full data pipeline from configuration.
func buildService(cfg *config.Config, m *metrics.Registry, log *zap.Logger) *feed.Service {
	reg := registry.New()

	casc := cascade.New(reg, buildFetchers(cfg),
		cascade.WithLogger(log),
		cascade.WithMetrics(m),
	)

	store := cache.New(
		cache.WithTTL(cache.ClassQuote, cfg.Cache.QuoteTTL),
		cache.WithTTL(cache.ClassPrediction, cfg.Cache.PredictionTTL),
		cache.WithTTL(cache.ClassMarket, cfg.Cache.MarketTTL),
		cache.WithMetrics(m),
	)

	var extras indicator.ExtraIndicators
	if cfg.Indicator.Extras == "standard" {
		extras = indicator.StandardExtras{}
	} else {
		seed := cfg.Indicator.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		extras = indicator.NewPlaceholderExtras(seed)
	}
	indicators := indicator.NewEngine(extras)

	var strategy forecast.Strategy = forecast.Statistical{}
	if cfg.Forecast.Strategy == "model" {
		model, err := forecast.LoadModel(cfg.Forecast.ModelPath)
		if err != nil {
			log.Warn("model artifact unavailable, falling back to statistical forecasts",
				zap.String("path", cfg.Forecast.ModelPath), zap.Error(err))
		} else {
			strategy = model
		}
	}
	forecasts := forecast.New(strategy,
		forecast.WithLogger(log),
		forecast.WithMetrics(m),
	)

	mkt := market.New(market.WithLogger(log))
	hub := feed.NewHub(feed.WithHubLogger(log), feed.WithHubMetrics(m))

	return feed.NewService(reg, casc, store, indicators, forecasts, mkt, hub,
		feed.WithServiceLogger(log),
	)
}
