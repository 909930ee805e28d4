package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

sources:
  alphavantage:
    enabled: true
    api_key: "test-key"

cache:
  quote_ttl: 2s

forecast:
  strategy: model
  model_path: "/etc/pulse/model.json"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Sources.AlphaVantage.APIKey != "test-key" {
		t.Errorf("expected api key, got %q", cfg.Sources.AlphaVantage.APIKey)
	}
	if cfg.Cache.QuoteTTL != 2*time.Second {
		t.Errorf("expected 2s quote ttl, got %s", cfg.Cache.QuoteTTL)
	}
	if cfg.Forecast.Strategy != "model" {
		t.Errorf("expected model strategy, got %q", cfg.Forecast.Strategy)
	}
	// Unset sections keep their defaults.
	if cfg.Scheduler.QuoteInterval != 3*time.Second {
		t.Errorf("expected default quote interval, got %s", cfg.Scheduler.QuoteInterval)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PULSE_TEST_AV_KEY", "expanded-key")

	content := []byte(`
sources:
  alphavantage:
    api_key: "${PULSE_TEST_AV_KEY}"
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Sources.AlphaVantage.APIKey != "expanded-key" {
		t.Errorf("env var not expanded, got %q", cfg.Sources.AlphaVantage.APIKey)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Cache.QuoteTTL != 5*time.Second {
		t.Errorf("expected default 5s quote ttl, got %s", cfg.Cache.QuoteTTL)
	}
	if cfg.Forecast.Strategy != "statistical" {
		t.Errorf("expected statistical default, got %q", cfg.Forecast.Strategy)
	}
	if cfg.Indicator.Extras != "placeholder" {
		t.Errorf("expected placeholder default, got %q", cfg.Indicator.Extras)
	}
	if !cfg.Sources.NSE.Enabled {
		t.Error("sources should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return Defaults() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero quote ttl", func(c *Config) { c.Cache.QuoteTTL = 0 }, true},
		{"model without path", func(c *Config) { c.Forecast.Strategy = "model" }, true},
		{"model with path", func(c *Config) {
			c.Forecast.Strategy = "model"
			c.Forecast.ModelPath = "/etc/pulse/model.json"
		}, false},
		{"unknown strategy", func(c *Config) { c.Forecast.Strategy = "oracle" }, true},
		{"unknown extras", func(c *Config) { c.Indicator.Extras = "quantum" }, true},
		{"standard extras", func(c *Config) { c.Indicator.Extras = "standard" }, false},
		{"zero batch", func(c *Config) { c.Scheduler.QuoteBatch = 0 }, true},
		{"negative interval", func(c *Config) { c.Scheduler.DriftInterval = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
