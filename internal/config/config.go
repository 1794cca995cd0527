// Package config loads the application configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Server   ServerConfig   `yaml:"server"`
	Scan     ScanConfig     `yaml:"scan"`
	// WeightsFile points at the weight-strategy YAML; empty uses built-ins
	WeightsFile string `yaml:"weights_file"`
}

// ProviderConfig configures the upstream market data provider
type ProviderConfig struct {
	BaseURL         string        `yaml:"base_url"`
	WebSocketURL    string        `yaml:"websocket_url"`
	APIToken        string        `yaml:"api_token"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	Retry           RetryConfig   `yaml:"retry"`
}

// RetryConfig bounds the fetch retry loop
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialDelay   time.Duration `yaml:"initial_delay"`
	MaxDelay       time.Duration `yaml:"max_delay"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
}

// RedisConfig configures the optional snapshot cache
type RedisConfig struct {
	Addr string        `yaml:"addr"`
	DB   int           `yaml:"db"`
	TTL  time.Duration `yaml:"ttl"`
}

// PostgresConfig configures the optional watchlist store
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig configures the read-only HTTP API
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// ScanConfig drives the periodic serve loop
type ScanConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Symbols is the static fallback when no watchlist store is configured
	Symbols []string `yaml:"symbols"`
	// MoveThresholdPct triggers immediate re-analysis from the live stream
	MoveThresholdPct float64       `yaml:"move_threshold_pct"`
	AnalysisTimeout  time.Duration `yaml:"analysis_timeout"`
}

// Default returns the configuration used when no file is supplied
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL:        "http://127.0.0.1:9040",
			RequestTimeout: 10 * time.Second,
			RateLimitRPS:   5,
			Retry: RetryConfig{
				MaxRetries:     3,
				InitialDelay:   500 * time.Millisecond,
				MaxDelay:       10 * time.Second,
				BackoffFactor:  2.0,
				AttemptTimeout: 10 * time.Second,
			},
		},
		Redis: RedisConfig{TTL: 30 * time.Second},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Scan: ScanConfig{
			Interval:         5 * time.Minute,
			MoveThresholdPct: 15,
			AnalysisTimeout:  45 * time.Second,
		},
	}
}

// Load reads the YAML config at path, layering it over defaults, then
// applies environment overrides. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("COINSIGHT_PROVIDER_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("COINSIGHT_PROVIDER_WS_URL"); v != "" {
		c.Provider.WebSocketURL = v
	}
	if v := os.Getenv("COINSIGHT_PROVIDER_TOKEN"); v != "" {
		c.Provider.APIToken = v
	}
	if v := os.Getenv("COINSIGHT_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("COINSIGHT_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("COINSIGHT_HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.Retry.MaxRetries < 0 {
		return fmt.Errorf("provider.retry.max_retries must not be negative")
	}
	if c.Provider.Retry.BackoffFactor < 1 {
		return fmt.Errorf("provider.retry.backoff_factor must be at least 1")
	}
	if c.Scan.Interval <= 0 {
		return fmt.Errorf("scan.interval must be positive")
	}
	return nil
}
