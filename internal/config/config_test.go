package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Provider.Retry.MaxRetries)
	assert.Equal(t, 2.0, cfg.Provider.Retry.BackoffFactor)
	assert.Equal(t, 5*time.Minute, cfg.Scan.Interval)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "coinsight.yaml", `
provider:
  base_url: https://data.example.com
  retry:
    max_retries: 5
    initial_delay: 1s
    max_delay: 30s
    backoff_factor: 1.5
    attempt_timeout: 5s
scan:
  interval: 1m
  symbols: [MOON, DOGE]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://data.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, 5, cfg.Provider.Retry.MaxRetries)
	assert.Equal(t, time.Minute, cfg.Scan.Interval)
	assert.Equal(t, []string{"MOON", "DOGE"}, cfg.Scan.Symbols)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COINSIGHT_PROVIDER_URL", "https://env.example.com")
	t.Setenv("COINSIGHT_HTTP_PORT", "9999")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_RejectsBadBackoff(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
provider:
  retry:
    backoff_factor: 0.5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadStrategies_Builtins(t *testing.T) {
	baseline, enriched, err := LoadStrategies("")
	require.NoError(t, err)
	assert.Equal(t, "baseline", baseline.Name)
	assert.Equal(t, "enriched", enriched.Name)
	require.NoError(t, baseline.Validate())
	require.NoError(t, enriched.Validate())
}

func TestLoadStrategies_FileOverride(t *testing.T) {
	path := writeFile(t, "weights.yaml", `
strategies:
  baseline:
    risk:
      technical: 0.30
      sentiment: 0.15
      liquidity: 0.15
      fundamental: 0.05
      concentration: 0.05
      suspicious_inverted: 0.30
    recommendation:
      technical: 0.30
      sentiment: 0.15
      liquidity: 0.15
      fundamental: 0.05
      concentration: 0.05
      suspicious_inverted: 0.30
`)
	baseline, enriched, err := LoadStrategies(path)
	require.NoError(t, err)
	assert.Equal(t, 0.30, baseline.Risk.Technical)
	// enriched untouched by a partial file
	assert.Equal(t, 0.20, enriched.Risk.Technical)
}

func TestLoadStrategies_RejectsInvalidSum(t *testing.T) {
	path := writeFile(t, "weights.yaml", `
strategies:
  baseline:
    risk:
      technical: 0.90
    recommendation:
      technical: 1.0
`)
	_, _, err := LoadStrategies(path)
	assert.Error(t, err)
}
