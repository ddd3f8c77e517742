package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chTempDir(t *testing.T) {
	t.Helper()

	// Change to a temp dir so no config.yaml is found.
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "analyzer.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 15, cfg.Lookup.TimeoutSecs)
	assert.Equal(t, 1, cfg.Lookup.MinIntervalSecs)
	assert.Equal(t, 24, cfg.Lookup.CacheTTLHours)
	assert.Equal(t, "https://api.rentcast.io/v1", cfg.RentCast.BaseURL)
	assert.Equal(t, "http://localhost:8700", cfg.HomeHarvest.BaseURL)
	assert.InDelta(t, 0.20, cfg.Assumptions.DownPaymentFraction, 0.001)
	assert.InDelta(t, 0.07, cfg.Assumptions.AnnualInterestRate, 0.001)
	assert.Equal(t, 30, cfg.Assumptions.TermYears)
	assert.InDelta(t, 0.05, cfg.Assumptions.VacancyRate, 0.001)
	assert.InDelta(t, 0.10, cfg.Assumptions.ManagementRate, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/analyzer
log:
  level: debug
  format: console
assumptions:
  annual_interest_rate: 0.065
lookup:
  cache_ttl_hours: 6
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/analyzer", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 0.065, cfg.Assumptions.AnnualInterestRate, 0.001)
	assert.Equal(t, 6, cfg.Lookup.CacheTTLHours)

	// Untouched keys keep defaults.
	assert.Equal(t, 15, cfg.Lookup.TimeoutSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	chTempDir(t)
	t.Setenv("RENTFOLIO_STORE_DRIVER", "postgres")
	t.Setenv("RENTFOLIO_RENTCAST_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "env-key", cfg.RentCast.Key)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
