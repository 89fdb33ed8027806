package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"spot-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
name: spot-observer
port: 8080
sources:
  - id: day_ahead_price
    url: http://localhost/prices
  - id: grid_production
    url: http://localhost/production
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig_YAMLDefaults(t *testing.T) {
	cfg, err := NewConfig(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 50051, cfg.GrpcPort)
	assert.Equal(t, "none", cfg.Storage.DBType)
	assert.Equal(t, DefaultWorkers, cfg.Scheduler.Workers)
	assert.Zero(t, cfg.Network.MaxRetries)
	assert.Equal(t, models.Vat24, cfg.DefaultRegime())
	assert.Equal(t, "Europe/Helsinki", cfg.Location().String())

	grid, ok := cfg.Source(models.SourceGridProduction)
	require.True(t, ok)
	assert.Equal(t, DefaultDownsample, grid.Downsample)
	assert.Equal(t, 30*time.Minute, Interval(grid))

	prices, ok := cfg.Source(models.SourceDayAheadPrice)
	require.True(t, ok)
	assert.Zero(t, prices.Downsample)
}

func TestNewConfig_TOML(t *testing.T) {
	content := `
name = "spot-observer"
port = 9090
default_vat = 10

[scheduler]
workers = 2

[[sources]]
id = "wind_estimate"
url = "http://localhost/wind"
api_key = "secret"
interval_minutes = 60
`
	cfg, err := NewConfig(writeFile(t, "config.toml", content))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2, cfg.Scheduler.Workers)
	assert.Equal(t, models.Vat10, cfg.DefaultRegime())

	wind, ok := cfg.Source(models.SourceWindEstimate)
	require.True(t, ok)
	assert.Equal(t, "secret", wind.APIKey)
	assert.Equal(t, time.Hour, Interval(wind))
}

func TestNewConfig_ZeroVatIsKept(t *testing.T) {
	content := yamlConfig + "default_vat: 0\n"
	cfg, err := NewConfig(writeFile(t, "config.yaml", content))
	require.NoError(t, err)
	assert.Equal(t, models.Vat0, cfg.DefaultRegime())
}

func TestNewConfig_RetentionDays(t *testing.T) {
	cfg, err := NewConfig(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)
	assert.Equal(t, DefaultRetentionDays, cfg.Storage.RetentionDays())

	content := yamlConfig + "storage:\n  db_type: sqlite\n  data_retention_days: 0\n"
	cfg, err = NewConfig(writeFile(t, "config.yaml", content))
	require.NoError(t, err)
	require.NotNil(t, cfg.Storage.DataRetentionDays)
	assert.Equal(t, 0, cfg.Storage.RetentionDays())
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown source", "sources:\n  - id: nope\n    url: http://x\n"},
		{"missing url", "sources:\n  - id: wind_estimate\n"},
		{"no sources", "name: x\n"},
		{"duplicate source", "sources:\n  - id: wind_estimate\n    url: http://x\n  - id: wind_estimate\n    url: http://y\n"},
		{"bad vat", yamlConfig + "default_vat: 12\n"},
		{"bad timezone", yamlConfig + "timezone: Mars/Olympus\n"},
		{"bad db type", yamlConfig + "storage:\n  db_type: mongo\n"},
		{"postgres without dsn", yamlConfig + "storage:\n  db_type: postgres\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(writeFile(t, "config.yaml", tc.content))
			assert.Error(t, err)
		})
	}
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	for _, name := range []string{"saved.yaml", "saved.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, cfg.Save(path))

			loaded, err := NewConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Port, loaded.Port)
			assert.Len(t, loaded.Sources, 2)
			assert.Equal(t, cfg.DefaultRegime(), loaded.DefaultRegime())
		})
	}
}
