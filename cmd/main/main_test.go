package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spot-observer/src/config"
	"spot-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, url string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
log_level: error
default_vat: 10
storage:
  db_type: none
sources:
  - id: day_ahead_price
    url: %s
    interval_minutes: 30
`, url)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func pricesServer(t *testing.T) *httptest.Server {
	t.Helper()
	start := time.Now().UTC().Truncate(time.Hour).Add(-24 * time.Hour)
	var rows []string
	for i := 0; i < 72; i++ {
		rows = append(rows, fmt.Sprintf(`{"startTime":%q,"value":10}`, start.Add(time.Duration(i)*time.Hour).Format(time.RFC3339)))
	}
	payload := fmt.Sprintf(`{"updatedAt":%q,"prices":[%s]}`, start.Format(time.RFC3339), strings.Join(rows, ","))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		fetchVat = ""
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestFetchCommand(t *testing.T) {
	ts := pricesServer(t)
	path := writeConfig(t, ts.URL)

	out := run(t, "--config", path, "fetch", "--vat", "0")

	var report fetchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Sources, 1)
	assert.Equal(t, models.SourceDayAheadPrice, report.Sources[0].Source)
	assert.True(t, report.Sources[0].HasSnapshot)
	assert.Zero(t, report.Sources[0].Failures)

	require.NotNil(t, report.PriceSummary)
	assert.Equal(t, 0, report.PriceSummary.Vat)
	require.NotNil(t, report.PriceSummary.Now)
	assert.InDelta(t, 1.0, *report.PriceSummary.Now, 1e-9)
}

func TestFetchCommand_DefaultVatFromConfig(t *testing.T) {
	ts := pricesServer(t)
	path := writeConfig(t, ts.URL)

	out := run(t, "--config", path, "fetch")

	var report fetchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.PriceSummary)
	assert.Equal(t, 10, report.PriceSummary.Vat)
	assert.InDelta(t, 1.1, *report.PriceSummary.Now, 1e-9)
}

func TestConfigInitCommand(t *testing.T) {
	path := writeConfig(t, "http://prices.invalid")
	target := filepath.Join(t.TempDir(), "out", "config.toml")

	out := run(t, "--config", path, "config", "init", target)
	assert.Contains(t, out, target)

	cfg, err := config.NewConfig(target)
	require.NoError(t, err)
	assert.Equal(t, models.Vat10, cfg.DefaultRegime())
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "http://prices.invalid", cfg.Sources[0].URL)
}
