package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"spot-observer/src/analysis"
	"spot-observer/src/cache"
	"spot-observer/src/config"
	"spot-observer/src/logger"
	"spot-observer/src/models"
	"spot-observer/src/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	snap  *models.MSnapshot
	calls atomic.Int64
}

func (f *staticFetcher) Source() models.MSourceID { return f.snap.Source }

func (f *staticFetcher) Fetch(ctx context.Context) (*models.MSnapshot, error) {
	f.calls.Add(1)
	return f.snap, nil
}

func hourly(start time.Time, values ...string) []models.MRow {
	rows := make([]models.MRow, len(values))
	for i, v := range values {
		rows[i] = models.MRow{StartTime: start.Add(time.Duration(i) * time.Hour), Value: models.MRawValue(v)}
	}
	return rows
}

type fixture struct {
	srv    *APIServer
	reg    *cache.Registry
	prices *staticFetcher
	grid   *staticFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg, err := config.FromModel(&models.MConfig{
		Sources: []models.MSourceConfig{
			{ID: string(models.SourceDayAheadPrice), URL: "http://prices.invalid"},
			{ID: string(models.SourceGridProduction), URL: "http://grid.invalid"},
		},
	})
	require.NoError(t, err)
	loc := cfg.Location()

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, loc)
	prices := &staticFetcher{snap: &models.MSnapshot{
		Source:      models.SourceDayAheadPrice,
		FetchID:     "prices-1",
		RetrievedAt: day,
		Series:      map[string][]models.MRow{models.SeriesPrices: hourly(day, "100", "-", "50", "200")},
	}}
	grid := &staticFetcher{snap: &models.MSnapshot{
		Source:      models.SourceGridProduction,
		FetchID:     "grid-1",
		RetrievedAt: day,
		Series: map[string][]models.MRow{
			models.SeriesWindPower:  hourly(day, "1000"),
			models.SeriesHydroPower: hourly(day, "200"),
			models.SeriesSolarPower: hourly(day, "0"),
		},
	}}

	log := logger.NewTestLogger(io.Discard, "test")
	reg := cache.NewRegistry(log)
	_, err = reg.Add(prices, time.Hour)
	require.NoError(t, err)
	_, err = reg.Add(grid, time.Hour)
	require.NoError(t, err)

	dash := service.NewDashboard(reg, analysis.NewAnalysisFacade(loc, nil, log), log)
	dash.Now = func() time.Time { return day.Add(2*time.Hour + 15*time.Minute) }

	srv := NewAPIServer(cfg, dash, log)
	reg.Subscribe(srv.OnPublish)
	t.Cleanup(func() { _ = srv.Stop() })

	return &fixture{srv: srv, reg: reg, prices: prices, grid: grid}
}

func (f *fixture) get(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func (f *fixture) refresh(t *testing.T, id models.MSourceID) {
	t.Helper()
	store, err := f.reg.Store(id)
	require.NoError(t, err)
	require.NoError(t, store.ForceRefresh(context.Background()))
}

// -----------------------------------------------------------------------------

func TestAPI_Health(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["connections"])
}

func TestAPI_Config(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/api/config")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Europe/Helsinki", body["timezone"])
	assert.EqualValues(t, 24, body["default_vat"])
	intervals := body["intervals"].(map[string]interface{})
	assert.Equal(t, "30m0s", intervals[string(models.SourceDayAheadPrice)])
}

func TestAPI_SnapshotAbsentAndLazy(t *testing.T) {
	f := newFixture(t)

	code, _ := f.get(t, "/api/snapshots/day_ahead_price")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.EqualValues(t, 0, f.prices.calls.Load())

	code, _ = f.get(t, "/api/snapshots/nope")
	assert.Equal(t, http.StatusNotFound, code)

	code, body := f.get(t, "/api/snapshots/day_ahead_price?refresh=true")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prices-1", body["fetch_id"])
	assert.EqualValues(t, 1, f.prices.calls.Load())

	// Still within the same cadence window.
	code, _ = f.get(t, "/api/snapshots/day_ahead_price?refresh=true")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, f.prices.calls.Load())
}

func TestAPI_ForceRefreshEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sources/grid_production/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sum models.MSnapshotSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "grid-1", sum.FetchID)
	assert.Equal(t, 1, sum.SeriesRows[models.SeriesWindPower])
}

func TestAPI_PriceEndpoints(t *testing.T) {
	f := newFixture(t)

	code, _ := f.get(t, "/api/prices/daily?day=2024-01-10")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	f.refresh(t, models.SourceDayAheadPrice)

	code, body := f.get(t, "/api/prices/summary")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 24, body["vat"])
	assert.InDelta(t, 6.2, body["now"], 1e-9)
	assert.InDelta(t, 24.8, body["in_one_hour"], 1e-9)

	code, _ = f.get(t, "/api/prices/summary?vat=12")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.get(t, "/api/prices/average?from=2024-01-10&to=2024-01-11&vat=0")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 35.0/3.0, body["average"], 1e-9)

	assert.NotContains(t, body, "business_days")

	code, body = f.get(t, "/api/prices/average?from=2024-01-10&to=2024-01-11&vat=0&business=true")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "business_days")

	code, _ = f.get(t, "/api/prices/average?from=2024-01-11&to=2024-01-10")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.get(t, "/api/prices/average?from=2023-01-01&to=2023-01-02")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = f.get(t, "/api/prices/daily?day=2024-01-10&vat=10")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 5.5, body["min"], 1e-9)
	assert.InDelta(t, 22.0, body["max"], 1e-9)

	code, _ = f.get(t, "/api/prices/daily?day=10.1.2024")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_Renewables(t *testing.T) {
	f := newFixture(t)

	code, _ := f.get(t, "/api/grid/renewables")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	f.refresh(t, models.SourceGridProduction)

	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/grid/renewables", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var points []models.MSeriesPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 1200.0, points[0].Value)
}

// -----------------------------------------------------------------------------

func TestWebSocket_InitialUpdateAndSubscribe(t *testing.T) {
	f := newFixture(t)
	f.refresh(t, models.SourceDayAheadPrice)

	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() *models.MLatestData {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg models.MLatestData
		require.NoError(t, conn.ReadJSON(&msg))
		return &msg
	}

	initial := read()
	assert.Equal(t, "INITIAL", initial.Type)
	require.Contains(t, initial.Sources, models.SourceDayAheadPrice)
	assert.Equal(t, "prices-1", initial.Sources[models.SourceDayAheadPrice].FetchID)

	f.refresh(t, models.SourceGridProduction)
	update := read()
	assert.Equal(t, "UPDATE", update.Type)
	require.Len(t, update.Sources, 1)
	assert.Equal(t, 1, update.Sources[models.SourceGridProduction].SeriesRows[models.SeriesWindPower])
	assert.NotZero(t, update.Sources[models.SourceGridProduction].NextEligibleAt)

	require.NoError(t, conn.WriteJSON(models.MSubscribeCommand{
		Command: "subscribe",
		Sources: []string{string(models.SourceGridProduction)},
	}))
	filtered := read()
	assert.Equal(t, "INITIAL", filtered.Type)
	assert.Len(t, filtered.Sources, 1)
	assert.Contains(t, filtered.Sources, models.SourceGridProduction)

	// Price updates are filtered out, grid updates still arrive.
	f.refresh(t, models.SourceDayAheadPrice)
	f.refresh(t, models.SourceGridProduction)
	next := read()
	assert.Equal(t, "UPDATE", next.Type)
	assert.Contains(t, next.Sources, models.SourceGridProduction)
	assert.NotContains(t, next.Sources, models.SourceDayAheadPrice)
}
