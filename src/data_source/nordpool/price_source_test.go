package nordpool

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"
	"spot-observer/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, handler http.HandlerFunc) *DayAheadPriceSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5}}
	srcCfg := models.MSourceConfig{ID: string(models.SourceDayAheadPrice), URL: srv.URL}
	netMgr := network.NewAsyncNetworkManager(cfg, logger.NewTestLogger(io.Discard, "network"))

	s := NewDayAheadPriceSource(cfg, srcCfg, netMgr, time.UTC)
	s.Now = func() time.Time { return time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestFetch_Success(t *testing.T) {
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"updatedAt": "2024-03-30T12:45:00Z",
			"prices": [
				{"startTime": "2024-03-31T00:00:00Z", "value": 4.2},
				{"startTime": "2024-03-31T01:00:00Z", "value": "-"},
				{"startTime": "2024-03-31T02:00:00Z", "value": "3,5"}
			]
		}`)
	})

	snap, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceDayAheadPrice, snap.Source)
	assert.NotEmpty(t, snap.FetchID)
	assert.Equal(t, time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC), snap.RetrievedAt)
	assert.Equal(t, time.Date(2024, 3, 30, 12, 45, 0, 0, time.UTC), snap.UpstreamUpdatedAt)
	require.Len(t, snap.Rows(), 3)
	assert.Equal(t, models.MRawValue("-"), snap.Rows()[1].Value)
}

func TestFetch_Errors(t *testing.T) {
	cases := []struct {
		name      string
		handler   http.HandlerFunc
		transport bool
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, true},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"prices": [`)
		}, false},
		{"empty series", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"prices": []}`)
		}, false},
		{"reversed range", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"prices": [
				{"startTime": "2024-03-31T05:00:00Z", "value": 1},
				{"startTime": "2024-03-31T01:00:00Z", "value": 2}
			]}`)
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := newSource(t, tc.handler).Fetch(context.Background())
			require.Error(t, err)
			assert.Nil(t, snap)
			assert.Equal(t, tc.transport, helpers.IsTransport(err))
			assert.Equal(t, !tc.transport, helpers.IsDecode(err))
		})
	}
}
