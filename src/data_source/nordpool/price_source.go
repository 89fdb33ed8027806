package nordpool

import (
	"context"
	"time"

	"spot-observer/src/data_source/base"
	"spot-observer/src/interfaces"
	"spot-observer/src/models"
)

// DayAheadPriceSource fetches the day-ahead market price series.
//
// Payload: {"updatedAt": "...", "prices": [{"startTime": "...", "value": 12.3 | "-"}]}
type DayAheadPriceSource struct {
	base.BaseSource
}

type priceResponse struct {
	UpdatedAt string         `json:"updatedAt"`
	Prices    []base.WireRow `json:"prices"`
}

// -----------------------------------------------------------------------------

func NewDayAheadPriceSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, loc *time.Location) *DayAheadPriceSource {
	return &DayAheadPriceSource{BaseSource: base.NewBaseSource(cfg, sourceCfg, netMgr, loc)}
}

// -----------------------------------------------------------------------------

func (s *DayAheadPriceSource) Fetch(ctx context.Context) (*models.MSnapshot, error) {
	respBytes, err := s.Get(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.parseResponse(respBytes)
}

// -----------------------------------------------------------------------------

func (s *DayAheadPriceSource) parseResponse(data []byte) (*models.MSnapshot, error) {
	var resp priceResponse
	if err := base.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	rows, err := base.ConvertRows(models.SeriesPrices, resp.Prices, s.Location)
	if err != nil {
		return nil, err
	}
	if err := base.ValidateSeries(models.SeriesPrices, rows); err != nil {
		return nil, err
	}

	s.Logger.Debug("Decoded %d price rows (%s .. %s)", len(rows), rows[0].StartTime.Format(time.RFC3339), rows[len(rows)-1].StartTime.Format(time.RFC3339))

	return s.NewSnapshot(map[string][]models.MRow{models.SeriesPrices: rows}, base.ParseUpdatedAt(resp.UpdatedAt, s.Location)), nil
}
