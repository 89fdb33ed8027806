package fingrid

import (
	"context"
	"encoding/json"
	"time"

	"spot-observer/src/analysis"
	"spot-observer/src/data_source/base"
	"spot-observer/src/interfaces"
	"spot-observer/src/models"
)

// productionDays is how far back the production graph is requested.
const productionDays = 7

// ProductionSource fetches the grid operator's per-type production series and
// downsamples each one.
//
// Payload: {"HydroPower": [{"start_time": "...", "value": 1234}], "WindPower": [...], ...}
type ProductionSource struct {
	base.BaseSource
	downsample int
}

// -----------------------------------------------------------------------------

func NewProductionSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, loc *time.Location) *ProductionSource {
	return &ProductionSource{
		BaseSource: base.NewBaseSource(cfg, sourceCfg, netMgr, loc),
		downsample: sourceCfg.Downsample,
	}
}

// -----------------------------------------------------------------------------

func (s *ProductionSource) Fetch(ctx context.Context) (*models.MSnapshot, error) {
	now := s.Now().In(s.Location)
	params := map[string]string{
		"start": now.AddDate(0, 0, -productionDays).Format(time.DateOnly),
		"end":   now.Format(time.DateOnly),
	}

	respBytes, err := s.Get(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.parseResponse(respBytes)
}

// -----------------------------------------------------------------------------

func (s *ProductionSource) parseResponse(data []byte) (*models.MSnapshot, error) {
	var resp map[string]json.RawMessage
	if err := base.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	series := make(map[string][]models.MRow, len(models.GridSeries))
	for _, name := range models.GridSeries {
		raw, ok := resp[name]
		if !ok {
			continue
		}
		var wire []base.WireRow
		if err := base.Unmarshal(raw, &wire); err != nil {
			return nil, err
		}
		rows, err := base.ConvertRows(name, wire, s.Location)
		if err != nil {
			return nil, err
		}
		if err := base.ValidateSeries(name, rows); err != nil {
			return nil, err
		}
		series[name] = analysis.KeepEveryNth(rows, s.downsample)
	}

	primary := models.PrimarySeries(models.SourceGridProduction)
	if err := base.ValidateSeries(primary, series[primary]); err != nil {
		return nil, err
	}

	s.Logger.Debug("Decoded %d production series, downsampled by %d", len(series), s.downsample)

	var updatedAt time.Time
	if raw, ok := resp["updatedAt"]; ok {
		var stamp string
		if json.Unmarshal(raw, &stamp) == nil {
			updatedAt = base.ParseUpdatedAt(stamp, s.Location)
		}
	}
	return s.NewSnapshot(series, updatedAt), nil
}
