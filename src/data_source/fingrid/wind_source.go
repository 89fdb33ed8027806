package fingrid

import (
	"bytes"
	"context"
	"time"

	"spot-observer/src/data_source/base"
	"spot-observer/src/interfaces"
	"spot-observer/src/models"
)

const (
	windBackHours  = 24
	windAheadHours = 48
)

// WindEstimateSource fetches the wind production forecast. The upstream
// answers with a bare array of events; an object carrying a windEstimate array
// is accepted too.
//
// Payload: [{"start_time": "...", "end_time": "...", "value": 1234}]
type WindEstimateSource struct {
	base.BaseSource
}

type windResponse struct {
	UpdatedAt    string         `json:"updatedAt"`
	WindEstimate []base.WireRow `json:"windEstimate"`
}

// -----------------------------------------------------------------------------

func NewWindEstimateSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, loc *time.Location) *WindEstimateSource {
	return &WindEstimateSource{BaseSource: base.NewBaseSource(cfg, sourceCfg, netMgr, loc)}
}

// -----------------------------------------------------------------------------

func (s *WindEstimateSource) Fetch(ctx context.Context) (*models.MSnapshot, error) {
	now := s.Now().In(s.Location).Truncate(time.Hour)
	params := map[string]string{
		"start_time": now.Add(-windBackHours * time.Hour).Format(time.RFC3339),
		"end_time":   now.Add(windAheadHours * time.Hour).Format(time.RFC3339),
	}

	respBytes, err := s.Get(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.parseResponse(respBytes)
}

// -----------------------------------------------------------------------------

func (s *WindEstimateSource) parseResponse(data []byte) (*models.MSnapshot, error) {
	var resp windResponse
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		if err := base.Unmarshal(data, &resp.WindEstimate); err != nil {
			return nil, err
		}
	} else if err := base.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	rows, err := base.ConvertRows(models.SeriesWindEstimate, resp.WindEstimate, s.Location)
	if err != nil {
		return nil, err
	}
	if err := base.ValidateSeries(models.SeriesWindEstimate, rows); err != nil {
		return nil, err
	}

	return s.NewSnapshot(map[string][]models.MRow{models.SeriesWindEstimate: rows}, base.ParseUpdatedAt(resp.UpdatedAt, s.Location)), nil
}
