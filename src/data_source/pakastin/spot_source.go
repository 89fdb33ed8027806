package pakastin

import (
	"context"
	"time"

	"spot-observer/src/data_source/base"
	"spot-observer/src/interfaces"
	"spot-observer/src/models"
)

// SpotSnapshotSource fetches the third-party spot price snapshot.
//
// Payload: {"prices": [{"date": "...", "value": 12.3}]}
type SpotSnapshotSource struct {
	base.BaseSource
}

type spotResponse struct {
	Prices []base.WireRow `json:"prices"`
}

// -----------------------------------------------------------------------------

func NewSpotSnapshotSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, loc *time.Location) *SpotSnapshotSource {
	return &SpotSnapshotSource{BaseSource: base.NewBaseSource(cfg, sourceCfg, netMgr, loc)}
}

// -----------------------------------------------------------------------------

// Fetch publishes nothing unless the whole response is valid; the caller then
// keeps its previous snapshot.
func (s *SpotSnapshotSource) Fetch(ctx context.Context) (*models.MSnapshot, error) {
	respBytes, err := s.Get(ctx, nil)
	if err != nil {
		return nil, err
	}

	var resp spotResponse
	if err := base.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}

	rows, err := base.ConvertRows(models.SeriesPrices, resp.Prices, s.Location)
	if err != nil {
		return nil, err
	}
	if err := base.ValidateSeries(models.SeriesPrices, rows); err != nil {
		return nil, err
	}

	return s.NewSnapshot(map[string][]models.MRow{models.SeriesPrices: rows}, time.Time{}), nil
}
