package datasource

import (
	"fmt"
	"time"

	"spot-observer/src/data_source/fingrid"
	"spot-observer/src/data_source/nordpool"
	"spot-observer/src/data_source/pakastin"
	"spot-observer/src/interfaces"
	"spot-observer/src/models"
)

// -----------------------------------------------------------------------------

// NewFetcher builds the fetcher serving one configured source.
func NewFetcher(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, loc *time.Location) (interfaces.IFetcher, error) {
	id, err := models.ParseSourceID(sourceCfg.ID)
	if err != nil {
		return nil, err
	}

	switch id {
	case models.SourceDayAheadPrice:
		return nordpool.NewDayAheadPriceSource(cfg, sourceCfg, netMgr, loc), nil
	case models.SourceGridProduction:
		return fingrid.NewProductionSource(cfg, sourceCfg, netMgr, loc), nil
	case models.SourceWindEstimate:
		return fingrid.NewWindEstimateSource(cfg, sourceCfg, netMgr, loc), nil
	case models.SourceExternalPriceSnapshot:
		return pakastin.NewSpotSnapshotSource(cfg, sourceCfg, netMgr, loc), nil
	}
	return nil, fmt.Errorf("no fetcher for source %s", id)
}

// -----------------------------------------------------------------------------

// NewFetchers builds one fetcher per configured source, in config order.
func NewFetchers(cfg *models.MConfig, netMgr interfaces.INetworkManager, loc *time.Location) ([]interfaces.IFetcher, error) {
	fetchers := make([]interfaces.IFetcher, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		f, err := NewFetcher(cfg, src, netMgr, loc)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.ID, err)
		}
		fetchers = append(fetchers, f)
	}
	return fetchers, nil
}
