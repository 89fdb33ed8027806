package base

import (
	"context"
	"time"

	"spot-observer/src/interfaces"
	"spot-observer/src/logger"
	"spot-observer/src/models"

	"github.com/google/uuid"
)

// BaseSource holds what every upstream fetcher shares: its config, the network
// manager and a clock.
type BaseSource struct {
	Config       *models.MConfig
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	Location     *time.Location
	Now          func() time.Time
}

// -----------------------------------------------------------------------------

func NewBaseSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, loc *time.Location) BaseSource {
	if loc == nil {
		loc = time.UTC
	}
	return BaseSource{
		Config:       cfg,
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       logger.NewLogger(cfg, "Source-"+sourceCfg.ID),
		Location:     loc,
		Now:          time.Now,
	}
}

// -----------------------------------------------------------------------------

// Source returns the configured source identifier.
func (b *BaseSource) Source() models.MSourceID {
	return models.MSourceID(b.SourceConfig.ID)
}

// -----------------------------------------------------------------------------

// Get requests the source URL, adding the x-api-key header when a key is configured.
func (b *BaseSource) Get(ctx context.Context, params map[string]string) ([]byte, error) {
	var headers map[string]string
	if b.SourceConfig.APIKey != "" {
		headers = map[string]string{"x-api-key": b.SourceConfig.APIKey}
	}
	return b.Network.Get(ctx, b.SourceConfig.URL, params, headers)
}

// -----------------------------------------------------------------------------

// NewSnapshot stamps decoded series with a fetch id and the retrieval time.
func (b *BaseSource) NewSnapshot(series map[string][]models.MRow, upstreamUpdatedAt time.Time) *models.MSnapshot {
	return &models.MSnapshot{
		Source:            b.Source(),
		FetchID:           uuid.NewString(),
		RetrievedAt:       b.Now().UTC(),
		UpstreamUpdatedAt: upstreamUpdatedAt,
		Series:            series,
	}
}
