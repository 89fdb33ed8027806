package grpc_control

import (
	"context"
	"encoding/json"
	"errors"

	"spot-observer/src/config"
	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"
	"spot-observer/src/scheduler"
	"spot-observer/src/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements ControlServer on top of the cache registry.
type ControlService struct {
	Config    *config.Config
	Dashboard *service.Dashboard
	Scheduler *scheduler.Scheduler
	Logger    *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	cfg *config.Config,
	dash *service.Dashboard,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) *ControlService {
	return &ControlService{
		Config:    cfg,
		Dashboard: dash,
		Scheduler: sched,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSources(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]interface{}{"sources": s.Dashboard.Sources()})
}

// -----------------------------------------------------------------------------

// RefreshSource bypasses the TTL gate for one source and returns the summary
// of whatever snapshot is current afterwards.
func (s *ControlService) RefreshSource(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := models.ParseSourceID(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.Dashboard.Refresh(ctx, id, true); err != nil {
		s.Logger.Warning("gRPC: refresh of %s failed: %v", id, err)
		return nil, toStatus(err)
	}

	snap, err := s.Dashboard.Snapshot(ctx, id, false)
	if err != nil {
		return nil, toStatus(err)
	}
	s.Logger.Info("gRPC: refreshed %s (%s)", id, snap.FetchID)
	return toStruct(models.Summarize(snap))
}

// -----------------------------------------------------------------------------

func (s *ControlService) RefreshAll(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.Scheduler.RefreshAll(ctx, true); err != nil {
		s.Logger.Warning("gRPC: refresh all failed: %v", err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"sources": s.Dashboard.Sources()})
}

// -----------------------------------------------------------------------------

// PriceSummary takes the VAT regime as its argument; empty means the
// configured default.
func (s *ControlService) PriceSummary(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	regime := s.Config.DefaultRegime()
	if v := req.GetValue(); v != "" {
		r, err := models.ParseVatRegime(v)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		regime = r
	}

	summary, err := s.Dashboard.PriceSummary(ctx, s.Dashboard.Now(), regime)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(summary)
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	switch {
	case errors.Is(err, helpers.ErrUnknownSource):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, helpers.ErrNoSnapshot), helpers.IsTransport(err):
		return status.Error(codes.Unavailable, err.Error())
	case helpers.IsDecode(err), helpers.IsRowParse(err):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
