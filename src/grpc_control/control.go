package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are protobuf well-known types, so no generated code is needed.
const ServiceName = "spotobserver.control.v1.Control"

const (
	listSourcesMethod   = "/" + ServiceName + "/ListSources"
	refreshSourceMethod = "/" + ServiceName + "/RefreshSource"
	refreshAllMethod    = "/" + ServiceName + "/RefreshAll"
	priceSummaryMethod  = "/" + ServiceName + "/PriceSummary"
)

// ControlServer is the server API for the control service.
type ControlServer interface {
	ListSources(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RefreshSource(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	RefreshAll(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	PriceSummary(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&Control_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func _Control_ListSources_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ListSources(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listSourcesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).ListSources(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_RefreshSource_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).RefreshSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: refreshSourceMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).RefreshSource(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_RefreshAll_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).RefreshAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: refreshAllMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).RefreshAll(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_PriceSummary_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).PriceSummary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: priceSummaryMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).PriceSummary(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Control_ServiceDesc is the grpc.ServiceDesc for the control service.
var Control_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListSources", Handler: _Control_ListSources_Handler},
		{MethodName: "RefreshSource", Handler: _Control_RefreshSource_Handler},
		{MethodName: "RefreshAll", Handler: _Control_RefreshAll_Handler},
		{MethodName: "PriceSummary", Handler: _Control_PriceSummary_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "spotobserver/control/v1/control.proto",
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func (c *ControlClient) ListSources(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listSourcesMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) RefreshSource(ctx context.Context, source string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, refreshSourceMethod, wrapperspb.String(source), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) RefreshAll(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, refreshAllMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) PriceSummary(ctx context.Context, vat string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, priceSummaryMethod, wrapperspb.String(vat), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
