package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hvdc.fidelity.v1.FidelityService"

// #region server-api
// FidelityServiceServer is the server API. Every request and response is a
// JSON object carried as a google.protobuf.Struct.
type FidelityServiceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Trend(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterFidelityServiceServer registers srv on s.
func RegisterFidelityServiceServer(s grpc.ServiceRegistrar, srv FidelityServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FidelityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler("Evaluate", FidelityServiceServer.Evaluate)},
		{MethodName: "History", Handler: unaryHandler("History", FidelityServiceServer.History)},
		{MethodName: "Trend", Handler: unaryHandler("Trend", FidelityServiceServer.Trend)},
		{MethodName: "Summary", Handler: unaryHandler("Summary", FidelityServiceServer.Summary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hvdc/fidelity/v1/fidelity.proto",
}

type unaryMethod func(FidelityServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FidelityServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FidelityServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
// #endregion server-api

// #region client-api
// FidelityServiceClient is the client API for FidelityService.
type FidelityServiceClient interface {
	Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	History(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Trend(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Summary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type fidelityServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFidelityServiceClient wraps cc.
func NewFidelityServiceClient(cc grpc.ClientConnInterface) FidelityServiceClient {
	return &fidelityServiceClient{cc: cc}
}

func (c *fidelityServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fidelityServiceClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Evaluate", in, opts)
}

func (c *fidelityServiceClient) History(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "History", in, opts)
}

func (c *fidelityServiceClient) Trend(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Trend", in, opts)
}

func (c *fidelityServiceClient) Summary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Summary", in, opts)
}
// #endregion client-api
