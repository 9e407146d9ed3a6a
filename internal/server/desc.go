package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct messages.
const ServiceName = "labextract.v1.ExtractionService"

const (
	MethodExtractDirectory = "/" + ServiceName + "/ExtractDirectory"
	MethodSubmitDirectory  = "/" + ServiceName + "/SubmitDirectory"
	MethodGetRun           = "/" + ServiceName + "/GetRun"
)

// ExtractionServer is the server API for the extraction service.
type ExtractionServer interface {
	ExtractDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ExtractDirectory",
			Handler: unaryHandler(MethodExtractDirectory, func(s ExtractionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ExtractDirectory(ctx, in)
			}),
		},
		{
			MethodName: "SubmitDirectory",
			Handler: unaryHandler(MethodSubmitDirectory, func(s ExtractionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.SubmitDirectory(ctx, in)
			}),
		},
		{
			MethodName: "GetRun",
			Handler: unaryHandler(MethodGetRun, func(s ExtractionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetRun(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labextract/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

type unaryCall func(ExtractionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExtractionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExtractionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ExtractionClient calls the extraction service over conn.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) ExtractDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodExtractDirectory, in, opts...)
}

func (c *ExtractionClient) SubmitDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSubmitDirectory, in, opts...)
}

func (c *ExtractionClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetRun, in, opts...)
}

func (c *ExtractionClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
