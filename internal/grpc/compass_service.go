package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// CompassServiceName is the fully qualified gRPC service name.
const CompassServiceName = "mindcompass.v1.Compass"

// CompassServer is the server API of the Compass service. Payloads use the
// protobuf well-known Struct type so the service needs no generated code.
type CompassServer interface {
	ListQuestions(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Track(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	WeeklyStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func fullMethod(name string) string {
	return "/" + CompassServiceName + "/" + name
}

func unaryMethod[Req, Resp proto.Message](name string, newReq func() Req, call func(CompassServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CompassServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CompassServer), ctx, req.(Req))
			})
		},
	}
}

func newEmpty() *emptypb.Empty   { return &emptypb.Empty{} }
func newStruct() *structpb.Struct { return &structpb.Struct{} }

var compassServiceDesc = grpc.ServiceDesc{
	ServiceName: CompassServiceName,
	HandlerType: (*CompassServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListQuestions", newEmpty, CompassServer.ListQuestions),
		unaryMethod("Evaluate", newStruct, CompassServer.Evaluate),
		unaryMethod("Track", newStruct, CompassServer.Track),
		unaryMethod("WeeklyStats", newEmpty, CompassServer.WeeklyStats),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterCompassServer registers srv on s.
func RegisterCompassServer(s grpc.ServiceRegistrar, srv CompassServer) {
	s.RegisterService(&compassServiceDesc, srv)
}

// CompassClient calls the Compass service.
type CompassClient struct {
	cc grpc.ClientConnInterface
}

func NewCompassClient(cc grpc.ClientConnInterface) *CompassClient {
	return &CompassClient{cc: cc}
}

func (c *CompassClient) ListQuestions(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListQuestions"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompassClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Evaluate"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompassClient) Track(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, fullMethod("Track"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompassClient) WeeklyStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("WeeklyStats"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
