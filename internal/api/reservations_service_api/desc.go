package reservations_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "cargo.v1.Reservations"

const (
	MethodCreateBooking  = "CreateBooking"
	MethodConfirmBooking = "ConfirmBooking"
	MethodCancelBooking  = "CancelBooking"
	MethodGetBooking     = "GetBooking"
	MethodSweepExpired   = "SweepExpired"
	MethodSearchRoutes   = "SearchRoutes"
	MethodMatchRoutes    = "MatchRoutes"
)

// ReservationsServer is the gRPC surface of the booking engine. Messages are
// google.protobuf.Struct documents carrying the same fields as the HTTP API.
type ReservationsServer interface {
	CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ConfirmBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SweepExpired(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SearchRoutes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	MatchRoutes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv ReservationsServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func methodHandler(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReservationsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ReservationsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationsServer)(nil),
	Methods: []grpc.MethodDesc{
		methodHandler(MethodCreateBooking, ReservationsServer.CreateBooking),
		methodHandler(MethodConfirmBooking, ReservationsServer.ConfirmBooking),
		methodHandler(MethodCancelBooking, ReservationsServer.CancelBooking),
		methodHandler(MethodGetBooking, ReservationsServer.GetBooking),
		methodHandler(MethodSweepExpired, ReservationsServer.SweepExpired),
		methodHandler(MethodSearchRoutes, ReservationsServer.SearchRoutes),
		methodHandler(MethodMatchRoutes, ReservationsServer.MatchRoutes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cargo/v1/reservations.proto",
}

func RegisterReservationsServer(s grpc.ServiceRegistrar, srv ReservationsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Client calls the Reservations service over an established connection.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
