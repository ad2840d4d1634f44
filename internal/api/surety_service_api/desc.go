package surety_service_api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceDesc is written by hand since payloads travel as JSON rather than
// protobuf.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SuretyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("RegisterAirline", SuretyServiceServer.RegisterAirline),
		unary("SubmitFunding", SuretyServiceServer.SubmitFunding),
		unary("GetAirline", SuretyServiceServer.GetAirline),
		unary("RegisterFlight", SuretyServiceServer.RegisterFlight),
		unary("GetFlight", SuretyServiceServer.GetFlight),
		unary("ListFlights", SuretyServiceServer.ListFlights),
		unary("RegisterOracle", SuretyServiceServer.RegisterOracle),
		unary("RequestFlightStatus", SuretyServiceServer.RequestFlightStatus),
		unary("GetRequest", SuretyServiceServer.GetRequest),
		unary("SubmitOracleResponse", SuretyServiceServer.SubmitOracleResponse),
		unary("GetOperational", SuretyServiceServer.GetOperational),
		unary("SetOperational", SuretyServiceServer.SetOperational),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flightsurety/v1/surety.json",
}

func unary[Req, Resp any](name string, call func(SuretyServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(SuretyServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(impl, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
