package surety_service_api

import (
	"context"

	"github.com/Domenick1991/flightsurety/internal/service/airlines"
	"github.com/Domenick1991/flightsurety/internal/service/oracles"
	"google.golang.org/grpc"
)

// Client calls SuretyService over an existing connection. Every call is sent
// with the JSON content subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RegisterAirline(ctx context.Context, req *RegisterAirlineRequest, opts ...grpc.CallOption) (*airlines.RegistrationResult, error) {
	return invoke[airlines.RegistrationResult](ctx, c, "RegisterAirline", req, opts)
}

func (c *Client) SubmitFunding(ctx context.Context, req *FundAirlineRequest, opts ...grpc.CallOption) (*Airline, error) {
	return invoke[Airline](ctx, c, "SubmitFunding", req, opts)
}

func (c *Client) GetAirline(ctx context.Context, req *AddressRequest, opts ...grpc.CallOption) (*Airline, error) {
	return invoke[Airline](ctx, c, "GetAirline", req, opts)
}

func (c *Client) RegisterFlight(ctx context.Context, req *FlightRequest, opts ...grpc.CallOption) (*Flight, error) {
	return invoke[Flight](ctx, c, "RegisterFlight", req, opts)
}

func (c *Client) GetFlight(ctx context.Context, req *FlightRequest, opts ...grpc.CallOption) (*Flight, error) {
	return invoke[Flight](ctx, c, "GetFlight", req, opts)
}

func (c *Client) ListFlights(ctx context.Context, opts ...grpc.CallOption) (*ListFlightsResponse, error) {
	return invoke[ListFlightsResponse](ctx, c, "ListFlights", &Empty{}, opts)
}

func (c *Client) RegisterOracle(ctx context.Context, req *RegisterOracleRequest, opts ...grpc.CallOption) (*oracles.OracleRegistration, error) {
	return invoke[oracles.OracleRegistration](ctx, c, "RegisterOracle", req, opts)
}

func (c *Client) RequestFlightStatus(ctx context.Context, req *oracles.RequestStatusInput, opts ...grpc.CallOption) (*oracles.StatusRequestView, error) {
	return invoke[oracles.StatusRequestView](ctx, c, "RequestFlightStatus", req, opts)
}

func (c *Client) GetRequest(ctx context.Context, req *GetRequestRequest, opts ...grpc.CallOption) (*oracles.StatusRequestView, error) {
	return invoke[oracles.StatusRequestView](ctx, c, "GetRequest", req, opts)
}

func (c *Client) SubmitOracleResponse(ctx context.Context, req *oracles.SubmitResponseInput, opts ...grpc.CallOption) (*oracles.ResponseResult, error) {
	return invoke[oracles.ResponseResult](ctx, c, "SubmitOracleResponse", req, opts)
}

func (c *Client) GetOperational(ctx context.Context, opts ...grpc.CallOption) (*OperationalResponse, error) {
	return invoke[OperationalResponse](ctx, c, "GetOperational", &Empty{}, opts)
}

func (c *Client) SetOperational(ctx context.Context, req *SetOperationalRequest, opts ...grpc.CallOption) (*OperationalResponse, error) {
	return invoke[OperationalResponse](ctx, c, "SetOperational", req, opts)
}
