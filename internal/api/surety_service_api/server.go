package surety_service_api

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/airlines"
	"github.com/Domenick1991/flightsurety/internal/service/flights"
	"github.com/Domenick1991/flightsurety/internal/service/oracles"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "flightsurety.v1.SuretyService"

type OperationalControl interface {
	IsOperational() bool
	SetOperational(ctx context.Context, caller string, on bool) error
}

// SuretyServiceServer is the method set registered under ServiceName.
type SuretyServiceServer interface {
	RegisterAirline(ctx context.Context, req *RegisterAirlineRequest) (*airlines.RegistrationResult, error)
	SubmitFunding(ctx context.Context, req *FundAirlineRequest) (*Airline, error)
	GetAirline(ctx context.Context, req *AddressRequest) (*Airline, error)
	RegisterFlight(ctx context.Context, req *FlightRequest) (*Flight, error)
	GetFlight(ctx context.Context, req *FlightRequest) (*Flight, error)
	ListFlights(ctx context.Context, req *Empty) (*ListFlightsResponse, error)
	RegisterOracle(ctx context.Context, req *RegisterOracleRequest) (*oracles.OracleRegistration, error)
	RequestFlightStatus(ctx context.Context, req *oracles.RequestStatusInput) (*oracles.StatusRequestView, error)
	GetRequest(ctx context.Context, req *GetRequestRequest) (*oracles.StatusRequestView, error)
	SubmitOracleResponse(ctx context.Context, req *oracles.SubmitResponseInput) (*oracles.ResponseResult, error)
	GetOperational(ctx context.Context, req *Empty) (*OperationalResponse, error)
	SetOperational(ctx context.Context, req *SetOperationalRequest) (*OperationalResponse, error)
}

// Server exposes the registries over gRPC with JSON payloads.
type Server struct {
	airlines airlines.AirlineUseCase
	flights  flights.FlightUseCase
	oracles  oracles.OracleUseCase
	gate     OperationalControl
}

func NewServer(airlineSvc airlines.AirlineUseCase, flightSvc flights.FlightUseCase, oracleSvc oracles.OracleUseCase, gate OperationalControl) *Server {
	return &Server{airlines: airlineSvc, flights: flightSvc, oracles: oracleSvc, gate: gate}
}

func Register(s grpc.ServiceRegistrar, srv SuretyServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func (s *Server) RegisterAirline(ctx context.Context, req *RegisterAirlineRequest) (*airlines.RegistrationResult, error) {
	res, err := s.airlines.RegisterAirline(ctx, airlines.RegisterAirlineInput{
		Name:      req.Name,
		Address:   req.Address,
		Requester: req.Requester,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return res, nil
}

func (s *Server) SubmitFunding(ctx context.Context, req *FundAirlineRequest) (*Airline, error) {
	airline, err := s.airlines.SubmitFunding(ctx, req.Address, req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAirline(airline), nil
}

func (s *Server) GetAirline(ctx context.Context, req *AddressRequest) (*Airline, error) {
	airline, err := s.airlines.Get(ctx, req.Address)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAirline(airline), nil
}

func (s *Server) RegisterFlight(ctx context.Context, req *FlightRequest) (*Flight, error) {
	flight, err := s.flights.RegisterFlight(ctx, flights.RegisterFlightInput{
		Airline:   req.Airline,
		Code:      req.Code,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toFlight(flight), nil
}

func (s *Server) GetFlight(ctx context.Context, req *FlightRequest) (*Flight, error) {
	flight, err := s.flights.GetFlight(ctx, req.key())
	if err != nil {
		return nil, toStatus(err)
	}
	return toFlight(flight), nil
}

func (s *Server) ListFlights(ctx context.Context, _ *Empty) (*ListFlightsResponse, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &ListFlightsResponse{Flights: make([]*Flight, 0, len(list))}
	for i := range list {
		resp.Flights = append(resp.Flights, toFlight(&list[i]))
	}
	return resp, nil
}

func (s *Server) RegisterOracle(ctx context.Context, req *RegisterOracleRequest) (*oracles.OracleRegistration, error) {
	reg, err := s.oracles.RegisterOracle(ctx, req.Address, req.Fee)
	if err != nil {
		return nil, toStatus(err)
	}
	return reg, nil
}

func (s *Server) RequestFlightStatus(ctx context.Context, req *oracles.RequestStatusInput) (*oracles.StatusRequestView, error) {
	view, err := s.oracles.RequestFlightStatus(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return view, nil
}

func (s *Server) GetRequest(ctx context.Context, req *GetRequestRequest) (*oracles.StatusRequestView, error) {
	if req.Index > 255 {
		return nil, status.Errorf(codes.InvalidArgument, "index %d out of range", req.Index)
	}
	view, err := s.oracles.GetRequest(ctx, domain.RequestKey{
		Index:  uint8(req.Index),
		Flight: domain.FlightKey{Airline: req.Airline, Code: req.Code, Timestamp: req.Timestamp},
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return view, nil
}

func (s *Server) SubmitOracleResponse(ctx context.Context, req *oracles.SubmitResponseInput) (*oracles.ResponseResult, error) {
	res, err := s.oracles.SubmitOracleResponse(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return res, nil
}

func (s *Server) GetOperational(_ context.Context, _ *Empty) (*OperationalResponse, error) {
	return &OperationalResponse{Operational: s.gate.IsOperational()}, nil
}

func (s *Server) SetOperational(ctx context.Context, req *SetOperationalRequest) (*OperationalResponse, error) {
	if err := s.gate.SetOperational(ctx, req.Caller, req.Operational); err != nil {
		return nil, toStatus(err)
	}
	return &OperationalResponse{Operational: s.gate.IsOperational()}, nil
}

func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrUnauthorized):
		code = codes.PermissionDenied
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientFee):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrInvalidStatus):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrNotOperational):
		code = codes.Unavailable
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

var _ SuretyServiceServer = (*Server)(nil)
