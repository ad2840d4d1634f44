package flights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/metrics"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	RegisterFlight(ctx context.Context, input RegisterFlightInput) (*domain.Flight, error)
	GetFlight(ctx context.Context, key domain.FlightKey) (*domain.Flight, error)
	GetFlightStatus(ctx context.Context, key domain.FlightKey) (domain.FlightStatus, error)
	List(ctx context.Context) ([]domain.Flight, error)
	ListByAirline(ctx context.Context, airline string) ([]domain.Flight, error)
}

// StatusWriter is the write contract handed to the oracle engine. Nothing else
// is allowed to change a flight's status.
type StatusWriter interface {
	SetFlightStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus) (*domain.Flight, error)
}

type AirlineChecker interface {
	IsActive(ctx context.Context, address string) bool
}

type Gate interface {
	Check() error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type RegisterFlightInput struct {
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

type FlightService struct {
	repo     repository.FlightRepository
	airlines AirlineChecker
	gate     Gate
	cache    FlightCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) FlightServiceOption {
	return func(s *FlightService) {
		s.metrics = m
	}
}

func WithLogger(logger *zap.Logger) FlightServiceOption {
	return func(s *FlightService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(repo repository.FlightRepository, airlines AirlineChecker, gate Gate, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:     repo,
		airlines: airlines,
		gate:     gate,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) RegisterFlight(ctx context.Context, input RegisterFlightInput) (*domain.Flight, error) {
	if err := s.gate.Check(); err != nil {
		return nil, err
	}
	if input.Code == "" {
		return nil, errors.New("flight code is required")
	}
	if !s.airlines.IsActive(ctx, input.Airline) {
		return nil, fmt.Errorf("register flight %s by %s: %w", input.Code, input.Airline, domain.ErrUnauthorized)
	}

	now := s.now()
	flight := &domain.Flight{
		Airline:   input.Airline,
		Code:      input.Code,
		Timestamp: input.Timestamp,
		Status:    domain.FlightStatusUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, fmt.Errorf("register flight %s: %w", flight.Key(), err)
	}

	s.invalidate(ctx)
	s.metrics.FlightRegistered()
	s.logger.Info("flight registered", zap.Stringer("flight", flight.Key()))
	return flight, nil
}

// SetFlightStatus overwrites the status unconditionally. Resolving a request at
// most once is the oracle engine's job, not the registry's.
func (s *FlightService) SetFlightStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus) (*domain.Flight, error) {
	flight, err := s.repo.UpdateStatus(ctx, key, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("set status of flight %s: %w", key, err)
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) GetFlight(ctx context.Context, key domain.FlightKey) (*domain.Flight, error) {
	return s.repo.Get(ctx, key)
}

func (s *FlightService) GetFlightStatus(ctx context.Context, key domain.FlightKey) (domain.FlightStatus, error) {
	flight, err := s.repo.Get(ctx, key)
	if err != nil {
		return domain.FlightStatusUnknown, err
	}
	return flight.Status, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) ListByAirline(ctx context.Context, airline string) ([]domain.Flight, error) {
	return s.repo.ListByAirline(ctx, airline)
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.logger.Warn("invalidate flight cache", zap.Error(err))
	}
}

var (
	_ FlightUseCase = (*FlightService)(nil)
	_ StatusWriter  = (*FlightService)(nil)
)
