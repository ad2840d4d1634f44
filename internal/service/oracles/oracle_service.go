package oracles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/keylock"
	"github.com/Domenick1991/flightsurety/internal/metrics"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultIndexSpace      = 10
	DefaultMinResponses    = 3
	DefaultRegistrationFee = 1
)

type OracleUseCase interface {
	RegisterOracle(ctx context.Context, address string, fee int64) (*OracleRegistration, error)
	RequestFlightStatus(ctx context.Context, input RequestStatusInput) (*StatusRequestView, error)
	SubmitOracleResponse(ctx context.Context, input SubmitResponseInput) (*ResponseResult, error)
	GetOracle(ctx context.Context, address string) (*domain.Oracle, error)
	GetRequest(ctx context.Context, key domain.RequestKey) (*StatusRequestView, error)
}

// FlightRegistry is the part of the flight registry the engine depends on:
// existence checks and the single status write path.
type FlightRegistry interface {
	GetFlight(ctx context.Context, key domain.FlightKey) (*domain.Flight, error)
	SetFlightStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus) (*domain.Flight, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type Gate interface {
	Check() error
}

type Config struct {
	RegistrationFee int64
	IndexSpace      int
	MinResponses    int
}

type OracleRegistration struct {
	Address           string   `json:"address"`
	Indexes           [3]uint8 `json:"indexes"`
	AlreadyRegistered bool     `json:"already_registered"`
}

type RequestStatusInput struct {
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
	Requester string `json:"requester"`
}

func (in RequestStatusInput) FlightKey() domain.FlightKey {
	return domain.FlightKey{Airline: in.Airline, Code: in.Code, Timestamp: in.Timestamp}
}

type SubmitResponseInput struct {
	Index     uint8  `json:"index"`
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
	Status    uint8  `json:"status"`
	Oracle    string `json:"oracle"`
}

func (in SubmitResponseInput) RequestKey() domain.RequestKey {
	return domain.RequestKey{
		Index:  in.Index,
		Flight: domain.FlightKey{Airline: in.Airline, Code: in.Code, Timestamp: in.Timestamp},
	}
}

// StatusRequestView is a read-only snapshot of a status request. Responses
// holds the reporter count per status code.
type StatusRequestView struct {
	Index      uint8                       `json:"index"`
	Flight     domain.FlightKey            `json:"flight"`
	Requester  string                      `json:"requester"`
	Resolved   bool                        `json:"resolved"`
	Outcome    domain.FlightStatus         `json:"outcome"`
	Responses  map[domain.FlightStatus]int `json:"responses"`
	Announced  bool                        `json:"announced"`
	OpenedAt   time.Time                   `json:"opened_at"`
	ResolvedAt time.Time                   `json:"resolved_at,omitempty"`
}

type ResponseResult struct {
	Accepted  bool                `json:"accepted"`
	Resolved  bool                `json:"resolved"`
	Outcome   domain.FlightStatus `json:"outcome"`
	Reporters int                 `json:"reporters"`
	// ResolvedNow is set only on the response that crossed the threshold.
	ResolvedNow bool `json:"resolved_now"`
}

type OracleEngine struct {
	oracles   repository.OracleRepository
	requests  repository.RequestRepository
	flights   FlightRegistry
	gate      Gate
	publisher Publisher
	indexes   IndexSource
	locks     *keylock.Locker
	cfg       Config
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type OracleEngineOption func(*OracleEngine)

func WithIndexSource(src IndexSource) OracleEngineOption {
	return func(e *OracleEngine) {
		if src != nil {
			e.indexes = src
		}
	}
}

func WithMetrics(m *metrics.Metrics) OracleEngineOption {
	return func(e *OracleEngine) {
		e.metrics = m
	}
}

func WithLogger(logger *zap.Logger) OracleEngineOption {
	return func(e *OracleEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithClock(now func() time.Time) OracleEngineOption {
	return func(e *OracleEngine) {
		e.now = now
	}
}

func NewOracleEngine(
	cfg Config,
	oracles repository.OracleRepository,
	requests repository.RequestRepository,
	flights FlightRegistry,
	gate Gate,
	publisher Publisher,
	opts ...OracleEngineOption,
) *OracleEngine {
	if cfg.IndexSpace < domain.OracleIndexCount || cfg.IndexSpace > 256 {
		cfg.IndexSpace = DefaultIndexSpace
	}
	if cfg.MinResponses < 1 {
		cfg.MinResponses = DefaultMinResponses
	}
	if cfg.RegistrationFee < 0 {
		cfg.RegistrationFee = DefaultRegistrationFee
	}

	e := &OracleEngine{
		oracles:   oracles,
		requests:  requests,
		flights:   flights,
		gate:      gate,
		publisher: publisher,
		indexes:   NewRandomIndexSource(),
		locks:     keylock.New(),
		cfg:       cfg,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *OracleEngine) RegisterOracle(ctx context.Context, address string, fee int64) (*OracleRegistration, error) {
	if err := e.gate.Check(); err != nil {
		return nil, err
	}
	if address == "" {
		return nil, errors.New("oracle address is required")
	}
	if fee < e.cfg.RegistrationFee {
		return nil, fmt.Errorf("register oracle %s with fee %d, required %d: %w", address, fee, e.cfg.RegistrationFee, domain.ErrInsufficientFee)
	}

	unlock := e.locks.Lock("oracle:" + address)
	defer unlock()

	existing, err := e.oracles.Get(ctx, address)
	if err == nil {
		return &OracleRegistration{Address: address, Indexes: existing.Indexes, AlreadyRegistered: true}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	oracle := &domain.Oracle{Address: address, RegisteredAt: e.now()}
	copy(oracle.Indexes[:], pickIndexes(e.indexes, e.cfg.IndexSpace, domain.OracleIndexCount))
	if err := e.oracles.Create(ctx, oracle); err != nil {
		return nil, fmt.Errorf("register oracle %s: %w", address, err)
	}

	e.metrics.OracleRegistered()
	e.logger.Info("oracle registered",
		zap.String("oracle", address),
		zap.Uint8s("indexes", oracle.Indexes[:]))
	return &OracleRegistration{Address: address, Indexes: oracle.Indexes}, nil
}

// RequestFlightStatus opens a request under a randomly chosen index and
// announces it. It returns as soon as the request is stored.
func (e *OracleEngine) RequestFlightStatus(ctx context.Context, input RequestStatusInput) (*StatusRequestView, error) {
	if err := e.gate.Check(); err != nil {
		return nil, err
	}
	flightKey := input.FlightKey()
	if _, err := e.flights.GetFlight(ctx, flightKey); err != nil {
		return nil, fmt.Errorf("request status of %s: %w", flightKey, err)
	}

	key := domain.RequestKey{Index: uint8(e.indexes.Intn(e.cfg.IndexSpace) % e.cfg.IndexSpace), Flight: flightKey}

	unlock := e.locks.Lock(key.String())
	req, err := e.requests.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		req = domain.NewStatusRequest(key, input.Requester, e.now())
		if err := e.requests.Save(ctx, req); err != nil {
			unlock()
			return nil, err
		}
		e.metrics.RequestOpened()
	case err != nil:
		unlock()
		return nil, err
	}
	unlock()

	view := toView(req)
	if req.Resolved {
		return view, nil
	}

	event := domain.OracleRequestEvent{
		ID:          uuid.NewString(),
		Index:       key.Index,
		Airline:     flightKey.Airline,
		Flight:      flightKey.Code,
		Timestamp:   flightKey.Timestamp,
		RequestedAt: e.now(),
	}
	if err := e.publisher.Publish(ctx, domain.TopicOracleRequests, key.String(), event); err != nil {
		e.logger.Warn("failed to announce status request",
			zap.String("request", key.String()),
			zap.Error(err))
		return view, nil
	}
	view.Announced = true

	e.logger.Debug("status request announced",
		zap.String("request", key.String()),
		zap.String("requester", input.Requester))
	return view, nil
}

func (e *OracleEngine) SubmitOracleResponse(ctx context.Context, input SubmitResponseInput) (*ResponseResult, error) {
	if err := e.gate.Check(); err != nil {
		return nil, err
	}
	key := input.RequestKey()

	oracle, err := e.oracles.Get(ctx, input.Oracle)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !oracle.HasIndex(input.Index)) {
		e.metrics.OracleResponse("rejected")
		return nil, fmt.Errorf("response from %s for %s: %w", input.Oracle, key, domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	status := domain.FlightStatus(input.Status)
	if !status.Valid() {
		e.metrics.OracleResponse("rejected")
		return nil, fmt.Errorf("response from %s for %s with code %d: %w", input.Oracle, key, input.Status, domain.ErrInvalidStatus)
	}

	unlock := e.locks.Lock(key.String())
	defer unlock()

	req, err := e.requests.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("response for %s: %w", key, err)
	}
	if req.Resolved {
		e.metrics.OracleResponse("late")
		return &ResponseResult{
			Accepted:  true,
			Resolved:  true,
			Outcome:   req.Outcome,
			Reporters: len(req.Responses[req.Outcome]),
		}, nil
	}

	reporters := req.Record(input.Oracle, status)
	result := &ResponseResult{Accepted: true, Reporters: reporters}

	if reporters >= e.cfg.MinResponses {
		if _, err := e.flights.SetFlightStatus(ctx, key.Flight, status); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", key, err)
		}
		req.Resolved = true
		req.Outcome = status
		req.ResolvedAt = e.now()
		result.Resolved, result.ResolvedNow, result.Outcome = true, true, status
	}

	if err := e.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	if !result.ResolvedNow {
		e.metrics.OracleResponse("recorded")
		return result, nil
	}

	e.metrics.OracleResponse("resolved")
	e.metrics.RequestResolved(status.String())
	e.logger.Info("flight status resolved",
		zap.String("request", key.String()),
		zap.String("status", status.String()),
		zap.Int("reporters", reporters))

	event := domain.FlightStatusEvent{
		ID:         uuid.NewString(),
		Index:      key.Index,
		Airline:    key.Flight.Airline,
		Flight:     key.Flight.Code,
		Timestamp:  key.Flight.Timestamp,
		Status:     uint8(status),
		StatusName: status.String(),
		Reporters:  reporters,
		ResolvedAt: req.ResolvedAt,
	}
	if err := e.publisher.Publish(ctx, domain.TopicFlightStatus, key.Flight.String(), event); err != nil {
		e.logger.Warn("failed to publish flight status",
			zap.String("request", key.String()),
			zap.Error(err))
	}
	return result, nil
}

func (e *OracleEngine) GetOracle(ctx context.Context, address string) (*domain.Oracle, error) {
	return e.oracles.Get(ctx, address)
}

func (e *OracleEngine) GetRequest(ctx context.Context, key domain.RequestKey) (*StatusRequestView, error) {
	req, err := e.requests.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return toView(req), nil
}

func toView(req *domain.StatusRequest) *StatusRequestView {
	counts := make(map[domain.FlightStatus]int, len(req.Responses))
	for status, set := range req.Responses {
		counts[status] = len(set)
	}
	return &StatusRequestView{
		Index:      req.Key.Index,
		Flight:     req.Key.Flight,
		Requester:  req.Requester,
		Resolved:   req.Resolved,
		Outcome:    req.Outcome,
		Responses:  counts,
		OpenedAt:   req.OpenedAt,
		ResolvedAt: req.ResolvedAt,
	}
}

var _ OracleUseCase = (*OracleEngine)(nil)
