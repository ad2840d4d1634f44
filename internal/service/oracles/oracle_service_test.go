package oracles

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"github.com/Domenick1991/flightsurety/internal/service/operational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testFlight = domain.FlightKey{Airline: "airline1", Code: "ND1309", Timestamp: 1700000000}

// seqSource replays vals in a loop.
type seqSource struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

type published struct {
	topic   string
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) byTopic(topic string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

// memoryFlights satisfies FlightRegistry on top of the in-memory repository.
type memoryFlights struct {
	repo   *repository.MemoryFlightRepository
	failOn error
}

func (f *memoryFlights) GetFlight(ctx context.Context, key domain.FlightKey) (*domain.Flight, error) {
	return f.repo.Get(ctx, key)
}

func (f *memoryFlights) SetFlightStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus) (*domain.Flight, error) {
	if f.failOn != nil {
		return nil, f.failOn
	}
	return f.repo.UpdateStatus(ctx, key, status, time.Now())
}

type fixture struct {
	engine    *OracleEngine
	flights   *memoryFlights
	publisher *recordingPublisher
	gate      *operational.Gate
	source    *seqSource
}

func newFixture(t *testing.T, vals ...int) *fixture {
	t.Helper()
	flightRepo := repository.NewFlightRepository()
	require.NoError(t, flightRepo.Create(context.Background(), &domain.Flight{
		Airline:   testFlight.Airline,
		Code:      testFlight.Code,
		Timestamp: testFlight.Timestamp,
	}))

	f := &fixture{
		flights:   &memoryFlights{repo: flightRepo},
		publisher: &recordingPublisher{},
		gate:      operational.NewGate("owner", nil),
		source:    &seqSource{vals: vals},
	}
	f.engine = NewOracleEngine(
		Config{RegistrationFee: 1, IndexSpace: 10},
		repository.NewOracleRepository(),
		repository.NewRequestRepository(),
		f.flights,
		f.gate,
		f.publisher,
		WithIndexSource(f.source),
	)
	return f
}

func (f *fixture) registerOracles(t *testing.T, n int) []string {
	t.Helper()
	addrs := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		addr := fmt.Sprintf("oracle%d", i)
		_, err := f.engine.RegisterOracle(context.Background(), addr, 1)
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	return addrs
}

func (f *fixture) respond(oracle string, index uint8, status domain.FlightStatus) (*ResponseResult, error) {
	return f.engine.SubmitOracleResponse(context.Background(), SubmitResponseInput{
		Index:     index,
		Airline:   testFlight.Airline,
		Code:      testFlight.Code,
		Timestamp: testFlight.Timestamp,
		Status:    uint8(status),
		Oracle:    oracle,
	})
}

func (f *fixture) request(t *testing.T) *StatusRequestView {
	t.Helper()
	view, err := f.engine.RequestFlightStatus(context.Background(), RequestStatusInput{
		Airline:   testFlight.Airline,
		Code:      testFlight.Code,
		Timestamp: testFlight.Timestamp,
		Requester: "passenger",
	})
	require.NoError(t, err)
	return view
}

func TestOracleEngine_MajorityResolvesAndLaterResponsesAreAbsorbed(t *testing.T) {
	f := newFixture(t, 4, 5, 6)
	oracles := f.registerOracles(t, 4)

	view := f.request(t)
	require.Equal(t, uint8(4), view.Index)
	assert.True(t, view.Announced)

	for i, oracle := range oracles[:2] {
		res, err := f.respond(oracle, 4, domain.FlightStatusLateAirline)
		require.NoError(t, err)
		assert.False(t, res.Resolved)
		assert.Equal(t, i+1, res.Reporters)
	}

	res, err := f.respond(oracles[2], 4, domain.FlightStatusLateAirline)
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.True(t, res.ResolvedNow)
	assert.Equal(t, domain.FlightStatusLateAirline, res.Outcome)

	late, err := f.respond(oracles[3], 4, domain.FlightStatusLateTechnical)
	require.NoError(t, err)
	assert.True(t, late.Accepted)
	assert.True(t, late.Resolved)
	assert.False(t, late.ResolvedNow)
	assert.Equal(t, domain.FlightStatusLateAirline, late.Outcome)

	flight, err := f.flights.GetFlight(context.Background(), testFlight)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusLateAirline, flight.Status)

	events := f.publisher.byTopic(domain.TopicFlightStatus)
	require.Len(t, events, 1)
	event := events[0].payload.(domain.FlightStatusEvent)
	assert.Equal(t, uint8(20), event.Status)
	assert.Equal(t, 3, event.Reporters)
	assert.NotEmpty(t, event.ID)
}

func TestOracleEngine_ResponseForIndexNotHeldIsUnauthorized(t *testing.T) {
	f := newFixture(t, 1, 2, 3)
	f.registerOracles(t, 1)

	oracle, err := f.engine.GetOracle(context.Background(), "oracle1")
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{1, 2, 3}, oracle.Indexes)

	_, err = f.respond("oracle1", 7, domain.FlightStatusOnTime)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.engine.GetRequest(context.Background(), domain.RequestKey{Index: 7, Flight: testFlight})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOracleEngine_UnknownOracleIsUnauthorized(t *testing.T) {
	f := newFixture(t, 1, 2, 3)

	_, err := f.respond("stranger", 1, domain.FlightStatusOnTime)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOracleEngine_RegisterOracle(t *testing.T) {
	t.Run("insufficient fee", func(t *testing.T) {
		f := newFixture(t, 1, 2, 3)
		_, err := f.engine.RegisterOracle(context.Background(), "oracle1", 0)
		assert.ErrorIs(t, err, domain.ErrInsufficientFee)

		_, err = f.engine.GetOracle(context.Background(), "oracle1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("re-registration keeps indexes", func(t *testing.T) {
		f := newFixture(t, 1, 2, 3, 7, 8, 9)
		first, err := f.engine.RegisterOracle(context.Background(), "oracle1", 1)
		require.NoError(t, err)
		assert.False(t, first.AlreadyRegistered)

		second, err := f.engine.RegisterOracle(context.Background(), "oracle1", 5)
		require.NoError(t, err)
		assert.True(t, second.AlreadyRegistered)
		assert.Equal(t, first.Indexes, second.Indexes)
	})

	t.Run("colliding draws yield distinct indexes", func(t *testing.T) {
		f := newFixture(t, 9)
		reg, err := f.engine.RegisterOracle(context.Background(), "oracle1", 1)
		require.NoError(t, err)
		assert.Equal(t, [3]uint8{9, 0, 1}, reg.Indexes)
	})

	t.Run("not operational", func(t *testing.T) {
		f := newFixture(t, 1, 2, 3)
		require.NoError(t, f.gate.SetOperational(context.Background(), "owner", false))
		_, err := f.engine.RegisterOracle(context.Background(), "oracle1", 1)
		assert.ErrorIs(t, err, domain.ErrNotOperational)
	})
}

func TestOracleEngine_RequestFlightStatus(t *testing.T) {
	t.Run("unknown flight", func(t *testing.T) {
		f := newFixture(t, 4)
		_, err := f.engine.RequestFlightStatus(context.Background(), RequestStatusInput{
			Airline: "airline1", Code: "XX1", Timestamp: 1,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.publisher.byTopic(domain.TopicOracleRequests))
	})

	t.Run("open request is reused and announced again", func(t *testing.T) {
		f := newFixture(t, 4)
		first := f.request(t)
		second := f.request(t)

		assert.Equal(t, first.OpenedAt, second.OpenedAt)
		events := f.publisher.byTopic(domain.TopicOracleRequests)
		require.Len(t, events, 2)
		req := events[0].payload.(domain.OracleRequestEvent)
		assert.Equal(t, uint8(4), req.Index)
		assert.Equal(t, testFlight, req.FlightKey())
	})

	t.Run("resolved request is returned without announcement", func(t *testing.T) {
		f := newFixture(t, 4, 5, 6)
		oracles := f.registerOracles(t, 3)
		f.source.vals = []int{4}
		f.request(t)
		for _, oracle := range oracles {
			_, err := f.respond(oracle, 4, domain.FlightStatusOnTime)
			require.NoError(t, err)
		}

		view := f.request(t)
		assert.True(t, view.Resolved)
		assert.False(t, view.Announced)
		assert.Equal(t, domain.FlightStatusOnTime, view.Outcome)
		assert.Len(t, f.publisher.byTopic(domain.TopicOracleRequests), 1)
	})

	t.Run("publish failure still opens the request", func(t *testing.T) {
		flightRepo := repository.NewFlightRepository()
		require.NoError(t, flightRepo.Create(context.Background(), &domain.Flight{
			Airline: testFlight.Airline, Code: testFlight.Code, Timestamp: testFlight.Timestamp,
		}))
		pub := new(MockPublisher)
		pub.On("Publish", mock.Anything, domain.TopicOracleRequests, mock.Anything, mock.Anything).
			Return(errors.New("broker closed"))

		engine := NewOracleEngine(Config{}, repository.NewOracleRepository(), repository.NewRequestRepository(),
			&memoryFlights{repo: flightRepo}, operational.NewGate("owner", nil), pub,
			WithIndexSource(&seqSource{vals: []int{2}}))

		view, err := engine.RequestFlightStatus(context.Background(), RequestStatusInput{
			Airline: testFlight.Airline, Code: testFlight.Code, Timestamp: testFlight.Timestamp,
		})
		require.NoError(t, err)
		assert.False(t, view.Announced)

		_, err = engine.GetRequest(context.Background(), domain.RequestKey{Index: 2, Flight: testFlight})
		assert.NoError(t, err)
		pub.AssertExpectations(t)
	})
}

func TestOracleEngine_SubmitOracleResponseErrors(t *testing.T) {
	f := newFixture(t, 4, 5, 6)
	f.registerOracles(t, 1)

	t.Run("invalid status", func(t *testing.T) {
		f.request(t)
		_, err := f.respond("oracle1", 4, domain.FlightStatus(15))
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("no open request", func(t *testing.T) {
		_, err := f.respond("oracle1", 5, domain.FlightStatusOnTime)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("not operational", func(t *testing.T) {
		require.NoError(t, f.gate.SetOperational(context.Background(), "owner", false))
		defer func() { _ = f.gate.SetOperational(context.Background(), "owner", true) }()
		_, err := f.respond("oracle1", 4, domain.FlightStatusOnTime)
		assert.ErrorIs(t, err, domain.ErrNotOperational)
	})
}

func TestOracleEngine_DuplicateAndChangedVotes(t *testing.T) {
	f := newFixture(t, 4, 5, 6)
	oracles := f.registerOracles(t, 3)
	f.request(t)

	for i := 0; i < 3; i++ {
		res, err := f.respond(oracles[0], 4, domain.FlightStatusLateWeather)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Reporters)
		assert.False(t, res.Resolved)
	}

	_, err := f.respond(oracles[1], 4, domain.FlightStatusLateWeather)
	require.NoError(t, err)

	// oracle1 changes its mind, so LateWeather drops back to one reporter.
	res, err := f.respond(oracles[0], 4, domain.FlightStatusOnTime)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reporters)

	view, err := f.engine.GetRequest(context.Background(), domain.RequestKey{Index: 4, Flight: testFlight})
	require.NoError(t, err)
	assert.Equal(t, map[domain.FlightStatus]int{
		domain.FlightStatusLateWeather: 1,
		domain.FlightStatusOnTime:      1,
	}, view.Responses)

	res, err = f.respond(oracles[2], 4, domain.FlightStatusLateWeather)
	require.NoError(t, err)
	assert.False(t, res.Resolved)
}

func TestOracleEngine_FailedStatusWriteLeavesRequestOpen(t *testing.T) {
	f := newFixture(t, 4, 5, 6)
	oracles := f.registerOracles(t, 3)
	f.request(t)

	for _, oracle := range oracles[:2] {
		_, err := f.respond(oracle, 4, domain.FlightStatusOnTime)
		require.NoError(t, err)
	}

	f.flights.failOn = errors.New("store unavailable")
	_, err := f.respond(oracles[2], 4, domain.FlightStatusOnTime)
	require.Error(t, err)

	view, err := f.engine.GetRequest(context.Background(), domain.RequestKey{Index: 4, Flight: testFlight})
	require.NoError(t, err)
	assert.False(t, view.Resolved)

	f.flights.failOn = nil
	res, err := f.respond(oracles[2], 4, domain.FlightStatusOnTime)
	require.NoError(t, err)
	assert.True(t, res.ResolvedNow)
}

func TestOracleEngine_ConcurrentResponsesResolveOnce(t *testing.T) {
	f := newFixture(t, 4, 5, 6)
	oracles := f.registerOracles(t, 12)
	f.request(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for _, oracle := range oracles {
		wg.Add(1)
		go func(oracle string) {
			defer wg.Done()
			res, err := f.respond(oracle, 4, domain.FlightStatusLateOther)
			if assert.NoError(t, err) && res.ResolvedNow {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(oracle)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Len(t, f.publisher.byTopic(domain.TopicFlightStatus), 1)
}

func TestOracleEngine_MinResponsesIsConfigurable(t *testing.T) {
	flightRepo := repository.NewFlightRepository()
	require.NoError(t, flightRepo.Create(context.Background(), &domain.Flight{
		Airline: testFlight.Airline, Code: testFlight.Code, Timestamp: testFlight.Timestamp,
	}))
	engine := NewOracleEngine(Config{MinResponses: 1}, repository.NewOracleRepository(), repository.NewRequestRepository(),
		&memoryFlights{repo: flightRepo}, operational.NewGate("owner", nil), &recordingPublisher{},
		WithIndexSource(&seqSource{vals: []int{0, 1, 2}}))

	_, err := engine.RegisterOracle(context.Background(), "oracle1", 1)
	require.NoError(t, err)
	_, err = engine.RequestFlightStatus(context.Background(), RequestStatusInput{
		Airline: testFlight.Airline, Code: testFlight.Code, Timestamp: testFlight.Timestamp,
	})
	require.NoError(t, err)

	res, err := engine.SubmitOracleResponse(context.Background(), SubmitResponseInput{
		Index: 0, Airline: testFlight.Airline, Code: testFlight.Code, Timestamp: testFlight.Timestamp,
		Status: uint8(domain.FlightStatusLateWeather), Oracle: "oracle1",
	})
	require.NoError(t, err)
	assert.True(t, res.ResolvedNow)
}
