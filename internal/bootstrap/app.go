package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightsurety/api"
	"github.com/Domenick1991/flightsurety/config"
	suretyapi "github.com/Domenick1991/flightsurety/internal/api/surety_service_api"
	"github.com/Domenick1991/flightsurety/internal/cache"
	"github.com/Domenick1991/flightsurety/internal/kafka"
	"github.com/Domenick1991/flightsurety/internal/metrics"
	"github.com/Domenick1991/flightsurety/internal/oraclesim"
	"github.com/Domenick1991/flightsurety/internal/pubsub"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"github.com/Domenick1991/flightsurety/internal/service/airlines"
	"github.com/Domenick1991/flightsurety/internal/service/flights"
	"github.com/Domenick1991/flightsurety/internal/service/operational"
	"github.com/Domenick1991/flightsurety/internal/service/oracles"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// App holds the wired registries and their transports.
type App struct {
	Gate     *operational.Gate
	Airlines *airlines.AirlineService
	Flights  *flights.FlightService
	Oracles  *oracles.OracleEngine
	Broker   *pubsub.Broker
	Fleet    *oraclesim.Fleet

	Registry   *prometheus.Registry
	HTTPRouter api.Handlers
	GRPCServer *grpc.Server

	cfg     *config.Config
	logger  *zap.Logger
	history repository.StatusHistoryRepository
	closers []func() error
}

// NewApp wires every component from cfg. Redis, Kafka and Postgres are
// optional; an unconfigured one is replaced by its in-process fallback or left
// out.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(a.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	a.Gate = operational.NewGate(cfg.Surety.Admin, logger)
	a.Broker = pubsub.NewBroker(pubsub.WithLogger(logger))
	a.closers = append(a.closers, a.Broker.Close)

	var (
		flightOpts = []flights.FlightServiceOption{flights.WithMetrics(m), flights.WithLogger(logger)}
		deduper    oraclesim.Deduper
	)
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Redis.FlightsTTL(), cfg.Redis.DedupeTTL())
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, continuing", zap.Error(err))
		}
		a.closers = append(a.closers, redisCache.Close)
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
		deduper = redisCache
	} else {
		deduper = cache.NewMemoryDeduper(cfg.Redis.DedupeTTL())
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.WithProducerLogger(logger))
		a.closers = append(a.closers, producer.Close)
		if err := kafka.NewBridge(producer, cfg.Kafka.MaxRetries, logger).Attach(a.Broker, cfg.Kafka.BridgeTopics...); err != nil {
			return nil, err
		}
	}

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.history = repository.NewStatusHistoryRepository(pool)
	}

	a.Airlines = airlines.NewAirlineService(
		repository.NewAirlineRepository(),
		a.Gate,
		cfg.Surety.MinFunding,
		airlines.WithQuorumBootstrapSize(cfg.Surety.QuorumBootstrapSize),
		airlines.WithMetrics(m),
		airlines.WithLogger(logger),
	)
	if err := a.Airlines.Bootstrap(ctx, cfg.Surety.BootstrapAirline, cfg.Surety.BootstrapAirlineName); err != nil {
		return nil, fmt.Errorf("bootstrap airline: %w", err)
	}

	a.Flights = flights.NewFlightService(repository.NewFlightRepository(), a.Airlines, a.Gate, flightOpts...)

	a.Oracles = oracles.NewOracleEngine(
		oracles.Config{
			RegistrationFee: cfg.Surety.RegistrationFee,
			IndexSpace:      cfg.Surety.IndexSpace,
			MinResponses:    cfg.Surety.MinResponses,
		},
		repository.NewOracleRepository(),
		repository.NewRequestRepository(),
		a.Flights,
		a.Gate,
		a.Broker,
		oracles.WithMetrics(m),
		oracles.WithLogger(logger),
	)

	if cfg.Oracles.Count > 0 {
		a.Fleet = oraclesim.NewFleet(a.Oracles, oraclesim.RandomPicker{}, deduper, logger)
		if err := a.Fleet.Register(ctx, cfg.Oracles.Count, cfg.Oracles.Fee); err != nil {
			return nil, err
		}
		if err := a.Fleet.Attach(a.Broker); err != nil {
			return nil, err
		}
	}

	var historyReader api.HistoryReader
	if a.history != nil {
		historyReader = a.history
	}
	a.HTTPRouter = api.Handlers{
		Airlines:    api.NewAirlineHandler(a.Airlines),
		Flights:     api.NewFlightHandler(a.Flights, historyReader),
		Oracles:     api.NewOracleHandler(a.Oracles),
		Operational: api.NewOperationalHandler(a.Gate),
	}

	grpcMetrics := grpc_prometheus.NewServerMetrics()
	a.Registry.MustRegister(grpcMetrics)
	a.GRPCServer = grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcMetrics.UnaryServerInterceptor(),
		loggingInterceptor(logger),
	))
	suretyapi.Register(a.GRPCServer, suretyapi.NewServer(a.Airlines, a.Flights, a.Oracles, a.Gate))
	grpcMetrics.InitializeMetrics(a.GRPCServer)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Debug("grpc call failed", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return resp, err
	}
}
