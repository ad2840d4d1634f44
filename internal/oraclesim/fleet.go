// Package oraclesim runs a fleet of simulated oracles inside the process. The
// fleet registers its oracles with the engine, listens for status requests
// and answers every request whose index one of its oracles holds.
package oraclesim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/pubsub"
	"github.com/Domenick1991/flightsurety/internal/service/oracles"
	"go.uber.org/zap"
)

type Engine interface {
	RegisterOracle(ctx context.Context, address string, fee int64) (*oracles.OracleRegistration, error)
	SubmitOracleResponse(ctx context.Context, input oracles.SubmitResponseInput) (*oracles.ResponseResult, error)
}

type StatusPicker interface {
	Pick(oracle string, event domain.OracleRequestEvent) domain.FlightStatus
}

// Deduper claims an id; false means it was claimed before.
type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
}

type Subscriber interface {
	Subscribe(topic, name string, handler pubsub.Handler) error
}

type RandomPicker struct{}

func (RandomPicker) Pick(string, domain.OracleRequestEvent) domain.FlightStatus {
	codes := domain.FlightStatuses()
	return codes[rand.IntN(len(codes))]
}

type FixedPicker domain.FlightStatus

func (p FixedPicker) Pick(string, domain.OracleRequestEvent) domain.FlightStatus {
	return domain.FlightStatus(p)
}

type Fleet struct {
	engine  Engine
	picker  StatusPicker
	deduper Deduper
	logger  *zap.Logger

	mu      sync.RWMutex
	oracles []oracles.OracleRegistration
}

func NewFleet(engine Engine, picker StatusPicker, deduper Deduper, logger *zap.Logger) *Fleet {
	if picker == nil {
		picker = RandomPicker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fleet{engine: engine, picker: picker, deduper: deduper, logger: logger}
}

// Register signs up count oracles named oracle-001 and upward. Running it
// again after a restart gets back the indexes already assigned.
func (f *Fleet) Register(ctx context.Context, count int, fee int64) error {
	regs := make([]oracles.OracleRegistration, 0, count)
	for i := 1; i <= count; i++ {
		reg, err := f.engine.RegisterOracle(ctx, fmt.Sprintf("oracle-%03d", i), fee)
		if err != nil {
			return fmt.Errorf("register simulated oracle %d: %w", i, err)
		}
		regs = append(regs, *reg)
	}

	f.mu.Lock()
	f.oracles = regs
	f.mu.Unlock()

	f.logger.Info("simulated oracles registered", zap.Int("count", count))
	return nil
}

func (f *Fleet) Attach(broker Subscriber) error {
	return broker.Subscribe(domain.TopicOracleRequests, "oracle-fleet", f.Handle)
}

func (f *Fleet) Oracles() []oracles.OracleRegistration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]oracles.OracleRegistration, len(f.oracles))
	copy(out, f.oracles)
	return out
}

// Handle answers one request notification. Each oracle answers a given
// notification at most once, however often it is delivered.
func (f *Fleet) Handle(ctx context.Context, msg pubsub.Message) error {
	event, ok := msg.Payload.(domain.OracleRequestEvent)
	if !ok {
		f.logger.Warn("unexpected payload on oracle request topic", zap.String("id", msg.ID))
		return nil
	}

	for _, o := range f.Oracles() {
		if !holds(o.Indexes, event.Index) {
			continue
		}
		first, err := f.deduper.FirstSeen(ctx, event.ID+"/"+o.Address)
		if err != nil {
			return fmt.Errorf("dedupe %s: %w", event.ID, err)
		}
		if !first {
			continue
		}

		status := f.picker.Pick(o.Address, event)
		res, err := f.engine.SubmitOracleResponse(ctx, oracles.SubmitResponseInput{
			Index:     event.Index,
			Airline:   event.Airline,
			Code:      event.Flight,
			Timestamp: event.Timestamp,
			Status:    uint8(status),
			Oracle:    o.Address,
		})
		if err != nil {
			f.logger.Warn("simulated oracle response rejected",
				zap.String("oracle", o.Address),
				zap.String("request", event.ID),
				zap.Error(err))
			continue
		}
		if res.Resolved && !res.ResolvedNow {
			// request already settled, the rest of the fleet has nothing to add
			return nil
		}
	}
	return nil
}

func holds(indexes [3]uint8, index uint8) bool {
	for _, i := range indexes {
		if i == index {
			return true
		}
	}
	return false
}
