// Package worker projects resolved flight statuses from Kafka into the
// Postgres history table.
package worker

import (
	"context"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type HistoryRecorder interface {
	Record(ctx context.Context, res domain.StatusResolution) error
}

type FlightCacheInvalidator interface {
	InvalidateFlights(ctx context.Context) error
}

type Projector struct {
	history HistoryRecorder
	cache   FlightCacheInvalidator
	logger  *zap.Logger
}

// NewProjector builds the handler; cache may be nil.
func NewProjector(history HistoryRecorder, cache FlightCacheInvalidator, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{history: history, cache: cache, logger: logger}
}

// Handle stores one flight.status event. Undecodable messages are skipped so
// they cannot block the partition; storage errors stop consumption.
func (p *Projector) Handle(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.DecodeFlightStatus(msg)
	if err != nil {
		p.logger.Warn("skipping flight status message",
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		return nil
	}

	if err := p.history.Record(ctx, event.Resolution()); err != nil {
		return err
	}

	if p.cache != nil {
		if err := p.cache.InvalidateFlights(ctx); err != nil {
			p.logger.Warn("invalidate flight cache", zap.Error(err))
		}
	}

	p.logger.Info("flight status recorded",
		zap.String("event", event.ID),
		zap.String("airline", event.Airline),
		zap.String("flight", event.Flight),
		zap.String("status", event.StatusName))
	return nil
}
