package kafka

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/pubsub"
	"go.uber.org/zap"
)

type retryPublisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

type subscriber interface {
	Subscribe(topic, name string, handler pubsub.Handler) error
}

// Bridge copies in-process broker topics to Kafka under the same topic name.
// A failed forward is returned to the broker, which redelivers it.
type Bridge struct {
	producer   retryPublisher
	maxRetries int
	logger     *zap.Logger
}

func NewBridge(producer retryPublisher, maxRetries int, logger *zap.Logger) *Bridge {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{producer: producer, maxRetries: maxRetries, logger: logger}
}

func (b *Bridge) Attach(broker subscriber, topics ...string) error {
	for _, topic := range topics {
		if err := broker.Subscribe(topic, "kafka-bridge", b.forward); err != nil {
			return fmt.Errorf("bridge topic %s: %w", topic, err)
		}
	}
	return nil
}

func (b *Bridge) forward(ctx context.Context, msg pubsub.Message) error {
	if err := b.producer.PublishWithRetry(ctx, msg.Topic, msg.Key, msg.Payload, b.maxRetries); err != nil {
		return err
	}
	b.logger.Debug("forwarded to kafka",
		zap.String("topic", msg.Topic),
		zap.String("id", msg.ID))
	return nil
}
