// Package pubsub is the in-process event fan-out between the registries and
// their subscribers. Every subscriber owns an unbounded queue drained by its
// own goroutine, so Publish never waits for a consumer.
//
// Delivery is at-least-once: a handler that returns an error sees the same
// message again, up to the configured number of attempts. Handlers must be
// idempotent on Message.ID.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("broker closed")

const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 200 * time.Millisecond
)

type Message struct {
	ID          string
	Topic       string
	Key         string
	Payload     interface{}
	PublishedAt time.Time
	Attempt     int
}

type Handler func(ctx context.Context, msg Message) error

type Broker struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup

	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

type Option func(*Broker)

func WithMaxAttempts(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.maxAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(b *Broker) {
		b.retryDelay = d
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		subs:        make(map[string][]*subscription),
		stop:        make(chan struct{}),
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for topic. name only shows up in logs.
func (b *Broker) Subscribe(topic, name string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	s := &subscription{topic: topic, name: name, handler: handler, notify: make(chan struct{}, 1)}
	b.subs[topic] = append(b.subs[topic], s)
	b.wg.Add(1)
	go b.run(s)
	return nil
}

// Publish stamps the payload with a fresh message ID and queues it for every
// current subscriber of topic.
func (b *Broker) Publish(_ context.Context, topic, key string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	msg := Message{
		ID:          uuid.NewString(),
		Topic:       topic,
		Key:         key,
		Payload:     payload,
		PublishedAt: time.Now(),
	}
	for _, s := range b.subs[topic] {
		s.push(msg)
	}
	return nil
}

// Close stops accepting messages, lets subscribers drain what is already
// queued and waits for them. Pending retries are abandoned.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.stop)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *Broker) run(s *subscription) {
	defer b.wg.Done()
	for {
		if msg, ok := s.pop(); ok {
			b.deliver(s, msg)
			continue
		}
		select {
		case <-s.notify:
		case <-b.stop:
			for {
				msg, ok := s.pop()
				if !ok {
					return
				}
				b.deliver(s, msg)
			}
		}
	}
}

func (b *Broker) deliver(s *subscription, msg Message) {
	for attempt := 1; ; attempt++ {
		msg.Attempt = attempt
		err := s.handler(context.Background(), msg)
		if err == nil {
			return
		}
		if attempt >= b.maxAttempts {
			b.logger.Error("dropping message after failed deliveries",
				zap.String("topic", msg.Topic),
				zap.String("subscriber", s.name),
				zap.String("id", msg.ID),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}
		b.logger.Warn("redelivering message",
			zap.String("topic", msg.Topic),
			zap.String("subscriber", s.name),
			zap.String("id", msg.ID),
			zap.Error(err))

		select {
		case <-time.After(b.retryDelay):
		case <-b.stop:
			b.logger.Warn("broker closing, retry abandoned",
				zap.String("subscriber", s.name),
				zap.String("id", msg.ID))
			return
		}
	}
}

type subscription struct {
	topic   string
	name    string
	handler Handler

	mu     sync.Mutex
	queue  []Message
	notify chan struct{}
}

func (s *subscription) push(msg Message) {
	s.mu.Lock()
	s.queue = append(s.queue, msg)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscription) pop() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Message{}, false
	}
	msg := s.queue[0]
	s.queue[0] = Message{}
	s.queue = s.queue[1:]
	return msg, true
}
