package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/config"
)

// TableEvent announces that a table has been persisted and can be read back.
type TableEvent struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	Seed  int64  `json:"seed"`
}

// Handler processes one event. A non-nil error asks the queue to retry.
type Handler func(ev TableEvent) error

// Queue interface
type Queue interface {
	Publish(topic string, ev TableEvent) error
	Subscribe(topic string, handler Handler) error
	Close() error
}

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// InMemoryQueue delivers events to in-process subscribers with retry
type InMemoryQueue struct {
	MaxRetries int
	Backoff    time.Duration

	logger   *zap.Logger
	mu       sync.Mutex
	handlers map[string][]Handler
	inflight sync.WaitGroup
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
		logger:     logger,
		handlers:   make(map[string][]Handler),
	}
}

// job wraps an event with retry info
type job struct {
	event      TableEvent
	retryCount int
	maxRetries int
}

// Publish hands the event to every subscriber of topic
func (q *InMemoryQueue) Publish(topic string, ev TableEvent) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.inflight.Add(1)
		go func(h Handler) {
			defer q.inflight.Done()
			q.processJob(h, job{event: ev, maxRetries: q.MaxRetries})
		}(handler)
	}
	return nil
}

// processJob runs the handler until it succeeds or retries are exhausted
func (q *InMemoryQueue) processJob(handler Handler, j job) {
	for {
		err := handler(j.event)
		if err == nil {
			q.logger.Debug("event processed", zap.String("table", j.event.Table))
			return
		}

		j.retryCount++
		if j.retryCount > j.maxRetries {
			q.logger.Error("event permanently failed",
				zap.String("table", j.event.Table),
				zap.Int("attempts", j.retryCount),
				zap.Error(err),
			)
			return
		}
		q.logger.Warn("event failed, retrying",
			zap.String("table", j.event.Table),
			zap.Int("attempt", j.retryCount),
			zap.Int("max_retries", j.maxRetries),
			zap.Error(err),
		)

		// linear backoff
		time.Sleep(time.Duration(j.retryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published event has been handled or dropped.
func (q *InMemoryQueue) Wait() {
	q.inflight.Wait()
}

// Close drains in-flight events.
func (q *InMemoryQueue) Close() error {
	q.Wait()
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)

// New returns a RabbitMQ-backed queue when an AMQP URL is configured and an
// in-process queue otherwise.
func New(cfg config.QueueConfig, logger *zap.Logger) (Queue, error) {
	if cfg.AMQPURL == "" {
		return NewInMemoryQueue(logger), nil
	}
	q, err := DialAMQP(cfg.AMQPURL, logger)
	if err != nil {
		return nil, err
	}
	return q, nil
}
