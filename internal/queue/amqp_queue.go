package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const retryHeader = "x-retry-count"

// AMQPQueue publishes table events to RabbitMQ, one durable queue per topic.
type AMQPQueue struct {
	MaxRetries int

	logger *zap.Logger
	conn   *amqp.Connection
	mu     sync.Mutex
	ch     *amqp.Channel
}

// DialAMQP connects to the broker and opens a channel.
func DialAMQP(url string, logger *zap.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return &AMQPQueue{MaxRetries: DefaultMaxRetries, logger: logger, conn: conn, ch: ch}, nil
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func (q *AMQPQueue) Publish(topic string, ev TableEvent) error {
	return q.publish(topic, ev, 0)
}

func (q *AMQPQueue) publish(topic string, ev TableEvent, retries int) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, err := q.declare(topic); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{retryHeader: int32(retries)},
		Body:         body,
	})
}

// Subscribe starts consuming topic in the background. Failed events are
// republished with an incremented retry header until MaxRetries is reached.
func (q *AMQPQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	qd, err := q.declare(topic)
	if err != nil {
		q.mu.Unlock()
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}
	msgs, err := q.ch.Consume(
		qd.Name,
		"",
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			q.deliver(topic, d, handler)
		}
		q.logger.Info("consumer stopped", zap.String("topic", topic))
	}()
	return nil
}

func (q *AMQPQueue) deliver(topic string, d amqp.Delivery, handler Handler) {
	ev, err := decodeEvent(d.Body)
	if err != nil {
		q.logger.Warn("dropping invalid event", zap.Error(err))
		d.Ack(false)
		return
	}

	if err := handler(ev); err != nil {
		retries := retryCount(d.Headers) + 1
		if retries > q.MaxRetries {
			q.logger.Error("event permanently failed",
				zap.String("table", ev.Table),
				zap.Int("attempts", retries),
				zap.Error(err),
			)
		} else if perr := q.publish(topic, ev, retries); perr != nil {
			q.logger.Error("failed to requeue event", zap.String("table", ev.Table), zap.Error(perr))
			d.Nack(false, true)
			return
		}
	}
	d.Ack(false)
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

func decodeEvent(body []byte) (TableEvent, error) {
	var ev TableEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, err
	}
	if ev.Table == "" {
		return ev, fmt.Errorf("event has no table")
	}
	return ev, nil
}

// retryCount reads the retry header, which the broker may hand back as any
// integer width.
func retryCount(h amqp.Table) int {
	switch v := h[retryHeader].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

var _ Queue = (*AMQPQueue)(nil)
