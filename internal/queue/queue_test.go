package queue

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueue() *InMemoryQueue {
	q := NewInMemoryQueue(zap.NewNop())
	q.Backoff = time.Millisecond
	return q
}

func TestInMemoryQueue_Delivers(t *testing.T) {
	q := newTestQueue()
	got := make(chan TableEvent, 2)
	require.NoError(t, q.Subscribe("tables_ready", func(ev TableEvent) error {
		got <- ev
		return nil
	}))
	require.NoError(t, q.Subscribe("tables_ready", func(ev TableEvent) error {
		got <- ev
		return nil
	}))

	require.NoError(t, q.Publish("tables_ready", TableEvent{Table: "customers", Rows: 10, Seed: 42}))
	q.Wait()

	require.Len(t, got, 2)
	assert.Equal(t, TableEvent{Table: "customers", Rows: 10, Seed: 42}, <-got)
}

func TestInMemoryQueue_NoSubscribers(t *testing.T) {
	q := newTestQueue()
	assert.Error(t, q.Publish("tables_ready", TableEvent{Table: "customers"}))
}

func TestInMemoryQueue_RetriesUntilSuccess(t *testing.T) {
	q := newTestQueue()
	var calls atomic.Int32
	require.NoError(t, q.Subscribe("t", func(TableEvent) error {
		if calls.Add(1) < 3 {
			return errors.New("not yet")
		}
		return nil
	}))

	require.NoError(t, q.Publish("t", TableEvent{Table: "accounts"}))
	q.Wait()
	assert.Equal(t, int32(3), calls.Load())
}

func TestInMemoryQueue_GivesUp(t *testing.T) {
	q := newTestQueue()
	q.MaxRetries = 2
	var calls atomic.Int32
	require.NoError(t, q.Subscribe("t", func(TableEvent) error {
		calls.Add(1)
		return errors.New("always")
	}))

	require.NoError(t, q.Publish("t", TableEvent{Table: "accounts"}))
	require.NoError(t, q.Close())
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryCount(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 0, retryCount(amqp.Table{}))
	assert.Equal(t, 2, retryCount(amqp.Table{retryHeader: int32(2)}))
	assert.Equal(t, 3, retryCount(amqp.Table{retryHeader: int64(3)}))
	assert.Equal(t, 0, retryCount(amqp.Table{retryHeader: "x"}))
}

func TestDecodeEvent(t *testing.T) {
	ev, err := decodeEvent([]byte(`{"table":"monthly_outcomes","rows":300,"seed":7}`))
	require.NoError(t, err)
	assert.Equal(t, TableEvent{Table: "monthly_outcomes", Rows: 300, Seed: 7}, ev)

	_, err = decodeEvent([]byte(`{"rows":1}`))
	assert.Error(t, err)
	_, err = decodeEvent([]byte(`not json`))
	assert.Error(t, err)
}
