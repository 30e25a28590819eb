package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/queue"
	"github.com/unclebandit/creditsim/internal/service"
)

// MockFeatureBuilder counts rebuilds and can fail the first attempts
type MockFeatureBuilder struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (m *MockFeatureBuilder) BuildFromStore(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return 0, errors.New("monthly_outcomes not readable yet")
	}
	return 42, nil
}

func (m *MockFeatureBuilder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestWorker(t *testing.T) {
	builder := &MockFeatureBuilder{failures: 1}
	worker := service.NewWorker(builder, time.Second, zap.NewNop())

	q := queue.NewInMemoryQueue(zap.NewNop())
	q.Backoff = time.Millisecond
	if err := q.Subscribe("tables_ready", worker.Handle); err != nil {
		t.Fatal(err)
	}

	for _, table := range []string{model.TableCustomers, model.TableAccounts, model.TableMonthlyOutcomes} {
		if err := q.Publish("tables_ready", queue.TableEvent{Table: table, Seed: 42}); err != nil {
			t.Fatal(err)
		}
	}
	q.Wait()

	// one failed attempt on monthly_outcomes, then the retry succeeds
	if got := builder.Calls(); got != 2 {
		t.Errorf("expected 2 builds, got %d", got)
	}
}

func TestWorker_IgnoresOtherTables(t *testing.T) {
	builder := &MockFeatureBuilder{}
	worker := service.NewWorker(builder, time.Second, zap.NewNop())

	if err := worker.Handle(queue.TableEvent{Table: model.TableFeatures}); err != nil {
		t.Fatal(err)
	}
	if builder.Calls() != 0 {
		t.Errorf("expected no builds, got %d", builder.Calls())
	}
}
