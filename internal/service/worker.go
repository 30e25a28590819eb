package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/queue"
)

// FeatureBuilder defines what the worker needs to rebuild features
type FeatureBuilder interface {
	BuildFromStore(ctx context.Context) (int, error)
}

// Worker reacts to table events and rebuilds the feature table once the
// monthly panel has been written.
type Worker struct {
	Features FeatureBuilder
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Constructor
func NewWorker(builder FeatureBuilder, timeout time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		Features: builder,
		Timeout:  timeout,
		Logger:   logger,
	}
}

// Handle is a queue.Handler. Events for other tables are acknowledged and ignored.
func (w *Worker) Handle(ev queue.TableEvent) error {
	if ev.Table != model.TableMonthlyOutcomes {
		w.Logger.Debug("ignoring table event", zap.String("table", ev.Table))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
	defer cancel()

	n, err := w.Features.BuildFromStore(ctx)
	if err != nil {
		w.Logger.Error("failed to build features", zap.Int64("seed", ev.Seed), zap.Error(err))
		return err
	}
	w.Logger.Info("features built", zap.Int64("seed", ev.Seed), zap.Int("rows", n))
	return nil
}

