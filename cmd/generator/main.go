// cmd/generator/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/config"
	"github.com/unclebandit/creditsim/internal/logging"
	"github.com/unclebandit/creditsim/internal/metrics"
	"github.com/unclebandit/creditsim/internal/queue"
	"github.com/unclebandit/creditsim/internal/repository"
	"github.com/unclebandit/creditsim/internal/service"
)

const workerTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "generator failed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CREDITSIM_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	repo, closeRepo, err := repository.NewFromConfig(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	m := metrics.New()
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
			}
		}()
	}

	q, err := newQueue(cfg, repo, m, logger)
	if err != nil {
		return err
	}
	if q != nil {
		defer q.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := &service.PipelineService{
		Repo:    repo,
		Queue:   q,
		Topic:   cfg.Queue.Topic,
		Metrics: m,
		Logger:  logger,
	}
	summary, err := pipeline.Run(ctx, cfg.Run)
	if err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		return err
	}

	logger.Info("✅ generation completed", zap.String("dir", cfg.Storage.CSVDir), zap.Any("rows", summary.Rows))
	return nil
}

// newQueue picks where table events go. Without a broker, events only matter
// when features are deferred, in which case an in-process worker builds them.
func newQueue(cfg *config.Config, repo repository.TableRepositoryInterface, m *metrics.Metrics, logger *zap.Logger) (queue.Queue, error) {
	if cfg.Queue.AMQPURL != "" {
		return queue.New(cfg.Queue, logger)
	}
	if cfg.Run.BuildFeatures {
		return nil, nil
	}

	q := queue.NewInMemoryQueue(logger)
	worker := service.NewWorker(&service.FeatureService{Repo: repo, Metrics: m, Logger: logger}, workerTimeout, logger)
	if err := q.Subscribe(cfg.Queue.Topic, worker.Handle); err != nil {
		return nil, err
	}
	return q, nil
}
