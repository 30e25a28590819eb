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

const jobTimeout = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker failed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CREDITSIM_CONFIG"))
	if err != nil {
		return err
	}
	if cfg.Queue.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required for the worker")
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

	q, err := queue.DialAMQP(cfg.Queue.AMQPURL, logger)
	if err != nil {
		return err
	}
	defer q.Close()

	m := metrics.New()
	worker := service.NewWorker(&service.FeatureService{Repo: repo, Metrics: m, Logger: logger}, jobTimeout, logger)
	if err := q.Subscribe(cfg.Queue.Topic, worker.Handle); err != nil {
		return err
	}

	logger.Info("worker running, waiting for table events", zap.String("topic", cfg.Queue.Topic))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("worker shutting down")
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("failed to write metrics textfile", zap.Error(err))
		}
	}
	return nil
}
