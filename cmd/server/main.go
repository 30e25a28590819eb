// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/config"
	"github.com/unclebandit/creditsim/internal/handler"
	"github.com/unclebandit/creditsim/internal/logging"
	"github.com/unclebandit/creditsim/internal/metrics"
	"github.com/unclebandit/creditsim/internal/repository"
	"github.com/unclebandit/creditsim/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server failed:", err)
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

	// reads always come from the CSV store
	repo := &repository.CSVRepository{Dir: cfg.Storage.CSVDir}
	stats := &service.StatsService{Repo: repo}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.NewRouter(stats, metrics.New(), logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 server running", zap.String("addr", srv.Addr), zap.String("dir", cfg.Storage.CSVDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
