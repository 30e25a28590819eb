// internal/service/pipeline_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/config"
	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/generator"
	"github.com/unclebandit/creditsim/internal/metrics"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/queue"
	"github.com/unclebandit/creditsim/internal/randstream"
	"github.com/unclebandit/creditsim/internal/repository"
)

// Stage names, in execution order.
const (
	StageCustomers       = "customers"
	StageCampaigns       = "campaigns"
	StageExposures       = "exposures"
	StageAccounts        = "accounts"
	StageMonthlyOutcomes = "monthly_outcomes"
	StageFeatures        = "features"
)

// PipelineService runs the generators in their fixed order against a single
// random stream and persists every table as soon as it is materialized.
type PipelineService struct {
	Repo    repository.TableRepositoryInterface
	Queue   queue.Queue
	Topic   string
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// RunSummary reports what one run produced.
type RunSummary struct {
	Seed int64          `json:"seed"`
	Rows map[string]int `json:"rows"`
}

// Run executes the full pipeline. Invalid settings are rejected before any
// table is written; after that the first failing stage aborts the run and is
// returned wrapped in an ErrStage.
func (s *PipelineService) Run(ctx context.Context, cfg config.RunConfig) (*RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, err := cfg.StartTime()
	if err != nil {
		return nil, err
	}
	opts := cfg.ExposureOptions()

	rs := randstream.New(cfg.Seed)
	summary := &RunSummary{Seed: cfg.Seed, Rows: make(map[string]int)}
	s.Logger.Info("pipeline started",
		zap.Int64("seed", cfg.Seed),
		zap.Int("customers", cfg.Customers),
		zap.Int("campaigns", cfg.Campaigns),
		zap.Int("months", cfg.Months),
		zap.String("sampling_policy", string(opts.Policy)),
	)

	var customers []model.Customer
	if err := s.stage(ctx, summary, StageCustomers, model.TableCustomers, func() (*model.Table, error) {
		var err error
		customers, err = generator.GenerateCustomers(rs, cfg.Customers)
		return model.CustomersTable(customers), err
	}); err != nil {
		return nil, err
	}

	var campaigns []model.Campaign
	if err := s.stage(ctx, summary, StageCampaigns, model.TableCampaigns, func() (*model.Table, error) {
		var err error
		campaigns, err = generator.GenerateCampaigns(rs, cfg.Campaigns)
		return model.CampaignsTable(campaigns), err
	}); err != nil {
		return nil, err
	}

	if err := s.stage(ctx, summary, StageExposures, model.TableExposures, func() (*model.Table, error) {
		exposures, err := generator.SimulateExposures(rs, customers, campaigns, opts)
		return model.ExposuresTable(exposures), err
	}); err != nil {
		return nil, err
	}

	var accounts []model.Account
	if err := s.stage(ctx, summary, StageAccounts, model.TableAccounts, func() (*model.Table, error) {
		var err error
		accounts, err = generator.GenerateAccounts(rs, customers)
		return model.AccountsTable(accounts), err
	}); err != nil {
		return nil, err
	}

	var outcomes []model.MonthlyOutcome
	if err := s.stage(ctx, summary, StageMonthlyOutcomes, model.TableMonthlyOutcomes, func() (*model.Table, error) {
		var err error
		outcomes, err = generator.SimulateMonthlyOutcomes(rs, customers, accounts, start, cfg.Months)
		return model.MonthlyOutcomesTable(outcomes), err
	}); err != nil {
		return nil, err
	}

	if cfg.BuildFeatures {
		if err := s.stage(ctx, summary, StageFeatures, model.TableFeatures, func() (*model.Table, error) {
			return buildFeatureTable(model.CustomersTable(customers), model.AccountsTable(accounts), model.MonthlyOutcomesTable(outcomes))
		}); err != nil {
			return nil, err
		}
	}

	s.Logger.Info("pipeline finished", zap.Int64("seed", cfg.Seed), zap.Any("rows", summary.Rows))
	return summary, nil
}

// stage materializes one table, persists it and announces it.
func (s *PipelineService) stage(ctx context.Context, summary *RunSummary, name, table string, build func() (*model.Table, error)) error {
	if err := ctx.Err(); err != nil {
		return appErrors.NewStageError(name, table, err)
	}

	began := time.Now()
	t, err := build()
	if err == nil {
		err = s.Repo.Save(ctx, t)
	}
	if err != nil {
		s.Metrics.StageFailed(name)
		s.Logger.Error("stage failed", zap.String("stage", name), zap.String("table", table), zap.Error(err))
		return appErrors.NewStageError(name, table, err)
	}

	elapsed := time.Since(began)
	s.Metrics.ObserveStage(name, table, t.Len(), elapsed)
	summary.Rows[table] = t.Len()
	s.Logger.Info("table written",
		zap.String("stage", name),
		zap.String("table", table),
		zap.Int("rows", t.Len()),
		zap.Duration("elapsed", elapsed),
	)

	s.announce(queue.TableEvent{Table: table, Rows: t.Len(), Seed: summary.Seed})
	return nil
}

// announce publishes a table event. Delivery failures are logged and counted,
// not returned.
func (s *PipelineService) announce(ev queue.TableEvent) {
	if s.Queue == nil {
		return
	}
	if err := s.Queue.Publish(s.Topic, ev); err != nil {
		s.Metrics.EventPublished(false)
		s.Logger.Warn("failed to publish table event", zap.String("table", ev.Table), zap.Error(err))
		return
	}
	s.Metrics.EventPublished(true)
}
