package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/features"
	"github.com/unclebandit/creditsim/internal/metrics"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/repository"
)

// FeatureService rebuilds customer_month_features from tables already in storage.
type FeatureService struct {
	Repo    repository.TableRepositoryInterface
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// BuildFromStore loads customers, accounts and monthly_outcomes, derives the
// panel features and saves them. It returns the number of feature rows written.
func (s *FeatureService) BuildFromStore(ctx context.Context) (int, error) {
	began := time.Now()

	customers, err := s.Repo.Load(ctx, model.TableCustomers)
	if err != nil {
		return 0, s.fail(err)
	}
	accounts, err := s.Repo.Load(ctx, model.TableAccounts)
	if err != nil {
		return 0, s.fail(err)
	}
	outcomes, err := s.Repo.Load(ctx, model.TableMonthlyOutcomes)
	if err != nil {
		return 0, s.fail(err)
	}

	t, err := buildFeatureTable(customers, accounts, outcomes)
	if err == nil {
		err = s.Repo.Save(ctx, t)
	}
	if err != nil {
		return 0, s.fail(err)
	}

	s.Metrics.ObserveStage(StageFeatures, model.TableFeatures, t.Len(), time.Since(began))
	s.Logger.Info("features rebuilt from storage",
		zap.Int("customers", customers.Len()),
		zap.Int("panel_rows", outcomes.Len()),
		zap.Int("feature_rows", t.Len()),
	)
	return t.Len(), nil
}

// fail counts the failure and wraps it with the same stage context the
// pipeline uses.
func (s *FeatureService) fail(err error) error {
	s.Metrics.StageFailed(StageFeatures)
	return appErrors.NewStageError(StageFeatures, model.TableFeatures, err)
}

// buildFeatureTable derives features from the persisted form of the inputs,
// so in-process and worker builds see identical rounded values.
func buildFeatureTable(customersTable, accountsTable, outcomesTable *model.Table) (*model.Table, error) {
	customers, err := model.ParseCustomers(customersTable)
	if err != nil {
		return nil, err
	}
	accounts, err := model.ParseAccounts(accountsTable)
	if err != nil {
		return nil, err
	}
	outcomes, err := model.ParseMonthlyOutcomes(outcomesTable)
	if err != nil {
		return nil, err
	}
	rows, err := features.Build(customers, accounts, outcomes)
	if err != nil {
		return nil, err
	}
	return model.FeatureRowsTable(rows), nil
}
