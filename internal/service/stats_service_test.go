package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/service"
)

func seedCampaign(t *testing.T) *MockTableRepo {
	t.Helper()
	ctx := context.Background()
	repo := NewMockTableRepo()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, model.CampaignsTable([]model.Campaign{
		{ID: 1, StartDate: start, EndDate: start.AddDate(0, 0, 28), OfferType: model.OfferCLI, Channel: model.ChannelEmail, CostPerContact: 0.25},
		{ID: 2, StartDate: start, EndDate: start.AddDate(0, 0, 14), OfferType: model.OfferCashback, Channel: model.ChannelSMS, CostPerContact: 0.1},
	})))
	require.NoError(t, repo.Save(ctx, model.ExposuresTable([]model.Exposure{
		{CampaignID: 1, CustomerID: 1, SendDate: start, Treatment: 1, Opened: 1, Converted: 1},
		{CampaignID: 1, CustomerID: 2, SendDate: start, Treatment: 1, Opened: 1},
		{CampaignID: 1, CustomerID: 3, SendDate: start, Treatment: 1, Opened: 0},
		{CampaignID: 1, CustomerID: 4, SendDate: start, Treatment: 1, Opened: 0, OptOut: 1},
		{CampaignID: 1, CustomerID: 5, SendDate: start, Treatment: 0, Opened: 1},
		{CampaignID: 1, CustomerID: 6, SendDate: start, Treatment: 0, Opened: 0},
		{CampaignID: 2, CustomerID: 1, SendDate: start, Treatment: 1, Opened: 1},
	})))
	return repo
}

func TestStatsService_CampaignFunnel(t *testing.T) {
	svc := &service.StatsService{Repo: seedCampaign(t)}

	details, err := svc.GetCampaignDetailsWithStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, model.OfferCLI, details.OfferType)
	assert.Equal(t, 6, details.Exposures)
	assert.Equal(t, service.ArmStats{
		Exposures: 4, Opened: 2, Converted: 1, OptOuts: 1,
		OpenRate: 0.5, ConversionRate: 0.25, OptOutRate: 0.25,
	}, details.Treatment)
	assert.Equal(t, 2, details.Control.Exposures)
	assert.Equal(t, 0.5, details.Control.OpenRate)
	assert.Equal(t, 0.0, details.OpenRateLift)
	assert.Equal(t, 1.5, details.TotalCost)
}

func TestStatsService_EmptyArm(t *testing.T) {
	svc := &service.StatsService{Repo: seedCampaign(t)}

	details, err := svc.GetCampaignDetailsWithStats(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, details.Control.Exposures)
	assert.Equal(t, 0.0, details.Control.OpenRate)
	assert.Equal(t, 1.0, details.OpenRateLift)
}

func TestStatsService_UnknownCampaign(t *testing.T) {
	svc := &service.StatsService{Repo: seedCampaign(t)}

	_, err := svc.GetCampaignDetailsWithStats(context.Background(), 99)
	var nf *appErrors.ErrCampaignNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 99, nf.ID)
}

func TestStatsService_ListTables(t *testing.T) {
	svc := &service.StatsService{Repo: seedCampaign(t)}

	tables, err := svc.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, model.TableCampaigns, tables[0].Name)
	assert.Equal(t, 2, tables[0].Rows)
	assert.Equal(t, model.TableExposures, tables[1].Name)
	assert.Equal(t, 7, tables[1].Rows)
}

func TestStatsService_GetTable(t *testing.T) {
	svc := &service.StatsService{Repo: seedCampaign(t)}

	_, err := svc.GetTable(context.Background(), "../etc/passwd")
	var nf *appErrors.ErrTableNotFound
	assert.True(t, errors.As(err, &nf))

	tbl, err := svc.GetTable(context.Background(), model.TableCampaigns)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignColumns, tbl.Columns)
}
