// internal/service/stats_service.go
package service

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/repository"
	"github.com/unclebandit/creditsim/internal/stats"
)

// StatsService answers read queries over persisted tables.
type StatsService struct {
	Repo repository.TableRepositoryInterface
}

// TableInfo describes one persisted table
type TableInfo struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// ArmStats is the exposure funnel of one experiment arm
type ArmStats struct {
	Exposures      int     `json:"exposures"`
	Opened         int     `json:"opened"`
	Converted      int     `json:"converted"`
	OptOuts        int     `json:"opt_outs"`
	OpenRate       float64 `json:"open_rate"`
	ConversionRate float64 `json:"conversion_rate"`
	OptOutRate     float64 `json:"opt_out_rate"`
}

type CampaignDetails struct {
	ID             int       `json:"id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	OfferType      string    `json:"offer_type"`
	Channel        string    `json:"channel"`
	CostPerContact float64   `json:"cost_per_contact"`
	Exposures      int       `json:"exposures"`
	Treatment      ArmStats  `json:"treatment"`
	Control        ArmStats  `json:"control"`
	OpenRateLift   float64   `json:"open_rate_lift"`
	TotalCost      float64   `json:"total_cost"`
}

// ListTables returns the tables present in storage, in generation order.
func (s *StatsService) ListTables(ctx context.Context) ([]TableInfo, error) {
	var out []TableInfo
	for _, name := range model.TableNames {
		t, err := s.Repo.Load(ctx, name)
		if err != nil {
			var nf *appErrors.ErrTableNotFound
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}
		out = append(out, TableInfo{Name: name, Rows: t.Len(), Columns: t.Columns})
	}
	return out, nil
}

// GetTable loads one persisted table by name.
func (s *StatsService) GetTable(ctx context.Context, name string) (*model.Table, error) {
	if !model.IsKnownTable(name) {
		return nil, appErrors.NewTableNotFound(name)
	}
	return s.Repo.Load(ctx, name)
}

// GetCampaignDetailsWithStats returns the campaign with its exposure funnel
// split by treatment and control arm.
func (s *StatsService) GetCampaignDetailsWithStats(ctx context.Context, campaignID int) (*CampaignDetails, error) {
	t, err := s.Repo.Load(ctx, model.TableCampaigns)
	if err != nil {
		return nil, err
	}
	campaigns, err := model.ParseCampaigns(t)
	if err != nil {
		return nil, err
	}

	var campaign *model.Campaign
	for i := range campaigns {
		if campaigns[i].ID == campaignID {
			campaign = &campaigns[i]
			break
		}
	}
	if campaign == nil {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}

	t, err = s.Repo.Load(ctx, model.TableExposures)
	if err != nil {
		return nil, err
	}
	exposures, err := model.ParseExposures(t)
	if err != nil {
		return nil, err
	}

	var treatment, control ArmStats
	for _, e := range exposures {
		if e.CampaignID != campaignID {
			continue
		}
		arm := &control
		if e.Treatment == 1 {
			arm = &treatment
		}
		arm.Exposures++
		arm.Opened += e.Opened
		arm.Converted += e.Converted
		arm.OptOuts += e.OptOut
	}
	treatment.computeRates()
	control.computeRates()

	exposed := treatment.Exposures + control.Exposures
	return &CampaignDetails{
		ID:             campaign.ID,
		StartDate:      campaign.StartDate,
		EndDate:        campaign.EndDate,
		OfferType:      campaign.OfferType,
		Channel:        campaign.Channel,
		CostPerContact: campaign.CostPerContact,
		Exposures:      exposed,
		Treatment:      treatment,
		Control:        control,
		OpenRateLift:   stats.Round(treatment.OpenRate-control.OpenRate, 4),
		TotalCost:      stats.Round(float64(exposed)*campaign.CostPerContact, 2),
	}, nil
}

func (a *ArmStats) computeRates() {
	if a.Exposures == 0 {
		return
	}
	n := float64(a.Exposures)
	a.OpenRate = stats.Round(float64(a.Opened)/n, 4)
	a.ConversionRate = stats.Round(float64(a.Converted)/n, 4)
	a.OptOutRate = stats.Round(float64(a.OptOuts)/n, 4)
}
