package generator

import (
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
	"github.com/unclebandit/creditsim/internal/stats"
)

var (
	offerWeights   = []float64{0.30, 0.20, 0.30, 0.20}
	channelWeights = []float64{0.55, 0.30, 0.15}
)

// GenerateCampaigns returns m weekly campaigns starting at AnchorDate, each
// running for seven days (end = start + 6).
func GenerateCampaigns(rs *randstream.Stream, m int) ([]model.Campaign, error) {
	if err := requirePositive("campaigns", m); err != nil {
		return nil, err
	}

	campaigns := make([]model.Campaign, m)
	for i := range campaigns {
		start := AnchorDate.AddDate(0, 0, 7*i)
		campaigns[i] = model.Campaign{
			ID:        i + 1,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 6),
		}
	}
	for i := range campaigns {
		campaigns[i].OfferType = model.OfferTypes[rs.Choice(offerWeights)]
	}
	for i := range campaigns {
		campaigns[i].Channel = model.Channels[rs.Choice(channelWeights)]
	}
	for i := range campaigns {
		campaigns[i].CostPerContact = stats.Round(rs.Uniform(0.02, 0.18), 3)
	}
	return campaigns, nil
}
