package generator

import (
	"fmt"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
	"github.com/unclebandit/creditsim/internal/stats"
)

// SamplingPolicy decides what happens when a campaign's exposure count cannot
// be drawn without replacement from the population.
type SamplingPolicy string

const (
	// SamplingFail returns an ErrSampling when the drawn count exceeds the population.
	SamplingFail SamplingPolicy = "fail"
	// SamplingClamp caps the exposure range at the population size.
	SamplingClamp SamplingPolicy = "clamp"
)

type ExposureOptions struct {
	Min    int
	Max    int
	Policy SamplingPolicy
}

func DefaultExposureOptions() ExposureOptions {
	return ExposureOptions{Min: 3000, Max: 9000, Policy: SamplingFail}
}

func (o ExposureOptions) Validate() error {
	if o.Min <= 0 {
		return appErrors.NewConfigError("exposure_min", o.Min, "must be positive")
	}
	if o.Max < o.Min {
		return appErrors.NewConfigError("exposure_max", o.Max, fmt.Sprintf("must be >= exposure_min (%d)", o.Min))
	}
	switch o.Policy {
	case SamplingFail, SamplingClamp:
		return nil
	default:
		return appErrors.NewConfigError("sampling_policy", o.Policy, "must be fail or clamp")
	}
}

// bounds returns the inclusive exposure-count range for a population of size n.
func (o ExposureOptions) bounds(n int) (int, int) {
	lo, hi := o.Min, o.Max
	if o.Policy == SamplingClamp {
		lo, hi = min(lo, n), min(hi, n)
	}
	return lo, hi
}

const (
	openOffset    = 0.3
	openCap       = 0.85
	treatmentLift = 0.02
	convertRate   = 0.20
	optOutRate    = 0.01
)

var offerBoost = map[string]float64{
	model.OfferAPRPromo:  0.08,
	model.OfferCLI:       0.04,
	model.OfferCashback:  0.06,
	model.OfferBNPLPromo: 0.05,
}

var channelBoost = map[string]float64{
	model.ChannelEmail: 0.02,
	model.ChannelApp:   0.03,
	model.ChannelSMS:   0.01,
}

// SimulateExposures targets a random subset of customers for every campaign
// and simulates the open / convert / opt-out funnel. Propensity is drawn once
// for the whole population, independently of the risk latent, so the two are
// only related through income and tenure.
func SimulateExposures(rs *randstream.Stream, customers []model.Customer, campaigns []model.Campaign, opts ExposureOptions) ([]model.Exposure, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := requirePositive("customers", len(customers)); err != nil {
		return nil, err
	}

	income, err := incomeEffects(customers)
	if err != nil {
		return nil, err
	}
	tz, err := tenureZ(customers)
	if err != nil {
		return nil, err
	}
	noise := rs.Normals(len(customers), 0, 0.8)
	propensity := make([]float64, len(customers))
	for i := range customers {
		propensity[i] = 0.3*income[i] + 0.2*tz[i] + noise[i]
	}

	var exposures []model.Exposure
	for _, c := range campaigns {
		rows, err := exposeCampaign(rs, customers, propensity, c, opts)
		if err != nil {
			return nil, fmt.Errorf("campaign %d: %w", c.ID, err)
		}
		exposures = append(exposures, rows...)
	}
	return exposures, nil
}

func exposeCampaign(rs *randstream.Stream, customers []model.Customer, propensity []float64, c model.Campaign, opts ExposureOptions) ([]model.Exposure, error) {
	offer, ok := offerBoost[c.OfferType]
	if !ok {
		return nil, appErrors.NewSchemaError(model.TableCampaigns, "offer_type", "unknown offer "+c.OfferType)
	}
	channel, ok := channelBoost[c.Channel]
	if !ok {
		return nil, appErrors.NewSchemaError(model.TableCampaigns, "channel", "unknown channel "+c.Channel)
	}

	lo, hi := opts.bounds(len(customers))
	n := rs.IntRange(lo, hi+1)
	if n > len(customers) {
		return nil, appErrors.NewSamplingError(n, len(customers))
	}
	picked, err := rs.SampleWithoutReplacement(len(customers), n)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Exposure, n)
	for i, idx := range picked {
		rows[i] = model.Exposure{CampaignID: c.ID, CustomerID: customers[idx].ID}
	}
	for i := range rows {
		if rows[i].Treatment, err = rs.Bernoulli(0.5); err != nil {
			return nil, err
		}
	}
	for i, idx := range picked {
		base := stats.Sigmoid(propensity[idx] - openOffset)
		p := stats.Clamp(base+offer+channel+float64(rows[i].Treatment)*treatmentLift, 0, openCap)
		if rows[i].Opened, err = rs.Bernoulli(p); err != nil {
			return nil, err
		}
	}
	for i := range rows {
		if rows[i].Converted, err = rs.Bernoulli(convertRate * float64(rows[i].Opened)); err != nil {
			return nil, err
		}
	}
	pOptOut := optOutRate
	if c.Channel == model.ChannelSMS {
		pOptOut *= 2
	}
	for i := range rows {
		if rows[i].OptOut, err = rs.Bernoulli(pOptOut); err != nil {
			return nil, err
		}
	}
	for i := range rows {
		rows[i].SendDate = c.StartDate.AddDate(0, 0, rs.IntRange(0, 7))
	}
	return rows, nil
}
