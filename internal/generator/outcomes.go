package generator

import (
	"math"
	"time"

	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
	"github.com/unclebandit/creditsim/internal/stats"
)

const DefaultMonths = 12

// DefaultStartMonth is the first month of the performance panel.
var DefaultStartMonth = AnchorDate

// extremeRiskLatent marks the tail of risk_latent that carries extra charge-off risk.
const extremeRiskLatent = 1.5

// SeasonalMultiplier scales the base spend level for a calendar month.
func SeasonalMultiplier(m time.Month) float64 {
	switch m {
	case time.November, time.December:
		return 1.18
	case time.January, time.February:
		return 0.95
	default:
		return 1.0
	}
}

// customerTraits are the static per-customer latent values shared by every month.
type customerTraits struct {
	riskNorm    float64
	riskLatent  float64
	baseSpend   float64
	extremeRisk float64
	account     model.Account
}

// SimulateMonthlyOutcomes produces months consecutive rows per customer,
// starting at the month containing start. Months are generated independently
// of each other: the only link between two months of one customer is the
// shared static traits and the initial account balance.
func SimulateMonthlyOutcomes(rs *randstream.Stream, customers []model.Customer, accounts []model.Account, start time.Time, months int) ([]model.MonthlyOutcome, error) {
	if err := requirePositive("months", months); err != nil {
		return nil, err
	}
	if err := requirePositive("customers", len(customers)); err != nil {
		return nil, err
	}
	byCustomer, err := accountsByCustomer(customers, accounts)
	if err != nil {
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

	n := len(customers)
	valueNoise := rs.Normals(n, 0, 0.5)
	riskNoise := rs.Normals(n, 0, 0.5)

	traits := make([]customerTraits, n)
	for i, c := range customers {
		rn := riskNorm(c.RiskScore)
		value := 0.4*income[i] + 0.2*tz[i] + 0.5*(rn-0.5) + valueNoise[i]
		risk := -0.3*income[i] - 0.1*tz[i] - 1.5*(rn-0.5) + riskNoise[i]
		acc := byCustomer[c.ID]

		t := customerTraits{
			riskNorm:   rn,
			riskLatent: risk,
			baseSpend:  math.Max(25, 400+250*value+0.03*acc.CreditLimit),
			account:    acc,
		}
		if risk > extremeRiskLatent {
			t.extremeRisk = 1
		}
		traits[i] = t
	}

	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.MonthlyOutcome, n*months)
	for m := 0; m < months; m++ {
		month := first.AddDate(0, m, 0)
		season := SeasonalMultiplier(month.Month())

		spendNoise := rs.Normals(n, 0, 1)
		payNoise := rs.Normals(n, 0, 0.05)

		pDQ := make([]float64, n)
		for i, c := range customers {
			t := traits[i]
			base := season * t.baseSpend
			spend := math.Max(0, base+0.2*base*spendNoise[i])
			pay := stats.Clamp(0.30+0.45*t.riskNorm-0.08*t.riskLatent+payNoise[i], 0.02, 1.0)
			revolve := stats.Clamp((0.7*t.account.CurrentBalance+0.3*spend)*(1-pay), 0, t.account.CreditLimit)
			pDQ[i] = stats.Sigmoid(-3.2 + 1.1*t.riskLatent + 1.5*t.account.Utilization)

			out[i*months+m] = model.MonthlyOutcome{
				CustomerID:     c.ID,
				Month:          month,
				Spend:          stats.Round(spend, 2),
				RevolveBalance: stats.Round(revolve, 2),
				PaymentRate:    stats.Round(pay, 4),
			}
		}
		for i := range customers {
			if out[i*months+m].DelinquencyFlag, err = rs.Bernoulli(pDQ[i]); err != nil {
				return nil, err
			}
		}
		for i := range customers {
			pCO := stats.Clamp(0.002+0.10*pDQ[i]+0.04*traits[i].extremeRisk, 0, 1)
			if out[i*months+m].ChargeoffProxy, err = rs.Bernoulli(pCO); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
