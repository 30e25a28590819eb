package generator

import (
	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
	"github.com/unclebandit/creditsim/internal/stats"
)

// Account bounds, applied before rounding.
const (
	MinAPR         = 0.12
	MaxAPR         = 0.40
	MinCreditLimit = 500.0
	MaxCreditLimit = 25000.0
	MinUtilization = 0.0
	MaxUtilization = 0.99

	activeRate = 0.96
)

var limitMultiplier = map[string]float64{
	model.IncomeLow:  0.7,
	model.IncomeMid:  1.0,
	model.IncomeHigh: 1.5,
}

// GenerateAccounts opens exactly one account per customer, in customer order.
// A higher risk_score (safer customer) gets a lower APR, a higher limit and a
// lower utilization.
func GenerateAccounts(rs *randstream.Stream, customers []model.Customer) ([]model.Account, error) {
	if err := requirePositive("customers", len(customers)); err != nil {
		return nil, err
	}
	n := len(customers)

	aprNoise := rs.Normals(n, 0, 0.015)
	limitNoise := rs.Normals(n, 0, 750)
	utilNoise := rs.Normals(n, 0, 0.10)

	accounts := make([]model.Account, n)
	for i, c := range customers {
		mult, ok := limitMultiplier[c.IncomeBand]
		if !ok {
			return nil, appErrors.NewSchemaError(model.TableCustomers, "income_band", "unknown band "+c.IncomeBand)
		}
		rn := riskNorm(c.RiskScore)

		apr := stats.Clamp(0.38-0.22*rn+aprNoise[i], MinAPR, MaxAPR)
		limit := stats.Clamp(mult*(2000+14000*rn)+limitNoise[i], MinCreditLimit, MaxCreditLimit)
		util := stats.Clamp(0.75-0.55*rn+utilNoise[i], MinUtilization, MaxUtilization)

		limit = stats.Round(limit, 2)
		util = stats.Round(util, 4)
		accounts[i] = model.Account{
			ID:             i + 1,
			CustomerID:     c.ID,
			OpenDate:       AnchorDate.AddDate(0, 0, -30*c.TenureMonths),
			CreditLimit:    limit,
			APR:            stats.Round(apr, 4),
			Utilization:    util,
			CurrentBalance: stats.Round(limit*util, 2),
		}
	}
	for i := range accounts {
		accounts[i].Status = model.StatusClosed
		if rs.Float64() < activeRate {
			accounts[i].Status = model.StatusActive
		}
	}
	return accounts, nil
}
