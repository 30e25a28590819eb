// Package generator holds the simulation model: each Generate/Simulate function
// consumes previously produced tables plus the shared random stream and
// returns a brand-new table. Nothing here keeps state between calls.
package generator

import (
	"time"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/stats"
)

const (
	minRiskScore = 300
	maxRiskScore = 850
)

// AnchorDate is the first campaign start and the reference date accounts are
// opened back from.
var AnchorDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var incomeEffect = map[string]float64{
	model.IncomeLow:  -0.7,
	model.IncomeMid:  0.0,
	model.IncomeHigh: 0.8,
}

func incomeEffects(customers []model.Customer) ([]float64, error) {
	out := make([]float64, len(customers))
	for i, c := range customers {
		v, ok := incomeEffect[c.IncomeBand]
		if !ok {
			return nil, appErrors.NewSchemaError(model.TableCustomers, "income_band", "unknown band "+c.IncomeBand)
		}
		out[i] = v
	}
	return out, nil
}

// tenureZ standardizes tenure over the given population, so the result is
// relative to whoever was generated in this run.
func tenureZ(customers []model.Customer) ([]float64, error) {
	tenure := make([]int, len(customers))
	for i, c := range customers {
		tenure[i] = c.TenureMonths
	}
	return stats.StandardizeInts("tenure_months", tenure)
}

func riskNorm(score int) float64 {
	return float64(score-minRiskScore) / float64(maxRiskScore-minRiskScore)
}

func requirePositive(field string, v int) error {
	if v <= 0 {
		return appErrors.NewConfigError(field, v, "must be positive")
	}
	return nil
}

// accountsByCustomer indexes accounts by customer and checks every customer has exactly one.
func accountsByCustomer(customers []model.Customer, accounts []model.Account) (map[int]model.Account, error) {
	byCustomer := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		if _, dup := byCustomer[a.CustomerID]; dup {
			return nil, appErrors.NewSchemaError(model.TableAccounts, "customer_id", "more than one account for a customer")
		}
		byCustomer[a.CustomerID] = a
	}
	for _, c := range customers {
		if _, ok := byCustomer[c.ID]; !ok {
			return nil, appErrors.NewSchemaError(model.TableAccounts, "customer_id", "customer without an account")
		}
	}
	return byCustomer, nil
}
