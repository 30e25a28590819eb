// Package features turns the customer-month performance panel into a
// supervised-learning table. Feature columns only read months strictly before
// the row's month; label columns only read months strictly after it.
package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/stats"
)

const (
	// LagWindow is the width of the trailing windows (spend_lag_3_avg, dq_rolling_3).
	LagWindow = 3
	// LabelWindow is the number of months summed into future_3mo_spend.
	LabelWindow = 3

	HighUtilThreshold = 0.80
)

// Build joins customers, accounts and monthly outcomes and derives the lag
// features and forward labels per customer. Rows without a full backward
// window or a full forward window are dropped, so with n months per customer
// rows LagWindow..n-LabelWindow-1 survive.
func Build(customers []model.Customer, accounts []model.Account, outcomes []model.MonthlyOutcome) ([]model.FeatureRow, error) {
	customerByID := make(map[int]model.Customer, len(customers))
	for _, c := range customers {
		if _, dup := customerByID[c.ID]; dup {
			return nil, appErrors.NewSchemaError(model.TableCustomers, "customer_id", "duplicate customer")
		}
		customerByID[c.ID] = c
	}
	accountByCustomer := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		if _, dup := accountByCustomer[a.CustomerID]; dup {
			return nil, appErrors.NewSchemaError(model.TableAccounts, "customer_id", "more than one account for a customer")
		}
		accountByCustomer[a.CustomerID] = a
	}

	panel := append([]model.MonthlyOutcome(nil), outcomes...)
	sort.SliceStable(panel, func(i, j int) bool {
		if panel[i].CustomerID != panel[j].CustomerID {
			return panel[i].CustomerID < panel[j].CustomerID
		}
		return panel[i].Month.Before(panel[j].Month)
	})

	var rows []model.FeatureRow
	for start := 0; start < len(panel); {
		end := start
		for end < len(panel) && panel[end].CustomerID == panel[start].CustomerID {
			end++
		}
		group := panel[start:end]
		start = end

		id := group[0].CustomerID
		c, ok := customerByID[id]
		if !ok {
			return nil, appErrors.NewSchemaError(model.TableMonthlyOutcomes, "customer_id", "outcome for unknown customer")
		}
		a, ok := accountByCustomer[id]
		if !ok {
			return nil, appErrors.NewSchemaError(model.TableAccounts, "customer_id", "customer without an account")
		}
		if err := checkConsecutive(group); err != nil {
			return nil, err
		}
		rows = append(rows, buildGroup(c, a, group)...)
	}
	return rows, nil
}

// buildGroup derives features for one customer's months, already in
// chronological order.
func buildGroup(c model.Customer, a model.Account, months []model.MonthlyOutcome) []model.FeatureRow {
	spend := make([]float64, len(months))
	dq := make([]float64, len(months))
	for i, m := range months {
		spend[i] = m.Spend
		dq[i] = float64(m.DelinquencyFlag)
	}

	highUtil := 0
	if a.Utilization > HighUtilThreshold {
		highUtil = 1
	}

	var rows []model.FeatureRow
	for t := LagWindow; t+LabelWindow < len(months); t++ {
		past := spend[t-LagWindow : t]
		future := spend[t+1 : t+1+LabelWindow]

		rows = append(rows, model.FeatureRow{
			Customer:            c,
			Account:             a,
			Outcome:             months[t],
			SpendLag1:           spend[t-1],
			SpendLag3Avg:        stats.Round(stats.Mean(past), 2),
			DQLag1:              months[t-1].DelinquencyFlag,
			DQRolling3:          stats.Round(stats.Mean(dq[t-LagWindow:t]), 4),
			HighUtilFlag:        highUtil,
			Future3MoSpend:      stats.Round(floats.Sum(future), 2),
			FutureChargeoffFlag: months[t+1].ChargeoffProxy,
		})
	}
	return rows
}

// checkConsecutive requires one row per calendar month with no gaps, since
// lags and labels are taken by position.
func checkConsecutive(months []model.MonthlyOutcome) error {
	for i := 1; i < len(months); i++ {
		prev, cur := months[i-1].Month, months[i].Month
		step := (cur.Year()-prev.Year())*12 + int(cur.Month()-prev.Month())
		switch {
		case step == 0:
			return appErrors.NewSchemaError(model.TableMonthlyOutcomes, "month",
				fmt.Sprintf("customer %d has more than one row for %s", months[i].CustomerID, cur.Format("2006-01")))
		case step != 1:
			return appErrors.NewSchemaError(model.TableMonthlyOutcomes, "month",
				fmt.Sprintf("customer %d has no row between %s and %s", months[i].CustomerID, prev.Format("2006-01"), cur.Format("2006-01")))
		}
	}
	return nil
}
