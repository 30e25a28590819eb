package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
)

func TestGenerateAccounts_OnePerCustomerInOrder(t *testing.T) {
	rs := randstream.New(42)
	customers, err := GenerateCustomers(rs, 3000)
	require.NoError(t, err)

	accounts, err := GenerateAccounts(rs, customers)
	require.NoError(t, err)
	require.Len(t, accounts, len(customers))

	active := 0
	for i, a := range accounts {
		c := customers[i]
		require.Equal(t, c.ID, a.CustomerID)
		require.Equal(t, i+1, a.ID)
		require.Equal(t, AnchorDate.AddDate(0, 0, -30*c.TenureMonths), a.OpenDate)

		require.GreaterOrEqual(t, a.APR, MinAPR)
		require.LessOrEqual(t, a.APR, MaxAPR)
		require.GreaterOrEqual(t, a.CreditLimit, MinCreditLimit)
		require.LessOrEqual(t, a.CreditLimit, MaxCreditLimit)
		require.GreaterOrEqual(t, a.Utilization, MinUtilization)
		require.LessOrEqual(t, a.Utilization, MaxUtilization)
		require.InDelta(t, a.CreditLimit*a.Utilization, a.CurrentBalance, 0.006)
		require.Contains(t, []string{model.StatusActive, model.StatusClosed}, a.Status)
		if a.Status == model.StatusActive {
			active++
		}
	}
	assert.InDelta(t, 0.96, float64(active)/float64(len(accounts)), 0.02)
}

func TestGenerateAccounts_RiskDirection(t *testing.T) {
	rs := randstream.New(11)
	customers, err := GenerateCustomers(rs, 5000)
	require.NoError(t, err)
	accounts, err := GenerateAccounts(rs, customers)
	require.NoError(t, err)

	score := make([]float64, len(customers))
	apr := make([]float64, len(customers))
	limit := make([]float64, len(customers))
	util := make([]float64, len(customers))
	for i := range customers {
		score[i] = float64(customers[i].RiskScore)
		apr[i] = accounts[i].APR
		limit[i] = accounts[i].CreditLimit
		util[i] = accounts[i].Utilization
	}

	// Lower score means riskier: higher APR, lower limit, higher utilization.
	assert.Less(t, stat.Correlation(score, apr, nil), -0.5)
	assert.Greater(t, stat.Correlation(score, limit, nil), 0.3)
	assert.Less(t, stat.Correlation(score, util, nil), -0.3)
}

func TestGenerateAccounts_IncomeScalesLimit(t *testing.T) {
	customers := make([]model.Customer, 0, 600)
	for i := 0; i < 200; i++ {
		for _, band := range model.IncomeBands {
			customers = append(customers, model.Customer{ID: len(customers) + 1, IncomeBand: band, RiskScore: 700, TenureMonths: i % 120})
		}
	}
	accounts, err := GenerateAccounts(randstream.New(3), customers)
	require.NoError(t, err)

	mean := map[string]float64{}
	for i, a := range accounts {
		mean[customers[i].IncomeBand] += a.CreditLimit / 200
	}
	assert.Less(t, mean[model.IncomeLow], mean[model.IncomeMid])
	assert.Less(t, mean[model.IncomeMid], mean[model.IncomeHigh])
}

func TestGenerateAccounts_UnknownIncomeBand(t *testing.T) {
	_, err := GenerateAccounts(randstream.New(1), []model.Customer{{ID: 1, IncomeBand: "UPPER", RiskScore: 600}})
	var target *appErrors.ErrSchema
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "income_band", target.Column)
}
