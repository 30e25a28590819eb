package features_test

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/features"
	"github.com/unclebandit/creditsim/internal/generator"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
)

type panel struct {
	customers []model.Customer
	accounts  []model.Account
	outcomes  []model.MonthlyOutcome
}

func simulate(t *testing.T, seed int64, customers, months int) panel {
	t.Helper()
	rs := randstream.New(seed)
	cs, err := generator.GenerateCustomers(rs, customers)
	require.NoError(t, err)
	as, err := generator.GenerateAccounts(rs, cs)
	require.NoError(t, err)
	outs, err := generator.SimulateMonthlyOutcomes(rs, cs, as, generator.DefaultStartMonth, months)
	require.NoError(t, err)
	return panel{customers: cs, accounts: as, outcomes: outs}
}

func monthIndex(m time.Time) int {
	start := generator.DefaultStartMonth
	return (m.Year()-start.Year())*12 + int(m.Month()-start.Month())
}

func TestBuild_TrimsEdgesPerCustomer(t *testing.T) {
	p := simulate(t, 42, 50, 12)

	rows, err := features.Build(p.customers, p.accounts, p.outcomes)
	require.NoError(t, err)
	require.Len(t, rows, 50*6)

	perCustomer := map[int][]int{}
	for _, r := range rows {
		perCustomer[r.Customer.ID] = append(perCustomer[r.Customer.ID], monthIndex(r.Outcome.Month))
	}
	require.Len(t, perCustomer, 50)
	for id, months := range perCustomer {
		assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, months, "customer %d", id)
	}
}

func TestBuild_ShortPanelHasNoRows(t *testing.T) {
	p := simulate(t, 42, 20, 3)
	rows, err := features.Build(p.customers, p.accounts, p.outcomes)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuild_LeakageBoundary(t *testing.T) {
	p := simulate(t, 7, 30, 12)
	rows, err := features.Build(p.customers, p.accounts, p.outcomes)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for _, r := range rows {
		var before, after []model.MonthlyOutcome
		for _, o := range p.outcomes {
			if o.CustomerID != r.Customer.ID {
				continue
			}
			switch {
			case o.Month.Before(r.Outcome.Month):
				before = append(before, o)
			case o.Month.After(r.Outcome.Month):
				after = append(after, o)
			}
		}

		// Outcomes are emitted in chronological order per customer.
		prev := before[len(before)-1]
		assert.Equal(t, prev.Spend, r.SpendLag1)
		assert.Equal(t, prev.DelinquencyFlag, r.DQLag1)

		last3 := before[len(before)-3:]
		assert.InDelta(t, (last3[0].Spend+last3[1].Spend+last3[2].Spend)/3, r.SpendLag3Avg, 0.006)

		next3 := after[:3]
		assert.InDelta(t, next3[0].Spend+next3[1].Spend+next3[2].Spend, r.Future3MoSpend, 0.006)
		assert.Equal(t, after[0].ChargeoffProxy, r.FutureChargeoffFlag)
	}
}

func TestBuild_IgnoresCurrentMonthOutcome(t *testing.T) {
	p := simulate(t, 3, 5, 12)
	base, err := features.Build(p.customers, p.accounts, p.outcomes)
	require.NoError(t, err)

	// Perturb month index 5 of the first customer; the row for that month must
	// keep its features and labels.
	mutated := append([]model.MonthlyOutcome(nil), p.outcomes...)
	mutated[5].Spend += 10000
	mutated[5].DelinquencyFlag = 1 - mutated[5].DelinquencyFlag
	mutated[5].ChargeoffProxy = 1 - mutated[5].ChargeoffProxy

	got, err := features.Build(p.customers, p.accounts, mutated)
	require.NoError(t, err)
	require.Len(t, got, len(base))

	for i := range base {
		if base[i].Customer.ID != p.customers[0].ID || monthIndex(base[i].Outcome.Month) != 5 {
			continue
		}
		assert.Equal(t, base[i].SpendLag1, got[i].SpendLag1)
		assert.Equal(t, base[i].SpendLag3Avg, got[i].SpendLag3Avg)
		assert.Equal(t, base[i].DQLag1, got[i].DQLag1)
		assert.Equal(t, base[i].DQRolling3, got[i].DQRolling3)
		assert.Equal(t, base[i].Future3MoSpend, got[i].Future3MoSpend)
		assert.Equal(t, base[i].FutureChargeoffFlag, got[i].FutureChargeoffFlag)
	}
}

func TestBuild_SortsBeforeWindowing(t *testing.T) {
	p := simulate(t, 9, 25, 12)
	want, err := features.Build(p.customers, p.accounts, p.outcomes)
	require.NoError(t, err)

	shuffled := append([]model.MonthlyOutcome(nil), p.outcomes...)
	r := rand.New(rand.NewPCG(1, 2))
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got, err := features.Build(p.customers, p.accounts, shuffled)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuild_HighUtilFlag(t *testing.T) {
	p := simulate(t, 4, 200, 8)
	rows, err := features.Build(p.customers, p.accounts, p.outcomes)
	require.NoError(t, err)
	for _, r := range rows {
		want := 0
		if r.Account.Utilization > features.HighUtilThreshold {
			want = 1
		}
		require.Equal(t, want, r.HighUtilFlag)
	}
}

func TestBuild_MissingAccount(t *testing.T) {
	p := simulate(t, 1, 10, 12)
	_, err := features.Build(p.customers, p.accounts[1:], p.outcomes)
	var target *appErrors.ErrSchema
	require.True(t, errors.As(err, &target), "got %v", err)
	assert.Equal(t, model.TableAccounts, target.Table)
}

func TestBuild_UnknownCustomer(t *testing.T) {
	p := simulate(t, 1, 10, 12)
	_, err := features.Build(p.customers[1:], p.accounts, p.outcomes)
	var target *appErrors.ErrSchema
	require.True(t, errors.As(err, &target), "got %v", err)
	assert.Equal(t, model.TableMonthlyOutcomes, target.Table)
}

func TestBuild_DuplicateMonth(t *testing.T) {
	p := simulate(t, 5, 10, 12)
	outcomes := append(append([]model.MonthlyOutcome(nil), p.outcomes...), p.outcomes[5])

	rows, err := features.Build(p.customers, p.accounts, outcomes)
	var target *appErrors.ErrSchema
	require.True(t, errors.As(err, &target), "got %v", err)
	assert.Equal(t, model.TableMonthlyOutcomes, target.Table)
	assert.Equal(t, "month", target.Column)
	assert.Nil(t, rows)
}

func TestBuild_MissingMonth(t *testing.T) {
	p := simulate(t, 5, 10, 12)
	outcomes := append([]model.MonthlyOutcome(nil), p.outcomes[:5]...)
	outcomes = append(outcomes, p.outcomes[6:]...)

	rows, err := features.Build(p.customers, p.accounts, outcomes)
	var target *appErrors.ErrSchema
	require.True(t, errors.As(err, &target), "got %v", err)
	assert.Equal(t, model.TableMonthlyOutcomes, target.Table)
	assert.Equal(t, "month", target.Column)
	assert.Nil(t, rows)
}
