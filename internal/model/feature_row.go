// internal/model/feature_row.go
package model

import "strconv"

// FeatureRow is one (customer, month) row of the modeling panel. The joined
// entities are carried as-is; the lag fields only look at earlier months and
// the Future* labels only at later months.
type FeatureRow struct {
	Customer Customer
	Account  Account
	Outcome  MonthlyOutcome

	SpendLag1           float64 `json:"spend_lag_1"`
	SpendLag3Avg        float64 `json:"spend_lag_3_avg"`
	DQLag1              int     `json:"dq_lag_1"`
	DQRolling3          float64 `json:"dq_rolling_3"`
	HighUtilFlag        int     `json:"high_util_flag"`
	Future3MoSpend      float64 `json:"future_3mo_spend"`
	FutureChargeoffFlag int     `json:"future_chargeoff_flag"`
}

var FeatureColumns = []string{"spend_lag_1", "spend_lag_3_avg", "dq_lag_1", "dq_rolling_3", "high_util_flag"}

var LabelColumns = []string{"future_3mo_spend", "future_chargeoff_flag"}

// FeatureRowColumns is the persisted header of customer_month_features.
var FeatureRowColumns = func() []string {
	cols := append([]string{}, CustomerColumns...)
	for _, c := range AccountColumns {
		if c != "customer_id" {
			cols = append(cols, c)
		}
	}
	for _, c := range MonthlyOutcomeColumns {
		if c != "customer_id" {
			cols = append(cols, c)
		}
	}
	cols = append(cols, FeatureColumns...)
	return append(cols, LabelColumns...)
}()

func (f FeatureRow) record() []string {
	rec := f.Customer.record()
	acc := f.Account.record()
	rec = append(rec, acc[0])
	rec = append(rec, acc[2:]...)
	rec = append(rec, f.Outcome.record()[1:]...)
	return append(rec,
		formatMoney(f.SpendLag1),
		formatMoney(f.SpendLag3Avg),
		strconv.Itoa(f.DQLag1),
		formatRate(f.DQRolling3),
		strconv.Itoa(f.HighUtilFlag),
		formatMoney(f.Future3MoSpend),
		strconv.Itoa(f.FutureChargeoffFlag),
	)
}

func FeatureRowsTable(rows []FeatureRow) *Table {
	t := &Table{Name: TableFeatures, Columns: FeatureRowColumns, Rows: make([][]string, len(rows))}
	for i, f := range rows {
		t.Rows[i] = f.record()
	}
	return t
}
