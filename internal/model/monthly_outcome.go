// internal/model/monthly_outcome.go
package model

import (
	"strconv"
	"time"
)

// MonthlyOutcome is one customer's account performance for one calendar month.
// Month is always the first day of the month.
type MonthlyOutcome struct {
	CustomerID      int       `db:"customer_id" json:"customer_id"`
	Month           time.Time `db:"month" json:"month"`
	Spend           float64   `db:"spend" json:"spend"`
	RevolveBalance  float64   `db:"revolve_balance" json:"revolve_balance"`
	PaymentRate     float64   `db:"payment_rate" json:"payment_rate"`
	DelinquencyFlag int       `db:"delinquency_flag" json:"delinquency_flag"`
	ChargeoffProxy  int       `db:"chargeoff_proxy" json:"chargeoff_proxy"`
}

var MonthlyOutcomeColumns = []string{"customer_id", "month", "spend", "revolve_balance", "payment_rate", "delinquency_flag", "chargeoff_proxy"}

func (m MonthlyOutcome) record() []string {
	return []string{
		strconv.Itoa(m.CustomerID),
		formatDate(m.Month),
		formatMoney(m.Spend),
		formatMoney(m.RevolveBalance),
		formatRate(m.PaymentRate),
		strconv.Itoa(m.DelinquencyFlag),
		strconv.Itoa(m.ChargeoffProxy),
	}
}

func MonthlyOutcomesTable(outcomes []MonthlyOutcome) *Table {
	t := &Table{Name: TableMonthlyOutcomes, Columns: MonthlyOutcomeColumns, Rows: make([][]string, len(outcomes))}
	for i, m := range outcomes {
		t.Rows[i] = m.record()
	}
	return t
}

func ParseMonthlyOutcomes(t *Table) ([]MonthlyOutcome, error) {
	r, err := newRowReader(t, MonthlyOutcomeColumns)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyOutcome, len(t.Rows))
	for i, row := range t.Rows {
		r.reset(row)
		out[i] = MonthlyOutcome{
			CustomerID:      r.int("customer_id"),
			Month:           r.date("month"),
			Spend:           r.float("spend"),
			RevolveBalance:  r.float("revolve_balance"),
			PaymentRate:     r.float("payment_rate"),
			DelinquencyFlag: r.int("delinquency_flag"),
			ChargeoffProxy:  r.int("chargeoff_proxy"),
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
