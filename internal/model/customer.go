// internal/model/customer.go
package model

import "strconv"

const (
	IncomeLow  = "LOW"
	IncomeMid  = "MID"
	IncomeHigh = "HIGH"
)

var IncomeBands = []string{IncomeLow, IncomeMid, IncomeHigh}

var Regions = []string{"SOUTH", "MIDWEST", "NORTHEAST", "WEST"}

type Customer struct {
	ID           int    `db:"customer_id" json:"customer_id"`
	Age          int    `db:"age" json:"age"`
	TenureMonths int    `db:"tenure_months" json:"tenure_months"`
	IncomeBand   string `db:"income_band" json:"income_band"`
	Region       string `db:"region" json:"region"`
	RiskScore    int    `db:"risk_score" json:"risk_score"`
}

var CustomerColumns = []string{"customer_id", "age", "tenure_months", "income_band", "region", "risk_score"}

func (c Customer) record() []string {
	return []string{
		strconv.Itoa(c.ID),
		strconv.Itoa(c.Age),
		strconv.Itoa(c.TenureMonths),
		c.IncomeBand,
		c.Region,
		strconv.Itoa(c.RiskScore),
	}
}

func CustomersTable(customers []Customer) *Table {
	t := &Table{Name: TableCustomers, Columns: CustomerColumns, Rows: make([][]string, len(customers))}
	for i, c := range customers {
		t.Rows[i] = c.record()
	}
	return t
}

func ParseCustomers(t *Table) ([]Customer, error) {
	r, err := newRowReader(t, CustomerColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, len(t.Rows))
	for i, row := range t.Rows {
		r.reset(row)
		out[i] = Customer{
			ID:           r.int("customer_id"),
			Age:          r.int("age"),
			TenureMonths: r.int("tenure_months"),
			IncomeBand:   r.str("income_band"),
			Region:       r.str("region"),
			RiskScore:    r.int("risk_score"),
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
