// internal/model/account.go
package model

import (
	"strconv"
	"time"
)

const (
	StatusActive = "ACTIVE"
	StatusClosed = "CLOSED"
)

type Account struct {
	ID             int       `db:"account_id" json:"account_id"`
	CustomerID     int       `db:"customer_id" json:"customer_id"`
	OpenDate       time.Time `db:"open_date" json:"open_date"`
	CreditLimit    float64   `db:"credit_limit" json:"credit_limit"`
	APR            float64   `db:"apr" json:"apr"`
	Utilization    float64   `db:"utilization" json:"utilization"`
	CurrentBalance float64   `db:"current_balance" json:"current_balance"`
	Status         string    `db:"status" json:"status"`
}

var AccountColumns = []string{"account_id", "customer_id", "open_date", "credit_limit", "apr", "utilization", "current_balance", "status"}

func (a Account) record() []string {
	return []string{
		strconv.Itoa(a.ID),
		strconv.Itoa(a.CustomerID),
		formatDate(a.OpenDate),
		formatMoney(a.CreditLimit),
		formatRate(a.APR),
		formatRate(a.Utilization),
		formatMoney(a.CurrentBalance),
		a.Status,
	}
}

func AccountsTable(accounts []Account) *Table {
	t := &Table{Name: TableAccounts, Columns: AccountColumns, Rows: make([][]string, len(accounts))}
	for i, a := range accounts {
		t.Rows[i] = a.record()
	}
	return t
}

func ParseAccounts(t *Table) ([]Account, error) {
	r, err := newRowReader(t, AccountColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Account, len(t.Rows))
	for i, row := range t.Rows {
		r.reset(row)
		out[i] = Account{
			ID:             r.int("account_id"),
			CustomerID:     r.int("customer_id"),
			OpenDate:       r.date("open_date"),
			CreditLimit:    r.float("credit_limit"),
			APR:            r.float("apr"),
			Utilization:    r.float("utilization"),
			CurrentBalance: r.float("current_balance"),
			Status:         r.str("status"),
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
