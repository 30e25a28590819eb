// internal/model/table.go
package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
)

// Persisted table names.
const (
	TableCustomers       = "customers"
	TableCampaigns       = "campaigns"
	TableExposures       = "campaign_exposures"
	TableAccounts        = "accounts"
	TableMonthlyOutcomes = "monthly_outcomes"
	TableFeatures        = "customer_month_features"
)

// TableNames lists every table in generation order.
var TableNames = []string{
	TableCustomers,
	TableCampaigns,
	TableExposures,
	TableAccounts,
	TableMonthlyOutcomes,
	TableFeatures,
}

// IsKnownTable reports whether name is one of TableNames.
func IsKnownTable(name string) bool {
	for _, n := range TableNames {
		if n == name {
			return true
		}
	}
	return false
}

const dateLayout = "2006-01-02"

// Table is the storage-facing form of every entity: a header plus text rows
// already formatted with the persisted precision.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func formatMoney(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }
func formatRate(v float64) string  { return decimal.NewFromFloat(v).StringFixed(4) }
func formatCost(v float64) string  { return decimal.NewFromFloat(v).StringFixed(3) }
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// rowReader decodes one row by column name. The first failure sticks and
// later reads return zero values, so callers check err once per row.
type rowReader struct {
	table string
	index map[string]int
	row   []string
	err   error
}

func newRowReader(t *Table, required []string) (*rowReader, error) {
	index := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		index[c] = i
	}
	for _, c := range required {
		if _, ok := index[c]; !ok {
			return nil, appErrors.NewSchemaError(t.Name, c, "missing column")
		}
	}
	return &rowReader{table: t.Name, index: index}, nil
}

func (r *rowReader) reset(row []string) {
	r.row = row
}

func (r *rowReader) str(col string) string {
	if r.err != nil {
		return ""
	}
	i := r.index[col]
	if i >= len(r.row) {
		r.err = appErrors.NewSchemaError(r.table, col, "short row")
		return ""
	}
	return r.row[i]
}

func (r *rowReader) int(col string) int {
	s := r.str(col)
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.err = appErrors.NewSchemaError(r.table, col, "not an integer: "+s)
	}
	return v
}

func (r *rowReader) float(col string) float64 {
	s := r.str(col)
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = appErrors.NewSchemaError(r.table, col, "not a number: "+s)
	}
	return v
}

func (r *rowReader) date(col string) time.Time {
	s := r.str(col)
	if r.err != nil {
		return time.Time{}
	}
	v, err := time.Parse(dateLayout, s)
	if err != nil {
		r.err = appErrors.NewSchemaError(r.table, col, "not a date: "+s)
	}
	return v
}
