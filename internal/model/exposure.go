// internal/model/exposure.go
package model

import (
	"strconv"
	"time"
)

// Exposure is one customer contacted by one campaign and the funnel outcome.
type Exposure struct {
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	CustomerID int       `db:"customer_id" json:"customer_id"`
	SendDate   time.Time `db:"send_date" json:"send_date"`
	Treatment  int       `db:"treatment" json:"treatment"`
	Opened     int       `db:"opened" json:"opened"`
	Converted  int       `db:"converted" json:"converted"`
	OptOut     int       `db:"opt_out" json:"opt_out"`
}

var ExposureColumns = []string{"campaign_id", "customer_id", "send_date", "treatment", "opened", "converted", "opt_out"}

func (e Exposure) record() []string {
	return []string{
		strconv.Itoa(e.CampaignID),
		strconv.Itoa(e.CustomerID),
		formatDate(e.SendDate),
		strconv.Itoa(e.Treatment),
		strconv.Itoa(e.Opened),
		strconv.Itoa(e.Converted),
		strconv.Itoa(e.OptOut),
	}
}

func ExposuresTable(exposures []Exposure) *Table {
	t := &Table{Name: TableExposures, Columns: ExposureColumns, Rows: make([][]string, len(exposures))}
	for i, e := range exposures {
		t.Rows[i] = e.record()
	}
	return t
}

func ParseExposures(t *Table) ([]Exposure, error) {
	r, err := newRowReader(t, ExposureColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Exposure, len(t.Rows))
	for i, row := range t.Rows {
		r.reset(row)
		out[i] = Exposure{
			CampaignID: r.int("campaign_id"),
			CustomerID: r.int("customer_id"),
			SendDate:   r.date("send_date"),
			Treatment:  r.int("treatment"),
			Opened:     r.int("opened"),
			Converted:  r.int("converted"),
			OptOut:     r.int("opt_out"),
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
