// internal/model/campaign.go
package model

import (
	"strconv"
	"time"
)

const (
	OfferAPRPromo  = "APR_PROMO"
	OfferCLI       = "CLI"
	OfferCashback  = "CASHBACK"
	OfferBNPLPromo = "BNPL_PROMO"
)

var OfferTypes = []string{OfferAPRPromo, OfferCLI, OfferCashback, OfferBNPLPromo}

const (
	ChannelEmail = "EMAIL"
	ChannelApp   = "APP"
	ChannelSMS   = "SMS"
)

var Channels = []string{ChannelEmail, ChannelApp, ChannelSMS}

type Campaign struct {
	ID             int       `db:"campaign_id" json:"campaign_id"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	OfferType      string    `db:"offer_type" json:"offer_type"`
	Channel        string    `db:"channel" json:"channel"`
	CostPerContact float64   `db:"cost_per_contact" json:"cost_per_contact"`
}

var CampaignColumns = []string{"campaign_id", "start_date", "end_date", "offer_type", "channel", "cost_per_contact"}

func (c Campaign) record() []string {
	return []string{
		strconv.Itoa(c.ID),
		formatDate(c.StartDate),
		formatDate(c.EndDate),
		c.OfferType,
		c.Channel,
		formatCost(c.CostPerContact),
	}
}

func CampaignsTable(campaigns []Campaign) *Table {
	t := &Table{Name: TableCampaigns, Columns: CampaignColumns, Rows: make([][]string, len(campaigns))}
	for i, c := range campaigns {
		t.Rows[i] = c.record()
	}
	return t
}

func ParseCampaigns(t *Table) ([]Campaign, error) {
	r, err := newRowReader(t, CampaignColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Campaign, len(t.Rows))
	for i, row := range t.Rows {
		r.reset(row)
		out[i] = Campaign{
			ID:             r.int("campaign_id"),
			StartDate:      r.date("start_date"),
			EndDate:        r.date("end_date"),
			OfferType:      r.str("offer_type"),
			Channel:        r.str("channel"),
			CostPerContact: r.float("cost_per_contact"),
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
