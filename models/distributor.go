package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/schemes/ingest"
	"github.com/satheeshds/schemes/reference"
)

// Distributor is a member of the distributor network.
type Distributor struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Zone       string          `json:"zone"`
	State      string          `json:"state"`
	SalesCount int             `json:"sales_count"` // Computed: uploaded billing rows
	NetSales   decimal.Decimal `json:"net_sales"`   // Computed: sum of net sales
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DistributorInput is used for creating/updating distributors.
type DistributorInput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Zone  string `json:"zone"`
	State string `json:"state"`
}

// Validate applies the same rules as a bulk upload row and rewrites type,
// zone and state to their canonical spelling.
func (d *DistributorInput) Validate(ref *reference.Data) string {
	rec := ingest.DistributorRecord{
		ID:    strings.TrimSpace(d.ID),
		Name:  strings.TrimSpace(d.Name),
		Type:  strings.TrimSpace(d.Type),
		Zone:  strings.TrimSpace(d.Zone),
		State: strings.TrimSpace(d.State),
	}
	if errs := ingest.CheckDistributor(&rec, ref); len(errs) > 0 {
		return strings.Join(errs, "; ")
	}
	d.ID, d.Name, d.Type, d.Zone, d.State = rec.ID, rec.Name, rec.Type, rec.Zone, rec.State
	return ""
}
