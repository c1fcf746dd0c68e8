package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxSalesRecords caps the number of data rows in one sales upload.
const MaxSalesRecords = 100000

// SalesFields lists the columns of a billing-data upload.
var SalesFields = []Field{
	{Name: "month", Label: "Month", Variations: []string{"Month", "Billing Month"}},
	{Name: "day", Label: "Day", Variations: []string{"Day", "Billing Day", "Date"}},
	{Name: "distributorId", Label: "Distributor ID", Required: true,
		Variations: []string{"Distributor ID", "Distributor Code", "Customer", "Customer Code", "Sold To Party"}},
	{Name: "articleId", Label: "Article ID", Required: true,
		Variations: []string{"Article ID", "Article Code", "Article", "Material", "Material Code"}},
	{Name: "billingQuantity", Label: "Billing Quantity", Required: true,
		Variations: []string{"Billing Quantity", "Billing Qty", "Quantity", "Qty"}},
	{Name: "netSales", Label: "Net Sales", Required: true,
		Variations: []string{"Net Sales", "Net Value", "Net Amount", "Sales Value"}},
	{Name: "billingDocument", Label: "Billing Document", Variations: []string{"Billing Document", "Billing Doc", "Invoice Number", "Invoice No"}},
}

// SalesRecord is one billing row of an upload.
type SalesRecord struct {
	Month           string          `json:"month"`
	Day             string          `json:"day"`
	DistributorID   string          `json:"distributor_id"`
	ArticleID       string          `json:"article_id"`
	BillingQuantity decimal.Decimal `json:"billing_quantity"`
	NetSales        decimal.Decimal `json:"net_sales"`
	BillingDocument string          `json:"billing_document"`
	Row             int             `json:"row"`
}

// SalesReport summarizes a parsed sales upload.
type SalesReport struct {
	Records          []SalesRecord   `json:"records"`
	Warnings         []string        `json:"warnings"`
	TotalCount       int             `json:"total_count"`
	SkippedCount     int             `json:"skipped_count"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	TotalNetSales    decimal.Decimal `json:"total_net_sales"`
	DistributorCount int             `json:"distributor_count"`
}

// ValidateSales maps billing rows. The size limit is checked before any
// header or row work; a non-positive limit means MaxSalesRecords.
func ValidateSales(t *Table, limit int) (*SalesReport, error) {
	if limit <= 0 {
		limit = MaxSalesRecords
	}
	if len(t.Rows) > limit {
		return nil, &SizeLimitError{Count: len(t.Rows), Limit: limit}
	}

	m, err := MapHeaders(t.Headers, SalesFields)
	if err != nil {
		return nil, err
	}

	rep := &SalesReport{
		Records:  make([]SalesRecord, 0, len(t.Rows)),
		Warnings: []string{},
	}
	distributors := make(map[string]struct{})

	for i, row := range t.Rows {
		rec := SalesRecord{
			Month:           m.Cell(row, "month"),
			Day:             m.Cell(row, "day"),
			DistributorID:   m.Cell(row, "distributorId"),
			ArticleID:       m.Cell(row, "articleId"),
			BillingDocument: m.Cell(row, "billingDocument"),
			Row:             i + RowOffset,
		}
		if rec.DistributorID == "" || rec.ArticleID == "" {
			rep.Warnings = append(rep.Warnings, rowMessage(i, "Distributor ID and Article ID are required; row skipped"))
			rep.SkippedCount++
			continue
		}

		var warn string
		rec.BillingQuantity, warn = parseAmount(m.Cell(row, "billingQuantity"), "Billing Quantity")
		if warn != "" {
			rep.Warnings = append(rep.Warnings, rowMessage(i, warn))
		}
		if rec.BillingQuantity.IsNegative() {
			rep.Warnings = append(rep.Warnings, rowMessage(i, fmt.Sprintf("Billing Quantity %s is negative; recorded as 0", rec.BillingQuantity)))
			rec.BillingQuantity = decimal.Zero
		}
		rec.NetSales, warn = parseAmount(m.Cell(row, "netSales"), "Net Sales")
		if warn != "" {
			rep.Warnings = append(rep.Warnings, rowMessage(i, warn))
		}

		rep.TotalQuantity = rep.TotalQuantity.Add(rec.BillingQuantity)
		rep.TotalNetSales = rep.TotalNetSales.Add(rec.NetSales)
		distributors[rec.DistributorID] = struct{}{}
		rep.Records = append(rep.Records, rec)
	}

	rep.TotalCount = len(rep.Records)
	rep.DistributorCount = len(distributors)
	return rep, nil
}

var amountReplacer = strings.NewReplacer(",", "", "₹", "", "$", "", "Rs.", "", "INR", "", " ", "")

// parseAmount reads a numeric cell. Empty cells are zero; cells that do not
// parse are zero and produce a warning so the coercion is visible.
func parseAmount(s, label string) (decimal.Decimal, string) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == "-" {
		return decimal.Zero, ""
	}
	cleaned := amountReplacer.Replace(raw)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.Trim(cleaned, "()")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("%s %q is not a number; recorded as 0", label, raw)
	}
	return d, ""
}
