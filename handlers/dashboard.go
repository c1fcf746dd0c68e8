package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/schemes/uploads"
)

type dashboardData struct {
	TotalDistributors int `json:"total_distributors"`
	TotalCategories   int `json:"total_categories"`
	TotalArticles     int `json:"total_articles"`
	TotalSchemes      int `json:"total_schemes"`
	ActiveSchemes     int `json:"active_schemes"`
	TotalSalesRecords int `json:"total_sales_records"`
	TotalUploads      int `json:"total_uploads"`

	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalNetSales decimal.Decimal `json:"total_net_sales"`

	DistributorsByZone map[string]int  `json:"distributors_by_zone"`
	RecentUploads      []uploads.Batch `json:"recent_uploads"`
}

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get totals for distributors, catalog, schemes and uploaded sales, and the latest uploads.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=dashboardData}
// @Router       /dashboard [get]
// @Security     BasicAuth
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	var d dashboardData

	queryRow("SELECT COUNT(*) FROM distributors").Scan(&d.TotalDistributors)
	queryRow("SELECT COUNT(*) FROM categories").Scan(&d.TotalCategories)
	queryRow("SELECT COUNT(*) FROM articles").Scan(&d.TotalArticles)
	queryRow("SELECT COUNT(*) FROM schemes").Scan(&d.TotalSchemes)
	queryRow("SELECT COUNT(*) FROM schemes WHERE status = 'active'").Scan(&d.ActiveSchemes)
	queryRow("SELECT COUNT(*) FROM sales_records").Scan(&d.TotalSalesRecords)
	queryRow("SELECT COALESCE(SUM(billing_quantity), 0), COALESCE(SUM(net_sales), 0) FROM sales_records").
		Scan(&d.TotalQuantity, &d.TotalNetSales)
	d.TotalQuantity = d.TotalQuantity.Round(2)
	d.TotalNetSales = d.TotalNetSales.Round(2)

	d.DistributorsByZone = make(map[string]int, len(Reference.Zones))
	for _, z := range Reference.Zones {
		d.DistributorsByZone[z] = 0
	}
	rows, err := query("SELECT zone, COUNT(*) FROM distributors GROUP BY zone")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var zone string
			var n int
			rows.Scan(&zone, &n)
			d.DistributorsByZone[zone] = n
		}
	}

	// Latest 5 uploads
	d.RecentUploads = []uploads.Batch{}
	if batches, err := uploadBatches(); err == nil {
		d.TotalUploads = len(batches)
		if len(batches) > 5 {
			batches = batches[:5]
		}
		d.RecentUploads = batches
	}

	writeJSON(w, http.StatusOK, d)
}
