package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one stored billing row together with its upload metadata.
type SalesRecord struct {
	ID              string          `json:"id"`
	UploadMonth     string          `json:"upload_month"`
	UploadYear      int             `json:"upload_year"`
	FileName        string          `json:"file_name"`
	UploadedAt      *time.Time      `json:"uploaded_at"`
	Month           string          `json:"month"`
	Day             string          `json:"day"`
	DistributorID   string          `json:"distributor_id"`
	ArticleID       string          `json:"article_id"`
	BillingQuantity decimal.Decimal `json:"billing_quantity"`
	NetSales        decimal.Decimal `json:"net_sales"`
	BillingDocument string          `json:"billing_document"`
	CreatedAt       time.Time       `json:"created_at"`
	// Computed fields
	DistributorName *string `json:"distributor_name,omitempty"`
}

// SalesUploadInput carries the upload metadata sent alongside a sales file.
type SalesUploadInput struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

func (s *SalesUploadInput) Validate() string {
	if s.Month == "" {
		return "month is required"
	}
	m, ok := ParseMonth(s.Month)
	if !ok {
		return "month must be a month name or number"
	}
	s.Month = m.String()
	if s.Year < 2000 || s.Year > 2100 {
		return "year must be between 2000 and 2100"
	}
	return ""
}

// ParseMonth accepts full or abbreviated English month names and numbers 1-12.
func ParseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(name, s) || strings.EqualFold(name[:3], s) {
			return m, true
		}
	}
	return 0, false
}

// Period is the first day of the record's upload month, zero when the month
// or year is unknown.
func (s SalesRecord) Period() time.Time {
	m, ok := ParseMonth(s.UploadMonth)
	if !ok || s.UploadYear == 0 {
		return time.Time{}
	}
	return time.Date(s.UploadYear, m, 1, 0, 0, 0, 0, time.UTC)
}
