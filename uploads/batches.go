// Package uploads reconstructs upload batches from stored sales records.
package uploads

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satheeshds/schemes/models"
)

const (
	UnknownMonth    = "Unknown"
	DefaultFileName = "sales_data.csv"
)

// Batch is one logical upload: all records sharing month, year, file name
// and upload date.
type Batch struct {
	ID               string          `json:"id"`
	Month            string          `json:"month"`
	Year             int             `json:"year"`
	FileName         string          `json:"file_name"`
	UploadDate       string          `json:"upload_date"`
	UploadedAt       time.Time       `json:"uploaded_at"`
	RecordCount      int             `json:"record_count"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	TotalNetSales    decimal.Decimal `json:"total_net_sales"`
	DistributorCount int             `json:"distributor_count"`
	RecordIDs        []string        `json:"-"`
}

// BatchID derives the stable id of a batch from its grouping key.
func BatchID(month string, year int, fileName, date string) string {
	key := month + "|" + strconv.Itoa(year) + "|" + fileName + "|" + date
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("sales-upload:"+key)).String()
}

// Group buckets records into batches. Missing metadata falls back to
// UnknownMonth, now's year, DefaultFileName and now. Batches are ordered
// newest first, then by id.
func Group(records []models.SalesRecord, now time.Time) []Batch {
	now = now.UTC()
	index := make(map[string]int)
	distributors := make(map[string]map[string]struct{})
	out := []Batch{}

	for _, r := range records {
		month := r.UploadMonth
		if month == "" {
			month = UnknownMonth
		}
		year := r.UploadYear
		if year == 0 {
			year = now.Year()
		}
		file := r.FileName
		if file == "" {
			file = DefaultFileName
		}
		at := now
		if r.UploadedAt != nil && !r.UploadedAt.IsZero() {
			at = r.UploadedAt.UTC()
		}
		date := at.Format(models.DateLayout)

		id := BatchID(month, year, file, date)
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			distributors[id] = make(map[string]struct{})
			out = append(out, Batch{
				ID:         id,
				Month:      month,
				Year:       year,
				FileName:   file,
				UploadDate: date,
				UploadedAt: at,
			})
		}
		b := &out[i]
		if at.Before(b.UploadedAt) {
			b.UploadedAt = at
		}
		b.RecordCount++
		b.TotalQuantity = b.TotalQuantity.Add(r.BillingQuantity)
		b.TotalNetSales = b.TotalNetSales.Add(r.NetSales)
		b.RecordIDs = append(b.RecordIDs, r.ID)
		if r.DistributorID != "" {
			distributors[id][r.DistributorID] = struct{}{}
		}
	}

	for i := range out {
		out[i].DistributorCount = len(distributors[out[i].ID])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Find returns the batch with the given id.
func Find(batches []Batch, id string) (Batch, bool) {
	for _, b := range batches {
		if b.ID == id {
			return b, true
		}
	}
	return Batch{}, false
}
