package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/satheeshds/schemes/db"
	"github.com/satheeshds/schemes/ingest"
	"github.com/satheeshds/schemes/models"
	"github.com/satheeshds/schemes/uploads"
)

const salesSelectQuery = `SELECT s.id, s.upload_month, s.upload_year, s.file_name, s.uploaded_at, s.month, s.day,
	s.distributor_id, s.article_id, s.billing_quantity, s.net_sales, s.billing_document, s.created_at,
	d.name as distributor_name
	FROM sales_records s LEFT JOIN distributors d ON d.id = s.distributor_id`

const defaultSalesLimit = 1000

func scanSalesRecord(scanner interface{ Scan(...any) error }) (models.SalesRecord, error) {
	var s models.SalesRecord
	var month, day, doc *string
	err := scanner.Scan(&s.ID, &s.UploadMonth, &s.UploadYear, &s.FileName, &s.UploadedAt, &month, &day,
		&s.DistributorID, &s.ArticleID, &s.BillingQuantity, &s.NetSales, &doc, &s.CreatedAt, &s.DistributorName)
	if month != nil {
		s.Month = *month
	}
	if day != nil {
		s.Day = *day
	}
	if doc != nil {
		s.BillingDocument = *doc
	}
	return s, err
}

// ListSales lists uploaded billing rows
// @Summary      List sales
// @Description  Get uploaded billing rows, newest upload first.
// @Tags         sales
// @Produce      json
// @Param        distributor_id  query     string  false  "Filter by distributor"
// @Param        article_id      query     string  false  "Filter by article"
// @Param        month           query     string  false  "Filter by upload month"
// @Param        year            query     int     false  "Filter by upload year"
// @Param        limit           query     int     false  "Maximum rows (default 1000)"
// @Success      200             {object}  Response{data=[]models.SalesRecord}
// @Failure      400             {object}  Response{error=string}
// @Router       /sales [get]
// @Security     BasicAuth
func ListSales(w http.ResponseWriter, r *http.Request) {
	q := salesSelectQuery
	var args []any
	var conditions []string

	if v := r.URL.Query().Get("distributor_id"); v != "" {
		conditions = append(conditions, "s.distributor_id = ?")
		args = append(args, v)
	}
	if v := r.URL.Query().Get("article_id"); v != "" {
		conditions = append(conditions, "s.article_id = ?")
		args = append(args, v)
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, ok := models.ParseMonth(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "month must be a month name or number")
			return
		}
		conditions = append(conditions, "s.upload_month = ?")
		args = append(args, m.String())
	}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		conditions = append(conditions, "s.upload_year = ?")
		args = append(args, y)
	}
	limit := defaultSalesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY s.uploaded_at DESC, s.distributor_id, s.article_id LIMIT ?"
	args = append(args, limit)

	rows, err := query(q, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var records []models.SalesRecord
	for rows.Next() {
		s, err := scanSalesRecord(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		records = append(records, s)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.SalesRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type salesUpload struct {
	*ingest.SalesReport
	Mode      string         `json:"mode"`
	Month     string         `json:"upload_month"`
	Year      int            `json:"upload_year"`
	FileName  string         `json:"file_name"`
	Persisted int            `json:"persisted"`
	Batch     *uploads.Batch `json:"batch,omitempty"`
}

// UploadSales loads billing data from a file
// @Summary      Upload sales
// @Description  Parse a CSV, XLSX or XLS billing file for the given month and year. With mode=apply the rows are stored as one upload batch.
// @Tags         sales
// @Accept       mpfd
// @Produce      json
// @Param        file   formData  file    true   "Billing file"
// @Param        month  query     string  true   "Upload month (name or 1-12)"
// @Param        year   query     int     true   "Upload year"
// @Param        mode   query     string  false  "dry_run (default) or apply"
// @Success      200    {object}  Response{data=salesUpload}
// @Failure      400    {object}  Response{error=string}
// @Failure      422    {object}  Response{error=string}
// @Router       /sales/upload [post]
// @Security     BasicAuth
func UploadSales(w http.ResponseWriter, r *http.Request) {
	mode, ok := importMode(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "mode must be dry_run or apply")
		return
	}
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	input := models.SalesUploadInput{Month: r.URL.Query().Get("month"), Year: year}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t, name, ok := readUpload(w, r)
	if !ok {
		return
	}
	rep, err := ingest.ValidateSales(t, MaxSalesRecords)
	if err != nil {
		writeIngestError(w, err)
		return
	}
	out := salesUpload{SalesReport: rep, Mode: mode, Month: input.Month, Year: input.Year, FileName: name}

	if mode == modeApply && len(rep.Records) > 0 {
		now := time.Now().UTC()
		records, err := insertSales(rep.Records, input, name, now)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Persisted = len(records)
		if batches := uploads.Group(records, now); len(batches) > 0 {
			out.Batch = &batches[0]
		}
	}

	slog.Info("sales upload", "file", name, "mode", mode, "month", input.Month, "year", input.Year,
		"total", rep.TotalCount, "skipped", rep.SkippedCount, "persisted", out.Persisted)
	writeJSON(w, http.StatusOK, out)
}

func insertSales(rows []ingest.SalesRecord, in models.SalesUploadInput, fileName string, now time.Time) ([]models.SalesRecord, error) {
	tx, err := DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.Rebind(`INSERT INTO sales_records (id, upload_month, upload_year, file_name, uploaded_at,
		month, day, distributor_id, article_id, billing_quantity, net_sales, billing_document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	records := make([]models.SalesRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.SalesRecord{
			ID:              uuid.NewString(),
			UploadMonth:     in.Month,
			UploadYear:      in.Year,
			FileName:        fileName,
			UploadedAt:      &now,
			Month:           row.Month,
			Day:             row.Day,
			DistributorID:   row.DistributorID,
			ArticleID:       row.ArticleID,
			BillingQuantity: row.BillingQuantity,
			NetSales:        row.NetSales,
			BillingDocument: row.BillingDocument,
		}
		if _, err := stmt.Exec(rec.ID, rec.UploadMonth, rec.UploadYear, rec.FileName, now, rec.Month, rec.Day,
			rec.DistributorID, rec.ArticleID, rec.BillingQuantity, rec.NetSales, rec.BillingDocument); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, tx.Commit()
}

// uploadBatches groups every stored sales row into its upload batch.
func uploadBatches() ([]uploads.Batch, error) {
	rows, err := query(`SELECT id, upload_month, upload_year, file_name, uploaded_at, distributor_id,
		billing_quantity, net_sales FROM sales_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SalesRecord
	for rows.Next() {
		var s models.SalesRecord
		if err := rows.Scan(&s.ID, &s.UploadMonth, &s.UploadYear, &s.FileName, &s.UploadedAt, &s.DistributorID,
			&s.BillingQuantity, &s.NetSales); err != nil {
			return nil, err
		}
		records = append(records, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return uploads.Group(records, time.Now()), nil
}

// ListSalesUploads lists upload batches
// @Summary      List sales uploads
// @Description  Uploaded billing rows grouped by month, year, file name and upload date, newest first.
// @Tags         sales
// @Produce      json
// @Success      200  {object}  Response{data=[]uploads.Batch}
// @Router       /sales/uploads [get]
// @Security     BasicAuth
func ListSalesUploads(w http.ResponseWriter, r *http.Request) {
	batches, err := uploadBatches()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

// DeleteSalesUpload deletes every row of an upload batch
// @Summary      Delete sales upload
// @Tags         sales
// @Produce      json
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  Response{data=map[string]any}
// @Failure      404  {object}  Response{error=string}
// @Router       /sales/uploads/{id} [delete]
// @Security     BasicAuth
func DeleteSalesUpload(w http.ResponseWriter, r *http.Request) {
	batches, err := uploadBatches()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	b, ok := uploads.Find(batches, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.Rebind("DELETE FROM sales_records WHERE id = ?"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer stmt.Close()
	for _, id := range b.RecordIDs {
		if _, err := stmt.Exec(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("sales upload deleted", "batch", b.ID, "file", b.FileName, "records", len(b.RecordIDs))
	writeJSON(w, http.StatusOK, map[string]any{"message": "deleted", "records": len(b.RecordIDs)})
}
