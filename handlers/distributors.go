package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/schemes/db"
	"github.com/satheeshds/schemes/ingest"
	"github.com/satheeshds/schemes/models"
)

const distributorSelectQuery = `SELECT d.id, d.name, d.type, d.zone, d.state, d.created_at, d.updated_at,
	(SELECT COUNT(*) FROM sales_records s WHERE s.distributor_id = d.id) as sales_count,
	COALESCE((SELECT SUM(s.net_sales) FROM sales_records s WHERE s.distributor_id = d.id), 0) as net_sales
	FROM distributors d`

const distributorUpsert = `INSERT INTO distributors (id, name, type, zone, state) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET name = excluded.name, type = excluded.type, zone = excluded.zone,
	state = excluded.state, updated_at = CURRENT_TIMESTAMP`

func scanDistributor(scanner interface{ Scan(...any) error }) (models.Distributor, error) {
	var d models.Distributor
	err := scanner.Scan(&d.ID, &d.Name, &d.Type, &d.Zone, &d.State, &d.CreatedAt, &d.UpdatedAt, &d.SalesCount, &d.NetSales)
	d.NetSales = d.NetSales.Round(2)
	return d, err
}

func getDistributor(id string) (models.Distributor, error) {
	return scanDistributor(queryRow(distributorSelectQuery+" WHERE d.id = ?", id))
}

// ListDistributors lists all distributors
// @Summary      List distributors
// @Description  Get distributors with their uploaded sales totals.
// @Tags         distributors
// @Produce      json
// @Param        zone    query     string  false  "Filter by zone"
// @Param        state   query     string  false  "Filter by state"
// @Param        type    query     string  false  "Filter by distributor type code"
// @Param        search  query     string  false  "Search by id or name"
// @Success      200    {object}  Response{data=[]models.Distributor}
// @Router       /distributors [get]
// @Security     BasicAuth
func ListDistributors(w http.ResponseWriter, r *http.Request) {
	q := distributorSelectQuery
	var args []any
	var conditions []string

	for _, f := range []string{"zone", "state", "type"} {
		if v := r.URL.Query().Get(f); v != "" {
			conditions = append(conditions, "LOWER(d."+f+") = LOWER(?)")
			args = append(args, v)
		}
	}
	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(LOWER(d.id) LIKE LOWER(?) OR LOWER(d.name) LIKE LOWER(?))")
		s := "%" + search + "%"
		args = append(args, s, s)
	}

	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY d.id"

	rows, err := query(q, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var distributors []models.Distributor
	for rows.Next() {
		d, err := scanDistributor(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		distributors = append(distributors, d)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if distributors == nil {
		distributors = []models.Distributor{}
	}
	writeJSON(w, http.StatusOK, distributors)
}

// GetDistributor retrieves a single distributor by ID
// @Summary      Get distributor
// @Description  Get a distributor and its uploaded sales totals.
// @Tags         distributors
// @Produce      json
// @Param        id   path      string  true  "Distributor ID"
// @Success      200  {object}  Response{data=models.Distributor}
// @Failure      404  {object}  Response{error=string}
// @Router       /distributors/{id} [get]
// @Security     BasicAuth
func GetDistributor(w http.ResponseWriter, r *http.Request) {
	d, err := getDistributor(chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "distributor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CreateDistributor creates a new distributor
// @Summary      Create distributor
// @Description  Create a distributor. Type, zone and state are checked against reference data.
// @Tags         distributors
// @Accept       json
// @Produce      json
// @Param        distributor  body      models.DistributorInput  true  "Distributor contents"
// @Success      201          {object}  Response{data=models.Distributor}
// @Failure      400          {object}  Response{error=string}
// @Failure      409          {object}  Response{error=string}
// @Router       /distributors [post]
// @Security     BasicAuth
func CreateDistributor(w http.ResponseWriter, r *http.Request) {
	var input models.DistributorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(Reference); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var exists int
	queryRow("SELECT COUNT(*) FROM distributors WHERE id = ?", input.ID).Scan(&exists)
	if exists > 0 {
		writeError(w, http.StatusConflict, "distributor "+input.ID+" already exists")
		return
	}

	_, err := exec("INSERT INTO distributors (id, name, type, zone, state) VALUES (?, ?, ?, ?, ?)",
		input.ID, input.Name, input.Type, input.Zone, input.State)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	d, _ := getDistributor(input.ID)
	writeJSON(w, http.StatusCreated, d)
}

// UpdateDistributor updates an existing distributor
// @Summary      Update distributor
// @Description  Update name, type, zone and state of a distributor.
// @Tags         distributors
// @Accept       json
// @Produce      json
// @Param        id           path      string                   true  "Distributor ID"
// @Param        distributor  body      models.DistributorInput  true  "Updated distributor contents"
// @Success      200          {object}  Response{data=models.Distributor}
// @Failure      400          {object}  Response{error=string}
// @Failure      404          {object}  Response{error=string}
// @Router       /distributors/{id} [put]
// @Security     BasicAuth
func UpdateDistributor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input models.DistributorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	input.ID = id
	if msg := input.Validate(Reference); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := exec("UPDATE distributors SET name = ?, type = ?, zone = ?, state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		input.Name, input.Type, input.Zone, input.State, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "distributor not found")
		return
	}

	d, _ := getDistributor(id)
	writeJSON(w, http.StatusOK, d)
}

// DeleteDistributor deletes a distributor
// @Summary      Delete distributor
// @Description  Remove a distributor. Uploaded sales rows are kept.
// @Tags         distributors
// @Produce      json
// @Param        id   path      string  true  "Distributor ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /distributors/{id} [delete]
// @Security     BasicAuth
func DeleteDistributor(w http.ResponseWriter, r *http.Request) {
	res, err := exec("DELETE FROM distributors WHERE id = ?", chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "distributor not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

type distributorImport struct {
	*ingest.DistributorReport
	Mode      string `json:"mode"`
	Persisted int    `json:"persisted"`
}

// ImportDistributors bulk-loads distributors from a file
// @Summary      Import distributors
// @Description  Validate a CSV, XLSX or XLS distributor file. With mode=apply the error-free rows are upserted.
// @Tags         distributors
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file    true   "Distributor file"
// @Param        mode  query     string  false  "dry_run (default) or apply"
// @Success      200   {object}  Response{data=distributorImport}
// @Failure      400   {object}  Response{error=string}
// @Failure      422   {object}  Response{error=string}
// @Router       /distributors/import [post]
// @Security     BasicAuth
func ImportDistributors(w http.ResponseWriter, r *http.Request) {
	mode, ok := importMode(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "mode must be dry_run or apply")
		return
	}
	t, name, ok := readUpload(w, r)
	if !ok {
		return
	}

	rep, err := ingest.ValidateDistributors(t, Reference)
	if err != nil {
		writeIngestError(w, err)
		return
	}
	out := distributorImport{DistributorReport: rep, Mode: mode}

	if mode == modeApply {
		valid := rep.ValidRecords()
		if err := upsertDistributors(valid); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Persisted = len(valid)
	}

	slog.Info("distributor import", "file", name, "mode", mode,
		"total", rep.TotalCount, "valid", rep.ValidCount, "invalid", rep.InvalidCount, "persisted", out.Persisted)
	writeJSON(w, http.StatusOK, out)
}

func upsertDistributors(records []ingest.DistributorRecord) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.Rebind(distributorUpsert))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.ID, rec.Name, rec.Type, rec.Zone, rec.State); err != nil {
			return err
		}
	}
	return tx.Commit()
}
