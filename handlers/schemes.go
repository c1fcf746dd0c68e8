package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satheeshds/schemes/commission"
	"github.com/satheeshds/schemes/models"
)

const schemeSelectQuery = `SELECT id, name, description, commission_type, slab_basis, rate, start_date, end_date,
	status, created_at, updated_at FROM schemes`

const (
	targetArticle         = "article"
	targetCategory        = "category"
	targetDistributorType = "distributor_type"
)

func scanScheme(scanner interface{ Scan(...any) error }) (models.Scheme, error) {
	var s models.Scheme
	err := scanner.Scan(&s.ID, &s.Name, &s.Description, &s.CommissionType, &s.SlabBasis, &s.Rate,
		&s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// loadSchemeParts fills slabs and targets.
func loadSchemeParts(s *models.Scheme) error {
	s.Slabs = []models.Slab{}
	s.ArticleIDs, s.CategoryIDs, s.DistributorTypes = []string{}, []string{}, []string{}

	rows, err := query("SELECT id, min_value, max_value, rate FROM scheme_slabs WHERE scheme_id = ? ORDER BY min_value", s.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var slab models.Slab
		var upper decimal.NullDecimal
		if err := rows.Scan(&slab.ID, &slab.Min, &upper, &slab.Rate); err != nil {
			rows.Close()
			return err
		}
		if upper.Valid {
			slab.Max = &upper.Decimal
		}
		s.Slabs = append(s.Slabs, slab)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return err
	}

	rows, err = query("SELECT target_type, target_id FROM scheme_targets WHERE scheme_id = ? ORDER BY target_id", s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return err
		}
		switch kind {
		case targetArticle:
			s.ArticleIDs = append(s.ArticleIDs, id)
		case targetCategory:
			s.CategoryIDs = append(s.CategoryIDs, id)
		case targetDistributorType:
			s.DistributorTypes = append(s.DistributorTypes, id)
		}
	}
	return rows.Err()
}

func getScheme(id string) (models.Scheme, error) {
	s, err := scanScheme(queryRow(schemeSelectQuery+" WHERE id = ?", id))
	if err != nil {
		return s, err
	}
	return s, loadSchemeParts(&s)
}

// saveSchemeParts replaces slabs and targets of a scheme inside tx.
func saveSchemeParts(tx *sql.Tx, id string, in models.SchemeInput) error {
	if _, err := txExec(tx, "DELETE FROM scheme_slabs WHERE scheme_id = ?", id); err != nil {
		return err
	}
	if _, err := txExec(tx, "DELETE FROM scheme_targets WHERE scheme_id = ?", id); err != nil {
		return err
	}
	for _, slab := range in.Slabs {
		var upper any
		if slab.Max != nil {
			upper = *slab.Max
		}
		if _, err := txExec(tx, "INSERT INTO scheme_slabs (id, scheme_id, min_value, max_value, rate) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), id, slab.Min, upper, slab.Rate); err != nil {
			return err
		}
	}
	targets := map[string][]string{
		targetArticle:         in.ArticleIDs,
		targetCategory:        in.CategoryIDs,
		targetDistributorType: in.DistributorTypes,
	}
	for kind, ids := range targets {
		for _, t := range ids {
			if _, err := txExec(tx, "INSERT INTO scheme_targets (scheme_id, target_type, target_id) VALUES (?, ?, ?)",
				id, kind, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateTargets canonicalizes distributor type codes against reference data.
func validateTargets(in *models.SchemeInput) string {
	for i, code := range in.DistributorTypes {
		canonical, ok := Reference.DistributorType(code)
		if !ok {
			return "unknown distributor type " + code
		}
		in.DistributorTypes[i] = canonical
	}
	return ""
}

// ListSchemes lists all schemes
// @Summary      List schemes
// @Description  Get all schemes with their slabs and targets.
// @Tags         schemes
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft/active/closed)"
// @Success      200     {object}  Response{data=[]models.Scheme}
// @Router       /schemes [get]
// @Security     BasicAuth
func ListSchemes(w http.ResponseWriter, r *http.Request) {
	q := schemeSelectQuery
	var args []any
	if status := r.URL.Query().Get("status"); status != "" {
		q += " WHERE status = ?"
		args = append(args, status)
	}
	q += " ORDER BY start_date DESC, id"

	rows, err := query(q, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var schemes []models.Scheme
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			rows.Close()
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		schemes = append(schemes, s)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for i := range schemes {
		if err := loadSchemeParts(&schemes[i]); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if schemes == nil {
		schemes = []models.Scheme{}
	}
	writeJSON(w, http.StatusOK, schemes)
}

// GetScheme retrieves a single scheme by ID
// @Summary      Get scheme
// @Tags         schemes
// @Produce      json
// @Param        id   path      string  true  "Scheme ID"
// @Success      200  {object}  Response{data=models.Scheme}
// @Failure      404  {object}  Response{error=string}
// @Router       /schemes/{id} [get]
// @Security     BasicAuth
func GetScheme(w http.ResponseWriter, r *http.Request) {
	s, err := getScheme(chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "scheme not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateScheme creates a new scheme
// @Summary      Create scheme
// @Description  Create a scheme with optional slabs and article, category or distributor type targets.
// @Tags         schemes
// @Accept       json
// @Produce      json
// @Param        scheme  body      models.SchemeInput  true  "Scheme contents"
// @Success      201     {object}  Response{data=models.Scheme}
// @Failure      400     {object}  Response{error=string}
// @Router       /schemes [post]
// @Security     BasicAuth
func CreateScheme(w http.ResponseWriter, r *http.Request) {
	var input models.SchemeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateTargets(&input); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	var exists int
	queryRow("SELECT COUNT(*) FROM schemes WHERE id = ?", input.ID).Scan(&exists)
	if exists > 0 {
		writeError(w, http.StatusConflict, "scheme "+input.ID+" already exists")
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	if _, err := txExec(tx, `INSERT INTO schemes (id, name, description, commission_type, slab_basis, rate, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.ID, input.Name, input.Description, input.CommissionType, input.SlabBasis, input.Rate,
		input.StartDate, input.EndDate, input.Status); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := saveSchemeParts(tx, input.ID, input); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, _ := getScheme(input.ID)
	writeJSON(w, http.StatusCreated, s)
}

// UpdateScheme updates an existing scheme
// @Summary      Update scheme
// @Description  Replace a scheme's fields, slabs and targets.
// @Tags         schemes
// @Accept       json
// @Produce      json
// @Param        id      path      string              true  "Scheme ID"
// @Param        scheme  body      models.SchemeInput  true  "Updated scheme contents"
// @Success      200     {object}  Response{data=models.Scheme}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /schemes/{id} [put]
// @Security     BasicAuth
func UpdateScheme(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input models.SchemeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateTargets(&input); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	res, err := txExec(tx, `UPDATE schemes SET name = ?, description = ?, commission_type = ?, slab_basis = ?, rate = ?,
		start_date = ?, end_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.Description, input.CommissionType, input.SlabBasis, input.Rate,
		input.StartDate, input.EndDate, input.Status, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "scheme not found")
		return
	}
	if err := saveSchemeParts(tx, id, input); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, _ := getScheme(id)
	writeJSON(w, http.StatusOK, s)
}

// DeleteScheme deletes a scheme
// @Summary      Delete scheme
// @Description  Remove a scheme together with its slabs and targets.
// @Tags         schemes
// @Produce      json
// @Param        id   path      string  true  "Scheme ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /schemes/{id} [delete]
// @Security     BasicAuth
func DeleteScheme(w http.ResponseWriter, r *http.Request) {
	res, err := exec("DELETE FROM schemes WHERE id = ?", chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "scheme not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// schemeSales loads the billing rows that can fall inside the scheme period,
// joined with distributor and article data.
func schemeSales(s models.Scheme) ([]commission.Sale, error) {
	start, end, err := s.Period()
	if err != nil {
		return nil, err
	}
	cats, err := articleCategories()
	if err != nil {
		return nil, err
	}
	ref := Reference.WithArticleCategories(cats)

	rows, err := query(`SELECT s.distributor_id, COALESCE(d.name, ''), COALESCE(d.type, ''), s.article_id,
		COALESCE(s.billing_document, ''), s.upload_month, s.upload_year, s.billing_quantity, s.net_sales
		FROM sales_records s LEFT JOIN distributors d ON d.id = s.distributor_id
		WHERE s.upload_year BETWEEN ? AND ?`, start.Year(), end.Year())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []commission.Sale
	for rows.Next() {
		var sale commission.Sale
		var rec models.SalesRecord
		if err := rows.Scan(&sale.DistributorID, &sale.DistributorName, &sale.DistributorType, &sale.ArticleID,
			&sale.BillingDocument, &rec.UploadMonth, &rec.UploadYear, &sale.Quantity, &sale.Value); err != nil {
			return nil, err
		}
		sale.CategoryID = ref.CategoryOf(sale.ArticleID)
		sale.Period = rec.Period()
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

type schemeCalculation struct {
	SchemeID        string              `json:"scheme_id"`
	Details         []commission.Detail `json:"details"`
	TotalQuantity   decimal.Decimal     `json:"total_quantity"`
	TotalValue      decimal.Decimal     `json:"total_value"`
	TotalCommission decimal.Decimal     `json:"total_commission"`
}

type schemeSummary struct {
	SchemeID        string          `json:"scheme_id"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	commission.Summary
}

func calculate(w http.ResponseWriter, r *http.Request) ([]commission.Detail, string, bool) {
	id := chi.URLParam(r, "id")
	s, err := getScheme(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "scheme not found")
		return nil, id, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, id, false
	}
	sales, err := schemeSales(s)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, id, false
	}
	details := commission.Calculate(s, sales)
	slog.Debug("scheme calculated", "scheme", id, "sales", len(sales), "eligible", len(details))
	return details, id, true
}

// GetSchemeCalculations computes commission for every eligible billing row
// @Summary      Scheme calculations
// @Description  Per billing row commission for the scheme, with the slab and distributor totals used.
// @Tags         schemes
// @Produce      json
// @Param        id   path      string  true  "Scheme ID"
// @Success      200  {object}  Response{data=schemeCalculation}
// @Failure      404  {object}  Response{error=string}
// @Router       /schemes/{id}/calculations [get]
// @Security     BasicAuth
func GetSchemeCalculations(w http.ResponseWriter, r *http.Request) {
	details, id, ok := calculate(w, r)
	if !ok {
		return
	}
	out := schemeCalculation{SchemeID: id, Details: details}
	for _, d := range details {
		out.TotalQuantity = out.TotalQuantity.Add(d.Quantity)
		out.TotalValue = out.TotalValue.Add(d.Value)
		out.TotalCommission = out.TotalCommission.Add(d.Commission)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSchemeSummary aggregates a scheme's commission
// @Summary      Scheme summary
// @Description  Commission aggregated per distributor and article, and per distributor.
// @Tags         schemes
// @Produce      json
// @Param        id   path      string  true  "Scheme ID"
// @Success      200  {object}  Response{data=schemeSummary}
// @Failure      404  {object}  Response{error=string}
// @Router       /schemes/{id}/summary [get]
// @Security     BasicAuth
func GetSchemeSummary(w http.ResponseWriter, r *http.Request) {
	details, id, ok := calculate(w, r)
	if !ok {
		return
	}
	out := schemeSummary{SchemeID: id, Summary: commission.Summarize(details)}
	for _, d := range out.Distributors {
		out.TotalCommission = out.TotalCommission.Add(d.TotalCommission)
	}
	writeJSON(w, http.StatusOK, out)
}
