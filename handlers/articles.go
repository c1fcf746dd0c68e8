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

const articleSelectQuery = `SELECT a.id, a.name, a.category_id, a.created_at, a.updated_at, c.name as category_name
	FROM articles a LEFT JOIN categories c ON a.category_id = c.id`

const articleUpsert = `INSERT INTO articles (id, name, category_id) VALUES (?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET name = excluded.name, category_id = excluded.category_id,
	updated_at = CURRENT_TIMESTAMP`

func scanArticle(scanner interface{ Scan(...any) error }) (models.Article, error) {
	var a models.Article
	err := scanner.Scan(&a.ID, &a.Name, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt, &a.CategoryName)
	return a, err
}

func getArticle(id string) (models.Article, error) {
	return scanArticle(queryRow(articleSelectQuery+" WHERE a.id = ?", id))
}

// checkCategory reports whether the referenced category exists.
func checkCategory(id *string) bool {
	if id == nil {
		return true
	}
	var n int
	queryRow("SELECT COUNT(*) FROM categories WHERE id = ?", *id).Scan(&n)
	return n > 0
}

// ListArticles lists all articles
// @Summary      List articles
// @Description  Get the article catalog.
// @Tags         articles
// @Produce      json
// @Param        category_id  query     string  false  "Filter by category"
// @Param        search       query     string  false  "Search by id or name"
// @Success      200          {object}  Response{data=[]models.Article}
// @Router       /articles [get]
// @Security     BasicAuth
func ListArticles(w http.ResponseWriter, r *http.Request) {
	q := articleSelectQuery
	var args []any
	var conditions []string

	if c := r.URL.Query().Get("category_id"); c != "" {
		conditions = append(conditions, "a.category_id = ?")
		args = append(args, c)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(LOWER(a.id) LIKE LOWER(?) OR LOWER(a.name) LIKE LOWER(?))")
		s := "%" + search + "%"
		args = append(args, s, s)
	}
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY a.id"

	rows, err := query(q, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// GetArticle retrieves a single article by ID
// @Summary      Get article
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  Response{data=models.Article}
// @Failure      404  {object}  Response{error=string}
// @Router       /articles/{id} [get]
// @Security     BasicAuth
func GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := getArticle(chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateArticle creates a new article
// @Summary      Create article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        article  body      models.ArticleInput  true  "Article contents"
// @Success      201      {object}  Response{data=models.Article}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /articles [post]
// @Security     BasicAuth
func CreateArticle(w http.ResponseWriter, r *http.Request) {
	var input models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !checkCategory(input.CategoryID) {
		writeError(w, http.StatusBadRequest, "category not found")
		return
	}

	var exists int
	queryRow("SELECT COUNT(*) FROM articles WHERE id = ?", input.ID).Scan(&exists)
	if exists > 0 {
		writeError(w, http.StatusConflict, "article "+input.ID+" already exists")
		return
	}

	if _, err := exec("INSERT INTO articles (id, name, category_id) VALUES (?, ?, ?)",
		input.ID, input.Name, input.CategoryID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	a, _ := getArticle(input.ID)
	writeJSON(w, http.StatusCreated, a)
}

// UpdateArticle updates an existing article
// @Summary      Update article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Article ID"
// @Param        article  body      models.ArticleInput  true  "Updated article contents"
// @Success      200      {object}  Response{data=models.Article}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /articles/{id} [put]
// @Security     BasicAuth
func UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	input.ID = id
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !checkCategory(input.CategoryID) {
		writeError(w, http.StatusBadRequest, "category not found")
		return
	}

	res, err := exec("UPDATE articles SET name = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		input.Name, input.CategoryID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	a, _ := getArticle(id)
	writeJSON(w, http.StatusOK, a)
}

// DeleteArticle deletes an article
// @Summary      Delete article
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /articles/{id} [delete]
// @Security     BasicAuth
func DeleteArticle(w http.ResponseWriter, r *http.Request) {
	res, err := exec("DELETE FROM articles WHERE id = ?", chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

type articleImport struct {
	*ingest.ArticleReport
	Mode      string `json:"mode"`
	Persisted int    `json:"persisted"`
}

// ImportArticles bulk-loads the article catalog from a file
// @Summary      Import articles
// @Description  Validate a CSV, XLSX or XLS article file. Categories may be given by id or name. With mode=apply the error-free rows are upserted.
// @Tags         articles
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file    true   "Article file"
// @Param        mode  query     string  false  "dry_run (default) or apply"
// @Success      200   {object}  Response{data=articleImport}
// @Failure      400   {object}  Response{error=string}
// @Failure      422   {object}  Response{error=string}
// @Router       /articles/import [post]
// @Security     BasicAuth
func ImportArticles(w http.ResponseWriter, r *http.Request) {
	mode, ok := importMode(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "mode must be dry_run or apply")
		return
	}
	t, name, ok := readUpload(w, r)
	if !ok {
		return
	}

	cats, err := categoryNames()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rep, err := ingest.ValidateArticles(t, cats)
	if err != nil {
		writeIngestError(w, err)
		return
	}
	out := articleImport{ArticleReport: rep, Mode: mode}

	if mode == modeApply {
		valid := rep.ValidRecords()
		if err := upsertArticles(valid); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Persisted = len(valid)
	}

	slog.Info("article import", "file", name, "mode", mode,
		"total", rep.TotalCount, "valid", rep.ValidCount, "invalid", rep.InvalidCount, "persisted", out.Persisted)
	writeJSON(w, http.StatusOK, out)
}

func upsertArticles(records []ingest.ArticleRecord) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.Rebind(articleUpsert))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		var category *string
		if rec.CategoryID != "" {
			category = &rec.CategoryID
		}
		if _, err := stmt.Exec(rec.ID, rec.Name, category); err != nil {
			return err
		}
	}
	return tx.Commit()
}
