package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/schemes/models"
)

const categorySelectQuery = `SELECT c.id, c.name, c.description, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM articles a WHERE a.category_id = c.id) as article_count
	FROM categories c`

func scanCategory(scanner interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.ArticleCount)
	return c, err
}

// categoryNames maps category id to name.
func categoryNames() (map[string]string, error) {
	rows, err := query("SELECT id, name FROM categories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		m[id] = name
	}
	return m, rows.Err()
}

// ListCategories lists all categories
// @Summary      List categories
// @Description  Get all article categories with article counts.
// @Tags         categories
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Category}
// @Router       /categories [get]
// @Security     BasicAuth
func ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := query(categorySelectQuery + " ORDER BY c.name")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategory retrieves a single category by ID
// @Summary      Get category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  Response{data=models.Category}
// @Failure      404  {object}  Response{error=string}
// @Router       /categories/{id} [get]
// @Security     BasicAuth
func GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := scanCategory(queryRow(categorySelectQuery+" WHERE c.id = ?", chi.URLParam(r, "id")))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCategory creates a new category
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        category  body      models.CategoryInput  true  "Category contents"
// @Success      201       {object}  Response{data=models.Category}
// @Failure      400       {object}  Response{error=string}
// @Failure      409       {object}  Response{error=string}
// @Router       /categories [post]
// @Security     BasicAuth
func CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input models.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var exists int
	queryRow("SELECT COUNT(*) FROM categories WHERE id = ?", input.ID).Scan(&exists)
	if exists > 0 {
		writeError(w, http.StatusConflict, "category "+input.ID+" already exists")
		return
	}

	if _, err := exec("INSERT INTO categories (id, name, description) VALUES (?, ?, ?)",
		input.ID, input.Name, input.Description); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	c, _ := scanCategory(queryRow(categorySelectQuery+" WHERE c.id = ?", input.ID))
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory updates an existing category
// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id        path      string                true  "Category ID"
// @Param        category  body      models.CategoryInput  true  "Updated category contents"
// @Success      200       {object}  Response{data=models.Category}
// @Failure      400       {object}  Response{error=string}
// @Failure      404       {object}  Response{error=string}
// @Router       /categories/{id} [put]
// @Security     BasicAuth
func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input models.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	input.ID = id
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := exec("UPDATE categories SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		input.Name, input.Description, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	c, _ := scanCategory(queryRow(categorySelectQuery+" WHERE c.id = ?", id))
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory deletes a category
// @Summary      Delete category
// @Description  Remove a category. Its articles become uncategorized.
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /categories/{id} [delete]
// @Security     BasicAuth
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	res, err := exec("DELETE FROM categories WHERE id = ?", chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
