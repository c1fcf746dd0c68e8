package handlers

import (
	"net/http"
)

// articleCategories maps every article id to its category id.
func articleCategories() (map[string]string, error) {
	rows, err := query("SELECT id, category_id FROM articles WHERE category_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var id, cat string
		if err := rows.Scan(&id, &cat); err != nil {
			return nil, err
		}
		m[id] = cat
	}
	return m, rows.Err()
}

// GetReference returns validation reference data
// @Summary      Get reference data
// @Description  Zones, the zone to state mapping, distributor types and the article to category mapping.
// @Tags         reference
// @Produce      json
// @Success      200  {object}  Response{data=reference.Data}
// @Router       /reference [get]
// @Security     BasicAuth
func GetReference(w http.ResponseWriter, r *http.Request) {
	cats, err := articleCategories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Reference.WithArticleCategories(cats))
}
