package ingest

import (
	"fmt"
	"strings"
)

// ArticleFields lists the columns of an article catalog upload.
var ArticleFields = []Field{
	{Name: "id", Label: "Article ID", Required: true,
		Variations: []string{"Article ID", "Article Code", "Material", "Material Code", "Code"}},
	{Name: "name", Label: "Article Name", Required: true,
		Variations: []string{"Article Name", "Name", "Description", "Material Description"}},
	{Name: "category", Label: "Category", Variations: []string{"Category", "Category ID", "Category Name"}},
}

// ArticleRecord is one mapped catalog row.
type ArticleRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	CategoryID string   `json:"category_id"`
	Row        int      `json:"row"`
	Errors     []string `json:"errors"`
}

func (r ArticleRecord) Valid() bool { return len(r.Errors) == 0 }

type ArticleReport struct {
	Records      []ArticleRecord `json:"records"`
	Errors       []string        `json:"errors"`
	TotalCount   int             `json:"total_count"`
	ValidCount   int             `json:"valid_count"`
	InvalidCount int             `json:"invalid_count"`
}

func (rep *ArticleReport) ValidRecords() []ArticleRecord {
	valid := make([]ArticleRecord, 0, rep.ValidCount)
	for _, r := range rep.Records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// ValidateArticles maps catalog rows. categories maps category id to name;
// a row may name its category by either, case-insensitively.
func ValidateArticles(t *Table, categories map[string]string) (*ArticleReport, error) {
	m, err := MapHeaders(t.Headers, ArticleFields)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]string, len(categories)*2)
	for id, name := range categories {
		lookup[strings.ToLower(id)] = id
		lookup[strings.ToLower(name)] = id
	}

	rep := &ArticleReport{Records: make([]ArticleRecord, 0, len(t.Rows)), Errors: []string{}}
	width := m.MaxIndex() + 1
	seen := make(map[string]int, len(t.Rows))

	for i, row := range t.Rows {
		rec := ArticleRecord{
			ID:         m.Cell(row, "id"),
			Name:       m.Cell(row, "name"),
			CategoryID: m.Cell(row, "category"),
			Row:        i + RowOffset,
			Errors:     []string{},
		}

		if len(row) < width {
			rec.Errors = append(rec.Errors, fmt.Sprintf("Insufficient columns (expected %d, found %d)", width, len(row)))
		} else {
			if rec.ID == "" {
				rec.Errors = append(rec.Errors, "Article ID is required")
			}
			if rec.Name == "" {
				rec.Errors = append(rec.Errors, "Article Name is required")
			}
			if rec.CategoryID != "" {
				if id, ok := lookup[strings.ToLower(rec.CategoryID)]; ok {
					rec.CategoryID = id
				} else {
					rec.Errors = append(rec.Errors, fmt.Sprintf("Unknown category %q", rec.CategoryID))
				}
			}
			if rec.ID != "" {
				if first, dup := seen[rec.ID]; dup {
					rec.Errors = append(rec.Errors, fmt.Sprintf("Duplicate article ID %s (first seen on row %d)", rec.ID, first))
				} else {
					seen[rec.ID] = rec.Row
				}
			}
		}

		for _, msg := range rec.Errors {
			rep.Errors = append(rep.Errors, rowMessage(i, msg))
		}
		if rec.Valid() {
			rep.ValidCount++
		} else {
			rep.InvalidCount++
		}
		rep.Records = append(rep.Records, rec)
	}
	rep.TotalCount = len(rep.Records)
	return rep, nil
}
