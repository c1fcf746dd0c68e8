package models

import (
	"strings"
	"time"
)

// Article is a sellable item in the catalog.
type Article struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID *string   `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Computed fields
	CategoryName *string `json:"category_name,omitempty"`
}

// ArticleInput is used for creating/updating articles.
type ArticleInput struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CategoryID *string `json:"category_id"`
}

func (a *ArticleInput) Validate() string {
	a.ID = strings.TrimSpace(a.ID)
	a.Name = strings.TrimSpace(a.Name)
	if a.ID == "" {
		return "id is required"
	}
	if a.Name == "" {
		return "name is required"
	}
	if a.CategoryID != nil && strings.TrimSpace(*a.CategoryID) == "" {
		a.CategoryID = nil
	}
	return ""
}
