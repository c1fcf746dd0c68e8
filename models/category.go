package models

import (
	"strings"
	"time"
)

// Category groups articles for scheme targeting.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ArticleCount int       `json:"article_count"` // Computed
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInput is used for creating/updating categories.
type CategoryInput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (c *CategoryInput) Validate() string {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	if c.ID == "" {
		return "id is required"
	}
	if c.Name == "" {
		return "name is required"
	}
	return ""
}
