package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of scheme dates.
const DateLayout = "2006-01-02"

const (
	CommissionFixed      = "fixed"
	CommissionAbsolute   = "absolute"
	CommissionPercentage = "percentage"

	BasisQuantity = "quantity"
	BasisValue    = "value"
)

// Scheme is a commission program over a date range.
type Scheme struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	CommissionType   string          `json:"commission_type"` // fixed, absolute, percentage
	SlabBasis        string          `json:"slab_basis"`      // quantity, value
	Rate             decimal.Decimal `json:"rate"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Status           string          `json:"status"` // draft, active, closed
	Slabs            []Slab          `json:"slabs"`
	ArticleIDs       []string        `json:"article_ids"`
	CategoryIDs      []string        `json:"category_ids"`
	DistributorTypes []string        `json:"distributor_types"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Slab is one tier of a scheme. Max is open-ended when nil.
type Slab struct {
	ID   string           `json:"id,omitempty"`
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max"`
	Rate decimal.Decimal  `json:"rate"`
}

// Label renders the slab range, e.g. "100-499" or "500+".
func (s Slab) Label() string {
	if s.Max == nil {
		return s.Min.String() + "+"
	}
	return s.Min.String() + "-" + s.Max.String()
}

// Contains reports whether total falls inside the slab.
func (s Slab) Contains(total decimal.Decimal) bool {
	if total.LessThan(s.Min) {
		return false
	}
	return s.Max == nil || total.LessThanOrEqual(*s.Max)
}

// Period returns the first and last day of the scheme.
func (s Scheme) Period() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := time.Parse(DateLayout, s.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", err)
	}
	return start, end, nil
}

// SchemeInput is used for creating/updating schemes.
type SchemeInput struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	CommissionType   string          `json:"commission_type"`
	SlabBasis        string          `json:"slab_basis"`
	Rate             decimal.Decimal `json:"rate"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Status           string          `json:"status"`
	Slabs            []Slab          `json:"slabs"`
	ArticleIDs       []string        `json:"article_ids"`
	CategoryIDs      []string        `json:"category_ids"`
	DistributorTypes []string        `json:"distributor_types"`
}

func (s *SchemeInput) Validate() string {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return "name is required"
	}
	switch s.CommissionType {
	case CommissionFixed, CommissionAbsolute, CommissionPercentage:
	default:
		return "commission_type must be one of: fixed, absolute, percentage"
	}
	switch s.SlabBasis {
	case "":
		s.SlabBasis = BasisQuantity
	case BasisQuantity, BasisValue:
	default:
		return "slab_basis must be one of: quantity, value"
	}
	switch s.Status {
	case "":
		s.Status = "active"
	case "draft", "active", "closed":
	default:
		return "status must be one of: draft, active, closed"
	}
	if s.Rate.IsNegative() {
		return "rate must be non-negative"
	}

	start, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return "start_date must be YYYY-MM-DD"
	}
	end, err := time.Parse(DateLayout, s.EndDate)
	if err != nil {
		return "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return "end_date must not be before start_date"
	}

	sort.SliceStable(s.Slabs, func(i, j int) bool { return s.Slabs[i].Min.LessThan(s.Slabs[j].Min) })
	for i, slab := range s.Slabs {
		if slab.Min.IsNegative() || slab.Rate.IsNegative() {
			return fmt.Sprintf("slab %d: min and rate must be non-negative", i+1)
		}
		if slab.Max != nil && slab.Max.LessThan(slab.Min) {
			return fmt.Sprintf("slab %d: max must not be below min", i+1)
		}
		if i > 0 {
			prev := s.Slabs[i-1]
			if prev.Max == nil || !prev.Max.LessThan(slab.Min) {
				return fmt.Sprintf("slab %d overlaps slab %d", i+1, i)
			}
		}
	}

	s.ArticleIDs = compact(s.ArticleIDs)
	s.CategoryIDs = compact(s.CategoryIDs)
	s.DistributorTypes = compact(s.DistributorTypes)
	return ""
}

// compact trims, drops empties and de-duplicates ids, preserving order.
func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
