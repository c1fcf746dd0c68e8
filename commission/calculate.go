package commission

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/schemes/models"
)

var hundred = decimal.NewFromInt(100)

// Sale is a billing row joined with the distributor and catalog data the
// calculation needs.
type Sale struct {
	DistributorID   string
	DistributorName string
	DistributorType string
	ArticleID       string
	CategoryID      string
	BillingDocument string
	Period          time.Time
	Quantity        decimal.Decimal
	Value           decimal.Decimal
}

// Detail is one row of commission output per distributor, article and
// billing event.
type Detail struct {
	DistributorID   string          `json:"distributor_id"`
	DistributorName string          `json:"distributor_name"`
	ArticleID       string          `json:"article_id"`
	CategoryID      string          `json:"category_id"`
	BillingDocument string          `json:"billing_document"`
	Quantity        decimal.Decimal `json:"quantity"`
	Value           decimal.Decimal `json:"value"`
	Slab            string          `json:"slab"`
	Rate            decimal.Decimal `json:"rate"`
	Commission      decimal.Decimal `json:"commission"`
	GroupQuantity   decimal.Decimal `json:"group_quantity"`
	GroupValue      decimal.Decimal `json:"group_value"`
}

type totals struct {
	quantity decimal.Decimal
	value    decimal.Decimal
}

// Calculate computes per-sale commission for a scheme. Sales outside the
// scheme period or its targets are ignored. The slab is picked from each
// distributor's cumulative eligible quantity or value.
func Calculate(s models.Scheme, sales []Sale) []Detail {
	start, end, err := s.Period()
	if err != nil {
		return []Detail{}
	}
	from := monthStart(start)
	to := monthStart(end)

	articles := set(s.ArticleIDs)
	categories := set(s.CategoryIDs)
	types := set(s.DistributorTypes)

	eligible := make([]Sale, 0, len(sales))
	groups := make(map[string]*totals)
	for _, sale := range sales {
		if sale.Period.IsZero() || sale.Period.Before(from) || sale.Period.After(to) {
			continue
		}
		if len(articles)+len(categories) > 0 && !articles[sale.ArticleID] && !categories[sale.CategoryID] {
			continue
		}
		if len(types) > 0 && !types[sale.DistributorType] {
			continue
		}
		eligible = append(eligible, sale)

		g, ok := groups[sale.DistributorID]
		if !ok {
			g = &totals{}
			groups[sale.DistributorID] = g
		}
		g.quantity = g.quantity.Add(sale.Quantity)
		g.value = g.value.Add(sale.Value)
	}

	details := make([]Detail, 0, len(eligible))
	for _, sale := range eligible {
		g := groups[sale.DistributorID]
		basis := g.quantity
		if s.SlabBasis == models.BasisValue {
			basis = g.value
		}
		rate, label := rateFor(s, basis)

		details = append(details, Detail{
			DistributorID:   sale.DistributorID,
			DistributorName: sale.DistributorName,
			ArticleID:       sale.ArticleID,
			CategoryID:      sale.CategoryID,
			BillingDocument: sale.BillingDocument,
			Quantity:        sale.Quantity,
			Value:           sale.Value,
			Slab:            label,
			Rate:            rate,
			Commission:      commissionFor(s.CommissionType, rate, sale).Round(2),
			GroupQuantity:   g.quantity,
			GroupValue:      g.value,
		})
	}

	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if a.DistributorID != b.DistributorID {
			return a.DistributorID < b.DistributorID
		}
		if a.ArticleID != b.ArticleID {
			return a.ArticleID < b.ArticleID
		}
		return a.BillingDocument < b.BillingDocument
	})
	return details
}

// rateFor returns the applicable rate and slab label for a cumulative total.
func rateFor(s models.Scheme, total decimal.Decimal) (decimal.Decimal, string) {
	if len(s.Slabs) == 0 {
		return s.Rate, ""
	}
	var (
		best  *models.Slab
		found bool
	)
	for i := range s.Slabs {
		slab := &s.Slabs[i]
		if !slab.Contains(total) {
			continue
		}
		if !found || slab.Min.GreaterThan(best.Min) {
			best, found = slab, true
		}
	}
	if !found {
		return decimal.Zero, ""
	}
	return best.Rate, best.Label()
}

func commissionFor(kind string, rate decimal.Decimal, sale Sale) decimal.Decimal {
	switch kind {
	case models.CommissionPercentage:
		return sale.Value.Mul(rate).Div(hundred)
	case models.CommissionAbsolute:
		return sale.Quantity.Mul(rate)
	case models.CommissionFixed:
		return rate
	}
	return decimal.Zero
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
