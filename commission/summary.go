package commission

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ArticleSummary aggregates details for one distributor and article.
type ArticleSummary struct {
	DistributorID   string          `json:"distributor_id"`
	DistributorName string          `json:"distributor_name"`
	ArticleID       string          `json:"article_id"`
	CategoryID      string          `json:"category_id"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	SalesCount      int             `json:"sales_count"`
}

// Key renders the grouping pair as distributorId:articleId for display.
// Grouping itself compares the two IDs separately.
func (a ArticleSummary) Key() string { return a.DistributorID + ":" + a.ArticleID }

type articleKey struct {
	distributorID, articleID string
}

// DistributorSummary aggregates everything one distributor earned under a scheme.
type DistributorSummary struct {
	DistributorID   string          `json:"distributor_id"`
	DistributorName string          `json:"distributor_name"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	SalesCount      int             `json:"sales_count"`
	UniqueArticles  []string        `json:"unique_articles"`
	ArticleCount    int             `json:"article_count"`
}

// Summary is the full aggregation of a scheme's details.
type Summary struct {
	Articles     []ArticleSummary     `json:"articles"`
	Distributors []DistributorSummary `json:"distributors"`
}

// Summarize runs both aggregation levels.
func Summarize(details []Detail) Summary {
	articles := SummarizeArticles(details)
	return Summary{Articles: articles, Distributors: SummarizeDistributors(articles)}
}

// SummarizeArticles groups details by distributor and article. Output is
// ordered by distributor, then article.
func SummarizeArticles(details []Detail) []ArticleSummary {
	index := make(map[articleKey]int)
	out := []ArticleSummary{}
	for _, d := range details {
		key := articleKey{d.DistributorID, d.ArticleID}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, ArticleSummary{
				DistributorID:   d.DistributorID,
				DistributorName: d.DistributorName,
				ArticleID:       d.ArticleID,
				CategoryID:      d.CategoryID,
			})
		}
		s := &out[i]
		s.TotalQuantity = s.TotalQuantity.Add(d.Quantity)
		s.TotalValue = s.TotalValue.Add(d.Value)
		s.TotalCommission = s.TotalCommission.Add(d.Commission)
		s.SalesCount++
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistributorID != out[j].DistributorID {
			return out[i].DistributorID < out[j].DistributorID
		}
		return out[i].ArticleID < out[j].ArticleID
	})
	return out
}

// SummarizeDistributors folds article summaries into one entry per
// distributor. The first name seen for a distributor is kept. A zero
// decimal.Decimal is 0, so unset numeric fields add nothing.
func SummarizeDistributors(items []ArticleSummary) []DistributorSummary {
	index := make(map[string]int)
	articles := make(map[string]map[string]struct{})
	out := []DistributorSummary{}

	for _, a := range items {
		i, ok := index[a.DistributorID]
		if !ok {
			i = len(out)
			index[a.DistributorID] = i
			articles[a.DistributorID] = make(map[string]struct{})
			out = append(out, DistributorSummary{
				DistributorID:   a.DistributorID,
				DistributorName: a.DistributorName,
			})
		}
		s := &out[i]
		s.TotalQuantity = s.TotalQuantity.Add(a.TotalQuantity)
		s.TotalValue = s.TotalValue.Add(a.TotalValue)
		s.TotalCommission = s.TotalCommission.Add(a.TotalCommission)
		s.SalesCount += a.SalesCount
		if a.ArticleID != "" {
			articles[a.DistributorID][a.ArticleID] = struct{}{}
		}
	}

	for i := range out {
		ids := make([]string, 0, len(articles[out[i].DistributorID]))
		for id := range articles[out[i].DistributorID] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[i].UniqueArticles = ids
		out[i].ArticleCount = len(ids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistributorID < out[j].DistributorID })
	return out
}
