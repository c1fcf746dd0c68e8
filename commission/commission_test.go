package commission

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/schemes/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func period(m time.Month) time.Time { return time.Date(2026, m, 1, 0, 0, 0, 0, time.UTC) }

func scheme() models.Scheme {
	return models.Scheme{
		ID:             "S1",
		CommissionType: models.CommissionPercentage,
		SlabBasis:      models.BasisQuantity,
		Rate:           dec("2"),
		StartDate:      "2026-10-01",
		EndDate:        "2026-11-30",
	}
}

func TestCalculateFlatRate(t *testing.T) {
	sales := []Sale{
		{DistributorID: "D2", ArticleID: "A1", BillingDocument: "B2", Period: period(time.October), Quantity: dec("5"), Value: dec("250")},
		{DistributorID: "D1", ArticleID: "A1", BillingDocument: "B1", Period: period(time.November), Quantity: dec("10"), Value: dec("1000")},
		{DistributorID: "D1", ArticleID: "A1", BillingDocument: "B0", Period: period(time.September), Quantity: dec("10"), Value: dec("1000")},
		{DistributorID: "D3", ArticleID: "A1", BillingDocument: "B3"},
	}

	got := Calculate(scheme(), sales)
	require.Len(t, got, 2)
	assert.Equal(t, "D1", got[0].DistributorID)
	assert.True(t, dec("20").Equal(got[0].Commission), got[0].Commission.String())
	assert.Equal(t, "", got[0].Slab)
	assert.Equal(t, "D2", got[1].DistributorID)
	assert.True(t, dec("5").Equal(got[1].Commission), got[1].Commission.String())
}

func TestCalculateCommissionTypes(t *testing.T) {
	sale := Sale{DistributorID: "D1", ArticleID: "A1", Period: period(time.October), Quantity: dec("3"), Value: dec("333.33")}
	tests := []struct {
		kind string
		rate string
		want string
	}{
		{models.CommissionPercentage, "1.5", "5"},
		{models.CommissionAbsolute, "2.25", "6.75"},
		{models.CommissionFixed, "40", "40"},
		{"unknown", "40", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s := scheme()
			s.CommissionType = tt.kind
			s.Rate = dec(tt.rate)
			got := Calculate(s, []Sale{sale})
			require.Len(t, got, 1)
			assert.True(t, dec(tt.want).Equal(got[0].Commission), got[0].Commission.String())
		})
	}
}

func TestCalculateSlabsUseCumulativeTotal(t *testing.T) {
	s := scheme()
	s.CommissionType = models.CommissionAbsolute
	s.Slabs = []models.Slab{
		{Min: dec("0"), Max: decPtr("10"), Rate: dec("1")},
		{Min: dec("11"), Rate: dec("2")},
	}
	sales := []Sale{
		{DistributorID: "D1", ArticleID: "A1", BillingDocument: "B1", Period: period(time.October), Quantity: dec("10")},
		{DistributorID: "D1", ArticleID: "A2", BillingDocument: "B2", Period: period(time.October), Quantity: dec("5")},
		{DistributorID: "D2", ArticleID: "A1", BillingDocument: "B3", Period: period(time.October), Quantity: dec("4")},
	}

	got := Calculate(s, sales)
	require.Len(t, got, 3)

	assert.Equal(t, "11+", got[0].Slab)
	assert.True(t, dec("15").Equal(got[0].GroupQuantity))
	assert.True(t, dec("20").Equal(got[0].Commission))
	assert.True(t, dec("10").Equal(got[1].Commission))

	assert.Equal(t, "0-10", got[2].Slab)
	assert.True(t, dec("4").Equal(got[2].Commission))
}

func TestCalculateGapBetweenSlabsPaysNothing(t *testing.T) {
	s := scheme()
	s.SlabBasis = models.BasisValue
	s.Slabs = []models.Slab{
		{Min: dec("0"), Max: decPtr("100"), Rate: dec("1")},
		{Min: dec("200"), Rate: dec("2")},
	}
	got := Calculate(s, []Sale{{DistributorID: "D1", ArticleID: "A1", Period: period(time.October), Value: dec("150")}})
	require.Len(t, got, 1)
	assert.True(t, got[0].Rate.IsZero())
	assert.True(t, got[0].Commission.IsZero())
}

func TestCalculateTargets(t *testing.T) {
	sales := []Sale{
		{DistributorID: "D1", DistributorType: "P1", ArticleID: "A1", CategoryID: "C1", Period: period(time.October), Value: dec("100")},
		{DistributorID: "D1", DistributorType: "P1", ArticleID: "A2", CategoryID: "C2", Period: period(time.October), Value: dec("100")},
		{DistributorID: "D2", DistributorType: "P2", ArticleID: "A3", CategoryID: "C1", Period: period(time.October), Value: dec("100")},
	}

	t.Run("articles or categories", func(t *testing.T) {
		s := scheme()
		s.ArticleIDs = []string{"A2"}
		s.CategoryIDs = []string{"C1"}
		assert.Len(t, Calculate(s, sales), 3)

		s.CategoryIDs = nil
		got := Calculate(s, sales)
		require.Len(t, got, 1)
		assert.Equal(t, "A2", got[0].ArticleID)
	})

	t.Run("distributor types", func(t *testing.T) {
		s := scheme()
		s.DistributorTypes = []string{"P2"}
		got := Calculate(s, sales)
		require.Len(t, got, 1)
		assert.Equal(t, "D2", got[0].DistributorID)
	})
}

func TestCalculateInvalidPeriod(t *testing.T) {
	s := scheme()
	s.EndDate = "soon"
	assert.Equal(t, []Detail{}, Calculate(s, []Sale{{DistributorID: "D1", Period: period(time.October)}}))
}

func TestSummarize(t *testing.T) {
	details := []Detail{
		{DistributorID: "D1", DistributorName: "Acme", ArticleID: "A2", Quantity: dec("10"), Value: dec("100"), Commission: dec("2")},
		{DistributorID: "D1", DistributorName: "Acme Ltd", ArticleID: "A2", Quantity: dec("5"), Value: dec("50"), Commission: dec("1")},
		{DistributorID: "D1", DistributorName: "Acme", ArticleID: "A1", Quantity: dec("1"), Value: dec("10")},
		{DistributorID: "D0", DistributorName: "Zed", ArticleID: "A9", Quantity: dec("2")},
	}

	sum := Summarize(details)
	require.Len(t, sum.Articles, 3)
	assert.Equal(t, "D0:A9", sum.Articles[0].Key())
	assert.Equal(t, "D1:A1", sum.Articles[1].Key())
	a := sum.Articles[2]
	assert.Equal(t, "D1:A2", a.Key())
	assert.True(t, dec("15").Equal(a.TotalQuantity))
	assert.True(t, dec("150").Equal(a.TotalValue))
	assert.True(t, dec("3").Equal(a.TotalCommission))
	assert.Equal(t, 2, a.SalesCount)

	require.Len(t, sum.Distributors, 2)
	assert.Equal(t, "D0", sum.Distributors[0].DistributorID)
	d := sum.Distributors[1]
	assert.Equal(t, "Acme", d.DistributorName)
	assert.True(t, dec("16").Equal(d.TotalQuantity))
	assert.Equal(t, 3, d.SalesCount)
	assert.Equal(t, []string{"A1", "A2"}, d.UniqueArticles)
	assert.Equal(t, 2, d.ArticleCount)
}

func TestSummarizeArticlesIDsContainingColon(t *testing.T) {
	details := []Detail{
		{DistributorID: "A:B", ArticleID: "C", Quantity: dec("10")},
		{DistributorID: "A", ArticleID: "B:C", Quantity: dec("5")},
	}

	sum := Summarize(details)
	require.Len(t, sum.Articles, 2)
	assert.Equal(t, "A", sum.Articles[0].DistributorID)
	assert.Equal(t, "B:C", sum.Articles[0].ArticleID)
	assert.True(t, dec("5").Equal(sum.Articles[0].TotalQuantity))
	assert.Equal(t, "A:B", sum.Articles[1].DistributorID)
	assert.True(t, dec("10").Equal(sum.Articles[1].TotalQuantity))

	require.Len(t, sum.Distributors, 2)
	assert.Equal(t, []string{"B:C"}, sum.Distributors[0].UniqueArticles)
	assert.Equal(t, []string{"C"}, sum.Distributors[1].UniqueArticles)
}

func TestSummarizeDistributorsFirstNameWins(t *testing.T) {
	items := []ArticleSummary{
		{DistributorID: "D1", DistributorName: "First", ArticleID: "A2", TotalQuantity: dec("1")},
		{DistributorID: "D1", DistributorName: "Second", ArticleID: "A1", TotalQuantity: dec("2")},
		{DistributorID: "D1", DistributorName: "Third", ArticleID: "A2"},
	}
	got := SummarizeDistributors(items)
	require.Len(t, got, 1)
	assert.Equal(t, "First", got[0].DistributorName)
	assert.Equal(t, []string{"A1", "A2"}, got[0].UniqueArticles)
	assert.True(t, dec("3").Equal(got[0].TotalQuantity))

	assert.Equal(t, got, SummarizeDistributors(items))
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, []ArticleSummary{}, SummarizeArticles(nil))
	assert.Equal(t, []DistributorSummary{}, SummarizeDistributors(nil))
}
