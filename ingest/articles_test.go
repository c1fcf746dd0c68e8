package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArticles(t *testing.T) {
	tbl, err := ParseCSV("Article Code,Article Name,Category\n" +
		"A1,Cola 300ml,beverages\n" +
		"A2,,C9\n" +
		"A3,Chips,C2\n" +
		"A1,Cola again,\n")
	require.NoError(t, err)

	rep, err := ValidateArticles(tbl, map[string]string{"C1": "Beverages", "C2": "Snacks"})
	require.NoError(t, err)

	require.Len(t, rep.Records, 4)
	assert.Equal(t, 2, rep.ValidCount)
	assert.Equal(t, 2, rep.InvalidCount)

	assert.Equal(t, "C1", rep.Records[0].CategoryID)
	assert.Equal(t, []string{"Article Name is required", `Unknown category "C9"`}, rep.Records[1].Errors)
	assert.Equal(t, "C2", rep.Records[2].CategoryID)
	assert.Equal(t, []string{"Duplicate article ID A1 (first seen on row 2)"}, rep.Records[3].Errors)

	assert.Equal(t, []string{
		"Row 3: Article Name is required",
		`Row 3: Unknown category "C9"`,
		"Row 5: Duplicate article ID A1 (first seen on row 2)",
	}, rep.Errors)

	valid := rep.ValidRecords()
	require.Len(t, valid, 2)
	assert.Equal(t, "A3", valid[1].ID)
}
