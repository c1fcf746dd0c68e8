package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/schemes/reference"
)

const distributorHeader = "Distributor ID,Distributor Name,Distributor Type,Zone,State\n"

func validateDistributorCSV(t *testing.T, body string) *DistributorReport {
	t.Helper()
	tbl, err := ParseCSV(distributorHeader + body)
	require.NoError(t, err)
	rep, err := ValidateDistributors(tbl, reference.Default())
	require.NoError(t, err)
	return rep
}

func TestValidateDistributorsEndToEnd(t *testing.T) {
	rep := validateDistributorCSV(t, "DIST001,ABC Ltd,P1,North1,Delhi\nDIST002,,P9,West,XYZ\n")

	require.Len(t, rep.Records, 2)
	assert.Equal(t, 2, rep.TotalCount)
	assert.Equal(t, 1, rep.ValidCount)
	assert.Equal(t, 1, rep.InvalidCount)

	first := rep.Records[0]
	assert.True(t, first.Valid())
	assert.Equal(t, "DIST001", first.ID)
	assert.Equal(t, 2, first.Row)

	second := rep.Records[1]
	assert.False(t, second.Valid())
	require.Len(t, second.Errors, 2)
	assert.Equal(t, "Distributor Name is required", second.Errors[0])
	assert.True(t, strings.HasPrefix(second.Errors[1], `Invalid state "XYZ" for zone West. Valid states: `))
	assert.Contains(t, second.Errors[1], "Maharashtra")

	require.Len(t, rep.Errors, 2)
	assert.Equal(t, "Row 3: Distributor Name is required", rep.Errors[0])
	assert.True(t, strings.HasPrefix(rep.Errors[1], "Row 3: Invalid state"))

	valid := rep.ValidRecords()
	require.Len(t, valid, 1)
	assert.Equal(t, "DIST001", valid[0].ID)
}

func TestValidateDistributorsUnclosedQuoteKeepsLaterRows(t *testing.T) {
	rep := validateDistributorCSV(t, "DIST001,\"ABC Ltd,P1,North1,Delhi\n"+
		"DIST002,Beta,P2,South,Kerala\n"+
		"DIST003,Gamma,P3,West,Goa\n")

	assert.Equal(t, 3, rep.TotalCount)
	assert.Equal(t, 2, rep.ValidCount)
	assert.Equal(t, []string{"Row 2: Insufficient columns (expected 5, found 2)"}, rep.Errors)
	valid := rep.ValidRecords()
	require.Len(t, valid, 2)
	assert.Equal(t, "DIST002", valid[0].ID)
	assert.Equal(t, "DIST003", valid[1].ID)
}

func TestValidateDistributorsZoneStateMismatch(t *testing.T) {
	rep := validateDistributorCSV(t, "DIST010,Delta,P2,North1,Maharashtra\n")

	rec := rep.Records[0]
	require.Len(t, rec.Errors, 1)
	assert.Contains(t, rec.Errors[0], "for zone North1")
	assert.Contains(t, rec.Errors[0], "Delhi")
}

func TestValidateDistributorsRules(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		errors []string
	}{
		{
			name: "all fields missing",
			row:  ",,,,",
			errors: []string{
				"Distributor ID is required",
				"Distributor Name is required",
				"Distributor Type is required",
				"Zone is required",
				"State is required",
			},
		},
		{
			name:   "unknown type",
			row:    "D1,Acme,Z9,East,Bihar",
			errors: []string{`Invalid distributor type "Z9". Valid types: P1, P2, P3, P4, P5, P6, P7, P8, P9, D1, D2`},
		},
		{
			name:   "unknown zone skips state check",
			row:    "D1,Acme,P1,Central,Nowhere",
			errors: []string{`Invalid zone "Central". Valid zones: East, West, North1, North2, South`},
		},
		{
			name:   "missing state is only a presence error",
			row:    "D1,Acme,P1,East,",
			errors: []string{"State is required"},
		},
		{
			name:   "insufficient columns rejects the row wholesale",
			row:    "D1,Acme",
			errors: []string{"Insufficient columns (expected 5, found 2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &Table{
				Headers: strings.Split(strings.TrimSpace(distributorHeader), ","),
				Rows:    [][]string{strings.Split(tt.row, ",")},
			}
			rep, err := ValidateDistributors(tbl, reference.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.errors, rep.Records[0].Errors)
			assert.Len(t, rep.Errors, len(tt.errors))
		})
	}
}

func TestValidateDistributorsCanonicalizesCase(t *testing.T) {
	rep := validateDistributorCSV(t, "DIST020,Echo,p1,north1,delhi\n")

	rec := rep.Records[0]
	require.True(t, rec.Valid(), rec.Errors)
	assert.Equal(t, "P1", rec.Type)
	assert.Equal(t, "North1", rec.Zone)
	assert.Equal(t, "Delhi", rec.State)
}

func TestValidateDistributorsDuplicateIDs(t *testing.T) {
	rep := validateDistributorCSV(t, "DIST030,One,P1,East,Bihar\nDIST030,Two,P1,East,Bihar\n")

	assert.True(t, rep.Records[0].Valid())
	assert.Equal(t, []string{"Duplicate distributor ID DIST030 (first seen on row 2)"}, rep.Records[1].Errors)
}

func TestValidateDistributorsMissingHeaderStopsBeforeRows(t *testing.T) {
	tbl, err := ParseCSV("Distributor ID,Name,Type,Zone\nDIST001,ABC,P1,East\n")
	require.NoError(t, err)

	rep, err := ValidateDistributors(tbl, reference.Default())
	assert.Nil(t, rep)
	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"State"}, se.Missing)
}

func TestValidateDistributorsIsDeterministic(t *testing.T) {
	body := "DIST001,ABC Ltd,P1,North1,Delhi\nDIST002,,P9,West,XYZ\n"
	assert.Equal(t, validateDistributorCSV(t, body), validateDistributorCSV(t, body))
}
