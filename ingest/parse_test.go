package ingest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		headers []string
		rows    [][]string
	}{
		{
			name:    "quoted delimiter is data",
			input:   "h1,h2,h3\na,\"b,c\",d",
			headers: []string{"h1", "h2", "h3"},
			rows:    [][]string{{"a", "b,c", "d"}},
		},
		{
			name:    "crlf and bare cr line endings",
			input:   "h1,h2\r\n1,2\r3,4\r\n",
			headers: []string{"h1", "h2"},
			rows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:    "blank lines dropped",
			input:   "h\n\n   \nx\n\n",
			headers: []string{"h"},
			rows:    [][]string{{"x"}},
		},
		{
			name:    "cells trimmed",
			input:   " h1 , h2 \n  a ,  \" b \"",
			headers: []string{"h1", "h2"},
			rows:    [][]string{{"a", "b"}},
		},
		{
			name:    "byte order mark removed",
			input:   "\ufeffID,Name\n1,x",
			headers: []string{"ID", "Name"},
			rows:    [][]string{{"1", "x"}},
		},
		{
			name:    "short rows kept short",
			input:   "a,b,c\n1",
			headers: []string{"a", "b", "c"},
			rows:    [][]string{{"1"}},
		},
		{
			name:    "unclosed quote stays on its line",
			input:   "ID,Name,Type\nDIST001,\"ABC Ltd,P1\nDIST002,Beta,P2\nDIST003,Gamma,P3",
			headers: []string{"ID", "Name", "Type"},
			rows:    [][]string{{"DIST001", "ABC Ltd,P1"}, {"DIST002", "Beta", "P2"}, {"DIST003", "Gamma", "P3"}},
		},
		{
			name:    "quote inside a cell toggles quoting",
			input:   "h1,h2,h3\na,b\"c,d\"e,f",
			headers: []string{"h1", "h2", "h3"},
			rows:    [][]string{{"a", "bc,de", "f"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ParseCSV(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.headers, tbl.Headers)
			assert.Equal(t, tt.rows, tbl.Rows)
		})
	}
}

func TestParseCSVRequiresHeaderAndData(t *testing.T) {
	for _, input := range []string{"", "\n\n", "ID,Name\n", "ID,Name\n  \n"} {
		_, err := ParseCSV(input)
		var se *StructuralError
		require.True(t, errors.As(err, &se), "input %q", input)
		assert.Equal(t, "file must contain header and data", se.Error())
	}
}

func TestParseSheet(t *testing.T) {
	tbl, err := ParseSheet([][]string{
		{"ID", " Name ", "Zone"},
		{},
		{"", "  ", ""},
		{"1"},
		{"2", "B", "East"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Name", "Zone"}, tbl.Headers)
	assert.Equal(t, [][]string{{"1", "", ""}, {"2", "B", "East"}}, tbl.Rows)

	_, err = ParseSheet([][]string{{"ID"}, {""}})
	assert.ErrorContains(t, err, "header and data")
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Distributor ID", "Distributor Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"DIST001", "ABC Ltd"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"DIST002"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Distributor ID", "Distributor Name"}, tbl.Headers)
	assert.Equal(t, [][]string{{"DIST001", "ABC Ltd"}, {"DIST002", ""}}, tbl.Rows)
}

func TestReadXLS(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "distributors.xls"))
	require.NoError(t, err)
	defer f.Close()

	tbl, err := ReadFile("distributors.xls", f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Distributor ID", "Distributor Name", "Zone"}, tbl.Headers)
	// row 3 is missing from the file and row 4 holds only spaces
	assert.Equal(t, [][]string{{"DIST001", "ABC Ltd", "North1"}, {"DIST002", "", "North1"}}, tbl.Rows)
}

func TestReadFile(t *testing.T) {
	t.Run("csv by extension", func(t *testing.T) {
		tbl, err := ReadFile("Upload.CSV", strings.NewReader("a,b\n1,2"))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ReadFile("scan.pdf", strings.NewReader("%PDF"))
		var se *StructuralError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, se.Error(), "unsupported file type")
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		_, err := ReadFile("book.xlsx", strings.NewReader("not a zip"))
		var se *StructuralError
		assert.True(t, errors.As(err, &se))
	})
}
