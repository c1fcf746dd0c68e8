package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Table is a parsed file: one header row and at least one data row.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseCSV splits CSV text into trimmed cells, one line per row. A double
// quote toggles quoting and is dropped; a comma inside quotes is data. An
// unbalanced quote only affects its own line. Blank lines are dropped.
func ParseCSV(text string) (*Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := trimCells(splitLine(line))
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return newTable(rows, false)
}

func splitLine(line string) []string {
	var cells []string
	var cell strings.Builder
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	return append(cells, cell.String())
}

// ParseSheet builds a table from spreadsheet cells. Rows with no content are
// dropped and short data rows are padded with empty cells up to the header width.
func ParseSheet(cells [][]string) (*Table, error) {
	var rows [][]string
	for _, rec := range cells {
		row := trimCells(rec)
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return newTable(rows, true)
}

// ReadXLSX parses the first sheet of an .xlsx workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, structural("unreadable Excel file: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, structural("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, structural("reading sheet %q: %v", sheet, err)
	}
	return ParseSheet(rows)
}

// ReadXLS parses the first sheet of a legacy .xls workbook.
func ReadXLS(r io.ReadSeeker) (*Table, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, structural("unreadable Excel file: %v", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, structural("workbook has no sheets")
	}
	// MaxRow is the last row index; zero means at most one row.
	if sheet.MaxRow == 0 {
		return ParseSheet(nil)
	}
	// Sheet.Row panics on rows the file never wrote, so read through
	// ReadAllCells, capped at the first sheet's height.
	return ParseSheet(wb.ReadAllCells(int(sheet.MaxRow) + 1))
}

// ReadFile picks a parser from the file extension.
func ReadFile(name string, r io.ReadSeeker) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return ParseCSV(string(b))
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".xls":
		return ReadXLS(r)
	default:
		return nil, structural("unsupported file type %q: upload a .csv, .xlsx or .xls file", ext)
	}
}

func newTable(rows [][]string, pad bool) (*Table, error) {
	if len(rows) < 2 {
		return nil, structural("file must contain header and data")
	}
	t := &Table{Headers: rows[0], Rows: rows[1:]}
	if pad {
		width := len(t.Headers)
		for i, row := range t.Rows {
			if len(row) < width {
				padded := make([]string, width)
				copy(padded, row)
				t.Rows[i] = padded
			}
		}
	}
	return t, nil
}

func trimCells(rec []string) []string {
	row := make([]string, len(rec))
	for i, c := range rec {
		row[i] = strings.TrimSpace(c)
	}
	return row
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
