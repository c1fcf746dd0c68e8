package ingest

import (
	"fmt"
	"strings"
	"unicode"
)

// Field describes one logical column and the header spellings accepted for it.
type Field struct {
	Name       string
	Label      string
	Variations []string
	Required   bool
}

// HeaderMapping maps a logical field name to its column index.
type HeaderMapping map[string]int

// NormalizeHeader lower-cases h and drops every character that is not a letter,
// so "Distributor ID", "distributor_id" and "DistributorId" compare equal.
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// MapHeaders resolves every field against the file's header row. Missing
// required headers are reported together; a field matched by more than one
// column is rejected as ambiguous.
func MapHeaders(headers []string, fields []Field) (HeaderMapping, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	m := make(HeaderMapping, len(fields))
	var missing []string
	for _, f := range fields {
		accepted := make(map[string]bool, len(f.Variations)+1)
		accepted[NormalizeHeader(f.Name)] = true
		for _, v := range f.Variations {
			accepted[NormalizeHeader(v)] = true
		}

		var matches []int
		for i, h := range normalized {
			if h != "" && accepted[h] {
				matches = append(matches, i)
			}
		}

		switch {
		case len(matches) == 0 && f.Required:
			missing = append(missing, f.Label)
		case len(matches) > 1:
			cols := make([]string, len(matches))
			for i, idx := range matches {
				cols[i] = fmt.Sprintf("%q", headers[idx])
			}
			return nil, structural("ambiguous header for %s: columns %s all match", f.Label, strings.Join(cols, ", "))
		case len(matches) == 1:
			m[f.Name] = matches[0]
		}
	}

	if len(missing) > 0 {
		return nil, &StructuralError{Reason: "missing required columns", Missing: missing}
	}
	return m, nil
}

// MaxIndex is the highest column index referenced by the mapping, -1 when empty.
func (m HeaderMapping) MaxIndex() int {
	highest := -1
	for _, idx := range m {
		if idx > highest {
			highest = idx
		}
	}
	return highest
}

// Cell returns the value of field in row, "" when the field is unmapped or
// the row is too short.
func (m HeaderMapping) Cell(row []string, field string) string {
	idx, ok := m[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
