package ingest

import (
	"fmt"
	"strings"
)

// RowOffset converts a record index into the row number shown to users:
// one for the header row and one for 1-based numbering.
const RowOffset = 2

// StructuralError rejects a whole file before any row is validated.
type StructuralError struct {
	Reason  string
	Missing []string
}

func (e *StructuralError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

func structural(format string, args ...any) *StructuralError {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// SizeLimitError rejects a file whose record count exceeds the configured cap.
type SizeLimitError struct {
	Count int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file contains %d records, the maximum allowed is %d", e.Count, e.Limit)
}

func rowMessage(index int, msg string) string {
	return fmt.Sprintf("Row %d: %s", index+RowOffset, msg)
}
