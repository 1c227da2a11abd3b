package sheetorm

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of comparing a header row with a schema.
// A mismatch is an expected result, not an error.
type ValidationResult struct {
	Valid   bool
	Message string
}

// Err returns a *SchemaMismatchError when the header did not match, nil otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &SchemaMismatchError{Message: r.Message}
}

// ValidateHeader checks that row, whose first cell is column A, carries the
// display name of every field at its column.
func (s *Schema[T]) ValidateHeader(row []any) ValidationResult {
	var msg strings.Builder
	for _, b := range s.bindings {
		f := b.Field
		if len(row) < f.ColumnID {
			fmt.Fprintf(&msg, "'%s' column id: %d is greater than the defined column count: %d. ",
				f.DisplayName, f.ColumnID, len(row))
			continue
		}
		if actual := cellText(row[f.ColumnID-1]); actual != f.DisplayName {
			fmt.Fprintf(&msg, "Expected column name: '%s' however, current column name is: '%s'. ",
				f.DisplayName, actual)
		}
	}
	return ValidationResult{Valid: msg.Len() == 0, Message: msg.String()}
}
