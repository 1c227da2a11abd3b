package sheetorm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat        = errors.New("invalid range format")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrMissingConstructor   = errors.New("record type has no constructor")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrSchemaMismatch       = errors.New("schema mismatch")
	ErrInvalidValue         = errors.New("invalid cell value")
	ErrInvalidConfig        = errors.New("invalid config")
	ErrInvalidQuery         = errors.New("invalid query")
)

// Schema declaration errors, returned by NewSchema.
var (
	ErrEmptySchema       = errors.New("schema has no fields")
	ErrInvalidColumn     = errors.New("column id must be positive")
	ErrDuplicateColumn   = errors.New("duplicate column id")
	ErrDuplicateField    = errors.New("duplicate field name")
	ErrFieldTarget       = errors.New("field target does not match field type")
	ErrUnknownField      = errors.New("unknown field")
	ErrFieldNotInUpdates = errors.New("field has no cell update")
)

// SchemaMismatchError carries the message of a failed header validation.
type SchemaMismatchError struct {
	Message string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s", e.Message)
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
