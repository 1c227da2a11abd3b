package sheetorm

import (
	"fmt"
	"sort"
	"time"
)

// FieldType is the semantic type of a column.
type FieldType int

const (
	String FieldType = iota
	Number
	Integer
	Boolean
	Currency
	PhoneNumber
	DateTime
)

// https://developers.google.com/sheets/api/guides/formats
var defaultPatterns = map[FieldType]string{
	String:      "",
	Number:      "#,##0.00",
	Integer:     "0",
	Boolean:     "#",
	Currency:    `"$"#,##0.00`,
	PhoneNumber: `(###)" "###"-"####`,
	DateTime:    "M/d/yyyy H:mm:ss",
}

var fieldTypeNames = map[FieldType]string{
	String:      "String",
	Number:      "Number",
	Integer:     "Integer",
	Boolean:     "Boolean",
	Currency:    "Currency",
	PhoneNumber: "PhoneNumber",
	DateTime:    "DateTime",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	_, ok := fieldTypeNames[t]
	return ok
}

// DefaultPattern returns the number format pattern used when a field sets none.
func (t FieldType) DefaultPattern() string {
	return defaultPatterns[t]
}

// Field describes how one record field maps onto a column.
type Field struct {
	Name        string    // token used to select the field, usually the Go field name
	DisplayName string    // must match the header cell text exactly
	ColumnID    int       // 1-based, column A is 1
	Type        FieldType // how cells are parsed and formatted
	Pattern     string    // optional number format override
}

// FormatPattern returns Pattern, or the default pattern of the field type.
func (f Field) FormatPattern() string {
	if f.Pattern != "" {
		return f.Pattern
	}
	return f.Type.DefaultPattern()
}

// Record is implemented by every type a Schema maps. Embed BaseRecord to get it.
type Record interface {
	RowID() int
	SetRowID(id int)
}

// BaseRecord carries the 1-based row number a record was read from or written to.
type BaseRecord struct {
	Row int
}

func (r *BaseRecord) RowID() int      { return r.Row }
func (r *BaseRecord) SetRowID(id int) { r.Row = id }

// Binding ties a Field to the struct field it is read from and written to.
type Binding[T Record] struct {
	Field Field
	// Target returns a pointer to the struct field of rec.
	Target func(rec T) any
}

// Bind returns a Binding. target must return a pointer to the field, for example
//
//	sheetorm.Bind(sheetorm.Field{Name: "Name", DisplayName: "Name", ColumnID: 1},
//		func(r *Donor) any { return &r.Name })
func Bind[T Record](field Field, target func(rec T) any) Binding[T] {
	return Binding[T]{Field: field, Target: target}
}

// Schema is the ordered set of field bindings of a record type.
type Schema[T Record] struct {
	newRecord func() T
	bindings  []Binding[T] // ascending by ColumnID
	byName    map[string]int
}

// NewSchema validates the bindings and returns them ordered by column id.
// newRecord creates an empty record; it may be nil for write-only use, in
// which case reading records fails with ErrMissingConstructor.
func NewSchema[T Record](newRecord func() T, bindings ...Binding[T]) (*Schema[T], error) {
	if len(bindings) == 0 {
		return nil, ErrEmptySchema
	}

	sorted := make([]Binding[T], len(bindings))
	copy(sorted, bindings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Field.ColumnID < sorted[j].Field.ColumnID
	})

	s := &Schema[T]{
		newRecord: newRecord,
		bindings:  sorted,
		byName:    make(map[string]int, len(sorted)),
	}

	var probe T
	if newRecord != nil {
		probe = newRecord()
	}
	for i, b := range sorted {
		f := b.Field
		if f.Name == "" {
			return nil, fmt.Errorf("field at column %d has no name: %w", f.ColumnID, ErrUnknownField)
		}
		if f.ColumnID < 1 {
			return nil, fmt.Errorf("field %q: %w (got %d)", f.Name, ErrInvalidColumn, f.ColumnID)
		}
		if i > 0 && sorted[i-1].Field.ColumnID == f.ColumnID {
			return nil, fmt.Errorf("fields %q and %q: %w %d",
				sorted[i-1].Field.Name, f.Name, ErrDuplicateColumn, f.ColumnID)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("field %q: %w: %s", f.Name, ErrUnsupportedFieldType, f.Type)
		}
		if b.Target == nil {
			return nil, fmt.Errorf("field %q: %w: no target", f.Name, ErrFieldTarget)
		}
		if newRecord != nil {
			if err := checkTarget(f, b.Target(probe)); err != nil {
				return nil, err
			}
		}
		s.byName[f.Name] = i
	}

	return s, nil
}

// checkTarget verifies that ptr is a pointer kind the codec handles for f.Type.
func checkTarget(f Field, ptr any) error {
	ok := false
	switch f.Type {
	case String:
		switch ptr.(type) {
		case *string, **string:
			ok = true
		}
	case Number, Currency:
		switch ptr.(type) {
		case *float64, **float64:
			ok = true
		}
	case PhoneNumber:
		switch ptr.(type) {
		case *int64, **int64:
			ok = true
		}
	case Integer:
		switch ptr.(type) {
		case *int64, **int64, *int, **int:
			ok = true
		}
	case Boolean:
		switch ptr.(type) {
		case *bool, **bool:
			ok = true
		}
	case DateTime:
		switch ptr.(type) {
		case *time.Time, **time.Time:
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("field %q (%s): %w: %T", f.Name, f.Type, ErrFieldTarget, ptr)
	}
	return nil
}

// Fields returns the field descriptions ordered by column id.
func (s *Schema[T]) Fields() []Field {
	fields := make([]Field, len(s.bindings))
	for i, b := range s.bindings {
		fields[i] = b.Field
	}
	return fields
}

// Field looks a field up by name.
func (s *Schema[T]) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.bindings[i].Field, true
}

// ColumnID returns the column id of the named field.
func (s *Schema[T]) ColumnID(name string) (int, error) {
	f, ok := s.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f.ColumnID, nil
}

func (s *Schema[T]) MinColumnID() int { return s.bindings[0].Field.ColumnID }
func (s *Schema[T]) MaxColumnID() int { return s.bindings[len(s.bindings)-1].Field.ColumnID }

// Headers returns the display names in column order.
func (s *Schema[T]) Headers() []string {
	headers := make([]string, len(s.bindings))
	for i, b := range s.bindings {
		headers[i] = b.Field.DisplayName
	}
	return headers
}

// New returns an empty record.
func (s *Schema[T]) New() (T, error) {
	if s.newRecord == nil {
		var zero T
		return zero, ErrMissingConstructor
	}
	return s.newRecord(), nil
}

// HasConstructor reports whether the schema can create records.
func (s *Schema[T]) HasConstructor() bool {
	return s.newRecord != nil
}
