package sheetorm

import (
	"fmt"
	"time"
)

// dateLayouts are accepted for DateTime cells that hold text instead of a serial number.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// Populate fills rec from a raw row whose first cell is column minColumnID.
// Fields whose column lies outside the row are left untouched, and so are
// blank non-string cells.
func (s *Schema[T]) Populate(rec T, row []any, minColumnID int) error {
	if minColumnID < 1 {
		minColumnID = 1
	}
	for _, b := range s.bindings {
		idx := b.Field.ColumnID - minColumnID
		if idx < 0 || idx >= len(row) {
			continue
		}
		if err := assign(b.Field, b.Target(rec), cellText(row[idx])); err != nil {
			return fmt.Errorf("field %q (column %s): %w", b.Field.Name, ColumnLetters(b.Field.ColumnID), err)
		}
	}
	return nil
}

// Decode creates a record for rowID and populates it from row.
func (s *Schema[T]) Decode(row []any, rowID, minColumnID int) (T, error) {
	rec, err := s.New()
	if err != nil {
		return rec, err
	}
	rec.SetRowID(rowID)
	if err := s.Populate(rec, row, minColumnID); err != nil {
		var zero T
		return zero, fmt.Errorf("row %d: %w", rowID, err)
	}
	return rec, nil
}

// CellUpdates converts rec into one single-cell update per field, in column order.
func (s *Schema[T]) CellUpdates(rec T, tabName string) ([]CellUpdate, error) {
	updates := make([]CellUpdate, 0, len(s.bindings))
	for _, b := range s.bindings {
		cell, err := encode(b.Field, b.Target(rec))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", b.Field.Name, err)
		}
		updates = append(updates, CellUpdate{
			Range: NewCell(tabName, b.Field.ColumnID, rec.RowID()),
			Cell:  cell,
			Field: b.Field,
		})
	}
	return updates, nil
}

// Row converts rec into a row starting at column A. Columns the schema does
// not map are blank.
func (s *Schema[T]) Row(rec T) ([]Cell, error) {
	row := make([]Cell, s.MaxColumnID())
	for _, b := range s.bindings {
		cell, err := encode(b.Field, b.Target(rec))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", b.Field.Name, err)
		}
		row[b.Field.ColumnID-1] = cell
	}
	return row, nil
}

// FilterToFields returns the updates of the named fields, in the order given.
func (s *Schema[T]) FilterToFields(all []CellUpdate, names ...string) ([]CellUpdate, error) {
	result := make([]CellUpdate, 0, len(names))
	for _, name := range names {
		col, err := s.ColumnID(name)
		if err != nil {
			return nil, err
		}
		found := false
		for _, u := range all {
			if u.Field.ColumnID == col {
				result = append(result, u)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrFieldNotInUpdates, name)
		}
	}
	return result, nil
}

// Value returns the current value of the named field of rec. Pointer fields
// are dereferenced; a nil pointer yields nil.
func (s *Schema[T]) Value(rec T, name string) (any, error) {
	i, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	switch p := s.bindings[i].Target(rec).(type) {
	case *string:
		return *p, nil
	case **string:
		return derefOrNil(*p), nil
	case *float64:
		return *p, nil
	case **float64:
		return derefOrNil(*p), nil
	case *int64:
		return *p, nil
	case **int64:
		return derefOrNil(*p), nil
	case *int:
		return *p, nil
	case **int:
		return derefOrNil(*p), nil
	case *bool:
		return *p, nil
	case **bool:
		return derefOrNil(*p), nil
	case *time.Time:
		return *p, nil
	case **time.Time:
		return derefOrNil(*p), nil
	default:
		return nil, fmt.Errorf("field %q: %w: %T", name, ErrFieldTarget, p)
	}
}

func derefOrNil[V any](p *V) any {
	if p == nil {
		return nil
	}
	return *p
}

func assign(f Field, ptr any, text string) error {
	switch f.Type {
	case String:
		switch p := ptr.(type) {
		case *string:
			*p = text
			return nil
		case **string:
			*p = &text
			return nil
		}
	case Currency, Number:
		if isBlank(text) {
			return nil
		}
		parse := ParseNumber
		if f.Type == Currency {
			parse = ParseCurrency
		}
		v, err := parse(text)
		if err != nil {
			return err
		}
		switch p := ptr.(type) {
		case *float64:
			*p = v
			return nil
		case **float64:
			*p = &v
			return nil
		}
	case PhoneNumber:
		n, ok, err := ParsePhoneNumber(text)
		if err != nil || !ok {
			return err
		}
		switch p := ptr.(type) {
		case *int64:
			*p = n
			return nil
		case **int64:
			*p = &n
			return nil
		}
	case Integer:
		if isBlank(text) {
			return nil
		}
		n, err := ParseInteger(text)
		if err != nil {
			return err
		}
		switch p := ptr.(type) {
		case *int64:
			*p = n
			return nil
		case **int64:
			*p = &n
			return nil
		case *int:
			*p = int(n)
			return nil
		case **int:
			v := int(n)
			*p = &v
			return nil
		}
	case Boolean:
		if isBlank(text) {
			return nil
		}
		v, err := ParseBool(text)
		if err != nil {
			return err
		}
		switch p := ptr.(type) {
		case *bool:
			*p = v
			return nil
		case **bool:
			*p = &v
			return nil
		}
	case DateTime:
		if isBlank(text) {
			return nil
		}
		t, err := parseDateTime(text)
		if err != nil {
			return err
		}
		switch p := ptr.(type) {
		case *time.Time:
			*p = t
			return nil
		case **time.Time:
			*p = &t
			return nil
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFieldType, f.Type)
	}
	return fmt.Errorf("%w: %T for %s", ErrFieldTarget, ptr, f.Type)
}

func parseDateTime(text string) (time.Time, error) {
	if serial, err := ParseNumber(text); err == nil {
		return TimeFromSerial(serial), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidValue, text)
}

func encode(f Field, ptr any) (Cell, error) {
	var format *NumberFormat
	switch f.Type {
	case Currency:
		format = &NumberFormat{Type: FormatCurrency, Pattern: f.FormatPattern()}
	case Number, PhoneNumber, Integer:
		format = &NumberFormat{Type: FormatNumber, Pattern: f.FormatPattern()}
	case DateTime:
		format = &NumberFormat{Type: FormatDateTime, Pattern: f.FormatPattern()}
	case String, Boolean:
	default:
		return Cell{}, fmt.Errorf("%w: %s", ErrUnsupportedFieldType, f.Type)
	}

	cell := Cell{Format: format}
	switch p := ptr.(type) {
	case *string:
		cell.Value = *p
	case **string:
		cell.Value = ""
		if *p != nil {
			cell.Value = **p
		}
	case *float64:
		cell.Value = *p
	case **float64:
		if *p != nil {
			cell.Value = **p
		}
	case *int64:
		if *p != 0 || f.Type != PhoneNumber {
			cell.Value = float64(*p)
		}
	case **int64:
		if *p != nil && (**p != 0 || f.Type != PhoneNumber) {
			cell.Value = float64(**p)
		}
	case *int:
		cell.Value = float64(*p)
	case **int:
		if *p != nil {
			cell.Value = float64(**p)
		}
	case *bool:
		cell.Value = *p
	case **bool:
		if *p != nil {
			cell.Value = **p
		}
	case *time.Time:
		cell.Value = SerialFromTime(*p)
	case **time.Time:
		if *p != nil {
			cell.Value = SerialFromTime(**p)
		}
	default:
		return Cell{}, fmt.Errorf("%w: %T for %s", ErrFieldTarget, ptr, f.Type)
	}
	return cell, nil
}
