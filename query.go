package sheetorm

import (
	"context"
	"fmt"
	"time"
)

// Condition compares one field of a record with a value.
type Condition struct {
	Field    string // field name
	Operator string // ==, !=, >, >=, <, <=, in, between
	Value    any    // []any for in, [2]any or []any of two for between
}

// Query selects records matching all conditions.
type Query struct {
	Conditions []Condition
	Limit      int
	Offset     int
}

var validOperators = map[string]bool{
	"==": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true, "in": true, "between": true,
}

// Query reads all records and returns those matching q.
func (r *Repository[T]) Query(ctx context.Context, q Query) ([]T, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	for _, cond := range q.Conditions {
		if _, ok := r.schema.Field(cond.Field); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, cond.Field)
		}
	}

	records, err := r.GetAllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyQuery(r.schema, records, q)
}

// ApplyQuery filters records and applies the offset and limit of q.
func ApplyQuery[T Record](schema *Schema[T], records []T, q Query) ([]T, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	var results []T
	for _, rec := range records {
		ok, err := matches(schema, rec, q)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, rec)
		}
	}

	if q.Offset >= len(results) {
		return []T{}, nil
	}
	results = results[q.Offset:]
	if q.Limit > 0 && q.Limit < len(results) {
		results = results[:q.Limit]
	}
	return results, nil
}

func matches[T Record](schema *Schema[T], rec T, q Query) (bool, error) {
	for _, cond := range q.Conditions {
		value, err := schema.Value(rec, cond.Field)
		if err != nil {
			return false, err
		}
		if !evalCondition(value, cond) {
			return false, nil
		}
	}
	return true, nil
}

func evalCondition(value any, cond Condition) bool {
	switch cond.Operator {
	case "==":
		return compareEqual(value, cond.Value)
	case "!=":
		return !compareEqual(value, cond.Value)
	case ">":
		return compareOrdered(value, cond.Value, func(a, b float64) bool { return a > b })
	case ">=":
		return compareOrdered(value, cond.Value, func(a, b float64) bool { return a >= b })
	case "<":
		return compareOrdered(value, cond.Value, func(a, b float64) bool { return a < b })
	case "<=":
		return compareOrdered(value, cond.Value, func(a, b float64) bool { return a <= b })
	case "in":
		return compareIn(value, cond.Value)
	case "between":
		return compareBetween(value, cond.Value)
	default:
		return false
	}
}

func compareEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if isOrdered(a) && isOrdered(b) {
		return toFloat64(a) == toFloat64(b)
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func compareOrdered(a, b any, cmp func(a, b float64) bool) bool {
	if !isOrdered(a) || !isOrdered(b) {
		return false
	}
	return cmp(toFloat64(a), toFloat64(b))
}

func compareIn(a, b any) bool {
	list, ok := b.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

func compareBetween(a, b any) bool {
	lo, hi, ok := bounds(b)
	if !ok || !isOrdered(a) || !isOrdered(lo) || !isOrdered(hi) {
		return false
	}
	v := toFloat64(a)
	return v >= toFloat64(lo) && v <= toFloat64(hi)
}

func bounds(v any) (lo, hi any, ok bool) {
	switch b := v.(type) {
	case [2]any:
		return b[0], b[1], true
	case []any:
		if len(b) == 2 {
			return b[0], b[1], true
		}
	}
	return nil, nil, false
}

// isOrdered reports whether v is a number or a time.
func isOrdered(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, time.Time:
		return true
	default:
		return false
	}
}

// toFloat64 converts an ordered value to float64. Times become serial day numbers.
func toFloat64(v any) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case time.Time:
		return SerialFromTime(val)
	default:
		return 0
	}
}

// ValidateQuery checks operators, operand shapes, limit and offset.
func ValidateQuery(q Query) error {
	for i, cond := range q.Conditions {
		if !validOperators[cond.Operator] {
			return fmt.Errorf("%w: invalid operator '%s' in condition %d", ErrInvalidQuery, cond.Operator, i)
		}
		if cond.Operator == "in" {
			if _, ok := cond.Value.([]any); !ok {
				return fmt.Errorf("%w: operator 'in' requires []any value in condition %d", ErrInvalidQuery, i)
			}
		}
		if cond.Operator == "between" {
			if _, _, ok := bounds(cond.Value); !ok {
				return fmt.Errorf("%w: operator 'between' requires two bounds in condition %d", ErrInvalidQuery, i)
			}
		}
		if cond.Field == "" {
			return fmt.Errorf("%w: empty field name in condition %d", ErrInvalidQuery, i)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative", ErrInvalidQuery)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative", ErrInvalidQuery)
	}
	return nil
}
