package sheetorm

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Repository reads and writes the records of one tab through a Transport.
//
// Whether the table has a header row is fixed at construction. The header
// range spans the schema's columns on a single row; the data range spans the
// same columns from the first data row down to the end of the tab.
type Repository[T Record] struct {
	schema    *Schema[T]
	transport Transport
	config    Config
	logger    *slog.Logger

	headerRange Range
	dataRange   Range

	ctorOnce sync.Once
	ctorErr  error
}

// New creates a Repository. A nil cfg selects DefaultConfig("").
func New[T Record](schema *Schema[T], transport Transport, cfg *Config) (*Repository[T], error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: schema is nil", ErrInvalidConfig)
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is nil", ErrInvalidConfig)
	}
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Repository[T]{
		schema:    schema,
		transport: transport,
		config:    *cfg,
		logger:    cfg.Logger,
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	minCol, maxCol := schema.MinColumnID(), schema.MaxColumnID()
	if cfg.HasHeaderRow {
		headerRow := 1 + cfg.HeaderRowOffset
		r.headerRange = NewRange(cfg.TabName, minCol, headerRow, maxCol, headerRow)
		r.dataRange = NewOpenRange(cfg.TabName, minCol, headerRow+1+cfg.DataTableRowOffset, maxCol)
	} else {
		r.dataRange = NewOpenRange(cfg.TabName, minCol, 1+cfg.DataTableRowOffset, maxCol)
	}
	return r, nil
}

// Schema returns the schema the repository maps with.
func (r *Repository[T]) Schema() *Schema[T] { return r.schema }

// HeaderRange returns the header range, or false when the table has no header row.
func (r *Repository[T]) HeaderRange() (Range, bool) {
	return r.headerRange, r.config.HasHeaderRow
}

// DataRange returns the open range holding the data rows.
func (r *Repository[T]) DataRange() Range { return r.dataRange }

// GetAllRecords reads every data row. Row ids follow the position in the
// tab; rows that are entirely empty are skipped.
func (r *Repository[T]) GetAllRecords(ctx context.Context) ([]T, error) {
	rows, err := r.transport.GetRows(ctx, r.dataRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.dataRange, err)
	}
	r.logger.Debug("read rows", "range", r.dataRange.String(), "rows", len(rows))

	records := make([]T, 0, len(rows))
	if len(rows) == 0 {
		return records, nil
	}
	if err := r.checkConstructor(); err != nil {
		return nil, err
	}

	startRow, startCol := r.dataRange.StartRow(), r.dataRange.StartColumn()
	for i, row := range rows {
		rec, err := r.schema.Decode(row, startRow+i, startCol)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Repository[T]) checkConstructor() error {
	r.ctorOnce.Do(func() {
		if !r.schema.HasConstructor() {
			r.ctorErr = ErrMissingConstructor
		}
	})
	return r.ctorErr
}

// AddRecord appends rec as a new row at the end of the tab.
func (r *Repository[T]) AddRecord(ctx context.Context, rec T) error {
	return r.AddRecords(ctx, rec)
}

// AddRecords appends the records in a single request. Nil records are skipped.
func (r *Repository[T]) AddRecords(ctx context.Context, recs ...T) error {
	rows := make([][]Cell, 0, len(recs))
	for _, rec := range recs {
		if isNil(rec) {
			continue
		}
		row, err := r.schema.Row(rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	if err := r.transport.AppendRows(ctx, r.config.TabName, rows); err != nil {
		return fmt.Errorf("failed to append %d rows: %w", len(rows), err)
	}
	r.logger.Debug("appended rows", "tab", r.config.TabName, "rows", len(rows))
	return nil
}

// DeleteRecord deletes the row of rec. Rows below it move up, so row ids of
// records read earlier become stale.
func (r *Repository[T]) DeleteRecord(ctx context.Context, rec T) error {
	row, err := r.recordRow(rec)
	if err != nil {
		return err
	}
	if err := r.transport.DeleteRow(ctx, r.config.TabName, row); err != nil {
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}
	r.logger.Debug("deleted row", "tab", r.config.TabName, "row", row)
	return nil
}

// SaveFields writes the named fields of rec to its row in one request.
func (r *Repository[T]) SaveFields(ctx context.Context, rec T, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if _, err := r.recordRow(rec); err != nil {
		return err
	}
	all, err := r.schema.CellUpdates(rec, r.config.TabName)
	if err != nil {
		return err
	}
	updates, err := r.schema.FilterToFields(all, names...)
	if err != nil {
		return err
	}
	return r.write(ctx, updates)
}

// SaveField writes a single field of rec.
func (r *Repository[T]) SaveField(ctx context.Context, rec T, name string) error {
	return r.SaveFields(ctx, rec, name)
}

// SaveRecord writes every field of rec to its row.
func (r *Repository[T]) SaveRecord(ctx context.Context, rec T) error {
	if _, err := r.recordRow(rec); err != nil {
		return err
	}
	updates, err := r.schema.CellUpdates(rec, r.config.TabName)
	if err != nil {
		return err
	}
	return r.write(ctx, updates)
}

func (r *Repository[T]) write(ctx context.Context, updates []CellUpdate) error {
	if err := r.transport.BatchWrite(ctx, r.config.TabName, updates); err != nil {
		return fmt.Errorf("failed to write %d cells: %w", len(updates), err)
	}
	r.logger.Debug("wrote cells", "tab", r.config.TabName, "cells", len(updates))
	return nil
}

// recordRow returns the row of rec, rejecting rows above the data range.
func (r *Repository[T]) recordRow(rec T) (int, error) {
	if isNil(rec) {
		return 0, fmt.Errorf("%w: record is nil", ErrInvalidOperation)
	}
	row := rec.RowID()
	if row < r.dataRange.StartRow() {
		return 0, fmt.Errorf("%w: row %d is outside the data range %s", ErrInvalidOperation, row, r.dataRange)
	}
	return row, nil
}

// ValidateSchema reads the header row and compares it with the schema.
func (r *Repository[T]) ValidateSchema(ctx context.Context) (ValidationResult, error) {
	if !r.config.HasHeaderRow {
		return ValidationResult{}, fmt.Errorf("%w: table has no header row", ErrInvalidOperation)
	}
	// Read from column A so the row lines up with column ids.
	row := r.headerRange.StartRow()
	rng := NewRange(r.config.TabName, 1, row, r.schema.MaxColumnID(), row)
	rows, err := r.transport.GetRows(ctx, rng)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("failed to read header %s: %w", rng, err)
	}
	var header []any
	if len(rows) > 0 {
		header = rows[0]
	}
	return r.ValidateSchemaRow(header)
}

// ValidateSchemaRow compares an explicit header row, starting at column A, with the schema.
func (r *Repository[T]) ValidateSchemaRow(row []any) (ValidationResult, error) {
	if !r.config.HasHeaderRow {
		return ValidationResult{}, fmt.Errorf("%w: table has no header row", ErrInvalidOperation)
	}
	result := r.schema.ValidateHeader(row)
	if !result.Valid {
		r.logger.Debug("header mismatch", "tab", r.config.TabName, "message", result.Message)
	}
	return result, nil
}

// WriteHeaders appends a row of display names. Only tables configured
// without a header row accept it.
func (r *Repository[T]) WriteHeaders(ctx context.Context) error {
	if r.config.HasHeaderRow {
		return fmt.Errorf("%w: header row is expected to exist", ErrInvalidOperation)
	}
	row := make([]Cell, r.schema.MaxColumnID())
	for _, f := range r.schema.Fields() {
		row[f.ColumnID-1] = Cell{Value: f.DisplayName}
	}
	if err := r.transport.AppendRows(ctx, r.config.TabName, [][]Cell{row}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
