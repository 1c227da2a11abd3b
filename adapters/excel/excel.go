package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ideamans/go-sheetorm"
	"github.com/xuri/excelize/v2"
)

// Adapter implements sheetorm.Transport on a local Excel workbook. Every call
// opens the file, and writes save it before returning.
type Adapter struct {
	config *Config
	mu     sync.RWMutex
}

var _ sheetorm.Transport = (*Adapter)(nil)

// New creates an Adapter.
func New(config *Config) (*Adapter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configCopy := *config
	return &Adapter{
		config: &configCopy,
	}, nil
}

// GetRows reads raw cell values: numbers and dates come back as plain numbers.
// A missing file or sheet reads as empty.
func (a *Adapter) GetRows(ctx context.Context, rng sheetorm.Range) ([][]any, error) {
	rows, err := a.readRows(ctx, rng, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	result := make([][]any, len(rows))
	for i, row := range rows {
		result[i] = make([]any, len(row))
		for j, v := range row {
			result[i][j] = v
		}
	}
	return result, nil
}

// GetFormattedRows reads cell values as displayed with their number formats.
func (a *Adapter) GetFormattedRows(ctx context.Context, rng sheetorm.Range) ([][]string, error) {
	return a.readRows(ctx, rng)
}

func (a *Adapter) readRows(ctx context.Context, rng sheetorm.Range, opts ...excelize.Options) ([][]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, _, err := a.open(false)
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()

	sheet, ok := findSheet(f, rng.TabName())
	if !ok {
		return nil, nil
	}
	rows, err := f.GetRows(sheet, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return sliceRange(rows, rng), nil
}

// sliceRange cuts the rows and columns of rng out of a sheet's rows. Rows
// keep their trailing cells trimmed the way excelize returns them.
func sliceRange(rows [][]string, rng sheetorm.Range) [][]string {
	first := rng.StartRow() - 1
	last := len(rows)
	if end, ok := rng.EndRow(); ok && end < last {
		last = end
	}
	if first >= last {
		return nil
	}

	firstCol := rng.StartColumn() - 1
	lastCol := rng.StartColumn()
	if end, ok := rng.EndColumn(); ok {
		lastCol = end
	}

	result := make([][]string, 0, last-first)
	for _, row := range rows[first:last] {
		var cells []string
		if firstCol < len(row) {
			cells = row[firstCol:min(lastCol, len(row))]
		}
		result = append(result, cells)
	}
	return result
}

// TabNames lists the sheets of the workbook.
func (a *Adapter) TabNames(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, _, err := a.open(false)
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// AppendRows writes rows below the last non-empty row, creating the workbook
// and the sheet when they do not exist yet.
func (a *Adapter) AppendRows(ctx context.Context, tab string, rows [][]sheetorm.Cell) error {
	if len(rows) == 0 {
		return nil
	}
	return a.update(ctx, tab, true, func(f *excelize.File, sheet string) error {
		existing, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to get rows: %w", err)
		}
		w := newCellWriter(f, sheet)
		for i, row := range rows {
			for j, c := range row {
				if err := w.write(j+1, len(existing)+i+1, c); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// AppendStrings appends rows of plain text cells.
func (a *Adapter) AppendStrings(ctx context.Context, tab string, rows [][]string) error {
	cells := make([][]sheetorm.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]sheetorm.Cell, len(row))
		for j, v := range row {
			cells[i][j] = sheetorm.Cell{Value: v}
		}
	}
	return a.AppendRows(ctx, tab, cells)
}

// BatchWrite writes each update to its cell and saves once.
func (a *Adapter) BatchWrite(ctx context.Context, tab string, updates []sheetorm.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return a.update(ctx, tab, false, func(f *excelize.File, sheet string) error {
		w := newCellWriter(f, sheet)
		for _, u := range updates {
			if err := w.write(u.Range.StartColumn(), u.Range.StartRow(), u.Cell); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRow removes a 1-based row, shifting the rows below it up.
func (a *Adapter) DeleteRow(ctx context.Context, tab string, row int) error {
	if row < 1 {
		return fmt.Errorf("%w: cannot delete row %d", sheetorm.ErrInvalidOperation, row)
	}
	return a.update(ctx, tab, false, func(f *excelize.File, sheet string) error {
		if err := f.RemoveRow(sheet, row); err != nil {
			return fmt.Errorf("failed to remove row %d: %w", row, err)
		}
		return nil
	})
}

// update opens the workbook, applies fn to the resolved sheet and saves.
func (a *Adapter) update(ctx context.Context, tab string, create bool, fn func(f *excelize.File, sheet string) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, created, err := a.open(create)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("%w: %s", os.ErrNotExist, a.config.FilePath)
	}
	defer f.Close()

	sheet, ok := findSheet(f, tab)
	if !ok {
		if !create {
			return fmt.Errorf("%w: %q", ErrSheetNotFound, tab)
		}
		if sheet, err = addSheet(f, tab, created); err != nil {
			return err
		}
	}

	if err := fn(f, sheet); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(a.config.FilePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(a.config.FilePath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// open opens the workbook. A missing file yields a new workbook when create
// is set, and nil otherwise.
func (a *Adapter) open(create bool) (f *excelize.File, created bool, err error) {
	f, err = excelize.OpenFile(a.config.FilePath)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidFileFormat, err)
	}
	if !create {
		return nil, false, nil
	}
	return excelize.NewFile(), true, nil
}

// findSheet matches a sheet name case-insensitively. An empty name selects the first sheet.
func findSheet(f *excelize.File, tab string) (string, bool) {
	list := f.GetSheetList()
	if len(list) == 0 {
		return "", false
	}
	if tab == "" {
		return list[0], true
	}
	for _, name := range list {
		if strings.EqualFold(name, tab) {
			return name, true
		}
	}
	return "", false
}

// addSheet creates tab. A new workbook drops its default sheet.
func addSheet(f *excelize.File, tab string, created bool) (string, error) {
	index, err := f.NewSheet(tab)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if defaultSheet := f.GetSheetName(0); created && defaultSheet != tab {
		_ = f.DeleteSheet(defaultSheet)
	}
	return tab, nil
}

// cellWriter sets cell values and number formats, sharing one style per pattern.
type cellWriter struct {
	f      *excelize.File
	sheet  string
	styles map[string]int
}

func newCellWriter(f *excelize.File, sheet string) *cellWriter {
	return &cellWriter{f: f, sheet: sheet, styles: make(map[string]int)}
}

func (w *cellWriter) write(col, row int, c sheetorm.Cell) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	switch v := c.Value.(type) {
	case nil:
		err = w.f.SetCellStr(w.sheet, name, "")
	case string:
		err = w.f.SetCellStr(w.sheet, name, v)
	case float64:
		err = w.f.SetCellFloat(w.sheet, name, v, -1, 64)
	case bool:
		err = w.f.SetCellBool(w.sheet, name, v)
	default:
		err = w.f.SetCellValue(w.sheet, name, v)
	}
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}

	if c.Format == nil || c.Format.Pattern == "" {
		return nil
	}
	style, err := w.style(c.Format.Pattern)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, name, name, style)
}

func (w *cellWriter) style(pattern string) (int, error) {
	if id, ok := w.styles[pattern]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{CustomNumFmt: &pattern})
	if err != nil {
		return 0, fmt.Errorf("failed to create number format %q: %w", pattern, err)
	}
	w.styles[pattern] = id
	return id, nil
}
