package sheetio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ideamans/go-sheetorm"
	"github.com/xuri/excelize/v2"
)

// FormattedReader reads cell values as they are displayed.
type FormattedReader interface {
	GetFormattedRows(ctx context.Context, rng sheetorm.Range) ([][]string, error)
}

// TabLister lists the tabs of a spreadsheet.
type TabLister interface {
	TabNames(ctx context.Context) ([]string, error)
}

// ExportCSV writes the formatted rows of rng as CSV and returns the row count.
func ExportCSV(ctx context.Context, src FormattedReader, rng sheetorm.Range, w io.Writer, opts CSVOptions) (int, error) {
	rows, err := src.GetFormattedRows(ctx, rng)
	if err != nil {
		return 0, err
	}

	cw, closer, err := NewCSVWriter(w, opts)
	if err != nil {
		return 0, err
	}
	if err := cw.WriteAll(rows); err != nil {
		closer.Close()
		return 0, fmt.Errorf("failed to write csv: %w", err)
	}
	if err := closer.Close(); err != nil {
		return 0, fmt.Errorf("failed to encode csv: %w", err)
	}
	return len(rows), nil
}

// ExportXLSX writes the formatted rows of rng to a new workbook with a single
// sheet named after the tab. Text that reads as a plain number is stored as a
// number.
func ExportXLSX(ctx context.Context, src FormattedReader, rng sheetorm.Range, w io.Writer) (int, error) {
	rows, err := src.GetFormattedRows(ctx, rng)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	if name := rng.TabName(); name != "" {
		if err := f.SetSheetName(sheet, name); err != nil {
			return 0, fmt.Errorf("failed to name sheet %q: %w", name, err)
		}
		sheet = name
	}

	for i, row := range rows {
		for j, text := range row {
			if text == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return 0, err
			}
			if n, ok := plainNumber(text); ok {
				err = f.SetCellFloat(sheet, cell, n, -1, 64)
			} else {
				err = f.SetCellStr(sheet, cell, text)
			}
			if err != nil {
				return 0, fmt.Errorf("%s[%s]: %w", sheet, cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return len(rows), nil
}

// plainNumber reports whether text is a number without leading zeros, which
// identifiers such as zip codes carry.
func plainNumber(text string) (float64, bool) {
	digits := strings.TrimLeft(text, "+-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return 0, false
	}
	n, err := sheetorm.ParseNumber(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
