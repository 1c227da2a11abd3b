package sheetorm

import "context"

// Number format types understood by the Sheets API.
const (
	FormatNumber   = "NUMBER"
	FormatCurrency = "CURRENCY"
	FormatDateTime = "DATE_TIME"
)

// NumberFormat is the number format applied to a written cell.
type NumberFormat struct {
	Type    string
	Pattern string
}

// Cell is a value to write. A nil Value leaves the cell blank. Value is one of
// string, float64 or bool.
type Cell struct {
	Value  any
	Format *NumberFormat
}

// CellUpdate is a write to a single cell, produced from one schema field.
type CellUpdate struct {
	Range Range
	Cell  Cell
	Field Field
}

// Transport is the remote spreadsheet a Repository reads from and writes to.
type Transport interface {
	// GetRows returns the unformatted values of rng, dates as serial numbers.
	// Trailing empty rows and cells may be omitted.
	GetRows(ctx context.Context, rng Range) ([][]any, error)

	// AppendRows appends rows after the last row of the tab. The first cell
	// of each row lands in column A.
	AppendRows(ctx context.Context, tab string, rows [][]Cell) error

	// BatchWrite writes single-cell updates in one request, touching only
	// the value and number format of each cell.
	BatchWrite(ctx context.Context, tab string, updates []CellUpdate) error

	// DeleteRow removes the 1-based row and shifts the rows below it up.
	DeleteRow(ctx context.Context, tab string, row int) error
}
