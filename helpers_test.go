package sheetorm_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ideamans/go-sheetorm"
)

type Donor struct {
	sheetorm.BaseRecord
	Name     string
	Phone    *int64
	Amount   *float64
	Donated  *time.Time
	Quantity float64
}

func donorBindings(offset int) []sheetorm.Binding[*Donor] {
	return []sheetorm.Binding[*Donor]{
		sheetorm.Bind(sheetorm.Field{Name: "Name", DisplayName: "Name", ColumnID: offset + 1, Type: sheetorm.String},
			func(d *Donor) any { return &d.Name }),
		sheetorm.Bind(sheetorm.Field{Name: "Phone", DisplayName: "Number", ColumnID: offset + 2, Type: sheetorm.PhoneNumber},
			func(d *Donor) any { return &d.Phone }),
		sheetorm.Bind(sheetorm.Field{Name: "Amount", DisplayName: "Price Amount", ColumnID: offset + 3, Type: sheetorm.Currency},
			func(d *Donor) any { return &d.Amount }),
		sheetorm.Bind(sheetorm.Field{Name: "Donated", DisplayName: "Date", ColumnID: offset + 4, Type: sheetorm.DateTime},
			func(d *Donor) any { return &d.Donated }),
		sheetorm.Bind(sheetorm.Field{Name: "Quantity", DisplayName: "Quantity", ColumnID: offset + 5, Type: sheetorm.Number},
			func(d *Donor) any { return &d.Quantity }),
	}
}

func newDonorSchema(t *testing.T, offset int) *sheetorm.Schema[*Donor] {
	t.Helper()
	schema, err := sheetorm.NewSchema(func() *Donor { return &Donor{} }, donorBindings(offset)...)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return schema
}

var errTransport = errors.New("transport failure")

// memoryTransport keeps one grid of raw values per tab. Grid row 0 is sheet row 1.
type memoryTransport struct {
	mu   sync.Mutex
	tabs map[string][][]any

	getRanges []sheetorm.Range
	appends   [][][]sheetorm.Cell
	writes    [][]sheetorm.CellUpdate
	deletes   []int

	failWith error
}

func newMemoryTransport() *memoryTransport {
	return &memoryTransport{tabs: make(map[string][][]any)}
}

func (m *memoryTransport) set(tab string, rows ...[]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := make([][]any, len(rows))
	for i, row := range rows {
		grid[i] = append([]any(nil), row...)
	}
	m.tabs[tab] = grid
}

func (m *memoryTransport) grid(tab string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabs[tab]
}

func (m *memoryTransport) GetRows(ctx context.Context, rng sheetorm.Range) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getRanges = append(m.getRanges, rng)
	if m.failWith != nil {
		return nil, m.failWith
	}

	grid := m.tabs[rng.TabName()]
	lastRow := len(grid)
	if end, ok := rng.EndRow(); ok && end < lastRow {
		lastRow = end
	}
	lastCol := rng.StartColumn()
	if end, ok := rng.EndColumn(); ok {
		lastCol = end
	}

	var rows [][]any
	for r := rng.StartRow(); r <= lastRow; r++ {
		src := grid[r-1]
		var row []any
		for c := rng.StartColumn(); c <= lastCol && c <= len(src); c++ {
			row = append(row, src[c-1])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *memoryTransport) AppendRows(ctx context.Context, tab string, rows [][]sheetorm.Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.appends = append(m.appends, rows)
	for _, cells := range rows {
		row := make([]any, len(cells))
		for i, c := range cells {
			row[i] = c.Value
		}
		m.tabs[tab] = append(m.tabs[tab], row)
	}
	return nil
}

func (m *memoryTransport) BatchWrite(ctx context.Context, tab string, updates []sheetorm.CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.writes = append(m.writes, updates)
	for _, u := range updates {
		r, c := u.Range.StartRow(), u.Range.StartColumn()
		for len(m.tabs[tab]) < r {
			m.tabs[tab] = append(m.tabs[tab], nil)
		}
		row := m.tabs[tab][r-1]
		for len(row) < c {
			row = append(row, nil)
		}
		row[c-1] = u.Cell.Value
		m.tabs[tab][r-1] = row
	}
	return nil
}

func (m *memoryTransport) DeleteRow(ctx context.Context, tab string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.deletes = append(m.deletes, row)
	grid := m.tabs[tab]
	if row >= 1 && row <= len(grid) {
		m.tabs[tab] = append(grid[:row-1], grid[row:]...)
	}
	return nil
}

func ptr[V any](v V) *V { return &v }
