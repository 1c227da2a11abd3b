package sheetorm

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is a rectangular or single-cell region of a tab.
//
// Row and column numbers are 1-based. The end column and end row are optional;
// a Range without an end row is a single cell, and a Range without an end column
// has no A1 form. The A1 and R1C1 forms are recomputed by every setter.
//
// A Range with an end column but no end row is an open column range such as
// "C2:E". It reports CanSupportA1 and IsSingleCell as true and its R1C1 form
// only names the start cell, so String prefers the A1 form.
type Range struct {
	tabName     string
	startColumn int
	startRow    int
	endColumn   int // 0 when absent
	endRow      int // 0 when absent

	a1           string
	r1c1         string
	canSupportA1 bool
	isSingleCell bool
}

// NewCell returns a single-cell range.
func NewCell(tabName string, column, row int) Range {
	r := Range{tabName: tabName, startColumn: column, startRow: row}
	r.recompute()
	return r
}

// NewRange returns a closed rectangular range.
func NewRange(tabName string, startColumn, startRow, endColumn, endRow int) Range {
	r := Range{
		tabName:     tabName,
		startColumn: startColumn,
		startRow:    startRow,
		endColumn:   endColumn,
		endRow:      endRow,
	}
	r.recompute()
	return r
}

// NewOpenRange returns a range spanning startColumn..endColumn from startRow
// down to the last row of the tab.
func NewOpenRange(tabName string, startColumn, startRow, endColumn int) Range {
	r := Range{
		tabName:     tabName,
		startColumn: startColumn,
		startRow:    startRow,
		endColumn:   endColumn,
	}
	r.recompute()
	return r
}

// TabName returns the tab the range belongs to, or "" for the first tab.
func (r Range) TabName() string { return r.tabName }

// StartColumn returns the 1-based first column.
func (r Range) StartColumn() int { return r.startColumn }

// StartRow returns the 1-based first row.
func (r Range) StartRow() int { return r.startRow }

// EndColumn returns the end column and whether it is set.
func (r Range) EndColumn() (int, bool) { return r.endColumn, r.endColumn > 0 }

// EndRow returns the end row and whether it is set.
func (r Range) EndRow() (int, bool) { return r.endRow, r.endRow > 0 }

// A1Notation returns the A1 form, or false when the range has no end column.
func (r Range) A1Notation() (string, bool) { return r.a1, r.canSupportA1 }

// R1C1Notation returns the R1C1 form, which every range has.
func (r Range) R1C1Notation() string { return r.r1c1 }

// CanSupportA1 reports whether the range has an A1 form.
func (r Range) CanSupportA1() bool { return r.canSupportA1 }

// IsSingleCell reports whether the range addresses exactly one cell.
func (r Range) IsSingleCell() bool { return r.isSingleCell }

// String returns the notation sent to the API: A1 when available, R1C1 otherwise.
func (r Range) String() string {
	if r.canSupportA1 {
		return r.a1
	}
	return r.r1c1
}

// Equal reports whether both ranges have the same bounds, tab and notations.
func (r Range) Equal(o Range) bool {
	return r.a1 == o.a1 &&
		r.r1c1 == o.r1c1 &&
		r.canSupportA1 == o.canSupportA1 &&
		r.isSingleCell == o.isSingleCell &&
		r.startColumn == o.startColumn &&
		r.startRow == o.startRow &&
		r.endColumn == o.endColumn &&
		r.endRow == o.endRow &&
		r.tabName == o.tabName
}

// Contains reports whether the cell at column, row lies inside the range.
// Open ends extend without limit.
func (r Range) Contains(column, row int) bool {
	if column < r.startColumn || row < r.startRow {
		return false
	}
	if r.endColumn > 0 && column > r.endColumn {
		return false
	}
	if r.endColumn == 0 && column != r.startColumn {
		return false
	}
	if r.endRow > 0 && row > r.endRow {
		return false
	}
	if r.endRow == 0 && r.endColumn == 0 && row != r.startRow {
		return false
	}
	return true
}

// SetTabName moves the range to another tab.
func (r *Range) SetTabName(name string) {
	r.tabName = name
	r.recompute()
}

// SetStartColumn sets the first column.
func (r *Range) SetStartColumn(column int) {
	r.startColumn = column
	r.recompute()
}

// SetStartRow sets the first row.
func (r *Range) SetStartRow(row int) {
	r.startRow = row
	r.recompute()
}

// SetEndColumn sets the last column.
func (r *Range) SetEndColumn(column int) {
	r.endColumn = column
	r.recompute()
}

// ClearEndColumn removes the end column, leaving an R1C1-only range.
func (r *Range) ClearEndColumn() {
	r.endColumn = 0
	r.recompute()
}

// SetEndRow sets the last row.
func (r *Range) SetEndRow(row int) {
	r.endRow = row
	r.recompute()
}

// ClearEndRow opens the range downward.
func (r *Range) ClearEndRow() {
	r.endRow = 0
	r.recompute()
}

func (r *Range) recompute() {
	if r.endColumn < 0 {
		r.endColumn = 0
	}
	if r.endRow < 0 {
		r.endRow = 0
	}

	prefix := ""
	if r.tabName != "" {
		prefix = quoteTabName(r.tabName) + "!"
	}

	r.isSingleCell = r.endRow == 0
	if r.endRow > 0 && r.endColumn > 0 {
		r.r1c1 = prefix + "R" + strconv.Itoa(r.startRow) + "C" + strconv.Itoa(r.startColumn) +
			":R" + strconv.Itoa(r.endRow) + "C" + strconv.Itoa(r.endColumn)
	} else {
		r.r1c1 = prefix + "R" + strconv.Itoa(r.startRow) + "C" + strconv.Itoa(r.startColumn)
	}

	r.canSupportA1 = r.endColumn > 0
	if !r.canSupportA1 {
		r.a1 = ""
		return
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(ColumnLetters(r.startColumn))
	sb.WriteString(strconv.Itoa(r.startRow))
	sb.WriteByte(':')
	sb.WriteString(ColumnLetters(r.endColumn))
	if r.endRow > 0 {
		sb.WriteString(strconv.Itoa(r.endRow))
	}
	r.a1 = sb.String()
}

var plainTabName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// quoteTabName wraps names the API would not accept bare in single quotes.
func quoteTabName(name string) string {
	if plainTabName.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
