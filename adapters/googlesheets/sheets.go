package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ideamans/go-sheetorm"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrTabNotFound is returned when a tab name matches no sheet of the spreadsheet.
var ErrTabNotFound = errors.New("tab not found")

// cellFields restricts cell writes to the value and number format so other
// formatting of the cell is preserved.
const cellFields = "userEnteredValue,userEnteredFormat.numberFormat"

// SheetsTransport implements sheetorm.Transport for a Google spreadsheet.
type SheetsTransport struct {
	service       *sheets.Service
	spreadsheetID string
	config        Config
	logger        *slog.Logger

	mu   sync.Mutex
	tabs []*sheets.SheetProperties // cached, nil until loaded
}

var _ sheetorm.Transport = (*SheetsTransport)(nil)

// NewSheetsTransport creates a transport with the given client options.
func NewSheetsTransport(ctx context.Context, config Config, opts ...option.ClientOption) (*SheetsTransport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SheetsTransport{
		service:       service,
		spreadsheetID: config.SpreadsheetID,
		config:        config,
		logger:        logger,
	}, nil
}

// GetRows reads unformatted values, with dates as serial numbers.
func (s *SheetsTransport) GetRows(ctx context.Context, rng sheetorm.Range) ([][]any, error) {
	var resp *sheets.ValueRange
	err := s.retry(ctx, "values.get", func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng.String()).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", rng, err)
	}
	return resp.Values, nil
}

// GetFormattedRows reads values as they are displayed.
func (s *SheetsTransport) GetFormattedRows(ctx context.Context, rng sheetorm.Range) ([][]string, error) {
	var resp *sheets.ValueRange
	err := s.retry(ctx, "values.get", func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng.String()).
			ValueRenderOption("FORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				rows[i][j] = fmt.Sprint(v)
			}
		}
	}
	return rows, nil
}

// TabNames lists the tab titles in sheet order.
func (s *SheetsTransport) TabNames(ctx context.Context) ([]string, error) {
	props, err := s.loadSheets(ctx, true)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Title
	}
	return names, nil
}

// AppendRows appends rows after the last row holding data.
func (s *SheetsTransport) AppendRows(ctx context.Context, tab string, rows [][]sheetorm.Cell) error {
	if len(rows) == 0 {
		return nil
	}
	sheetID, err := s.sheetID(ctx, tab)
	if err != nil {
		return err
	}

	data := make([]*sheets.RowData, len(rows))
	for i, row := range rows {
		cells := make([]*sheets.CellData, len(row))
		for j, c := range row {
			cells[j] = cellData(c)
		}
		data[i] = &sheets.RowData{Values: cells}
	}

	req := &sheets.Request{
		AppendCells: &sheets.AppendCellsRequest{
			SheetId:         sheetID,
			Rows:            data,
			Fields:          cellFields,
			ForceSendFields: []string{"SheetId"},
		},
	}
	return s.batchUpdate(ctx, []*sheets.Request{req})
}

// AppendStrings appends rows of plain text cells.
func (s *SheetsTransport) AppendStrings(ctx context.Context, tab string, rows [][]string) error {
	cells := make([][]sheetorm.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]sheetorm.Cell, len(row))
		for j, v := range row {
			cells[i][j] = sheetorm.Cell{Value: v}
		}
	}
	return s.AppendRows(ctx, tab, cells)
}

// BatchWrite writes single-cell updates with one batchUpdate request.
func (s *SheetsTransport) BatchWrite(ctx context.Context, tab string, updates []sheetorm.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	sheetID, err := s.sheetID(ctx, tab)
	if err != nil {
		return err
	}

	reqs := make([]*sheets.Request, len(updates))
	for i, u := range updates {
		reqs[i] = &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range:  gridRange(sheetID, u.Range),
				Cell:   cellData(u.Cell),
				Fields: cellFields,
			},
		}
	}
	return s.batchUpdate(ctx, reqs)
}

// DeleteRow deletes one 1-based row.
func (s *SheetsTransport) DeleteRow(ctx context.Context, tab string, row int) error {
	return s.DeleteRows(ctx, tab, row, 1)
}

// DeleteRows deletes count rows starting at the 1-based row start.
func (s *SheetsTransport) DeleteRows(ctx context.Context, tab string, start, count int) error {
	if start < 1 || count < 1 {
		return fmt.Errorf("%w: cannot delete %d rows at row %d", sheetorm.ErrInvalidOperation, count, start)
	}
	sheetID, err := s.sheetID(ctx, tab)
	if err != nil {
		return err
	}

	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "ROWS",
				StartIndex:      int64(start - 1),
				EndIndex:        int64(start - 1 + count),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	}
	return s.batchUpdate(ctx, []*sheets.Request{req})
}

func (s *SheetsTransport) batchUpdate(ctx context.Context, reqs []*sheets.Request) error {
	body := &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}
	err := s.retry(ctx, "batchUpdate", func() error {
		_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, body).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update spreadsheet: %w", err)
	}
	return nil
}

// sheetID resolves a tab name case-insensitively. An empty name selects the first tab.
func (s *SheetsTransport) sheetID(ctx context.Context, tab string) (int64, error) {
	props, err := s.loadSheets(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(props) == 0 {
		return 0, fmt.Errorf("%w: spreadsheet has no tabs", ErrTabNotFound)
	}
	if tab == "" {
		return props[0].SheetId, nil
	}
	for _, p := range props {
		if strings.EqualFold(p.Title, tab) {
			return p.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrTabNotFound, tab)
}

func (s *SheetsTransport) loadSheets(ctx context.Context, refresh bool) ([]*sheets.SheetProperties, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tabs != nil && !refresh {
		return s.tabs, nil
	}

	var resp *sheets.Spreadsheet
	err := s.retry(ctx, "get", func() error {
		var err error
		resp, err = s.service.Spreadsheets.Get(s.spreadsheetID).
			Fields("sheets(properties(sheetId,title))").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	props := make([]*sheets.SheetProperties, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			props = append(props, sh.Properties)
		}
	}
	s.tabs = props
	return props, nil
}

// retry runs fn until it succeeds, fails with a non-retryable error, or
// MaxRetries retries are spent. The backoff doubles from RetryInterval up to
// MaxRetryInterval.
func (s *SheetsTransport) retry(ctx context.Context, op string, fn func() error) error {
	backoff := s.config.RetryInterval
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil || !retryable(err) || attempt >= s.config.MaxRetries {
			return err
		}

		s.logger.Warn("retrying sheets request", "op", op, "attempt", attempt+1, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if s.config.MaxRetryInterval > 0 && backoff > s.config.MaxRetryInterval {
			backoff = s.config.MaxRetryInterval
		}
	}
}

func retryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

// gridRange converts a range to zero-based, end-exclusive grid coordinates.
// Open ends span a single row or column.
func gridRange(sheetID int64, rng sheetorm.Range) *sheets.GridRange {
	endCol, ok := rng.EndColumn()
	if !ok {
		endCol = rng.StartColumn()
	}
	endRow, ok := rng.EndRow()
	if !ok {
		endRow = rng.StartRow()
	}
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(rng.StartRow() - 1),
		EndRowIndex:      int64(endRow),
		StartColumnIndex: int64(rng.StartColumn() - 1),
		EndColumnIndex:   int64(endCol),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

func cellData(c sheetorm.Cell) *sheets.CellData {
	cd := &sheets.CellData{}
	switch v := c.Value.(type) {
	case string:
		cd.UserEnteredValue = &sheets.ExtendedValue{StringValue: &v}
	case float64:
		cd.UserEnteredValue = &sheets.ExtendedValue{NumberValue: &v}
	case bool:
		cd.UserEnteredValue = &sheets.ExtendedValue{BoolValue: &v}
	case nil:
	default:
		text := fmt.Sprint(v)
		cd.UserEnteredValue = &sheets.ExtendedValue{StringValue: &text}
	}
	if c.Format != nil {
		cd.UserEnteredFormat = &sheets.CellFormat{
			NumberFormat: &sheets.NumberFormat{Type: c.Format.Type, Pattern: c.Format.Pattern},
		}
	}
	return cd
}
