package sheetio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"
)

// DefaultBatchSize is the number of rows sent per append call.
const DefaultBatchSize = 100

// Appender appends rows of text cells to a tab. Both bundled transports
// implement it.
type Appender interface {
	AppendStrings(ctx context.Context, tab string, rows [][]string) error
}

// AppendOptions controls AppendCSV.
type AppendOptions struct {
	CSVOptions

	// SkipHeader drops the first CSV record instead of appending it.
	SkipHeader bool
	// BatchSize is the number of rows per append call; zero selects DefaultBatchSize.
	BatchSize int
	// BatchWait pauses between batches to stay under API quotas.
	BatchWait time.Duration
	// Logger receives a debug line per batch; nil discards.
	Logger *slog.Logger
}

// AppendCSV reads CSV records from r and appends them to tab as text cells.
// It returns the number of rows appended, including the batches sent before
// an error.
func AppendCSV(ctx context.Context, dst Appender, tab string, r io.Reader, opts AppendOptions) (int, error) {
	cr, err := NewCSVReader(r, opts.CSVOptions)
	if err != nil {
		return 0, err
	}
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var appended int
	flush := func(batch [][]string) error {
		if appended > 0 && opts.BatchWait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.BatchWait):
			}
		}
		if err := dst.AppendStrings(ctx, tab, batch); err != nil {
			return fmt.Errorf("failed to append rows %d-%d: %w", appended+1, appended+len(batch), err)
		}
		appended += len(batch)
		logger.Debug("appended batch", "tab", tab, "rows", len(batch), "total", appended)
		return nil
	}

	batch := make([][]string, 0, size)
	for first := true; ; first = false {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return appended, fmt.Errorf("failed to read csv: %w", err)
		}
		if first && opts.SkipHeader {
			continue
		}
		batch = append(batch, slices.Clone(record))
		if len(batch) < size {
			continue
		}
		if err := flush(batch); err != nil {
			return appended, err
		}
		batch = make([][]string, 0, size)
	}
	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return appended, err
		}
	}
	return appended, nil
}
