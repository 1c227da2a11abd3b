package sheetorm

import (
	"fmt"
	"log/slog"
)

// Config describes where a record table lives inside a tab.
type Config struct {
	TabName            string       // empty selects the first tab
	HasHeaderRow       bool         // a header row precedes the data rows
	HeaderRowOffset    int          // blank rows above the header row
	DataTableRowOffset int          // blank rows between the header (or the top) and the data
	Logger             *slog.Logger // nil discards log output
}

// DefaultConfig returns a configuration for a table with its header in row 1.
func DefaultConfig(tabName string) *Config {
	return &Config{
		TabName:      tabName,
		HasHeaderRow: true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.HeaderRowOffset < 0 {
		return fmt.Errorf("%w: header row offset must be non-negative, got %d", ErrInvalidConfig, c.HeaderRowOffset)
	}
	if c.DataTableRowOffset < 0 {
		return fmt.Errorf("%w: data table row offset must be non-negative, got %d", ErrInvalidConfig, c.DataTableRowOffset)
	}
	if !c.HasHeaderRow && c.HeaderRowOffset != 0 {
		return fmt.Errorf("%w: header row offset set without a header row", ErrInvalidConfig)
	}
	return nil
}
