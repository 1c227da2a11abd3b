package googlesheets

import (
	"errors"
	"log/slog"
	"time"
)

// ErrNoSpreadsheetID is returned when Config has no spreadsheet id.
var ErrNoSpreadsheetID = errors.New("spreadsheet id is required")

// Config configures a SheetsTransport.
type Config struct {
	SpreadsheetID    string
	MaxRetries       int           // retries after the first attempt on 429 and 5xx responses
	RetryInterval    time.Duration // first backoff, doubled on every retry
	MaxRetryInterval time.Duration // backoff cap
	Logger           *slog.Logger  // nil discards log output
}

// DefaultConfig returns the recommended configuration for a spreadsheet.
// The Sheets API quota resets per minute, so backoff is allowed to grow to 20s.
func DefaultConfig(spreadsheetID string) Config {
	return Config{
		SpreadsheetID:    spreadsheetID,
		MaxRetries:       3,
		RetryInterval:    time.Second,
		MaxRetryInterval: 20 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrNoSpreadsheetID
	}
	return nil
}
