package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ideamans/go-sheetorm"
	"github.com/ideamans/go-sheetorm/adapters/excel"
	"github.com/ideamans/go-sheetorm/adapters/googlesheets"
)

// Backend is a transport that can also list tabs and read and append text.
type Backend interface {
	sheetorm.Transport
	TabNames(ctx context.Context) ([]string, error)
	GetFormattedRows(ctx context.Context, rng sheetorm.Range) ([][]string, error)
	AppendStrings(ctx context.Context, tab string, rows [][]string) error
}

// BackendCase is a backend under test.
type BackendCase struct {
	Name        string
	Backend     Backend
	Description string
	// Tab is the tab the tests own. Reset empties it.
	Tab   string
	Reset func(t *testing.T)
}

// Backends returns the excel backend and, when TEST_GOOGLE_SHEET_ID is set,
// a Google Sheets backend per available credential.
func Backends(t *testing.T, tab string) []BackendCase {
	t.Helper()

	envPath := filepath.Join("..", "..", ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := LoadEnvFile(envPath); err != nil {
			t.Logf("failed to load %s: %v", envPath, err)
		}
	}

	excelFile := filepath.Join(t.TempDir(), tab+".xlsx")
	book, err := excel.New(&excel.Config{FilePath: excelFile})
	if err != nil {
		t.Fatalf("Failed to create Excel adapter: %v", err)
	}
	cases := []BackendCase{{
		Name:        "Excel",
		Backend:     book,
		Description: fmt.Sprintf("Excel file: %s", excelFile),
		Tab:         tab,
		Reset: func(t *testing.T) {
			if err := os.Remove(excelFile); err != nil && !os.IsNotExist(err) {
				t.Fatalf("Failed to remove %s: %v", excelFile, err)
			}
		},
	}}

	spreadsheetID := os.Getenv("TEST_GOOGLE_SHEET_ID")
	if spreadsheetID == "" {
		t.Log("Skipping Google Sheets: TEST_GOOGLE_SHEET_ID not set")
		return cases
	}

	ctx := context.Background()
	config := googlesheets.DefaultConfig(spreadsheetID)

	if jsonPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); jsonPath != "" {
		if !filepath.IsAbs(jsonPath) {
			jsonPath = filepath.Join("..", "..", jsonPath)
		}
		if tr, err := googlesheets.NewWithJSONKeyFile(ctx, config, jsonPath); err != nil {
			t.Logf("Failed to create Google Sheets transport with JSON auth: %v", err)
		} else {
			cases = append(cases, googleCase("GoogleSheets-JSON", "Google Sheets with JSON file auth", tr, tab))
		}
	}

	email := os.Getenv("TEST_CLIENT_EMAIL")
	privateKey := os.Getenv("TEST_CLIENT_PRIVATE_KEY")
	if email != "" && privateKey != "" {
		// CI secrets may carry literal \n
		if !strings.Contains(privateKey, "\n") && strings.Contains(privateKey, "\\n") {
			privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")
		}
		if tr, err := googlesheets.NewWithServiceAccountKey(ctx, config, email, privateKey); err != nil {
			t.Logf("Failed to create Google Sheets transport with email/key auth: %v", err)
		} else {
			cases = append(cases, googleCase("GoogleSheets-EmailKey", "Google Sheets with email/key auth", tr, tab))
		}
	}
	return cases
}

// googleCase resets by deleting every row but the first and blanking it. The
// tab must already exist in the spreadsheet.
func googleCase(name, description string, tr *googlesheets.SheetsTransport, tab string) BackendCase {
	return BackendCase{
		Name:        name,
		Backend:     tr,
		Description: description,
		Tab:         tab,
		Reset: func(t *testing.T) {
			ctx := context.Background()
			rows, err := tr.GetRows(ctx, sheetorm.NewOpenRange(tab, 1, 1, 26))
			if err != nil {
				t.Fatalf("Failed to read %s: %v", tab, err)
			}
			if len(rows) > 1 {
				if err := tr.DeleteRows(ctx, tab, 2, len(rows)-1); err != nil {
					t.Fatalf("Failed to clear %s: %v", tab, err)
				}
			}
			if len(rows) > 0 {
				updates := make([]sheetorm.CellUpdate, 26)
				for i := range updates {
					updates[i] = sheetorm.CellUpdate{Range: sheetorm.NewCell(tab, i+1, 1)}
				}
				if err := tr.BatchWrite(ctx, tab, updates); err != nil {
					t.Fatalf("Failed to blank the first row of %s: %v", tab, err)
				}
			}
		},
	}
}

// WriteHeader puts the header row on an empty tab.
func WriteHeader(t *testing.T, b Backend, tab string, names []string) {
	t.Helper()
	if err := b.AppendStrings(context.Background(), tab, [][]string{names}); err != nil {
		t.Fatalf("Failed to write header: %v", err)
	}
}

// LoadEnvFile sets environment variables from KEY=VALUE lines.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		// Private keys are stored on one line
		if key == "TEST_CLIENT_PRIVATE_KEY" {
			value = strings.ReplaceAll(value, "\\n", "\n")
		}
		os.Setenv(key, value)
	}
	return nil
}
