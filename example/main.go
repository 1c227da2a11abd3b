// Command example logs task results to a Google spreadsheet.
//
//	GOOGLE_SPREADSHEET_ID=... GOOGLE_APPLICATION_CREDENTIALS=key.json go run ./example
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/UNO-SOFT/zlog/v2"

	"github.com/ideamans/go-sheetorm"
	"github.com/ideamans/go-sheetorm/adapters/googlesheets"
	"github.com/ideamans/go-sheetorm/example/sample"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := run(); err != nil {
		logger.Error("example failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	config := googlesheets.DefaultConfig(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	config.Logger = logger

	// Key file from GOOGLE_APPLICATION_CREDENTIALS
	transport, err := googlesheets.NewWithJSONKeyFile(ctx, config, "")
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	// The first two columns as displayed
	rows, err := transport.GetFormattedRows(ctx, sheetorm.NewOpenRange("", 1, 1, 2))
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Println(row)
	}

	repo, err := sample.NewRepository(transport, &sheetorm.Config{TabName: "Tasks", HasHeaderRow: true, Logger: logger})
	if err != nil {
		return err
	}
	result, err := repo.ValidateSchema(ctx)
	if err != nil {
		return err
	}
	if !result.Valid {
		return result.Err()
	}

	started := time.Now()
	record := &sample.Record{TaskName: "list tabs", DateExecuted: started}
	if tabs, err := transport.TabNames(ctx); err != nil {
		record.ErrorMessage = err.Error()
	} else {
		record.Result = true
		logger.Info("tabs", "names", tabs)
	}
	if err := repo.AddRecord(ctx, record); err != nil {
		return err
	}

	failed, err := repo.Query(ctx, sheetorm.Query{
		Conditions: []sheetorm.Condition{
			{Field: "Result", Operator: "==", Value: false},
			{Field: "DateExecuted", Operator: ">=", Value: started.AddDate(0, 0, -7)},
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("%d failed tasks in the last week\n", len(failed))
	for _, r := range failed {
		fmt.Printf("  row %d: %s at %s: %s\n", r.RowID(), r.TaskName, r.DateExecuted.Format(time.DateTime), r.ErrorMessage)
	}
	return nil
}
