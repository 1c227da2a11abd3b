// Command excel keeps the task log in a local workbook, creating it with a
// header row on first use.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/UNO-SOFT/zlog/v2"

	"github.com/ideamans/go-sheetorm"
	"github.com/ideamans/go-sheetorm/adapters/excel"
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

	book, err := excel.New(&excel.Config{FilePath: "./tasks.xlsx"})
	if err != nil {
		return fmt.Errorf("failed to create Excel adapter: %w", err)
	}

	cfg := sheetorm.DefaultConfig("Tasks")
	cfg.Logger = logger
	repo, err := sample.NewRepository(book, cfg)
	if err != nil {
		return err
	}

	result, err := repo.ValidateSchema(ctx)
	if err != nil {
		return err
	}
	if !result.Valid {
		tabs, err := book.TabNames(ctx)
		if err != nil {
			return err
		}
		if len(tabs) > 0 {
			return result.Err()
		}
		// New workbook
		if err := book.AppendStrings(ctx, "Tasks", [][]string{sample.Headers}); err != nil {
			return err
		}
	}

	now := time.Now()
	tasks := []*sample.Record{
		{TaskName: "backup", Result: true, DateExecuted: now.Add(-2 * time.Hour)},
		{TaskName: "report", ErrorMessage: "upstream timeout", DateExecuted: now.Add(-time.Hour)},
		{TaskName: "cleanup", Result: true, DateExecuted: now},
	}
	if err := repo.AddRecords(ctx, tasks...); err != nil {
		return err
	}

	records, err := repo.GetAllRecords(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d tasks logged\n", len(records))

	// Retry the failures: mark them done and clear the message.
	failed, err := sheetorm.ApplyQuery(repo.Schema(), records, sheetorm.Query{
		Conditions: []sheetorm.Condition{{Field: "Result", Operator: "==", Value: false}},
	})
	if err != nil {
		return err
	}
	for _, r := range failed {
		r.Result = true
		r.ErrorMessage = ""
		if err := repo.SaveFields(ctx, r, "Result", "ErrorMessage"); err != nil {
			return err
		}
		fmt.Printf("  row %d: %s retried\n", r.RowID(), r.TaskName)
	}

	// Keep the latest 10 entries.
	for len(records) > 10 {
		if err := repo.DeleteRecord(ctx, records[0]); err != nil {
			return err
		}
		records, err = repo.GetAllRecords(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}
