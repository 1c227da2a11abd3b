// Package sample maps a task log tab: one row per executed task with its
// outcome and execution time.
package sample

import (
	"time"

	"github.com/ideamans/go-sheetorm"
)

// Record is one executed task.
type Record struct {
	sheetorm.BaseRecord
	TaskName     string
	Result       bool
	ErrorMessage string
	DateExecuted time.Time
}

// Headers are the display names of the tab's header row.
var Headers = []string{"Task", "Result", "Error", "DateExecuted"}

// NewSchema returns the schema of the task log.
func NewSchema() (*sheetorm.Schema[*Record], error) {
	return sheetorm.NewSchema(func() *Record { return &Record{} },
		sheetorm.Bind(sheetorm.Field{Name: "TaskName", DisplayName: "Task", ColumnID: 1, Type: sheetorm.String},
			func(r *Record) any { return &r.TaskName }),
		sheetorm.Bind(sheetorm.Field{Name: "Result", DisplayName: "Result", ColumnID: 2, Type: sheetorm.Boolean},
			func(r *Record) any { return &r.Result }),
		sheetorm.Bind(sheetorm.Field{Name: "ErrorMessage", DisplayName: "Error", ColumnID: 3, Type: sheetorm.String},
			func(r *Record) any { return &r.ErrorMessage }),
		sheetorm.Bind(sheetorm.Field{Name: "DateExecuted", DisplayName: "DateExecuted", ColumnID: 4, Type: sheetorm.DateTime},
			func(r *Record) any { return &r.DateExecuted }),
	)
}

// NewRepository returns a repository of the task log kept in tab, which
// starts with a header row.
func NewRepository(transport sheetorm.Transport, cfg *sheetorm.Config) (*sheetorm.Repository[*Record], error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return sheetorm.New(schema, transport, cfg)
}
