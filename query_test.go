package sheetorm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ideamans/go-sheetorm"
)

func TestApplyQuery(t *testing.T) {
	schema := newDonorSchema(t, 0)
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	donors := []*Donor{
		{Name: "Steve", Amount: ptr(100.0), Quantity: 3, Donated: &jan},
		{Name: "Ann", Amount: ptr(5.0), Quantity: 1, Donated: &mar},
		{Name: "Bob", Quantity: 10},
	}

	tests := []struct {
		name  string
		query sheetorm.Query
		want  []string
	}{
		{
			name:  "equal string",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "==", Value: "Ann"}}},
			want:  []string{"Ann"},
		},
		{
			name:  "not equal",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "!=", Value: "Ann"}}},
			want:  []string{"Steve", "Bob"},
		},
		{
			name:  "greater with int operand",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Quantity", Operator: ">", Value: 2}}},
			want:  []string{"Steve", "Bob"},
		},
		{
			name:  "nil pointer never orders",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Amount", Operator: "<", Value: 50}}},
			want:  []string{"Ann"},
		},
		{
			name:  "null equality",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Amount", Operator: "==", Value: nil}}},
			want:  []string{"Bob"},
		},
		{
			name:  "in",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "in", Value: []any{"Bob", "Steve"}}}},
			want:  []string{"Steve", "Bob"},
		},
		{
			name:  "between numbers",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Quantity", Operator: "between", Value: [2]any{1, 3}}}},
			want:  []string{"Steve", "Ann"},
		},
		{
			name:  "time after",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Donated", Operator: ">=", Value: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}}},
			want:  []string{"Ann"},
		},
		{
			name: "and conditions",
			query: sheetorm.Query{Conditions: []sheetorm.Condition{
				{Field: "Quantity", Operator: ">=", Value: 1},
				{Field: "Name", Operator: "!=", Value: "Bob"},
			}},
			want: []string{"Steve", "Ann"},
		},
		{
			name:  "offset and limit",
			query: sheetorm.Query{Offset: 1, Limit: 1},
			want:  []string{"Ann"},
		},
		{
			name:  "offset past end",
			query: sheetorm.Query{Offset: 5},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sheetorm.ApplyQuery(schema, donors, tt.query)
			if err != nil {
				t.Fatalf("ApplyQuery() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ApplyQuery() returned %d records, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.Name != tt.want[i] {
					t.Errorf("result[%d] = %s, want %s", i, d.Name, tt.want[i])
				}
			}
		})
	}
}

func TestApplyQuery_Invalid(t *testing.T) {
	schema := newDonorSchema(t, 0)
	donors := []*Donor{{Name: "Steve"}, {Name: "Ann"}}

	tests := []struct {
		name  string
		query sheetorm.Query
	}{
		{"negative offset", sheetorm.Query{Offset: -1}},
		{"negative limit", sheetorm.Query{Limit: -2}},
		{"bad operator", sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "=~", Value: "S"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sheetorm.ApplyQuery(schema, donors, tt.query)
			if !errors.Is(err, sheetorm.ErrInvalidQuery) {
				t.Fatalf("ApplyQuery() error = %v, want ErrInvalidQuery", err)
			}
			if got != nil {
				t.Errorf("ApplyQuery() = %v, want nil", got)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   sheetorm.Query
		wantErr bool
	}{
		{"valid", sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "==", Value: "x"}}}, false},
		{"bad operator", sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "~", Value: "x"}}}, true},
		{"in without list", sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "in", Value: "x"}}}, true},
		{"between with three", sheetorm.Query{Conditions: []sheetorm.Condition{{Field: "Name", Operator: "between", Value: []any{1, 2, 3}}}}, true},
		{"empty field", sheetorm.Query{Conditions: []sheetorm.Condition{{Operator: "==", Value: "x"}}}, true},
		{"negative limit", sheetorm.Query{Limit: -1}, true},
		{"negative offset", sheetorm.Query{Offset: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sheetorm.ValidateQuery(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, sheetorm.ErrInvalidQuery) {
				t.Errorf("error %v does not wrap ErrInvalidQuery", err)
			}
		})
	}
}

func TestRepository_Query(t *testing.T) {
	tr := newMemoryTransport()
	tr.set("Donors", donorHeader, steveRow, []any{"Ann", "", "$5", "", "2"})
	repo := newDonorRepository(t, tr, sheetorm.DefaultConfig("Donors"))
	ctx := context.Background()

	got, err := repo.Query(ctx, sheetorm.Query{
		Conditions: []sheetorm.Condition{{Field: "Amount", Operator: ">", Value: 50}},
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Steve" || got[0].RowID() != 2 {
		t.Errorf("Query() = %+v", got)
	}

	_, err = repo.Query(ctx, sheetorm.Query{
		Conditions: []sheetorm.Condition{{Field: "Unknown", Operator: "==", Value: 1}},
	})
	if !errors.Is(err, sheetorm.ErrUnknownField) {
		t.Errorf("Query(unknown field) error = %v", err)
	}
}
