package sheetio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ideamans/go-sheetorm"
	"github.com/ideamans/go-sheetorm/adapters/excel"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
)

// fakeSheet records appended batches and serves fixed formatted rows.
type fakeSheet struct {
	batches [][][]string
	rows    [][]string
	ranges  []sheetorm.Range
	failAt  int // 1-based batch that fails, 0 never
}

var errAppend = errors.New("append failed")

func (f *fakeSheet) AppendStrings(_ context.Context, _ string, rows [][]string) error {
	if f.failAt > 0 && len(f.batches)+1 == f.failAt {
		return errAppend
	}
	f.batches = append(f.batches, rows)
	return nil
}

func (f *fakeSheet) GetFormattedRows(_ context.Context, rng sheetorm.Range) ([][]string, error) {
	f.ranges = append(f.ranges, rng)
	return f.rows, nil
}

func TestSniffSeparator(t *testing.T) {
	tests := []struct {
		text string
		want rune
	}{
		{"Name,Price Amount\nSteve,100", ','},
		{"Name;Price Amount\nSteve;100", ';'},
		{"Name\tPrice\n", '\t'},
		{"a|b", '|'},
		{`"Last, First";Amount`, ';'},
		{"single\nrow,two", ','},
		{"", ','},
	}

	for _, tt := range tests {
		if got := sniffSeparator(tt.text); got != tt.want {
			t.Errorf("sniffSeparator(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAppendCSV(t *testing.T) {
	const input = "Name;Amount\nSteve;100\nAnn;5\nBob;7\n"

	tests := []struct {
		name         string
		opts         AppendOptions
		wantBatches  [][][]string
		wantAppended int
	}{
		{
			name: "single batch",
			opts: AppendOptions{},
			wantBatches: [][][]string{
				{{"Name", "Amount"}, {"Steve", "100"}, {"Ann", "5"}, {"Bob", "7"}},
			},
			wantAppended: 4,
		},
		{
			name: "batches of two",
			opts: AppendOptions{BatchSize: 2},
			wantBatches: [][][]string{
				{{"Name", "Amount"}, {"Steve", "100"}},
				{{"Ann", "5"}, {"Bob", "7"}},
			},
			wantAppended: 4,
		},
		{
			name: "skip header",
			opts: AppendOptions{SkipHeader: true, BatchSize: 2},
			wantBatches: [][][]string{
				{{"Steve", "100"}, {"Ann", "5"}},
				{{"Bob", "7"}},
			},
			wantAppended: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := &fakeSheet{}
			n, err := AppendCSV(context.Background(), dst, "Donors", strings.NewReader(input), tt.opts)
			if err != nil {
				t.Fatalf("AppendCSV() error = %v", err)
			}
			if n != tt.wantAppended {
				t.Errorf("AppendCSV() = %d, want %d", n, tt.wantAppended)
			}
			if !reflect.DeepEqual(dst.batches, tt.wantBatches) {
				t.Errorf("batches = %v, want %v", dst.batches, tt.wantBatches)
			}
		})
	}
}

func TestAppendCSV_Charset(t *testing.T) {
	enc, err := htmlindex.Get("iso-8859-2")
	if err != nil {
		t.Fatalf("htmlindex.Get() error = %v", err)
	}
	input, err := enc.NewEncoder().String("Név,Összeg\nGulácsi Tamás,100\n")
	if err != nil {
		t.Fatalf("encode error = %v", err)
	}

	dst := &fakeSheet{}
	opts := AppendOptions{CSVOptions: CSVOptions{Charset: "ISO-8859-2"}}
	if _, err := AppendCSV(context.Background(), dst, "", strings.NewReader(input), opts); err != nil {
		t.Fatalf("AppendCSV() error = %v", err)
	}
	want := [][][]string{{{"Név", "Összeg"}, {"Gulácsi Tamás", "100"}}}
	if !reflect.DeepEqual(dst.batches, want) {
		t.Errorf("batches = %v, want %v", dst.batches, want)
	}
}

func TestAppendCSV_Errors(t *testing.T) {
	ctx := context.Background()

	dst := &fakeSheet{failAt: 2}
	n, err := AppendCSV(ctx, dst, "", strings.NewReader("a\nb\nc\n"), AppendOptions{BatchSize: 2})
	if !errors.Is(err, errAppend) {
		t.Errorf("AppendCSV() error = %v, want %v", err, errAppend)
	}
	if n != 2 {
		t.Errorf("AppendCSV() = %d, want 2 rows sent before the failure", n)
	}

	if _, err := AppendCSV(ctx, &fakeSheet{}, "", strings.NewReader("a"), AppendOptions{CSVOptions: CSVOptions{Charset: "no-such-charset"}}); err == nil {
		t.Error("AppendCSV() with unknown charset should fail")
	}

	if _, err := AppendCSV(ctx, &fakeSheet{}, "", strings.NewReader("\"unterminated\n"), AppendOptions{}); err == nil {
		t.Error("AppendCSV() with malformed csv should fail")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	opts := AppendOptions{BatchSize: 1, BatchWait: time.Hour}
	n, err = AppendCSV(canceled, &fakeSheet{}, "", strings.NewReader("a\nb\n"), opts)
	if !errors.Is(err, context.Canceled) || n != 1 {
		t.Errorf("AppendCSV() = %d, %v; want 1, context.Canceled", n, err)
	}
}

func TestExportCSV(t *testing.T) {
	src := &fakeSheet{rows: [][]string{
		{"Name", "Amount"},
		{"Steve, Jr.", "$100.00"},
		{"Ann"},
	}}
	rng := sheetorm.NewRange("Donors", 1, 1, 2, 3)

	tests := []struct {
		name string
		opts CSVOptions
		want string
	}{
		{"default separator", CSVOptions{}, "Name,Amount\n\"Steve, Jr.\",$100.00\nAnn\n"},
		{"semicolon", CSVOptions{Comma: ';'}, "Name;Amount\nSteve, Jr.;$100.00\nAnn\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := ExportCSV(context.Background(), src, rng, &buf, tt.opts)
			if err != nil {
				t.Fatalf("ExportCSV() error = %v", err)
			}
			if n != 3 {
				t.Errorf("ExportCSV() = %d, want 3", n)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	if !src.ranges[0].Equal(rng) {
		t.Errorf("range = %v, want %v", src.ranges[0], rng)
	}
}

func TestExportXLSX(t *testing.T) {
	src := &fakeSheet{rows: [][]string{
		{"Name", "Amount", "Zip"},
		{"Steve", "1,234.5", "02134"},
		{"Ann", "$5.00", ""},
	}}

	var buf bytes.Buffer
	n, err := ExportXLSX(context.Background(), src, sheetorm.NewOpenRange("Donors", 1, 1, 3), &buf)
	if err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ExportXLSX() = %d, want 3", n)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if list := f.GetSheetList(); !reflect.DeepEqual(list, []string{"Donors"}) {
		t.Errorf("sheets = %v, want [Donors]", list)
	}
	rows, err := f.GetRows("Donors", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"Name", "Amount", "Zip"},
		{"Steve", "1234.5", "02134"},
		{"Ann", "$5.00"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestOpenCreate_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "donors.csv.gz")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := io.WriteString(w, "Name,Amount\nSteve,100\n"); err != nil {
		t.Fatalf("write error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Errorf("file is not gzip compressed: % x", raw[:min(len(raw), 4)])
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "Name,Amount\nSteve,100\n" {
		t.Errorf("content = %q", got)
	}
}

func TestAppendAndExport_Excel(t *testing.T) {
	ctx := context.Background()
	book, err := excel.New(&excel.Config{FilePath: filepath.Join(t.TempDir(), "book.xlsx")})
	if err != nil {
		t.Fatalf("excel.New() error = %v", err)
	}

	input := "Name\tCity\nSteve\tReston\nAnn\tTokyo\n"
	if _, err := AppendCSV(ctx, book, "People", strings.NewReader(input), AppendOptions{BatchSize: 2}); err != nil {
		t.Fatalf("AppendCSV() error = %v", err)
	}

	var buf bytes.Buffer
	if _, err := ExportCSV(ctx, book, sheetorm.NewOpenRange("People", 1, 2, 2), &buf, CSVOptions{}); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if want := "Steve,Reston\nAnn,Tokyo\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
