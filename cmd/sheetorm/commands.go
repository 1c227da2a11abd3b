package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/ideamans/go-sheetorm"
	"github.com/ideamans/go-sheetorm/sheetio"
)

func rangeCommand(g *globals, stdout io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "range",
		ShortUsage: "sheetorm range <notation>...",
		ShortHelp:  "print the A1 and R1C1 forms of range notations",
		FlagSet:    flag.NewFlagSet("range", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("range: %w", flag.ErrHelp)
			}
			for _, text := range args {
				rng, err := g.parseRange(text)
				if err != nil {
					return err
				}
				a1, ok := rng.A1Notation()
				if !ok {
					a1 = "-"
				}
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", text, a1, rng.R1C1Notation())
			}
			return nil
		},
	}
}

func tabsCommand(g *globals, stdout io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "tabs",
		ShortUsage: "sheetorm tabs",
		ShortHelp:  "list the tabs",
		FlagSet:    flag.NewFlagSet("tabs", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			b, err := g.open(ctx)
			if err != nil {
				return err
			}
			names, err := b.TabNames(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(stdout, name)
			}
			return nil
		},
	}
}

func exportCommand(g *globals, stdout io.Writer, opts []ff.Option) *ffcli.Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	flagOut := fs.String("o", "-", "output file; a .gz suffix compresses")
	flagFormat := fs.String("format", "", "csv or xlsx (default: from the output file extension)")
	flagCharset := fs.String("charset", sheetio.DefaultCharset, "csv charset name")
	flagComma := fs.String("comma", "", "csv field separator")

	return &ffcli.Command{
		Name:       "export",
		ShortUsage: "sheetorm export [flags] <range>",
		ShortHelp:  "export the displayed values of a range as CSV or XLSX",
		FlagSet:    fs,
		Options:    opts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("export: %w", flag.ErrHelp)
			}
			rng, err := g.parseRange(args[0])
			if err != nil {
				return err
			}
			comma, err := separator(*flagComma)
			if err != nil {
				return err
			}
			format := *flagFormat
			if format == "" {
				format = "csv"
				name := strings.TrimSuffix(strings.ToLower(*flagOut), ".gz")
				if filepath.Ext(name) == ".xlsx" {
					format = "xlsx"
				}
			}

			b, err := g.open(ctx)
			if err != nil {
				return err
			}
			var w io.WriteCloser
			if *flagOut == "-" {
				w = nopCloser{stdout}
			} else if w, err = sheetio.Create(*flagOut); err != nil {
				return err
			}

			var n int
			switch format {
			case "csv":
				n, err = sheetio.ExportCSV(ctx, b, rng, w, sheetio.CSVOptions{Charset: *flagCharset, Comma: comma})
			case "xlsx":
				n, err = sheetio.ExportXLSX(ctx, b, rng, w)
			default:
				err = fmt.Errorf("unknown format %q", format)
			}
			if closeErr := w.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			logger.Info("exported", "range", rng.String(), "rows", n, "format", format, "output", *flagOut)
			return nil
		},
	}
}

func appendCSVCommand(g *globals, stdout io.Writer, opts []ff.Option) *ffcli.Command {
	fs := flag.NewFlagSet("append-csv", flag.ContinueOnError)
	flagSkipHeader := fs.Bool("skip-header", false, "do not append the first record")
	flagBatch := fs.Int("batch", sheetio.DefaultBatchSize, "rows per append request")
	flagWait := fs.Duration("wait", time.Second, "pause between batches")
	flagCharset := fs.String("charset", sheetio.DefaultCharset, "csv charset name")
	flagComma := fs.String("comma", "", "csv field separator (default: sniffed)")

	return &ffcli.Command{
		Name:       "append-csv",
		ShortUsage: "sheetorm append-csv [flags] <file.csv|->",
		ShortHelp:  "append the records of a CSV file as text rows",
		FlagSet:    fs,
		Options:    opts,
		Exec: func(ctx context.Context, args []string) error {
			name := "-"
			if len(args) > 0 {
				name = args[0]
			}
			comma, err := separator(*flagComma)
			if err != nil {
				return err
			}
			b, err := g.open(ctx)
			if err != nil {
				return err
			}
			r, err := sheetio.Open(name)
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := sheetio.AppendCSV(ctx, b, g.tab, r, sheetio.AppendOptions{
				CSVOptions: sheetio.CSVOptions{Charset: *flagCharset, Comma: comma},
				SkipHeader: *flagSkipHeader,
				BatchSize:  *flagBatch,
				BatchWait:  *flagWait,
				Logger:     logger,
			})
			fmt.Fprintf(stdout, "appended %d rows\n", n)
			return err
		},
	}
}

func headersCommand(g *globals, stdout io.Writer, opts []ff.Option) *ffcli.Command {
	fs := flag.NewFlagSet("headers", flag.ContinueOnError)
	flagWrite := fs.Bool("write", false, "append the header row instead of validating it")
	flagStart := fs.String("start", "A", "column of the first header")
	flagRow := fs.Int("row", 1, "header row number")

	return &ffcli.Command{
		Name:       "headers",
		ShortUsage: "sheetorm headers [flags] <display name>...",
		ShortHelp:  "validate or write a header row of display names",
		FlagSet:    fs,
		Options:    opts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("headers: %w", flag.ErrHelp)
			}
			start := sheetorm.ColumnID(*flagStart)
			if start < 1 {
				return fmt.Errorf("invalid start column %q", *flagStart)
			}
			if *flagRow < 1 {
				return fmt.Errorf("invalid header row %d", *flagRow)
			}
			schema, err := headerSchema(args, start)
			if err != nil {
				return err
			}
			b, err := g.open(ctx)
			if err != nil {
				return err
			}

			cfg := sheetorm.DefaultConfig(g.tab)
			cfg.Logger = logger
			if *flagWrite {
				cfg.HasHeaderRow = false
			} else {
				cfg.HeaderRowOffset = *flagRow - 1
			}
			repo, err := sheetorm.New(schema, b, cfg)
			if err != nil {
				return err
			}

			if *flagWrite {
				if err := repo.WriteHeaders(ctx); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "wrote %d headers\n", len(args))
				return nil
			}
			result, err := repo.ValidateSchema(ctx)
			if err != nil {
				return err
			}
			if !result.Valid {
				fmt.Fprintln(stdout, strings.TrimSpace(result.Message))
				return result.Err()
			}
			fmt.Fprintln(stdout, "header row matches")
			return nil
		},
	}
}

// headerRow is a record of text columns named on the command line.
type headerRow struct {
	sheetorm.BaseRecord
	cells []string
}

func headerSchema(names []string, startColumn int) (*sheetorm.Schema[*headerRow], error) {
	bindings := make([]sheetorm.Binding[*headerRow], len(names))
	for i, name := range names {
		if name == "" {
			return nil, errors.New("header names must not be empty")
		}
		field := sheetorm.Field{Name: name, DisplayName: name, ColumnID: startColumn + i, Type: sheetorm.String}
		bindings[i] = sheetorm.Bind(field, func(r *headerRow) any { return &r.cells[i] })
	}
	return sheetorm.NewSchema(func() *headerRow {
		return &headerRow{cells: make([]string, len(names))}
	}, bindings...)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
