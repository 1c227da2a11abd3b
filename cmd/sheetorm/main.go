// Command sheetorm inspects and moves data in Google spreadsheets and local
// Excel workbooks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/ideamans/go-sheetorm"
	"github.com/ideamans/go-sheetorm/adapters/excel"
	"github.com/ideamans/go-sheetorm/adapters/googlesheets"
	"github.com/ideamans/go-sheetorm/sheetio"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

// backend is what the commands need from a spreadsheet.
type backend interface {
	sheetorm.Transport
	sheetio.Appender
	sheetio.FormattedReader
	sheetio.TabLister
}

// globals holds the flags shared by every subcommand.
type globals struct {
	backend     string
	file        string
	spreadsheet string
	credentials string
	tab         string
	retries     int
}

func (g *globals) register(fs *flag.FlagSet) {
	fs.Var(&verbose, "v", "logging verbosity")
	fs.StringVar(&g.backend, "backend", "", "google or excel (default: excel when -file is set)")
	fs.StringVar(&g.file, "file", "", "Excel workbook path")
	fs.StringVar(&g.spreadsheet, "spreadsheet", "", "Google spreadsheet id")
	fs.StringVar(&g.credentials, "credentials", "", "service account JSON key file (default: application default credentials)")
	fs.StringVar(&g.tab, "tab", "", "tab name (default: the first tab)")
	fs.IntVar(&g.retries, "retries", 3, "retries of rate limited Google requests")
}

func (g *globals) open(ctx context.Context) (backend, error) {
	kind := g.backend
	if kind == "" {
		kind = "google"
		if g.file != "" {
			kind = "excel"
		}
	}
	logger.Debug("open backend", "backend", kind, "file", g.file, "spreadsheet", g.spreadsheet)

	switch kind {
	case "excel":
		return excel.New(&excel.Config{FilePath: g.file})
	case "google":
		cfg := googlesheets.DefaultConfig(g.spreadsheet)
		cfg.MaxRetries = g.retries
		cfg.Logger = logger
		if g.credentials != "" {
			return googlesheets.NewWithJSONKeyFile(ctx, cfg, g.credentials)
		}
		return googlesheets.NewWithDefaultCredentials(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// parseRange parses notation and applies the -tab default when it names no tab.
func (g *globals) parseRange(text string) (sheetorm.Range, error) {
	rng, err := sheetorm.ParseRange(text)
	if err != nil {
		return sheetorm.Range{}, err
	}
	if rng.TabName() == "" && g.tab != "" {
		rng.SetTabName(g.tab)
	}
	return rng, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var g globals
	fs := flag.NewFlagSet("sheetorm", flag.ContinueOnError)
	g.register(fs)
	opts := []ff.Option{ff.WithEnvVarPrefix("SHEETORM")}

	app := ffcli.Command{
		Name:       "sheetorm",
		ShortUsage: "sheetorm [flags] <subcommand> [flags] [args]",
		FlagSet:    fs,
		Options:    opts,
		Subcommands: []*ffcli.Command{
			rangeCommand(&g, stdout),
			tabsCommand(&g, stdout),
			exportCommand(&g, stdout, opts),
			appendCSVCommand(&g, stdout, opts),
			headersCommand(&g, stdout, opts),
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
	return app.ParseAndRun(ctx, args)
}

// separator parses a single-character separator flag. An empty s selects
// the default and `\t` stands for a tab.
func separator(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("separator %q must be a single character", s)
	}
	return r, nil
}
