// Package sheetio moves rows between spreadsheets and files: CSV streams are
// appended to a tab, and formatted ranges are exported as CSV or XLSX.
package sheetio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultCharset is the charset of the LANG environment variable, or utf-8.
var DefaultCharset = "utf-8"

func init() {
	lang := os.Getenv("LANG")
	if i := strings.IndexByte(lang, '.'); i >= 0 {
		DefaultCharset = strings.ToLower(lang[i+1:])
	}
}

// GetEncoding looks up a charset by its HTML name. UTF-8 and the empty name
// return a nil encoding.
func GetEncoding(name string) (encoding.Encoding, error) {
	name = strings.ToLower(name)
	if name == "" || name == "utf-8" || name == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}
	return enc, nil
}

// CSVOptions controls how CSV text is read and written.
type CSVOptions struct {
	// Charset names the text encoding; empty means UTF-8.
	Charset string
	// Comma is the field separator. Zero sniffs it when reading and uses ','
	// when writing.
	Comma rune
}

// separators are the field separators recognized by sniffing.
const separators = ",;\t|"

// NewCSVReader decodes r with the configured charset and returns a reader
// that accepts rows of varying length.
func NewCSVReader(r io.Reader, opts CSVOptions) (*csv.Reader, error) {
	enc, err := GetEncoding(opts.Charset)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}

	br := bufio.NewReaderSize(r, 1<<20)
	comma := opts.Comma
	if comma == 0 {
		b, err := br.Peek(1024)
		if err != nil && len(b) == 0 && err != io.EOF {
			return nil, err
		}
		comma = sniffSeparator(string(b))
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr, nil
}

// sniffSeparator returns the first separator found outside quotes on the
// first line of text, or ','.
func sniffSeparator(text string) rune {
	var quoted bool
	for _, r := range text {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '\n' || r == '\r':
			return ','
		case strings.ContainsRune(separators, r):
			return r
		}
	}
	return ','
}

// NewCSVWriter encodes the output with the configured charset. The returned
// closer flushes the encoder and must be closed after the csv.Writer is flushed.
func NewCSVWriter(w io.Writer, opts CSVOptions) (*csv.Writer, io.Closer, error) {
	enc, err := GetEncoding(opts.Charset)
	if err != nil {
		return nil, nil, err
	}
	closer := io.Closer(nopCloser{})
	if enc != nil {
		tw := transform.NewWriter(w, enc.NewEncoder())
		w, closer = tw, tw
	}
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	return cw, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
