package sheetio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Open opens a file for reading. An empty name or "-" reads stdin, and a
// ".gz" suffix decompresses the content.
func Open(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !isGzip(name) {
		return fh, nil
	}
	zr, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	return multiCloser{Reader: zr, closers: []io.Closer{zr, fh}}, nil
}

// Create creates a file for writing. An empty name or "-" writes stdout, and
// a ".gz" suffix compresses the content. Close must be called to flush it.
func Create(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	fh, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if !isGzip(name) {
		return fh, nil
	}
	zw := gzip.NewWriter(fh)
	zw.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return multiCloser{Writer: zw, closers: []io.Closer{zw, fh}}, nil
}

func isGzip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".gz")
}

// multiCloser closes every closer in order and reports the first error.
type multiCloser struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (m multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
