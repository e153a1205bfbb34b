// Package fileutil opens record batch files with transparent compression.
// Paths ending in .xz or .gz are wrapped in the matching codec; "-" means
// standard input or output.
package fileutil

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// readCloser pairs a decompressing reader with the file it draws from.
type readCloser struct {
	io.Reader
	file *os.File
}

func (r *readCloser) Close() error {
	return r.file.Close()
}

// writeCloser pairs a compressing writer with the file it feeds, closing
// both in order.
type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenInput opens path for reading, decompressing .xz and .gz transparently.
// The path "-" reads standard input.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}

	switch {
	case strings.HasSuffix(path, ".xz"):
		r, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "opening xz stream")
		}
		return &readCloser{Reader: r, file: f}, nil
	case strings.HasSuffix(path, ".gz"):
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "opening gzip stream")
		}
		return &readCloser{Reader: r, file: f}, nil
	}
	return f, nil
}

// CreateOutput creates path for writing, compressing .xz and .gz
// transparently. The path "-" writes standard output.
func CreateOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating output")
	}

	switch {
	case strings.HasSuffix(path, ".xz"):
		w, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "creating xz stream")
		}
		return &writeCloser{Writer: w, closers: []io.Closer{w, f}}, nil
	case strings.HasSuffix(path, ".gz"):
		w := gzip.NewWriter(f)
		return &writeCloser{Writer: w, closers: []io.Closer{w, f}}, nil
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
