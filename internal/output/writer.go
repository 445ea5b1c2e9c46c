// Package output renders extraction results as text or JSON.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/postmap/pkg/extractor"
)

// Format represents output format types.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// SupportedFormats lists every format Render accepts.
var SupportedFormats = []Format{FormatText, FormatJSON}

// ErrUnsupportedFormat is matched by every *UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError names a format that is not in SupportedFormats.
type UnsupportedFormatError struct {
	Format    string
	Supported []Format
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, len(e.Supported))
	for i, f := range e.Supported {
		names[i] = string(f)
	}
	return fmt.Sprintf("unsupported format type: %s (supported: %s)", e.Format, strings.Join(names, ", "))
}

// Is lets errors.Is(err, ErrUnsupportedFormat) match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, supported := range SupportedFormats {
		if f == supported {
			return f, nil
		}
	}
	return "", &UnsupportedFormatError{Format: s, Supported: SupportedFormats}
}

// Writer streams rendered results.
type Writer interface {
	// Write renders and outputs a single result.
	Write(res *extractor.Result) error

	// WriteRendered outputs an already rendered result.
	WriteRendered(s string) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// NewWriter creates a writer for the specified format. JSON results are
// written one object per line; text results are separated by a blank line.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return &lineWriter{w: bufio.NewWriter(w), format: format}, nil
	case FormatText:
		return &lineWriter{w: bufio.NewWriter(w), format: format, separator: "\n"}, nil
	default:
		return nil, &UnsupportedFormatError{Format: string(format), Supported: SupportedFormats}
	}
}

type lineWriter struct {
	w         *bufio.Writer
	format    Format
	separator string // written between records
	count     int
}

func (w *lineWriter) Write(res *extractor.Result) error {
	s, err := Render(res, w.format)
	if err != nil {
		return err
	}
	return w.WriteRendered(s)
}

func (w *lineWriter) WriteRendered(s string) error {
	if w.count > 0 && w.separator != "" {
		if _, err := w.w.WriteString(w.separator); err != nil {
			return err
		}
	}
	if _, err := w.w.WriteString(s); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	w.count++
	return nil
}

func (w *lineWriter) Flush() error {
	return w.w.Flush()
}

func (w *lineWriter) Close() error {
	return w.Flush()
}
