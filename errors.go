package swiftline

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when the underlying source cannot be opened.
	ErrSourceUnavailable = errors.New("swiftline: source unavailable")
	// ErrSourceRead is returned when a chunk read fails mid-stream. Reads are never retried.
	ErrSourceRead = errors.New("swiftline: source read failed")
	// ErrSourceNotOpen is returned by sources that are read before Open.
	ErrSourceNotOpen = errors.New("swiftline: source not open")
	// ErrDecoding is returned when a line's bytes are not valid in the configured encoding.
	ErrDecoding = errors.New("swiftline: invalid encoded line")
	// ErrEmptyHeader is returned when a CSV header read hits end of stream.
	ErrEmptyHeader = errors.New("swiftline: empty csv header")
	// ErrClosed is returned when reading from a closed reader.
	ErrClosed = errors.New("swiftline: reader closed")
	// ErrInvalidBufferSize is returned for a chunk size that is not positive.
	ErrInvalidBufferSize = errors.New("swiftline: buffer size must be positive")
	// ErrUnknownEncoding is returned for encoding names that cannot be resolved or split on byte terminators.
	ErrUnknownEncoding = errors.New("swiftline: unsupported encoding")
	// ErrBareQuote is returned in strict mode when a quote appears inside an unquoted field.
	ErrBareQuote = errors.New("swiftline: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned in strict mode when a quoted field is not closed before end of line.
	ErrUnterminatedQuote = errors.New("swiftline: unterminated quoted field")
	// ErrFieldCount is returned in strict mode when a record width differs from the header.
	ErrFieldCount = errors.New("swiftline: wrong number of fields")
)

// LineError reports a failure tied to a physical line of the source.
// Offset is the byte offset of the first byte of that line.
type LineError struct {
	Line   int
	Offset int64
	Err    error
}

// Error formats the line error with its location.
func (e *LineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("swiftline: line %d (offset %d): %v", e.Line, e.Offset, e.Err)
}

// Unwrap returns the underlying Err so LineError participates in errors.Is.
func (e *LineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseError contains location information for CSV tokenization errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("swiftline: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
