package swiftline

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrNoHeader is returned by ReadRecord when neither ReadHeader nor SetHeader has run.
var ErrNoHeader = errors.New("swiftline: csv header not set")

// CSVReader reads a header line and field-name keyed records from a LineReader.
//
// Each line is one record; a quoted field cannot span lines. Rows shorter
// than the header are padded with empty strings and longer rows are
// truncated, unless Strict is set.
type CSVReader struct {
	lr *LineReader

	// Quote is the quote character. Zero or an invalid rune means '"'.
	Quote rune
	// Separator is the field delimiter. Zero or an invalid rune means ','.
	Separator rune
	// Strict reports bare and unterminated quotes as *ParseError and
	// width mismatches as ErrFieldCount instead of repairing them.
	Strict bool

	header []string
}

// NewCSVReader creates a CSVReader over lr, panicking if lr is nil.
func NewCSVReader(lr *LineReader) *CSVReader {
	if lr == nil {
		panic("swiftline: csv line reader cannot be nil")
	}
	return &CSVReader{
		lr:        lr,
		Quote:     '"',
		Separator: ',',
	}
}

// ReadHeader reads the next line and stores its fields as the header.
// Calling it again treats the following line as a new header.
func (r *CSVReader) ReadHeader() ([]string, error) {
	line, err := r.lr.ReadLine()
	if err == io.EOF {
		return nil, ErrEmptyHeader
	}
	if err != nil {
		return nil, err
	}
	fields, err := r.split(line)
	if err != nil {
		return nil, err
	}
	r.header = fields
	return r.Header(), nil
}

// Header returns a copy of the current header, or nil if none is set.
func (r *CSVReader) Header() []string {
	if r.header == nil {
		return nil
	}
	return append([]string(nil), r.header...)
}

// SetHeader installs field names for files without a header line.
func (r *CSVReader) SetHeader(header []string) {
	r.header = append([]string(nil), header...)
}

// ReadRecord reads the next line and maps its fields onto the header.
// It returns nil, io.EOF at end of stream.
func (r *CSVReader) ReadRecord() (map[string]string, error) {
	if r.header == nil {
		return nil, ErrNoHeader
	}
	fields, err := r.Read()
	if err != nil && !errors.Is(err, ErrFieldCount) {
		return nil, err
	}

	record := make(map[string]string, len(r.header))
	for i, name := range r.header {
		if i < len(fields) {
			record[name] = fields[i]
		} else {
			record[name] = ""
		}
	}
	return record, err
}

// ReadAll reads records until io.EOF, returning them with the first other error.
func (r *CSVReader) ReadAll() (records []map[string]string, err error) {
	for {
		record, err := r.ReadRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Read returns the fields of the next line. Once a header is set the slice is
// padded or truncated to the header width; in Strict mode a width mismatch
// returns the unaltered fields together with ErrFieldCount.
//
// Read lets a CSVReader serve as a csvutil.Reader.
func (r *CSVReader) Read() ([]string, error) {
	line, err := r.lr.ReadLine()
	if err != nil {
		return nil, err
	}
	fields, err := r.split(line)
	if err != nil {
		return nil, err
	}
	if r.header == nil {
		return fields, nil
	}

	width := len(r.header)
	if r.Strict && len(fields) != width {
		return fields, ErrFieldCount
	}
	if len(fields) > width {
		return fields[:width], nil
	}
	for len(fields) < width {
		fields = append(fields, "")
	}
	return fields, nil
}

// LineReader returns the underlying line reader.
func (r *CSVReader) LineReader() *LineReader {
	return r.lr
}

// Close closes the underlying line reader.
func (r *CSVReader) Close() error {
	return r.lr.Close()
}

func (r *CSVReader) dialect() (quote, sep rune) {
	quote = r.Quote
	if quote == 0 || !utf8.ValidRune(quote) {
		quote = '"'
	}
	sep = r.Separator
	if sep == 0 || !utf8.ValidRune(sep) {
		sep = ','
	}
	return quote, sep
}

// split tokenizes one decoded line. A field starting with the quote rune runs
// to the next quote that is not doubled; separators inside it are literal.
func (r *CSVReader) split(line string) ([]string, error) {
	quote, sep := r.dialect()
	quoteLen := utf8.RuneLen(quote)
	sepLen := utf8.RuneLen(sep)

	var (
		fields []string
		field  strings.Builder
	)
	pos := 0
	for {
		rest := line[pos:]
		if !strings.HasPrefix(rest, string(quote)) {
			// Unquoted field: everything up to the next separator.
			end := strings.IndexRune(rest, sep)
			if end < 0 {
				end = len(rest)
			}
			value := rest[:end]
			if r.Strict {
				if q := strings.IndexRune(value, quote); q >= 0 {
					return nil, r.parseError(line, pos+q, ErrBareQuote)
				}
			}
			fields = append(fields, value)
			pos += end
		} else {
			field.Reset()
			pos += quoteLen
			closed := false
			for pos < len(line) {
				c, size := utf8.DecodeRuneInString(line[pos:])
				if c != quote {
					field.WriteRune(c)
					pos += size
					continue
				}
				if strings.HasPrefix(line[pos+size:], string(quote)) {
					field.WriteRune(quote)
					pos += size + quoteLen
					continue
				}
				pos += size
				closed = true
				break
			}
			if !closed && r.Strict {
				return nil, r.parseError(line, pos, ErrUnterminatedQuote)
			}

			// Text between the closing quote and the next separator.
			tail := line[pos:]
			end := strings.IndexRune(tail, sep)
			if end < 0 {
				end = len(tail)
			}
			if end > 0 && r.Strict {
				return nil, r.parseError(line, pos, ErrBareQuote)
			}
			field.WriteString(tail[:end])
			fields = append(fields, field.String())
			pos += end
		}

		if pos >= len(line) {
			return fields, nil
		}
		pos += sepLen
		if pos >= len(line) {
			// Trailing separator opens one last empty field.
			return append(fields, ""), nil
		}
	}
}

// parseError attaches the current line and the 1-based rune column of the
// byte offset to err.
func (r *CSVReader) parseError(line string, offset int, err error) error {
	return &ParseError{
		Line:   r.lr.Line(),
		Column: utf8.RuneCountInString(line[:offset]) + 1,
		Err:    err,
	}
}
