package swiftline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
)

const (
	defaultBufferSize = 1 << 10 // 1024 bytes

	// maxEmptyReads bounds consecutive (0, nil) reads from a misbehaving source.
	maxEmptyReads = 100
)

// LineReader splits a chunked Source into decoded text lines.
//
// A LineReader is not safe for concurrent use.
type LineReader struct {
	src Source
	dec *lineDecoder

	// TrimLines strips leading and trailing white space from each decoded line.
	TrimLines bool
	// EmitEmptyLines returns lines that are empty after trimming. When false they are skipped.
	EmitEmptyLines bool
	// SkipBOM drops a UTF-8 byte order mark at the start of the first line.
	SkipBOM bool
	// Logger receives debug output about source lifecycle and refills.
	Logger logr.Logger

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	line      []byte
	pending   int
	crPending bool

	bytesProcessed int64
	lineNo         int

	ownsSource bool
	opened     bool
	closed     bool
}

// NewLineReader creates a LineReader reading chunks of bufSize bytes from src
// and decoding lines with the named encoding (empty means UTF-8).
//
// The reader owns src, and closes it on Close, unless src reports that it
// was already open when handed over.
func NewLineReader(src Source, bufSize int, encoding string) (*LineReader, error) {
	if src == nil {
		panic("swiftline: line reader source cannot be nil")
	}
	if bufSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, bufSize)
	}
	dec, err := newLineDecoder(encoding)
	if err != nil {
		return nil, err
	}

	owns := true
	if or, ok := src.(openReporter); ok && or.IsOpen() {
		owns = false
	}

	return &LineReader{
		src:            src,
		dec:            dec,
		EmitEmptyLines: true,
		Logger:         logr.Discard(),
		buf:            make([]byte, bufSize),
		line:           make([]byte, 0, bufSize),
		ownsSource:     owns,
	}, nil
}

// Open opens the underlying source if the reader owns it and has not opened it yet.
// ReadLine calls Open implicitly.
func (r *LineReader) Open() error {
	if r.closed {
		return ErrClosed
	}
	if r.opened {
		return nil
	}
	if r.ownsSource {
		if err := r.src.Open(); err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		r.Logger.V(4).Info("opened source", "encoding", r.dec.name, "bufferSize", len(r.buf))
	}
	r.opened = true
	return nil
}

// ReadLine returns the next decoded line without its terminator. Lines end at
// "\n", "\r" or "\r\n". Trailing bytes without a terminator are returned as a
// final line. At end of stream ReadLine returns "", io.EOF.
//
// A *LineError wrapping ErrDecoding leaves the reader positioned after the bad
// line, so the caller may keep reading. A *LineError wrapping ErrSourceRead
// keeps the partial line, and a later call retries the source.
func (r *LineReader) ReadLine() (string, error) {
	if err := r.Open(); err != nil {
		return "", err
	}

	for {
		raw, consumed, err := r.nextRawLine()
		if err != nil {
			return "", err
		}

		offset := r.bytesProcessed
		r.bytesProcessed += int64(consumed)
		r.lineNo++

		if r.lineNo == 1 && r.SkipBOM {
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		text, err := r.dec.decode(raw)
		r.line = r.line[:0]
		if err != nil {
			return "", &LineError{Line: r.lineNo, Offset: offset, Err: err}
		}

		if r.TrimLines {
			text = strings.TrimSpace(text)
		}
		if text == "" && !r.EmitEmptyLines {
			continue
		}
		return text, nil
	}
}

// ReadAll reads lines until io.EOF and returns them with the first other error.
func (r *LineReader) ReadAll() (lines []string, err error) {
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// BytesProcessed reports how many raw bytes, terminators included, belong to
// lines returned or skipped so far.
func (r *LineReader) BytesProcessed() int64 {
	return r.bytesProcessed
}

// Line reports the number of physical lines consumed, skipped lines included.
func (r *LineReader) Line() int {
	return r.lineNo
}

// Encoding returns the canonical name of the decoding encoding.
func (r *LineReader) Encoding() string {
	return r.dec.name
}

// OwnsSource reports whether Close will close the underlying source.
func (r *LineReader) OwnsSource() bool {
	return r.ownsSource
}

// Close releases the buffers and closes the source when the reader owns it.
// Calling Close more than once is a no-op.
func (r *LineReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.buf = nil
	r.line = nil
	r.bufPos, r.bufLen = 0, 0

	if !r.ownsSource || !r.opened {
		return nil
	}
	r.Logger.V(4).Info("closing source", "bytesProcessed", r.bytesProcessed, "lines", r.lineNo)
	return r.src.Close()
}

// nextRawLine accumulates the bytes of the next physical line, excluding its
// terminator, and reports how many source bytes it spans.
func (r *LineReader) nextRawLine() ([]byte, int, error) {
	for {
		if r.bufPos >= r.bufLen {
			err := r.fill()
			if errors.Is(err, io.EOF) {
				if r.pending > 0 {
					return r.takeLine()
				}
				return nil, 0, io.EOF
			}
			if err != nil {
				return nil, 0, &LineError{
					Line:   r.lineNo + 1,
					Offset: r.bytesProcessed,
					Err:    fmt.Errorf("%w: %w", ErrSourceRead, err),
				}
			}
			continue
		}

		// A "\r" closed the line; swallow the "\n" of a "\r\n" pair.
		if r.crPending {
			if r.buf[r.bufPos] == '\n' {
				r.bufPos++
				r.pending++
			}
			return r.takeLine()
		}

		data := r.buf[r.bufPos:r.bufLen]
		next := bytes.IndexByte(data, '\n')
		if cr := bytes.IndexByte(data, '\r'); cr >= 0 && (next < 0 || cr < next) {
			next = cr
		}
		if next < 0 {
			r.line = append(r.line, data...)
			r.bufPos = r.bufLen
			r.pending += len(data)
			continue
		}

		r.line = append(r.line, data[:next]...)
		r.bufPos += next + 1
		r.pending += next + 1
		if data[next] == '\n' {
			return r.takeLine()
		}
		r.crPending = true
	}
}

func (r *LineReader) takeLine() ([]byte, int, error) {
	consumed := r.pending
	r.pending = 0
	r.crPending = false
	return r.line, consumed, nil
}

// fill replaces the chunk buffer with the next chunk from the source. A read
// error returned together with data is held back until the data is consumed.
// io.EOF is sticky; other errors are reported once so a later call retries.
func (r *LineReader) fill() error {
	if r.closed {
		return ErrClosed
	}
	for empty := 0; ; empty++ {
		if err := r.bufErr; err != nil {
			if err != io.EOF {
				r.bufErr = nil
			}
			return err
		}
		if empty >= maxEmptyReads {
			return io.ErrNoProgress
		}

		n, err := r.src.Read(r.buf)
		r.bufErr = err
		if n > 0 {
			r.bufPos = 0
			r.bufLen = n
			r.Logger.V(5).Info("read chunk", "bytes", n, "offset", r.bytesProcessed+int64(r.pending))
			return nil
		}
	}
}
