package swiftline

import (
	"fmt"
	"io"
	"os"
)

// Source is the chunk producer a LineReader pulls from.
//
// Read fills p with at most len(p) bytes and returns io.EOF once the
// stream is exhausted, following the io.Reader contract.
type Source interface {
	Open() error
	Read(p []byte) (int, error)
	Close() error
}

// openReporter is implemented by sources that know whether they were opened
// before being handed to a reader. A reader never closes such a source.
type openReporter interface {
	IsOpen() bool
}

// ReaderSource adapts an already open io.Reader. Readers built on it never
// own it, so the caller stays responsible for closing R.
type ReaderSource struct {
	R io.Reader
}

// NewReaderSource wraps r, panicking if r is nil.
func NewReaderSource(r io.Reader) *ReaderSource {
	if r == nil {
		panic("swiftline: reader source cannot be nil")
	}
	return &ReaderSource{R: r}
}

// Open is a no-op; the wrapped reader is already open.
func (s *ReaderSource) Open() error { return nil }

// IsOpen always reports true.
func (s *ReaderSource) IsOpen() bool { return true }

func (s *ReaderSource) Read(p []byte) (int, error) {
	return s.R.Read(p)
}

// Close closes R when it implements io.Closer.
func (s *ReaderSource) Close() error {
	if c, ok := s.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FileSource opens the file at Path lazily on Open.
type FileSource struct {
	Path string

	file *os.File
}

// NewFileSource returns an unopened source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Open opens the file. Calling Open on an open source is a no-op.
func (s *FileSource) Open() error {
	if s.file != nil {
		return nil
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Path, err)
	}
	s.file = f
	return nil
}

// IsOpen reports whether Open has succeeded and Close has not been called.
func (s *FileSource) IsOpen() bool { return s.file != nil }

func (s *FileSource) Read(p []byte) (int, error) {
	if s.file == nil {
		return 0, ErrSourceNotOpen
	}
	return s.file.Read(p)
}

// Close closes the file. Closing an unopened or closed source is a no-op.
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
