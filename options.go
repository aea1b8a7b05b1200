package swiftline

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/creasty/defaults"
)

// Options collects the reader settings so they can be loaded from a file.
type Options struct {
	BufferSize     int    `yaml:"bufferSize" default:"1024"`
	Encoding       string `yaml:"encoding" default:"utf-8"`
	TrimLines      bool   `yaml:"trimLines"`
	EmitEmptyLines bool   `yaml:"emitEmptyLines" default:"true"`
	SkipBOM        bool   `yaml:"skipBOM"`

	Quote     string `yaml:"quote" default:"\""`
	Separator string `yaml:"separator" default:","`
	Strict    bool   `yaml:"strict"`
}

// DefaultOptions returns Options populated from the default tags.
func DefaultOptions() Options {
	var o Options
	if err := defaults.Set(&o); err != nil {
		// The tags are constant; a failure here is a programming error.
		panic(fmt.Sprintf("swiftline: invalid option defaults: %v", err))
	}
	return o
}

// Validate checks the buffer size and the CSV dialect.
func (o Options) Validate() error {
	if o.BufferSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, o.BufferSize)
	}
	quote, err := singleRune("quote", o.Quote)
	if err != nil {
		return err
	}
	sep, err := singleRune("separator", o.Separator)
	if err != nil {
		return err
	}
	if quote == sep {
		return errors.New("swiftline: quote and separator must differ")
	}
	if quote == '\r' || quote == '\n' || sep == '\r' || sep == '\n' {
		return errors.New("swiftline: quote and separator cannot be line terminators")
	}
	return nil
}

// NewLineReader builds a LineReader over src configured by o.
func (o Options) NewLineReader(src Source) (*LineReader, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	lr, err := NewLineReader(src, o.BufferSize, o.Encoding)
	if err != nil {
		return nil, err
	}
	lr.TrimLines = o.TrimLines
	lr.EmitEmptyLines = o.EmitEmptyLines
	lr.SkipBOM = o.SkipBOM
	return lr, nil
}

// NewCSVReader builds a CSVReader over src configured by o.
func (o Options) NewCSVReader(src Source) (*CSVReader, error) {
	lr, err := o.NewLineReader(src)
	if err != nil {
		return nil, err
	}
	cr := NewCSVReader(lr)
	cr.Quote, _ = utf8.DecodeRuneInString(o.Quote)
	cr.Separator, _ = utf8.DecodeRuneInString(o.Separator)
	cr.Strict = o.Strict
	return cr, nil
}

func singleRune(name, s string) (rune, error) {
	c, size := utf8.DecodeRuneInString(s)
	if s == "" || c == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("swiftline: %s must be a single character, got %q", name, s)
	}
	return c, nil
}
