package swiftline

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const defaultEncoding = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lineDecoder turns the raw bytes of one assembled line into text. A nil
// decoder means UTF-8, which only needs validation.
type lineDecoder struct {
	name    string
	decoder *encoding.Decoder
	encoder *encoding.Encoder
}

// newLineDecoder resolves an encoding label (WHATWG names and aliases such as
// "utf-8", "latin1", "windows-1252", "shift_jis"). Encodings that do not
// keep '\n' and '\r' as single bytes are rejected, because terminators are
// located before decoding.
func newLineDecoder(label string) (*lineDecoder, error) {
	if strings.TrimSpace(label) == "" {
		label = defaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	if strings.HasPrefix(name, "utf-16") {
		return nil, fmt.Errorf("%w: %q is not ASCII compatible", ErrUnknownEncoding, label)
	}
	if name == defaultEncoding {
		return &lineDecoder{name: name}, nil
	}
	return &lineDecoder{name: name, decoder: enc.NewDecoder(), encoder: enc.NewEncoder()}, nil
}

func (d *lineDecoder) decode(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	if d.decoder == nil {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: %s: invalid byte sequence", ErrDecoding, d.name)
		}
		return string(b), nil
	}

	out, _, err := transform.Bytes(d.decoder, b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDecoding, d.name, err)
	}
	// x/text decoders substitute U+FFFD for undefined bytes. A replacement
	// character is only genuine when it encodes back to the input.
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, _, err := transform.Bytes(d.encoder, out)
		if err != nil || !bytes.Equal(back, b) {
			return "", fmt.Errorf("%w: %s: undefined byte sequence", ErrDecoding, d.name)
		}
	}
	return string(out), nil
}
