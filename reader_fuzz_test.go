package swiftline

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzLineReaderChunkInvariance(f *testing.F) {
	seeds := []string{
		"",
		"a\nb\n",
		"a\r\nb\rc",
		"\r\r\n\n",
		"héllo\r\n世界",
		"\xff\nok\n",
		"trailing\n",
		"  spaced  \n\n",
	}
	for _, seed := range seeds {
		f.Add(seed, false, false)
	}

	f.Fuzz(func(t *testing.T, input string, trim, skipEmpty bool) {
		if len(input) > 1<<9 {
			t.Skip()
		}

		configure := func(lr *LineReader) {
			lr.TrimLines = trim
			lr.EmitEmptyLines = !skipEmpty
		}

		want, wantBytes := readLinesWithErrors(input, len(input)+1, configure)
		if wantBytes != int64(len(input)) {
			t.Fatalf("BytesProcessed() = %d, want %d, input=%q", wantBytes, len(input), truncateForMessage(input))
		}

		for size := 1; size <= len(input); size++ {
			got, gotBytes := readLinesWithErrors(input, size, configure)
			if !linesEqual(got, want) {
				t.Fatalf("bufSize=%d changed lines:\n got=%q\nwant=%q\ninput=%q", size, got, want, truncateForMessage(input))
			}
			if gotBytes != wantBytes {
				t.Fatalf("bufSize=%d: BytesProcessed() = %d, want %d", size, gotBytes, wantBytes)
			}
		}

		// Without \r, trimming or skipping, joining lines rebuilds the input
		// up to one trailing terminator.
		if !trim && !skipEmpty && utf8.ValidString(input) && !strings.Contains(input, "\r") {
			joined := strings.Join(want, "\n")
			if joined != strings.TrimSuffix(input, "\n") {
				t.Fatalf("round trip mismatch: joined=%q input=%q", joined, truncateForMessage(input))
			}
		}
	})
}

// readLinesWithErrors collects every line, recording decode failures as a
// marker so the reader keeps going past them.
func readLinesWithErrors(input string, bufSize int, configure func(*LineReader)) ([]string, int64) {
	lr, err := NewLineReader(NewReaderSource(strings.NewReader(input)), bufSize, "")
	if err != nil {
		panic(err)
	}
	configure(lr)

	var out []string
	for {
		line, err := lr.ReadLine()
		if err == io.EOF {
			return out, lr.BytesProcessed()
		}
		var lerr *LineError
		if errors.As(err, &lerr) && errors.Is(err, ErrDecoding) {
			out = append(out, fmt.Sprintf("<decode error line %d offset %d>", lerr.Line, lerr.Offset))
			continue
		}
		if err != nil {
			panic(err)
		}
		out = append(out, line)
	}
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func truncateForMessage(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
