// # SwiftLine: Chunked Line and CSV Reading for Go
//
// SwiftLine turns any chunk-producing byte source into a stream of decoded text lines, and layers a small CSV record reader on top. It never holds more than one chunk and one pending line in memory.
//
// # Features
//
// - `LineReader` pulls fixed-size chunks from a `Source`, splits on `\n`, `\r` and `\r\n`, and decodes each assembled line with a `golang.org/x/text` encoding.
// - Optional whitespace trimming, empty-line skipping and UTF-8 BOM removal.
// - `CSVReader` maps the first line to a header and every later line to a field-name keyed record, with configurable quote and separator runes and doubled-quote escaping.
// - `NewDecoder` feeds header-aligned rows into `csvutil` for struct decoding.
// - Structured error reporting via `LineError`, `ParseError` and sentinel errors usable with `errors.Is`.
//
// # Getting Started
//
// Wrap an `io.Reader` with `ReaderSource` (or a path with `FileSource`), build a reader with `NewLineReader` or `Options.NewCSVReader`, and call `ReadLine` / `ReadRecord` until `io.EOF`.
package swiftline
