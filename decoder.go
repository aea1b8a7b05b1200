package swiftline

import (
	"github.com/jszwec/csvutil"
)

// NewDecoder returns a csvutil.Decoder that unmarshals the records of cr into
// structs tagged with `csv:"name"`. The header is read from cr unless one was
// already set, so an empty input yields ErrEmptyHeader.
func NewDecoder(cr *CSVReader) (*csvutil.Decoder, error) {
	header := cr.Header()
	if header == nil {
		var err error
		if header, err = cr.ReadHeader(); err != nil {
			return nil, err
		}
	}
	return csvutil.NewDecoder(cr, header...)
}
