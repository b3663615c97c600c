// Package rowiter provides row-at-a-time access to the first data table of
// a document: typed rows for any encoding, and raw positioned TABLEDATA
// rows whose byte ranges tile the data block contiguously.
package rowiter

import (
	"io"
	"os"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/verr"
	"github.com/astrogo/votable/votxml"
)

// Rows iterates the typed rows of the first table carrying data. Once Next
// returns an error the iterator stays in that state.
type Rows struct {
	sr     *votxml.StreamReader
	closer io.Closer
}

// Open positions a typed iterator just inside the first DATA block.
func Open(r io.Reader) (*Rows, error) {
	sr, err := votxml.NewStreamReader(r)
	if err != nil {
		return nil, err
	}
	return &Rows{sr: sr}, nil
}

// OpenFile opens path for typed iteration; Close releases the file.
func OpenFile(path string) (*Rows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, verr.IO(err)
	}
	it, err := Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	it.closer = f
	return it, nil
}

// Document returns the metadata parsed before the DATA block.
func (it *Rows) Document() *votable.VOTable { return it.sr.Document() }

// Table returns the table being iterated, or nil for a metadata-only
// document.
func (it *Rows) Table() *votable.Table { return it.sr.Table() }

// Encoding reports the data variant being iterated.
func (it *Rows) Encoding() votxml.Encoding { return it.sr.DataEncoding() }

// Next returns the next typed row, or io.EOF after the last one.
func (it *Rows) Next() ([]votable.Value, error) {
	if it.sr.Table() == nil {
		return nil, io.EOF
	}
	return it.sr.NextRow()
}

// Finish drains the remaining document so trailing INFO elements land in
// the metadata tree.
func (it *Rows) Finish() error { return it.sr.Finish() }

func (it *Rows) Close() error {
	if it.closer != nil {
		return it.closer.Close()
	}
	return nil
}

// ReadMetadata parses a document up to the first DATA block and returns
// the partial tree without touching the rows.
func ReadMetadata(r io.Reader) (*votable.VOTable, error) {
	sr, err := votxml.NewStreamReader(r)
	if err != nil {
		return nil, err
	}
	return sr.Document(), nil
}
