package rowiter

import (
	"io"
	"os"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/verr"
	"github.com/astrogo/votable/votxml"
)

// trackReader retains every byte handed to the consumer so earlier regions
// can be sliced back out by absolute offset. Released regions are dropped.
type trackReader struct {
	r    io.Reader
	base int64 // absolute offset of buf[0]
	buf  []byte
}

func (t *trackReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.buf = append(t.buf, p[:n]...)
	}
	return n, err
}

// slice copies the bytes in [from, to). Both offsets must lie in the
// retained window.
func (t *trackReader) slice(from, to int64) []byte {
	lo, hi := from-t.base, to-t.base
	out := make([]byte, hi-lo)
	copy(out, t.buf[lo:hi])
	return out
}

// release drops retained bytes before upTo.
func (t *trackReader) release(upTo int64) {
	n := upTo - t.base
	if n <= 0 {
		return
	}
	t.buf = t.buf[n:]
	t.base = upTo
}

// tail drains the underlying reader and returns everything retained from
// the given offset to the end of input.
func (t *trackReader) tail(from int64) ([]byte, error) {
	rest, err := io.ReadAll(t.r)
	if err != nil {
		return nil, verr.IO(err)
	}
	t.buf = append(t.buf, rest...)
	return t.slice(from, t.base+int64(len(t.buf))), nil
}

// RawRow is one TABLEDATA row with its source byte range. A row's range
// starts where the previous row's ended, so ranges tile the region between
// the TABLEDATA start tag and its end tag with no gaps.
type RawRow struct {
	Cells []string
	Start int64
	End   int64
	Bytes []byte
}

// Raw iterates positioned TABLEDATA rows. It keeps the prefix of the
// document up to and including the TABLEDATA start tag, so a new document
// can be assembled from prefix, a subset of row bytes, and suffix.
type Raw struct {
	sr     *votxml.StreamReader
	tr     *trackReader
	prefix []byte
	high   int64 // end of the previous row
	closer io.Closer
}

// OpenRaw positions a raw iterator just after the TABLEDATA start tag of
// the first data table. Documents whose first table uses a binary encoding
// are rejected.
func OpenRaw(r io.Reader) (*Raw, error) {
	tr := &trackReader{r: r}
	sr, err := votxml.NewStreamReader(tr)
	if err != nil {
		return nil, err
	}
	if sr.DataEncoding() != votxml.EncTableData {
		return nil, verr.Structure("DATA", "raw row iteration requires TABLEDATA, got "+sr.DataEncoding().String())
	}
	high := sr.InputOffset()
	it := &Raw{sr: sr, tr: tr, prefix: tr.slice(0, high), high: high}
	tr.release(high)
	return it, nil
}

// OpenRawFile opens path for raw iteration; Close releases the file.
func OpenRawFile(path string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, verr.IO(err)
	}
	it, err := OpenRaw(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	it.closer = f
	return it, nil
}

// Prefix returns the document bytes up to and including the TABLEDATA
// start tag.
func (it *Raw) Prefix() []byte { return it.prefix }

// Table returns the table being iterated.
func (it *Raw) Table() *votable.Table { return it.sr.Table() }

// Next returns the next positioned row, or io.EOF after the last one.
func (it *Raw) Next() (*RawRow, error) {
	cells, err := it.sr.NextTDCells()
	if err != nil {
		return nil, err
	}
	end := it.sr.InputOffset()
	row := &RawRow{
		Cells: cells,
		Start: it.high,
		End:   end,
		Bytes: it.tr.slice(it.high, end),
	}
	it.high = end
	it.tr.release(end)
	return row, nil
}

// Suffix drains the rest of the input and returns everything after the
// last row, starting with the TABLEDATA end tag. Valid once Next has
// returned io.EOF.
func (it *Raw) Suffix() ([]byte, error) {
	return it.tr.tail(it.high)
}

func (it *Raw) Close() error {
	if it.closer != nil {
		return it.closer.Close()
	}
	return nil
}
