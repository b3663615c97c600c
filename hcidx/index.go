// Package hcidx builds, persists and queries the HEALPix cumulative byte
// index of a cell-sorted TABLEDATA document. The index maps every cell at
// a fixed depth to the byte offset of its first row in the source file,
// so a cell query is three raw byte copies: document prefix, cell rows,
// document suffix.
package hcidx

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/astrogo/votable/internal/healpix"
	"github.com/astrogo/votable/verr"
)

var log = logrus.WithField("component", "hcidx")

// Magic opens every persisted index file.
const Magic = "HCI1"

const (
	flagMD5 = 1 << iota
	flagMTime
)

// Index is the in-memory cumulative index.
//
// Offsets holds NHash(Depth)+1 entries: Offsets[i] is the byte offset of
// the first row whose cell number is >= i, and the final entry is the end
// of the last row. Offsets[0] is therefore the length of the document
// prefix and the array is non-decreasing.
type Index struct {
	Depth  uint8
	FName  string // file name of the indexed document, no directory
	SrcLen uint64 // byte length of the indexed document
	MD5    []byte // 16 bytes when recorded
	MTime  int64  // Unix seconds of the source, 0 when unknown
	LonCol string
	LatCol string

	Offsets []uint64
}

// NCells returns the number of cells covered by the index.
func (x *Index) NCells() uint64 { return healpix.NHash(x.Depth) }

// DataStart returns the offset of the first row (end of the prefix).
func (x *Index) DataStart() uint64 { return x.Offsets[0] }

// DataEnd returns the offset just past the last row (start of the suffix).
func (x *Index) DataEnd() uint64 { return x.Offsets[len(x.Offsets)-1] }

// Write persists the index: the magic, a fixed big-endian header, three
// length-prefixed strings, then the offset array.
func (x *Index) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return verr.IO(err)
	}
	var flags uint8
	if len(x.MD5) == 16 {
		flags |= flagMD5
	}
	if x.MTime != 0 {
		flags |= flagMTime
	}
	if err := writeBE(bw, x.Depth, flags, x.SrcLen); err != nil {
		return err
	}
	if flags&flagMD5 != 0 {
		if _, err := bw.Write(x.MD5); err != nil {
			return verr.IO(err)
		}
	}
	if flags&flagMTime != 0 {
		if err := writeBE(bw, uint64(x.MTime)); err != nil {
			return err
		}
	}
	for _, s := range []string{x.FName, x.LonCol, x.LatCol} {
		if err := writeString(bw, s); err != nil {
			return err
		}
	}
	for _, off := range x.Offsets {
		if err := writeBE(bw, off); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return verr.IO(err)
	}
	return nil
}

// WriteFile persists the index to a file.
func (x *Index) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return verr.IO(err)
	}
	if err := x.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return verr.IO(err)
	}
	return nil
}

// Read loads an index written by Write.
func Read(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, verr.IO(err)
	}
	if string(magic) != Magic {
		return nil, verr.Customf("not a cumulative index file: bad magic %q", magic)
	}
	x := &Index{}
	var flags uint8
	if err := readBE(br, &x.Depth, &flags, &x.SrcLen); err != nil {
		return nil, err
	}
	if x.Depth > healpix.MaxDepth {
		return nil, verr.Customf("index depth %d out of range", x.Depth)
	}
	if flags&flagMD5 != 0 {
		x.MD5 = make([]byte, 16)
		if _, err := io.ReadFull(br, x.MD5); err != nil {
			return nil, verr.IO(err)
		}
	}
	if flags&flagMTime != 0 {
		var mt uint64
		if err := readBE(br, &mt); err != nil {
			return nil, err
		}
		x.MTime = int64(mt)
	}
	for _, dst := range []*string{&x.FName, &x.LonCol, &x.LatCol} {
		s, err := readString(br)
		if err != nil {
			return nil, err
		}
		*dst = s
	}
	n := healpix.NHash(x.Depth) + 1
	x.Offsets = make([]uint64, n)
	for i := range x.Offsets {
		if err := readBE(br, &x.Offsets[i]); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// ReadFile loads an index file.
func ReadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, verr.IO(err)
	}
	defer f.Close()
	return Read(f)
}

func writeBE(w io.Writer, vs ...any) error {
	for _, v := range vs {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return verr.IO(err)
		}
	}
	return nil
}

func readBE(r io.Reader, vs ...any) error {
	for _, v := range vs {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return verr.IO(err)
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xffff {
		return verr.Customf("string too long for index header: %d bytes", len(s))
	}
	if err := writeBE(w, uint16(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return verr.IO(err)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := readBE(r, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", verr.IO(err)
	}
	return string(buf), nil
}
