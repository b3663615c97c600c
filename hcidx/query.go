package hcidx

import (
	"io"
	"os"
	"path/filepath"

	"github.com/astrogo/votable/internal/healpix"
	"github.com/astrogo/votable/verr"
)

// Query streams the sub-document covering one cell: the original prefix
// bytes, the rows of the cell, then the suffix bytes. The queried depth
// may be shallower than the index depth, in which case the cell expands
// to its range of index cells. The source document is looked up next to
// the index file under the recorded name and must still have the length
// recorded at build time.
func Query(indexPath string, queryDepth uint8, ipix uint64, w io.Writer) error {
	x, err := ReadFile(indexPath)
	if err != nil {
		return err
	}
	srcPath := filepath.Join(filepath.Dir(indexPath), x.FName)
	st, err := os.Stat(srcPath)
	if err != nil {
		return verr.Customf("indexed file %q not found next to the index", x.FName)
	}
	if uint64(st.Size()) != x.SrcLen {
		return verr.Customf("indexed file %q changed: expected %d bytes, found %d",
			x.FName, x.SrcLen, st.Size())
	}
	return x.QueryFile(srcPath, queryDepth, ipix, w)
}

// QueryFile extracts the cell sub-document from an explicit source path.
func (x *Index) QueryFile(srcPath string, queryDepth uint8, ipix uint64, w io.Writer) error {
	lo, hi, err := x.CellByteRange(queryDepth, ipix)
	if err != nil {
		return err
	}
	f, err := os.Open(srcPath)
	if err != nil {
		return verr.IO(err)
	}
	defer f.Close()

	if err := copyRange(w, f, 0, x.DataStart()); err != nil {
		return err
	}
	if err := copyRange(w, f, lo, hi); err != nil {
		return err
	}
	return copyRange(w, f, x.DataEnd(), x.SrcLen)
}

// CellByteRange returns the half-open byte range of the rows in the
// queried cell.
func (x *Index) CellByteRange(queryDepth uint8, ipix uint64) (lo, hi uint64, err error) {
	if queryDepth > x.Depth {
		return 0, 0, verr.Customf("query depth %d deeper than index depth %d", queryDepth, x.Depth)
	}
	cLo, cHi := healpix.CellRange(x.Depth, queryDepth, ipix)
	if cHi > x.NCells() {
		return 0, 0, verr.Customf("cell %d out of range at depth %d", ipix, queryDepth)
	}
	return x.Offsets[cLo], x.Offsets[cHi], nil
}

func copyRange(w io.Writer, f *os.File, from, to uint64) error {
	if to <= from {
		return nil
	}
	if _, err := f.Seek(int64(from), io.SeekStart); err != nil {
		return verr.IO(err)
	}
	if _, err := io.CopyN(w, f, int64(to-from)); err != nil {
		return verr.IO(err)
	}
	return nil
}
