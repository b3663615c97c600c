package hcidx

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/astrogo/votable/internal/healpix"
	"github.com/astrogo/votable/rowiter"
	"github.com/astrogo/votable/verr"
)

// BuildOptions tunes an index build. Zero values select auto-discovery of
// the positional columns and depth 8.
type BuildOptions struct {
	LonCol string
	LatCol string
	Depth  uint8
}

// DefaultDepth balances index size against cell granularity.
const DefaultDepth = 8

// BuildFile indexes a cell-sorted TABLEDATA document. Rows must be sorted
// by ascending cell number at the chosen depth; a row that goes backwards
// aborts the build. A row whose coordinates do not parse is assigned cell
// 0 and logged, matching the tolerance of the sort tooling that produced
// the file.
func BuildFile(path string, opts BuildOptions) (*Index, error) {
	it, err := rowiter.OpenRawFile(path)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	depth := opts.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	if depth > healpix.MaxDepth {
		return nil, verr.Customf("depth %d out of range (max %d)", depth, healpix.MaxDepth)
	}

	fields := it.Table().Fields()
	ilon, ilat, err := PositionalColumns(fields, opts.LonCol, opts.LatCol)
	if err != nil {
		return nil, err
	}
	lonCol, latCol := fields[ilon].Name, fields[ilat].Name
	log.Infof("indexing with lon=%q lat=%q depth=%d", lonCol, latCol, depth)

	nCells := healpix.NHash(depth)
	offsets := make([]uint64, 0, nCells+1)
	var end uint64
	for irow := 0; ; irow++ {
		row, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cell := rowCell(depth, row.Cells, ilon, ilat, irow)
		if cell+1 < uint64(len(offsets)) {
			return nil, verr.Customf("row %d breaks the cell ordering: the file is not sorted", irow)
		}
		// Record the start of the first row of each cell; empty cells
		// in between inherit the same offset.
		for uint64(len(offsets)) <= cell {
			offsets = append(offsets, uint64(row.Start))
		}
		end = uint64(row.End)
	}
	for uint64(len(offsets)) <= nCells {
		offsets = append(offsets, end)
	}
	if err := it.Close(); err != nil {
		return nil, err
	}

	x := &Index{
		Depth:   depth,
		FName:   filepath.Base(path),
		LonCol:  lonCol,
		LatCol:  latCol,
		Offsets: offsets,
	}
	if st, err := os.Stat(path); err == nil {
		x.SrcLen = uint64(st.Size())
		x.MTime = st.ModTime().Unix()
	}
	return x, nil
}

func rowCell(depth uint8, cells []string, ilon, ilat, irow int) uint64 {
	if ilon >= len(cells) || ilat >= len(cells) {
		log.Errorf("row %d has no positional cells; assigned cell 0", irow)
		return 0
	}
	lon, err := strconv.ParseFloat(cells[ilon], 64)
	if err != nil {
		log.Errorf("row %d: bad longitude %q; assigned cell 0", irow, cells[ilon])
		return 0
	}
	lat, err := strconv.ParseFloat(cells[ilat], 64)
	if err != nil {
		log.Errorf("row %d: bad latitude %q; assigned cell 0", irow, cells[ilat])
		return 0
	}
	return healpix.HashDeg(depth, lon, lat)
}
