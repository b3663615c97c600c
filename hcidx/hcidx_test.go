package hcidx_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/hcidx"
	"github.com/astrogo/votable/internal/healpix"
	"github.com/astrogo/votable/votxml"
)

type star struct {
	lon, lat float64
	name     string
}

var stars = []star{
	{12.3, 37.5, "aldhibain"},
	{83.633, 22.0145, "alnath"},
	{101.287, -16.716, "sirius"},
	{152.093, 11.967, "regulus"},
	{201.298, -11.161, "spica"},
	{213.915, 19.182, "arcturus"},
	{279.235, 38.784, "vega"},
	{297.696, 8.868, "altair"},
	{310.358, 45.280, "deneb"},
	{344.413, -29.622, "fomalhaut"},
}

// sortedDoc renders the stars as a TABLEDATA document sorted by cell
// number at the given depth.
func sortedDoc(depth uint8) string {
	rows := append([]star(nil), stars...)
	sort.Slice(rows, func(i, j int) bool {
		return healpix.HashDeg(depth, rows[i].lon, rows[i].lat) <
			healpix.HashDeg(depth, rows[j].lon, rows[j].lat)
	})
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE name="stars">
      <FIELD name="RAJ2000" datatype="double" ucd="pos.eq.ra;meta.main" unit="deg"/>
      <FIELD name="DEJ2000" datatype="double" ucd="pos.eq.dec;meta.main" unit="deg"/>
      <FIELD name="Name" datatype="char" arraysize="16*"/>
      <DATA>
        <TABLEDATA>`)
	for _, s := range rows {
		fmt.Fprintf(&b, "\n          <TR><TD>%g</TD><TD>%g</TD><TD>%s</TD></TR>", s.lon, s.lat, s.name)
	}
	b.WriteString(`
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>
`)
	return b.String()
}

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stars.vot")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestBuildFile(t *testing.T) {
	const depth = uint8(2)
	doc := sortedDoc(depth)
	path := writeDoc(t, doc)

	x, err := hcidx.BuildFile(path, hcidx.BuildOptions{Depth: depth})
	require.NoError(t, err)

	require.EqualValues(t, depth, x.Depth)
	require.Equal(t, "stars.vot", x.FName)
	require.Equal(t, "RAJ2000", x.LonCol)
	require.Equal(t, "DEJ2000", x.LatCol)
	require.EqualValues(t, len(doc), x.SrcLen)
	require.Len(t, x.Offsets, int(healpix.NHash(depth))+1)

	for i := 1; i < len(x.Offsets); i++ {
		require.GreaterOrEqual(t, x.Offsets[i], x.Offsets[i-1], "offsets must be non-decreasing at %d", i)
	}

	tdOpen := strings.Index(doc, "<TABLEDATA>") + len("<TABLEDATA>")
	require.EqualValues(t, tdOpen, x.DataStart(), "prefix must end just after the TABLEDATA start tag")
	lastRowEnd := strings.LastIndex(doc, "</TR>") + len("</TR>")
	require.EqualValues(t, lastRowEnd, x.DataEnd(), "last offset must close the last row")
}

func TestBuildRejectsUnsorted(t *testing.T) {
	const depth = uint8(2)
	doc := sortedDoc(depth)
	// reverse the row order
	lines := strings.Split(doc, "\n")
	var rows []int
	for i, l := range lines {
		if strings.Contains(l, "<TR>") {
			rows = append(rows, i)
		}
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		lines[rows[i]], lines[rows[j]] = lines[rows[j]], lines[rows[i]]
	}
	path := writeDoc(t, strings.Join(lines, "\n"))

	_, err := hcidx.BuildFile(path, hcidx.BuildOptions{Depth: depth})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not sorted")
}

func TestIndexRoundTrip(t *testing.T) {
	const depth = uint8(2)
	path := writeDoc(t, sortedDoc(depth))
	x, err := hcidx.BuildFile(path, hcidx.BuildOptions{Depth: depth})
	require.NoError(t, err)

	idxPath := filepath.Join(filepath.Dir(path), "stars.hci")
	require.NoError(t, x.WriteFile(idxPath))

	y, err := hcidx.ReadFile(idxPath)
	require.NoError(t, err)
	require.Equal(t, x, y)
}

func TestQueryFile(t *testing.T) {
	const depth = uint8(2)
	doc := sortedDoc(depth)
	path := writeDoc(t, doc)
	x, err := hcidx.BuildFile(path, hcidx.BuildOptions{Depth: depth})
	require.NoError(t, err)

	// count the stars per depth-0 cell
	perCell := map[uint64]int{}
	for _, s := range stars {
		perCell[healpix.HashDeg(0, s.lon, s.lat)]++
	}

	for cell := uint64(0); cell < healpix.NHash(0); cell++ {
		var buf bytes.Buffer
		require.NoError(t, x.QueryFile(path, 0, cell, &buf))

		vot, err := votxml.Parse(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err, "cell %d sub-document must stay well formed", cell)
		tbl := vot.Resources[0].Subs[0].(*votable.Table)
		rows := tbl.Data.Rows()
		require.Len(t, rows, perCell[cell], "cell %d", cell)
		for _, row := range rows {
			lon, lat := row[0].F, row[1].F
			require.Equal(t, cell, healpix.HashDeg(0, lon, lat))
		}
	}
}

func TestQueryNextToIndex(t *testing.T) {
	const depth = uint8(2)
	path := writeDoc(t, sortedDoc(depth))
	x, err := hcidx.BuildFile(path, hcidx.BuildOptions{Depth: depth})
	require.NoError(t, err)
	idxPath := filepath.Join(filepath.Dir(path), "stars.hci")
	require.NoError(t, x.WriteFile(idxPath))

	cell := healpix.HashDeg(depth, stars[0].lon, stars[0].lat)
	var direct, viaIndex bytes.Buffer
	require.NoError(t, x.QueryFile(path, depth, cell, &direct))
	require.NoError(t, hcidx.Query(idxPath, depth, cell, &viaIndex))
	require.Equal(t, direct.String(), viaIndex.String())
}

func TestQueryRejectsDeeperDepth(t *testing.T) {
	x := &hcidx.Index{Depth: 2, Offsets: make([]uint64, healpix.NHash(2)+1)}
	_, _, err := x.CellByteRange(3, 0)
	require.Error(t, err)
}

func TestQueryRejectsCellOutOfRange(t *testing.T) {
	x := &hcidx.Index{Depth: 2, Offsets: make([]uint64, healpix.NHash(2)+1)}
	_, _, err := x.CellByteRange(0, healpix.NHash(0))
	require.Error(t, err)
}

func TestPositionalColumns(t *testing.T) {
	byUCD := []*votable.Field{
		votable.NewField("Name", votable.DTChar),
		func() *votable.Field {
			f := votable.NewField("alpha", votable.DTDouble)
			f.UCD = "pos.eq.ra;meta.main"
			return f
		}(),
		func() *votable.Field {
			f := votable.NewField("delta", votable.DTDouble)
			f.UCD = "pos.eq.dec;meta.main"
			return f
		}(),
	}
	ilon, ilat, err := hcidx.PositionalColumns(byUCD, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, ilon)
	require.Equal(t, 2, ilat)

	byName := []*votable.Field{
		votable.NewField("RAJ2000", votable.DTDouble),
		votable.NewField("DEJ2000", votable.DTDouble),
	}
	ilon, ilat, err = hcidx.PositionalColumns(byName, "", "")
	require.NoError(t, err)
	require.Equal(t, 0, ilon)
	require.Equal(t, 1, ilat)

	// an explicit column must hold floats
	_, _, err = hcidx.PositionalColumns(byUCD, "Name", "delta")
	require.Error(t, err)

	_, _, err = hcidx.PositionalColumns([]*votable.Field{votable.NewField("x", votable.DTInt)}, "", "")
	require.Error(t, err)
}
