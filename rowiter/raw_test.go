package rowiter_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/rowiter"
	"github.com/astrogo/votable/votxml"
)

const rawDoc = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE name="stars">
      <FIELD name="RA" datatype="double"/>
      <FIELD name="Dec" datatype="double"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>1.5</TD><TD>-30.25</TD></TR>
          <TR><TD>12.0</TD><TD>0.5</TD></TR>
          <TR><TD>200.125</TD><TD>45.5</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
    <INFO name="QUERY_STATUS" value="OK"/>
  </RESOURCE>
</VOTABLE>
`

func collectRows(t *testing.T, it *rowiter.Raw) []*rowiter.RawRow {
	t.Helper()
	var rows []*rowiter.RawRow
	for {
		row, err := it.Next()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		rows = append(rows, row)
	}
}

// Prefix, row bytes and suffix must reassemble the input exactly, and the
// row ranges must tile the region between them with no gaps.
func TestRawRangesTileInput(t *testing.T) {
	it, err := rowiter.OpenRaw(strings.NewReader(rawDoc))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if it.Table().Name != "stars" {
		t.Fatalf("table = %q", it.Table().Name)
	}

	rows := collectRows(t, it)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Cells[1] != "-30.25" || rows[2].Cells[0] != "200.125" {
		t.Fatalf("unexpected cells: %v %v", rows[0].Cells, rows[2].Cells)
	}

	prev := int64(len(it.Prefix()))
	for i, row := range rows {
		if row.Start != prev {
			t.Fatalf("row %d starts at %d, previous ended at %d", i, row.Start, prev)
		}
		if int64(len(row.Bytes)) != row.End-row.Start {
			t.Fatalf("row %d byte slice does not match its range", i)
		}
		prev = row.End
	}

	suffix, err := it.Suffix()
	if err != nil {
		t.Fatalf("suffix: %v", err)
	}
	var buf bytes.Buffer
	buf.Write(it.Prefix())
	for _, row := range rows {
		buf.Write(row.Bytes)
	}
	buf.Write(suffix)
	if buf.String() != rawDoc {
		t.Fatalf("reassembled document differs from input:\n%s", buf.String())
	}
}

// Dropping rows from the middle still yields a well-formed document.
func TestRawRowSubsetParses(t *testing.T) {
	it, err := rowiter.OpenRaw(strings.NewReader(rawDoc))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := collectRows(t, it)
	suffix, err := it.Suffix()
	if err != nil {
		t.Fatalf("suffix: %v", err)
	}

	var buf bytes.Buffer
	buf.Write(it.Prefix())
	buf.Write(rows[1].Bytes)
	buf.Write(suffix)

	vot, err := votxml.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse subset: %v", err)
	}
	tbl := vot.Resources[0].Subs[0].(*votable.Table)
	got := tbl.Data.Rows()
	if len(got) != 1 || !got[0][0].Equal(votable.Double(12.0)) {
		t.Fatalf("subset rows = %v", got)
	}
}

func TestTypedRows(t *testing.T) {
	it, err := rowiter.Open(strings.NewReader(rawDoc))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var n int
	for {
		row, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if len(row) != 2 {
			t.Fatalf("row %d has %d cells", n, len(row))
		}
		n++
	}
	if n != 3 {
		t.Fatalf("iterated %d rows, want 3", n)
	}
	if err := it.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if post := it.Document().Resources[0].PostInfos; len(post) != 1 {
		t.Fatalf("trailing infos = %+v", post)
	}
}

func TestReadMetadata(t *testing.T) {
	vot, err := rowiter.ReadMetadata(strings.NewReader(rawDoc))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	tbl := vot.Resources[0].Subs[0].(*votable.Table)
	if len(tbl.Fields()) != 2 {
		t.Fatalf("fields = %d, want 2", len(tbl.Fields()))
	}
	if tbl.Data != nil && len(tbl.Data.Rows()) != 0 {
		t.Fatalf("metadata read must not materialize rows")
	}
}

func TestRawRejectsBinary(t *testing.T) {
	doc := `<VOTABLE version="1.4"><RESOURCE><TABLE>
<FIELD name="a" datatype="int"/>
<DATA><BINARY><STREAM encoding="base64">AAAAAQ==</STREAM></BINARY></DATA>
</TABLE></RESOURCE></VOTABLE>`
	if _, err := rowiter.OpenRaw(strings.NewReader(doc)); err == nil {
		t.Fatalf("binary documents must be rejected for raw iteration")
	}
}
