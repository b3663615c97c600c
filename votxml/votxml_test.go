package votxml_test

import (
	"bytes"
	"strings"
	"testing"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/votxml"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4">
  <DESCRIPTION>Sample catalogue</DESCRIPTION>
  <RESOURCE ID="R1">
    <TABLE name="stars">
      <FIELD name="RA" datatype="double" ucd="pos.eq.ra;meta.main" unit="deg"/>
      <FIELD name="Dec" datatype="double" ucd="pos.eq.dec;meta.main" unit="deg"/>
      <FIELD name="Mag" datatype="float"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>1.5</TD><TD>-30.25</TD><TD>12.5</TD></TR>
          <TR><TD>200.125</TD><TD>45.5</TD><TD></TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
    <INFO name="QUERY_STATUS" value="OK"/>
  </RESOURCE>
</VOTABLE>
`

func parseSample(t *testing.T) *votable.VOTable {
	t.Helper()
	vot, err := votxml.Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return vot
}

func sampleTable(t *testing.T, vot *votable.VOTable) *votable.Table {
	t.Helper()
	if len(vot.Resources) != 1 || len(vot.Resources[0].Subs) != 1 {
		t.Fatalf("unexpected document shape: %+v", vot)
	}
	tbl, ok := vot.Resources[0].Subs[0].(*votable.Table)
	if !ok {
		t.Fatalf("first sub element is not a table")
	}
	return tbl
}

func TestParseSampleDocument(t *testing.T) {
	vot := parseSample(t)
	if vot.Version != "1.4" {
		t.Fatalf("version = %q", vot.Version)
	}
	if vot.Description == nil || vot.Description.Content != "Sample catalogue" {
		t.Fatalf("description = %+v", vot.Description)
	}
	tbl := sampleTable(t, vot)
	fields := tbl.Fields()
	if len(fields) != 3 || fields[0].Name != "RA" || fields[2].Name != "Mag" {
		t.Fatalf("fields = %+v", fields)
	}
	rows := tbl.Data.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !rows[0][0].Equal(votable.Double(1.5)) {
		t.Fatalf("row 0 RA = %v", rows[0][0])
	}
	if !rows[1][2].IsNull() {
		t.Fatalf("empty TD must decode to null, got %v", rows[1][2])
	}
	post := vot.Resources[0].PostInfos
	if len(post) != 1 || post[0].Name != "QUERY_STATUS" || post[0].Value != "OK" {
		t.Fatalf("post infos = %+v", post)
	}
}

// Write then re-parse must reproduce the same structure, and a second
// write must agree byte for byte.
func TestWriteParseFixpoint(t *testing.T) {
	vot := parseSample(t)

	var first bytes.Buffer
	if err := votxml.Write(&first, vot, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := votxml.Parse(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, first.String())
	}
	var second bytes.Buffer
	if err := votxml.Write(&second, back, true); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("write is not a fixpoint:\n--- first\n%s\n--- second\n%s", first.String(), second.String())
	}

	rows := sampleTable(t, vot).Data.Rows()
	backRows := sampleTable(t, back).Data.Rows()
	if len(rows) != len(backRows) {
		t.Fatalf("row count changed: %d -> %d", len(rows), len(backRows))
	}
	for i := range rows {
		for j := range rows[i] {
			if !rows[i][j].Equal(backRows[i][j]) {
				t.Fatalf("row %d field %d: %v != %v", i, j, rows[i][j], backRows[i][j])
			}
		}
	}
}

func TestConvertEncodingRoundTrip(t *testing.T) {
	for _, target := range []string{votxml.ToBinary, votxml.ToBinary2, votxml.ToTableData} {
		vot := parseSample(t)
		want := sampleTable(t, vot).Data.Rows()

		if err := votxml.ConvertEncoding(vot, target); err != nil {
			t.Fatalf("%s: convert: %v", target, err)
		}
		if tag := sampleTable(t, vot).Data.Variant.VariantTag(); tag != target {
			t.Fatalf("variant = %s, want %s", tag, target)
		}

		var buf bytes.Buffer
		if err := votxml.Write(&buf, vot, true); err != nil {
			t.Fatalf("%s: write: %v", target, err)
		}
		back, err := votxml.Parse(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%s: reparse: %v\n%s", target, err, buf.String())
		}
		got := sampleTable(t, back).Data.Rows()
		if len(got) != len(want) {
			t.Fatalf("%s: row count %d, want %d", target, len(got), len(want))
		}
		for i := range want {
			for j := range want[i] {
				if !got[i][j].Equal(want[i][j]) {
					t.Fatalf("%s: row %d field %d: %v != %v", target, i, j, got[i][j], want[i][j])
				}
			}
		}
	}
}

func TestEmptyTableAllEncodings(t *testing.T) {
	vot := votable.New("1.4")
	tbl := votable.NewTable().SetName("empty").
		PushField(votable.NewField("x", votable.DTInt))
	tbl.Data = &votable.Data{Variant: &votable.TableData{Content: &votable.TableRows{}}}
	res := votable.NewResource()
	res.Subs = append(res.Subs, tbl)
	vot.Resources = append(vot.Resources, res)

	for _, target := range []string{votxml.ToTableData, votxml.ToBinary, votxml.ToBinary2} {
		if err := votxml.ConvertEncoding(vot, target); err != nil {
			t.Fatalf("%s: convert: %v", target, err)
		}
		var buf bytes.Buffer
		if err := votxml.Write(&buf, vot, true); err != nil {
			t.Fatalf("%s: write: %v", target, err)
		}
		back, err := votxml.Parse(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%s: reparse: %v\n%s", target, err, buf.String())
		}
		if rows := sampleTable(t, back).Data.Rows(); len(rows) != 0 {
			t.Fatalf("%s: expected no rows, got %d", target, len(rows))
		}
	}
}

func TestFieldAfterDataRejected(t *testing.T) {
	doc := `<VOTABLE version="1.4"><RESOURCE><TABLE>
<FIELD name="a" datatype="int"/>
<DATA><TABLEDATA><TR><TD>1</TD></TR></TABLEDATA></DATA>
<FIELD name="b" datatype="int"/>
</TABLE></RESOURCE></VOTABLE>`
	if _, err := votxml.Parse(strings.NewReader(doc)); err == nil {
		t.Fatalf("declaration after DATA must be rejected")
	}
}

func TestMissingFieldAttrRejected(t *testing.T) {
	doc := `<VOTABLE version="1.4"><RESOURCE><TABLE>
<FIELD name="a"/>
</TABLE></RESOURCE></VOTABLE>`
	if _, err := votxml.Parse(strings.NewReader(doc)); err == nil {
		t.Fatalf("FIELD without datatype must be rejected")
	}
}

func TestStreamReaderRows(t *testing.T) {
	sr, err := votxml.NewStreamReader(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sr.Table() == nil || sr.Table().Name != "stars" {
		t.Fatalf("table = %+v", sr.Table())
	}
	var rows [][]votable.Value
	for {
		row, err := sr.NextRow()
		if err != nil {
			break
		}
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("streamed %d rows, want 2", len(rows))
	}
	if !rows[1][2].IsNull() {
		t.Fatalf("row 1 Mag = %v, want null", rows[1][2])
	}
	if err := sr.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	post := sr.Document().Resources[0].PostInfos
	if len(post) != 1 || post[0].Value != "OK" {
		t.Fatalf("trailing infos not captured: %+v", post)
	}
}

const namespacedDoc = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4" xmlns="http://www.ivoa.net/xml/VOTable/v1.3" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.ivoa.net/xml/VOTable/v1.3 http://www.ivoa.net/xml/VOTable/v1.3">
  <RESOURCE>
    <INFO name="src" value="sim" xmlns:loc="urn:example:local" loc:flag="true"/>
    <TABLE name="stars">
      <FIELD name="RA" datatype="double" xsi:type="vot:Spectrum"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>1.5</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>
`

// Namespaced attributes must come back under their prefixed spelling, not
// the resolved namespace URI, or the rewritten document is not well formed.
func TestNamespacedExtrasRoundTrip(t *testing.T) {
	vot, err := votxml.Parse(strings.NewReader(namespacedDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, name := range []string{"xmlns", "xmlns:xsi", "xsi:schemaLocation"} {
		if _, ok := vot.Extras.Get(name); !ok {
			t.Fatalf("root extras missing %q: %+v", name, vot.Extras)
		}
	}
	tbl := sampleTable(t, vot)
	fields := tbl.Fields()
	if v, ok := fields[0].Extras.Get("xsi:type"); !ok || v != "vot:Spectrum" {
		t.Fatalf("field extras = %+v", fields[0].Extras)
	}
	info := vot.Resources[0].Infos[0]
	if _, ok := info.Extras.Get("xmlns:loc"); !ok {
		t.Fatalf("info lost its local declaration: %+v", info.Extras)
	}
	if v, ok := info.Extras.Get("loc:flag"); !ok || v != "true" {
		t.Fatalf("info extras = %+v", info.Extras)
	}

	var first bytes.Buffer
	if err := votxml.Write(&first, vot, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := first.String()
	if !strings.Contains(out, `xsi:schemaLocation="`) {
		t.Fatalf("schemaLocation lost its prefix:\n%s", out)
	}
	if strings.Contains(out, "XMLSchema-instance:schemaLocation") {
		t.Fatalf("namespace URI leaked into an attribute name:\n%s", out)
	}

	back, err := votxml.Parse(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out)
	}
	var second bytes.Buffer
	if err := votxml.Write(&second, back, true); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if out != second.String() {
		t.Fatalf("write is not a fixpoint:\n--- first\n%s\n--- second\n%s", out, second.String())
	}
}

func TestNamespacedExtrasStreaming(t *testing.T) {
	sr, err := votxml.NewStreamReader(strings.NewReader(namespacedDoc))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := sr.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	vot := sr.Document()
	if v, ok := vot.Extras.Get("xsi:schemaLocation"); !ok || !strings.HasPrefix(v, "http://www.ivoa.net/xml/VOTable/v1.3") {
		t.Fatalf("root extras = %+v", vot.Extras)
	}
	fields := sr.Table().Fields()
	if v, ok := fields[0].Extras.Get("xsi:type"); !ok || v != "vot:Spectrum" {
		t.Fatalf("field extras = %+v", fields[0].Extras)
	}
}
