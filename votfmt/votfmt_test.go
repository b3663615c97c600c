package votfmt_test

import (
	"bytes"
	"strings"
	"testing"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/votfmt"
	"github.com/astrogo/votable/votxml"
)

const fmtDoc = `<VOTABLE version="1.4">
  <DESCRIPTION>Sample catalogue</DESCRIPTION>
  <RESOURCE ID="R1">
    <COOSYS ID="J2000" system="eq_FK5" equinox="J2000"/>
    <TABLE name="stars">
      <FIELD name="RA" datatype="double" ucd="pos.eq.ra;meta.main" unit="deg"/>
      <FIELD name="Dec" datatype="double" ucd="pos.eq.dec;meta.main" unit="deg"/>
      <FIELD name="Name" datatype="char" arraysize="8*"/>
      <FIELD name="Flag" datatype="boolean"/>
      <FIELD name="Count" datatype="int">
        <VALUES null="-1"/>
      </FIELD>
      <DATA>
        <TABLEDATA>
          <TR><TD>1.5</TD><TD>-30.25</TD><TD>alpha</TD><TD>T</TD><TD>12</TD></TR>
          <TR><TD>200.125</TD><TD>45.5</TD><TD></TD><TD>?</TD><TD>-1</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
  <INFO name="QUERY_STATUS" value="OK"/>
</VOTABLE>`

func parseFmtDoc(t *testing.T) *votable.VOTable {
	t.Helper()
	vot, err := votxml.Parse(strings.NewReader(fmtDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return vot
}

func docTable(t *testing.T, vot *votable.VOTable) *votable.Table {
	t.Helper()
	if len(vot.Resources) != 1 || len(vot.Resources[0].Subs) != 1 {
		t.Fatalf("unexpected document shape")
	}
	return vot.Resources[0].Subs[0].(*votable.Table)
}

func roundTrip(t *testing.T, f votfmt.Format, pretty bool) {
	t.Helper()
	vot := parseFmtDoc(t)

	var buf bytes.Buffer
	if err := votfmt.Marshal(&buf, vot, f, pretty); err != nil {
		t.Fatalf("%s: marshal: %v", f, err)
	}
	back, err := votfmt.Unmarshal(bytes.NewReader(buf.Bytes()), f)
	if err != nil {
		t.Fatalf("%s: unmarshal: %v\n%s", f, err, buf.String())
	}

	if back.Version != "1.4" {
		t.Fatalf("%s: version = %q", f, back.Version)
	}
	if back.Description == nil || back.Description.Content != "Sample catalogue" {
		t.Fatalf("%s: description = %+v", f, back.Description)
	}
	if len(back.PostInfos) != 1 || back.PostInfos[0].Value != "OK" {
		t.Fatalf("%s: post infos = %+v", f, back.PostInfos)
	}
	if len(back.Resources[0].Elems) != 1 {
		t.Fatalf("%s: resource elems = %+v", f, back.Resources[0].Elems)
	}
	cs, ok := back.Resources[0].Elems[0].(*votable.CooSys)
	if !ok || cs.System != "eq_FK5" {
		t.Fatalf("%s: coosys = %+v", f, back.Resources[0].Elems[0])
	}

	tbl := docTable(t, back)
	fields := tbl.Fields()
	if len(fields) != 5 {
		t.Fatalf("%s: fields = %d", f, len(fields))
	}
	if fields[2].ArraySize == nil || fields[2].ArraySize.String() != "8*" {
		t.Fatalf("%s: arraysize = %+v", f, fields[2].ArraySize)
	}
	if fields[4].Values == nil || fields[4].Values.Null != "-1" {
		t.Fatalf("%s: null sentinel lost: %+v", f, fields[4].Values)
	}

	want := docTable(t, vot).Data.Rows()
	got := tbl.Data.Rows()
	if len(got) != len(want) {
		t.Fatalf("%s: rows = %d, want %d", f, len(got), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if !got[i][j].Equal(want[i][j]) {
				t.Fatalf("%s: row %d field %d: %v != %v", f, i, j, got[i][j], want[i][j])
			}
		}
	}
	if !got[1][3].IsNull() || !got[1][4].IsNull() {
		t.Fatalf("%s: nulls lost in row 1: %v", f, got[1])
	}
}

func TestJSONRoundTrip(t *testing.T)       { roundTrip(t, votfmt.JSON, false) }
func TestJSONPrettyRoundTrip(t *testing.T) { roundTrip(t, votfmt.JSON, true) }
func TestYAMLRoundTrip(t *testing.T)       { roundTrip(t, votfmt.YAML, false) }

func TestJSONWrapperKey(t *testing.T) {
	var buf bytes.Buffer
	if err := votfmt.Marshal(&buf, parseFmtDoc(t), votfmt.JSON, false); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), `{"votable":`) {
		t.Fatalf("missing wrapper object: %s", buf.String()[:40])
	}
	if _, err := votfmt.Unmarshal(strings.NewReader(`{"other":{}}`), votfmt.JSON); err == nil {
		t.Fatalf("document without the votable key must be rejected")
	}
}

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]votfmt.Format{
		"json": votfmt.JSON,
		"yaml": votfmt.YAML,
		"yml":  votfmt.YAML,
		"toml": votfmt.TOML,
	} {
		got, err := votfmt.ParseFormat(s)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := votfmt.ParseFormat("csv"); err == nil {
		t.Fatalf("unknown format must be rejected")
	}
}

// TOML has no null literal, so the document avoids null cells.
func TestTOMLRoundTrip(t *testing.T) {
	doc := `<VOTABLE version="1.4"><RESOURCE><TABLE name="t">
<FIELD name="x" datatype="int"/>
<FIELD name="s" datatype="char" arraysize="4*"/>
<DATA><TABLEDATA>
<TR><TD>1</TD><TD>aa</TD></TR>
<TR><TD>2</TD><TD>bb</TD></TR>
</TABLEDATA></DATA>
</TABLE></RESOURCE></VOTABLE>`
	vot, err := votxml.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := votfmt.Marshal(&buf, vot, votfmt.TOML, false); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := votfmt.Unmarshal(bytes.NewReader(buf.Bytes()), votfmt.TOML)
	if err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	rows := docTable(t, back).Data.Rows()
	if len(rows) != 2 || !rows[0][0].Equal(votable.Int(1)) || rows[1][1].String() != "bb" {
		t.Fatalf("rows = %v", rows)
	}
}
