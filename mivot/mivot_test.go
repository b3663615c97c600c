package mivot_test

import (
	"bytes"
	"encoding/xml"
	"reflect"
	"strings"
	"testing"

	"github.com/astrogo/votable/mivot"
	"github.com/astrogo/votable/votxml"
)

func parseVodml(t *testing.T, doc string) (*mivot.Vodml, error) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := d.Token()
		if err != nil {
			t.Fatalf("no start element in %q: %v", doc, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return mivot.Parse(d, se)
		}
	}
}

const annotatedBlock = `<VODML xmlns="http://www.ivoa.net/xml/mivot">
  <REPORT status="OK">Mapped by hand.</REPORT>
  <MODEL name="meas" url="https://www.ivoa.net/xml/Meas/20200908/Meas-v1.0.vo-dml.xml"/>
  <GLOBALS>
    <INSTANCE dmid="space_sys" dmtype="coords:SpaceSys">
      <PRIMARY_KEY dmtype="ivoa:string" value="ICRS"/>
      <ATTRIBUTE dmrole="coords:frame" dmtype="ivoa:string" value="ICRS"/>
    </INSTANCE>
  </GLOBALS>
  <TEMPLATES tableref="stars">
    <WHERE primarykey="oid" value="42"/>
    <INSTANCE dmtype="meas:Position">
      <ATTRIBUTE dmrole="meas:error" dmtype="ivoa:real" ref="PosErr" arrayindex="0" unit="deg"/>
      <REFERENCE dmrole="meas:coordSys" dmref="space_sys"/>
      <COLLECTION dmrole="meas:points">
        <ATTRIBUTE dmtype="ivoa:real" ref="RA"/>
        <ATTRIBUTE dmtype="ivoa:real" ref="Dec"/>
      </COLLECTION>
    </INSTANCE>
  </TEMPLATES>
</VODML>`

func TestParseAnnotatedBlock(t *testing.T) {
	v, err := parseVodml(t, annotatedBlock)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Report == nil || v.Report.Status != "OK" || v.Report.Content != "Mapped by hand." {
		t.Fatalf("report = %+v", v.Report)
	}
	if len(v.Models) != 1 || v.Models[0].Name != "meas" {
		t.Fatalf("models = %+v", v.Models)
	}
	if v.Globals == nil || len(v.Globals.Elems) != 1 {
		t.Fatalf("globals = %+v", v.Globals)
	}
	in := v.Globals.Elems[0].(*mivot.Instance)
	if in.Dmid != "space_sys" || len(in.Elems) != 2 {
		t.Fatalf("globals instance = %+v", in)
	}
	if pk, ok := in.Elems[0].(*mivot.PrimaryKey); !ok || pk.Value != "ICRS" {
		t.Fatalf("primary key = %+v", in.Elems[0])
	}

	if len(v.Templates) != 1 {
		t.Fatalf("templates = %+v", v.Templates)
	}
	tp := v.Templates[0]
	if tp.TableRef != "stars" || len(tp.Wheres) != 1 || tp.Wheres[0].Value != "42" {
		t.Fatalf("templates header = %+v", tp)
	}
	pos := tp.Instances[0]
	a := pos.Elems[0].(*mivot.Attribute)
	if a.Ref == nil || *a.Ref != "PosErr" || a.ArrayIndex == nil || *a.ArrayIndex != 0 || a.Unit != "deg" {
		t.Fatalf("attribute = %+v", a)
	}
	col := pos.Elems[2].(*mivot.Collection)
	if col.Dmrole != "meas:points" || len(col.Elems) != 2 {
		t.Fatalf("collection = %+v", col)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	v, err := parseVodml(t, annotatedBlock)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	w := votxml.NewWriter(&buf, true)
	if err := mivot.Write(w, v); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	back, err := parseVodml(t, buf.String())
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(v, back) {
		t.Fatalf("round trip changed the block:\n%s", buf.String())
	}
}

func TestCollectionRejectsMixedChildren(t *testing.T) {
	doc := `<VODML><TEMPLATES><INSTANCE dmtype="a:T">
<COLLECTION dmrole="a:items">
  <INSTANCE dmtype="a:U"/>
  <ATTRIBUTE dmtype="ivoa:real" ref="x"/>
</COLLECTION>
</INSTANCE></TEMPLATES></VODML>`
	_, err := parseVodml(t, doc)
	if err == nil || !strings.Contains(err.Error(), "heterogeneous") {
		t.Fatalf("want heterogeneity error, got %v", err)
	}
}

func TestCollectionRejectsSecondJoin(t *testing.T) {
	doc := `<VODML><TEMPLATES><INSTANCE dmtype="a:T">
<COLLECTION dmrole="a:items">
  <JOIN dmref="other"/>
  <JOIN dmref="more"/>
</COLLECTION>
</INSTANCE></TEMPLATES></VODML>`
	if _, err := parseVodml(t, doc); err == nil {
		t.Fatalf("a second JOIN must be rejected")
	}
}

func TestAttributeValueRefExclusive(t *testing.T) {
	for _, attr := range []string{
		`value="1" ref="RA"`,
		``,
		`ref="RA" arrayindex="-1"`,
		`value="1" arrayindex="0"`,
	} {
		doc := `<VODML><TEMPLATES><INSTANCE dmtype="a:T">
<ATTRIBUTE dmrole="a:x" dmtype="ivoa:real" ` + attr + `/>
</INSTANCE></TEMPLATES></VODML>`
		if _, err := parseVodml(t, doc); err == nil {
			t.Fatalf("attribute with %q must be rejected", attr)
		}
	}
}

func TestInstanceRoleRules(t *testing.T) {
	// a top-level instance must not carry a dmrole
	doc := `<VODML><TEMPLATES><INSTANCE dmtype="a:T" dmrole="a:r"/></TEMPLATES></VODML>`
	if _, err := parseVodml(t, doc); err == nil {
		t.Fatalf("top-level dmrole must be rejected")
	}
	// a nested instance must carry one
	doc = `<VODML><TEMPLATES><INSTANCE dmtype="a:T"><INSTANCE dmtype="a:U"/></INSTANCE></TEMPLATES></VODML>`
	if _, err := parseVodml(t, doc); err == nil {
		t.Fatalf("nested instance without dmrole must be rejected")
	}
}

func TestLegacyGlobalsRole(t *testing.T) {
	doc := `<VODML><GLOBALS><COLLECTION>
<INSTANCE dmtype="a:T" dmrole="a:r"/>
</COLLECTION></GLOBALS></VODML>`
	if _, err := parseVodml(t, doc); err == nil {
		t.Fatalf("collection-nested dmrole must be rejected by default")
	}
	mivot.AllowLegacyGlobalsRole = true
	defer func() { mivot.AllowLegacyGlobalsRole = false }()
	v, err := parseVodml(t, doc)
	if err != nil {
		t.Fatalf("legacy mode: %v", err)
	}
	in := v.Globals.Elems[0].(*mivot.Collection).Elems[0].(*mivot.Instance)
	if in.Dmrole != "" {
		t.Fatalf("legacy dmrole must be dropped, got %q", in.Dmrole)
	}
}
