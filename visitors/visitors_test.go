package visitors_test

import (
	"bytes"
	"strings"
	"testing"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/visitors"
	"github.com/astrogo/votable/votxml"
)

const visitDoc = `<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE name="stars">
      <FIELD ID="RA" name="RA" datatype="double"/>
      <FIELD name="Dec" datatype="double"/>
      <FIELD name="Mag" datatype="float"/>
    </TABLE>
    <TABLE name="extra">
      <FIELD name="a,b" datatype="int"/>
    </TABLE>
  </RESOURCE>
</VOTABLE>`

func parseDoc(t *testing.T) *votable.VOTable {
	t.Helper()
	vot, err := votxml.Parse(strings.NewReader(visitDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return vot
}

func firstTable(t *testing.T, vot *votable.VOTable) *votable.Table {
	t.Helper()
	return vot.Resources[0].Subs[0].(*votable.Table)
}

func TestTrackerVIDs(t *testing.T) {
	trk := visitors.NewTracker()
	if vid := trk.Enter(visitors.TagVOTable); vid != "D" {
		t.Fatalf("document vid = %q", vid)
	}
	if vid := trk.Enter(visitors.TagResource); vid != "DR1" {
		t.Fatalf("resource vid = %q", vid)
	}
	if vid := trk.Enter(visitors.TagTable); vid != "DR1T1" {
		t.Fatalf("table vid = %q", vid)
	}
	if vid := trk.Leaf(visitors.TagField); vid != "DR1T1F1" {
		t.Fatalf("field vid = %q", vid)
	}
	if vid := trk.Leaf(visitors.TagField); vid != "DR1T1F2" {
		t.Fatalf("second field vid = %q", vid)
	}
	trk.Leave()
	if vid := trk.Enter(visitors.TagTable); vid != "DR1T2" {
		t.Fatalf("second table vid = %q", vid)
	}
	if vid := trk.Leaf(visitors.TagField); vid != "DR1T2F1" {
		t.Fatalf("field numbering must restart per table, got %q", vid)
	}
}

func TestColnamesPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := visitors.NewColnamesPrinter(&buf, ",")
	if err := p.Print(parseDoc(t)); err != nil {
		t.Fatalf("print: %v", err)
	}
	want := "RA,Dec,Mag\n\"a,b\"\n"
	if buf.String() != want {
		t.Fatalf("colnames = %q, want %q", buf.String(), want)
	}
}

func TestFieldArrayPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := visitors.NewFieldArrayPrinter(&buf, " ", true)
	if err := p.Print(parseDoc(t)); err != nil {
		t.Fatalf("print: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "index") || !strings.Contains(lines[0], "datatype") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "RA") || !strings.Contains(lines[1], "double") {
		t.Fatalf("first row = %q", lines[1])
	}
	// header + 3 rows + blank, then header + 1 row + blank
	if len(lines) != 9 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
}

func TestStructPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := visitors.NewStructPrinter(&buf, 120, 30)
	if err := p.Print(parseDoc(t)); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"VOTABLE vid=D",
		"RESOURCE vid=DR1",
		"TABLE vid=DR1T1",
		"FIELD vid=DR1T1F3",
		"TABLE vid=DR1T2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func mustRule(t *testing.T, s string) *visitors.Rule {
	t.Helper()
	r, err := visitors.ParseRule(s)
	if err != nil {
		t.Fatalf("parse rule %q: %v", s, err)
	}
	return r
}

func TestUpdaterSetAttrs(t *testing.T) {
	vot := parseDoc(t)
	u := visitors.NewUpdater([]*visitors.Rule{
		mustRule(t, "FIELD id=RA set_attrs ucd=pos.eq.ra;meta.main unit=deg"),
	})
	if err := u.Apply(vot); err != nil {
		t.Fatalf("apply: %v", err)
	}
	f := firstTable(t, vot).Fields()[0]
	if f.UCD != "pos.eq.ra;meta.main" || f.Unit != "deg" {
		t.Fatalf("field after update: ucd=%q unit=%q", f.UCD, f.Unit)
	}
}

func TestUpdaterSetAttrsByVID(t *testing.T) {
	vot := parseDoc(t)
	u := visitors.NewUpdater([]*visitors.Rule{
		mustRule(t, "FIELD vid=DR1T1F2 set_attrs unit=deg"),
	})
	if err := u.Apply(vot); err != nil {
		t.Fatalf("apply: %v", err)
	}
	fields := firstTable(t, vot).Fields()
	if fields[1].Unit != "deg" {
		t.Fatalf("Dec unit = %q, want deg", fields[1].Unit)
	}
	if fields[0].Unit != "" || fields[2].Unit != "" {
		t.Fatalf("other fields must stay untouched")
	}
}

func TestUpdaterRemoveField(t *testing.T) {
	vot := parseDoc(t)
	u := visitors.NewUpdater([]*visitors.Rule{
		mustRule(t, "FIELD name=Mag rm"),
	})
	if err := u.Apply(vot); err != nil {
		t.Fatalf("apply: %v", err)
	}
	fields := firstTable(t, vot).Fields()
	if len(fields) != 2 || fields[0].Name != "RA" || fields[1].Name != "Dec" {
		t.Fatalf("fields after rm = %+v", fields)
	}
}

func TestUpdaterSetDesc(t *testing.T) {
	vot := parseDoc(t)
	u := visitors.NewUpdater([]*visitors.Rule{
		mustRule(t, "TABLE name=stars set_desc Bright star sample"),
	})
	if err := u.Apply(vot); err != nil {
		t.Fatalf("apply: %v", err)
	}
	tbl := firstTable(t, vot)
	if tbl.Description == nil || tbl.Description.Content != "Bright star sample" {
		t.Fatalf("description = %+v", tbl.Description)
	}
}

func TestUpdaterRefusesDocumentRemoval(t *testing.T) {
	vot := parseDoc(t)
	u := visitors.NewUpdater([]*visitors.Rule{
		mustRule(t, "VOTABLE vid=D rm"),
	})
	if err := u.Apply(vot); err == nil {
		t.Fatalf("removing the document root must fail")
	}
}

func TestParseRuleRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"FIELD",
		"FIELD id=RA",
		"NOSUCH id=RA rm",
		"FIELD color=red rm",
		"FIELD id=RA paint",
		"FIELD id=RA set_attrs",
		"FIELD id=RA set_attrs unit",
	} {
		if _, err := visitors.ParseRule(s); err == nil {
			t.Fatalf("rule %q must be rejected", s)
		}
	}
}
