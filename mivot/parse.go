package mivot

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/astrogo/votable/verr"
)

// scope tells a parse function which block it is working under, since
// PRIMARY_KEY and dmrole rules depend on it.
type scope uint8

const (
	scopeGlobals scope = iota
	scopeTemplates
)

// parent tells a parse function what kind of element encloses the one being
// parsed.
type parent uint8

const (
	parentBlock parent = iota // GLOBALS or TEMPLATES directly
	parentInstance
	parentCollection
)

// Parse consumes a VODML element whose start tag has already been read from
// d, enforcing every context-sensitive shape rule.
func Parse(d *xml.Decoder, start xml.StartElement) (*Vodml, error) {
	if err := rejectAttrs(start, "VODML", "xmlns"); err != nil {
		return nil, err
	}
	v := &Vodml{}
	for {
		tok, err := nextToken(d, "VODML")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "REPORT":
				if v.Report != nil {
					return nil, verr.Structure("VODML", "multiple REPORT elements")
				}
				if v.Report, err = parseReport(d, t); err != nil {
					return nil, err
				}
			case "MODEL":
				m, err := parseModel(d, t)
				if err != nil {
					return nil, err
				}
				v.Models = append(v.Models, m)
			case "GLOBALS":
				if v.Globals != nil {
					return nil, verr.Structure("VODML", "multiple GLOBALS elements")
				}
				if v.Globals, err = parseGlobals(d, t); err != nil {
					return nil, err
				}
			case "TEMPLATES":
				tp, err := parseTemplates(d, t)
				if err != nil {
					return nil, err
				}
				v.Templates = append(v.Templates, tp)
			default:
				return nil, verr.UnexpectedElem("VODML", t.Name.Local)
			}
		case xml.EndElement:
			return v, nil
		}
	}
}

func parseReport(d *xml.Decoder, start xml.StartElement) (*Report, error) {
	r := &Report{}
	if err := takeAttrs(start, "REPORT", map[string]*string{"status": &r.Status}, "status"); err != nil {
		return nil, err
	}
	if r.Status != "OK" && r.Status != "FAILED" {
		return nil, verr.ValueGrammar("REPORT", "status", r.Status, nil)
	}
	content, err := readText(d, "REPORT")
	if err != nil {
		return nil, err
	}
	r.Content = content
	return r, nil
}

func parseModel(d *xml.Decoder, start xml.StartElement) (*Model, error) {
	m := &Model{}
	if err := takeAttrs(start, "MODEL", map[string]*string{"name": &m.Name, "url": &m.URL}, "name"); err != nil {
		return nil, err
	}
	return m, expectEnd(d, "MODEL")
}

func parseGlobals(d *xml.Decoder, start xml.StartElement) (*Globals, error) {
	if err := rejectAttrs(start, "GLOBALS"); err != nil {
		return nil, err
	}
	g := &Globals{}
	for {
		tok, err := nextToken(d, "GLOBALS")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "INSTANCE":
				in, err := parseInstance(d, t, scopeGlobals, parentBlock)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, in)
			case "COLLECTION":
				c, err := parseCollection(d, t, scopeGlobals, parentBlock)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, c)
			default:
				return nil, verr.UnexpectedElem("GLOBALS", t.Name.Local)
			}
		case xml.EndElement:
			return g, nil
		}
	}
}

func parseTemplates(d *xml.Decoder, start xml.StartElement) (*Templates, error) {
	tp := &Templates{}
	if err := takeAttrs(start, "TEMPLATES", map[string]*string{"tableref": &tp.TableRef}); err != nil {
		return nil, err
	}
	for {
		tok, err := nextToken(d, "TEMPLATES")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "WHERE":
				w, err := parseWhere(d, t, false)
				if err != nil {
					return nil, err
				}
				if len(tp.Instances) > 0 {
					return nil, verr.Structure("TEMPLATES", "WHERE after INSTANCE")
				}
				tp.Wheres = append(tp.Wheres, w)
			case "INSTANCE":
				in, err := parseInstance(d, t, scopeTemplates, parentBlock)
				if err != nil {
					return nil, err
				}
				tp.Instances = append(tp.Instances, in)
			default:
				return nil, verr.UnexpectedElem("TEMPLATES", t.Name.Local)
			}
		case xml.EndElement:
			return tp, nil
		}
	}
}

// parseInstance enforces the dmrole rule: an INSTANCE carries a dmrole iff
// it is nested in another INSTANCE. The legacy exception (collection child
// under GLOBALS) is gated by AllowLegacyGlobalsRole.
func parseInstance(d *xml.Decoder, start xml.StartElement, sc scope, par parent) (*Instance, error) {
	in := &Instance{}
	if err := takeAttrs(start, "INSTANCE", map[string]*string{
		"dmid": &in.Dmid, "dmrole": &in.Dmrole, "dmtype": &in.Dmtype,
	}, "dmtype"); err != nil {
		return nil, err
	}
	switch par {
	case parentInstance:
		if in.Dmrole == "" {
			return nil, verr.MissingAttr("INSTANCE", "dmrole")
		}
	case parentCollection:
		if in.Dmrole != "" {
			if sc == scopeGlobals && AllowLegacyGlobalsRole {
				in.Dmrole = ""
			} else {
				return nil, verr.UnexpectedAttr("INSTANCE", "dmrole")
			}
		}
	default:
		if in.Dmrole != "" {
			return nil, verr.UnexpectedAttr("INSTANCE", "dmrole")
		}
	}
	for {
		tok, err := nextToken(d, "INSTANCE")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "PRIMARY_KEY":
				pk, err := parsePrimaryKey(d, t, sc)
				if err != nil {
					return nil, err
				}
				in.Elems = append(in.Elems, pk)
			case "ATTRIBUTE":
				a, err := parseAttribute(d, t, parentInstance)
				if err != nil {
					return nil, err
				}
				in.Elems = append(in.Elems, a)
			case "INSTANCE":
				sub, err := parseInstance(d, t, sc, parentInstance)
				if err != nil {
					return nil, err
				}
				in.Elems = append(in.Elems, sub)
			case "REFERENCE":
				r, err := parseReference(d, t)
				if err != nil {
					return nil, err
				}
				in.Elems = append(in.Elems, r)
			case "COLLECTION":
				c, err := parseCollection(d, t, sc, parentInstance)
				if err != nil {
					return nil, err
				}
				in.Elems = append(in.Elems, c)
			default:
				return nil, verr.UnexpectedElem("INSTANCE", t.Name.Local)
			}
		case xml.EndElement:
			return in, nil
		}
	}
}

// parseCollection enforces homogeneity: children must all be of one kind,
// or be exactly one JOIN.
func parseCollection(d *xml.Decoder, start xml.StartElement, sc scope, par parent) (*Collection, error) {
	c := &Collection{}
	if err := takeAttrs(start, "COLLECTION", map[string]*string{
		"dmid": &c.Dmid, "dmrole": &c.Dmrole,
	}); err != nil {
		return nil, err
	}
	if par == parentInstance {
		if c.Dmrole == "" {
			return nil, verr.MissingAttr("COLLECTION", "dmrole")
		}
	} else if c.Dmrole != "" {
		return nil, verr.UnexpectedAttr("COLLECTION", "dmrole")
	}
	kind := ""
	push := func(k string, e CollectionElem) error {
		if kind == "" {
			kind = k
		} else if kind != k {
			return verr.Structure("COLLECTION", "heterogeneous children: "+kind+" and "+k)
		}
		if k == "JOIN" && len(c.Elems) > 0 {
			return verr.Structure("COLLECTION", "more than one JOIN")
		}
		c.Elems = append(c.Elems, e)
		return nil
	}
	for {
		tok, err := nextToken(d, "COLLECTION")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "ATTRIBUTE":
				a, err := parseAttribute(d, t, parentCollection)
				if err != nil {
					return nil, err
				}
				if err := push("ATTRIBUTE", a); err != nil {
					return nil, err
				}
			case "INSTANCE":
				in, err := parseInstance(d, t, sc, parentCollection)
				if err != nil {
					return nil, err
				}
				if err := push("INSTANCE", in); err != nil {
					return nil, err
				}
			case "REFERENCE":
				r, err := parseReference(d, t)
				if err != nil {
					return nil, err
				}
				if err := push("REFERENCE", r); err != nil {
					return nil, err
				}
			case "COLLECTION":
				sub, err := parseCollection(d, t, sc, parentCollection)
				if err != nil {
					return nil, err
				}
				if err := push("COLLECTION", sub); err != nil {
					return nil, err
				}
			case "JOIN":
				j, err := parseJoin(d, t)
				if err != nil {
					return nil, err
				}
				if err := push("JOIN", j); err != nil {
					return nil, err
				}
			default:
				return nil, verr.UnexpectedElem("COLLECTION", t.Name.Local)
			}
		case xml.EndElement:
			return c, nil
		}
	}
}

// parseAttribute handles the instance shape (mandatory dmrole) and the
// collection shape (dmrole forbidden); both require dmtype and exactly one
// of value/ref, with arrayindex legal only alongside ref.
func parseAttribute(d *xml.Decoder, start xml.StartElement, par parent) (*Attribute, error) {
	a := &Attribute{}
	var value, ref, arrayindex string
	var hasValue, hasRef, hasIndex bool
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "dmrole":
			a.Dmrole = at.Value
		case "dmtype":
			a.Dmtype = at.Value
		case "value":
			value, hasValue = at.Value, true
		case "ref":
			ref, hasRef = at.Value, true
		case "arrayindex":
			arrayindex, hasIndex = at.Value, true
		case "unit":
			a.Unit = at.Value
		default:
			return nil, verr.UnexpectedAttr("ATTRIBUTE", at.Name.Local)
		}
	}
	if a.Dmtype == "" {
		return nil, verr.MissingAttr("ATTRIBUTE", "dmtype")
	}
	switch par {
	case parentInstance:
		if a.Dmrole == "" {
			return nil, verr.MissingAttr("ATTRIBUTE", "dmrole")
		}
	case parentCollection:
		if a.Dmrole != "" {
			return nil, verr.UnexpectedAttr("ATTRIBUTE", "dmrole")
		}
	}
	if hasValue == hasRef {
		return nil, verr.ExclusiveAttrs("ATTRIBUTE", "value", "ref", hasValue)
	}
	if hasValue {
		a.Value = &value
	} else {
		a.Ref = &ref
	}
	if hasIndex {
		if !hasRef {
			return nil, verr.Structure("ATTRIBUTE", "arrayindex without ref")
		}
		n, err := strconv.Atoi(arrayindex)
		if err != nil || n < 0 {
			return nil, verr.ValueGrammar("ATTRIBUTE", "arrayindex", arrayindex, err)
		}
		a.ArrayIndex = &n
	}
	return a, expectEnd(d, "ATTRIBUTE")
}

// parseReference requires exactly one of dmref/sourceref; the dynamic form
// requires one or more FOREIGN_KEY children and the static form none.
func parseReference(d *xml.Decoder, start xml.StartElement) (*Reference, error) {
	r := &Reference{}
	if err := takeAttrs(start, "REFERENCE", map[string]*string{
		"dmrole": &r.Dmrole, "dmref": &r.Dmref, "sourceref": &r.SourceRef,
	}); err != nil {
		return nil, err
	}
	if (r.Dmref == "") == (r.SourceRef == "") {
		return nil, verr.ExclusiveAttrs("REFERENCE", "dmref", "sourceref", r.Dmref != "")
	}
	for {
		tok, err := nextToken(d, "REFERENCE")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "FOREIGN_KEY" {
				return nil, verr.UnexpectedElem("REFERENCE", t.Name.Local)
			}
			if r.Dmref != "" {
				return nil, verr.Structure("REFERENCE", "FOREIGN_KEY on a static reference")
			}
			fk, err := parseForeignKey(d, t)
			if err != nil {
				return nil, err
			}
			r.ForeignKeys = append(r.ForeignKeys, fk)
		case xml.EndElement:
			if r.SourceRef != "" && len(r.ForeignKeys) == 0 {
				return nil, verr.Structure("REFERENCE", "dynamic reference requires at least one FOREIGN_KEY")
			}
			return r, nil
		}
	}
}

func parseJoin(d *xml.Decoder, start xml.StartElement) (*Join, error) {
	j := &Join{}
	if err := takeAttrs(start, "JOIN", map[string]*string{
		"dmref": &j.Dmref, "sourceref": &j.SourceRef,
	}); err != nil {
		return nil, err
	}
	if j.Dmref == "" && j.SourceRef == "" {
		return nil, verr.ExclusiveAttrs("JOIN", "dmref", "sourceref", false)
	}
	for {
		tok, err := nextToken(d, "JOIN")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "WHERE" {
				return nil, verr.UnexpectedElem("JOIN", t.Name.Local)
			}
			w, err := parseWhere(d, t, true)
			if err != nil {
				return nil, err
			}
			j.Wheres = append(j.Wheres, w)
		case xml.EndElement:
			return j, nil
		}
	}
}

// parseWhere handles the join shape (foreignkey+primarykey) and the
// templates shape (primarykey+value).
func parseWhere(d *xml.Decoder, start xml.StartElement, join bool) (*Where, error) {
	w := &Where{}
	if err := takeAttrs(start, "WHERE", map[string]*string{
		"primarykey": &w.PrimaryKey, "foreignkey": &w.ForeignKey, "value": &w.Value,
	}, "primarykey"); err != nil {
		return nil, err
	}
	if join {
		if w.ForeignKey == "" {
			return nil, verr.MissingAttr("WHERE", "foreignkey")
		}
		if w.Value != "" {
			return nil, verr.UnexpectedAttr("WHERE", "value")
		}
	} else {
		if w.Value == "" {
			return nil, verr.MissingAttr("WHERE", "value")
		}
		if w.ForeignKey != "" {
			return nil, verr.UnexpectedAttr("WHERE", "foreignkey")
		}
	}
	return w, expectEnd(d, "WHERE")
}

// parsePrimaryKey is static (dmtype+value) under GLOBALS and dynamic
// (dmtype+ref) under TEMPLATES.
func parsePrimaryKey(d *xml.Decoder, start xml.StartElement, sc scope) (*PrimaryKey, error) {
	pk := &PrimaryKey{}
	if err := takeAttrs(start, "PRIMARY_KEY", map[string]*string{
		"dmtype": &pk.Dmtype, "value": &pk.Value, "ref": &pk.Ref,
	}, "dmtype"); err != nil {
		return nil, err
	}
	if sc == scopeGlobals {
		if pk.Value == "" {
			return nil, verr.MissingAttr("PRIMARY_KEY", "value")
		}
		if pk.Ref != "" {
			return nil, verr.UnexpectedAttr("PRIMARY_KEY", "ref")
		}
	} else {
		if pk.Ref == "" {
			return nil, verr.MissingAttr("PRIMARY_KEY", "ref")
		}
		if pk.Value != "" {
			return nil, verr.UnexpectedAttr("PRIMARY_KEY", "value")
		}
	}
	return pk, expectEnd(d, "PRIMARY_KEY")
}

func parseForeignKey(d *xml.Decoder, start xml.StartElement) (*ForeignKey, error) {
	fk := &ForeignKey{}
	if err := takeAttrs(start, "FOREIGN_KEY", map[string]*string{"ref": &fk.Ref}, "ref"); err != nil {
		return nil, err
	}
	return fk, expectEnd(d, "FOREIGN_KEY")
}

// ---- low-level helpers ----

// nextToken returns the next significant token inside tag: comments and
// whitespace character data are skipped, non-blank text is an error since
// no MIVOT container is text-bearing.
func nextToken(d *xml.Decoder, tag string) (xml.Token, error) {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, verr.PrematureEOF(tag)
		}
		if err != nil {
			return nil, verr.XMLSyntax(err, d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		case xml.CharData:
			if strings.TrimSpace(string(t)) == "" {
				continue
			}
			return nil, verr.Structure(tag, "unexpected text content")
		default:
			return tok, nil
		}
	}
}

// expectEnd consumes up to and including the end tag of a childless element.
func expectEnd(d *xml.Decoder, tag string) error {
	tok, err := nextToken(d, tag)
	if err != nil {
		return err
	}
	if _, ok := tok.(xml.EndElement); !ok {
		if s, ok := tok.(xml.StartElement); ok {
			return verr.UnexpectedElem(tag, s.Name.Local)
		}
		return verr.Structure(tag, "expected end tag")
	}
	return nil
}

// readText consumes the textual content of tag up to its end tag.
func readText(d *xml.Decoder, tag string) (string, error) {
	b := &strings.Builder{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return "", verr.PrematureEOF(tag)
		}
		if err != nil {
			return "", verr.XMLSyntax(err, d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.Comment:
		case xml.EndElement:
			return strings.TrimSpace(b.String()), nil
		case xml.StartElement:
			return "", verr.UnexpectedElem(tag, t.Name.Local)
		}
	}
}

// takeAttrs assigns known attributes and rejects unknown ones; names listed
// in required must be present and non-empty.
func takeAttrs(start xml.StartElement, tag string, known map[string]*string, required ...string) error {
	for _, at := range start.Attr {
		if at.Name.Space == "xmlns" || at.Name.Local == "xmlns" {
			continue
		}
		dst, ok := known[at.Name.Local]
		if !ok {
			return verr.UnexpectedAttr(tag, at.Name.Local)
		}
		*dst = at.Value
	}
	for _, req := range required {
		if *known[req] == "" {
			return verr.MissingAttr(tag, req)
		}
	}
	return nil
}

// rejectAttrs fails on any attribute not in the allow list.
func rejectAttrs(start xml.StartElement, tag string, allowed ...string) error {
	for _, at := range start.Attr {
		if at.Name.Space == "xmlns" || at.Name.Local == "xmlns" {
			continue
		}
		ok := false
		for _, a := range allowed {
			if at.Name.Local == a {
				ok = true
				break
			}
		}
		if !ok {
			return verr.UnexpectedAttr(tag, at.Name.Local)
		}
	}
	return nil
}
