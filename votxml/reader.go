// Package votxml is the streaming XML codec of the VOTable document model:
// a pull-style reader over encoding/xml tokens and an event writer, both
// integrating the compiled row schemas for the three data encodings.
package votxml

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
	"github.com/astrogo/votable/schema"
	"github.com/astrogo/votable/verr"
)

var log = logrus.WithField("component", "votxml")

// Parse reads a whole document, materializing table rows in memory.
func Parse(r io.Reader) (*votable.VOTable, error) {
	p := &reader{d: newDecoder(r)}
	start, err := p.rootStart()
	if err != nil {
		return nil, err
	}
	return p.parseVOTable(start)
}

// ParseFile reads a whole document from a file.
func ParseFile(path string) (*votable.VOTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, verr.IO(err)
	}
	defer f.Close()
	return Parse(f)
}

func newDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	// VOTable predates sane charset declarations; accept documents as-is.
	d.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return d
}

type reader struct {
	d  *xml.Decoder
	ns nsScope
}

// nsScope tracks the namespace declarations in scope during parsing as a
// flat stack of uri/prefix pairs. Prefixed attributes land in Extras under
// their prefixed spelling, so declarations must be resolvable back from the
// URIs the decoder reports.
type nsScope struct {
	decls []nsDecl
	marks []int
}

type nsDecl struct{ uri, prefix string }

func (s *nsScope) push(attrs []xml.Attr) {
	s.marks = append(s.marks, len(s.decls))
	for _, at := range attrs {
		if at.Name.Space == "xmlns" {
			s.decls = append(s.decls, nsDecl{uri: at.Value, prefix: at.Name.Local})
		}
	}
}

func (s *nsScope) pop() {
	n := len(s.marks) - 1
	s.decls = s.decls[:s.marks[n]]
	s.marks = s.marks[:n]
}

// xmlNamespace is predeclared with the xml prefix and never bound by an
// explicit xmlns declaration.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

func (s *nsScope) prefix(uri string) (string, bool) {
	if uri == xmlNamespace {
		return "xml", true
	}
	for i := len(s.decls) - 1; i >= 0; i-- {
		if s.decls[i].uri == uri {
			return s.decls[i].prefix, true
		}
	}
	return "", false
}

// rootStart consumes prolog tokens until the VOTABLE start tag.
func (p *reader) rootStart() (xml.StartElement, error) {
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return xml.StartElement{}, verr.PrematureEOF("VOTABLE")
		}
		if err != nil {
			return xml.StartElement{}, verr.XMLSyntax(err, p.d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "VOTABLE" {
				return xml.StartElement{}, verr.UnexpectedElem("document", t.Name.Local)
			}
			return t, nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return xml.StartElement{}, verr.Structure("document", "text before the root element")
			}
		case xml.ProcInst, xml.Directive, xml.Comment:
		}
	}
}

// next returns the next significant token inside tag. Comments and blank
// character data are discarded with a log note; non-blank text is an error
// since callers of next never sit inside a text-bearing element.
func (p *reader) next(tag string) (xml.Token, error) {
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return nil, verr.PrematureEOF(tag)
		}
		if err != nil {
			return nil, verr.XMLSyntax(err, p.d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.Comment:
			log.Tracef("discarding comment in %s", tag)
			continue
		case xml.ProcInst, xml.Directive:
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

// readText consumes the text content of tag up to its end tag.
func (p *reader) readText(tag string) (string, error) {
	b := &strings.Builder{}
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return "", verr.PrematureEOF(tag)
		}
		if err != nil {
			return "", verr.XMLSyntax(err, p.d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.Comment:
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", verr.UnexpectedElem(tag, t.Name.Local)
		}
	}
}

// expectEnd consumes the end tag of a childless element.
func (p *reader) expectEnd(tag string) error {
	tok, err := p.next(tag)
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case xml.EndElement:
		return nil
	case xml.StartElement:
		return verr.UnexpectedElem(tag, t.Name.Local)
	}
	return verr.Structure(tag, "expected end tag")
}

// skipElement discards an element and all of its descendants.
func (p *reader) skipElement() error {
	return p.d.Skip()
}

// ---- document ----

func (p *reader) parseVOTable(start xml.StartElement) (*votable.VOTable, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	vot := &votable.VOTable{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			vot.ID = at.Value
		case "version":
			vot.Version = at.Value
		default:
			vot.Extras.Set(p.attrName(at), at.Value)
		}
	}
	seenResource := false
	for {
		tok, err := p.next("VOTABLE")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if seenResource && t.Name.Local != "RESOURCE" && t.Name.Local != "INFO" {
				return nil, verr.UnexpectedElem("VOTABLE", t.Name.Local)
			}
			switch t.Name.Local {
			case "DESCRIPTION":
				if vot.Description, err = p.parseDescription(t); err != nil {
					return nil, err
				}
			case "DEFINITIONS":
				if vot.Definitions, err = p.parseDefinitions(t); err != nil {
					return nil, err
				}
			case "COOSYS":
				cs, err := p.parseCooSys(t)
				if err != nil {
					return nil, err
				}
				vot.Elems = append(vot.Elems, cs)
			case "TIMESYS":
				ts, err := p.parseTimeSys(t)
				if err != nil {
					return nil, err
				}
				vot.Elems = append(vot.Elems, ts)
			case "INFO":
				info, err := p.parseInfo(t)
				if err != nil {
					return nil, err
				}
				if seenResource {
					vot.PostInfos = append(vot.PostInfos, info)
				} else {
					vot.Elems = append(vot.Elems, info)
				}
			case "PARAM":
				pa, err := p.parseParam(t)
				if err != nil {
					return nil, err
				}
				vot.Elems = append(vot.Elems, pa)
			case "GROUP":
				g, err := p.parseGroup(t)
				if err != nil {
					return nil, err
				}
				vot.Elems = append(vot.Elems, g)
			case "VODML":
				if vot.Vodml, err = mivot.Parse(p.d, t); err != nil {
					return nil, err
				}
			case "RESOURCE":
				r, err := p.parseResource(t)
				if err != nil {
					return nil, err
				}
				vot.Resources = append(vot.Resources, r)
				seenResource = true
			default:
				return nil, verr.UnexpectedElem("VOTABLE", t.Name.Local)
			}
		case xml.EndElement:
			if len(vot.Resources) == 0 {
				return nil, verr.Structure("VOTABLE", "document without RESOURCE")
			}
			return vot, nil
		}
	}
}

func (p *reader) parseResource(start xml.StartElement) (*votable.Resource, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	r := &votable.Resource{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			r.ID = at.Value
		case "name":
			r.Name = at.Value
		case "type":
			r.Type = at.Value
		case "utype":
			r.UType = at.Value
		default:
			r.Extras.Set(p.attrName(at), at.Value)
		}
	}
	seenSub := false
	for {
		tok, err := p.next("RESOURCE")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				if r.Description, err = p.parseDescription(t); err != nil {
					return nil, err
				}
			case "INFO":
				info, err := p.parseInfo(t)
				if err != nil {
					return nil, err
				}
				if seenSub {
					r.PostInfos = append(r.PostInfos, info)
				} else {
					r.Infos = append(r.Infos, info)
				}
			case "COOSYS":
				cs, err := p.parseCooSys(t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, cs)
			case "TIMESYS":
				ts, err := p.parseTimeSys(t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ts)
			case "GROUP":
				g, err := p.parseGroup(t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, g)
			case "PARAM":
				pa, err := p.parseParam(t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, pa)
			case "LINK":
				l, err := p.parseLink(t)
				if err != nil {
					return nil, err
				}
				r.Links = append(r.Links, l)
			case "RESOURCE":
				sub, err := p.parseResource(t)
				if err != nil {
					return nil, err
				}
				r.Subs = append(r.Subs, sub)
				seenSub = true
			case "TABLE":
				tb, err := p.parseTable(t)
				if err != nil {
					return nil, err
				}
				r.Subs = append(r.Subs, tb)
				seenSub = true
			default:
				return nil, verr.UnexpectedElem("RESOURCE", t.Name.Local)
			}
		case xml.EndElement:
			return r, nil
		}
	}
}

// ---- table ----

func (p *reader) parseTable(start xml.StartElement) (*votable.Table, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	t := &votable.Table{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			t.ID = at.Value
		case "name":
			t.Name = at.Value
		case "ucd":
			t.UCD = at.Value
		case "utype":
			t.UType = at.Value
		case "ref":
			t.Ref = at.Value
		case "nrows":
			t.NRows = at.Value
		default:
			t.Extras.Set(p.attrName(at), at.Value)
		}
	}
	for {
		tok, err := p.next("TABLE")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			// Field declarations after DATA are fatal.
			switch tk.Name.Local {
			case "FIELD", "PARAM", "GROUP":
				if t.Data != nil {
					return nil, verr.Structure("TABLE", "declaration after DATA")
				}
			}
			switch tk.Name.Local {
			case "DESCRIPTION":
				if t.Description, err = p.parseDescription(tk); err != nil {
					return nil, err
				}
			case "FIELD":
				f, err := p.parseField(tk)
				if err != nil {
					return nil, err
				}
				t.Elems = append(t.Elems, f)
			case "PARAM":
				pa, err := p.parseParam(tk)
				if err != nil {
					return nil, err
				}
				t.Elems = append(t.Elems, pa)
			case "GROUP":
				g, err := p.parseTableGroup(tk)
				if err != nil {
					return nil, err
				}
				t.Elems = append(t.Elems, g)
			case "LINK":
				l, err := p.parseLink(tk)
				if err != nil {
					return nil, err
				}
				t.Links = append(t.Links, l)
			case "INFO":
				info, err := p.parseInfo(tk)
				if err != nil {
					return nil, err
				}
				t.PostInfos = append(t.PostInfos, info)
			case "DATA":
				if t.Data != nil {
					return nil, verr.Structure("TABLE", "multiple DATA blocks")
				}
				if t.Data, err = p.parseData(tk, t); err != nil {
					return nil, err
				}
			default:
				return nil, verr.UnexpectedElem("TABLE", tk.Name.Local)
			}
		case xml.EndElement:
			return t, nil
		}
	}
}

// parseData compiles the table schema at the point DATA begins and
// dispatches on the variant.
func (p *reader) parseData(start xml.StartElement, t *votable.Table) (*votable.Data, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	d := &votable.Data{}
	for _, at := range start.Attr {
		d.Extras.Set(p.attrName(at), at.Value)
	}
	codec, err := schema.CompileRowCodec(t)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.next("DATA")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if d.Variant != nil {
				return nil, verr.Structure("DATA", "multiple data variants")
			}
			switch tk.Name.Local {
			case "TABLEDATA":
				rows, err := p.parseTableDataRows(codec)
				if err != nil {
					return nil, err
				}
				d.Variant = &votable.TableData{Content: &votable.TableRows{Rows: rows}}
			case "BINARY":
				v, err := p.parseBinary(tk, codec, false)
				if err != nil {
					return nil, err
				}
				d.Variant = v
			case "BINARY2":
				v, err := p.parseBinary(tk, codec, true)
				if err != nil {
					return nil, err
				}
				d.Variant = v
			case "FITS":
				v, err := p.parseFits(tk)
				if err != nil {
					return nil, err
				}
				d.Variant = v
			default:
				return nil, verr.UnexpectedElem("DATA", tk.Name.Local)
			}
		case xml.EndElement:
			if d.Variant == nil {
				return nil, verr.Structure("DATA", "empty DATA block")
			}
			return d, nil
		}
	}
}

// parseTableDataRows consumes TR/TD rows up to the TABLEDATA end tag.
func (p *reader) parseTableDataRows(codec *schema.RowCodec) ([][]votable.Value, error) {
	var rows [][]votable.Value
	for {
		tok, err := p.next("TABLEDATA")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "TR" {
				return nil, verr.UnexpectedElem("TABLEDATA", tk.Name.Local)
			}
			cells, err := p.parseTR()
			if err != nil {
				return nil, err
			}
			row, err := codec.DecodeTDs(cells)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		case xml.EndElement:
			return rows, nil
		}
	}
}

// parseTR consumes one TR, returning the raw TD cell strings; an empty TD
// yields the empty token.
func (p *reader) parseTR() ([]string, error) {
	var cells []string
	for {
		tok, err := p.next("TR")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "TD" {
				return nil, verr.UnexpectedElem("TR", tk.Name.Local)
			}
			cell, err := p.readText("TD")
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		case xml.EndElement:
			return cells, nil
		}
	}
}

// parseBinary consumes a BINARY or BINARY2 element: a STREAM whose base64
// content feeds the row codec until exhausted.
func (p *reader) parseBinary(start xml.StartElement, codec *schema.RowCodec, binary2 bool) (votable.DataVariant, error) {
	tag := start.Name.Local
	tok, err := p.next(tag)
	if err != nil {
		return nil, err
	}
	st, ok := tok.(xml.StartElement)
	if !ok || st.Name.Local != "STREAM" {
		return nil, verr.Structure(tag, "expected STREAM")
	}
	stream, err := p.parseStreamAttrs(st)
	if err != nil {
		return nil, err
	}
	cr := newCharDataReader(p.d, "STREAM")
	rows, err := decodeBinaryRows(base64.StdEncoding, cr, codec, binary2)
	if err != nil {
		return nil, err
	}
	if err := cr.drain(); err != nil {
		return nil, err
	}
	// STREAM end has been consumed by the char reader; consume the
	// BINARY/BINARY2 end tag.
	if err := p.expectEnd(tag); err != nil {
		return nil, err
	}
	content := &votable.TableRows{Rows: rows}
	if binary2 {
		return &votable.Binary2{Stream: *stream, Content: content}, nil
	}
	return &votable.Binary{Stream: *stream, Content: content}, nil
}

func (p *reader) parseFits(start xml.StartElement) (*votable.Fits, error) {
	f := &votable.Fits{}
	for _, at := range start.Attr {
		if at.Name.Local == "extnum" {
			f.ExtNum = at.Value
		} else {
			return nil, verr.UnexpectedAttr("FITS", at.Name.Local)
		}
	}
	tok, err := p.next("FITS")
	if err != nil {
		return nil, err
	}
	st, ok := tok.(xml.StartElement)
	if !ok || st.Name.Local != "STREAM" {
		return nil, verr.Structure("FITS", "expected STREAM")
	}
	stream, err := p.parseStreamAttrs(st)
	if err != nil {
		return nil, err
	}
	if _, err := p.readText("STREAM"); err != nil {
		return nil, err
	}
	f.Stream = *stream
	return f, p.expectEnd("FITS")
}

func (p *reader) parseStreamAttrs(start xml.StartElement) (*votable.Stream, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	s := &votable.Stream{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "type":
			s.Type = at.Value
		case "href":
			s.Href = at.Value
		case "actuate":
			s.Actuate = at.Value
		case "encoding":
			s.Encoding = at.Value
		case "expires":
			s.Expires = at.Value
		case "rights":
			s.Rights = at.Value
		default:
			s.Extras.Set(p.attrName(at), at.Value)
		}
	}
	return s, nil
}

// ---- declarations ----

func (p *reader) parseDescription(start xml.StartElement) (*votable.Description, error) {
	content, err := p.readText("DESCRIPTION")
	if err != nil {
		return nil, err
	}
	return &votable.Description{Content: strings.TrimSpace(content)}, nil
}

func (p *reader) parseField(start xml.StartElement) (*votable.Field, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	f := &votable.Field{}
	if err := p.fieldAttrs(&f.ID, f, start, "FIELD"); err != nil {
		return nil, err
	}
	return f, p.parseFieldChildren(f, "FIELD")
}

func (p *reader) parseParam(start xml.StartElement) (*votable.Param, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	pa := &votable.Param{}
	hasValue := false
	for _, at := range start.Attr {
		if at.Name.Local == "value" {
			pa.Value = at.Value
			hasValue = true
		}
	}
	if !hasValue {
		return nil, verr.MissingAttr("PARAM", "value")
	}
	if err := p.fieldAttrs(&pa.ID, &pa.Field, start, "PARAM"); err != nil {
		return nil, err
	}
	return pa, p.parseFieldChildren(&pa.Field, "PARAM")
}

// fieldAttrs fills the attributes shared by FIELD and PARAM.
func (p *reader) fieldAttrs(id *string, f *votable.Field, start xml.StartElement, tag string) error {
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			*id = at.Value
		case "name":
			f.Name = at.Value
		case "datatype":
			dt, err := votable.ParseDatatype(at.Value)
			if err != nil {
				return verr.ValueGrammar(tag, "datatype", at.Value, nil)
			}
			f.Datatype = dt
		case "unit":
			f.Unit = at.Value
		case "ucd":
			f.UCD = at.Value
		case "utype":
			f.UType = at.Value
		case "ref":
			f.Ref = at.Value
		case "width":
			w, err := strconv.Atoi(at.Value)
			if err != nil {
				return verr.ValueGrammar(tag, "width", at.Value, err)
			}
			f.Width = &w
		case "precision":
			f.Precision = at.Value
		case "arraysize":
			a, err := votable.ParseArraySize(at.Value)
			if err != nil {
				return err
			}
			f.ArraySize = a
		case "value":
			// PARAM only; handled by the caller.
		default:
			f.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if f.Name == "" {
		return verr.MissingAttr(tag, "name")
	}
	if f.Datatype == votable.DTUnknown {
		return verr.MissingAttr(tag, "datatype")
	}
	return nil
}

func (p *reader) parseFieldChildren(f *votable.Field, tag string) error {
	for {
		tok, err := p.next(tag)
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "DESCRIPTION":
				if f.Description, err = p.parseDescription(tk); err != nil {
					return err
				}
			case "VALUES":
				if f.Values, err = p.parseValues(tk); err != nil {
					return err
				}
			case "LINK":
				l, err := p.parseLink(tk)
				if err != nil {
					return err
				}
				f.Links = append(f.Links, l)
			default:
				return verr.UnexpectedElem(tag, tk.Name.Local)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *reader) parseValues(start xml.StartElement) (*votable.Values, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	v := &votable.Values{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			v.ID = at.Value
		case "type":
			v.Type = at.Value
		case "null":
			v.Null = at.Value
		case "ref":
			v.Ref = at.Value
		default:
			v.Extras.Set(p.attrName(at), at.Value)
		}
	}
	for {
		tok, err := p.next("VALUES")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "MIN":
				m, err := p.parseBound(tk, "MIN")
				if err != nil {
					return nil, err
				}
				v.Min = &votable.Min{Value: m.value, Inclusive: m.inclusive, Extras: m.extras}
			case "MAX":
				m, err := p.parseBound(tk, "MAX")
				if err != nil {
					return nil, err
				}
				v.Max = &votable.Max{Value: m.value, Inclusive: m.inclusive, Extras: m.extras}
			case "OPTION":
				o, err := p.parseOption(tk)
				if err != nil {
					return nil, err
				}
				v.Options = append(v.Options, o)
			default:
				return nil, verr.UnexpectedElem("VALUES", tk.Name.Local)
			}
		case xml.EndElement:
			return v, nil
		}
	}
}

type bound struct {
	value     string
	inclusive bool
	extras    votable.Extras
}

func (p *reader) parseBound(start xml.StartElement, tag string) (*bound, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	b := &bound{inclusive: true}
	hasValue := false
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "value":
			b.value = at.Value
			hasValue = true
		case "inclusive":
			b.inclusive = at.Value != "no"
		default:
			b.extras.Set(p.attrName(at), at.Value)
		}
	}
	if !hasValue {
		return nil, verr.MissingAttr(tag, "value")
	}
	return b, p.expectEnd(tag)
}

func (p *reader) parseOption(start xml.StartElement) (*votable.Option, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	o := &votable.Option{}
	hasValue := false
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "name":
			o.Name = at.Value
		case "value":
			o.Value = at.Value
			hasValue = true
		default:
			o.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if !hasValue {
		return nil, verr.MissingAttr("OPTION", "value")
	}
	for {
		tok, err := p.next("OPTION")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "OPTION" {
				return nil, verr.UnexpectedElem("OPTION", tk.Name.Local)
			}
			sub, err := p.parseOption(tk)
			if err != nil {
				return nil, err
			}
			o.Options = append(o.Options, sub)
		case xml.EndElement:
			return o, nil
		}
	}
}

func (p *reader) parseGroup(start xml.StartElement) (*votable.Group, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	g := &votable.Group{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			g.ID = at.Value
		case "name":
			g.Name = at.Value
		case "ref":
			g.Ref = at.Value
		case "ucd":
			g.UCD = at.Value
		case "utype":
			g.UType = at.Value
		default:
			g.Extras.Set(p.attrName(at), at.Value)
		}
	}
	for {
		tok, err := p.next("GROUP")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "DESCRIPTION":
				if g.Description, err = p.parseDescription(tk); err != nil {
					return nil, err
				}
			case "PARAMref":
				pr, err := p.parseParamRef(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, pr)
			case "PARAM":
				pa, err := p.parseParam(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, pa)
			case "GROUP":
				sub, err := p.parseGroup(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, sub)
			default:
				return nil, verr.UnexpectedElem("GROUP", tk.Name.Local)
			}
		case xml.EndElement:
			return g, nil
		}
	}
}

func (p *reader) parseTableGroup(start xml.StartElement) (*votable.TableGroup, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	g := &votable.TableGroup{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			g.ID = at.Value
		case "name":
			g.Name = at.Value
		case "ref":
			g.Ref = at.Value
		case "ucd":
			g.UCD = at.Value
		case "utype":
			g.UType = at.Value
		default:
			g.Extras.Set(p.attrName(at), at.Value)
		}
	}
	for {
		tok, err := p.next("GROUP")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "DESCRIPTION":
				if g.Description, err = p.parseDescription(tk); err != nil {
					return nil, err
				}
			case "FIELDref":
				fr, err := p.parseFieldRef(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, fr)
			case "PARAMref":
				pr, err := p.parseParamRef(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, pr)
			case "PARAM":
				pa, err := p.parseParam(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, pa)
			case "GROUP":
				sub, err := p.parseTableGroup(tk)
				if err != nil {
					return nil, err
				}
				g.Elems = append(g.Elems, sub)
			default:
				return nil, verr.UnexpectedElem("GROUP", tk.Name.Local)
			}
		case xml.EndElement:
			return g, nil
		}
	}
}

func (p *reader) parseCooSys(start xml.StartElement) (*votable.CooSys, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	cs := &votable.CooSys{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			cs.ID = at.Value
		case "equinox":
			cs.Equinox = at.Value
		case "epoch":
			cs.Epoch = at.Value
		case "system":
			cs.System = at.Value
		default:
			cs.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if cs.ID == "" {
		return nil, verr.MissingAttr("COOSYS", "ID")
	}
	for {
		tok, err := p.next("COOSYS")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "FIELDref":
				fr, err := p.parseFieldRef(tk)
				if err != nil {
					return nil, err
				}
				cs.Elems = append(cs.Elems, fr)
			case "PARAMref":
				pr, err := p.parseParamRef(tk)
				if err != nil {
					return nil, err
				}
				cs.Elems = append(cs.Elems, pr)
			default:
				return nil, verr.UnexpectedElem("COOSYS", tk.Name.Local)
			}
		case xml.EndElement:
			return cs, nil
		}
	}
}

func (p *reader) parseTimeSys(start xml.StartElement) (*votable.TimeSys, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	ts := &votable.TimeSys{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			ts.ID = at.Value
		case "timeorigin":
			ts.TimeOrigin = at.Value
		case "timescale":
			ts.TimeScale = at.Value
		case "refposition":
			ts.RefPosition = at.Value
		default:
			ts.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if ts.ID == "" {
		return nil, verr.MissingAttr("TIMESYS", "ID")
	}
	if ts.TimeScale == "" {
		return nil, verr.MissingAttr("TIMESYS", "timescale")
	}
	if ts.RefPosition == "" {
		return nil, verr.MissingAttr("TIMESYS", "refposition")
	}
	return ts, p.expectEnd("TIMESYS")
}

func (p *reader) parseDefinitions(start xml.StartElement) (*votable.Definitions, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	def := &votable.Definitions{}
	for {
		tok, err := p.next("DEFINITIONS")
		if err != nil {
			return nil, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "COOSYS":
				cs, err := p.parseCooSys(tk)
				if err != nil {
					return nil, err
				}
				def.Elems = append(def.Elems, cs)
			case "PARAM":
				pa, err := p.parseParam(tk)
				if err != nil {
					return nil, err
				}
				def.Elems = append(def.Elems, pa)
			default:
				return nil, verr.UnexpectedElem("DEFINITIONS", tk.Name.Local)
			}
		case xml.EndElement:
			return def, nil
		}
	}
}

func (p *reader) parseInfo(start xml.StartElement) (*votable.Info, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	info := &votable.Info{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			info.ID = at.Value
		case "name":
			info.Name = at.Value
		case "value":
			info.Value = at.Value
		default:
			info.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if info.Name == "" {
		return nil, verr.MissingAttr("INFO", "name")
	}
	content, err := p.readText("INFO")
	if err != nil {
		return nil, err
	}
	info.Content = strings.TrimSpace(content)
	return info, nil
}

func (p *reader) parseLink(start xml.StartElement) (*votable.Link, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	l := &votable.Link{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			l.ID = at.Value
		case "content-role":
			l.ContentRole = at.Value
		case "content-type":
			l.ContentType = at.Value
		case "title":
			l.Title = at.Value
		case "value":
			l.Value = at.Value
		case "href":
			l.Href = at.Value
		case "actuate":
			l.Actuate = at.Value
		default:
			l.Extras.Set(p.attrName(at), at.Value)
		}
	}
	content, err := p.readText("LINK")
	if err != nil {
		return nil, err
	}
	l.Content = strings.TrimSpace(content)
	return l, nil
}

func (p *reader) parseFieldRef(start xml.StartElement) (*votable.FieldRef, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	fr := &votable.FieldRef{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ref":
			fr.Ref = at.Value
		case "ucd":
			fr.UCD = at.Value
		case "utype":
			fr.UType = at.Value
		default:
			fr.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if fr.Ref == "" {
		return nil, verr.MissingAttr("FIELDref", "ref")
	}
	return fr, p.expectEnd("FIELDref")
}

func (p *reader) parseParamRef(start xml.StartElement) (*votable.ParamRef, error) {
	p.ns.push(start.Attr)
	defer p.ns.pop()
	pr := &votable.ParamRef{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ref":
			pr.Ref = at.Value
		case "ucd":
			pr.UCD = at.Value
		case "utype":
			pr.UType = at.Value
		default:
			pr.Extras.Set(p.attrName(at), at.Value)
		}
	}
	if pr.Ref == "" {
		return nil, verr.MissingAttr("PARAMref", "ref")
	}
	return pr, p.expectEnd("PARAMref")
}

// attrName renders an unknown attribute under its document spelling so
// extras round-trip verbatim. The decoder resolves a prefixed attribute's
// Space to the namespace URI; the in-scope declarations map it back to the
// prefix (xsi:schemaLocation and friends). xmlns declarations themselves
// keep their literal xmlns:pfx spelling, and a prefix the document never
// declares comes through unresolved and is kept as written.
func (p *reader) attrName(at xml.Attr) string {
	switch at.Name.Space {
	case "":
		return at.Name.Local
	case "xmlns":
		return "xmlns:" + at.Name.Local
	}
	if pfx, ok := p.ns.prefix(at.Name.Space); ok {
		return pfx + ":" + at.Name.Local
	}
	if strings.ContainsAny(at.Name.Space, ":/") {
		// a namespace URI with no declaration in scope: the prefix is
		// unrecoverable, keep the local name
		return at.Name.Local
	}
	return at.Name.Space + ":" + at.Name.Local
}
