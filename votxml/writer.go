package votxml

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
	"github.com/astrogo/votable/schema"
	"github.com/astrogo/votable/verr"
)

// Writer is an XML event emitter with stable attribute order and
// self-closing empty elements. With pretty enabled, elements are indented
// two spaces per depth; elements holding text stay on one line.
type Writer struct {
	w      *bufio.Writer
	pretty bool
	depth  int
	inline []bool
	err    error
}

var _ mivot.XMLWriter = (*Writer)(nil)

func NewWriter(w io.Writer, pretty bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), pretty: pretty}
}

// Decl writes the XML declaration.
func (e *Writer) Decl() error {
	e.raw(`<?xml version="1.0" encoding="UTF-8"?>`)
	return e.err
}

func (e *Writer) Start(tag string, attrs ...[2]string) error {
	e.breakLine()
	e.raw("<")
	e.raw(tag)
	e.attrs(attrs)
	e.raw(">")
	e.depth++
	e.inline = append(e.inline, false)
	return e.err
}

func (e *Writer) Empty(tag string, attrs ...[2]string) error {
	e.breakLine()
	e.raw("<")
	e.raw(tag)
	e.attrs(attrs)
	e.raw("/>")
	return e.err
}

func (e *Writer) End(tag string) error {
	e.depth--
	hadText := e.inline[len(e.inline)-1]
	e.inline = e.inline[:len(e.inline)-1]
	if !hadText {
		e.breakLine()
	}
	e.raw("</")
	e.raw(tag)
	e.raw(">")
	return e.err
}

func (e *Writer) Text(s string) error {
	if len(e.inline) > 0 {
		e.inline[len(e.inline)-1] = true
	}
	if e.err != nil {
		return e.err
	}
	e.err = escapeText(e.w, s)
	return e.err
}

// Raw writes bytes verbatim, marking the current element as text-bearing.
func (e *Writer) Raw(b []byte) error {
	if len(e.inline) > 0 {
		e.inline[len(e.inline)-1] = true
	}
	if e.err != nil {
		return e.err
	}
	_, e.err = e.w.Write(b)
	return e.err
}

func (e *Writer) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.Flush(); err != nil {
		e.err = verr.IO(err)
	}
	return e.err
}

func (e *Writer) raw(s string) {
	if e.err != nil {
		return
	}
	if _, err := e.w.WriteString(s); err != nil {
		e.err = verr.IO(err)
	}
}

func (e *Writer) breakLine() {
	if !e.pretty {
		return
	}
	e.raw("\n")
	e.raw(strings.Repeat("  ", e.depth))
}

func (e *Writer) attrs(attrs [][2]string) {
	for _, at := range attrs {
		e.raw(" ")
		e.raw(at[0])
		e.raw(`="`)
		if e.err == nil {
			e.err = escapeAttr(e.w, at[1])
		}
		e.raw(`"`)
	}
}

func escapeText(w io.Writer, s string) error {
	return xml.EscapeText(w, []byte(s))
}

// escapeAttr escapes an attribute value for a double-quoted context.
func escapeAttr(w io.Writer, s string) error {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	_, err := r.WriteString(w, s)
	return err
}

// Write serializes a whole document.
func Write(w io.Writer, vot *votable.VOTable, pretty bool) error {
	e := NewWriter(w, pretty)
	if err := e.Decl(); err != nil {
		return err
	}
	if err := writeVOTable(e, vot); err != nil {
		return err
	}
	if pretty {
		e.raw("\n")
	}
	return e.Flush()
}

// WriteFile serializes a whole document to a file.
func WriteFile(path string, vot *votable.VOTable, pretty bool) error {
	f, err := os.Create(path)
	if err != nil {
		return verr.IO(err)
	}
	if err := Write(f, vot, pretty); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// attrList builds an attribute slice, keeping only non-empty values.
type attrList [][2]string

func (a *attrList) add(name, value string) {
	if value != "" {
		*a = append(*a, [2]string{name, value})
	}
}

func (a *attrList) extras(ex votable.Extras) {
	for _, at := range ex {
		*a = append(*a, [2]string{at.Name, at.Value})
	}
}

func writeVOTable(e *Writer, vot *votable.VOTable) error {
	var a attrList
	a.add("ID", vot.ID)
	a.add("version", vot.Version)
	a.extras(vot.Extras)
	if err := e.Start("VOTABLE", a...); err != nil {
		return err
	}
	writeDescription(e, vot.Description)
	if vot.Definitions != nil {
		writeDefinitions(e, vot.Definitions)
	}
	for _, el := range vot.Elems {
		switch v := el.(type) {
		case *votable.CooSys:
			writeCooSys(e, v)
		case *votable.TimeSys:
			writeTimeSys(e, v)
		case *votable.Info:
			writeInfo(e, v)
		case *votable.Param:
			writeParam(e, v)
		case *votable.Group:
			writeGroup(e, v)
		}
	}
	if vot.Vodml != nil {
		if err := mivot.Write(e, vot.Vodml); err != nil {
			return err
		}
	}
	for _, r := range vot.Resources {
		if err := writeResource(e, r); err != nil {
			return err
		}
	}
	for _, info := range vot.PostInfos {
		writeInfo(e, info)
	}
	return e.End("VOTABLE")
}

func writeResource(e *Writer, r *votable.Resource) error {
	var a attrList
	a.add("ID", r.ID)
	a.add("name", r.Name)
	a.add("type", r.Type)
	a.add("utype", r.UType)
	a.extras(r.Extras)
	if err := e.Start("RESOURCE", a...); err != nil {
		return err
	}
	writeDescription(e, r.Description)
	for _, info := range r.Infos {
		writeInfo(e, info)
	}
	for _, el := range r.Elems {
		switch v := el.(type) {
		case *votable.CooSys:
			writeCooSys(e, v)
		case *votable.TimeSys:
			writeTimeSys(e, v)
		case *votable.Group:
			writeGroup(e, v)
		case *votable.Param:
			writeParam(e, v)
		}
	}
	for _, l := range r.Links {
		writeLink(e, l)
	}
	for _, sub := range r.Subs {
		switch v := sub.(type) {
		case *votable.Resource:
			if err := writeResource(e, v); err != nil {
				return err
			}
		case *votable.Table:
			if err := writeTable(e, v); err != nil {
				return err
			}
		}
	}
	for _, info := range r.PostInfos {
		writeInfo(e, info)
	}
	return e.End("RESOURCE")
}

func writeTable(e *Writer, t *votable.Table) error {
	var a attrList
	a.add("ID", t.ID)
	a.add("name", t.Name)
	a.add("ucd", t.UCD)
	a.add("utype", t.UType)
	a.add("ref", t.Ref)
	a.add("nrows", t.NRows)
	a.extras(t.Extras)
	if err := e.Start("TABLE", a...); err != nil {
		return err
	}
	writeDescription(e, t.Description)
	for _, el := range t.Elems {
		switch v := el.(type) {
		case *votable.Field:
			writeField(e, v)
		case *votable.Param:
			writeParam(e, v)
		case *votable.TableGroup:
			writeTableGroup(e, v)
		}
	}
	for _, l := range t.Links {
		writeLink(e, l)
	}
	if t.Data != nil {
		if err := writeData(e, t); err != nil {
			return err
		}
	}
	for _, info := range t.PostInfos {
		writeInfo(e, info)
	}
	return e.End("TABLE")
}

func writeData(e *Writer, t *votable.Table) error {
	d := t.Data
	var a attrList
	a.extras(d.Extras)
	if err := e.Start("DATA", a...); err != nil {
		return err
	}
	switch v := d.Variant.(type) {
	case *votable.TableData:
		if err := writeTableData(e, t, v); err != nil {
			return err
		}
	case *votable.Binary:
		if err := writeBinary(e, t, "BINARY", &v.Stream, v.Content, false); err != nil {
			return err
		}
	case *votable.Binary2:
		if err := writeBinary(e, t, "BINARY2", &v.Stream, v.Content, true); err != nil {
			return err
		}
	case *votable.Fits:
		var fa attrList
		fa.add("extnum", v.ExtNum)
		if err := e.Start("FITS", fa...); err != nil {
			return err
		}
		writeStream(e, &v.Stream, "")
		if err := e.End("FITS"); err != nil {
			return err
		}
	}
	return e.End("DATA")
}

func writeTableData(e *Writer, t *votable.Table, td *votable.TableData) error {
	switch c := td.Content.(type) {
	case nil:
		return e.Empty("TABLEDATA")
	case *votable.RawBytes:
		if err := e.Start("TABLEDATA"); err != nil {
			return err
		}
		if err := e.Raw(c.Bytes); err != nil {
			return err
		}
		return e.End("TABLEDATA")
	case *votable.TableRows:
		codec, err := schema.CompileRowCodec(t)
		if err != nil {
			return err
		}
		if err := e.Start("TABLEDATA"); err != nil {
			return err
		}
		for _, row := range c.Rows {
			cells, err := codec.EncodeTDs(row)
			if err != nil {
				return err
			}
			if err := e.Start("TR"); err != nil {
				return err
			}
			for _, cell := range cells {
				if cell == "" {
					if err := e.Empty("TD"); err != nil {
						return err
					}
					continue
				}
				if err := e.Start("TD"); err != nil {
					return err
				}
				if err := e.Text(cell); err != nil {
					return err
				}
				if err := e.End("TD"); err != nil {
					return err
				}
			}
			if err := e.End("TR"); err != nil {
				return err
			}
		}
		return e.End("TABLEDATA")
	default:
		return verr.Structure("TABLEDATA", "unsupported table content")
	}
}

func writeBinary(e *Writer, t *votable.Table, tag string, stream *votable.Stream, content votable.TableContent, binary2 bool) error {
	if err := e.Start(tag); err != nil {
		return err
	}
	switch c := content.(type) {
	case nil:
		writeStream(e, stream, "")
	case *votable.RawBytes:
		writeStream(e, stream, base64.StdEncoding.EncodeToString(c.Bytes))
	case *votable.TableRows:
		codec, err := schema.CompileRowCodec(t)
		if err != nil {
			return err
		}
		buf := &bytes.Buffer{}
		for _, row := range c.Rows {
			if binary2 {
				err = codec.EncodeBinary2Row(buf, row)
			} else {
				err = codec.EncodeBinaryRow(buf, row)
			}
			if err != nil {
				return err
			}
		}
		writeStream(e, stream, base64.StdEncoding.EncodeToString(buf.Bytes()))
	default:
		return verr.Structure(tag, "unsupported table content")
	}
	return e.End(tag)
}

func writeStream(e *Writer, s *votable.Stream, content string) {
	var a attrList
	a.add("type", s.Type)
	a.add("href", s.Href)
	a.add("actuate", s.Actuate)
	enc := s.Encoding
	if enc == "" && content != "" {
		enc = "base64"
	}
	a.add("encoding", enc)
	a.add("expires", s.Expires)
	a.add("rights", s.Rights)
	a.extras(s.Extras)
	if content == "" {
		e.Empty("STREAM", a...)
		return
	}
	e.Start("STREAM", a...)
	e.Text(content)
	e.End("STREAM")
}

func writeDescription(e *Writer, d *votable.Description) {
	if d == nil {
		return
	}
	if d.Content == "" {
		e.Empty("DESCRIPTION")
		return
	}
	e.Start("DESCRIPTION")
	e.Text(d.Content)
	e.End("DESCRIPTION")
}

func writeDefinitions(e *Writer, def *votable.Definitions) {
	if len(def.Elems) == 0 {
		e.Empty("DEFINITIONS")
		return
	}
	e.Start("DEFINITIONS")
	for _, el := range def.Elems {
		switch v := el.(type) {
		case *votable.CooSys:
			writeCooSys(e, v)
		case *votable.Param:
			writeParam(e, v)
		}
	}
	e.End("DEFINITIONS")
}

func fieldAttrList(id string, f *votable.Field) attrList {
	var a attrList
	a.add("ID", id)
	a.add("name", f.Name)
	a.add("datatype", f.Datatype.String())
	if f.ArraySize != nil {
		a.add("arraysize", f.ArraySize.String())
	}
	a.add("unit", f.Unit)
	a.add("ucd", f.UCD)
	a.add("utype", f.UType)
	a.add("ref", f.Ref)
	if f.Width != nil {
		a.add("width", strconv.Itoa(*f.Width))
	}
	a.add("precision", f.Precision)
	a.extras(f.Extras)
	return a
}

func writeFieldChildren(e *Writer, f *votable.Field, tag string, a attrList) {
	if f.Description == nil && f.Values == nil && len(f.Links) == 0 {
		e.Empty(tag, a...)
		return
	}
	e.Start(tag, a...)
	writeDescription(e, f.Description)
	if f.Values != nil {
		writeValues(e, f.Values)
	}
	for _, l := range f.Links {
		writeLink(e, l)
	}
	e.End(tag)
}

func writeField(e *Writer, f *votable.Field) {
	writeFieldChildren(e, f, "FIELD", fieldAttrList(f.ID, f))
}

func writeParam(e *Writer, p *votable.Param) {
	a := fieldAttrList(p.ID, &p.Field)
	a = append(a, [2]string{"value", p.Value})
	writeFieldChildren(e, &p.Field, "PARAM", a)
}

func writeValues(e *Writer, v *votable.Values) {
	var a attrList
	a.add("ID", v.ID)
	a.add("type", v.Type)
	a.add("null", v.Null)
	a.add("ref", v.Ref)
	a.extras(v.Extras)
	if v.Min == nil && v.Max == nil && len(v.Options) == 0 {
		e.Empty("VALUES", a...)
		return
	}
	e.Start("VALUES", a...)
	if v.Min != nil {
		writeBound(e, "MIN", v.Min.Value, v.Min.Inclusive, v.Min.Extras)
	}
	if v.Max != nil {
		writeBound(e, "MAX", v.Max.Value, v.Max.Inclusive, v.Max.Extras)
	}
	for _, o := range v.Options {
		writeOption(e, o)
	}
	e.End("VALUES")
}

func writeBound(e *Writer, tag, value string, inclusive bool, ex votable.Extras) {
	a := attrList{{"value", value}}
	if !inclusive {
		a = append(a, [2]string{"inclusive", "no"})
	}
	a.extras(ex)
	e.Empty(tag, a...)
}

func writeOption(e *Writer, o *votable.Option) {
	var a attrList
	a.add("name", o.Name)
	a = append(a, [2]string{"value", o.Value})
	a.extras(o.Extras)
	if len(o.Options) == 0 {
		e.Empty("OPTION", a...)
		return
	}
	e.Start("OPTION", a...)
	for _, sub := range o.Options {
		writeOption(e, sub)
	}
	e.End("OPTION")
}

func writeGroup(e *Writer, g *votable.Group) {
	var a attrList
	a.add("ID", g.ID)
	a.add("name", g.Name)
	a.add("ref", g.Ref)
	a.add("ucd", g.UCD)
	a.add("utype", g.UType)
	a.extras(g.Extras)
	if g.Description == nil && len(g.Elems) == 0 {
		e.Empty("GROUP", a...)
		return
	}
	e.Start("GROUP", a...)
	writeDescription(e, g.Description)
	for _, el := range g.Elems {
		switch v := el.(type) {
		case *votable.ParamRef:
			writeParamRef(e, v)
		case *votable.Param:
			writeParam(e, v)
		case *votable.Group:
			writeGroup(e, v)
		}
	}
	e.End("GROUP")
}

func writeTableGroup(e *Writer, g *votable.TableGroup) {
	var a attrList
	a.add("ID", g.ID)
	a.add("name", g.Name)
	a.add("ref", g.Ref)
	a.add("ucd", g.UCD)
	a.add("utype", g.UType)
	a.extras(g.Extras)
	if g.Description == nil && len(g.Elems) == 0 {
		e.Empty("GROUP", a...)
		return
	}
	e.Start("GROUP", a...)
	writeDescription(e, g.Description)
	for _, el := range g.Elems {
		switch v := el.(type) {
		case *votable.FieldRef:
			writeFieldRef(e, v)
		case *votable.ParamRef:
			writeParamRef(e, v)
		case *votable.Param:
			writeParam(e, v)
		case *votable.TableGroup:
			writeTableGroup(e, v)
		}
	}
	e.End("GROUP")
}

func writeCooSys(e *Writer, cs *votable.CooSys) {
	var a attrList
	a.add("ID", cs.ID)
	a.add("system", cs.System)
	a.add("equinox", cs.Equinox)
	a.add("epoch", cs.Epoch)
	a.extras(cs.Extras)
	if len(cs.Elems) == 0 {
		e.Empty("COOSYS", a...)
		return
	}
	e.Start("COOSYS", a...)
	for _, el := range cs.Elems {
		switch v := el.(type) {
		case *votable.FieldRef:
			writeFieldRef(e, v)
		case *votable.ParamRef:
			writeParamRef(e, v)
		}
	}
	e.End("COOSYS")
}

func writeTimeSys(e *Writer, ts *votable.TimeSys) {
	var a attrList
	a.add("ID", ts.ID)
	a.add("timeorigin", ts.TimeOrigin)
	a.add("timescale", ts.TimeScale)
	a.add("refposition", ts.RefPosition)
	a.extras(ts.Extras)
	e.Empty("TIMESYS", a...)
}

func writeInfo(e *Writer, info *votable.Info) {
	var a attrList
	a.add("ID", info.ID)
	a.add("name", info.Name)
	a = append(a, [2]string{"value", info.Value})
	a.extras(info.Extras)
	if info.Content == "" {
		e.Empty("INFO", a...)
		return
	}
	e.Start("INFO", a...)
	e.Text(info.Content)
	e.End("INFO")
}

func writeLink(e *Writer, l *votable.Link) {
	var a attrList
	a.add("ID", l.ID)
	a.add("content-role", l.ContentRole)
	a.add("content-type", l.ContentType)
	a.add("title", l.Title)
	a.add("value", l.Value)
	a.add("href", l.Href)
	a.add("actuate", l.Actuate)
	a.extras(l.Extras)
	if l.Content == "" {
		e.Empty("LINK", a...)
		return
	}
	e.Start("LINK", a...)
	e.Text(l.Content)
	e.End("LINK")
}

func writeFieldRef(e *Writer, fr *votable.FieldRef) {
	a := attrList{{"ref", fr.Ref}}
	a.add("ucd", fr.UCD)
	a.add("utype", fr.UType)
	a.extras(fr.Extras)
	e.Empty("FIELDref", a...)
}

func writeParamRef(e *Writer, pr *votable.ParamRef) {
	a := attrList{{"ref", pr.Ref}}
	a.add("ucd", pr.UCD)
	a.add("utype", pr.UType)
	a.extras(pr.Extras)
	e.Empty("PARAMref", a...)
}

