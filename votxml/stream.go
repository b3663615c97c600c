package votxml

import (
	"bufio"
	"encoding/base64"
	"encoding/xml"
	"io"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
	"github.com/astrogo/votable/schema"
	"github.com/astrogo/votable/verr"
)

// charDataReader exposes the character content of an element as an
// io.Reader, dropping whitespace so the bytes can feed a base64 decoder
// directly. Reading past the content consumes the element's end tag.
type charDataReader struct {
	d    *xml.Decoder
	tag  string
	buf  []byte
	done bool
}

func newCharDataReader(d *xml.Decoder, tag string) *charDataReader {
	return &charDataReader{d: d, tag: tag}
}

func (c *charDataReader) Read(p []byte) (int, error) {
	for len(c.buf) == 0 {
		if c.done {
			return 0, io.EOF
		}
		tok, err := c.d.Token()
		if err == io.EOF {
			return 0, verr.PrematureEOF(c.tag)
		}
		if err != nil {
			return 0, verr.XMLSyntax(err, c.d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.CharData:
			for _, b := range t {
				if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
					c.buf = append(c.buf, b)
				}
			}
		case xml.Comment:
		case xml.EndElement:
			c.done = true
		case xml.StartElement:
			return 0, verr.UnexpectedElem(c.tag, t.Name.Local)
		}
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

// drain consumes any remaining content through the end tag.
func (c *charDataReader) drain() error {
	for !c.done {
		if _, err := c.Read(make([]byte, 512)); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

// decodeBinaryRows reads rows off a base64 character stream until it is
// exhausted. A truncated final row is a premature EOF.
func decodeBinaryRows(enc *base64.Encoding, src io.Reader, codec *schema.RowCodec, binary2 bool) ([][]votable.Value, error) {
	return decodeRawRows(bufio.NewReader(base64.NewDecoder(enc, src)), codec, binary2)
}

func decodeRawRows(br *bufio.Reader, codec *schema.RowCodec, binary2 bool) ([][]votable.Value, error) {
	var rows [][]votable.Value
	for {
		if _, err := br.Peek(1); err == io.EOF {
			return rows, nil
		}
		var (
			row []votable.Value
			err error
		)
		if binary2 {
			row, err = codec.DecodeBinary2Row(br)
		} else {
			row, err = codec.DecodeBinaryRow(br)
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Encoding identifies how the first DATA block of a document stores rows.
type Encoding int

const (
	EncNone Encoding = iota // no DATA block reached
	EncTableData
	EncBinary
	EncBinary2
	EncFits
)

func (e Encoding) String() string {
	switch e {
	case EncTableData:
		return "TABLEDATA"
	case EncBinary:
		return "BINARY"
	case EncBinary2:
		return "BINARY2"
	case EncFits:
		return "FITS"
	}
	return "none"
}

// StreamReader parses a document up to the first DATA block and stops with
// the decoder positioned at the start of the row data. The metadata read so
// far is available as a partial document; rows can then be pulled one at a
// time, or ignored entirely for a metadata-only read.
type StreamReader struct {
	d     *xml.Decoder
	p     *reader
	vot   *votable.VOTable
	table *votable.Table
	enc   Encoding
	codec *schema.RowCodec

	// ancestry of the table holding the open DATA block, innermost last
	stack []*votable.Resource

	binSrc  *bufio.Reader   // positioned binary payload, nil for TABLEDATA
	binChar *charDataReader // underlying STREAM content reader
	err     error
	done    bool
}

// NewStreamReader consumes metadata until just inside the first DATA
// variant (or to the end of the document if no table carries data).
func NewStreamReader(r io.Reader) (*StreamReader, error) {
	d := newDecoder(r)
	s := &StreamReader{d: d, p: &reader{d: d}}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

// Document returns the document parsed so far. Before the rows have been
// consumed it holds everything up to the open DATA block.
func (s *StreamReader) Document() *votable.VOTable { return s.vot }

// Table returns the table owning the open DATA block, or nil for a
// metadata-only document.
func (s *StreamReader) Table() *votable.Table { return s.table }

// DataEncoding reports the variant of the open DATA block.
func (s *StreamReader) DataEncoding() Encoding { return s.enc }

// Codec returns the row codec compiled from the open table's fields.
func (s *StreamReader) Codec() *schema.RowCodec { return s.codec }

// InputOffset reports the byte offset of the underlying XML decoder.
func (s *StreamReader) InputOffset() int64 { return s.d.InputOffset() }

// Decoder exposes the underlying XML decoder for callers that drive the
// row tokens themselves.
func (s *StreamReader) Decoder() *xml.Decoder { return s.d }

// open walks VOTABLE and RESOURCE elements until a TABLE with a DATA
// block is entered, building the partial document along the way.
func (s *StreamReader) open() error {
	start, err := s.p.rootStart()
	if err != nil {
		return err
	}
	// root scope stays open for the lifetime of the reader
	s.p.ns.push(start.Attr)
	vot := &votable.VOTable{}
	for _, at := range start.Attr {
		switch at.Name.Local {
		case "ID":
			vot.ID = at.Value
		case "version":
			vot.Version = at.Value
		default:
			vot.Extras.Set(s.p.attrName(at), at.Value)
		}
	}
	s.vot = vot
	return s.walkVOTable()
}

func (s *StreamReader) walkVOTable() error {
	vot := s.vot
	seenResource := false
	for {
		tok, err := s.p.next("VOTABLE")
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				if vot.Description, err = s.p.parseDescription(t); err != nil {
					return err
				}
			case "DEFINITIONS":
				if vot.Definitions, err = s.p.parseDefinitions(t); err != nil {
					return err
				}
			case "COOSYS":
				cs, err := s.p.parseCooSys(t)
				if err != nil {
					return err
				}
				vot.Elems = append(vot.Elems, cs)
			case "TIMESYS":
				ts, err := s.p.parseTimeSys(t)
				if err != nil {
					return err
				}
				vot.Elems = append(vot.Elems, ts)
			case "INFO":
				info, err := s.p.parseInfo(t)
				if err != nil {
					return err
				}
				if seenResource {
					vot.PostInfos = append(vot.PostInfos, info)
				} else {
					vot.Elems = append(vot.Elems, info)
				}
			case "PARAM":
				pa, err := s.p.parseParam(t)
				if err != nil {
					return err
				}
				vot.Elems = append(vot.Elems, pa)
			case "GROUP":
				g, err := s.p.parseGroup(t)
				if err != nil {
					return err
				}
				vot.Elems = append(vot.Elems, g)
			case "VODML":
				v, err := mivot.Parse(s.d, t)
				if err != nil {
					return err
				}
				vot.Vodml = v
			case "RESOURCE":
				seenResource = true
				stopped, err := s.walkResource(t, func(r *votable.Resource) {
					vot.Resources = append(vot.Resources, r)
				})
				if err != nil {
					return err
				}
				if stopped {
					return nil
				}
			default:
				return verr.UnexpectedElem("VOTABLE", t.Name.Local)
			}
		case xml.EndElement:
			s.done = true
			return nil
		}
	}
}

// walkResource parses a resource; attach adds the partially or fully built
// resource to its parent. Returns true if a DATA block was reached and
// parsing stopped inside it.
func (s *StreamReader) walkResource(start xml.StartElement, attach func(*votable.Resource)) (bool, error) {
	// popped on close, here or in closeResources when data stops inside
	s.p.ns.push(start.Attr)
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
			r.Extras.Set(s.p.attrName(at), at.Value)
		}
	}
	attach(r)
	s.stack = append(s.stack, r)
	seenSub := false
	for {
		tok, err := s.p.next("RESOURCE")
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				if r.Description, err = s.p.parseDescription(t); err != nil {
					return false, err
				}
			case "INFO":
				info, err := s.p.parseInfo(t)
				if err != nil {
					return false, err
				}
				if seenSub {
					r.PostInfos = append(r.PostInfos, info)
				} else {
					r.Infos = append(r.Infos, info)
				}
			case "COOSYS":
				cs, err := s.p.parseCooSys(t)
				if err != nil {
					return false, err
				}
				r.Elems = append(r.Elems, cs)
			case "TIMESYS":
				ts, err := s.p.parseTimeSys(t)
				if err != nil {
					return false, err
				}
				r.Elems = append(r.Elems, ts)
			case "GROUP":
				g, err := s.p.parseGroup(t)
				if err != nil {
					return false, err
				}
				r.Elems = append(r.Elems, g)
			case "PARAM":
				pa, err := s.p.parseParam(t)
				if err != nil {
					return false, err
				}
				r.Elems = append(r.Elems, pa)
			case "LINK":
				l, err := s.p.parseLink(t)
				if err != nil {
					return false, err
				}
				r.Links = append(r.Links, l)
			case "RESOURCE":
				seenSub = true
				stopped, err := s.walkResource(t, func(sub *votable.Resource) {
					r.Subs = append(r.Subs, sub)
				})
				if err != nil || stopped {
					return stopped, err
				}
			case "TABLE":
				seenSub = true
				stopped, err := s.walkTable(t, r)
				if err != nil || stopped {
					return stopped, err
				}
			default:
				return false, verr.UnexpectedElem("RESOURCE", t.Name.Local)
			}
		case xml.EndElement:
			s.stack = s.stack[:len(s.stack)-1]
			s.p.ns.pop()
			return false, nil
		}
	}
}

// walkTable parses a table; if it carries a DATA block, parsing stops just
// inside the data variant and walkTable returns true.
func (s *StreamReader) walkTable(start xml.StartElement, parent *votable.Resource) (bool, error) {
	// popped on close, here or in closeTable when data stops inside
	s.p.ns.push(start.Attr)
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
			t.Extras.Set(s.p.attrName(at), at.Value)
		}
	}
	parent.Subs = append(parent.Subs, t)
	for {
		tok, err := s.p.next("TABLE")
		if err != nil {
			return false, err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "DESCRIPTION":
				if t.Description, err = s.p.parseDescription(tk); err != nil {
					return false, err
				}
			case "FIELD":
				f, err := s.p.parseField(tk)
				if err != nil {
					return false, err
				}
				t.Elems = append(t.Elems, f)
			case "PARAM":
				pa, err := s.p.parseParam(tk)
				if err != nil {
					return false, err
				}
				t.Elems = append(t.Elems, pa)
			case "GROUP":
				g, err := s.p.parseTableGroup(tk)
				if err != nil {
					return false, err
				}
				t.Elems = append(t.Elems, g)
			case "LINK":
				l, err := s.p.parseLink(tk)
				if err != nil {
					return false, err
				}
				t.Links = append(t.Links, l)
			case "INFO":
				info, err := s.p.parseInfo(tk)
				if err != nil {
					return false, err
				}
				t.PostInfos = append(t.PostInfos, info)
			case "DATA":
				return true, s.openData(tk, t)
			default:
				return false, verr.UnexpectedElem("TABLE", tk.Name.Local)
			}
		case xml.EndElement:
			s.p.ns.pop()
			return false, nil
		}
	}
}

// openData positions the reader just inside the first data variant.
func (s *StreamReader) openData(start xml.StartElement, t *votable.Table) error {
	// popped in Finish after </DATA>
	s.p.ns.push(start.Attr)
	d := &votable.Data{}
	for _, at := range start.Attr {
		d.Extras.Set(s.p.attrName(at), at.Value)
	}
	t.Data = d
	codec, err := schema.CompileRowCodec(t)
	if err != nil {
		return err
	}
	s.table = t
	s.codec = codec
	tok, err := s.p.next("DATA")
	if err != nil {
		return err
	}
	tk, ok := tok.(xml.StartElement)
	if !ok {
		return verr.Structure("DATA", "empty DATA block")
	}
	switch tk.Name.Local {
	case "TABLEDATA":
		s.enc = EncTableData
		d.Variant = &votable.TableData{}
		return nil
	case "BINARY", "BINARY2":
		stok, err := s.p.next(tk.Name.Local)
		if err != nil {
			return err
		}
		st, ok := stok.(xml.StartElement)
		if !ok || st.Name.Local != "STREAM" {
			return verr.Structure(tk.Name.Local, "expected STREAM")
		}
		stream, err := s.p.parseStreamAttrs(st)
		if err != nil {
			return err
		}
		s.binChar = newCharDataReader(s.d, "STREAM")
		s.binSrc = bufio.NewReader(base64.NewDecoder(base64.StdEncoding, s.binChar))
		if tk.Name.Local == "BINARY2" {
			s.enc = EncBinary2
			d.Variant = &votable.Binary2{Stream: *stream}
		} else {
			s.enc = EncBinary
			d.Variant = &votable.Binary{Stream: *stream}
		}
		return nil
	case "FITS":
		f, err := s.p.parseFits(tk)
		if err != nil {
			return err
		}
		s.enc = EncFits
		d.Variant = f
		return nil
	default:
		return verr.UnexpectedElem("DATA", tk.Name.Local)
	}
}

// NextTDCells returns the raw cell strings of the next TR, or io.EOF after
// the last row. Only valid for EncTableData.
func (s *StreamReader) NextTDCells() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.enc != EncTableData {
		return nil, verr.Structure("TABLEDATA", "not positioned in a TABLEDATA block")
	}
	tok, err := s.p.next("TABLEDATA")
	if err != nil {
		s.err = err
		return nil, err
	}
	switch tk := tok.(type) {
	case xml.StartElement:
		if tk.Name.Local != "TR" {
			s.err = verr.UnexpectedElem("TABLEDATA", tk.Name.Local)
			return nil, s.err
		}
		cells, err := s.p.parseTR()
		if err != nil {
			s.err = err
			return nil, err
		}
		return cells, nil
	case xml.EndElement:
		s.err = io.EOF
		return nil, io.EOF
	}
	s.err = verr.Structure("TABLEDATA", "unexpected token")
	return nil, s.err
}

// NextRow decodes the next typed row of the open DATA block, or io.EOF
// after the last row.
func (s *StreamReader) NextRow() ([]votable.Value, error) {
	if s.err != nil {
		return nil, s.err
	}
	switch s.enc {
	case EncTableData:
		cells, err := s.NextTDCells()
		if err != nil {
			return nil, err
		}
		row, err := s.codec.DecodeTDs(cells)
		if err != nil {
			s.err = err
			return nil, err
		}
		return row, nil
	case EncBinary, EncBinary2:
		if _, err := s.binSrc.Peek(1); err == io.EOF {
			s.err = io.EOF
			return nil, io.EOF
		}
		var (
			row []votable.Value
			err error
		)
		if s.enc == EncBinary2 {
			row, err = s.codec.DecodeBinary2Row(s.binSrc)
		} else {
			row, err = s.codec.DecodeBinaryRow(s.binSrc)
		}
		if err != nil {
			s.err = err
			return nil, err
		}
		return row, nil
	}
	return nil, verr.Structure("DATA", "document has no row data")
}

// Finish drains the remaining rows and closing tags, completing the
// partial document so trailing INFO elements become visible.
func (s *StreamReader) Finish() error {
	if s.done {
		return nil
	}
	switch s.enc {
	case EncTableData:
		for {
			if _, err := s.NextTDCells(); err != nil {
				if err == io.EOF {
					break
				}
				return err
			}
		}
	case EncBinary, EncBinary2:
		if err := s.binChar.drain(); err != nil {
			return err
		}
		tag := "BINARY"
		if s.enc == EncBinary2 {
			tag = "BINARY2"
		}
		if err := s.p.expectEnd(tag); err != nil {
			return err
		}
	}
	if s.enc != EncNone {
		// consume </DATA>
		if err := s.p.expectEnd("DATA"); err != nil {
			return err
		}
		s.p.ns.pop()
		if err := s.closeTable(); err != nil {
			return err
		}
	}
	return s.closeResources()
}

// closeTable consumes trailing table children after DATA.
func (s *StreamReader) closeTable() error {
	t := s.table
	for {
		tok, err := s.p.next("TABLE")
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "INFO" {
				return verr.Structure("TABLE", "declaration after DATA")
			}
			info, err := s.p.parseInfo(tk)
			if err != nil {
				return err
			}
			t.PostInfos = append(t.PostInfos, info)
		case xml.EndElement:
			s.p.ns.pop()
			return nil
		}
	}
}

// closeResources consumes the remainder of the document after the data
// table, including sibling resources and trailing infos.
func (s *StreamReader) closeResources() error {
	for i := len(s.stack) - 1; i >= 0; i-- {
		r := s.stack[i]
		for {
			tok, err := s.p.next("RESOURCE")
			if err != nil {
				return err
			}
			done := false
			switch tk := tok.(type) {
			case xml.StartElement:
				switch tk.Name.Local {
				case "INFO":
					info, err := s.p.parseInfo(tk)
					if err != nil {
						return err
					}
					r.PostInfos = append(r.PostInfos, info)
				case "RESOURCE":
					sub, err := s.p.parseResource(tk)
					if err != nil {
						return err
					}
					r.Subs = append(r.Subs, sub)
				case "TABLE":
					tb, err := s.p.parseTable(tk)
					if err != nil {
						return err
					}
					r.Subs = append(r.Subs, tb)
				default:
					return verr.UnexpectedElem("RESOURCE", tk.Name.Local)
				}
			case xml.EndElement:
				done = true
			}
			if done {
				s.p.ns.pop()
				break
			}
		}
	}
	s.stack = nil
	// trailing document-level infos
	for {
		tok, err := s.p.next("VOTABLE")
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "INFO":
				info, err := s.p.parseInfo(tk)
				if err != nil {
					return err
				}
				s.vot.PostInfos = append(s.vot.PostInfos, info)
			case "RESOURCE":
				r, err := s.p.parseResource(tk)
				if err != nil {
					return err
				}
				s.vot.Resources = append(s.vot.Resources, r)
			default:
				return verr.UnexpectedElem("VOTABLE", tk.Name.Local)
			}
		case xml.EndElement:
			s.done = true
			return nil
		}
	}
}
