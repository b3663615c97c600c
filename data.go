package votable

// TableContent is the data representation a DATA variant carries. The
// concrete types mirror the three ways a table payload is held in memory:
// fully materialized rows, an opaque byte payload, or nothing at all for
// metadata-only traversals (the content is then a nil interface).
type TableContent interface{ isTableContent() }

// TableRows holds fully decoded rows.
type TableRows struct {
	Rows [][]Value
}

func (*TableRows) isTableContent() {}

// RawBytes holds the raw, already base64-decoded payload of a BINARY or
// BINARY2 stream without row decoding.
type RawBytes struct {
	Bytes []byte
}

func (*RawBytes) isTableContent() {}

// Stream is the STREAM element wrapping BINARY/BINARY2/FITS payloads.
type Stream struct {
	Type     string // defaults to "locator"
	Href     string
	Actuate  string
	Encoding string // "base64" for inline payloads
	Expires  string
	Rights   string
	Extras   Extras
}

// DataVariant is the tagged DATA content: TABLEDATA, BINARY, BINARY2 or an
// external FITS reference. At most one variant per table.
type DataVariant interface {
	// VariantTag returns the XML tag of the variant.
	VariantTag() string
}

// TableData is the textual TR/TD encoding.
type TableData struct {
	Content TableContent
}

func (*TableData) VariantTag() string { return "TABLEDATA" }

// Binary is the row-oriented binary stream encoding.
type Binary struct {
	Stream  Stream
	Content TableContent
}

func (*Binary) VariantTag() string { return "BINARY" }

// Binary2 is the BINARY encoding with a per-row null bitmask.
type Binary2 struct {
	Stream  Stream
	Content TableContent
}

func (*Binary2) VariantTag() string { return "BINARY2" }

// Fits references table data stored in an external FITS file.
type Fits struct {
	ExtNum string
	Stream Stream
}

func (*Fits) VariantTag() string { return "FITS" }

// Data is the DATA element.
type Data struct {
	Variant DataVariant
	Extras  Extras
}

// Rows returns the materialized rows of whichever variant carries them,
// or nil.
func (d *Data) Rows() [][]Value {
	if d == nil {
		return nil
	}
	c := d.content()
	if tr, ok := c.(*TableRows); ok {
		return tr.Rows
	}
	return nil
}

// SetRows replaces the materialized rows of the current variant.
func (d *Data) SetRows(rows [][]Value) {
	switch v := d.Variant.(type) {
	case *TableData:
		v.Content = &TableRows{Rows: rows}
	case *Binary:
		v.Content = &TableRows{Rows: rows}
	case *Binary2:
		v.Content = &TableRows{Rows: rows}
	}
}

func (d *Data) content() TableContent {
	switch v := d.Variant.(type) {
	case *TableData:
		return v.Content
	case *Binary:
		return v.Content
	case *Binary2:
		return v.Content
	}
	return nil
}
