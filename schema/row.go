package schema

import (
	"io"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/internal/atom"
	"github.com/astrogo/votable/verr"
)

// RowCodec drives the compiled field schemas across an entire row in each
// of the three encodings.
type RowCodec struct {
	Schemas []*Schema
}

// NewRowCodec wraps an already compiled schema vector.
func NewRowCodec(schemas []*Schema) *RowCodec { return &RowCodec{Schemas: schemas} }

// CompileRowCodec compiles the row codec of a table.
func CompileRowCodec(t *votable.Table) (*RowCodec, error) {
	schemas, err := CompileTable(t)
	if err != nil {
		return nil, err
	}
	return &RowCodec{Schemas: schemas}, nil
}

// NumFields returns the column count.
func (c *RowCodec) NumFields() int { return len(c.Schemas) }

// MaskLen is the BINARY2 per-row null-mask length in bytes.
func (c *RowCodec) MaskLen() int { return atom.BitBytes(len(c.Schemas)) }

// DecodeTDs decodes the TD cells of one TR.
func (c *RowCodec) DecodeTDs(cells []string) ([]votable.Value, error) {
	if len(cells) != len(c.Schemas) {
		return nil, verr.Structure("TR", "cell count does not match the field count")
	}
	row := make([]votable.Value, len(cells))
	for i, cell := range cells {
		v, err := c.Schemas[i].DecodeTD(cell)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// EncodeTDs renders one row as TD cell contents.
func (c *RowCodec) EncodeTDs(row []votable.Value) ([]string, error) {
	if len(row) != len(c.Schemas) {
		return nil, verr.Structure("TR", "value count does not match the field count")
	}
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = c.Schemas[i].EncodeTD(v)
	}
	return cells, nil
}

// DecodeBinaryRow reads one BINARY row. The caller detects end-of-stream
// before calling (the row boundary is not self-describing).
func (c *RowCodec) DecodeBinaryRow(r io.Reader) ([]votable.Value, error) {
	row := make([]votable.Value, len(c.Schemas))
	for i, s := range c.Schemas {
		v, err := s.DecodeBinary(r)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// EncodeBinaryRow writes one BINARY row.
func (c *RowCodec) EncodeBinaryRow(w io.Writer, row []votable.Value) error {
	if len(row) != len(c.Schemas) {
		return verr.Structure("TR", "value count does not match the field count")
	}
	for i, s := range c.Schemas {
		if err := s.EncodeBinary(w, row[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBinary2Row reads the null mask then every field. Nulled fields are
// decoded and discarded so the exact fixed or length-prefixed byte count is
// consumed regardless of the mask.
func (c *RowCodec) DecodeBinary2Row(r io.Reader) ([]votable.Value, error) {
	mask := make([]byte, c.MaskLen())
	if _, err := io.ReadFull(r, mask); err != nil {
		return nil, verr.IO(err)
	}
	row := make([]votable.Value, len(c.Schemas))
	for i, s := range c.Schemas {
		v, err := s.DecodeBinary(r)
		if err != nil {
			return nil, err
		}
		if mask[i/8]&(1<<(7-uint(i%8))) != 0 {
			v = votable.Null()
		}
		row[i] = v
	}
	return row, nil
}

// EncodeBinary2Row writes the null mask (bit i MSB-first marks field i as
// null) then every field in the BINARY layout.
func (c *RowCodec) EncodeBinary2Row(w io.Writer, row []votable.Value) error {
	if len(row) != len(c.Schemas) {
		return verr.Structure("TR", "value count does not match the field count")
	}
	mask := make([]byte, c.MaskLen())
	for i, v := range row {
		if v.IsNull() {
			mask[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	if _, err := w.Write(mask); err != nil {
		return verr.IO(err)
	}
	for i, s := range c.Schemas {
		if err := s.EncodeBinary(w, row[i]); err != nil {
			return err
		}
	}
	return nil
}
