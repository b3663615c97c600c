// Package schema compiles FIELD declarations into per-column codecs and
// drives them across whole rows in the three VOTable encodings. A table's
// schema vector is built once when the TABLE opens and reused for every
// row.
package schema

import (
	"strconv"
	"strings"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/internal/atom"
	"github.com/astrogo/votable/verr"
)

// Schema is the compiled codec of one column. It captures everything the
// row engine needs: the datatype, the array shape, and the null sentinel.
type Schema struct {
	Name string
	DT   votable.Datatype

	// Scalar means no arraysize was declared.
	Scalar bool
	// StrLen is the string length for char/unicodeChar with a fixed first
	// dimension, -1 for variable-length strings.
	StrLen int
	// Fixed is the total atom count for a fully fixed arraysize, -1 when a
	// variable dimension is present. For char datatypes atoms are whole
	// strings once StrLen is accounted for.
	Fixed int
	// Block is the product of the fixed dimensions; a variable-length
	// binary payload must hold a multiple of Block atoms.
	Block int
	// MaxVar bounds the variable dimension (`N*`), -1 when unbounded.
	MaxVar int

	// Null is the declared integer null sentinel.
	Null *int64
}

// Compile builds the schema of one field.
func Compile(f *votable.Field) (*Schema, error) {
	s := &Schema{Name: f.Name, DT: f.Datatype, StrLen: -1, MaxVar: -1}
	if f.Datatype == votable.DTUnknown {
		return nil, verr.ValueGrammar("FIELD", "datatype", "", nil)
	}
	a := f.ArraySize
	switch {
	case a == nil:
		s.Scalar = true
		s.Fixed, s.Block = 1, 1
		if f.Datatype.IsChar() {
			s.StrLen = 1
		}
	case f.Datatype.IsChar():
		// A char value is one string; the arraysize dimensions multiply
		// into its character count. Variable forms are length-prefixed in
		// binary (the prefix counts characters).
		s.Fixed, s.Block = 1, 1
		if a.Variable {
			s.StrLen = -1
			s.MaxVar = a.Max
		} else {
			s.StrLen = product(a.Dims)
		}
	default:
		s.Block = a.FixedBlock()
		if a.Variable {
			s.Fixed = -1
			s.MaxVar = a.Max
		} else {
			s.Fixed = s.Block
		}
	}
	return s.checkNull(f)
}

func (s *Schema) checkNull(f *votable.Field) (*Schema, error) {
	if sentinel, ok := f.NullSentinel(); ok && f.Datatype.IsInteger() {
		n, err := strconv.ParseInt(sentinel, 10, 64)
		if err != nil {
			return nil, verr.ValueGrammar("VALUES", "null", sentinel, err)
		}
		s.Null = &n
	}
	return s, nil
}

// CompileTable compiles the field vector of a table, in positional order.
func CompileTable(t *votable.Table) ([]*Schema, error) {
	fields := t.Fields()
	out := make([]*Schema, len(fields))
	for i, f := range fields {
		s, err := Compile(f)
		if err != nil {
			return nil, verr.Wrap("TABLE", err)
		}
		out[i] = s
	}
	return out, nil
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// isString reports whether values of this schema are whole strings rather
// than char atoms.
func (s *Schema) isString() bool {
	return s.DT.IsChar() && (!s.Scalar || s.StrLen != 1)
}

// ---- text (TABLEDATA) ----

// DecodeTD decodes the content of one TD cell. The empty token is null for
// scalars and strings; for variable-length arrays it is an empty array.
func (s *Schema) DecodeTD(cell string) (votable.Value, error) {
	cell = strings.TrimSpace(cell)
	if s.DT.IsChar() {
		if cell == "" {
			return votable.Null(), nil
		}
		if s.Scalar && s.StrLen == 1 {
			r := []rune(cell)[0]
			if s.DT == votable.DTChar {
				return votable.Char(r), nil
			}
			return votable.UnicodeChar(r), nil
		}
		return votable.Str(cell), nil
	}
	if s.DT == votable.DTBit {
		return s.decodeTDBits(cell)
	}
	if s.Scalar {
		return s.decodeScalarToken(cell)
	}
	return s.decodeTDArray(cell)
}

func (s *Schema) decodeTDBits(cell string) (votable.Value, error) {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, cell)
	if compact == "" {
		if s.Fixed < 0 {
			return votable.BitArray(nil, 0), nil
		}
		return votable.Null(), nil
	}
	bits := make([]bool, len(compact))
	for i, c := range compact {
		switch c {
		case '0':
		case '1':
			bits[i] = true
		default:
			return votable.Null(), verr.ValueGrammar("TD", "", cell, nil)
		}
	}
	if s.Fixed >= 0 && len(bits) != s.Fixed {
		return votable.Null(), verr.Structure("TD", "bit count mismatch")
	}
	return votable.BitArray(atom.PackBits(bits), len(bits)), nil
}

// decodeScalarToken decodes one whitespace-free token of a non-char,
// non-bit datatype. Complex datatypes consume two tokens and are handled
// by the callers.
func (s *Schema) decodeScalarToken(tok string) (votable.Value, error) {
	if tok == "" {
		return votable.Null(), nil
	}
	switch s.DT {
	case votable.DTBoolean:
		v, null, err := atom.ParseBool(tok)
		if err != nil || null {
			return votable.Null(), err
		}
		return votable.Bool(v), nil
	case votable.DTUnsignedByte:
		return s.intValue(tok, 8)
	case votable.DTShort:
		return s.intValue(tok, 16)
	case votable.DTInt:
		return s.intValue(tok, 32)
	case votable.DTLong:
		return s.intValue(tok, 64)
	case votable.DTFloat:
		f, err := atom.ParseFloat(tok, 32)
		if err != nil {
			return votable.Null(), err
		}
		return floatValue(f, 32), nil
	case votable.DTDouble:
		f, err := atom.ParseFloat(tok, 64)
		if err != nil {
			return votable.Null(), err
		}
		return floatValue(f, 64), nil
	case votable.DTFloatComplex, votable.DTDoubleComplex:
		return s.decodeComplexTokens(strings.Fields(tok))
	}
	return votable.Null(), verr.Customf("unhandled datatype %s", s.DT)
}

func (s *Schema) intValue(tok string, bits int) (votable.Value, error) {
	v, err := atom.ParseInt(tok, bits)
	if err != nil {
		return votable.Null(), err
	}
	if s.Null != nil && v == *s.Null {
		return votable.Null(), nil
	}
	switch bits {
	case 8:
		return votable.Byte(uint8(v)), nil
	case 16:
		return votable.Short(int16(v)), nil
	case 32:
		return votable.Int(int32(v)), nil
	}
	return votable.Long(v), nil
}

func (s *Schema) decodeComplexTokens(toks []string) (votable.Value, error) {
	if len(toks) != 2 {
		return votable.Null(), verr.Structure("TD", "complex value needs two tokens")
	}
	bits := 64
	if s.DT == votable.DTFloatComplex {
		bits = 32
	}
	re, err := atom.ParseFloat(toks[0], bits)
	if err != nil {
		return votable.Null(), err
	}
	im, err := atom.ParseFloat(toks[1], bits)
	if err != nil {
		return votable.Null(), err
	}
	if s.DT == votable.DTFloatComplex {
		return votable.FloatComplex(float32(re), float32(im)), nil
	}
	return votable.DoubleComplex(re, im), nil
}

func (s *Schema) decodeTDArray(cell string) (votable.Value, error) {
	toks := strings.Fields(cell)
	perAtom := 1
	if s.DT == votable.DTFloatComplex || s.DT == votable.DTDoubleComplex {
		perAtom = 2
	}
	if len(toks) == 0 {
		if s.Fixed < 0 {
			return votable.Array(nil), nil
		}
		return votable.Null(), nil
	}
	if len(toks)%perAtom != 0 {
		return votable.Null(), verr.Structure("TD", "odd number of complex components")
	}
	n := len(toks) / perAtom
	if s.Fixed >= 0 && n != s.Fixed {
		return votable.Null(), verr.Structure("TD", "array length mismatch")
	}
	if s.Fixed < 0 && s.Block > 1 && n%s.Block != 0 {
		return votable.Null(), verr.Structure("TD", "array length not a multiple of its fixed dimensions")
	}
	elems := make([]votable.Value, n)
	for i := 0; i < n; i++ {
		var v votable.Value
		var err error
		if perAtom == 2 {
			v, err = s.decodeComplexTokens(toks[2*i : 2*i+2])
		} else {
			v, err = s.decodeScalarToken(toks[i])
		}
		if err != nil {
			return votable.Null(), err
		}
		elems[i] = v
	}
	return votable.Array(elems), nil
}

// EncodeTD renders a value as TD cell content. Null renders as the empty
// token.
func (s *Schema) EncodeTD(v votable.Value) string {
	return v.String()
}

func floatValue(f float64, bits int) votable.Value {
	// IEEE NaN is the null value of floating datatypes.
	if f != f {
		return votable.Null()
	}
	if bits == 32 {
		return votable.Float(float32(f))
	}
	return votable.Double(f)
}
