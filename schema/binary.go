package schema

import (
	"io"
	"math"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/internal/atom"
	"github.com/astrogo/votable/verr"
)

// readVarCount reads the big-endian signed 32-bit length prefix of a
// variable-length value. Negative counts are rejected; some producers wrote
// negative sentinels, which are treated as errors.
func readVarCount(r io.Reader) (int, error) {
	n, err := atom.ReadI32(r)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, verr.Structure("STREAM", "negative length prefix")
	}
	return int(n), nil
}

// DecodeBinary reads one value of this column from a BINARY stream. The
// same byte layout is shared by BINARY2; masked-null fields are decoded
// then discarded by the row engine so the stream position stays exact.
func (s *Schema) DecodeBinary(r io.Reader) (votable.Value, error) {
	// Strings first: char array dimensions collapse into character counts.
	if s.DT.IsChar() {
		return s.decodeBinaryString(r)
	}
	if s.DT == votable.DTBit {
		return s.decodeBinaryBits(r)
	}
	n := s.Fixed
	if n < 0 {
		var err error
		if n, err = readVarCount(r); err != nil {
			return votable.Null(), err
		}
		if s.Block > 1 && n%s.Block != 0 {
			return votable.Null(), verr.Structure("STREAM", "array length not a multiple of its fixed dimensions")
		}
		if s.MaxVar >= 0 && n > s.MaxVar {
			return votable.Null(), verr.Structure("STREAM", "array length exceeds declared bound")
		}
	}
	if s.Scalar {
		return s.decodeBinaryAtom(r, true)
	}
	if s.Fixed < 0 && n == 0 {
		return votable.Array(nil), nil
	}
	elems := make([]votable.Value, n)
	for i := range elems {
		v, err := s.decodeBinaryAtom(r, false)
		if err != nil {
			return votable.Null(), err
		}
		elems[i] = v
	}
	return votable.Array(elems), nil
}

// decodeBinaryAtom reads one atom. When scalar is set, null-mapping
// applies: integer sentinels and float NaNs decode to null.
func (s *Schema) decodeBinaryAtom(r io.Reader, scalar bool) (votable.Value, error) {
	switch s.DT {
	case votable.DTBoolean:
		b, err := atom.ReadU8(r)
		if err != nil {
			return votable.Null(), err
		}
		v, null, err := atom.DecodeBoolByte(b)
		if err != nil || null {
			return votable.Null(), err
		}
		return votable.Bool(v), nil
	case votable.DTUnsignedByte:
		b, err := atom.ReadU8(r)
		if err != nil {
			return votable.Null(), err
		}
		return s.mapIntNull(int64(b), votable.Byte(b), scalar), nil
	case votable.DTShort:
		v, err := atom.ReadI16(r)
		if err != nil {
			return votable.Null(), err
		}
		return s.mapIntNull(int64(v), votable.Short(v), scalar), nil
	case votable.DTInt:
		v, err := atom.ReadI32(r)
		if err != nil {
			return votable.Null(), err
		}
		return s.mapIntNull(int64(v), votable.Int(v), scalar), nil
	case votable.DTLong:
		v, err := atom.ReadI64(r)
		if err != nil {
			return votable.Null(), err
		}
		return s.mapIntNull(v, votable.Long(v), scalar), nil
	case votable.DTFloat:
		f, err := atom.ReadF32(r)
		if err != nil {
			return votable.Null(), err
		}
		if scalar {
			return floatValue(float64(f), 32), nil
		}
		return votable.Float(f), nil
	case votable.DTDouble:
		f, err := atom.ReadF64(r)
		if err != nil {
			return votable.Null(), err
		}
		if scalar {
			return floatValue(f, 64), nil
		}
		return votable.Double(f), nil
	case votable.DTFloatComplex:
		re, err := atom.ReadF32(r)
		if err != nil {
			return votable.Null(), err
		}
		im, err := atom.ReadF32(r)
		if err != nil {
			return votable.Null(), err
		}
		if scalar && isNaN32(re) && isNaN32(im) {
			return votable.Null(), nil
		}
		return votable.FloatComplex(re, im), nil
	case votable.DTDoubleComplex:
		re, err := atom.ReadF64(r)
		if err != nil {
			return votable.Null(), err
		}
		im, err := atom.ReadF64(r)
		if err != nil {
			return votable.Null(), err
		}
		if scalar && math.IsNaN(re) && math.IsNaN(im) {
			return votable.Null(), nil
		}
		return votable.DoubleComplex(re, im), nil
	}
	return votable.Null(), verr.Customf("unhandled datatype %s", s.DT)
}

func (s *Schema) mapIntNull(raw int64, v votable.Value, scalar bool) votable.Value {
	if scalar && s.Null != nil && raw == *s.Null {
		return votable.Null()
	}
	return v
}

func (s *Schema) decodeBinaryString(r io.Reader) (votable.Value, error) {
	n := s.StrLen
	if n < 0 {
		var err error
		if n, err = readVarCount(r); err != nil {
			return votable.Null(), err
		}
		if n == 0 {
			return votable.Null(), nil
		}
	}
	var str string
	var err error
	if s.DT == votable.DTChar {
		str, err = atom.ReadASCII(r, n)
	} else {
		str, err = atom.ReadUCS2(r, n)
	}
	if err != nil {
		return votable.Null(), err
	}
	if str == "" {
		return votable.Null(), nil
	}
	if s.Scalar && s.StrLen == 1 {
		runes := []rune(str)
		if s.DT == votable.DTChar {
			return votable.Char(runes[0]), nil
		}
		return votable.UnicodeChar(runes[0]), nil
	}
	return votable.Str(str), nil
}

func (s *Schema) decodeBinaryBits(r io.Reader) (votable.Value, error) {
	n := s.Fixed
	if n < 0 {
		var err error
		if n, err = readVarCount(r); err != nil {
			return votable.Null(), err
		}
		if n == 0 {
			return votable.BitArray(nil, 0), nil
		}
	}
	packed := make([]byte, atom.BitBytes(n))
	if _, err := io.ReadFull(r, packed); err != nil {
		return votable.Null(), verr.IO(err)
	}
	return votable.BitArray(packed, n), nil
}

// EncodeBinary writes one value of this column in the BINARY layout. Nulls
// emit the declared sentinel (or NaN, '?', NUL padding, or a zero count
// for variable-length values).
func (s *Schema) EncodeBinary(w io.Writer, v votable.Value) error {
	if s.DT.IsChar() {
		return s.encodeBinaryString(w, v)
	}
	if s.DT == votable.DTBit {
		return s.encodeBinaryBits(w, v)
	}
	if s.Scalar {
		return s.encodeBinaryAtom(w, v)
	}
	elems := v.Elems
	if v.IsNull() {
		elems = nil
	}
	if s.Fixed < 0 {
		if err := atom.WriteI32(w, int32(len(elems))); err != nil {
			return err
		}
	} else if len(elems) != s.Fixed {
		return verr.Structure("STREAM", "array length mismatch on encode")
	}
	for _, e := range elems {
		if err := s.encodeBinaryAtom(w, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) encodeBinaryAtom(w io.Writer, v votable.Value) error {
	null := v.IsNull()
	switch s.DT {
	case votable.DTBoolean:
		return atom.WriteU8(w, atom.BoolByte(v.B, null))
	case votable.DTUnsignedByte:
		return atom.WriteU8(w, uint8(s.intOrNull(v)))
	case votable.DTShort:
		return atom.WriteI16(w, int16(s.intOrNull(v)))
	case votable.DTInt:
		return atom.WriteI32(w, int32(s.intOrNull(v)))
	case votable.DTLong:
		return atom.WriteI64(w, s.intOrNull(v))
	case votable.DTFloat:
		if null {
			return atom.WriteF32(w, float32(math.NaN()))
		}
		return atom.WriteF32(w, float32(v.F))
	case votable.DTDouble:
		if null {
			return atom.WriteF64(w, math.NaN())
		}
		return atom.WriteF64(w, v.F)
	case votable.DTFloatComplex:
		re, im := float32(v.F), float32(v.F2)
		if null {
			re, im = float32(math.NaN()), float32(math.NaN())
		}
		if err := atom.WriteF32(w, re); err != nil {
			return err
		}
		return atom.WriteF32(w, im)
	case votable.DTDoubleComplex:
		re, im := v.F, v.F2
		if null {
			re, im = math.NaN(), math.NaN()
		}
		if err := atom.WriteF64(w, re); err != nil {
			return err
		}
		return atom.WriteF64(w, im)
	}
	return verr.Customf("unhandled datatype %s", s.DT)
}

// intOrNull maps a null to the declared sentinel, or to the all-bits-one
// pattern when none is declared.
func (s *Schema) intOrNull(v votable.Value) int64 {
	if !v.IsNull() {
		return v.I
	}
	if s.Null != nil {
		return *s.Null
	}
	return -1
}

func (s *Schema) encodeBinaryString(w io.Writer, v votable.Value) error {
	str := v.S
	if v.IsNull() {
		str = ""
	}
	n := s.StrLen
	if n < 0 {
		runes := []rune(str)
		if err := atom.WriteI32(w, int32(len(runes))); err != nil {
			return err
		}
		n = len(runes)
	}
	if s.DT == votable.DTChar {
		return atom.WriteASCII(w, str, n)
	}
	return atom.WriteUCS2(w, str, n)
}

func (s *Schema) encodeBinaryBits(w io.Writer, v votable.Value) error {
	nbits := int(v.I)
	packed := v.Bits
	if v.IsNull() {
		nbits, packed = s.Fixed, nil
		if nbits < 0 {
			nbits = 0
		}
	}
	if s.Fixed < 0 {
		if err := atom.WriteI32(w, int32(nbits)); err != nil {
			return err
		}
	} else if nbits != s.Fixed {
		return verr.Structure("STREAM", "bit count mismatch on encode")
	}
	buf := make([]byte, atom.BitBytes(nbits))
	copy(buf, packed)
	if len(buf) == 0 {
		return nil
	}
	_, err := w.Write(buf)
	return verr.IO(err)
}

func isNaN32(f float32) bool { return f != f }
