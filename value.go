package votable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind discriminates the Value variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindFloatComplex
	KindDoubleComplex
	KindChar
	KindUnicodeChar
	KindString
	KindBitArray
	KindArray
)

// Value is one decoded table cell: a primitive scalar, a primitive array, a
// string, a complex pair, or null. The same representation is produced by
// the TABLEDATA, BINARY and BINARY2 decoders so that rows from the three
// encodings compare pointwise equal.
type Value struct {
	Kind Kind
	B    bool
	I    int64   // byte/short/int/long payload
	F    float64 // float/double, or the real part of a complex pair
	F2   float64 // imaginary part of a complex pair
	S    string  // char/unicodeChar scalars and strings
	// Bits holds a bit array packed MSB-first; I carries the bit count.
	Bits  []byte
	Elems []Value // numeric/complex arrays
}

func Null() Value               { return Value{Kind: KindNull} }
func Bool(b bool) Value         { return Value{Kind: KindBool, B: b} }
func Byte(v uint8) Value        { return Value{Kind: KindByte, I: int64(v)} }
func Short(v int16) Value       { return Value{Kind: KindShort, I: int64(v)} }
func Int(v int32) Value         { return Value{Kind: KindInt, I: int64(v)} }
func Long(v int64) Value        { return Value{Kind: KindLong, I: v} }
func Float(v float32) Value     { return Value{Kind: KindFloat, F: float64(v)} }
func Double(v float64) Value    { return Value{Kind: KindDouble, F: v} }
func Char(r rune) Value         { return Value{Kind: KindChar, S: string(r)} }
func UnicodeChar(r rune) Value  { return Value{Kind: KindUnicodeChar, S: string(r)} }
func Str(s string) Value        { return Value{Kind: KindString, S: s} }
func Array(elems []Value) Value { return Value{Kind: KindArray, Elems: elems} }

func FloatComplex(re, im float32) Value {
	return Value{Kind: KindFloatComplex, F: float64(re), F2: float64(im)}
}

func DoubleComplex(re, im float64) Value {
	return Value{Kind: KindDoubleComplex, F: re, F2: im}
}

// BitArray packs nbits bits, already MSB-first in packed.
func BitArray(packed []byte, nbits int) Value {
	return Value{Kind: KindBitArray, Bits: packed, I: int64(nbits)}
}

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal compares two values, treating NaN floats as equal to each other so
// that round-trip comparisons are meaningful.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.B == o.B
	case KindByte, KindShort, KindInt, KindLong:
		return v.I == o.I
	case KindFloat, KindDouble:
		return floatEq(v.F, o.F)
	case KindFloatComplex, KindDoubleComplex:
		return floatEq(v.F, o.F) && floatEq(v.F2, o.F2)
	case KindChar, KindUnicodeChar, KindString:
		return v.S == o.S
	case KindBitArray:
		if v.I != o.I || len(v.Bits) != len(o.Bits) {
			return false
		}
		for i := range v.Bits {
			if v.Bits[i] != o.Bits[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// String renders the value the way it appears in a TD cell; null renders as
// the empty token.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindByte, KindShort, KindInt, KindLong:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return formatFloat(v.F, 32)
	case KindDouble:
		return formatFloat(v.F, 64)
	case KindFloatComplex:
		return formatFloat(v.F, 32) + " " + formatFloat(v.F2, 32)
	case KindDoubleComplex:
		return formatFloat(v.F, 64) + " " + formatFloat(v.F2, 64)
	case KindChar, KindUnicodeChar, KindString:
		return v.S
	case KindBitArray:
		b := &strings.Builder{}
		for i := 0; i < int(v.I); i++ {
			if v.Bits[i/8]&(1<<(7-uint(i%8))) != 0 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		return b.String()
	case KindArray:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprintf("Value(kind=%d)", v.Kind)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
