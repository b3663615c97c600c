package votable

import (
	"github.com/astrogo/votable/verr"
)

// Datatype enumerates the IVOA primitive datatypes a FIELD or PARAM may
// declare. The zero value is invalid.
type Datatype uint8

const (
	DTUnknown Datatype = iota
	DTBoolean
	DTBit
	DTUnsignedByte
	DTShort
	DTInt
	DTLong
	DTChar
	DTUnicodeChar
	DTFloat
	DTDouble
	DTFloatComplex
	DTDoubleComplex
)

var datatypeNames = map[Datatype]string{
	DTBoolean:       "boolean",
	DTBit:           "bit",
	DTUnsignedByte:  "unsignedByte",
	DTShort:         "short",
	DTInt:           "int",
	DTLong:          "long",
	DTChar:          "char",
	DTUnicodeChar:   "unicodeChar",
	DTFloat:         "float",
	DTDouble:        "double",
	DTFloatComplex:  "floatComplex",
	DTDoubleComplex: "doubleComplex",
}

var datatypeByName = func() map[string]Datatype {
	m := make(map[string]Datatype, len(datatypeNames))
	for dt, name := range datatypeNames {
		m[name] = dt
	}
	return m
}()

// ParseDatatype maps the IVOA datatype vocabulary to a Datatype.
func ParseDatatype(s string) (Datatype, error) {
	if dt, ok := datatypeByName[s]; ok {
		return dt, nil
	}
	return DTUnknown, verr.ValueGrammar("FIELD", "datatype", s, nil)
}

func (dt Datatype) String() string {
	if s, ok := datatypeNames[dt]; ok {
		return s
	}
	return "unknown"
}

// IsInteger reports whether the datatype admits a declared null sentinel.
func (dt Datatype) IsInteger() bool {
	switch dt {
	case DTUnsignedByte, DTShort, DTInt, DTLong:
		return true
	}
	return false
}

// IsFloat reports whether the datatype uses IEEE NaN as its null value.
func (dt Datatype) IsFloat() bool {
	switch dt {
	case DTFloat, DTDouble, DTFloatComplex, DTDoubleComplex:
		return true
	}
	return false
}

// IsChar reports whether arraysize on this datatype denotes a string length
// rather than a numeric array.
func (dt Datatype) IsChar() bool {
	return dt == DTChar || dt == DTUnicodeChar
}

// BinaryWidth returns the number of bytes one atom of this datatype occupies
// in the BINARY serialization, or -1 for bit (packed, not byte-aligned).
func (dt Datatype) BinaryWidth() int {
	switch dt {
	case DTBoolean, DTUnsignedByte, DTChar:
		return 1
	case DTShort, DTUnicodeChar:
		return 2
	case DTInt, DTFloat:
		return 4
	case DTLong, DTDouble, DTFloatComplex:
		return 8
	case DTDoubleComplex:
		return 16
	case DTBit:
		return -1
	}
	return -1
}
