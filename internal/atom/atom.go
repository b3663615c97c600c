// Package atom encodes and decodes the scalar atoms of the IVOA datatypes
// in their textual and big-endian binary representations. The row engine
// composes these into per-field codecs; nothing here knows about arraysize
// or null sentinels.
package atom

import (
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/astrogo/votable/verr"
)

// ---- boolean ----

// ParseBool decodes the IVOA logical vocabulary. The empty token, '?',
// space and NUL denote null.
func ParseBool(tok string) (val, null bool, err error) {
	switch tok {
	case "", "?", " ", "\x00":
		return false, true, nil
	case "1", "T", "t", "true":
		return true, false, nil
	case "0", "F", "f", "false":
		return false, false, nil
	}
	return false, false, verr.ValueGrammar("TD", "", tok, nil)
}

// BoolByte returns the single-byte binary form of a logical value.
func BoolByte(val, null bool) byte {
	switch {
	case null:
		return '?'
	case val:
		return 'T'
	default:
		return 'F'
	}
}

// DecodeBoolByte interprets one binary logical byte.
func DecodeBoolByte(b byte) (val, null bool, err error) {
	switch b {
	case '?', ' ', 0:
		return false, true, nil
	case '1', 'T', 't':
		return true, false, nil
	case '0', 'F', 'f':
		return false, false, nil
	}
	return false, false, verr.Customf("invalid logical byte 0x%02X", b)
}

// ---- integers ----

// ParseInt parses a signed decimal token into an integer of the given bit
// width (8 means unsignedByte, range 0..255).
func ParseInt(tok string, bits int) (int64, error) {
	if bits == 8 {
		u, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return 0, verr.ValueGrammar("TD", "", tok, err)
		}
		return int64(u), nil
	}
	v, err := strconv.ParseInt(tok, 10, bits)
	if err != nil {
		return 0, verr.ValueGrammar("TD", "", tok, err)
	}
	return v, nil
}

// ---- floats ----

// ParseFloat parses a float token, accepting the IVOA spellings of the
// special values.
func ParseFloat(tok string, bits int) (float64, error) {
	switch tok {
	case "NaN", "nan":
		return math.NaN(), nil
	case "+Inf", "Inf", "+inf", "inf":
		return math.Inf(1), nil
	case "-Inf", "-inf":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(tok, bits)
	if err != nil {
		return 0, verr.ValueGrammar("TD", "", tok, err)
	}
	return f, nil
}

// FormatFloat renders a float the way it appears in a TD cell.
func FormatFloat(f float64, bits int) string {
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

// ---- binary scalar helpers (big endian) ----

func ReadU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, verr.IO(err)
	}
	return b[0], nil
}

func ReadI16(r io.Reader) (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, verr.IO(err)
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

func ReadI32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, verr.IO(err)
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func ReadI64(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, verr.IO(err)
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func ReadF32(r io.Reader) (float32, error) {
	u, err := ReadI32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(u)), nil
}

func ReadF64(r io.Reader) (float64, error) {
	u, err := ReadI64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(u)), nil
}

func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return verr.IO(err)
}

func WriteI16(w io.Writer, v int16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	_, err := w.Write(b[:])
	return verr.IO(err)
}

func WriteI32(w io.Writer, v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	_, err := w.Write(b[:])
	return verr.IO(err)
}

func WriteI64(w io.Writer, v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	_, err := w.Write(b[:])
	return verr.IO(err)
}

func WriteF32(w io.Writer, v float32) error {
	return WriteI32(w, int32(math.Float32bits(v)))
}

func WriteF64(w io.Writer, v float64) error {
	return WriteI64(w, int64(math.Float64bits(v)))
}

// ---- strings ----

// ReadASCII reads n bytes and trims trailing NUL padding.
func ReadASCII(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", verr.IO(err)
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// WriteASCII writes s NUL-padded or truncated to exactly n bytes.
func WriteASCII(w io.Writer, s string, n int) error {
	buf := make([]byte, n)
	copy(buf, s)
	_, err := w.Write(buf)
	return verr.IO(err)
}

// ReadUCS2 reads n UTF-16BE code units and trims trailing NULs.
func ReadUCS2(r io.Reader, n int) (string, error) {
	buf := make([]byte, 2*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", verr.IO(err)
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(buf[2*i:])
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units)), nil
}

// WriteUCS2 writes s as UTF-16BE, NUL-padded or truncated to exactly n code
// units.
func WriteUCS2(w io.Writer, s string, n int) error {
	units := utf16.Encode([]rune(s))
	if len(units) > n {
		units = units[:n]
	}
	buf := make([]byte, 2*n)
	for i, u := range units {
		binary.BigEndian.PutUint16(buf[2*i:], u)
	}
	_, err := w.Write(buf)
	return verr.IO(err)
}

// ---- bits ----

// PackBits packs '0'/'1' tokens into an MSB-first byte slice.
func PackBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// UnpackBits expands n MSB-first packed bits.
func UnpackBits(packed []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = packed[i/8]&(1<<(7-uint(i%8))) != 0
	}
	return out
}

// BitBytes is the byte length of n packed bits.
func BitBytes(n int) int { return (n + 7) / 8 }
