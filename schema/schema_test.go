package schema_test

import (
	"bytes"
	"testing"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/schema"
)

func mustArraySize(t *testing.T, s string) *votable.ArraySize {
	t.Helper()
	a, err := votable.ParseArraySize(s)
	if err != nil {
		t.Fatalf("arraysize %q: %v", s, err)
	}
	return a
}

func compile(t *testing.T, f *votable.Field) *schema.Schema {
	t.Helper()
	s, err := schema.Compile(f)
	if err != nil {
		t.Fatalf("compile %q: %v", f.Name, err)
	}
	return s
}

func TestFloatNaNRoundTrip(t *testing.T) {
	s := compile(t, votable.NewField("mag", votable.DTFloat))

	v, err := s.DecodeTD("NaN")
	if err != nil {
		t.Fatalf("decode NaN: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("NaN should decode to null, got %v", v)
	}

	var buf bytes.Buffer
	if err := s.EncodeBinary(&buf, v); err != nil {
		t.Fatalf("encode binary: %v", err)
	}
	want := []byte{0x7f, 0xc0, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("binary NaN = % x, want % x", buf.Bytes(), want)
	}

	back, err := s.DecodeBinary(&buf)
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}
	if !back.IsNull() {
		t.Fatalf("binary NaN should decode to null, got %v", back)
	}
}

func TestBinary2MaskLayout(t *testing.T) {
	tbl := votable.NewTable().
		PushField(votable.NewField("id", votable.DTInt)).
		PushField(votable.NewField("mag", votable.DTFloat)).
		PushField(votable.NewField("tag", votable.DTChar).SetArraySize(mustArraySize(t, "4")))
	codec, err := schema.CompileRowCodec(tbl)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	row := []votable.Value{votable.Null(), votable.Float(1.5), votable.Str("abcd")}
	var buf bytes.Buffer
	if err := codec.EncodeBinary2Row(&buf, row); err != nil {
		t.Fatalf("encode: %v", err)
	}
	b := buf.Bytes()
	if b[0] != 0b10000000 {
		t.Fatalf("mask byte = %08b, want 10000000", b[0])
	}
	// mask + int + float + 4 chars
	if len(b) != 1+4+4+4 {
		t.Fatalf("row length = %d, want 13", len(b))
	}
	if !bytes.Equal(b[5:9], []byte{0x3f, 0xc0, 0x00, 0x00}) {
		t.Fatalf("float bytes = % x, want 3f c0 00 00", b[5:9])
	}
	if string(b[9:]) != "abcd" {
		t.Fatalf("char bytes = %q, want abcd", b[9:])
	}

	back, err := codec.DecodeBinary2Row(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range row {
		if !back[i].Equal(row[i]) {
			t.Fatalf("field %d: got %v, want %v", i, back[i], row[i])
		}
	}
}

func TestIntegerNullSentinel(t *testing.T) {
	f := votable.NewField("n", votable.DTShort).
		SetValues(votable.NewValues().SetNull("-99"))
	s := compile(t, f)

	v, err := s.DecodeTD("-99")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("sentinel should decode to null, got %v", v)
	}

	var buf bytes.Buffer
	if err := s.EncodeBinary(&buf, votable.Null()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0xff, 0x9d}) { // -99 big endian
		t.Fatalf("sentinel bytes = % x", buf.Bytes())
	}
	back, err := s.DecodeBinary(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}
	if !back.IsNull() {
		t.Fatalf("sentinel should decode back to null, got %v", back)
	}
}

func TestVariableArrayLengthPrefix(t *testing.T) {
	f := votable.NewField("xs", votable.DTInt).SetArraySize(mustArraySize(t, "*"))
	s := compile(t, f)

	v, err := s.DecodeTD("1 2 3")
	if err != nil {
		t.Fatalf("decode TD: %v", err)
	}
	if len(v.Elems) != 3 {
		t.Fatalf("got %d elems, want 3", len(v.Elems))
	}

	var buf bytes.Buffer
	if err := s.EncodeBinary(&buf, v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// 4-byte count then three 4-byte ints
	if len(buf.Bytes()) != 4+3*4 {
		t.Fatalf("payload length = %d, want 16", len(buf.Bytes()))
	}
	back, err := s.DecodeBinary(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}
	if !back.Equal(v) {
		t.Fatalf("round trip: got %v, want %v", back, v)
	}
}

func TestVariableArrayEmptyIsNotNull(t *testing.T) {
	f := votable.NewField("xs", votable.DTInt).SetArraySize(mustArraySize(t, "*"))
	s := compile(t, f)

	v, err := s.DecodeTD("")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.IsNull() {
		t.Fatalf("empty variable array must not be null")
	}
	if v.Kind != votable.KindArray || len(v.Elems) != 0 {
		t.Fatalf("want empty array, got %v", v)
	}

	b, err := s.DecodeBinary(bytes.NewReader([]byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}
	if b.IsNull() || b.Kind != votable.KindArray {
		t.Fatalf("zero-count binary array must be empty, not null: %v", b)
	}
}

func TestNegativeLengthPrefixRejected(t *testing.T) {
	f := votable.NewField("xs", votable.DTInt).SetArraySize(mustArraySize(t, "*"))
	s := compile(t, f)
	_, err := s.DecodeBinary(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	if err == nil {
		t.Fatalf("negative length prefix must be rejected")
	}
}

// Rows decoded from the three encodings must compare pointwise equal.
func TestRowEqualityAcrossEncodings(t *testing.T) {
	tbl := votable.NewTable().
		PushField(votable.NewField("id", votable.DTInt).
			SetValues(votable.NewValues().SetNull("-1"))).
		PushField(votable.NewField("ra", votable.DTDouble)).
		PushField(votable.NewField("name", votable.DTChar).SetArraySize(mustArraySize(t, "*"))).
		PushField(votable.NewField("flux", votable.DTFloat).SetArraySize(mustArraySize(t, "*"))).
		PushField(votable.NewField("ok", votable.DTBoolean))
	codec, err := schema.CompileRowCodec(tbl)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	rows := [][]votable.Value{
		{votable.Int(7), votable.Double(83.25), votable.Str("Betelgeuse"),
			votable.Array([]votable.Value{votable.Float(1.5), votable.Float(2.5)}),
			votable.Bool(true)},
		{votable.Null(), votable.Null(), votable.Null(),
			votable.Array(nil), votable.Null()},
	}

	for ri, row := range rows {
		tds, err := codec.EncodeTDs(row)
		if err != nil {
			t.Fatalf("row %d: encode TD: %v", ri, err)
		}
		fromTD, err := codec.DecodeTDs(tds)
		if err != nil {
			t.Fatalf("row %d: decode TD: %v", ri, err)
		}

		var bin bytes.Buffer
		if err := codec.EncodeBinaryRow(&bin, row); err != nil {
			t.Fatalf("row %d: encode binary: %v", ri, err)
		}
		fromBin, err := codec.DecodeBinaryRow(bytes.NewReader(bin.Bytes()))
		if err != nil {
			t.Fatalf("row %d: decode binary: %v", ri, err)
		}

		var bin2 bytes.Buffer
		if err := codec.EncodeBinary2Row(&bin2, row); err != nil {
			t.Fatalf("row %d: encode binary2: %v", ri, err)
		}
		fromBin2, err := codec.DecodeBinary2Row(bytes.NewReader(bin2.Bytes()))
		if err != nil {
			t.Fatalf("row %d: decode binary2: %v", ri, err)
		}

		for i := range row {
			if !fromTD[i].Equal(fromBin[i]) {
				t.Fatalf("row %d field %d: TD %v != binary %v", ri, i, fromTD[i], fromBin[i])
			}
			if !fromTD[i].Equal(fromBin2[i]) {
				t.Fatalf("row %d field %d: TD %v != binary2 %v", ri, i, fromTD[i], fromBin2[i])
			}
		}
	}
}
