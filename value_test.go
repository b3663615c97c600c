package votable_test

import (
	"math"
	"testing"

	votable "github.com/astrogo/votable"
)

func TestValueEqualTreatsNaNAsEqual(t *testing.T) {
	a := votable.Double(math.NaN())
	b := votable.Double(math.NaN())
	if !a.Equal(b) {
		t.Fatalf("NaN doubles must compare equal for round-trip checks")
	}
	if a.Equal(votable.Double(1)) {
		t.Fatalf("NaN must not equal a finite value")
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    votable.Value
		want string
	}{
		{votable.Null(), ""},
		{votable.Bool(true), "true"},
		{votable.Int(-7), "-7"},
		{votable.Str("abc"), "abc"},
		{votable.Double(math.NaN()), "NaN"},
		{votable.Array([]votable.Value{votable.Int(1), votable.Int(2)}), "1 2"},
		{votable.BitArray([]byte{0b10100000}, 3), "101"},
		{votable.DoubleComplex(1, -2), "1 -2"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestArrayEqual(t *testing.T) {
	a := votable.Array([]votable.Value{votable.Float(1.5), votable.Null()})
	b := votable.Array([]votable.Value{votable.Float(1.5), votable.Null()})
	if !a.Equal(b) {
		t.Fatalf("equal arrays must compare equal")
	}
	c := votable.Array([]votable.Value{votable.Float(1.5)})
	if a.Equal(c) {
		t.Fatalf("arrays of different length must differ")
	}
}
