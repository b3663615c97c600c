package votable_test

import (
	"testing"

	votable "github.com/astrogo/votable"
)

func TestParseArraySize(t *testing.T) {
	cases := []struct {
		in       string
		dims     []int
		variable bool
		max      int
	}{
		{"4", []int{4}, false, -1},
		{"4x2", []int{4, 2}, false, -1},
		{"*", nil, true, -1},
		{"8*", nil, true, 8},
		{"4x5x*", []int{4, 5}, true, -1},
	}
	for _, c := range cases {
		a, err := votable.ParseArraySize(c.in)
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if a.Variable != c.variable || a.Max != c.max || len(a.Dims) != len(c.dims) {
			t.Fatalf("%q: got %+v", c.in, a)
		}
		for i, d := range c.dims {
			if a.Dims[i] != d {
				t.Fatalf("%q: dim %d = %d, want %d", c.in, i, a.Dims[i], d)
			}
		}
		if a.String() != c.in {
			t.Fatalf("%q: round trip gave %q", c.in, a.String())
		}
	}
}

func TestParseArraySizeRejects(t *testing.T) {
	for _, in := range []string{"", "x", "4x", "-3", "a*", "4xb"} {
		if _, err := votable.ParseArraySize(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestFixedCounts(t *testing.T) {
	a, err := votable.ParseArraySize("3x4")
	if err != nil {
		t.Fatal(err)
	}
	if a.FixedCount() != 12 || a.FixedBlock() != 12 {
		t.Fatalf("3x4: count=%d block=%d", a.FixedCount(), a.FixedBlock())
	}
	v, err := votable.ParseArraySize("3x*")
	if err != nil {
		t.Fatal(err)
	}
	if v.FixedCount() != -1 || v.FixedBlock() != 3 {
		t.Fatalf("3x*: count=%d block=%d", v.FixedCount(), v.FixedBlock())
	}
}
