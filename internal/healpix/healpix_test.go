package healpix_test

import (
	"testing"

	"github.com/astrogo/votable/internal/healpix"
)

func TestNHash(t *testing.T) {
	for depth, want := range map[uint8]uint64{
		0: 12,
		1: 48,
		2: 192,
		8: 12 << 16,
	} {
		if got := healpix.NHash(depth); got != want {
			t.Fatalf("NHash(%d) = %d, want %d", depth, got, want)
		}
	}
}

func TestBaseCells(t *testing.T) {
	cases := []struct {
		lon, lat float64
		want     uint64
	}{
		{0, 0, 4},    // equator, first equatorial face
		{0, 90, 0},   // north pole, first polar face
		{0, -90, 8},  // south pole, first southern face
		{90, 0, 5},   // equator, next face east
		{180, 0, 6},
		{270, 0, 7},
	}
	for _, c := range cases {
		if got := healpix.HashDeg(0, c.lon, c.lat); got != c.want {
			t.Fatalf("HashDeg(0, %g, %g) = %d, want %d", c.lon, c.lat, got, c.want)
		}
	}
}

var samplePoints = [][2]float64{
	{0.1, 0.2}, {12.3, 37.5}, {83.633, 22.0145},
	{123.456, -54.321}, {200.5, 71.8}, {299.9, -12.0},
	{345.0, 88.5}, {17.2, -88.9}, {180.0, 1.5}, {266.4, -28.94},
}

func TestHashInRange(t *testing.T) {
	for depth := uint8(0); depth <= 12; depth++ {
		n := healpix.NHash(depth)
		for _, p := range samplePoints {
			if h := healpix.HashDeg(depth, p[0], p[1]); h >= n {
				t.Fatalf("HashDeg(%d, %g, %g) = %d, beyond %d cells", depth, p[0], p[1], h, n)
			}
		}
	}
}

// A cell at depth d+1 must sit inside its parent at depth d.
func TestHashHierarchy(t *testing.T) {
	for _, p := range samplePoints {
		for depth := uint8(0); depth < 12; depth++ {
			parent := healpix.HashDeg(depth, p[0], p[1])
			child := healpix.HashDeg(depth+1, p[0], p[1])
			if child>>2 != parent {
				t.Fatalf("(%g, %g): cell %d at depth %d not inside cell %d at depth %d",
					p[0], p[1], child, depth+1, parent, depth)
			}
		}
	}
}

func TestHashLongitudeWraps(t *testing.T) {
	for _, p := range samplePoints {
		a := healpix.HashDeg(8, p[0], p[1])
		b := healpix.HashDeg(8, p[0]+360, p[1])
		if a != b {
			t.Fatalf("(%g, %g): %d != %d after wrapping", p[0], p[1], a, b)
		}
	}
}

func TestCellRange(t *testing.T) {
	if lo, hi := healpix.CellRange(2, 1, 3); lo != 12 || hi != 16 {
		t.Fatalf("CellRange(2, 1, 3) = [%d, %d)", lo, hi)
	}
	if lo, hi := healpix.CellRange(5, 5, 7); lo != 7 || hi != 8 {
		t.Fatalf("CellRange(5, 5, 7) = [%d, %d)", lo, hi)
	}
	if lo, hi := healpix.CellRange(3, 0, 11); lo != 11<<6 || hi != 12<<6 {
		t.Fatalf("CellRange(3, 0, 11) = [%d, %d)", lo, hi)
	}
}
