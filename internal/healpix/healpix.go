// Package healpix computes nested-scheme cell hashes on the HEALPix
// sphere tessellation. Only the pieces the cumulative index needs are
// implemented: lon/lat to cell number at a given depth, cell counts, and
// depth-to-depth cell range expansion.
package healpix

import "math"

// MaxDepth is the deepest supported tessellation: cell numbers fit a
// uint64 with 4 bits of face and 2*depth bits of in-face position.
const MaxDepth = 29

// NHash returns the number of cells at the given depth, 12*4^depth.
func NHash(depth uint8) uint64 { return 12 << (2 * uint(depth)) }

// Hash returns the nested-scheme cell number of the direction given by
// lon and lat in radians. Lat must be in [-pi/2, pi/2]; lon is taken
// modulo 2*pi.
func Hash(depth uint8, lon, lat float64) uint64 {
	nside := uint64(1) << depth
	z := math.Sin(lat)
	za := math.Abs(z)
	tt := math.Mod(lon*2/math.Pi, 4) // longitude in [0,4)
	if tt < 0 {
		tt += 4
	}
	var face, ix, iy uint64
	if za <= 2.0/3.0 {
		// equatorial region: project onto the two diagonals
		t1 := float64(nside) * (0.5 + tt)
		t2 := float64(nside) * z * 0.75
		jp := uint64(t1 - t2)
		jm := uint64(t1 + t2)
		ifp := jp >> depth
		ifm := jm >> depth
		switch {
		case ifp == ifm:
			face = ifp&3 + 4
		case ifp < ifm:
			face = ifp & 3
		default:
			face = ifm&3 + 8
		}
		ix = jm & (nside - 1)
		iy = nside - 1 - jp&(nside-1)
	} else {
		// polar caps
		ntt := uint64(tt)
		if ntt >= 4 {
			ntt = 3
		}
		tp := tt - float64(ntt)
		tmp := float64(nside) * math.Sqrt(3*(1-za))
		jp := uint64(tp * tmp)
		jm := uint64((1 - tp) * tmp)
		if jp >= nside {
			jp = nside - 1
		}
		if jm >= nside {
			jm = nside - 1
		}
		if z >= 0 {
			face = ntt
			ix = nside - 1 - jm
			iy = nside - 1 - jp
		} else {
			face = ntt + 8
			ix = jp
			iy = jm
		}
	}
	return face*nside*nside + interleave(ix, iy)
}

// HashDeg is Hash with coordinates in decimal degrees.
func HashDeg(depth uint8, lonDeg, latDeg float64) uint64 {
	const rad = math.Pi / 180
	return Hash(depth, lonDeg*rad, latDeg*rad)
}

// CellRange expands a cell at queryDepth into the half-open range of
// cells it covers at the deeper indexDepth.
func CellRange(indexDepth, queryDepth uint8, ipix uint64) (lo, hi uint64) {
	shift := 2 * uint(indexDepth-queryDepth)
	return ipix << shift, (ipix + 1) << shift
}

// interleave places the bits of ix on even positions and the bits of iy
// on odd positions.
func interleave(ix, iy uint64) uint64 {
	return spread(ix) | spread(iy)<<1
}

func spread(v uint64) uint64 {
	v &= 0xffffffff
	v = (v | v<<16) & 0x0000ffff0000ffff
	v = (v | v<<8) & 0x00ff00ff00ff00ff
	v = (v | v<<4) & 0x0f0f0f0f0f0f0f0f
	v = (v | v<<2) & 0x3333333333333333
	v = (v | v<<1) & 0x5555555555555555
	return v
}
