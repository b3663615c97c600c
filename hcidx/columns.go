package hcidx

import (
	"strings"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/verr"
)

// PositionalColumns resolves the longitude and latitude column indexes of
// a table. An explicit name wins; otherwise the first column carrying the
// main equatorial UCD, then the plain UCD, then a name prefix match. The
// chosen column must hold float or double values in decimal degrees.
func PositionalColumns(fields []*votable.Field, lonName, latName string) (ilon, ilat int, err error) {
	ilon, err = lookupColumn(fields, lonName, "pos.eq.ra;meta.main", "pos.eq.ra", "RA")
	if err != nil {
		return 0, 0, err
	}
	ilat, err = lookupColumn(fields, latName, "pos.eq.dec;meta.main", "pos.eq.de", "DE")
	if err != nil {
		return 0, 0, err
	}
	return ilon, ilat, nil
}

func lookupColumn(fields []*votable.Field, name, mainUCD, ucd, prefix string) (int, error) {
	if name != "" {
		for i, f := range fields {
			if f.Name == name {
				return i, requireFloat(f)
			}
		}
		return 0, verr.Customf("column %q not found", name)
	}
	for _, target := range []string{mainUCD, ucd} {
		for i, f := range fields {
			if f.UCD == target {
				return i, requireFloat(f)
			}
		}
	}
	for i, f := range fields {
		if isFloat(f) && strings.HasPrefix(strings.ToLower(f.Name), strings.ToLower(prefix)) {
			return i, nil
		}
	}
	return 0, verr.Customf("no float column starting with %q found", prefix)
}

func isFloat(f *votable.Field) bool {
	return f.Datatype == votable.DTFloat || f.Datatype == votable.DTDouble
}

func requireFloat(f *votable.Field) error {
	if !isFloat(f) {
		return verr.Customf("column %q is not a float or a double", f.Name)
	}
	return nil
}
