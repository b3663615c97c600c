package votable

import (
	"strconv"
	"strings"

	"github.com/astrogo/votable/verr"
)

// ArraySize is the parsed form of the FIELD arraysize grammar
// `[0-9]+(x[0-9]+)*(\*)?` plus the bare variable form `*` and the bounded
// variable form `N*`. The leftmost dimension varies fastest; an unknown
// dimension, when present, must be the last.
type ArraySize struct {
	// Dims holds the fixed dimensions, leftmost first. Empty for the bare
	// `*` and `N*` forms.
	Dims []int
	// Variable is set when the last dimension is unbounded (`*` suffix).
	Variable bool
	// Max bounds the variable dimension for the `N*` form, -1 when
	// unbounded or not variable.
	Max int
}

// ParseArraySize parses the arraysize attribute value.
func ParseArraySize(s string) (*ArraySize, error) {
	orig := s
	a := &ArraySize{Max: -1}
	if s == "*" {
		a.Variable = true
		return a, nil
	}
	if strings.HasSuffix(s, "*") {
		a.Variable = true
		s = strings.TrimSuffix(s, "*")
		// `N*`: a single bounded variable dimension.
		if !strings.Contains(s, "x") {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return nil, verr.ValueGrammar("FIELD", "arraysize", orig, err)
			}
			a.Max = n
			return a, nil
		}
		// Multi-dim with a trailing unknown dimension: `N1xN2x*` arrives
		// here as "N1xN2x".
		s = strings.TrimSuffix(s, "x")
	}
	for _, tok := range strings.Split(s, "x") {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			return nil, verr.ValueGrammar("FIELD", "arraysize", orig, err)
		}
		a.Dims = append(a.Dims, n)
	}
	return a, nil
}

// String renders the arraysize back to its attribute form.
func (a *ArraySize) String() string {
	if a == nil {
		return ""
	}
	b := &strings.Builder{}
	for i, d := range a.Dims {
		if i > 0 {
			b.WriteByte('x')
		}
		b.WriteString(strconv.Itoa(d))
	}
	if a.Variable {
		if a.Max >= 0 {
			b.WriteString(strconv.Itoa(a.Max))
		} else if len(a.Dims) > 0 {
			b.WriteByte('x')
		}
		b.WriteByte('*')
	}
	return b.String()
}

// FixedCount returns the total number of atoms for a fully fixed arraysize,
// or -1 when a variable dimension is present.
func (a *ArraySize) FixedCount() int {
	if a == nil {
		return 1
	}
	if a.Variable {
		return -1
	}
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// FixedBlock returns the product of the fixed dimensions. For a variable
// arraysize this is the atom count of one slice of the unknown dimension.
func (a *ArraySize) FixedBlock() int {
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}
