package votable

// Min bounds a VALUES domain from below.
type Min struct {
	Value     string // required
	Inclusive bool   // defaults to true
	Extras    Extras
}

// Max bounds a VALUES domain from above.
type Max struct {
	Value     string // required
	Inclusive bool
	Extras    Extras
}

// Option is one enumerated VALUES option; options may nest.
type Option struct {
	Name    string
	Value   string // required
	Options []*Option
	Extras  Extras
}

// Values is the VALUES element of a FIELD or PARAM. Its null attribute is
// the declared null sentinel for integer datatypes.
type Values struct {
	ID      string
	Type    string // "legal" or "actual"
	Null    string
	Ref     string
	Min     *Min
	Max     *Max
	Options []*Option
	Extras  Extras
}

// NewValues returns an empty VALUES block.
func NewValues() *Values { return &Values{} }

// SetNull sets the null sentinel and returns the receiver for chaining.
func (v *Values) SetNull(null string) *Values {
	v.Null = null
	return v
}
