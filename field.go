package votable

// Field declares one table column. Name and Datatype are required; the
// remaining attributes are optional. The null sentinel of integer columns
// lives in Values.Null.
type Field struct {
	ID        string
	Name      string // required
	Datatype  Datatype
	Unit      string
	UCD       string
	UType     string
	Ref       string
	Width     *int
	Precision string
	ArraySize *ArraySize

	Description *Description
	Values      *Values
	Links       []*Link

	Extras Extras
}

// NewField builds a field with the required attributes.
func NewField(name string, dt Datatype) *Field {
	return &Field{Name: name, Datatype: dt}
}

// SetID sets the document-unique identifier.
func (f *Field) SetID(id string) *Field { f.ID = id; return f }

// SetUnit sets the unit attribute.
func (f *Field) SetUnit(u string) *Field { f.Unit = u; return f }

// SetUCD sets the UCD attribute.
func (f *Field) SetUCD(u string) *Field { f.UCD = u; return f }

// SetArraySize attaches a parsed arraysize.
func (f *Field) SetArraySize(a *ArraySize) *Field { f.ArraySize = a; return f }

// SetValues attaches the VALUES block.
func (f *Field) SetValues(v *Values) *Field { f.Values = v; return f }

// NullSentinel returns the declared null sentinel, if any.
func (f *Field) NullSentinel() (string, bool) {
	if f.Values != nil && f.Values.Null != "" {
		return f.Values.Null, true
	}
	return "", false
}

// Param is the PARAM element: a Field carrying a constant value.
type Param struct {
	Field
	Value string // required
}

// NewParam builds a parameter with the required attributes.
func NewParam(name string, dt Datatype, value string) *Param {
	return &Param{Field: Field{Name: name, Datatype: dt}, Value: value}
}
