package votable

// TableElem is an ordered declaration inside a TABLE before its DATA block:
// a Field, a Param, or a TableGroup. Field order is positional; once DATA
// starts no further declaration is permitted.
type TableElem interface{ isTableElem() }

func (*Field) isTableElem()      {}
func (*Param) isTableElem()      {}
func (*TableGroup) isTableElem() {}

// Table is the TABLE element.
type Table struct {
	ID    string
	Name  string
	UCD   string
	UType string
	Ref   string
	NRows string // kept textual; only informative per the standard

	Description *Description
	Elems       []TableElem
	Links       []*Link
	Data        *Data
	PostInfos   []*Info

	Extras Extras
}

// NewTable builds an empty table.
func NewTable() *Table { return &Table{} }

// SetName sets the table name and returns the receiver for chaining.
func (t *Table) SetName(name string) *Table { t.Name = name; return t }

// PushField appends a column declaration.
func (t *Table) PushField(f *Field) *Table {
	t.Elems = append(t.Elems, f)
	return t
}

// Fields returns the column declarations in positional order.
func (t *Table) Fields() []*Field {
	var fields []*Field
	for _, e := range t.Elems {
		if f, ok := e.(*Field); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// FieldByName returns the first field with the given name.
func (t *Table) FieldByName(name string) *Field {
	for _, f := range t.Fields() {
		if f.Name == name {
			return f
		}
	}
	return nil
}
