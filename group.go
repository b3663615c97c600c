package votable

// GroupElem is a child of a resource- or document-level GROUP: a ParamRef,
// a Param, or a nested Group.
type GroupElem interface{ isGroupElem() }

func (*ParamRef) isGroupElem() {}
func (*Param) isGroupElem()    {}
func (*Group) isGroupElem()    {}

// Group is the GROUP element outside tables; it cannot reference fields.
type Group struct {
	ID          string
	Name        string
	Ref         string
	UCD         string
	UType       string
	Description *Description
	Elems       []GroupElem
	Extras      Extras
}

// TableGroupElem is a child of a TABLE-level GROUP: additionally FieldRef.
type TableGroupElem interface{ isTableGroupElem() }

func (*FieldRef) isTableGroupElem()   {}
func (*ParamRef) isTableGroupElem()   {}
func (*Param) isTableGroupElem()      {}
func (*TableGroup) isTableGroupElem() {}

// TableGroup is the GROUP element inside a TABLE; it may reference fields.
type TableGroup struct {
	ID          string
	Name        string
	Ref         string
	UCD         string
	UType       string
	Description *Description
	Elems       []TableGroupElem
	Extras      Extras
}
