package votable

// ResourceElem is a metadata child of a RESOURCE preceding its tables:
// a CooSys, a TimeSys, a Group, or a Param.
type ResourceElem interface{ isResourceElem() }

func (*CooSys) isResourceElem()  {}
func (*TimeSys) isResourceElem() {}
func (*Group) isResourceElem()   {}
func (*Param) isResourceElem()   {}

// ResourceOrTable is a structural child of a RESOURCE, kept in document
// order: a nested Resource or a Table.
type ResourceOrTable interface{ isResourceOrTable() }

func (*Resource) isResourceOrTable() {}
func (*Table) isResourceOrTable()    {}

// Resource is the RESOURCE element; resources nest recursively.
type Resource struct {
	ID    string
	Name  string
	Type  string // "results" or "meta"
	UType string

	Description *Description
	Infos       []*Info
	Elems       []ResourceElem
	Links       []*Link
	Subs        []ResourceOrTable
	PostInfos   []*Info

	Extras Extras
}

// NewResource builds an empty resource.
func NewResource() *Resource { return &Resource{} }

// PushTable appends a table to the resource.
func (r *Resource) PushTable(t *Table) *Resource {
	r.Subs = append(r.Subs, t)
	return r
}

// Tables returns the directly nested tables in document order.
func (r *Resource) Tables() []*Table {
	var ts []*Table
	for _, s := range r.Subs {
		if t, ok := s.(*Table); ok {
			ts = append(ts, t)
		}
	}
	return ts
}
