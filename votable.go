package votable

import (
	"github.com/astrogo/votable/mivot"
)

// VOTableElem is a preamble child of the root element: a CooSys, TimeSys,
// Info, Param or Group appearing before the first RESOURCE.
type VOTableElem interface{ isVOTableElem() }

func (*CooSys) isVOTableElem()  {}
func (*TimeSys) isVOTableElem() {}
func (*Info) isVOTableElem()    {}
func (*Param) isVOTableElem()   {}
func (*Group) isVOTableElem()   {}

// VOTable is the document root. Exactly one per document.
type VOTable struct {
	ID      string
	Version string

	Description *Description
	Definitions *Definitions
	Elems       []VOTableElem
	Vodml       *mivot.Vodml
	Resources   []*Resource
	PostInfos   []*Info

	// Extras keeps xmlns declarations and any extension attributes.
	Extras Extras
}

// New builds an empty document with the given version ("1.4" typically).
func New(version string) *VOTable {
	return &VOTable{Version: version}
}

// PushResource appends a resource to the document.
func (v *VOTable) PushResource(r *Resource) *VOTable {
	v.Resources = append(v.Resources, r)
	return v
}

// FirstTable returns the first table of the document in depth-first
// document order, or nil.
func (v *VOTable) FirstTable() *Table {
	for _, r := range v.Resources {
		if t := firstTable(r); t != nil {
			return t
		}
	}
	return nil
}

func firstTable(r *Resource) *Table {
	for _, s := range r.Subs {
		switch x := s.(type) {
		case *Table:
			return x
		case *Resource:
			if t := firstTable(x); t != nil {
				return t
			}
		}
	}
	return nil
}

// Tables returns every table of the document in depth-first document order.
func (v *VOTable) Tables() []*Table {
	var out []*Table
	var rec func(r *Resource)
	rec = func(r *Resource) {
		for _, s := range r.Subs {
			switch x := s.(type) {
			case *Table:
				out = append(out, x)
			case *Resource:
				rec(x)
			}
		}
	}
	for _, r := range v.Resources {
		rec(r)
	}
	return out
}
