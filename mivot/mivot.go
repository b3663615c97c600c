// Package mivot implements the VODML/MIVOT annotation sub-tree: the block
// mapping VOTable columns to data-model instances. Element shapes are
// context sensitive (the same tag parses differently under GLOBALS,
// TEMPLATES, INSTANCE and COLLECTION); all rules are enforced at parse time
// and preserved at write time.
package mivot

// AllowLegacyGlobalsRole, when set, accepts (and drops) a dmrole on an
// INSTANCE nested in a COLLECTION directly under GLOBALS. Early producers
// emitted one; the current MIVOT note forbids it, which is the default
// behavior here.
var AllowLegacyGlobalsRole = false

// Vodml is the VODML root: REPORT?, MODEL*, GLOBALS?, TEMPLATES*.
type Vodml struct {
	Report    *Report
	Models    []*Model
	Globals   *Globals
	Templates []*Templates
}

// Report carries the annotation process status and a free-text message.
type Report struct {
	Status  string // "OK" or "FAILED", required
	Content string
}

// Model declares one referenced data model.
type Model struct {
	Name string // required
	URL  string
}

// GlobalsElem is a child of GLOBALS: an Instance or a Collection, both
// without dmrole.
type GlobalsElem interface{ isGlobalsElem() }

func (*Instance) isGlobalsElem()   {}
func (*Collection) isGlobalsElem() {}

// Globals holds table-independent instances.
type Globals struct {
	Elems []GlobalsElem
}

// Templates annotates the rows of one table.
type Templates struct {
	TableRef  string
	Wheres    []*Where // primarykey+value form
	Instances []*Instance
}

// InstanceElem is an ordered child of an INSTANCE.
type InstanceElem interface{ isInstanceElem() }

func (*PrimaryKey) isInstanceElem() {}
func (*Attribute) isInstanceElem()  {}
func (*Instance) isInstanceElem()   {}
func (*Reference) isInstanceElem()  {}
func (*Collection) isInstanceElem() {}

// Instance maps a data-model type. Dmrole is set iff the instance is
// nested in another instance.
type Instance struct {
	Dmid   string
	Dmrole string
	Dmtype string // required
	Elems  []InstanceElem
}

// CollectionElem is a child of a COLLECTION. Children must be homogeneous
// in kind: all instances, all references, all sub-collections, all
// attributes, or exactly one join.
type CollectionElem interface{ isCollectionElem() }

func (*Attribute) isCollectionElem()  {}
func (*Instance) isCollectionElem()   {}
func (*Reference) isCollectionElem()  {}
func (*Collection) isCollectionElem() {}
func (*Join) isCollectionElem()       {}

// Collection groups homogeneous elements. Dmrole is set iff the collection
// is a child of an instance.
type Collection struct {
	Dmid   string
	Dmrole string
	Elems  []CollectionElem
}

// Attribute maps a column or a literal onto a data-model role. Exactly one
// of Value/Ref is set in the instance shape; the collection shape carries
// no dmrole; the generic shape requires Value.
type Attribute struct {
	Dmrole     string
	Dmtype     string // required
	Value      *string
	Ref        *string
	ArrayIndex *int // non-negative, only with Ref
	Unit       string
}

// Reference points at an instance: static via Dmref, dynamic via SourceRef
// plus one or more foreign keys. Exactly one of the two attributes is set.
type Reference struct {
	Dmrole      string
	Dmref       string
	SourceRef   string
	ForeignKeys []*ForeignKey
}

// Join populates a collection from another template's rows. It requires
// Dmref or SourceRef or both.
type Join struct {
	Dmref     string
	SourceRef string
	Wheres    []*Where // foreignkey+primarykey form
}

// Where is a row filter. In a join it carries ForeignKey+PrimaryKey; under
// TEMPLATES it carries PrimaryKey+Value.
type Where struct {
	PrimaryKey string
	ForeignKey string
	Value      string
}

// PrimaryKey identifies an instance: static (Dmtype+Value) under GLOBALS,
// dynamic (Dmtype+Ref) under TEMPLATES.
type PrimaryKey struct {
	Dmtype string // required
	Value  string
	Ref    string
}

// ForeignKey names the column holding the key of a dynamic reference.
type ForeignKey struct {
	Ref string // required
}
