package votable

// CooSysElem is a child of COOSYS (VOTable 1.5 allows FIELDref/PARAMref).
type CooSysElem interface{ isCooSysElem() }

func (*FieldRef) isCooSysElem() {}
func (*ParamRef) isCooSysElem() {}

// CooSys declares a celestial coordinate system.
type CooSys struct {
	ID      string // required
	Equinox string
	Epoch   string
	System  string
	Elems   []CooSysElem
	Extras  Extras
}

// TimeSys declares a time coordinate system.
type TimeSys struct {
	ID          string // required
	TimeOrigin  string
	TimeScale   string // required
	RefPosition string // required
	Extras      Extras
}

// DefinitionsElem is a child of the deprecated DEFINITIONS element.
type DefinitionsElem interface{ isDefinitionsElem() }

func (*CooSys) isDefinitionsElem() {}
func (*Param) isDefinitionsElem()  {}

// Definitions is the VOTable 1.0 DEFINITIONS element, kept for round-trip
// fidelity with legacy documents.
type Definitions struct {
	Elems []DefinitionsElem
}
