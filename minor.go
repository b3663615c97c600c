package votable

// Description is the free-text DESCRIPTION element.
type Description struct {
	Content string
}

// Info is the INFO element: a named value with optional free-text content.
type Info struct {
	ID      string
	Name    string // required
	Value   string // required
	Content string
	Extras  Extras
}

// Link is the LINK element.
type Link struct {
	ID          string
	ContentRole string
	ContentType string
	Title       string
	Value       string
	Href        string
	Actuate     string
	Content     string
	Extras      Extras
}

// FieldRef is the FIELDref element, only legal inside a table GROUP or a
// COOSYS.
type FieldRef struct {
	Ref    string // required
	UCD    string
	UType  string
	Extras Extras
}

// ParamRef is the PARAMref element.
type ParamRef struct {
	Ref    string // required
	UCD    string
	UType  string
	Extras Extras
}
