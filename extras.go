package votable

// Attr is a single XML attribute preserved verbatim.
type Attr struct {
	Name  string
	Value string
}

// Extras retains unknown attributes, in document order, on nodes that
// tolerate extensions. Round-trips re-emit them after the known attributes.
type Extras []Attr

// Get returns the value of the named attribute and whether it is present.
func (e Extras) Get(name string) (string, bool) {
	for _, a := range e {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it when absent.
func (e *Extras) Set(name, value string) {
	for i, a := range *e {
		if a.Name == name {
			(*e)[i].Value = value
			return
		}
	}
	*e = append(*e, Attr{Name: name, Value: value})
}

// Delete removes the named attribute; it is a no-op when absent.
func (e *Extras) Delete(name string) {
	for i, a := range *e {
		if a.Name == name {
			*e = append((*e)[:i], (*e)[i+1:]...)
			return
		}
	}
}
