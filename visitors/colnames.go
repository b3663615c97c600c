package visitors

import (
	"fmt"
	"io"
	"strings"

	votable "github.com/astrogo/votable"
)

// ColnamesPrinter writes, for each table, its FIELD names on one line
// joined by a separator. A name containing the separator is wrapped in
// double quotes.
type ColnamesPrinter struct {
	votable.BaseVisitor
	w        io.Writer
	sep      string
	firstCol bool
}

func NewColnamesPrinter(w io.Writer, sep string) *ColnamesPrinter {
	return &ColnamesPrinter{w: w, sep: sep, firstCol: true}
}

// Print walks the document and writes one line of column names per table.
func (p *ColnamesPrinter) Print(vot *votable.VOTable) error {
	return votable.Walk(p, vot)
}

func (p *ColnamesPrinter) LeaveTable(*votable.Table) error {
	if _, err := fmt.Fprintln(p.w); err != nil {
		return err
	}
	p.firstCol = true
	return nil
}

func (p *ColnamesPrinter) VisitField(f *votable.Field) error {
	name := f.Name
	if strings.Contains(name, p.sep) {
		name = `"` + name + `"`
	}
	var err error
	if p.firstCol {
		_, err = fmt.Fprint(p.w, name)
	} else {
		_, err = fmt.Fprint(p.w, p.sep, name)
	}
	p.firstCol = false
	return err
}
