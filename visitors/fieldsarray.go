package visitors

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	votable "github.com/astrogo/votable"
)

// One column of the field attribute array.
type arrayCol struct {
	label string
	width int
	cells []string
}

func newArrayCol(label string) *arrayCol {
	return &arrayCol{label: label, width: len(label)}
}

func (c *arrayCol) push(s string) {
	if len(s) > c.width {
		c.width = len(s)
	}
	c.cells = append(c.cells, s)
}

func (c *arrayCol) render(s string, aligned bool) string {
	if !aligned || len(s) >= c.width {
		return s
	}
	return s + strings.Repeat(" ", c.width-len(s))
}

// FieldArrayPrinter writes, per table, one row per FIELD with its main
// attributes in columns: index, ID, name, datatype, arraysize, width,
// precision, unit, ucd, null, min, max, link and description.
type FieldArrayPrinter struct {
	votable.BaseVisitor
	w       io.Writer
	sep     string
	aligned bool
	cols    []*arrayCol
	nrows   int
}

var fieldArrayLabels = []string{
	"index", "id", "name", "datatype", "arraysize", "width", "precision",
	"unit", "ucd", "null", "min", "max", "link", "description",
}

func NewFieldArrayPrinter(w io.Writer, sep string, aligned bool) *FieldArrayPrinter {
	p := &FieldArrayPrinter{w: w, sep: sep, aligned: aligned}
	p.reset()
	return p
}

func (p *FieldArrayPrinter) reset() {
	p.cols = make([]*arrayCol, len(fieldArrayLabels))
	for i, label := range fieldArrayLabels {
		p.cols[i] = newArrayCol(label)
	}
	p.nrows = 0
}

// Print walks the document and writes one attribute array per table.
func (p *FieldArrayPrinter) Print(vot *votable.VOTable) error {
	return votable.Walk(p, vot)
}

func (p *FieldArrayPrinter) VisitField(f *votable.Field) error {
	width, precision := "", f.Precision
	if f.Width != nil {
		width = strconv.Itoa(*f.Width)
	}
	arraysize := ""
	if f.ArraySize != nil {
		arraysize = f.ArraySize.String()
	}
	null, min, max := "", "", ""
	if f.Values != nil {
		null = f.Values.Null
		if f.Values.Min != nil {
			min = f.Values.Min.Value
		}
		if f.Values.Max != nil {
			max = f.Values.Max.Value
		}
	}
	link := ""
	if len(f.Links) > 0 {
		link = f.Links[0].Href
	}
	desc := ""
	if f.Description != nil {
		desc = f.Description.Content
	}
	row := []string{
		strconv.Itoa(p.nrows), f.ID, f.Name, f.Datatype.String(), arraysize,
		width, precision, f.Unit, f.UCD, null, min, max, link, desc,
	}
	for i, cell := range row {
		p.cols[i].push(cell)
	}
	p.nrows++
	return nil
}

func (p *FieldArrayPrinter) LeaveTable(*votable.Table) error {
	defer p.reset()
	var line []string
	for _, c := range p.cols {
		line = append(line, c.render(c.label, p.aligned))
	}
	if _, err := fmt.Fprintln(p.w, strings.Join(line, p.sep)); err != nil {
		return err
	}
	for r := 0; r < p.nrows; r++ {
		line = line[:0]
		for _, c := range p.cols {
			line = append(line, c.render(c.cells[r], p.aligned))
		}
		if _, err := fmt.Fprintln(p.w, strings.Join(line, p.sep)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(p.w)
	return err
}
