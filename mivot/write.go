package mivot

import "strconv"

// XMLWriter is the event sink the annotation tree serializes to. The
// votxml writer implements it; any emitter with start/empty/end/text
// events will do.
type XMLWriter interface {
	Start(tag string, attrs ...[2]string) error
	Empty(tag string, attrs ...[2]string) error
	End(tag string) error
	Text(s string) error
}

// Write emits the VODML block. Attribute order is stable per element type
// so re-serialization is deterministic.
func Write(w XMLWriter, v *Vodml) error {
	if err := w.Start("VODML", [2]string{"xmlns", "http://www.ivoa.net/xml/mivot"}); err != nil {
		return err
	}
	if v.Report != nil {
		if err := w.Start("REPORT", [2]string{"status", v.Report.Status}); err != nil {
			return err
		}
		if v.Report.Content != "" {
			if err := w.Text(v.Report.Content); err != nil {
				return err
			}
		}
		if err := w.End("REPORT"); err != nil {
			return err
		}
	}
	for _, m := range v.Models {
		attrs := [][2]string{{"name", m.Name}}
		if m.URL != "" {
			attrs = append(attrs, [2]string{"url", m.URL})
		}
		if err := w.Empty("MODEL", attrs...); err != nil {
			return err
		}
	}
	if v.Globals != nil {
		if err := w.Start("GLOBALS"); err != nil {
			return err
		}
		for _, e := range v.Globals.Elems {
			var err error
			switch x := e.(type) {
			case *Instance:
				err = writeInstance(w, x)
			case *Collection:
				err = writeCollection(w, x)
			}
			if err != nil {
				return err
			}
		}
		if err := w.End("GLOBALS"); err != nil {
			return err
		}
	}
	for _, tp := range v.Templates {
		var attrs [][2]string
		if tp.TableRef != "" {
			attrs = append(attrs, [2]string{"tableref", tp.TableRef})
		}
		if err := w.Start("TEMPLATES", attrs...); err != nil {
			return err
		}
		for _, wh := range tp.Wheres {
			if err := writeWhere(w, wh); err != nil {
				return err
			}
		}
		for _, in := range tp.Instances {
			if err := writeInstance(w, in); err != nil {
				return err
			}
		}
		if err := w.End("TEMPLATES"); err != nil {
			return err
		}
	}
	return w.End("VODML")
}

func writeInstance(w XMLWriter, in *Instance) error {
	var attrs [][2]string
	if in.Dmid != "" {
		attrs = append(attrs, [2]string{"dmid", in.Dmid})
	}
	if in.Dmrole != "" {
		attrs = append(attrs, [2]string{"dmrole", in.Dmrole})
	}
	attrs = append(attrs, [2]string{"dmtype", in.Dmtype})
	if len(in.Elems) == 0 {
		return w.Empty("INSTANCE", attrs...)
	}
	if err := w.Start("INSTANCE", attrs...); err != nil {
		return err
	}
	for _, e := range in.Elems {
		var err error
		switch x := e.(type) {
		case *PrimaryKey:
			err = writePrimaryKey(w, x)
		case *Attribute:
			err = writeAttribute(w, x)
		case *Instance:
			err = writeInstance(w, x)
		case *Reference:
			err = writeReference(w, x)
		case *Collection:
			err = writeCollection(w, x)
		}
		if err != nil {
			return err
		}
	}
	return w.End("INSTANCE")
}

func writeCollection(w XMLWriter, c *Collection) error {
	var attrs [][2]string
	if c.Dmid != "" {
		attrs = append(attrs, [2]string{"dmid", c.Dmid})
	}
	if c.Dmrole != "" {
		attrs = append(attrs, [2]string{"dmrole", c.Dmrole})
	}
	if len(c.Elems) == 0 {
		return w.Empty("COLLECTION", attrs...)
	}
	if err := w.Start("COLLECTION", attrs...); err != nil {
		return err
	}
	for _, e := range c.Elems {
		var err error
		switch x := e.(type) {
		case *Attribute:
			err = writeAttribute(w, x)
		case *Instance:
			err = writeInstance(w, x)
		case *Reference:
			err = writeReference(w, x)
		case *Collection:
			err = writeCollection(w, x)
		case *Join:
			err = writeJoin(w, x)
		}
		if err != nil {
			return err
		}
	}
	return w.End("COLLECTION")
}

func writeAttribute(w XMLWriter, a *Attribute) error {
	var attrs [][2]string
	if a.Dmrole != "" {
		attrs = append(attrs, [2]string{"dmrole", a.Dmrole})
	}
	attrs = append(attrs, [2]string{"dmtype", a.Dmtype})
	if a.Value != nil {
		attrs = append(attrs, [2]string{"value", *a.Value})
	}
	if a.Ref != nil {
		attrs = append(attrs, [2]string{"ref", *a.Ref})
	}
	if a.ArrayIndex != nil {
		attrs = append(attrs, [2]string{"arrayindex", strconv.Itoa(*a.ArrayIndex)})
	}
	if a.Unit != "" {
		attrs = append(attrs, [2]string{"unit", a.Unit})
	}
	return w.Empty("ATTRIBUTE", attrs...)
}

func writeReference(w XMLWriter, r *Reference) error {
	var attrs [][2]string
	if r.Dmrole != "" {
		attrs = append(attrs, [2]string{"dmrole", r.Dmrole})
	}
	if r.Dmref != "" {
		attrs = append(attrs, [2]string{"dmref", r.Dmref})
	}
	if r.SourceRef != "" {
		attrs = append(attrs, [2]string{"sourceref", r.SourceRef})
	}
	if len(r.ForeignKeys) == 0 {
		return w.Empty("REFERENCE", attrs...)
	}
	if err := w.Start("REFERENCE", attrs...); err != nil {
		return err
	}
	for _, fk := range r.ForeignKeys {
		if err := w.Empty("FOREIGN_KEY", [2]string{"ref", fk.Ref}); err != nil {
			return err
		}
	}
	return w.End("REFERENCE")
}

func writeJoin(w XMLWriter, j *Join) error {
	var attrs [][2]string
	if j.Dmref != "" {
		attrs = append(attrs, [2]string{"dmref", j.Dmref})
	}
	if j.SourceRef != "" {
		attrs = append(attrs, [2]string{"sourceref", j.SourceRef})
	}
	if len(j.Wheres) == 0 {
		return w.Empty("JOIN", attrs...)
	}
	if err := w.Start("JOIN", attrs...); err != nil {
		return err
	}
	for _, wh := range j.Wheres {
		if err := writeWhere(w, wh); err != nil {
			return err
		}
	}
	return w.End("JOIN")
}

func writeWhere(w XMLWriter, wh *Where) error {
	var attrs [][2]string
	if wh.ForeignKey != "" {
		attrs = append(attrs, [2]string{"foreignkey", wh.ForeignKey})
	}
	attrs = append(attrs, [2]string{"primarykey", wh.PrimaryKey})
	if wh.Value != "" {
		attrs = append(attrs, [2]string{"value", wh.Value})
	}
	return w.Empty("WHERE", attrs...)
}

func writePrimaryKey(w XMLWriter, pk *PrimaryKey) error {
	attrs := [][2]string{{"dmtype", pk.Dmtype}}
	if pk.Value != "" {
		attrs = append(attrs, [2]string{"value", pk.Value})
	}
	if pk.Ref != "" {
		attrs = append(attrs, [2]string{"ref", pk.Ref})
	}
	return w.Empty("PRIMARY_KEY", attrs...)
}
