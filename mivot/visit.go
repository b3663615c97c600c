package mivot

// Visitor receives one callback per annotation node kind. Start/end pairs
// bracket recursive nodes. Returning a non-nil error halts the traversal.
type Visitor interface {
	VisitVodmlStart(v *Vodml) error
	VisitVodmlEnd(v *Vodml) error
	VisitReport(r *Report) error
	VisitModel(m *Model) error
	VisitGlobalsStart(g *Globals) error
	VisitGlobalsEnd(g *Globals) error
	VisitTemplatesStart(t *Templates) error
	VisitTemplatesEnd(t *Templates) error
	VisitInstanceStart(in *Instance) error
	VisitInstanceEnd(in *Instance) error
	VisitCollectionStart(c *Collection) error
	VisitCollectionEnd(c *Collection) error
	VisitAttribute(a *Attribute) error
	VisitReference(r *Reference) error
	VisitJoin(j *Join) error
	VisitWhere(w *Where) error
	VisitPrimaryKey(pk *PrimaryKey) error
	VisitForeignKey(fk *ForeignKey) error
}

// NoOp is an embeddable do-nothing Visitor.
type NoOp struct{}

func (NoOp) VisitVodmlStart(*Vodml) error           { return nil }
func (NoOp) VisitVodmlEnd(*Vodml) error             { return nil }
func (NoOp) VisitReport(*Report) error              { return nil }
func (NoOp) VisitModel(*Model) error                { return nil }
func (NoOp) VisitGlobalsStart(*Globals) error       { return nil }
func (NoOp) VisitGlobalsEnd(*Globals) error         { return nil }
func (NoOp) VisitTemplatesStart(*Templates) error   { return nil }
func (NoOp) VisitTemplatesEnd(*Templates) error     { return nil }
func (NoOp) VisitInstanceStart(*Instance) error     { return nil }
func (NoOp) VisitInstanceEnd(*Instance) error       { return nil }
func (NoOp) VisitCollectionStart(*Collection) error { return nil }
func (NoOp) VisitCollectionEnd(*Collection) error   { return nil }
func (NoOp) VisitAttribute(*Attribute) error        { return nil }
func (NoOp) VisitReference(*Reference) error        { return nil }
func (NoOp) VisitJoin(*Join) error                  { return nil }
func (NoOp) VisitWhere(*Where) error                { return nil }
func (NoOp) VisitPrimaryKey(*PrimaryKey) error      { return nil }
func (NoOp) VisitForeignKey(*ForeignKey) error      { return nil }

// Walk drives an in-order mutable traversal of the annotation tree.
func Walk(v *Vodml, vis Visitor) error {
	if v == nil {
		return nil
	}
	if err := vis.VisitVodmlStart(v); err != nil {
		return err
	}
	if v.Report != nil {
		if err := vis.VisitReport(v.Report); err != nil {
			return err
		}
	}
	for _, m := range v.Models {
		if err := vis.VisitModel(m); err != nil {
			return err
		}
	}
	if v.Globals != nil {
		if err := vis.VisitGlobalsStart(v.Globals); err != nil {
			return err
		}
		for _, e := range v.Globals.Elems {
			var err error
			switch x := e.(type) {
			case *Instance:
				err = walkInstance(x, vis)
			case *Collection:
				err = walkCollection(x, vis)
			}
			if err != nil {
				return err
			}
		}
		if err := vis.VisitGlobalsEnd(v.Globals); err != nil {
			return err
		}
	}
	for _, tp := range v.Templates {
		if err := vis.VisitTemplatesStart(tp); err != nil {
			return err
		}
		for _, wh := range tp.Wheres {
			if err := vis.VisitWhere(wh); err != nil {
				return err
			}
		}
		for _, in := range tp.Instances {
			if err := walkInstance(in, vis); err != nil {
				return err
			}
		}
		if err := vis.VisitTemplatesEnd(tp); err != nil {
			return err
		}
	}
	return vis.VisitVodmlEnd(v)
}

func walkInstance(in *Instance, vis Visitor) error {
	if err := vis.VisitInstanceStart(in); err != nil {
		return err
	}
	for _, e := range in.Elems {
		var err error
		switch x := e.(type) {
		case *PrimaryKey:
			err = vis.VisitPrimaryKey(x)
		case *Attribute:
			err = vis.VisitAttribute(x)
		case *Instance:
			err = walkInstance(x, vis)
		case *Reference:
			err = walkReference(x, vis)
		case *Collection:
			err = walkCollection(x, vis)
		}
		if err != nil {
			return err
		}
	}
	return vis.VisitInstanceEnd(in)
}

func walkCollection(c *Collection, vis Visitor) error {
	if err := vis.VisitCollectionStart(c); err != nil {
		return err
	}
	for _, e := range c.Elems {
		var err error
		switch x := e.(type) {
		case *Attribute:
			err = vis.VisitAttribute(x)
		case *Instance:
			err = walkInstance(x, vis)
		case *Reference:
			err = walkReference(x, vis)
		case *Collection:
			err = walkCollection(x, vis)
		case *Join:
			err = walkJoin(x, vis)
		}
		if err != nil {
			return err
		}
	}
	return vis.VisitCollectionEnd(c)
}

func walkReference(r *Reference, vis Visitor) error {
	if err := vis.VisitReference(r); err != nil {
		return err
	}
	for _, fk := range r.ForeignKeys {
		if err := vis.VisitForeignKey(fk); err != nil {
			return err
		}
	}
	return nil
}

func walkJoin(j *Join, vis Visitor) error {
	if err := vis.VisitJoin(j); err != nil {
		return err
	}
	for _, wh := range j.Wheres {
		if err := vis.VisitWhere(wh); err != nil {
			return err
		}
	}
	return nil
}
