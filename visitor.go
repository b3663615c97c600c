package votable

import "github.com/astrogo/votable/mivot"

// Visitor receives the nodes of a document tree in document order.
// Container nodes get an enter/leave pair; leaves get a single call.
// Any non-nil error aborts the walk.
type Visitor interface {
	VisitVOTable(*VOTable) error
	LeaveVOTable(*VOTable) error
	VisitDescription(*Description) error
	VisitDefinitions(*Definitions) error
	LeaveDefinitions(*Definitions) error
	VisitCooSys(*CooSys) error
	LeaveCooSys(*CooSys) error
	VisitTimeSys(*TimeSys) error
	VisitInfo(*Info) error
	VisitLink(*Link) error
	VisitField(*Field) error
	LeaveField(*Field) error
	VisitParam(*Param) error
	LeaveParam(*Param) error
	VisitValues(*Values) error
	LeaveValues(*Values) error
	VisitMin(*Min) error
	VisitMax(*Max) error
	VisitOption(*Option) error
	LeaveOption(*Option) error
	VisitFieldRef(*FieldRef) error
	VisitParamRef(*ParamRef) error
	VisitGroup(*Group) error
	LeaveGroup(*Group) error
	VisitTableGroup(*TableGroup) error
	LeaveTableGroup(*TableGroup) error
	VisitResource(*Resource) error
	LeaveResource(*Resource) error
	VisitTable(*Table) error
	LeaveTable(*Table) error
	VisitData(*Data) error
	LeaveData(*Data) error
	VisitStream(*Stream) error
	// VisitVodml sees the annotation block as a whole; callers wanting the
	// inner tree use the mivot package's own walker from this hook.
	VisitVodml(*mivot.Vodml) error
}

// BaseVisitor is a no-op Visitor for embedding.
type BaseVisitor struct{}

func (BaseVisitor) VisitVOTable(*VOTable) error         { return nil }
func (BaseVisitor) LeaveVOTable(*VOTable) error         { return nil }
func (BaseVisitor) VisitDescription(*Description) error { return nil }
func (BaseVisitor) VisitDefinitions(*Definitions) error { return nil }
func (BaseVisitor) LeaveDefinitions(*Definitions) error { return nil }
func (BaseVisitor) VisitCooSys(*CooSys) error           { return nil }
func (BaseVisitor) LeaveCooSys(*CooSys) error           { return nil }
func (BaseVisitor) VisitTimeSys(*TimeSys) error         { return nil }
func (BaseVisitor) VisitInfo(*Info) error               { return nil }
func (BaseVisitor) VisitLink(*Link) error               { return nil }
func (BaseVisitor) VisitField(*Field) error             { return nil }
func (BaseVisitor) LeaveField(*Field) error             { return nil }
func (BaseVisitor) VisitParam(*Param) error             { return nil }
func (BaseVisitor) LeaveParam(*Param) error             { return nil }
func (BaseVisitor) VisitValues(*Values) error           { return nil }
func (BaseVisitor) LeaveValues(*Values) error           { return nil }
func (BaseVisitor) VisitMin(*Min) error                 { return nil }
func (BaseVisitor) VisitMax(*Max) error                 { return nil }
func (BaseVisitor) VisitOption(*Option) error           { return nil }
func (BaseVisitor) LeaveOption(*Option) error           { return nil }
func (BaseVisitor) VisitFieldRef(*FieldRef) error       { return nil }
func (BaseVisitor) VisitParamRef(*ParamRef) error       { return nil }
func (BaseVisitor) VisitGroup(*Group) error             { return nil }
func (BaseVisitor) LeaveGroup(*Group) error             { return nil }
func (BaseVisitor) VisitTableGroup(*TableGroup) error   { return nil }
func (BaseVisitor) LeaveTableGroup(*TableGroup) error   { return nil }
func (BaseVisitor) VisitResource(*Resource) error       { return nil }
func (BaseVisitor) LeaveResource(*Resource) error       { return nil }
func (BaseVisitor) VisitTable(*Table) error             { return nil }
func (BaseVisitor) LeaveTable(*Table) error             { return nil }
func (BaseVisitor) VisitData(*Data) error               { return nil }
func (BaseVisitor) LeaveData(*Data) error               { return nil }
func (BaseVisitor) VisitStream(*Stream) error           { return nil }
func (BaseVisitor) VisitVodml(*mivot.Vodml) error       { return nil }

// Walk drives a Visitor over the document in the order elements serialize.
func Walk(vis Visitor, vot *VOTable) error {
	if err := vis.VisitVOTable(vot); err != nil {
		return err
	}
	if vot.Description != nil {
		if err := vis.VisitDescription(vot.Description); err != nil {
			return err
		}
	}
	if vot.Definitions != nil {
		if err := walkDefinitions(vis, vot.Definitions); err != nil {
			return err
		}
	}
	for _, el := range vot.Elems {
		if err := walkVOTableElem(vis, el); err != nil {
			return err
		}
	}
	if vot.Vodml != nil {
		if err := vis.VisitVodml(vot.Vodml); err != nil {
			return err
		}
	}
	for _, r := range vot.Resources {
		if err := walkResource(vis, r); err != nil {
			return err
		}
	}
	for _, info := range vot.PostInfos {
		if err := vis.VisitInfo(info); err != nil {
			return err
		}
	}
	return vis.LeaveVOTable(vot)
}

func walkVOTableElem(vis Visitor, el VOTableElem) error {
	switch v := el.(type) {
	case *CooSys:
		return walkCooSys(vis, v)
	case *TimeSys:
		return vis.VisitTimeSys(v)
	case *Info:
		return vis.VisitInfo(v)
	case *Param:
		return walkParam(vis, v)
	case *Group:
		return walkGroup(vis, v)
	}
	return nil
}

func walkDefinitions(vis Visitor, def *Definitions) error {
	if err := vis.VisitDefinitions(def); err != nil {
		return err
	}
	for _, el := range def.Elems {
		switch v := el.(type) {
		case *CooSys:
			if err := walkCooSys(vis, v); err != nil {
				return err
			}
		case *Param:
			if err := walkParam(vis, v); err != nil {
				return err
			}
		}
	}
	return vis.LeaveDefinitions(def)
}

func walkCooSys(vis Visitor, cs *CooSys) error {
	if err := vis.VisitCooSys(cs); err != nil {
		return err
	}
	for _, el := range cs.Elems {
		switch v := el.(type) {
		case *FieldRef:
			if err := vis.VisitFieldRef(v); err != nil {
				return err
			}
		case *ParamRef:
			if err := vis.VisitParamRef(v); err != nil {
				return err
			}
		}
	}
	return vis.LeaveCooSys(cs)
}

func walkFieldBody(vis Visitor, f *Field) error {
	if f.Description != nil {
		if err := vis.VisitDescription(f.Description); err != nil {
			return err
		}
	}
	if f.Values != nil {
		if err := walkValues(vis, f.Values); err != nil {
			return err
		}
	}
	for _, l := range f.Links {
		if err := vis.VisitLink(l); err != nil {
			return err
		}
	}
	return nil
}

func walkField(vis Visitor, f *Field) error {
	if err := vis.VisitField(f); err != nil {
		return err
	}
	if err := walkFieldBody(vis, f); err != nil {
		return err
	}
	return vis.LeaveField(f)
}

func walkParam(vis Visitor, p *Param) error {
	if err := vis.VisitParam(p); err != nil {
		return err
	}
	if err := walkFieldBody(vis, &p.Field); err != nil {
		return err
	}
	return vis.LeaveParam(p)
}

func walkValues(vis Visitor, v *Values) error {
	if err := vis.VisitValues(v); err != nil {
		return err
	}
	if v.Min != nil {
		if err := vis.VisitMin(v.Min); err != nil {
			return err
		}
	}
	if v.Max != nil {
		if err := vis.VisitMax(v.Max); err != nil {
			return err
		}
	}
	for _, o := range v.Options {
		if err := walkOption(vis, o); err != nil {
			return err
		}
	}
	return vis.LeaveValues(v)
}

func walkOption(vis Visitor, o *Option) error {
	if err := vis.VisitOption(o); err != nil {
		return err
	}
	for _, sub := range o.Options {
		if err := walkOption(vis, sub); err != nil {
			return err
		}
	}
	return vis.LeaveOption(o)
}

func walkGroup(vis Visitor, g *Group) error {
	if err := vis.VisitGroup(g); err != nil {
		return err
	}
	if g.Description != nil {
		if err := vis.VisitDescription(g.Description); err != nil {
			return err
		}
	}
	for _, el := range g.Elems {
		switch v := el.(type) {
		case *ParamRef:
			if err := vis.VisitParamRef(v); err != nil {
				return err
			}
		case *Param:
			if err := walkParam(vis, v); err != nil {
				return err
			}
		case *Group:
			if err := walkGroup(vis, v); err != nil {
				return err
			}
		}
	}
	return vis.LeaveGroup(g)
}

func walkTableGroup(vis Visitor, g *TableGroup) error {
	if err := vis.VisitTableGroup(g); err != nil {
		return err
	}
	if g.Description != nil {
		if err := vis.VisitDescription(g.Description); err != nil {
			return err
		}
	}
	for _, el := range g.Elems {
		switch v := el.(type) {
		case *FieldRef:
			if err := vis.VisitFieldRef(v); err != nil {
				return err
			}
		case *ParamRef:
			if err := vis.VisitParamRef(v); err != nil {
				return err
			}
		case *Param:
			if err := walkParam(vis, v); err != nil {
				return err
			}
		case *TableGroup:
			if err := walkTableGroup(vis, v); err != nil {
				return err
			}
		}
	}
	return vis.LeaveTableGroup(g)
}

func walkResource(vis Visitor, r *Resource) error {
	if err := vis.VisitResource(r); err != nil {
		return err
	}
	if r.Description != nil {
		if err := vis.VisitDescription(r.Description); err != nil {
			return err
		}
	}
	for _, info := range r.Infos {
		if err := vis.VisitInfo(info); err != nil {
			return err
		}
	}
	for _, el := range r.Elems {
		switch v := el.(type) {
		case *CooSys:
			if err := walkCooSys(vis, v); err != nil {
				return err
			}
		case *TimeSys:
			if err := vis.VisitTimeSys(v); err != nil {
				return err
			}
		case *Group:
			if err := walkGroup(vis, v); err != nil {
				return err
			}
		case *Param:
			if err := walkParam(vis, v); err != nil {
				return err
			}
		}
	}
	for _, l := range r.Links {
		if err := vis.VisitLink(l); err != nil {
			return err
		}
	}
	for _, sub := range r.Subs {
		switch v := sub.(type) {
		case *Resource:
			if err := walkResource(vis, v); err != nil {
				return err
			}
		case *Table:
			if err := walkTable(vis, v); err != nil {
				return err
			}
		}
	}
	for _, info := range r.PostInfos {
		if err := vis.VisitInfo(info); err != nil {
			return err
		}
	}
	return vis.LeaveResource(r)
}

func walkTable(vis Visitor, t *Table) error {
	if err := vis.VisitTable(t); err != nil {
		return err
	}
	if t.Description != nil {
		if err := vis.VisitDescription(t.Description); err != nil {
			return err
		}
	}
	for _, el := range t.Elems {
		switch v := el.(type) {
		case *Field:
			if err := walkField(vis, v); err != nil {
				return err
			}
		case *Param:
			if err := walkParam(vis, v); err != nil {
				return err
			}
		case *TableGroup:
			if err := walkTableGroup(vis, v); err != nil {
				return err
			}
		}
	}
	for _, l := range t.Links {
		if err := vis.VisitLink(l); err != nil {
			return err
		}
	}
	if t.Data != nil {
		if err := walkData(vis, t.Data); err != nil {
			return err
		}
	}
	for _, info := range t.PostInfos {
		if err := vis.VisitInfo(info); err != nil {
			return err
		}
	}
	return vis.LeaveTable(t)
}

func walkData(vis Visitor, d *Data) error {
	if err := vis.VisitData(d); err != nil {
		return err
	}
	switch v := d.Variant.(type) {
	case *Binary:
		if err := vis.VisitStream(&v.Stream); err != nil {
			return err
		}
	case *Binary2:
		if err := vis.VisitStream(&v.Stream); err != nil {
			return err
		}
	case *Fits:
		if err := vis.VisitStream(&v.Stream); err != nil {
			return err
		}
	}
	return vis.LeaveData(d)
}
