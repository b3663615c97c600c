package visitors

import (
	votable "github.com/astrogo/votable"
)

// The prune pass removes every element condemned by an rm action. Matching
// happened by identity during the walk, so pruning is a single sweep over
// the tree filtering slices and nil-ing optional children.

func (u *Updater) pruneVOTable(v *votable.VOTable) {
	if v.Description != nil && u.condemned[v.Description] {
		v.Description = nil
	}
	if v.Definitions != nil {
		if u.condemned[v.Definitions] {
			v.Definitions = nil
		} else {
			u.pruneDefinitions(v.Definitions)
		}
	}
	kept := v.Elems[:0]
	for _, el := range v.Elems {
		if u.condemned[el] {
			continue
		}
		u.pruneVOTableElem(el)
		kept = append(kept, el)
	}
	v.Elems = kept
	if v.Vodml != nil && u.condemned[v.Vodml] {
		v.Vodml = nil
	}
	res := v.Resources[:0]
	for _, r := range v.Resources {
		if u.condemned[r] {
			continue
		}
		u.pruneResource(r)
		res = append(res, r)
	}
	v.Resources = res
	v.PostInfos = u.pruneInfos(v.PostInfos)
}

func (u *Updater) pruneVOTableElem(el votable.VOTableElem) {
	switch n := el.(type) {
	case *votable.CooSys:
		u.pruneCooSys(n)
	case *votable.Param:
		u.pruneField(&n.Field)
	case *votable.Group:
		u.pruneGroup(n)
	}
}

func (u *Updater) pruneInfos(infos []*votable.Info) []*votable.Info {
	kept := infos[:0]
	for _, info := range infos {
		if !u.condemned[info] {
			kept = append(kept, info)
		}
	}
	return kept
}

func (u *Updater) pruneLinks(links []*votable.Link) []*votable.Link {
	kept := links[:0]
	for _, l := range links {
		if !u.condemned[l] {
			kept = append(kept, l)
		}
	}
	return kept
}

func (u *Updater) pruneDefinitions(d *votable.Definitions) {
	kept := d.Elems[:0]
	for _, el := range d.Elems {
		if u.condemned[el] {
			continue
		}
		switch n := el.(type) {
		case *votable.CooSys:
			u.pruneCooSys(n)
		case *votable.Param:
			u.pruneField(&n.Field)
		}
		kept = append(kept, el)
	}
	d.Elems = kept
}

func (u *Updater) pruneCooSys(cs *votable.CooSys) {
	kept := cs.Elems[:0]
	for _, el := range cs.Elems {
		if !u.condemned[el] {
			kept = append(kept, el)
		}
	}
	cs.Elems = kept
}

// pruneField covers the children shared by FIELD and PARAM.
func (u *Updater) pruneField(f *votable.Field) {
	if f.Description != nil && u.condemned[f.Description] {
		f.Description = nil
	}
	if f.Values != nil {
		if u.condemned[f.Values] {
			f.Values = nil
		} else {
			u.pruneValues(f.Values)
		}
	}
	f.Links = u.pruneLinks(f.Links)
}

func (u *Updater) pruneValues(v *votable.Values) {
	if v.Min != nil && u.condemned[v.Min] {
		v.Min = nil
	}
	if v.Max != nil && u.condemned[v.Max] {
		v.Max = nil
	}
	v.Options = u.pruneOptions(v.Options)
}

func (u *Updater) pruneOptions(opts []*votable.Option) []*votable.Option {
	kept := opts[:0]
	for _, o := range opts {
		if u.condemned[o] {
			continue
		}
		o.Options = u.pruneOptions(o.Options)
		kept = append(kept, o)
	}
	return kept
}

func (u *Updater) pruneGroup(g *votable.Group) {
	if g.Description != nil && u.condemned[g.Description] {
		g.Description = nil
	}
	kept := g.Elems[:0]
	for _, el := range g.Elems {
		if u.condemned[el] {
			continue
		}
		switch n := el.(type) {
		case *votable.Param:
			u.pruneField(&n.Field)
		case *votable.Group:
			u.pruneGroup(n)
		}
		kept = append(kept, el)
	}
	g.Elems = kept
}

func (u *Updater) pruneTableGroup(g *votable.TableGroup) {
	if g.Description != nil && u.condemned[g.Description] {
		g.Description = nil
	}
	kept := g.Elems[:0]
	for _, el := range g.Elems {
		if u.condemned[el] {
			continue
		}
		switch n := el.(type) {
		case *votable.Param:
			u.pruneField(&n.Field)
		case *votable.TableGroup:
			u.pruneTableGroup(n)
		}
		kept = append(kept, el)
	}
	g.Elems = kept
}

func (u *Updater) pruneResource(r *votable.Resource) {
	if r.Description != nil && u.condemned[r.Description] {
		r.Description = nil
	}
	r.Infos = u.pruneInfos(r.Infos)
	kept := r.Elems[:0]
	for _, el := range r.Elems {
		if u.condemned[el] {
			continue
		}
		switch n := el.(type) {
		case *votable.CooSys:
			u.pruneCooSys(n)
		case *votable.Group:
			u.pruneGroup(n)
		case *votable.Param:
			u.pruneField(&n.Field)
		}
		kept = append(kept, el)
	}
	r.Elems = kept
	r.Links = u.pruneLinks(r.Links)
	subs := r.Subs[:0]
	for _, sub := range r.Subs {
		if u.condemned[sub] {
			continue
		}
		switch n := sub.(type) {
		case *votable.Resource:
			u.pruneResource(n)
		case *votable.Table:
			u.pruneTable(n)
		}
		subs = append(subs, sub)
	}
	r.Subs = subs
	r.PostInfos = u.pruneInfos(r.PostInfos)
}

func (u *Updater) pruneTable(t *votable.Table) {
	if t.Description != nil && u.condemned[t.Description] {
		t.Description = nil
	}
	kept := t.Elems[:0]
	for _, el := range t.Elems {
		if u.condemned[el] {
			continue
		}
		switch n := el.(type) {
		case *votable.Field:
			u.pruneField(n)
		case *votable.Param:
			u.pruneField(&n.Field)
		case *votable.TableGroup:
			u.pruneTableGroup(n)
		}
		kept = append(kept, el)
	}
	t.Elems = kept
	t.Links = u.pruneLinks(t.Links)
	if t.Data != nil && u.condemned[t.Data] {
		t.Data = nil
	}
	t.PostInfos = u.pruneInfos(t.PostInfos)
}
