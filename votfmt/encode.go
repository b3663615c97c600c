package votfmt

import (
	"encoding/base64"
	"math"
	"strconv"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
)

type node = map[string]any

func put(m node, k, v string) {
	if v != "" {
		m[k] = v
	}
}

func putExtras(m node, ex votable.Extras) {
	for _, a := range ex {
		m[a.Name] = a.Value
	}
}

func encodeVOTable(v *votable.VOTable) node {
	m := node{}
	put(m, "ID", v.ID)
	m["version"] = v.Version
	putExtras(m, v.Extras)
	if v.Description != nil {
		m["description"] = v.Description.Content
	}
	if v.Definitions != nil {
		m["definitions"] = encodeDefinitions(v.Definitions)
	}
	if len(v.Elems) > 0 {
		elems := make([]any, 0, len(v.Elems))
		for _, el := range v.Elems {
			elems = append(elems, encodeMetaElem(el))
		}
		m["elems"] = elems
	}
	if v.Vodml != nil {
		m["vodml"] = encodeVodml(v.Vodml)
	}
	if len(v.Resources) > 0 {
		res := make([]any, 0, len(v.Resources))
		for _, r := range v.Resources {
			res = append(res, encodeResource(r))
		}
		m["resources"] = res
	}
	if len(v.PostInfos) > 0 {
		m["post_infos"] = encodeInfos(v.PostInfos)
	}
	return m
}

// encodeMetaElem tags the metadata elements shared by VOTABLE, RESOURCE,
// DEFINITIONS and GROUP element lists.
func encodeMetaElem(el any) node {
	switch n := el.(type) {
	case *votable.CooSys:
		m := encodeCooSys(n)
		m["elem_type"] = "CooSys"
		return m
	case *votable.TimeSys:
		m := encodeTimeSys(n)
		m["elem_type"] = "TimeSys"
		return m
	case *votable.Info:
		m := encodeInfo(n)
		m["elem_type"] = "Info"
		return m
	case *votable.Param:
		m := encodeParam(n)
		m["elem_type"] = "Param"
		return m
	case *votable.Group:
		m := encodeGroup(n)
		m["elem_type"] = "Group"
		return m
	case *votable.Field:
		m := encodeField(n)
		m["elem_type"] = "Field"
		return m
	case *votable.TableGroup:
		m := encodeTableGroup(n)
		m["elem_type"] = "TableGroup"
		return m
	case *votable.FieldRef:
		m := encodeRef(n.Ref, n.UCD, n.UType, n.Extras)
		m["elem_type"] = "FieldRef"
		return m
	case *votable.ParamRef:
		m := encodeRef(n.Ref, n.UCD, n.UType, n.Extras)
		m["elem_type"] = "ParamRef"
		return m
	}
	return node{}
}

func encodeDefinitions(d *votable.Definitions) node {
	elems := make([]any, 0, len(d.Elems))
	for _, el := range d.Elems {
		elems = append(elems, encodeMetaElem(el))
	}
	return node{"elems": elems}
}

func encodeCooSys(cs *votable.CooSys) node {
	m := node{"ID": cs.ID}
	put(m, "equinox", cs.Equinox)
	put(m, "epoch", cs.Epoch)
	put(m, "system", cs.System)
	putExtras(m, cs.Extras)
	if len(cs.Elems) > 0 {
		elems := make([]any, 0, len(cs.Elems))
		for _, el := range cs.Elems {
			elems = append(elems, encodeMetaElem(el))
		}
		m["elems"] = elems
	}
	return m
}

func encodeTimeSys(ts *votable.TimeSys) node {
	m := node{"ID": ts.ID, "timescale": ts.TimeScale, "refposition": ts.RefPosition}
	put(m, "timeorigin", ts.TimeOrigin)
	putExtras(m, ts.Extras)
	return m
}

func encodeInfo(i *votable.Info) node {
	m := node{"name": i.Name, "value": i.Value}
	put(m, "ID", i.ID)
	putExtras(m, i.Extras)
	put(m, "content", i.Content)
	return m
}

func encodeInfos(infos []*votable.Info) []any {
	out := make([]any, 0, len(infos))
	for _, i := range infos {
		out = append(out, encodeInfo(i))
	}
	return out
}

func encodeLink(l *votable.Link) node {
	m := node{}
	put(m, "ID", l.ID)
	put(m, "content_role", l.ContentRole)
	put(m, "content_type", l.ContentType)
	put(m, "title", l.Title)
	put(m, "value", l.Value)
	put(m, "href", l.Href)
	put(m, "actuate", l.Actuate)
	putExtras(m, l.Extras)
	put(m, "content", l.Content)
	return m
}

func encodeLinks(links []*votable.Link) []any {
	out := make([]any, 0, len(links))
	for _, l := range links {
		out = append(out, encodeLink(l))
	}
	return out
}

func encodeRef(ref, ucd, utype string, ex votable.Extras) node {
	m := node{"ref": ref}
	put(m, "ucd", ucd)
	put(m, "utype", utype)
	putExtras(m, ex)
	return m
}

func encodeField(f *votable.Field) node {
	m := node{"name": f.Name, "datatype": f.Datatype.String()}
	put(m, "ID", f.ID)
	put(m, "unit", f.Unit)
	put(m, "ucd", f.UCD)
	put(m, "utype", f.UType)
	put(m, "ref", f.Ref)
	if f.Width != nil {
		m["width"] = *f.Width
	}
	put(m, "precision", f.Precision)
	if f.ArraySize != nil {
		m["arraysize"] = f.ArraySize.String()
	}
	putExtras(m, f.Extras)
	if f.Description != nil {
		m["description"] = f.Description.Content
	}
	if f.Values != nil {
		m["values"] = encodeValues(f.Values)
	}
	if len(f.Links) > 0 {
		m["links"] = encodeLinks(f.Links)
	}
	return m
}

func encodeParam(p *votable.Param) node {
	m := encodeField(&p.Field)
	m["value"] = p.Value
	return m
}

func encodeValues(v *votable.Values) node {
	m := node{}
	put(m, "ID", v.ID)
	put(m, "type", v.Type)
	put(m, "null", v.Null)
	put(m, "ref", v.Ref)
	putExtras(m, v.Extras)
	if v.Min != nil {
		mm := node{"value": v.Min.Value}
		if !v.Min.Inclusive {
			mm["inclusive"] = false
		}
		putExtras(mm, v.Min.Extras)
		m["min"] = mm
	}
	if v.Max != nil {
		mm := node{"value": v.Max.Value}
		if !v.Max.Inclusive {
			mm["inclusive"] = false
		}
		putExtras(mm, v.Max.Extras)
		m["max"] = mm
	}
	if len(v.Options) > 0 {
		m["opts"] = encodeOptions(v.Options)
	}
	return m
}

func encodeOptions(opts []*votable.Option) []any {
	out := make([]any, 0, len(opts))
	for _, o := range opts {
		m := node{"value": o.Value}
		put(m, "name", o.Name)
		putExtras(m, o.Extras)
		if len(o.Options) > 0 {
			m["opts"] = encodeOptions(o.Options)
		}
		out = append(out, m)
	}
	return out
}

func groupAttrs(m node, id, name, ref, ucd, utype string, desc *votable.Description, ex votable.Extras) {
	put(m, "ID", id)
	put(m, "name", name)
	put(m, "ref", ref)
	put(m, "ucd", ucd)
	put(m, "utype", utype)
	putExtras(m, ex)
	if desc != nil {
		m["description"] = desc.Content
	}
}

func encodeGroup(g *votable.Group) node {
	m := node{}
	groupAttrs(m, g.ID, g.Name, g.Ref, g.UCD, g.UType, g.Description, g.Extras)
	if len(g.Elems) > 0 {
		elems := make([]any, 0, len(g.Elems))
		for _, el := range g.Elems {
			elems = append(elems, encodeMetaElem(el))
		}
		m["elems"] = elems
	}
	return m
}

func encodeTableGroup(g *votable.TableGroup) node {
	m := node{}
	groupAttrs(m, g.ID, g.Name, g.Ref, g.UCD, g.UType, g.Description, g.Extras)
	if len(g.Elems) > 0 {
		elems := make([]any, 0, len(g.Elems))
		for _, el := range g.Elems {
			elems = append(elems, encodeMetaElem(el))
		}
		m["elems"] = elems
	}
	return m
}

func encodeResource(r *votable.Resource) node {
	m := node{}
	put(m, "ID", r.ID)
	put(m, "name", r.Name)
	put(m, "type", r.Type)
	put(m, "utype", r.UType)
	putExtras(m, r.Extras)
	if r.Description != nil {
		m["description"] = r.Description.Content
	}
	if len(r.Infos) > 0 {
		m["infos"] = encodeInfos(r.Infos)
	}
	if len(r.Elems) > 0 {
		elems := make([]any, 0, len(r.Elems))
		for _, el := range r.Elems {
			elems = append(elems, encodeMetaElem(el))
		}
		m["elems"] = elems
	}
	if len(r.Links) > 0 {
		m["links"] = encodeLinks(r.Links)
	}
	if len(r.Subs) > 0 {
		subs := make([]any, 0, len(r.Subs))
		for _, sub := range r.Subs {
			switch n := sub.(type) {
			case *votable.Resource:
				sm := encodeResource(n)
				sm["elem_type"] = "Resource"
				subs = append(subs, sm)
			case *votable.Table:
				sm := encodeTable(n)
				sm["elem_type"] = "Table"
				subs = append(subs, sm)
			}
		}
		m["sub_elems"] = subs
	}
	if len(r.PostInfos) > 0 {
		m["post_infos"] = encodeInfos(r.PostInfos)
	}
	return m
}

func encodeTable(t *votable.Table) node {
	m := node{}
	put(m, "ID", t.ID)
	put(m, "name", t.Name)
	put(m, "ucd", t.UCD)
	put(m, "utype", t.UType)
	put(m, "ref", t.Ref)
	put(m, "nrows", t.NRows)
	putExtras(m, t.Extras)
	if t.Description != nil {
		m["description"] = t.Description.Content
	}
	if len(t.Elems) > 0 {
		elems := make([]any, 0, len(t.Elems))
		for _, el := range t.Elems {
			elems = append(elems, encodeMetaElem(el))
		}
		m["elems"] = elems
	}
	if len(t.Links) > 0 {
		m["links"] = encodeLinks(t.Links)
	}
	if t.Data != nil {
		m["data"] = encodeData(t.Data)
	}
	if len(t.PostInfos) > 0 {
		m["post_infos"] = encodeInfos(t.PostInfos)
	}
	return m
}

func encodeData(d *votable.Data) node {
	m := node{}
	putExtras(m, d.Extras)
	switch v := d.Variant.(type) {
	case *votable.TableData:
		m["data_type"] = "TableData"
		encodeContent(m, v.Content)
	case *votable.Binary:
		m["data_type"] = "Binary"
		m["stream"] = encodeStream(&v.Stream)
		encodeContent(m, v.Content)
	case *votable.Binary2:
		m["data_type"] = "Binary2"
		m["stream"] = encodeStream(&v.Stream)
		encodeContent(m, v.Content)
	case *votable.Fits:
		m["data_type"] = "Fits"
		put(m, "extnum", v.ExtNum)
		m["stream"] = encodeStream(&v.Stream)
	default:
		m["data_type"] = "TableData"
	}
	return m
}

func encodeContent(m node, c votable.TableContent) {
	switch n := c.(type) {
	case *votable.TableRows:
		rows := make([]any, 0, len(n.Rows))
		for _, row := range n.Rows {
			cells := make([]any, 0, len(row))
			for _, v := range row {
				cells = append(cells, encodeValue(v))
			}
			rows = append(rows, cells)
		}
		m["rows"] = rows
	case *votable.RawBytes:
		m["bytes"] = base64.StdEncoding.EncodeToString(n.Bytes)
	}
}

func encodeStream(s *votable.Stream) node {
	m := node{}
	put(m, "type", s.Type)
	put(m, "href", s.Href)
	put(m, "actuate", s.Actuate)
	put(m, "encoding", s.Encoding)
	put(m, "expires", s.Expires)
	put(m, "rights", s.Rights)
	putExtras(m, s.Extras)
	return m
}

// encodeValue maps a typed cell onto a JSON-friendly native. NaN floats
// are nulls at the standard level, so they project to nil.
func encodeValue(v votable.Value) any {
	switch v.Kind {
	case votable.KindNull:
		return nil
	case votable.KindBool:
		return v.B
	case votable.KindByte, votable.KindShort, votable.KindInt, votable.KindLong:
		return v.I
	case votable.KindFloat, votable.KindDouble:
		if math.IsNaN(v.F) {
			return nil
		}
		return v.F
	case votable.KindFloatComplex, votable.KindDoubleComplex:
		return []any{v.F, v.F2}
	case votable.KindChar, votable.KindUnicodeChar, votable.KindString:
		return v.S
	case votable.KindBitArray:
		bits := make([]any, 0, v.I)
		for i := int64(0); i < v.I; i++ {
			bit := v.Bits[i/8] >> (7 - uint(i%8)) & 1
			bits = append(bits, int64(bit))
		}
		return bits
	case votable.KindArray:
		out := make([]any, 0, len(v.Elems))
		for _, e := range v.Elems {
			out = append(out, encodeValue(e))
		}
		return out
	}
	return nil
}

func encodeVodml(v *mivot.Vodml) node {
	m := node{}
	if v.Report != nil {
		rm := node{"status": v.Report.Status}
		put(rm, "content", v.Report.Content)
		m["report"] = rm
	}
	if len(v.Models) > 0 {
		models := make([]any, 0, len(v.Models))
		for _, md := range v.Models {
			mm := node{"name": md.Name}
			put(mm, "url", md.URL)
			models = append(models, mm)
		}
		m["models"] = models
	}
	if v.Globals != nil {
		elems := make([]any, 0, len(v.Globals.Elems))
		for _, el := range v.Globals.Elems {
			elems = append(elems, encodeMivotElem(el))
		}
		m["globals"] = node{"elems": elems}
	}
	if len(v.Templates) > 0 {
		tpls := make([]any, 0, len(v.Templates))
		for _, t := range v.Templates {
			tm := node{}
			put(tm, "tableref", t.TableRef)
			if len(t.Wheres) > 0 {
				tm["wheres"] = encodeWheres(t.Wheres)
			}
			insts := make([]any, 0, len(t.Instances))
			for _, in := range t.Instances {
				insts = append(insts, encodeInstance(in))
			}
			tm["instances"] = insts
			tpls = append(tpls, tm)
		}
		m["templates"] = tpls
	}
	return m
}

func encodeMivotElem(el any) node {
	switch n := el.(type) {
	case *mivot.Instance:
		m := encodeInstance(n)
		m["elem_type"] = "Instance"
		return m
	case *mivot.Collection:
		m := encodeCollection(n)
		m["elem_type"] = "Collection"
		return m
	case *mivot.Attribute:
		m := encodeAttribute(n)
		m["elem_type"] = "Attribute"
		return m
	case *mivot.Reference:
		m := encodeReference(n)
		m["elem_type"] = "Reference"
		return m
	case *mivot.Join:
		m := encodeJoin(n)
		m["elem_type"] = "Join"
		return m
	case *mivot.PrimaryKey:
		m := node{"dmtype": n.Dmtype}
		put(m, "value", n.Value)
		put(m, "ref", n.Ref)
		m["elem_type"] = "PrimaryKey"
		return m
	}
	return node{}
}

func encodeInstance(in *mivot.Instance) node {
	m := node{"dmtype": in.Dmtype}
	put(m, "dmid", in.Dmid)
	put(m, "dmrole", in.Dmrole)
	if len(in.Elems) > 0 {
		elems := make([]any, 0, len(in.Elems))
		for _, el := range in.Elems {
			elems = append(elems, encodeMivotElem(el))
		}
		m["elems"] = elems
	}
	return m
}

func encodeCollection(c *mivot.Collection) node {
	m := node{}
	put(m, "dmid", c.Dmid)
	put(m, "dmrole", c.Dmrole)
	if len(c.Elems) > 0 {
		elems := make([]any, 0, len(c.Elems))
		for _, el := range c.Elems {
			elems = append(elems, encodeMivotElem(el))
		}
		m["elems"] = elems
	}
	return m
}

func encodeAttribute(a *mivot.Attribute) node {
	m := node{"dmtype": a.Dmtype}
	put(m, "dmrole", a.Dmrole)
	if a.Value != nil {
		m["value"] = *a.Value
	}
	if a.Ref != nil {
		m["ref"] = *a.Ref
	}
	if a.ArrayIndex != nil {
		m["arrayindex"] = strconv.Itoa(*a.ArrayIndex)
	}
	put(m, "unit", a.Unit)
	return m
}

func encodeReference(r *mivot.Reference) node {
	m := node{}
	put(m, "dmrole", r.Dmrole)
	put(m, "dmref", r.Dmref)
	put(m, "sourceref", r.SourceRef)
	if len(r.ForeignKeys) > 0 {
		fks := make([]any, 0, len(r.ForeignKeys))
		for _, fk := range r.ForeignKeys {
			fks = append(fks, node{"ref": fk.Ref})
		}
		m["foreign_keys"] = fks
	}
	return m
}

func encodeJoin(j *mivot.Join) node {
	m := node{}
	put(m, "dmref", j.Dmref)
	put(m, "sourceref", j.SourceRef)
	if len(j.Wheres) > 0 {
		m["wheres"] = encodeWheres(j.Wheres)
	}
	return m
}

func encodeWheres(ws []*mivot.Where) []any {
	out := make([]any, 0, len(ws))
	for _, w := range ws {
		m := node{}
		put(m, "primarykey", w.PrimaryKey)
		put(m, "foreignkey", w.ForeignKey)
		put(m, "value", w.Value)
		out = append(out, m)
	}
	return out
}
