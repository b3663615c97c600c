package votfmt

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
	"github.com/astrogo/votable/schema"
	"github.com/astrogo/votable/verr"
)

// asString renders the scalar forms the three parsers can hand back for an
// attribute value.
func asString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case json.Number:
		return n.String()
	case bool:
		if n {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return ""
}

func str(m node, k string) string {
	v, ok := m[k]
	if !ok {
		return ""
	}
	return asString(v)
}

func reqStr(m node, k, elem string) (string, error) {
	v, ok := m[k]
	if !ok {
		return "", verr.Customf("%s: missing %q", elem, k)
	}
	return asString(v), nil
}

// extrasFrom collects the attribute keys not claimed by the element's own
// schema. Only scalar values qualify; keys are sorted for determinism.
func extrasFrom(m node, known ...string) votable.Extras {
	var keys []string
	for k, v := range m {
		if isKnown(k, known) {
			continue
		}
		switch v.(type) {
		case string, json.Number, bool, int, int64, uint64, float64:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var ex votable.Extras
	for _, k := range keys {
		ex = append(ex, votable.Attr{Name: k, Value: asString(m[k])})
	}
	return ex
}

func isKnown(k string, known []string) bool {
	for _, n := range known {
		if k == n {
			return true
		}
	}
	return false
}

func list(m node, k string) []any {
	if l, ok := m[k].([]any); ok {
		return l
	}
	return nil
}

func sub(m node, k string) node {
	if s, ok := m[k].(map[string]any); ok {
		return s
	}
	return nil
}

func decodeVOTable(m node) (*votable.VOTable, error) {
	v := &votable.VOTable{
		ID:      str(m, "ID"),
		Version: str(m, "version"),
		Extras: extrasFrom(m, "ID", "version", "description", "definitions",
			"elems", "vodml", "resources", "post_infos"),
	}
	if d, ok := m["description"]; ok {
		v.Description = &votable.Description{Content: asString(d)}
	}
	if dm := sub(m, "definitions"); dm != nil {
		defs := &votable.Definitions{}
		for _, em := range list(dm, "elems") {
			el, err := decodeMetaElem(em)
			if err != nil {
				return nil, err
			}
			de, ok := el.(votable.DefinitionsElem)
			if !ok {
				return nil, verr.Customf("DEFINITIONS: unexpected child %T", el)
			}
			defs.Elems = append(defs.Elems, de)
		}
		v.Definitions = defs
	}
	for _, em := range list(m, "elems") {
		el, err := decodeMetaElem(em)
		if err != nil {
			return nil, err
		}
		ve, ok := el.(votable.VOTableElem)
		if !ok {
			return nil, verr.Customf("VOTABLE: unexpected child %T", el)
		}
		v.Elems = append(v.Elems, ve)
	}
	if vm := sub(m, "vodml"); vm != nil {
		vd, err := decodeVodml(vm)
		if err != nil {
			return nil, err
		}
		v.Vodml = vd
	}
	for _, rm := range list(m, "resources") {
		rn, ok := rm.(map[string]any)
		if !ok {
			return nil, verr.Custom("RESOURCE: not an object")
		}
		r, err := decodeResource(rn)
		if err != nil {
			return nil, err
		}
		v.Resources = append(v.Resources, r)
	}
	var err error
	if v.PostInfos, err = decodeInfos(m, "post_infos"); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeMetaElem dispatches on elem_type; the caller narrows the result to
// the interface its context admits.
func decodeMetaElem(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, verr.Custom("element: not an object")
	}
	switch t := str(m, "elem_type"); t {
	case "CooSys":
		return decodeCooSys(m)
	case "TimeSys":
		return decodeTimeSys(m)
	case "Info":
		return decodeInfo(m)
	case "Param":
		return decodeParam(m)
	case "Group":
		return decodeGroup(m)
	case "Field":
		return decodeField(m)
	case "TableGroup":
		return decodeTableGroup(m)
	case "FieldRef":
		ref, err := reqStr(m, "ref", "FIELDref")
		if err != nil {
			return nil, err
		}
		return &votable.FieldRef{Ref: ref, UCD: str(m, "ucd"), UType: str(m, "utype"),
			Extras: extrasFrom(m, "elem_type", "ref", "ucd", "utype")}, nil
	case "ParamRef":
		ref, err := reqStr(m, "ref", "PARAMref")
		if err != nil {
			return nil, err
		}
		return &votable.ParamRef{Ref: ref, UCD: str(m, "ucd"), UType: str(m, "utype"),
			Extras: extrasFrom(m, "elem_type", "ref", "ucd", "utype")}, nil
	default:
		return nil, verr.Customf("unknown elem_type %q", t)
	}
}

func decodeCooSys(m node) (*votable.CooSys, error) {
	id, err := reqStr(m, "ID", "COOSYS")
	if err != nil {
		return nil, err
	}
	cs := &votable.CooSys{
		ID:      id,
		Equinox: str(m, "equinox"),
		Epoch:   str(m, "epoch"),
		System:  str(m, "system"),
		Extras:  extrasFrom(m, "elem_type", "ID", "equinox", "epoch", "system", "elems"),
	}
	for _, em := range list(m, "elems") {
		el, err := decodeMetaElem(em)
		if err != nil {
			return nil, err
		}
		ce, ok := el.(votable.CooSysElem)
		if !ok {
			return nil, verr.Customf("COOSYS: unexpected child %T", el)
		}
		cs.Elems = append(cs.Elems, ce)
	}
	return cs, nil
}

func decodeTimeSys(m node) (*votable.TimeSys, error) {
	id, err := reqStr(m, "ID", "TIMESYS")
	if err != nil {
		return nil, err
	}
	scale, err := reqStr(m, "timescale", "TIMESYS")
	if err != nil {
		return nil, err
	}
	refpos, err := reqStr(m, "refposition", "TIMESYS")
	if err != nil {
		return nil, err
	}
	return &votable.TimeSys{
		ID: id, TimeScale: scale, RefPosition: refpos,
		TimeOrigin: str(m, "timeorigin"),
		Extras:     extrasFrom(m, "elem_type", "ID", "timescale", "refposition", "timeorigin"),
	}, nil
}

func decodeInfo(m node) (*votable.Info, error) {
	name, err := reqStr(m, "name", "INFO")
	if err != nil {
		return nil, err
	}
	value, err := reqStr(m, "value", "INFO")
	if err != nil {
		return nil, err
	}
	return &votable.Info{
		ID: str(m, "ID"), Name: name, Value: value,
		Content: str(m, "content"),
		Extras:  extrasFrom(m, "elem_type", "ID", "name", "value", "content"),
	}, nil
}

func decodeInfos(m node, key string) ([]*votable.Info, error) {
	var out []*votable.Info
	for _, im := range list(m, key) {
		in, ok := im.(map[string]any)
		if !ok {
			return nil, verr.Custom("INFO: not an object")
		}
		info, err := decodeInfo(in)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func decodeLinks(m node) ([]*votable.Link, error) {
	var out []*votable.Link
	for _, lm := range list(m, "links") {
		ln, ok := lm.(map[string]any)
		if !ok {
			return nil, verr.Custom("LINK: not an object")
		}
		out = append(out, &votable.Link{
			ID:          str(ln, "ID"),
			ContentRole: str(ln, "content_role"),
			ContentType: str(ln, "content_type"),
			Title:       str(ln, "title"),
			Value:       str(ln, "value"),
			Href:        str(ln, "href"),
			Actuate:     str(ln, "actuate"),
			Content:     str(ln, "content"),
			Extras: extrasFrom(ln, "ID", "content_role", "content_type",
				"title", "value", "href", "actuate", "content"),
		})
	}
	return out, nil
}

var fieldKeys = []string{"elem_type", "ID", "name", "datatype", "unit", "ucd",
	"utype", "ref", "width", "precision", "arraysize", "value",
	"description", "values", "links"}

func decodeFieldInto(m node, f *votable.Field, elem string) error {
	name, err := reqStr(m, "name", elem)
	if err != nil {
		return err
	}
	dts, err := reqStr(m, "datatype", elem)
	if err != nil {
		return err
	}
	dt, err := votable.ParseDatatype(dts)
	if err != nil {
		return err
	}
	f.Name = name
	f.Datatype = dt
	f.ID = str(m, "ID")
	f.Unit = str(m, "unit")
	f.UCD = str(m, "ucd")
	f.UType = str(m, "utype")
	f.Ref = str(m, "ref")
	f.Precision = str(m, "precision")
	f.Extras = extrasFrom(m, fieldKeys...)
	if w, ok := m["width"]; ok {
		n, err := strconv.Atoi(asString(w))
		if err != nil {
			return verr.Customf("%s %q: bad width %q", elem, name, asString(w))
		}
		f.Width = &n
	}
	if as, ok := m["arraysize"]; ok {
		sz, err := votable.ParseArraySize(asString(as))
		if err != nil {
			return err
		}
		f.ArraySize = sz
	}
	if d, ok := m["description"]; ok {
		f.Description = &votable.Description{Content: asString(d)}
	}
	if vm := sub(m, "values"); vm != nil {
		vals, err := decodeValues(vm)
		if err != nil {
			return err
		}
		f.Values = vals
	}
	if f.Links, err = decodeLinks(m); err != nil {
		return err
	}
	return nil
}

func decodeField(m node) (*votable.Field, error) {
	f := &votable.Field{}
	if err := decodeFieldInto(m, f, "FIELD"); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeParam(m node) (*votable.Param, error) {
	p := &votable.Param{}
	if err := decodeFieldInto(m, &p.Field, "PARAM"); err != nil {
		return nil, err
	}
	v, err := reqStr(m, "value", "PARAM")
	if err != nil {
		return nil, err
	}
	p.Value = v
	return p, nil
}

func decodeValues(m node) (*votable.Values, error) {
	v := &votable.Values{
		ID:     str(m, "ID"),
		Type:   str(m, "type"),
		Null:   str(m, "null"),
		Ref:    str(m, "ref"),
		Extras: extrasFrom(m, "ID", "type", "null", "ref", "min", "max", "opts"),
	}
	if bm := sub(m, "min"); bm != nil {
		val, err := reqStr(bm, "value", "MIN")
		if err != nil {
			return nil, err
		}
		v.Min = &votable.Min{Value: val, Inclusive: boundInclusive(bm),
			Extras: extrasFrom(bm, "value", "inclusive")}
	}
	if bm := sub(m, "max"); bm != nil {
		val, err := reqStr(bm, "value", "MAX")
		if err != nil {
			return nil, err
		}
		v.Max = &votable.Max{Value: val, Inclusive: boundInclusive(bm),
			Extras: extrasFrom(bm, "value", "inclusive")}
	}
	var err error
	if v.Options, err = decodeOptions(m); err != nil {
		return nil, err
	}
	return v, nil
}

func boundInclusive(m node) bool {
	v, ok := m["inclusive"]
	if !ok {
		return true
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return asString(v) != "no" && asString(v) != "false"
}

func decodeOptions(m node) ([]*votable.Option, error) {
	var out []*votable.Option
	for _, om := range list(m, "opts") {
		on, ok := om.(map[string]any)
		if !ok {
			return nil, verr.Custom("OPTION: not an object")
		}
		val, err := reqStr(on, "value", "OPTION")
		if err != nil {
			return nil, err
		}
		o := &votable.Option{Name: str(on, "name"), Value: val,
			Extras: extrasFrom(on, "name", "value", "opts")}
		if o.Options, err = decodeOptions(on); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

var groupKeys = []string{"elem_type", "ID", "name", "ref", "ucd", "utype",
	"description", "elems"}

func decodeGroup(m node) (*votable.Group, error) {
	g := &votable.Group{
		ID: str(m, "ID"), Name: str(m, "name"), Ref: str(m, "ref"),
		UCD: str(m, "ucd"), UType: str(m, "utype"),
		Extras: extrasFrom(m, groupKeys...),
	}
	if d, ok := m["description"]; ok {
		g.Description = &votable.Description{Content: asString(d)}
	}
	for _, em := range list(m, "elems") {
		el, err := decodeMetaElem(em)
		if err != nil {
			return nil, err
		}
		ge, ok := el.(votable.GroupElem)
		if !ok {
			return nil, verr.Customf("GROUP: unexpected child %T", el)
		}
		g.Elems = append(g.Elems, ge)
	}
	return g, nil
}

func decodeTableGroup(m node) (*votable.TableGroup, error) {
	g := &votable.TableGroup{
		ID: str(m, "ID"), Name: str(m, "name"), Ref: str(m, "ref"),
		UCD: str(m, "ucd"), UType: str(m, "utype"),
		Extras: extrasFrom(m, groupKeys...),
	}
	if d, ok := m["description"]; ok {
		g.Description = &votable.Description{Content: asString(d)}
	}
	for _, em := range list(m, "elems") {
		el, err := decodeMetaElem(em)
		if err != nil {
			return nil, err
		}
		ge, ok := el.(votable.TableGroupElem)
		if !ok {
			return nil, verr.Customf("GROUP: unexpected child %T", el)
		}
		g.Elems = append(g.Elems, ge)
	}
	return g, nil
}

func decodeResource(m node) (*votable.Resource, error) {
	r := &votable.Resource{
		ID: str(m, "ID"), Name: str(m, "name"),
		Type: str(m, "type"), UType: str(m, "utype"),
		Extras: extrasFrom(m, "elem_type", "ID", "name", "type", "utype",
			"description", "infos", "elems", "links", "sub_elems", "post_infos"),
	}
	if d, ok := m["description"]; ok {
		r.Description = &votable.Description{Content: asString(d)}
	}
	var err error
	if r.Infos, err = decodeInfos(m, "infos"); err != nil {
		return nil, err
	}
	for _, em := range list(m, "elems") {
		el, err := decodeMetaElem(em)
		if err != nil {
			return nil, err
		}
		re, ok := el.(votable.ResourceElem)
		if !ok {
			return nil, verr.Customf("RESOURCE: unexpected child %T", el)
		}
		r.Elems = append(r.Elems, re)
	}
	if r.Links, err = decodeLinks(m); err != nil {
		return nil, err
	}
	for _, sm := range list(m, "sub_elems") {
		sn, ok := sm.(map[string]any)
		if !ok {
			return nil, verr.Custom("RESOURCE: sub element not an object")
		}
		switch t := str(sn, "elem_type"); t {
		case "Resource":
			sr, err := decodeResource(sn)
			if err != nil {
				return nil, err
			}
			r.Subs = append(r.Subs, sr)
		case "Table":
			tb, err := decodeTable(sn)
			if err != nil {
				return nil, err
			}
			r.Subs = append(r.Subs, tb)
		default:
			return nil, verr.Customf("RESOURCE: unknown sub elem_type %q", t)
		}
	}
	if r.PostInfos, err = decodeInfos(m, "post_infos"); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeTable(m node) (*votable.Table, error) {
	t := &votable.Table{
		ID: str(m, "ID"), Name: str(m, "name"), UCD: str(m, "ucd"),
		UType: str(m, "utype"), Ref: str(m, "ref"), NRows: str(m, "nrows"),
		Extras: extrasFrom(m, "elem_type", "ID", "name", "ucd", "utype", "ref",
			"nrows", "description", "elems", "links", "data", "post_infos"),
	}
	if d, ok := m["description"]; ok {
		t.Description = &votable.Description{Content: asString(d)}
	}
	for _, em := range list(m, "elems") {
		el, err := decodeMetaElem(em)
		if err != nil {
			return nil, err
		}
		te, ok := el.(votable.TableElem)
		if !ok {
			return nil, verr.Customf("TABLE: unexpected child %T", el)
		}
		t.Elems = append(t.Elems, te)
	}
	var err error
	if t.Links, err = decodeLinks(m); err != nil {
		return nil, err
	}
	if dm := sub(m, "data"); dm != nil {
		if t.Data, err = decodeData(dm, t); err != nil {
			return nil, err
		}
	}
	if t.PostInfos, err = decodeInfos(m, "post_infos"); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeData(m node, t *votable.Table) (*votable.Data, error) {
	d := &votable.Data{
		Extras: extrasFrom(m, "data_type", "rows", "bytes", "stream", "extnum"),
	}
	content, err := decodeContent(m, t)
	if err != nil {
		return nil, err
	}
	switch dt := str(m, "data_type"); dt {
	case "TableData", "":
		d.Variant = &votable.TableData{Content: content}
	case "Binary":
		d.Variant = &votable.Binary{Stream: decodeStream(m), Content: content}
	case "Binary2":
		d.Variant = &votable.Binary2{Stream: decodeStream(m), Content: content}
	case "Fits":
		d.Variant = &votable.Fits{ExtNum: str(m, "extnum"), Stream: decodeStream(m)}
	default:
		return nil, verr.Customf("unknown data_type %q", dt)
	}
	return d, nil
}

func decodeContent(m node, t *votable.Table) (votable.TableContent, error) {
	if b, ok := m["bytes"]; ok {
		raw, err := base64.StdEncoding.DecodeString(asString(b))
		if err != nil {
			return nil, verr.Customf("DATA: bad base64 payload: %v", err)
		}
		return &votable.RawBytes{Bytes: raw}, nil
	}
	rl, ok := m["rows"].([]any)
	if !ok {
		return nil, nil
	}
	codec, err := schema.CompileRowCodec(t)
	if err != nil {
		return nil, err
	}
	rows := make([][]votable.Value, 0, len(rl))
	for i, rm := range rl {
		cl, ok := rm.([]any)
		if !ok {
			return nil, verr.Customf("row %d: not an array", i)
		}
		cells := make([]string, 0, len(cl))
		for _, c := range cl {
			cells = append(cells, cellToken(c))
		}
		row, err := codec.DecodeTDs(cells)
		if err != nil {
			return nil, verr.Customf("row %d: %v", i, err)
		}
		rows = append(rows, row)
	}
	return &votable.TableRows{Rows: rows}, nil
}

// cellToken renders a projected cell value back into the textual token
// grammar so the typed decoder re-coerces it against the field schema.
func cellToken(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case bool:
		if n {
			return "T"
		}
		return "F"
	case []any:
		toks := make([]string, 0, len(n))
		for _, e := range n {
			toks = append(toks, cellToken(e))
		}
		return strings.Join(toks, " ")
	case string:
		return n
	case json.Number:
		return n.String()
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}

func decodeStream(m node) votable.Stream {
	sm := sub(m, "stream")
	if sm == nil {
		return votable.Stream{}
	}
	return votable.Stream{
		Type:     str(sm, "type"),
		Href:     str(sm, "href"),
		Actuate:  str(sm, "actuate"),
		Encoding: str(sm, "encoding"),
		Expires:  str(sm, "expires"),
		Rights:   str(sm, "rights"),
		Extras: extrasFrom(sm, "type", "href", "actuate", "encoding",
			"expires", "rights"),
	}
}

func decodeVodml(m node) (*mivot.Vodml, error) {
	v := &mivot.Vodml{}
	if rm := sub(m, "report"); rm != nil {
		status, err := reqStr(rm, "status", "REPORT")
		if err != nil {
			return nil, err
		}
		v.Report = &mivot.Report{Status: status, Content: str(rm, "content")}
	}
	for _, mm := range list(m, "models") {
		mn, ok := mm.(map[string]any)
		if !ok {
			return nil, verr.Custom("MODEL: not an object")
		}
		name, err := reqStr(mn, "name", "MODEL")
		if err != nil {
			return nil, err
		}
		v.Models = append(v.Models, &mivot.Model{Name: name, URL: str(mn, "url")})
	}
	if gm := sub(m, "globals"); gm != nil {
		g := &mivot.Globals{}
		for _, em := range list(gm, "elems") {
			el, err := decodeMivotElem(em)
			if err != nil {
				return nil, err
			}
			ge, ok := el.(mivot.GlobalsElem)
			if !ok {
				return nil, verr.Customf("GLOBALS: unexpected child %T", el)
			}
			g.Elems = append(g.Elems, ge)
		}
		v.Globals = g
	}
	for _, tm := range list(m, "templates") {
		tn, ok := tm.(map[string]any)
		if !ok {
			return nil, verr.Custom("TEMPLATES: not an object")
		}
		t := &mivot.Templates{TableRef: str(tn, "tableref")}
		var err error
		if t.Wheres, err = decodeWheres(tn); err != nil {
			return nil, err
		}
		for _, im := range list(tn, "instances") {
			in, ok := im.(map[string]any)
			if !ok {
				return nil, verr.Custom("INSTANCE: not an object")
			}
			inst, err := decodeInstance(in)
			if err != nil {
				return nil, err
			}
			t.Instances = append(t.Instances, inst)
		}
		v.Templates = append(v.Templates, t)
	}
	return v, nil
}

func decodeMivotElem(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, verr.Custom("annotation element: not an object")
	}
	switch t := str(m, "elem_type"); t {
	case "Instance":
		return decodeInstance(m)
	case "Collection":
		return decodeCollection(m)
	case "Attribute":
		return decodeAttribute(m)
	case "Reference":
		return decodeReference(m)
	case "Join":
		j := &mivot.Join{Dmref: str(m, "dmref"), SourceRef: str(m, "sourceref")}
		var err error
		if j.Wheres, err = decodeWheres(m); err != nil {
			return nil, err
		}
		return j, nil
	case "PrimaryKey":
		dmtype, err := reqStr(m, "dmtype", "PRIMARY_KEY")
		if err != nil {
			return nil, err
		}
		return &mivot.PrimaryKey{Dmtype: dmtype, Value: str(m, "value"), Ref: str(m, "ref")}, nil
	default:
		return nil, verr.Customf("unknown annotation elem_type %q", t)
	}
}

func decodeInstance(m node) (*mivot.Instance, error) {
	dmtype, err := reqStr(m, "dmtype", "INSTANCE")
	if err != nil {
		return nil, err
	}
	in := &mivot.Instance{Dmid: str(m, "dmid"), Dmrole: str(m, "dmrole"), Dmtype: dmtype}
	for _, em := range list(m, "elems") {
		el, err := decodeMivotElem(em)
		if err != nil {
			return nil, err
		}
		ie, ok := el.(mivot.InstanceElem)
		if !ok {
			return nil, verr.Customf("INSTANCE: unexpected child %T", el)
		}
		in.Elems = append(in.Elems, ie)
	}
	return in, nil
}

func decodeCollection(m node) (*mivot.Collection, error) {
	c := &mivot.Collection{Dmid: str(m, "dmid"), Dmrole: str(m, "dmrole")}
	for _, em := range list(m, "elems") {
		el, err := decodeMivotElem(em)
		if err != nil {
			return nil, err
		}
		ce, ok := el.(mivot.CollectionElem)
		if !ok {
			return nil, verr.Customf("COLLECTION: unexpected child %T", el)
		}
		c.Elems = append(c.Elems, ce)
	}
	return c, nil
}

func decodeAttribute(m node) (*mivot.Attribute, error) {
	dmtype, err := reqStr(m, "dmtype", "ATTRIBUTE")
	if err != nil {
		return nil, err
	}
	a := &mivot.Attribute{Dmrole: str(m, "dmrole"), Dmtype: dmtype, Unit: str(m, "unit")}
	if v, ok := m["value"]; ok {
		s := asString(v)
		a.Value = &s
	}
	if v, ok := m["ref"]; ok {
		s := asString(v)
		a.Ref = &s
	}
	if v, ok := m["arrayindex"]; ok {
		n, err := strconv.Atoi(asString(v))
		if err != nil || n < 0 {
			return nil, verr.Customf("ATTRIBUTE: bad arrayindex %q", asString(v))
		}
		a.ArrayIndex = &n
	}
	return a, nil
}

func decodeReference(m node) (*mivot.Reference, error) {
	r := &mivot.Reference{
		Dmrole:    str(m, "dmrole"),
		Dmref:     str(m, "dmref"),
		SourceRef: str(m, "sourceref"),
	}
	for _, fm := range list(m, "foreign_keys") {
		fn, ok := fm.(map[string]any)
		if !ok {
			return nil, verr.Custom("FOREIGN_KEY: not an object")
		}
		ref, err := reqStr(fn, "ref", "FOREIGN_KEY")
		if err != nil {
			return nil, err
		}
		r.ForeignKeys = append(r.ForeignKeys, &mivot.ForeignKey{Ref: ref})
	}
	return r, nil
}

func decodeWheres(m node) ([]*mivot.Where, error) {
	var out []*mivot.Where
	for _, wm := range list(m, "wheres") {
		wn, ok := wm.(map[string]any)
		if !ok {
			return nil, verr.Custom("WHERE: not an object")
		}
		out = append(out, &mivot.Where{
			PrimaryKey: str(wn, "primarykey"),
			ForeignKey: str(wn, "foreignkey"),
			Value:      str(wn, "value"),
		})
	}
	return out, nil
}
