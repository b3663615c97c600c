package visitors

import (
	"strings"

	"github.com/sirupsen/logrus"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
	"github.com/astrogo/votable/verr"
)

var log = logrus.WithField("component", "visitors")

type condKind uint8

const (
	condVID condKind = iota
	condID
	condName
)

// Condition selects elements by virtual ID, by ID attribute or by name
// attribute.
type Condition struct {
	Kind  condKind
	Value string
}

func parseCondition(s string) (Condition, error) {
	key, val, ok := strings.Cut(s, "=")
	if !ok {
		return Condition{}, verr.Customf("no '=' in condition %q", s)
	}
	switch key {
	case "vid":
		return Condition{condVID, val}, nil
	case "id":
		return Condition{condID, val}, nil
	case "name":
		return Condition{condName, val}, nil
	}
	return Condition{}, verr.Customf("condition %q not recognized, want one of vid, id, name", key)
}

func (c Condition) match(vid, id, name string) bool {
	switch c.Kind {
	case condVID:
		return vid == c.Value
	case condID:
		return id != "" && id == c.Value
	case condName:
		return name != "" && name == c.Value
	}
	return false
}

type actionKind uint8

const (
	actRm actionKind = iota
	actSetAttrs
	actSetContent
	actSetDesc
)

// Action is what an update rule does to a matched element.
type Action struct {
	Kind  actionKind
	Attrs [][2]string // set_attrs; value "null" removes the attribute
	Value string      // set_content / set_desc
}

func parseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "rm" {
		return Action{Kind: actRm}, nil
	}
	verb, args, ok := strings.Cut(s, " ")
	if !ok {
		return Action{}, verr.Customf("action %q not recognized, want one of rm, set_attrs, set_content, set_desc", s)
	}
	args = strings.TrimSpace(args)
	switch verb {
	case "set_attrs":
		var attrs [][2]string
		for _, tok := range strings.Fields(args) {
			k, v, ok := strings.Cut(tok, "=")
			if !ok {
				return Action{}, verr.Customf("set_attrs argument %q is not key=value", tok)
			}
			attrs = append(attrs, [2]string{k, v})
		}
		if len(attrs) == 0 {
			return Action{}, verr.Custom("set_attrs needs at least one key=value")
		}
		return Action{Kind: actSetAttrs, Attrs: attrs}, nil
	case "set_content":
		return Action{Kind: actSetContent, Value: args}, nil
	case "set_desc", "set_description":
		return Action{Kind: actSetDesc, Value: args}, nil
	}
	return Action{}, verr.Customf("action %q not recognized, want one of rm, set_attrs, set_content, set_desc", verb)
}

// Rule is one `TAG CONDITION ACTION [ARGS…]` update directive, e.g.
// `FIELD id=RA set_attrs ucd=pos.eq.ra;meta.main unit=deg`.
type Rule struct {
	Tag    Tag
	Cond   Condition
	Action Action
}

func ParseRule(s string) (*Rule, error) {
	s = strings.TrimSpace(s)
	tagStr, rem, ok := strings.Cut(s, " ")
	if !ok {
		return nil, verr.Customf("rule %q lacks a condition and an action", s)
	}
	tag, err := ParseTag(tagStr)
	if err != nil {
		return nil, err
	}
	condStr, actStr, ok := strings.Cut(strings.TrimSpace(rem), " ")
	if !ok {
		return nil, verr.Customf("rule %q lacks an action", s)
	}
	cond, err := parseCondition(condStr)
	if err != nil {
		return nil, err
	}
	act, err := parseAction(actStr)
	if err != nil {
		return nil, err
	}
	return &Rule{Tag: tag, Cond: cond, Action: act}, nil
}

// Updater applies update rules to a document: attribute, content and
// description edits happen during the walk; removals are collected by
// element identity and pruned from the tree afterwards.
type Updater struct {
	votable.BaseVisitor
	byTag     [numTags][]*Rule
	trk       *Tracker
	condemned map[any]bool
}

func NewUpdater(rules []*Rule) *Updater {
	u := &Updater{trk: NewTracker(), condemned: make(map[any]bool)}
	for _, r := range rules {
		u.byTag[r.Tag] = append(u.byTag[r.Tag], r)
	}
	return u
}

// Apply runs the rules over the document.
func (u *Updater) Apply(vot *votable.VOTable) error {
	if err := votable.Walk(u, vot); err != nil {
		return err
	}
	u.pruneVOTable(vot)
	return nil
}

// apply runs the matching rules of tag against a node.
func (u *Updater) apply(tag Tag, vid string, node any, id, name string) error {
	for _, r := range u.byTag[tag] {
		if !r.Cond.match(vid, id, name) {
			continue
		}
		log.Debugf("rule %s %s matched vid=%s", tag, actionName(r.Action.Kind), vid)
		switch r.Action.Kind {
		case actRm:
			if tag == TagVOTable {
				return verr.Custom("VOTABLE cannot be removed")
			}
			if tag == TagStream {
				log.Warnf("STREAM is mandatory in its data block, rm ignored for vid=%s", vid)
				continue
			}
			u.condemned[node] = true
		case actSetAttrs:
			if err := applyAttrs(tag, node, r.Action.Attrs); err != nil {
				return err
			}
		case actSetContent:
			if err := setContent(tag, node, r.Action.Value); err != nil {
				return err
			}
		case actSetDesc:
			if err := setDesc(tag, node, r.Action.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func actionName(k actionKind) string {
	switch k {
	case actRm:
		return "rm"
	case actSetAttrs:
		return "set_attrs"
	case actSetContent:
		return "set_content"
	}
	return "set_desc"
}

func (u *Updater) VisitVOTable(v *votable.VOTable) error {
	return u.apply(TagVOTable, u.trk.Enter(TagVOTable), v, v.ID, "")
}
func (u *Updater) LeaveVOTable(*votable.VOTable) error { u.trk.Leave(); return nil }

func (u *Updater) VisitDescription(d *votable.Description) error {
	return u.apply(TagDescription, u.trk.Leaf(TagDescription), d, "", "")
}

func (u *Updater) VisitDefinitions(d *votable.Definitions) error {
	return u.apply(TagDefinitions, u.trk.Enter(TagDefinitions), d, "", "")
}
func (u *Updater) LeaveDefinitions(*votable.Definitions) error { u.trk.Leave(); return nil }

func (u *Updater) VisitCooSys(cs *votable.CooSys) error {
	return u.apply(TagCooSys, u.trk.Enter(TagCooSys), cs, cs.ID, "")
}
func (u *Updater) LeaveCooSys(*votable.CooSys) error { u.trk.Leave(); return nil }

func (u *Updater) VisitTimeSys(ts *votable.TimeSys) error {
	return u.apply(TagTimeSys, u.trk.Leaf(TagTimeSys), ts, ts.ID, "")
}

func (u *Updater) VisitInfo(info *votable.Info) error {
	return u.apply(TagInfo, u.trk.Leaf(TagInfo), info, info.ID, info.Name)
}

func (u *Updater) VisitLink(l *votable.Link) error {
	return u.apply(TagLink, u.trk.Leaf(TagLink), l, l.ID, "")
}

func (u *Updater) VisitField(f *votable.Field) error {
	return u.apply(TagField, u.trk.Enter(TagField), f, f.ID, f.Name)
}
func (u *Updater) LeaveField(*votable.Field) error { u.trk.Leave(); return nil }

func (u *Updater) VisitParam(p *votable.Param) error {
	return u.apply(TagParam, u.trk.Enter(TagParam), p, p.ID, p.Name)
}
func (u *Updater) LeaveParam(*votable.Param) error { u.trk.Leave(); return nil }

func (u *Updater) VisitValues(v *votable.Values) error {
	return u.apply(TagValues, u.trk.Enter(TagValues), v, v.ID, "")
}
func (u *Updater) LeaveValues(*votable.Values) error { u.trk.Leave(); return nil }

func (u *Updater) VisitMin(m *votable.Min) error {
	return u.apply(TagMin, u.trk.Leaf(TagMin), m, "", "")
}

func (u *Updater) VisitMax(m *votable.Max) error {
	return u.apply(TagMax, u.trk.Leaf(TagMax), m, "", "")
}

func (u *Updater) VisitOption(o *votable.Option) error {
	return u.apply(TagOption, u.trk.Enter(TagOption), o, "", o.Name)
}
func (u *Updater) LeaveOption(*votable.Option) error { u.trk.Leave(); return nil }

func (u *Updater) VisitFieldRef(fr *votable.FieldRef) error {
	return u.apply(TagFieldRef, u.trk.Leaf(TagFieldRef), fr, "", "")
}

func (u *Updater) VisitParamRef(pr *votable.ParamRef) error {
	return u.apply(TagParamRef, u.trk.Leaf(TagParamRef), pr, "", "")
}

func (u *Updater) VisitGroup(g *votable.Group) error {
	return u.apply(TagGroup, u.trk.Enter(TagGroup), g, g.ID, g.Name)
}
func (u *Updater) LeaveGroup(*votable.Group) error { u.trk.Leave(); return nil }

func (u *Updater) VisitTableGroup(g *votable.TableGroup) error {
	return u.apply(TagGroup, u.trk.Enter(TagGroup), g, g.ID, g.Name)
}
func (u *Updater) LeaveTableGroup(*votable.TableGroup) error { u.trk.Leave(); return nil }

func (u *Updater) VisitResource(r *votable.Resource) error {
	return u.apply(TagResource, u.trk.Enter(TagResource), r, r.ID, r.Name)
}
func (u *Updater) LeaveResource(*votable.Resource) error { u.trk.Leave(); return nil }

func (u *Updater) VisitTable(t *votable.Table) error {
	return u.apply(TagTable, u.trk.Enter(TagTable), t, t.ID, t.Name)
}
func (u *Updater) LeaveTable(*votable.Table) error { u.trk.Leave(); return nil }

func (u *Updater) VisitData(d *votable.Data) error {
	return u.apply(TagData, u.trk.Enter(TagData), d, "", "")
}
func (u *Updater) LeaveData(*votable.Data) error { u.trk.Leave(); return nil }

func (u *Updater) VisitStream(s *votable.Stream) error {
	return u.apply(TagStream, u.trk.Leaf(TagStream), s, "", "")
}

func (u *Updater) VisitVodml(v *mivot.Vodml) error {
	return u.apply(TagVodml, u.trk.Leaf(TagVodml), v, "", "")
}
