package visitors

import (
	"fmt"
	"io"
	"strings"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/mivot"
)

const indentUnit = "  "

// linePrinter lays out one element as `TAG vid=… k=v …`, wrapping onto an
// extra-indented continuation line when attributes or content overflow the
// line width. Overflowing items are truncated with a trailing ellipsis.
type linePrinter struct {
	w          io.Writer
	width      int // usable width, the newline excluded
	indent     string
	tag        string
	vid        string
	attrs      []string
	content    string
	hasContent bool
	contentMin int
}

func newLinePrinter(w io.Writer, lineWidth int, indent, tag, vid string, contentMin int) *linePrinter {
	return &linePrinter{
		w:          w,
		width:      lineWidth - 1,
		indent:     indent,
		tag:        tag,
		vid:        vid,
		contentMin: contentMin,
	}
}

func (lp *linePrinter) pairs(ps []pair) {
	for _, p := range ps {
		lp.attrs = append(lp.attrs, p.k+"="+p.v)
	}
}

func (lp *linePrinter) setContent(content string) {
	lp.content = content
	lp.hasContent = true
}

func (lp *linePrinter) print() error {
	s := lp.indent + lp.tag + " vid=" + lp.vid
	queue := lp.attrs
	for len(queue) > 0 {
		kv := queue[0]
		queue = queue[1:]
		maxLen := lp.width - len(s) - 1
		if len(kv) <= maxLen {
			s += " " + kv
			continue
		}
		// fill the line with later attributes that still fit
		for maxLen >= 3 {
			picked := -1
			for i, cand := range queue {
				if len(cand) <= maxLen {
					picked = i
					break
				}
			}
			if picked < 0 {
				break
			}
			s += "; " + queue[picked]
			queue = append(queue[:picked:picked], queue[picked+1:]...)
			maxLen = lp.width - len(s) - 1
		}
		if _, err := fmt.Fprintln(lp.w, s); err != nil {
			return err
		}
		s = lp.indent + indentUnit
		maxLen = lp.width - len(s)
		if len(kv) <= maxLen {
			s += kv
		} else {
			s += kv[:maxLen-3] + "..."
		}
	}
	if lp.hasContent {
		content := "content=" + strings.Join(strings.Fields(strings.ReplaceAll(strings.TrimSpace(lp.content), "\n", "\\n")), " ")
		maxLen := lp.width - len(s) - 1
		switch {
		case len(content) <= maxLen:
			s += " " + content
		case lp.contentMin <= maxLen:
			s += " " + content[:maxLen-3] + "..."
		default:
			if _, err := fmt.Fprintln(lp.w, s); err != nil {
				return err
			}
			s = lp.indent + indentUnit
			maxLen = lp.width - len(s)
			if len(content) <= maxLen {
				s += content
			} else {
				s += content[:maxLen-3] + "..."
			}
		}
	}
	_, err := fmt.Fprintln(lp.w, s)
	return err
}

// StructPrinter writes an ASCII outline of a document: one line per
// element carrying its virtual ID, attributes and trimmed content.
type StructPrinter struct {
	votable.BaseVisitor
	w          io.Writer
	lineWidth  int
	contentMin int
	depth      int
	trk        *Tracker
}

// NewStructPrinter builds a printer bounded to lineWidth columns;
// contentMin is the smallest acceptable inline `content=` rendering before
// it moves to its own line.
func NewStructPrinter(w io.Writer, lineWidth, contentMin int) *StructPrinter {
	return &StructPrinter{w: w, lineWidth: lineWidth, contentMin: contentMin, trk: NewTracker()}
}

// Print walks the document and writes its outline.
func (p *StructPrinter) Print(vot *votable.VOTable) error {
	return votable.Walk(p, vot)
}

func (p *StructPrinter) indent() string {
	return strings.Repeat(indentUnit, p.depth)
}

// enter prints a container line and descends.
func (p *StructPrinter) enter(tag Tag, ps []pair) error {
	indent := p.indent()
	p.depth++
	vid := p.trk.Enter(tag)
	lp := newLinePrinter(p.w, p.lineWidth, indent, tag.String(), vid, p.contentMin)
	lp.pairs(ps)
	return lp.print()
}

func (p *StructPrinter) leave() error {
	p.depth--
	p.trk.Leave()
	return nil
}

// leaf prints a childless element line.
func (p *StructPrinter) leaf(tag Tag, ps []pair, content string, hasContent bool) error {
	vid := p.trk.Leaf(tag)
	lp := newLinePrinter(p.w, p.lineWidth, p.indent(), tag.String(), vid, p.contentMin)
	lp.pairs(ps)
	if hasContent && content != "" {
		lp.setContent(content)
	}
	return lp.print()
}

func (p *StructPrinter) VisitVOTable(v *votable.VOTable) error {
	var ps []pair
	ps = pushPair(ps, "ID", v.ID)
	ps = pushPair(ps, "version", v.Version)
	ps = pushExtras(ps, v.Extras)
	return p.enter(TagVOTable, ps)
}
func (p *StructPrinter) LeaveVOTable(*votable.VOTable) error { return p.leave() }

func (p *StructPrinter) VisitDescription(d *votable.Description) error {
	vid := p.trk.Leaf(TagDescription)
	lp := newLinePrinter(p.w, p.lineWidth, p.indent(), TagDescription.String(), vid, p.contentMin)
	lp.setContent(d.Content)
	return lp.print()
}

func (p *StructPrinter) VisitDefinitions(*votable.Definitions) error {
	return p.enter(TagDefinitions, nil)
}
func (p *StructPrinter) LeaveDefinitions(*votable.Definitions) error { return p.leave() }

func (p *StructPrinter) VisitCooSys(cs *votable.CooSys) error {
	return p.enter(TagCooSys, cooSysPairs(cs))
}
func (p *StructPrinter) LeaveCooSys(*votable.CooSys) error { return p.leave() }

func (p *StructPrinter) VisitTimeSys(ts *votable.TimeSys) error {
	return p.leaf(TagTimeSys, timeSysPairs(ts), "", false)
}

func (p *StructPrinter) VisitInfo(info *votable.Info) error {
	return p.leaf(TagInfo, infoPairs(info), info.Content, true)
}

func (p *StructPrinter) VisitLink(l *votable.Link) error {
	return p.leaf(TagLink, linkPairs(l), l.Content, true)
}

func (p *StructPrinter) VisitField(f *votable.Field) error {
	return p.enter(TagField, fieldPairs(f.ID, f))
}
func (p *StructPrinter) LeaveField(*votable.Field) error { return p.leave() }

func (p *StructPrinter) VisitParam(pa *votable.Param) error {
	ps := fieldPairs(pa.ID, &pa.Field)
	ps = append(ps, pair{"value", pa.Value})
	return p.enter(TagParam, ps)
}
func (p *StructPrinter) LeaveParam(*votable.Param) error { return p.leave() }

func (p *StructPrinter) VisitValues(v *votable.Values) error {
	return p.enter(TagValues, valuesPairs(v))
}
func (p *StructPrinter) LeaveValues(*votable.Values) error { return p.leave() }

func (p *StructPrinter) VisitMin(m *votable.Min) error {
	ps := []pair{{"value", m.Value}}
	if !m.Inclusive {
		ps = append(ps, pair{"inclusive", "no"})
	}
	return p.leaf(TagMin, pushExtras(ps, m.Extras), "", false)
}

func (p *StructPrinter) VisitMax(m *votable.Max) error {
	ps := []pair{{"value", m.Value}}
	if !m.Inclusive {
		ps = append(ps, pair{"inclusive", "no"})
	}
	return p.leaf(TagMax, pushExtras(ps, m.Extras), "", false)
}

func (p *StructPrinter) VisitOption(o *votable.Option) error {
	var ps []pair
	ps = pushPair(ps, "name", o.Name)
	ps = append(ps, pair{"value", o.Value})
	ps = pushExtras(ps, o.Extras)
	return p.enter(TagOption, ps)
}
func (p *StructPrinter) LeaveOption(*votable.Option) error { return p.leave() }

func (p *StructPrinter) VisitFieldRef(fr *votable.FieldRef) error {
	return p.leaf(TagFieldRef, refPairs(fr.Ref, fr.UCD, fr.UType, fr.Extras), "", false)
}

func (p *StructPrinter) VisitParamRef(pr *votable.ParamRef) error {
	return p.leaf(TagParamRef, refPairs(pr.Ref, pr.UCD, pr.UType, pr.Extras), "", false)
}

func (p *StructPrinter) VisitGroup(g *votable.Group) error {
	return p.enter(TagGroup, groupPairs(g.ID, g.Name, g.Ref, g.UCD, g.UType, g.Extras))
}
func (p *StructPrinter) LeaveGroup(*votable.Group) error { return p.leave() }

func (p *StructPrinter) VisitTableGroup(g *votable.TableGroup) error {
	return p.enter(TagGroup, groupPairs(g.ID, g.Name, g.Ref, g.UCD, g.UType, g.Extras))
}
func (p *StructPrinter) LeaveTableGroup(*votable.TableGroup) error { return p.leave() }

func (p *StructPrinter) VisitResource(r *votable.Resource) error {
	var ps []pair
	ps = pushPair(ps, "ID", r.ID)
	ps = pushPair(ps, "name", r.Name)
	ps = pushPair(ps, "type", r.Type)
	ps = pushPair(ps, "utype", r.UType)
	ps = pushExtras(ps, r.Extras)
	return p.enter(TagResource, ps)
}
func (p *StructPrinter) LeaveResource(*votable.Resource) error { return p.leave() }

func (p *StructPrinter) VisitTable(t *votable.Table) error {
	var ps []pair
	ps = pushPair(ps, "ID", t.ID)
	ps = pushPair(ps, "name", t.Name)
	ps = pushPair(ps, "ucd", t.UCD)
	ps = pushPair(ps, "utype", t.UType)
	ps = pushPair(ps, "ref", t.Ref)
	ps = pushPair(ps, "nrows", t.NRows)
	ps = pushExtras(ps, t.Extras)
	return p.enter(TagTable, ps)
}
func (p *StructPrinter) LeaveTable(*votable.Table) error { return p.leave() }

func (p *StructPrinter) VisitData(d *votable.Data) error {
	if err := p.enter(TagData, nil); err != nil {
		return err
	}
	if d.Variant == nil {
		return nil
	}
	line := p.indent() + d.Variant.VariantTag()
	if f, ok := d.Variant.(*votable.Fits); ok && f.ExtNum != "" {
		line += " extnum=" + f.ExtNum
	}
	p.depth++
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p *StructPrinter) LeaveData(*votable.Data) error {
	p.depth--
	return p.leave()
}

func (p *StructPrinter) VisitStream(s *votable.Stream) error {
	return p.leaf(TagStream, streamPairs(s), "", false)
}

func (p *StructPrinter) VisitVodml(v *mivot.Vodml) error {
	vid := p.trk.Leaf(TagVodml)
	lp := newLinePrinter(p.w, p.lineWidth, p.indent(), TagVodml.String(), vid, p.contentMin)
	var models []string
	for _, m := range v.Models {
		models = append(models, m.Name)
	}
	if len(models) > 0 {
		lp.pairs([]pair{{"models", strings.Join(models, ",")}})
	}
	return lp.print()
}
