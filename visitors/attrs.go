package visitors

import (
	"strconv"

	votable "github.com/astrogo/votable"
)

// pair is one key=value attribute.
type pair struct{ k, v string }

func pushPair(ps []pair, k, v string) []pair {
	if v == "" {
		return ps
	}
	return append(ps, pair{k, v})
}

func pushExtras(ps []pair, ex votable.Extras) []pair {
	for _, at := range ex {
		ps = append(ps, pair{at.Name, at.Value})
	}
	return ps
}

// fieldPairs lists the set attributes of a FIELD or PARAM in serialization
// order.
func fieldPairs(id string, f *votable.Field) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", id)
	ps = pushPair(ps, "name", f.Name)
	ps = pushPair(ps, "datatype", f.Datatype.String())
	if f.ArraySize != nil {
		ps = pushPair(ps, "arraysize", f.ArraySize.String())
	}
	ps = pushPair(ps, "unit", f.Unit)
	ps = pushPair(ps, "ucd", f.UCD)
	ps = pushPair(ps, "utype", f.UType)
	ps = pushPair(ps, "ref", f.Ref)
	if f.Width != nil {
		ps = pushPair(ps, "width", strconv.Itoa(*f.Width))
	}
	ps = pushPair(ps, "precision", f.Precision)
	return pushExtras(ps, f.Extras)
}

func cooSysPairs(cs *votable.CooSys) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", cs.ID)
	ps = pushPair(ps, "system", cs.System)
	ps = pushPair(ps, "equinox", cs.Equinox)
	ps = pushPair(ps, "epoch", cs.Epoch)
	return pushExtras(ps, cs.Extras)
}

func timeSysPairs(ts *votable.TimeSys) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", ts.ID)
	ps = pushPair(ps, "timeorigin", ts.TimeOrigin)
	ps = pushPair(ps, "timescale", ts.TimeScale)
	ps = pushPair(ps, "refposition", ts.RefPosition)
	return pushExtras(ps, ts.Extras)
}

func groupPairs(id, name, ref, ucd, utype string, ex votable.Extras) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", id)
	ps = pushPair(ps, "name", name)
	ps = pushPair(ps, "ref", ref)
	ps = pushPair(ps, "ucd", ucd)
	ps = pushPair(ps, "utype", utype)
	return pushExtras(ps, ex)
}

func infoPairs(info *votable.Info) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", info.ID)
	ps = pushPair(ps, "name", info.Name)
	ps = append(ps, pair{"value", info.Value})
	return pushExtras(ps, info.Extras)
}

func linkPairs(l *votable.Link) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", l.ID)
	ps = pushPair(ps, "content-role", l.ContentRole)
	ps = pushPair(ps, "content-type", l.ContentType)
	ps = pushPair(ps, "title", l.Title)
	ps = pushPair(ps, "value", l.Value)
	ps = pushPair(ps, "href", l.Href)
	ps = pushPair(ps, "actuate", l.Actuate)
	return pushExtras(ps, l.Extras)
}

func valuesPairs(v *votable.Values) []pair {
	var ps []pair
	ps = pushPair(ps, "ID", v.ID)
	ps = pushPair(ps, "type", v.Type)
	ps = pushPair(ps, "null", v.Null)
	ps = pushPair(ps, "ref", v.Ref)
	return pushExtras(ps, v.Extras)
}

func streamPairs(s *votable.Stream) []pair {
	var ps []pair
	ps = pushPair(ps, "type", s.Type)
	ps = pushPair(ps, "href", s.Href)
	ps = pushPair(ps, "actuate", s.Actuate)
	ps = pushPair(ps, "encoding", s.Encoding)
	ps = pushPair(ps, "expires", s.Expires)
	ps = pushPair(ps, "rights", s.Rights)
	return pushExtras(ps, s.Extras)
}

func refPairs(ref, ucd, utype string, ex votable.Extras) []pair {
	ps := []pair{{"ref", ref}}
	ps = pushPair(ps, "ucd", ucd)
	ps = pushPair(ps, "utype", utype)
	return pushExtras(ps, ex)
}
