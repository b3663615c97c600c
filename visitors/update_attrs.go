package visitors

import (
	"strconv"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/verr"
)

// nullValue in a set_attrs argument removes the attribute.
const nullValue = "null"

// setOrClear assigns a plain string attribute, treating "null" as removal.
func setOrClear(dst *string, val string) {
	if val == nullValue {
		*dst = ""
	} else {
		*dst = val
	}
}

func setExtra(ex *votable.Extras, key, val string) {
	if val == nullValue {
		ex.Delete(key)
	} else {
		ex.Set(key, val)
	}
}

// applyFieldAttr handles the keys shared by FIELD and PARAM. Returns false
// when the key is not one of them.
func applyFieldAttr(f *votable.Field, key, val string) (bool, error) {
	switch key {
	case "ID":
		setOrClear(&f.ID, val)
	case "name":
		setOrClear(&f.Name, val)
	case "unit":
		setOrClear(&f.Unit, val)
	case "ucd":
		setOrClear(&f.UCD, val)
	case "utype":
		setOrClear(&f.UType, val)
	case "ref":
		setOrClear(&f.Ref, val)
	case "precision":
		setOrClear(&f.Precision, val)
	case "datatype":
		dt, err := votable.ParseDatatype(val)
		if err != nil {
			return true, err
		}
		f.Datatype = dt
	case "arraysize":
		if val == nullValue {
			f.ArraySize = nil
			return true, nil
		}
		a, err := votable.ParseArraySize(val)
		if err != nil {
			return true, err
		}
		f.ArraySize = a
	case "width":
		if val == nullValue {
			f.Width = nil
			return true, nil
		}
		w, err := strconv.Atoi(val)
		if err != nil {
			return true, verr.ValueGrammar("FIELD", "width", val, err)
		}
		f.Width = &w
	default:
		return false, nil
	}
	return true, nil
}

// applyAttrs edits the attributes of a matched element.
func applyAttrs(tag Tag, node any, attrs [][2]string) error {
	for _, kv := range attrs {
		key, val := kv[0], kv[1]
		switch n := node.(type) {
		case *votable.VOTable:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "version":
				setOrClear(&n.Version, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Resource:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "name":
				setOrClear(&n.Name, val)
			case "type":
				setOrClear(&n.Type, val)
			case "utype":
				setOrClear(&n.UType, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Table:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "name":
				setOrClear(&n.Name, val)
			case "ucd":
				setOrClear(&n.UCD, val)
			case "utype":
				setOrClear(&n.UType, val)
			case "ref":
				setOrClear(&n.Ref, val)
			case "nrows":
				setOrClear(&n.NRows, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Field:
			ok, err := applyFieldAttr(n, key, val)
			if err != nil {
				return err
			}
			if !ok {
				setExtra(&n.Extras, key, val)
			}
		case *votable.Param:
			if key == "value" {
				setOrClear(&n.Value, val)
				continue
			}
			ok, err := applyFieldAttr(&n.Field, key, val)
			if err != nil {
				return err
			}
			if !ok {
				setExtra(&n.Extras, key, val)
			}
		case *votable.CooSys:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "equinox":
				setOrClear(&n.Equinox, val)
			case "epoch":
				setOrClear(&n.Epoch, val)
			case "system":
				setOrClear(&n.System, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.TimeSys:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "timeorigin":
				setOrClear(&n.TimeOrigin, val)
			case "timescale":
				setOrClear(&n.TimeScale, val)
			case "refposition":
				setOrClear(&n.RefPosition, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Info:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "name":
				setOrClear(&n.Name, val)
			case "value":
				setOrClear(&n.Value, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Link:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "content-role":
				setOrClear(&n.ContentRole, val)
			case "content-type":
				setOrClear(&n.ContentType, val)
			case "title":
				setOrClear(&n.Title, val)
			case "value":
				setOrClear(&n.Value, val)
			case "href":
				setOrClear(&n.Href, val)
			case "actuate":
				setOrClear(&n.Actuate, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Group:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "name":
				setOrClear(&n.Name, val)
			case "ref":
				setOrClear(&n.Ref, val)
			case "ucd":
				setOrClear(&n.UCD, val)
			case "utype":
				setOrClear(&n.UType, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.TableGroup:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "name":
				setOrClear(&n.Name, val)
			case "ref":
				setOrClear(&n.Ref, val)
			case "ucd":
				setOrClear(&n.UCD, val)
			case "utype":
				setOrClear(&n.UType, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Values:
			switch key {
			case "ID":
				setOrClear(&n.ID, val)
			case "type":
				setOrClear(&n.Type, val)
			case "null":
				setOrClear(&n.Null, val)
			case "ref":
				setOrClear(&n.Ref, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Min:
			switch key {
			case "value":
				setOrClear(&n.Value, val)
			case "inclusive":
				n.Inclusive = val != "no"
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Max:
			switch key {
			case "value":
				setOrClear(&n.Value, val)
			case "inclusive":
				n.Inclusive = val != "no"
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Option:
			switch key {
			case "name":
				setOrClear(&n.Name, val)
			case "value":
				setOrClear(&n.Value, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.FieldRef:
			switch key {
			case "ref":
				setOrClear(&n.Ref, val)
			case "ucd":
				setOrClear(&n.UCD, val)
			case "utype":
				setOrClear(&n.UType, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.ParamRef:
			switch key {
			case "ref":
				setOrClear(&n.Ref, val)
			case "ucd":
				setOrClear(&n.UCD, val)
			case "utype":
				setOrClear(&n.UType, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Stream:
			switch key {
			case "type":
				setOrClear(&n.Type, val)
			case "href":
				setOrClear(&n.Href, val)
			case "actuate":
				setOrClear(&n.Actuate, val)
			case "encoding":
				setOrClear(&n.Encoding, val)
			case "expires":
				setOrClear(&n.Expires, val)
			case "rights":
				setOrClear(&n.Rights, val)
			default:
				setExtra(&n.Extras, key, val)
			}
		case *votable.Data:
			setExtra(&n.Extras, key, val)
		default:
			return verr.Customf("%s does not support set_attrs", tag)
		}
	}
	return nil
}

// setContent replaces the text content of a text-bearing element.
func setContent(tag Tag, node any, content string) error {
	switch n := node.(type) {
	case *votable.Description:
		n.Content = content
	case *votable.Info:
		n.Content = content
	case *votable.Link:
		n.Content = content
	default:
		return verr.Customf("%s does not support set_content", tag)
	}
	return nil
}

// setDesc replaces (or installs) the DESCRIPTION of a container.
func setDesc(tag Tag, node any, content string) error {
	d := &votable.Description{Content: content}
	switch n := node.(type) {
	case *votable.VOTable:
		n.Description = d
	case *votable.Resource:
		n.Description = d
	case *votable.Table:
		n.Description = d
	case *votable.Field:
		n.Description = d
	case *votable.Param:
		n.Description = d
	case *votable.Group:
		n.Description = d
	case *votable.TableGroup:
		n.Description = d
	default:
		return verr.Customf("%s does not support set_desc", tag)
	}
	return nil
}
