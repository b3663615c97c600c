package votxml

import (
	"bufio"
	"bytes"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/schema"
	"github.com/astrogo/votable/verr"
)

// Target row encodings for ConvertEncoding.
const (
	ToTableData = "TABLEDATA"
	ToBinary    = "BINARY"
	ToBinary2   = "BINARY2"
)

// ConvertEncoding rewrites the data variant of every table in the
// document to the target row encoding. Rows survive untouched; an opaque
// binary payload is decoded against the table schema first. FITS tables
// are left alone since their payload lives outside the document.
func ConvertEncoding(vot *votable.VOTable, target string) error {
	switch target {
	case ToTableData, ToBinary, ToBinary2:
	default:
		return verr.Customf("unknown target encoding %q", target)
	}
	for _, r := range vot.Resources {
		if err := convertResource(r, target); err != nil {
			return err
		}
	}
	return nil
}

func convertResource(r *votable.Resource, target string) error {
	for _, sub := range r.Subs {
		switch n := sub.(type) {
		case *votable.Resource:
			if err := convertResource(n, target); err != nil {
				return err
			}
		case *votable.Table:
			if err := convertTable(n, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func convertTable(t *votable.Table, target string) error {
	if t.Data == nil {
		return nil
	}
	if _, ok := t.Data.Variant.(*votable.Fits); ok {
		return nil
	}
	if t.Data.Variant != nil && t.Data.Variant.VariantTag() == target {
		return nil
	}
	content, err := materialize(t)
	if err != nil {
		return err
	}
	switch target {
	case ToTableData:
		t.Data.Variant = &votable.TableData{Content: content}
	case ToBinary:
		t.Data.Variant = &votable.Binary{Content: content}
	case ToBinary2:
		t.Data.Variant = &votable.Binary2{Content: content}
	}
	return nil
}

// materialize returns the table content as decoded rows, running the row
// codec over an opaque payload if needed.
func materialize(t *votable.Table) (votable.TableContent, error) {
	var content votable.TableContent
	var binary2 bool
	switch v := t.Data.Variant.(type) {
	case *votable.TableData:
		content = v.Content
	case *votable.Binary:
		content = v.Content
	case *votable.Binary2:
		content = v.Content
		binary2 = true
	case nil:
		return nil, nil
	}
	raw, ok := content.(*votable.RawBytes)
	if !ok {
		return content, nil
	}
	codec, err := schema.CompileRowCodec(t)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRawRows(bufio.NewReader(bytes.NewReader(raw.Bytes)), codec, binary2)
	if err != nil {
		return nil, err
	}
	return &votable.TableRows{Rows: rows}, nil
}
