// Package votfmt projects a document tree onto generic key/value trees and
// serializes them as JSON, YAML or TOML. The projection mirrors the XML
// structure: repeatable children become arrays whose entries carry an
// "elem_type" discriminator, the DATA variant carries a "data_type"
// discriminator, and attribute values stay strings.
package votfmt

import (
	"io"
	"strings"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/verr"
)

// Format selects the serialization of the projected tree.
type Format uint8

const (
	JSON Format = iota
	YAML
	TOML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	}
	return "unknown"
}

// ParseFormat recognizes "json", "yaml" and "toml" (case insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return JSON, verr.Customf("unknown format %q", s)
}

// Marshal writes the document in the given format. The tree is wrapped in
// a single "votable" key so the root is self-describing.
func Marshal(w io.Writer, vot *votable.VOTable, f Format, pretty bool) error {
	tree := map[string]any{"votable": encodeVOTable(vot)}
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(tree); err != nil {
			return verr.Customf("encode json: %v", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return verr.Customf("encode yaml: %v", err)
		}
		if err := enc.Close(); err != nil {
			return verr.Customf("encode yaml: %v", err)
		}
	case TOML:
		if err := toml.NewEncoder(w).Encode(tree); err != nil {
			return verr.Customf("encode toml: %v", err)
		}
	default:
		return verr.Customf("unknown format %d", f)
	}
	return nil
}

// Unmarshal reads a tree produced by Marshal back into a document. Typed
// rows are re-coerced through the field schemas of their table.
func Unmarshal(r io.Reader, f Format) (*votable.VOTable, error) {
	var tree map[string]any
	switch f {
	case JSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&tree); err != nil {
			return nil, verr.Customf("decode json: %v", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
			return nil, verr.Customf("decode yaml: %v", err)
		}
	case TOML:
		if err := toml.NewDecoder(r).Decode(&tree); err != nil {
			return nil, verr.Customf("decode toml: %v", err)
		}
	default:
		return nil, verr.Customf("unknown format %d", f)
	}
	root, ok := tree["votable"].(map[string]any)
	if !ok {
		return nil, verr.Custom(`missing top-level "votable" object`)
	}
	return decodeVOTable(root)
}
