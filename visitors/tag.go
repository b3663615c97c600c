// Package visitors holds the document-tree visitors behind the CLI: the
// structure printer, the column-name lister, the field attribute array and
// the metadata updater. They share a virtual-ID scheme addressing any
// element of a document by its path of tags and sibling ordinals.
package visitors

import (
	"github.com/astrogo/votable/verr"
)

// Tag enumerates the element kinds a virtual ID or an update rule can name.
type Tag uint8

const (
	TagVOTable Tag = iota
	TagResource
	TagTable
	TagData
	TagField
	TagParam
	TagGroup
	TagValues
	TagOption
	TagCooSys
	TagDefinitions
	TagDescription
	TagTimeSys
	TagInfo
	TagLink
	TagFieldRef
	TagParamRef
	TagMin
	TagMax
	TagStream
	TagVodml
	numTags
)

var tagNames = [numTags]string{
	"VOTABLE", "RESOURCE", "TABLE", "DATA", "FIELD", "PARAM", "GROUP",
	"VALUES", "OPTION", "COOSYS", "DEFINITION", "DESCRIPTION", "TIMESYS",
	"INFO", "LINK", "FIELDRef", "PARAMRef", "MIN", "MAX", "STREAM", "VODML",
}

// Virtual-ID letters. Container tags are upper case, childless tags lower
// case; 'D' stands for the document itself, 'n'/'x' are the final letters
// of MIN and MAX (both start with 'm').
var tagChars = [numTags]byte{
	'D', 'R', 'T', 'A', 'F', 'P', 'G',
	'V', 'O', 'C', 'E', 'd', 't',
	'i', 'l', 'f', 'p', 'n', 'x', 's', 'M',
}

// Tags never repeated inside their parent: they carry no sibling ordinal.
var tagSingleton = [numTags]bool{
	TagVOTable:     true,
	TagData:        true,
	TagValues:      true,
	TagDescription: true,
	TagMin:         true,
	TagMax:         true,
	TagStream:      true,
	TagVodml:       true,
}

func (t Tag) String() string { return tagNames[t] }
func (t Tag) Char() byte     { return tagChars[t] }

// Repeatable reports whether instances of the tag are numbered in VIDs.
func (t Tag) Repeatable() bool { return !tagSingleton[t] }

// ParseTag resolves an element name as used in update rules.
func ParseTag(s string) (Tag, error) {
	for i, name := range tagNames {
		if name == s {
			return Tag(i), nil
		}
	}
	return 0, verr.Customf("tag %q not recognized", s)
}
