// Package votable models IVOA VOTable documents: the full metadata tree
// (RESOURCE, TABLE, FIELD, PARAM, GROUP, VALUES, coordinate and time
// systems), typed table cells, and a visitor over the tree.
//
// The package splits roughly along the document's own seams:
//
//   - the root package holds the element structs and the Value cell type;
//   - votxml parses and writes the XML form, in whole-document and
//     streaming row-at-a-time flavors, and converts between the
//     TABLEDATA, BINARY and BINARY2 encodings;
//   - schema compiles a table's FIELD list into a row codec shared by all
//     three encodings;
//   - votfmt projects the tree onto JSON, YAML and TOML;
//   - mivot handles the VODML annotation block;
//   - rowiter iterates rows with their source byte ranges;
//   - hcidx builds and queries the HEALPix cumulative byte index of a
//     cell-sorted document;
//   - visitors and cmd/vot provide the inspection and editing tooling.
//
// Element structs keep attribute values as strings, the way they appear in
// the XML; only table cells are typed. Unknown attributes survive round
// trips through the Extras list every element carries.
package votable
