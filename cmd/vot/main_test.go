package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/hcidx"
	"github.com/astrogo/votable/votxml"
)

const cliDoc = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE name="stars">
      <FIELD ID="RA" name="RA" datatype="double" ucd="pos.eq.ra;meta.main"/>
      <FIELD name="Dec" datatype="double" ucd="pos.eq.dec;meta.main"/>
      <DATA>
        <TABLEDATA>
          <TR><TD>83.633</TD><TD>22.0145</TD></TR>
        </TABLEDATA>
      </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>
`

func writeInput(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "in.vot")
	require.NoError(t, os.WriteFile(path, []byte(cliDoc), 0o644))
	return dir, path
}

func run(t *testing.T, cmd *cobra.Command, args ...string) {
	t.Helper()
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
}

func parseFile(t *testing.T, path string) *votable.VOTable {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	vot, err := votxml.Parse(f)
	require.NoError(t, err)
	return vot
}

func TestConvertThroughJSON(t *testing.T) {
	dir, in := writeInput(t)
	jsonPath := filepath.Join(dir, "out.json")
	run(t, newConvertCmd(), "--in", in, "--out", jsonPath, "--out-fmt", "json")

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimSpace(string(raw)), `{"votable":`))

	xmlPath := filepath.Join(dir, "back.vot")
	run(t, newConvertCmd(), "--in", jsonPath, "--in-fmt", "json", "--out", xmlPath)

	vot := parseFile(t, xmlPath)
	tbl := vot.Resources[0].Subs[0].(*votable.Table)
	rows := tbl.Data.Rows()
	require.Len(t, rows, 1)
	require.True(t, rows[0][0].Equal(votable.Double(83.633)))
}

func TestConvertToBinary2(t *testing.T) {
	dir, in := writeInput(t)
	out := filepath.Join(dir, "out.vot")
	run(t, newConvertCmd(), "--in", in, "--out", out, "--out-fmt", "xml-bin2")

	vot := parseFile(t, out)
	tbl := vot.Resources[0].Subs[0].(*votable.Table)
	require.Equal(t, votxml.ToBinary2, tbl.Data.Variant.VariantTag())
	require.Len(t, tbl.Data.Rows(), 1)
}

func TestUpdateCommand(t *testing.T) {
	dir, in := writeInput(t)
	out := filepath.Join(dir, "out.vot")
	run(t, newUpdateCmd(), "--in", in, "--out", out,
		"-e", "FIELD id=RA set_attrs unit=deg")

	vot := parseFile(t, out)
	f := vot.Resources[0].Subs[0].(*votable.Table).Fields()[0]
	require.Equal(t, "deg", f.Unit)
}

func TestUpdateRequiresExpression(t *testing.T) {
	_, in := writeInput(t)
	cmd := newUpdateCmd()
	cmd.SetArgs([]string{"--in", in, "--out", "-"})
	require.Error(t, cmd.Execute())
}

func TestHcidxCommand(t *testing.T) {
	dir, in := writeInput(t)
	idx := filepath.Join(dir, "in.hci")
	run(t, newHcidxCmd(), "--in", in, "--out", idx, "--depth", "2")

	x, err := hcidx.ReadFile(idx)
	require.NoError(t, err)
	require.EqualValues(t, 2, x.Depth)
	require.Equal(t, "in.vot", x.FName)
	require.Equal(t, "RA", x.LonCol)
	require.Equal(t, "Dec", x.LatCol)
	require.EqualValues(t, len(cliDoc), x.SrcLen)
}
