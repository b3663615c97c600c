package main

import (
	"io"

	"github.com/spf13/cobra"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/verr"
	"github.com/astrogo/votable/votfmt"
	"github.com/astrogo/votable/votxml"
)

// The xml-* formats select the row encoding on output; on input they all
// read plain XML.
const (
	fmtXML     = "xml"
	fmtXMLTD   = "xml-td"
	fmtXMLBin  = "xml-bin"
	fmtXMLBin2 = "xml-bin2"
)

func newConvertCmd() *cobra.Command {
	var (
		in, inFmt   string
		out, outFmt string
		pretty      bool
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Read a document in one format and write it in another",
		Long: "Read a document in one format and write it in another.\n" +
			"Formats: xml, xml-td, xml-bin, xml-bin2, json, yaml, toml.\n" +
			"The xml-* output formats additionally convert the row encoding.\n" +
			"TOML has no null literal, so null cells do not survive a toml round trip.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vot, err := readDocument(in, inFmt)
			if err != nil {
				return err
			}
			return writeDocument(vot, out, outFmt, pretty)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input path, - for stdin")
	cmd.Flags().StringVar(&inFmt, "in-fmt", fmtXML, "input format")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path, - for stdout")
	cmd.Flags().StringVar(&outFmt, "out-fmt", fmtXML, "output format")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the output")
	return cmd
}

func readDocument(path, format string) (*votable.VOTable, error) {
	r, done, err := openInput(path)
	if err != nil {
		return nil, verr.IO(err)
	}
	defer done()
	switch format {
	case fmtXML, fmtXMLTD, fmtXMLBin, fmtXMLBin2:
		return votxml.Parse(r)
	default:
		f, err := votfmt.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		return votfmt.Unmarshal(r, f)
	}
}

func writeDocument(vot *votable.VOTable, path, format string, pretty bool) error {
	w, done, err := openOutput(path)
	if err != nil {
		return verr.IO(err)
	}
	if err := emitDocument(w, vot, format, pretty); err != nil {
		done()
		return err
	}
	if err := done(); err != nil {
		return verr.IO(err)
	}
	return nil
}

func emitDocument(w io.Writer, vot *votable.VOTable, format string, pretty bool) error {
	switch format {
	case fmtXML:
		return votxml.Write(w, vot, pretty)
	case fmtXMLTD:
		return convertAndWrite(w, vot, votxml.ToTableData, pretty)
	case fmtXMLBin:
		return convertAndWrite(w, vot, votxml.ToBinary, pretty)
	case fmtXMLBin2:
		return convertAndWrite(w, vot, votxml.ToBinary2, pretty)
	default:
		f, err := votfmt.ParseFormat(format)
		if err != nil {
			return err
		}
		return votfmt.Marshal(w, vot, f, pretty)
	}
}

func convertAndWrite(w io.Writer, vot *votable.VOTable, target string, pretty bool) error {
	if err := votxml.ConvertEncoding(vot, target); err != nil {
		return err
	}
	return votxml.Write(w, vot, pretty)
}
