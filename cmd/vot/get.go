package main

import (
	"os"

	"github.com/spf13/cobra"

	votable "github.com/astrogo/votable"
	"github.com/astrogo/votable/rowiter"
	"github.com/astrogo/votable/verr"
	"github.com/astrogo/votable/visitors"
	"github.com/astrogo/votable/votxml"
)

func newGetCmd() *cobra.Command {
	var (
		in        string
		earlyStop bool
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print structural views of a document",
	}
	cmd.PersistentFlags().StringVarP(&in, "in", "i", "-", "input path, - for stdin")
	cmd.PersistentFlags().BoolVarP(&earlyStop, "early-stop", "s", false,
		"stop reading at the first table data, skipping the rows")

	var lineWidth, contentMin int
	structCmd := &cobra.Command{
		Use:   "struct",
		Short: "Print the element tree with virtual identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vot, err := loadForGet(in, earlyStop)
			if err != nil {
				return err
			}
			if lineWidth < 80 {
				lineWidth = 80
			}
			if contentMin > lineWidth/2 {
				contentMin = lineWidth / 2
			}
			return visitors.NewStructPrinter(os.Stdout, lineWidth, contentMin).Print(vot)
		},
	}
	structCmd.Flags().IntVarP(&lineWidth, "line-width", "w", 120, "maximum output line width")
	structCmd.Flags().IntVarP(&contentMin, "content-min", "c", 30,
		"minimum visible content length before truncation")

	var sep string
	colnamesCmd := &cobra.Command{
		Use:   "colnames",
		Short: "Print the column names of each table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vot, err := loadForGet(in, earlyStop)
			if err != nil {
				return err
			}
			return visitors.NewColnamesPrinter(os.Stdout, sep).Print(vot)
		},
	}
	colnamesCmd.Flags().StringVar(&sep, "separator", "▮", "column name separator")

	var faSep string
	var align bool
	fieldsCmd := &cobra.Command{
		Use:   "fields-array",
		Short: "Print the field metadata of each table as an array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vot, err := loadForGet(in, earlyStop)
			if err != nil {
				return err
			}
			return visitors.NewFieldArrayPrinter(os.Stdout, faSep, align).Print(vot)
		},
	}
	fieldsCmd.Flags().StringVar(&faSep, "separator", " ", "cell separator")
	fieldsCmd.Flags().BoolVar(&align, "align", true, "pad cells to align columns")

	cmd.AddCommand(structCmd, colnamesCmd, fieldsCmd)
	return cmd
}

// loadForGet reads the whole document, or only the metadata up to the
// first table data when earlyStop is set.
func loadForGet(path string, earlyStop bool) (*votable.VOTable, error) {
	r, done, err := openInput(path)
	if err != nil {
		return nil, verr.IO(err)
	}
	defer done()
	if earlyStop {
		return rowiter.ReadMetadata(r)
	}
	return votxml.Parse(r)
}
