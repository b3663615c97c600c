package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/astrogo/votable/hcidx"
)

func newHcidxCmd() *cobra.Command {
	var (
		in, out  string
		lon, lat string
		depth    uint8
	)
	cmd := &cobra.Command{
		Use:   "hcidx",
		Short: "Build the cumulative cell index of a sorted TABLEDATA document",
		Long: "Build the cumulative cell index of a sorted TABLEDATA document.\n" +
			"The input must be sorted by ascending cell number at the chosen\n" +
			"depth. Longitude and latitude columns are auto-discovered from\n" +
			"UCDs and names unless given explicitly; both are decimal degrees.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := hcidx.BuildFile(in, hcidx.BuildOptions{
				LonCol: lon,
				LatCol: lat,
				Depth:  depth,
			})
			if err != nil {
				return err
			}
			return x.WriteFile(out)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "input VOTable path")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output index path")
	cmd.Flags().StringVarP(&lon, "lon", "l", "", "longitude column name")
	cmd.Flags().StringVarP(&lat, "lat", "b", "", "latitude column name")
	cmd.Flags().Uint8Var(&depth, "depth", hcidx.DefaultDepth, "index depth")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newQhcidxCmd() *cobra.Command {
	var (
		in    string
		depth uint8
		ipix  uint64
	)
	cmd := &cobra.Command{
		Use:   "qhcidx",
		Short: "Extract the sub-document of one cell from an indexed VOTable",
		Long: "Extract the sub-document of one cell from an indexed VOTable.\n" +
			"The indexed file is looked up next to the index under the name\n" +
			"recorded at build time; the cell document is written to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return hcidx.Query(in, depth, ipix, os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "input index path")
	cmd.Flags().Uint8Var(&depth, "depth", 0, "depth of the queried cell")
	cmd.Flags().Uint64Var(&ipix, "ipix", 0, "index of the queried cell")
	cmd.MarkFlagRequired("in")
	return cmd
}
