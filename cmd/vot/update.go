package main

import (
	"github.com/spf13/cobra"

	"github.com/astrogo/votable/verr"
	"github.com/astrogo/votable/visitors"
)

func newUpdateCmd() *cobra.Command {
	var (
		in, out string
		exprs   []string
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit elements selected by tag and condition",
		Long: "Edit elements selected by tag and condition.\n" +
			"Each -e expression is 'TAG COND ACTION [ARGS]' with COND one of\n" +
			"vid=, id= or name=, and ACTION one of rm, set_attrs k=v...,\n" +
			"set_content TEXT or set_desc TEXT.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(exprs) == 0 {
				return verr.Custom("no -e expression given")
			}
			rules := make([]*visitors.Rule, 0, len(exprs))
			for _, e := range exprs {
				rule, err := visitors.ParseRule(e)
				if err != nil {
					return err
				}
				rules = append(rules, rule)
			}
			vot, err := readDocument(in, fmtXML)
			if err != nil {
				return err
			}
			if err := visitors.NewUpdater(rules).Apply(vot); err != nil {
				return err
			}
			return writeDocument(vot, out, fmtXML, pretty)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input path, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path, - for stdout")
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "edit expression, repeatable")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the output")
	return cmd
}
