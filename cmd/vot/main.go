// Command vot converts, inspects, edits and indexes VOTable documents.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	logrus.SetOutput(os.Stderr)
	root := &cobra.Command{
		Use:           "vot",
		Short:         "VOTable toolbox: convert, query, edit and index documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newConvertCmd(),
		newGetCmd(),
		newUpdateCmd(),
		newHcidxCmd(),
		newQhcidxCmd(),
	)
	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// openInput maps "-" onto stdin.
func openInput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// openOutput maps "-" onto stdout.
func openOutput(path string) (*os.File, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
