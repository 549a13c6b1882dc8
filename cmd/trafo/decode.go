package main

import (
	"github.com/spf13/cobra"
)

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a JSON or YAML document and print it as JSON",
		Long: `Decodes the input strictly (duplicate keys and trailing data are errors)
and prints the normalized document as indented JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readDocument(cmd, opts, argOrStdin(args))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
}
