package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/trafo/formdata"
)

func newFoldCmd(opts *options) *cobra.Command {
	var (
		prefix string
		delims []string
	)
	cmd := &cobra.Command{
		Use:   "fold [file]",
		Short: "Rebuild a nested document from flat form keys",
		Long:  `Reads an object with keys like "items__0__name" and prints the nested document.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readDocument(cmd, opts, argOrStdin(args))
			if err != nil {
				return err
			}
			flat, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("fold: input must be an object")
			}
			tree, err := formdata.Fold(flat, prefix, delims...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tree)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "return only the subtree under this key")
	cmd.Flags().StringSliceVar(&delims, "delim", []string{formdata.Delimiter}, "key segment delimiters")
	return cmd
}

func newUnfoldCmd(opts *options) *cobra.Command {
	var prefix, delim string
	cmd := &cobra.Command{
		Use:   "unfold [file]",
		Short: "Flatten a nested document into form keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readDocument(cmd, opts, argOrStdin(args))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), formdata.Unfold(v, prefix, delim))
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "prefix for every produced key")
	cmd.Flags().StringVar(&delim, "delim", formdata.Delimiter, "key segment delimiter")
	return cmd
}
