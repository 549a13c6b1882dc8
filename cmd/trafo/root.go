package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/trafo/internal/logging"
)

type options struct {
	logLevel string
	format   string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{logger: logging.NewNop()}
	cmd := &cobra.Command{
		Use:   "trafo",
		Short: "trafo validates and reshapes JSON and YAML documents",
		Long: `trafo checks documents against small schema files and converts between
nested documents and the flat key form used by HTML forms.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			opts.logger = logging.NewWriter(cmd.ErrOrStderr(), lvl)
			return nil
		},
	}
	// Persistent flags (available to all commands)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "auto", "input format: json, yaml or auto (by file extension)")

	cmd.AddCommand(
		newFoldCmd(opts),
		newUnfoldCmd(opts),
		newDecodeCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}
