package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/construct"
	"github.com/reoring/trafo/i18n"
	"github.com/reoring/trafo/observe"
)

var errInvalid = errors.New("document is invalid")

type checkFlags struct {
	schemaPath string
	allowExtra bool
	flat       bool
	withValue  bool
	lang       string
	metrics    bool
}

// fileResult is one entry of the report printed when several files are
// checked.
type fileResult struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Value  any    `json:"value,omitempty"`
	Errors any    `json:"errors,omitempty"`
}

func newCheckCmd(opts *options) *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check --schema schema.json [file...]",
		Short: "Validate documents against a schema file",
		Long: `The schema is a JSON or YAML document: strings name types
(any, null, bool, string, text, int, float, uuid, datetime, url) and a
leading "=" makes the rest a literal ("=user"), objects declare keys
("name?" is optional), one-element arrays are lists and longer arrays
tuples. On success the converted document is printed; on failure the
error tree is printed and the command exits non-zero.

With several files they are checked concurrently and a JSON array with one
result per file is printed in argument order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.schemaPath == "" {
				return fmt.Errorf("--schema is required")
			}
			c, err := loadSchema(cmd, opts, f)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			reg := prometheus.NewRegistry()
			c = observe.NewCollector(reg).Wrap(f.schemaPath, observe.Logged(opts.logger, f.schemaPath, c))

			if len(args) > 1 {
				err = checkMany(ctx, cmd, opts, f, c, args)
			} else {
				err = checkOne(ctx, cmd, opts, f, c, argOrStdin(args))
			}
			if f.metrics {
				if merr := writeMetrics(cmd, reg); merr != nil {
					return merr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&f.schemaPath, "schema", "s", "", "schema file (JSON or YAML)")
	cmd.Flags().BoolVar(&f.allowExtra, "allow-extra", false, "accept keys the top-level schema does not declare")
	cmd.Flags().BoolVar(&f.flat, "flat", false, "print errors as a plain field -> message tree")
	cmd.Flags().BoolVar(&f.withValue, "with-value", false, "include offending values in error messages")
	cmd.Flags().StringVar(&f.lang, "lang", "", "message language (en, ja)")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "print check metrics to stderr in the Prometheus text format")
	return cmd
}

func loadSchema(cmd *cobra.Command, opts *options, f checkFlags) (trafo.Checker, error) {
	doc, err := readDocument(cmd, opts, f.schemaPath)
	if err != nil {
		return nil, err
	}
	c, err := construct.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	if d, ok := c.(*trafo.DictValidator); ok && f.allowExtra {
		c = d.AllowExtra(trafo.AnyName)
	}
	return c, nil
}

func checkOne(ctx context.Context, cmd *cobra.Command, opts *options, f checkFlags, c trafo.Checker, path string) error {
	v, err := readDocument(cmd, opts, path)
	if err != nil {
		return err
	}
	out, derr := c.Validate(ctx, v)
	if derr == nil {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	if err := writeJSON(cmd.OutOrStdout(), f.report(derr)); err != nil {
		return err
	}
	return errInvalid
}

func checkMany(ctx context.Context, cmd *cobra.Command, opts *options, f checkFlags, c trafo.Checker, paths []string) error {
	if slices.Contains(paths, "-") {
		return fmt.Errorf("stdin cannot be combined with other files")
	}
	results := make([]fileResult, len(paths))
	var invalid atomic.Bool

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		eg.Go(func() error {
			v, err := readDocument(cmd, opts, path)
			if err != nil {
				return err
			}
			out, derr := c.Validate(egCtx, v)
			if derr != nil {
				invalid.Store(true)
				results[i] = fileResult{File: path, Errors: f.report(derr)}
				return nil
			}
			results[i] = fileResult{File: path, Valid: true, Value: out}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	if invalid.Load() {
		return errInvalid
	}
	return nil
}

func (f checkFlags) report(derr *trafo.Error) any {
	if f.lang != "" {
		derr = derr.Translate(i18n.Dictionary(f.lang))
	}
	if f.flat {
		return derr.AsDict(f.withValue)
	}
	return derr.ToStruct(f.withValue)
}

func writeMetrics(cmd *cobra.Command, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}
