package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/trafo/source"
)

// readDocument decodes path ("-" or empty for stdin) as JSON or YAML.
func readDocument(cmd *cobra.Command, opts *options, path string) (any, error) {
	var (
		data []byte
		err  error
		name = path
	)
	if path == "" || path == "-" {
		name = "stdin"
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	format, err := formatFor(opts.format, path)
	if err != nil {
		return nil, err
	}
	opts.logger.Debug("decoding input", "source", name, "format", format, "bytes", len(data))
	var v any
	switch format {
	case "yaml":
		v, err = source.YAML(data)
	default:
		v, err = source.JSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

func formatFor(flag, path string) (string, error) {
	switch strings.ToLower(flag) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "", "auto":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return "yaml", nil
		}
		return "json", nil
	}
	return "", fmt.Errorf("unknown format %q", flag)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func argOrStdin(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}
