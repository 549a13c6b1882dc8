// Package source decodes untrusted JSON and YAML documents into plain Go
// trees ready for validation: map[string]any, []any, string, bool, nil and
// numbers (float64, json.Number with UseNumber, int64 for YAML integers).
package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTrailingData is returned when input continues after the first
// top-level JSON value.
var ErrTrailingData = errors.New("source: unexpected data after top-level value")

// ErrEmpty is returned for input without any value.
var ErrEmpty = errors.New("source: empty input")

// ErrSyntax is returned for malformed JSON.
var ErrSyntax = errors.New("source: invalid JSON")

// ErrAliasCycle is returned for a YAML alias that refers to a node
// containing it.
var ErrAliasCycle = errors.New("source: yaml alias refers to itself")

// ErrAliasExpansion is returned when expanding YAML aliases would make the
// document excessively large.
var ErrAliasExpansion = errors.New("source: yaml document contains excessive aliasing")

// DuplicateKeyError reports a key repeated inside one object. Line and Col
// are 1-based and only known for YAML input.
type DuplicateKeyError struct {
	Key       string
	Path      string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("source: duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("source: duplicate key %q at %s", e.Key, e.Path)
}

// Option tunes decoding.
type Option func(*options)

type options struct {
	numbers    bool
	duplicates bool
}

// UseNumber keeps JSON numbers as json.Number instead of float64.
func UseNumber() Option { return func(o *options) { o.numbers = true } }

// AllowDuplicateKeys lets a repeated key overwrite the earlier value instead
// of failing.
func AllowDuplicateKeys() Option { return func(o *options) { o.duplicates = true } }

func apply(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func childPath(parent, key string) string {
	return parent + "/" + pointerEscaper.Replace(key)
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
