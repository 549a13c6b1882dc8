package dsl

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/trafo"
)

// Any accepts every value unchanged.
func Any() trafo.Checker { return trafo.Pass }

// Null accepts only nil.
func Null() trafo.Checker { return nullChecker{} }

type nullChecker struct{}

func (c nullChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	if v != nil {
		return nil, trafo.Fail(c, trafo.CodeIsNotNull, v, nil)
	}
	return nil, nil
}

// Bool accepts Go booleans only.
func Bool() trafo.Checker { return boolChecker{} }

// ToBool also converts common textual and numeric spellings:
// "1", "t", "true", "y", "yes", "on" and their negative counterparts.
func ToBool() trafo.Checker { return boolChecker{convert: true} }

type boolChecker struct{ convert bool }

var boolWords = map[string]bool{
	"1": true, "t": true, "true": true, "y": true, "yes": true, "on": true,
	"0": false, "f": false, "false": false, "n": false, "no": false, "off": false, "none": false,
}

func (c boolChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if !c.convert {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a boolean"})
	}
	switch t := v.(type) {
	case string:
		if b, ok := boolWords[strings.ToLower(strings.TrimSpace(t))]; ok {
			return b, nil
		}
	default:
		if n, ok := asInt(v); ok && (n == 0 || n == 1) {
			return n == 1, nil
		}
	}
	return nil, trafo.Fail(c, trafo.CodeNotConvertible, v, map[string]string{"target": "boolean"})
}

// StringChecker accepts strings. Blank strings are rejected unless AllowBlank
// is set.
type StringChecker struct {
	allowBlank bool
	min, max   int
	hasMin     bool
	hasMax     bool
}

// String returns a StringChecker rejecting blank strings.
func String() StringChecker { return StringChecker{} }

// AllowBlank accepts the empty string.
func (c StringChecker) AllowBlank() StringChecker {
	c.allowBlank = true
	return c
}

// Min requires at least n characters.
func (c StringChecker) Min(n int) StringChecker {
	c.min, c.hasMin = n, true
	return c
}

// Max allows at most n characters.
func (c StringChecker) Max(n int) StringChecker {
	c.max, c.hasMax = n, true
	return c
}

func (c StringChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a string"})
	}
	if s == "" && !c.allowBlank {
		return nil, trafo.Fail(c, trafo.CodeEmptyString, v, nil)
	}
	n := utf8.RuneCountInString(s)
	if c.hasMin && n < c.min {
		return nil, trafo.Fail(c, trafo.CodeTooShort, v, map[string]string{"subject": "string", "min": strconv.Itoa(c.min)})
	}
	if c.hasMax && n > c.max {
		return nil, trafo.Fail(c, trafo.CodeTooLong, v, map[string]string{"subject": "string", "max": strconv.Itoa(c.max)})
	}
	return s, nil
}

// Regexp accepts strings matching pattern at their start and returns the
// string. The pattern is compiled once; an invalid pattern panics.
func Regexp(pattern string) RegexpChecker {
	return RegexpChecker{pattern: pattern, re: regexp.MustCompile(`^(?:` + pattern + `)`)}
}

// RegexpChecker is returned by Regexp.
type RegexpChecker struct {
	pattern  string
	re       *regexp.Regexp
	submatch bool
}

// Submatch makes the checker return the submatches ([]string) instead of the
// input string.
func (c RegexpChecker) Submatch() RegexpChecker {
	c.submatch = true
	return c
}

func (c RegexpChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a string"})
	}
	m := c.re.FindStringSubmatch(s)
	if m == nil {
		return nil, trafo.Fail(c, trafo.CodePattern, v, map[string]string{"pattern": c.pattern})
	}
	if c.submatch {
		return m, nil
	}
	return s, nil
}

// Atom accepts only values deeply equal to want.
func Atom(want any) trafo.Checker { return atomChecker{want: want} }

type atomChecker struct{ want any }

func (c atomChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	if !reflect.DeepEqual(v, c.want) {
		return nil, trafo.Fail(c, trafo.CodeIsNotExactly, v, map[string]string{"expected": fmt.Sprint(c.want)})
	}
	return v, nil
}

// Enum accepts any of the given values.
func Enum(values ...any) trafo.Checker {
	return enumChecker{values: append([]any(nil), values...)}
}

type enumChecker struct{ values []any }

func (c enumChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	for _, w := range c.values {
		if reflect.DeepEqual(v, w) {
			return v, nil
		}
	}
	return nil, trafo.Fail(c, trafo.CodeInvalidEnum, v, nil)
}

// Type accepts values whose dynamic type is T (or implements T when T is an
// interface) and returns them as T.
func Type[T any]() trafo.Checker { return typeChecker[T]{} }

type typeChecker[T any] struct{}

func (c typeChecker[T]) Validate(_ context.Context, v any) (any, *trafo.Error) {
	t, ok := v.(T)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": reflect.TypeFor[T]().String()})
	}
	return t, nil
}

// Call adapts a plain conversion function. A returned error becomes a leaf
// failure with the error text as message; a returned *trafo.Error is kept.
func Call(fn func(v any) (any, error)) trafo.Checker {
	return trafo.Func(func(_ context.Context, v any) (any, *trafo.Error) {
		out, err := fn(v)
		if err != nil {
			return nil, trafo.ErrorFrom(err, v)
		}
		return out, nil
	})
}
