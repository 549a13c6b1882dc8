// Package construct builds checkers from plain Go literals, which keeps
// small schemas short:
//
//	user := construct.From(map[string]any{
//		"name":   reflect.TypeFor[string](),
//		"email?": dsl.String(),
//		"tags":   []any{reflect.TypeFor[string]()},
//		"kind":   "user",
//	})
//
// Rules:
//   - a trafo.Checker is used as is;
//   - a map[string]any becomes a Dict, a trailing "?" marks an optional key;
//   - a one-element []any becomes a List of that element, longer ones a Tuple;
//   - a reflect.Type becomes the matching dsl checker for its kind;
//   - a func(any) (any, error) becomes dsl.Call;
//   - nil becomes dsl.Null; anything else dsl.Atom.
package construct

import (
	"context"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/dsl"
)

// From converts spec into a checker following the package rules.
func From(spec any) trafo.Checker {
	switch t := spec.(type) {
	case nil:
		return dsl.Null()
	case trafo.Checker:
		return t
	case map[string]any:
		return Dict(t)
	case []any:
		return sequence(t)
	case reflect.Type:
		return ofType(t)
	case func(any) (any, error):
		return dsl.Call(t)
	}
	return dsl.Atom(spec)
}

// Dict converts a map spec into a DictValidator. Keys are applied in sorted
// order.
func Dict(spec map[string]any) *trafo.DictValidator {
	names := make([]string, 0, len(spec))
	for n := range spec {
		names = append(names, n)
	}
	sort.Strings(names)
	keys := make([]trafo.Extractor, 0, len(names))
	for _, n := range names {
		keys = append(keys, Key(n, From(spec[n])))
	}
	return trafo.Dict(keys...)
}

// Key builds a trafo.Key from the shorthand name; "name?" is optional.
func Key(name string, c trafo.Checker) trafo.Key {
	if base, ok := strings.CutSuffix(name, "?"); ok {
		return trafo.NewKey(base, c).Optional()
	}
	return trafo.NewKey(name, c)
}

func sequence(spec []any) trafo.Checker {
	if len(spec) == 1 {
		return dsl.List(From(spec[0]))
	}
	items := make([]trafo.Checker, len(spec))
	for i, s := range spec {
		items[i] = From(s)
	}
	return dsl.Tuple(items...)
}

func ofType(t reflect.Type) trafo.Checker {
	switch t.Kind() {
	case reflect.String:
		return dsl.String().AllowBlank()
	case reflect.Bool:
		return dsl.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return dsl.Int()
	case reflect.Float32, reflect.Float64:
		return dsl.Float()
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return dsl.Any()
		}
	}
	return exactType{t: t}
}

type exactType struct{ t reflect.Type }

func (c exactType) Validate(_ context.Context, v any) (any, *trafo.Error) {
	if v == nil || !reflect.TypeOf(v).AssignableTo(c.t) {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": c.t.String()})
	}
	return v, nil
}
