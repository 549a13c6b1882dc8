package construct

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/dsl"
)

// typeNames maps the type names accepted by FromDocument to checkers.
var typeNames = map[string]func() trafo.Checker{
	"any":      dsl.Any,
	"null":     dsl.Null,
	"bool":     dsl.Bool,
	"string":   func() trafo.Checker { return dsl.String() },
	"text":     func() trafo.Checker { return dsl.String().AllowBlank() },
	"int":      func() trafo.Checker { return dsl.Int() },
	"float":    func() trafo.Checker { return dsl.Float() },
	"uuid":     func() trafo.Checker { return dsl.UUID() },
	"datetime": func() trafo.Checker { return dsl.DateTime() },
	"url":      func() trafo.Checker { return dsl.URL() },
}

// TypeNames lists the names FromDocument understands.
func TypeNames() []string {
	out := make([]string, 0, len(typeNames))
	for n := range typeNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// FromDocument builds a checker from a decoded JSON or YAML schema document.
// Strings name a type (see TypeNames) unless they start with "=", in which
// case the rest of the string is a literal the value must equal. Objects
// become dicts with "name?" marking optional keys, one-element arrays become
// lists, longer arrays tuples. Numbers and booleans must match exactly.
//
//	{"kind": "=user", "name": "string", "age?": "int", "tags": ["string"]}
func FromDocument(doc any) (trafo.Checker, error) {
	return fromDocument(doc, "")
}

func fromDocument(doc any, at string) (trafo.Checker, error) {
	switch t := doc.(type) {
	case string:
		if lit, ok := strings.CutPrefix(t, "="); ok {
			return dsl.Atom(lit), nil
		}
		mk, ok := typeNames[t]
		if !ok {
			return nil, fmt.Errorf("construct: unknown type %q at %s", t, display(at))
		}
		return mk(), nil
	case map[string]any:
		names := make([]string, 0, len(t))
		for n := range t {
			names = append(names, n)
		}
		sort.Strings(names)
		keys := make([]trafo.Extractor, 0, len(names))
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			base := strings.TrimSuffix(n, "?")
			if seen[base] {
				return nil, fmt.Errorf("construct: key %q declared twice at %s", base, display(at))
			}
			seen[base] = true
			c, err := fromDocument(t[n], at+"/"+n)
			if err != nil {
				return nil, err
			}
			keys = append(keys, Key(n, c))
		}
		return trafo.Dict(keys...), nil
	case []any:
		if len(t) == 0 {
			return nil, fmt.Errorf("construct: empty list at %s", display(at))
		}
		items := make([]trafo.Checker, len(t))
		for i, el := range t {
			c, err := fromDocument(el, fmt.Sprintf("%s/%d", at, i))
			if err != nil {
				return nil, err
			}
			items[i] = c
		}
		if len(items) == 1 {
			return dsl.List(items[0]), nil
		}
		return dsl.Tuple(items...), nil
	case nil:
		return dsl.Null(), nil
	}
	return dsl.Atom(doc), nil
}

func display(at string) string {
	if at == "" {
		return "/"
	}
	return at
}
