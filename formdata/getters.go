package formdata

import "github.com/reoring/trafo"

// First is a trafo.Getter for multi-valued mappings such as url.Values: a
// []string or []any value yields its first element. An empty list counts as
// absent.
func First(m trafo.Mapping, name string) (any, bool) {
	v, ok := m.Get(name)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, false
		}
		return t[0], true
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		return t[0], true
	}
	return v, true
}

// All is a trafo.Getter that always yields a []any, wrapping single values.
func All(m trafo.Mapping, name string) (any, bool) {
	v, ok := m.Get(name)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return append([]any(nil), t...), true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return []any{v}, true
}
