package trafo

import (
	"net/url"
	"reflect"
	"sort"
)

// Mapping is the read-only view the engine needs over mapping-shaped input.
// Keys must return every key exactly once; the engine never mutates the
// underlying value.
type Mapping interface {
	Get(name string) (any, bool)
	Keys() []string
}

// AsMapping adapts v to Mapping. It accepts Mapping implementations,
// map[string]any, map[string]string, map[string][]string (url.Values) and any
// other map with string keys through reflection. Keys are reported sorted.
func AsMapping(v any) (Mapping, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case Mapping:
		return m, true
	case map[string]any:
		return anyMap(m), true
	case map[string]string:
		return stringMap(m), true
	case map[string][]string:
		return multiMap(m), true
	case url.Values:
		return multiMap(m), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	return reflectMap{rv: rv}, true
}

type anyMap map[string]any

func (m anyMap) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}
func (m anyMap) Keys() []string { return sortedKeys(m) }

type stringMap map[string]string

func (m stringMap) Get(name string) (any, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	return v, true
}
func (m stringMap) Keys() []string { return sortedKeys(m) }

type multiMap map[string][]string

func (m multiMap) Get(name string) (any, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	// copy so checkers cannot alias the caller's slice
	return append([]string(nil), v...), true
}
func (m multiMap) Keys() []string { return sortedKeys(m) }

type reflectMap struct{ rv reflect.Value }

func (m reflectMap) Get(name string) (any, bool) {
	k := reflect.ValueOf(name).Convert(m.rv.Type().Key())
	v := m.rv.MapIndex(k)
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func (m reflectMap) Keys() []string {
	out := make([]string, 0, m.rv.Len())
	for _, k := range m.rv.MapKeys() {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
