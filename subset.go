package trafo

import (
	"context"
	"reflect"
	"slices"

	"github.com/reoring/trafo/i18n"
)

// Subdict groups several keys under one output name. The keys are extracted
// as usual; when all of them succeed, c validates the mapping of their
// results and its outcome is stored under name. Failures of the inner keys
// are reported under their own target names.
//
//	trafo.Subdict("password", passwordsMatch,
//		trafo.NewKey("password", dsl.String()),
//		trafo.NewKey("password_confirm", dsl.String()),
//	)
func Subdict(name string, c Checker, keys ...Key) Extractor {
	if c == nil {
		c = Pass
	}
	return &subdict{name: name, checker: c, keys: slices.Clone(keys)}
}

type subdict struct {
	name    string
	checker Checker
	keys    []Key
}

func (s *subdict) SourceNames() []string {
	out := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, k.Name())
	}
	return out
}

func (s *subdict) TargetNames() []string { return []string{s.name} }

func (s *subdict) Extract(ctx context.Context, m Mapping) []Extraction {
	var (
		results []Extraction
		touched []string
		failed  bool
	)
	collect := make(map[string]any, len(s.keys))
	for _, k := range s.keys {
		for _, r := range k.Extract(ctx, m) {
			touched = append(touched, r.Touched...)
			results = append(results, r)
			if r.Err != nil {
				failed = true
				continue
			}
			if r.Name != "" {
				collect[r.Name] = r.Value
			}
		}
	}
	if failed {
		return results
	}
	if len(collect) == 0 {
		return []Extraction{{Touched: touched}}
	}
	v, derr := s.checker.Validate(ctx, collect)
	return []Extraction{{Name: s.name, Value: v, Err: derr, Touched: touched}}
}

// KeysSubset hands the sub-mapping of names to c and folds the result back
// into the parent. A mapping result contributes each of its entries (an
// *Error entry is reported as a failure); a failure with children is spread
// over the parent by child key; a leaf failure is reported under the first
// name.
//
//	trafo.KeysSubset(trafo.Func(func(_ context.Context, v any) (any, *trafo.Error) {
//		m := v.(map[string]any)
//		if m["pwd"] != m["pwd_again"] {
//			return map[string]any{"pwd": trafo.NewError(trafo.CodeNotEqual, "not equal")}, nil
//		}
//		return map[string]any{"pwd": m["pwd"]}, nil
//	}), "pwd", "pwd_again")
func KeysSubset(c Checker, names ...string) Extractor {
	if c == nil {
		configPanic(ErrNoCheckers, "KeysSubset")
	}
	return &keysSubset{checker: c, names: slices.Clone(names)}
}

type keysSubset struct {
	checker Checker
	names   []string
}

func (s *keysSubset) SourceNames() []string { return slices.Clone(s.names) }

// TargetNames is empty: the produced names depend on the checker's result.
func (s *keysSubset) TargetNames() []string { return nil }

func (s *keysSubset) touched() []string {
	out := slices.Clone(s.names)
	if d, ok := s.checker.(*DictValidator); ok {
		for _, n := range d.SourceNames() {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

func (s *keysSubset) Extract(ctx context.Context, m Mapping) []Extraction {
	sub := make(map[string]any, len(s.names))
	for _, n := range s.names {
		if v, ok := m.Get(n); ok {
			sub[n] = v
		}
	}
	touched := s.touched()
	v, derr := s.checker.Validate(ctx, sub)
	if derr != nil {
		if derr.IsLeaf() {
			return []Extraction{{Name: s.leafName(touched), Err: derr, Touched: touched}}
		}
		out := make([]Extraction, 0, len(derr.Children))
		for _, ch := range derr.Children {
			out = append(out, Extraction{Name: ch.Key, Err: ch.Err, Touched: touched})
		}
		return out
	}
	res, ok := AsMapping(v)
	if !ok {
		return []Extraction{{Name: s.leafName(touched), Err: Fail(s.checker, CodeNotMapping, v, nil), Touched: touched}}
	}
	keys := res.Keys()
	out := make([]Extraction, 0, len(keys))
	for _, k := range keys {
		val, _ := res.Get(k)
		if e, isErr := val.(*Error); isErr {
			out = append(out, Extraction{Name: k, Err: e, Touched: touched})
			continue
		}
		out = append(out, Extraction{Name: k, Value: val, Touched: touched})
	}
	if len(out) == 0 {
		// still claim the consumed keys
		out = append(out, Extraction{Touched: touched})
	}
	return out
}

func (s *keysSubset) leafName(touched []string) string {
	if len(touched) > 0 {
		return touched[0]
	}
	return ""
}

// XorKey accepts exactly one of first and second. The value found is
// validated by c and stored under first. Both or neither present is an error
// reported on both names.
func XorKey(first, second string, c Checker) Extractor {
	if c == nil {
		c = Pass
	}
	return &xorKey{first: first, second: second, checker: c}
}

type xorKey struct {
	first, second string
	checker       Checker
}

func (x *xorKey) SourceNames() []string { return []string{x.first, x.second} }
func (x *xorKey) TargetNames() []string { return []string{x.first, x.second} }

func (x *xorKey) Extract(ctx context.Context, m Mapping) []Extraction {
	a, hasA := m.Get(x.first)
	b, hasB := m.Get(x.second)
	switch {
	case hasA && hasB:
		return []Extraction{
			{Name: x.first, Err: Fail(x.checker, CodeXorConflict, a, map[string]string{"other": x.second}), Touched: []string{x.first}},
			{Name: x.second, Err: Fail(x.checker, CodeXorConflict, b, map[string]string{"other": x.first}), Touched: []string{x.second}},
		}
	case !hasA && !hasB:
		return []Extraction{
			{Name: x.first, Err: &Error{Code: CodeXorMissing, Message: xorMissing(x.second), Checker: x.checker, Params: map[string]string{"other": x.second}}},
			{Name: x.second, Err: &Error{Code: CodeXorMissing, Message: xorMissing(x.first), Checker: x.checker, Params: map[string]string{"other": x.first}}},
		}
	}
	src, raw := x.first, a
	if hasB {
		src, raw = x.second, b
	}
	out, derr := x.checker.Validate(ctx, raw)
	return []Extraction{{Name: x.first, Value: out, Err: derr, Touched: []string{src}}}
}

func xorMissing(other string) string {
	return i18n.T(CodeXorMissing, map[string]string{"other": other})
}

// ConfirmKey requires name and confirm, validates both with c and reports
// not_equal on confirm when the validated values differ.
func ConfirmKey(name, confirm string, c Checker) Extractor {
	if c == nil {
		c = Pass
	}
	return &confirmKey{name: name, confirm: confirm, checker: c}
}

type confirmKey struct {
	name, confirm string
	checker       Checker
}

func (k *confirmKey) SourceNames() []string { return []string{k.name, k.confirm} }
func (k *confirmKey) TargetNames() []string { return []string{k.name, k.confirm} }

func (k *confirmKey) Extract(ctx context.Context, m Mapping) []Extraction {
	first := NewKey(k.name, k.checker).Extract(ctx, m)
	second := NewKey(k.confirm, k.checker).Extract(ctx, m)
	out := append(first, second...)
	if len(out) != 2 || out[0].Err != nil || out[1].Err != nil {
		return out
	}
	if !reflect.DeepEqual(out[0].Value, out[1].Value) {
		raw, _ := m.Get(k.confirm)
		out[1] = Extraction{
			Name:    k.confirm,
			Err:     Fail(k.checker, CodeNotEqual, raw, map[string]string{"name": k.name}),
			Touched: out[1].Touched,
		}
	}
	return out
}
