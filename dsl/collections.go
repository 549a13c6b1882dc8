package dsl

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/reoring/trafo"
)

// ListChecker validates every element of a slice or array with one checker
// and returns a new []any.
type ListChecker struct {
	elem     trafo.Checker
	min, max int
	hasMin   bool
	hasMax   bool
}

// List returns a ListChecker for elem. A nil elem accepts any element.
func List(elem trafo.Checker) ListChecker {
	if elem == nil {
		elem = trafo.Pass
	}
	return ListChecker{elem: elem}
}

// Min requires at least n elements.
func (c ListChecker) Min(n int) ListChecker {
	c.min, c.hasMin = n, true
	return c
}

// Max allows at most n elements.
func (c ListChecker) Max(n int) ListChecker {
	c.max, c.hasMax = n, true
	return c
}

func (c ListChecker) Validate(ctx context.Context, v any) (any, *trafo.Error) {
	items, ok := asSlice(v)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a list"})
	}
	if c.hasMin && len(items) < c.min {
		return nil, trafo.Fail(c, trafo.CodeTooShort, v, map[string]string{"subject": "list length", "min": strconv.Itoa(c.min)})
	}
	if c.hasMax && len(items) > c.max {
		return nil, trafo.Fail(c, trafo.CodeTooLong, v, map[string]string{"subject": "list length", "max": strconv.Itoa(c.max)})
	}
	out := make([]any, len(items))
	var children []trafo.Child
	for i, it := range items {
		r, derr := c.elem.Validate(ctx, it)
		if derr != nil {
			children = append(children, trafo.Child{Key: strconv.Itoa(i), Err: derr})
			continue
		}
		out[i] = r
	}
	if len(children) > 0 {
		return nil, trafo.Aggregate(c, trafo.CodeSomeElementsDidNotMatch, children)
	}
	return out, nil
}

// Tuple validates a fixed-length list, one checker per position.
func Tuple(cs ...trafo.Checker) trafo.Checker {
	return tupleChecker{items: append([]trafo.Checker(nil), cs...)}
}

type tupleChecker struct{ items []trafo.Checker }

func (c tupleChecker) Validate(ctx context.Context, v any) (any, *trafo.Error) {
	items, ok := asSlice(v)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a list"})
	}
	if len(items) != len(c.items) {
		return nil, trafo.Fail(c, trafo.CodeWrongLength, v, map[string]string{"n": strconv.Itoa(len(c.items))})
	}
	out := make([]any, len(items))
	var children []trafo.Child
	for i, it := range items {
		r, derr := c.items[i].Validate(ctx, it)
		if derr != nil {
			children = append(children, trafo.Child{Key: strconv.Itoa(i), Err: derr})
			continue
		}
		out[i] = r
	}
	if len(children) > 0 {
		return nil, trafo.Aggregate(c, trafo.CodeSomeElementsDidNotMatch, children)
	}
	return out, nil
}

// Mapping validates every key and value of a mapping with the given checkers.
// Failures are keyed by the original key, each holding a "key" and/or "value"
// child. Converted keys are rendered with fmt.Sprint when they are not strings.
func Mapping(key, value trafo.Checker) trafo.Checker {
	if key == nil {
		key = trafo.Pass
	}
	if value == nil {
		value = trafo.Pass
	}
	return mappingChecker{key: key, value: value}
}

type mappingChecker struct{ key, value trafo.Checker }

func (c mappingChecker) Validate(ctx context.Context, v any) (any, *trafo.Error) {
	m, ok := trafo.AsMapping(v)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeNotMapping, v, nil)
	}
	out := make(map[string]any)
	var children []trafo.Child
	for _, k := range m.Keys() {
		raw, _ := m.Get(k)
		var pair []trafo.Child
		ck, kerr := c.key.Validate(ctx, k)
		if kerr != nil {
			pair = append(pair, trafo.Child{Key: "key", Err: kerr})
		}
		cv, verr := c.value.Validate(ctx, raw)
		if verr != nil {
			pair = append(pair, trafo.Child{Key: "value", Err: verr})
		}
		if len(pair) > 0 {
			children = append(children, trafo.Child{Key: k, Err: trafo.Aggregate(c, trafo.CodeSomeElementsDidNotMatch, pair)})
			continue
		}
		name, isStr := ck.(string)
		if !isStr {
			name = fmt.Sprint(ck)
		}
		out[name] = cv
	}
	if len(children) > 0 {
		return nil, trafo.Aggregate(c, trafo.CodeSomeElementsDidNotMatch, children)
	}
	return out, nil
}

// asSlice returns the elements of a slice or array. Strings and byte slices
// are not lists.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
