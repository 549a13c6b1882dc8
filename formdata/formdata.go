// Package formdata adapts flat form and query-string data to trafo schemas.
//
// Nested structures travel through HTML forms as flattened keys such as
// "items__0__name". Unfold produces such keys from a tree and Fold rebuilds
// the tree, turning maps whose keys are all decimal indexes into lists.
package formdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/trafo"
)

// Delimiter is the default separator between key segments.
const Delimiter = "__"

// ErrConflict is returned by Fold when one key is both a value and a parent
// of other keys, as in {"a": 1, "a__b": 2}.
var ErrConflict = errors.New("formdata: key is both a value and a container")

// Unfold flattens maps and lists below data into one map. Keys are joined
// with delim (Delimiter when empty) and prefixed with prefix when given.
func Unfold(data any, prefix, delim string) map[string]any {
	if delim == "" {
		delim = Delimiter
	}
	out := make(map[string]any)
	unfold(data, prefix, delim, out)
	return out
}

func unfold(v any, prefix, delim string, out map[string]any) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + delim + k
	}
	switch t := v.(type) {
	case []any:
		for i, el := range t {
			unfold(el, join(strconv.Itoa(i)), delim, out)
		}
		return
	case []string:
		for i, el := range t {
			out[join(strconv.Itoa(i))] = el
		}
		return
	}
	if m, ok := trafo.AsMapping(v); ok {
		for _, k := range m.Keys() {
			el, _ := m.Get(k)
			unfold(el, join(k), delim, out)
		}
		return
	}
	out[prefix] = v
}

// Fold rebuilds a tree from flattened keys. Keys are split on every
// delimiter in delims (Delimiter when none is given); empty segments are
// skipped. With a prefix, only the subtree under prefix is returned.
func Fold(data map[string]any, prefix string, delims ...string) (any, error) {
	if len(delims) == 0 {
		delims = []string{Delimiter}
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := &node{}
	for _, k := range keys {
		if err := root.insert(split(k, delims), data[k]); err != nil {
			return nil, fmt.Errorf("%w: %q", err, k)
		}
	}
	tree := root.build()
	if prefix == "" {
		return tree, nil
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, nil
	}
	return m[prefix], nil
}

type node struct {
	leaf     bool
	value    any
	children map[string]*node
}

func (n *node) insert(path []string, v any) error {
	if len(path) == 0 {
		if n.children != nil {
			return ErrConflict
		}
		n.leaf, n.value = true, v
		return nil
	}
	if n.leaf {
		return ErrConflict
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	child, ok := n.children[path[0]]
	if !ok {
		child = &node{}
		n.children[path[0]] = child
	}
	return child.insert(path[1:], v)
}

func (n *node) build() any {
	if n.leaf {
		return n.value
	}
	if idx, ok := n.indexes(); ok {
		out := make([]any, len(idx))
		for i, k := range idx {
			out[i] = n.children[k].build()
		}
		return out
	}
	out := make(map[string]any, len(n.children))
	for k, c := range n.children {
		out[k] = c.build()
	}
	return out
}

// indexes returns the child keys in numeric order when all of them are
// decimal indexes.
func (n *node) indexes() ([]string, bool) {
	if len(n.children) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		if _, err := strconv.Atoi(k); err != nil {
			return nil, false
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	return keys, true
}

func split(key string, delims []string) []string {
	parts := []string{key}
	for _, d := range delims {
		var next []string
		for _, p := range parts {
			for _, s := range strings.Split(p, d) {
				if s != "" {
					next = append(next, s)
				}
			}
		}
		parts = next
	}
	return parts
}

// Values converts url.Values into Fold input, keeping the first value of
// each key.
func Values(v url.Values) map[string]any {
	out := make(map[string]any, len(v))
	for k, vs := range v {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// Folded returns a checker that folds a flat mapping with Fold before
// handing the tree to c. Multi-valued entries keep their first value.
func Folded(c trafo.Checker, prefix string, delims ...string) trafo.Checker {
	return trafo.Func(func(ctx context.Context, v any) (any, *trafo.Error) {
		m, ok := trafo.AsMapping(v)
		if !ok {
			return nil, trafo.Fail(nil, trafo.CodeNotMapping, v, nil)
		}
		flat := make(map[string]any)
		for _, k := range m.Keys() {
			val, _ := First(m, k)
			flat[k] = val
		}
		tree, err := Fold(flat, prefix, delims...)
		if err != nil {
			return nil, trafo.Fail(nil, trafo.CodeInvalid, v, nil)
		}
		return c.Validate(ctx, tree)
	})
}
