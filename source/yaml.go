package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAML decodes the first document of a YAML stream. Mapping keys are taken
// as strings, integers decode to int64 and unknown tags to their raw text.
func YAML(b []byte, opts ...Option) (any, error) {
	docs, err := decodeYAML(bytes.NewReader(b), apply(opts), 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}
	return docs[0], nil
}

// YAMLAll decodes every document of a YAML stream.
func YAMLAll(r io.Reader, opts ...Option) ([]any, error) {
	return decodeYAML(r, apply(opts), -1)
}

func decodeYAML(r io.Reader, o options, limit int) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var out []any
	for limit < 0 || len(out) < limit {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		w := &yamlWalker{opts: o, active: make(map[*yaml.Node]bool)}
		v, err := w.value(&root, "")
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// yamlWalker converts one document. Aliases are expanded in place, so it
// tracks the anchors being expanded and how much of the output came from
// aliases.
type yamlWalker struct {
	opts       options
	active     map[*yaml.Node]bool
	nodes      int
	aliasNodes int
	aliasDepth int
}

func (w *yamlWalker) value(n *yaml.Node, path string) (any, error) {
	w.nodes++
	if w.aliasDepth > 0 {
		w.aliasNodes++
	}
	if w.aliasNodes > 100 && w.nodes > 1000 && float64(w.aliasNodes)/float64(w.nodes) > allowedAliasRatio(w.nodes) {
		return nil, ErrAliasExpansion
	}
	if n.Anchor != "" {
		if w.active[n] {
			return nil, fmt.Errorf("%w: &%s at %s", ErrAliasCycle, n.Anchor, displayPath(path))
		}
		w.active[n] = true
		defer delete(w.active, n)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0], path)
	case yaml.AliasNode:
		w.aliasDepth++
		defer func() { w.aliasDepth-- }()
		return w.value(n.Alias, path)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			key := k.Value
			child := childPath(path, key)
			if pos, dup := first[key]; dup && !w.opts.duplicates {
				return nil, &DuplicateKeyError{Key: key, Path: child, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			v, err := w.value(vn, child)
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := w.value(c, path+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	}
	return nil, nil
}

// allowedAliasRatio mirrors the limit yaml.v3 applies when decoding into Go
// values: small documents may be almost entirely aliases, large ones may not.
func allowedAliasRatio(nodes int) float64 {
	switch {
	case nodes <= 400_000:
		return 0.99
	case nodes >= 4_000_000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(nodes-400_000)/3_600_000)
	}
}

func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}
