package trafo

import (
	"context"
	"slices"
	"sort"
)

// ExtraPolicy decides what happens to input keys no extractor claimed.
type ExtraPolicy int

const (
	// ExtraForbid reports every unclaimed key as "not allowed".
	ExtraForbid ExtraPolicy = iota
	// ExtraAllow validates requested unclaimed keys and copies them through.
	ExtraAllow
	// ExtraIgnore drops requested unclaimed keys silently.
	ExtraIgnore
)

func (p ExtraPolicy) String() string {
	switch p {
	case ExtraAllow:
		return "allow"
	case ExtraIgnore:
		return "ignore"
	default:
		return "forbid"
	}
}

// AnyName matches every key in AllowExtra, IgnoreExtra and MakeOptional.
const AnyName = "*"

// DictValidator validates a mapping against declared extractors plus an extra
// key policy. A DictValidator is never modified after construction; every
// option method returns a new one.
type DictValidator struct {
	extractors []Extractor

	policy       ExtraPolicy
	policySet    bool
	extraNames   []string
	extraChecker Checker
}

// Dict builds a DictValidator from extractors, applied in order. Two
// extractors claiming the same target name is a schema error and panics with
// ErrAmbiguousKey.
func Dict(extractors ...Extractor) *DictValidator {
	checkAmbiguous(extractors)
	return &DictValidator{extractors: slices.Clone(extractors)}
}

// DictOf is Dict with the common case spelled as a map from key name to
// checker. Map entries are applied in sorted key order, followed by any extra
// extractors.
func DictOf(fields map[string]Checker, extractors ...Extractor) *DictValidator {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	all := make([]Extractor, 0, len(names)+len(extractors))
	for _, n := range names {
		all = append(all, NewKey(n, fields[n]))
	}
	all = append(all, extractors...)
	return Dict(all...)
}

// DictKeys declares required keys that accept any value.
func DictKeys(names ...string) *DictValidator {
	all := make([]Extractor, 0, len(names))
	for _, n := range names {
		all = append(all, NewKey(n, Pass))
	}
	return Dict(all...)
}

func checkAmbiguous(extractors []Extractor) {
	seen := make(map[string]struct{})
	for _, ex := range extractors {
		for _, n := range ex.TargetNames() {
			if _, dup := seen[n]; dup {
				configPanic(ErrAmbiguousKey, n)
			}
			seen[n] = struct{}{}
		}
	}
}

func (d *DictValidator) clone() *DictValidator {
	cp := *d
	cp.extractors = slices.Clone(d.extractors)
	cp.extraNames = slices.Clone(d.extraNames)
	return &cp
}

// AllowExtra returns a copy that accepts the named extra keys (AnyName for
// all) and copies them into the output unchanged.
func (d *DictValidator) AllowExtra(names ...string) *DictValidator {
	return d.AllowExtraWith(nil, names...)
}

// AllowExtraWith is AllowExtra with a checker applied to every allowed extra
// value.
func (d *DictValidator) AllowExtraWith(c Checker, names ...string) *DictValidator {
	cp := d.clone()
	cp.policy = ExtraAllow
	cp.policySet = true
	cp.extraNames = slices.Clone(names)
	cp.extraChecker = c
	return cp
}

// IgnoreExtra returns a copy that silently drops the named extra keys
// (AnyName for all). Other extra keys are still reported.
func (d *DictValidator) IgnoreExtra(names ...string) *DictValidator {
	cp := d.clone()
	cp.policy = ExtraIgnore
	cp.policySet = true
	cp.extraNames = slices.Clone(names)
	cp.extraChecker = nil
	return cp
}

// MakeOptional returns a copy where the named keys (AnyName for all) may be
// absent. Only Key extractors are affected; names match source names.
func (d *DictValidator) MakeOptional(names ...string) *DictValidator {
	all := slices.Contains(names, AnyName)
	cp := d.clone()
	for i, ex := range cp.extractors {
		k, ok := ex.(Key)
		if !ok {
			continue
		}
		if all || slices.Contains(names, k.Name()) {
			cp.extractors[i] = k.Optional()
		}
	}
	return cp
}

// Merge returns the union of d and other. An extractor of other replaces
// every extractor of d that shares a target or a source name with it. The
// extra key policy of other wins when other set one explicitly.
func (d *DictValidator) Merge(other *DictValidator) *DictValidator {
	cp := d.clone()
	for _, ex := range other.extractors {
		cp.extractors = override(cp.extractors, ex)
	}
	if other.policySet {
		cp.policy = other.policy
		cp.policySet = true
		cp.extraNames = slices.Clone(other.extraNames)
		cp.extraChecker = other.extraChecker
	}
	return cp
}

// With merges additional extractors into a copy of d.
func (d *DictValidator) With(extractors ...Extractor) *DictValidator {
	return d.Merge(Dict(extractors...))
}

func override(list []Extractor, ex Extractor) []Extractor {
	targets, sources := ex.TargetNames(), ex.SourceNames()
	out := list[:0]
	for _, old := range list {
		if overlaps(old.TargetNames(), targets) || overlaps(old.SourceNames(), sources) {
			continue
		}
		out = append(out, old)
	}
	return append(out, ex)
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

// Extractors returns the declared extractors in order.
func (d *DictValidator) Extractors() []Extractor { return slices.Clone(d.extractors) }

// Policy returns the extra key policy and the requested extra names.
func (d *DictValidator) Policy() (ExtraPolicy, []string) {
	return d.policy, slices.Clone(d.extraNames)
}

// SourceNames lists the input keys declared by all extractors.
func (d *DictValidator) SourceNames() []string {
	var out []string
	for _, ex := range d.extractors {
		out = append(out, ex.SourceNames()...)
	}
	return out
}

func (d *DictValidator) requested(name string) bool {
	return slices.Contains(d.extraNames, AnyName) || slices.Contains(d.extraNames, name)
}

// Validate implements Checker. Successes are collected under their target
// names, failures likewise, and unclaimed input keys go through the extra
// key policy. The output is always a fresh map[string]any.
func (d *DictValidator) Validate(ctx context.Context, v any) (any, *Error) {
	m, ok := AsMapping(v)
	if !ok {
		return nil, Fail(d, CodeNotMapping, v, nil)
	}
	out := make(map[string]any)
	claimed := make(map[string]struct{})
	produced := make(map[string]struct{})
	var children []Child
	for _, ex := range d.extractors {
		for _, r := range ex.Extract(ctx, m) {
			for _, n := range r.Touched {
				claimed[n] = struct{}{}
			}
			if r.Name != "" {
				// extractors with dynamic targets may collide at run time
				if _, dup := produced[r.Name]; dup {
					children = setChild(children, r.Name, Fail(d, CodeKeyShadowed, r.Value, map[string]string{"name": r.Name}))
					delete(out, r.Name)
					continue
				}
				produced[r.Name] = struct{}{}
			}
			if r.Err != nil {
				children = setChild(children, r.Name, r.Err)
				continue
			}
			if r.Name == "" {
				continue
			}
			out[r.Name] = r.Value
		}
	}
	for _, name := range m.Keys() {
		if _, ok := claimed[name]; ok {
			continue
		}
		raw, _ := m.Get(name)
		if !d.requested(name) {
			children = setChild(children, name, Fail(d, CodeNotAllowed, raw, map[string]string{"name": name}))
			continue
		}
		if d.policy == ExtraIgnore {
			continue
		}
		if _, clash := out[name]; clash {
			children = setChild(children, name, Fail(d, CodeKeyShadowed, raw, map[string]string{"name": name}))
			continue
		}
		c := d.extraChecker
		if c == nil {
			c = Pass
		}
		val, derr := c.Validate(ctx, raw)
		if derr != nil {
			children = setChild(children, name, derr)
			continue
		}
		out[name] = val
	}
	if len(children) > 0 {
		return nil, Aggregate(d, CodeSomeElementsDidNotMatch, children)
	}
	return out, nil
}
