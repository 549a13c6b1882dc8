package trafo

import (
	"context"

	"github.com/reoring/trafo/i18n"
)

// Pass accepts any value. Maps and slices are deep-copied so the result
// never shares structure with the input.
var Pass Checker = Func(func(_ context.Context, v any) (any, *Error) { return Clone(v), nil })

// Getter reads one named value out of a mapping. It is the pluggable
// extraction strategy of a Key; DefaultGetter simply calls m.Get.
type Getter func(m Mapping, name string) (any, bool)

// DefaultGetter reads name with m.Get.
func DefaultGetter(m Mapping, name string) (any, bool) { return m.Get(name) }

// Extraction is one outcome of an Extractor: a value or an error stored under
// Name, plus the raw mapping keys the extractor consumed. An Extraction with
// an empty Name and no Err only claims Touched.
type Extraction struct {
	Name    string
	Value   any
	Err     *Error
	Touched []string
}

// Extractor pulls zero or more named results out of a mapping. Key is the
// usual implementation; composite extractors (Subdict, KeysSubset, XorKey,
// ConfirmKey) express cross-field rules through the same shape.
type Extractor interface {
	Extract(ctx context.Context, m Mapping) []Extraction
	// SourceNames lists the input keys the extractor declares.
	SourceNames() []string
	// TargetNames lists the output names the extractor may produce.
	TargetNames() []string
}

// ExtractorFunc adapts a function to Extractor. It declares no names, so it
// never collides with other extractors when dicts are merged.
type ExtractorFunc func(ctx context.Context, m Mapping) []Extraction

func (f ExtractorFunc) Extract(ctx context.Context, m Mapping) []Extraction { return f(ctx, m) }
func (ExtractorFunc) SourceNames() []string                                 { return nil }
func (ExtractorFunc) TargetNames() []string                                 { return nil }

// Key describes how to pull one named field out of a mapping and validate it.
// Key is a value: every option method returns a modified copy.
type Key struct {
	name       string
	to         string
	checker    Checker
	hasDefault bool
	def        any
	defFn      func() any
	optional   bool
	getter     Getter
}

// NewKey returns a required key named name validated by c. A nil c accepts
// anything.
func NewKey(name string, c Checker) Key {
	if c == nil {
		c = Pass
	}
	return Key{name: name, checker: c}
}

// To renames the extracted value in the output.
func (k Key) To(target string) Key {
	k.to = target
	return k
}

// Default sets the value used when the key is absent. The default is still
// run through the key's checker.
func (k Key) Default(v any) Key {
	k.hasDefault = true
	k.def = v
	k.defFn = nil
	return k
}

// DefaultFunc is like Default but computes the value on every absence.
func (k Key) DefaultFunc(fn func() any) Key {
	k.hasDefault = true
	k.def = nil
	k.defFn = fn
	return k
}

// Optional lets the key be absent; it is then omitted from the output.
func (k Key) Optional() Key {
	k.optional = true
	return k
}

// With replaces the key's checker.
func (k Key) With(c Checker) Key {
	if c == nil {
		c = Pass
	}
	k.checker = c
	return k
}

// WithGetter replaces the extraction strategy.
func (k Key) WithGetter(g Getter) Key {
	k.getter = g
	return k
}

// Name returns the source name.
func (k Key) Name() string { return k.name }

// Target returns the output name.
func (k Key) Target() string {
	if k.to != "" {
		return k.to
	}
	return k.name
}

// IsOptional reports whether the key may be absent.
func (k Key) IsOptional() bool { return k.optional }

// Checker returns the key's checker.
func (k Key) Checker() Checker { return k.checker }

func (k Key) SourceNames() []string { return []string{k.name} }
func (k Key) TargetNames() []string { return []string{k.Target()} }

// Extract reads the key from m. A present key (or a default) yields one
// result holding the checker outcome. An absent optional key only claims its
// name and an absent required key yields a "required" error.
func (k Key) Extract(ctx context.Context, m Mapping) []Extraction {
	get := k.getter
	if get == nil {
		get = DefaultGetter
	}
	raw, ok := get(m, k.name)
	if !ok {
		switch {
		case k.hasDefault:
			raw = k.defaultValue()
		case k.optional:
			// a custom getter may hide a key that is still in m
			return []Extraction{{Touched: []string{k.name}}}
		default:
			return []Extraction{{Name: k.Target(), Err: requiredError()}}
		}
	}
	out, derr := k.checker.Validate(ctx, raw)
	return []Extraction{{Name: k.Target(), Value: out, Err: derr, Touched: []string{k.name}}}
}

func (k Key) defaultValue() any {
	if k.defFn != nil {
		return k.defFn()
	}
	return k.def
}

func requiredError() *Error {
	return &Error{Code: CodeRequired, Message: i18n.T(CodeRequired, nil)}
}
