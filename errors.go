package trafo

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/trafo/i18n"
)

// Error codes produced by the core engine. Leaf checkers in dsl use the
// remaining codes; all of them resolve through i18n.
const (
	CodeRequired                = "required"
	CodeNotAllowed              = "not_allowed"
	CodeKeyShadowed             = "key_shadowed"
	CodeNotMapping              = "not_a_mapping"
	CodeSomeElementsDidNotMatch = "some_elements_did_not_match"
	CodeNoAlternativeMatched    = "no_alternative_matched"
	CodeParseError              = "parse_error"
	CodeInvalid                 = "invalid"
	CodeInvalidType             = "invalid_type"
	CodeNotConvertible          = "not_convertible"
	CodeEmptyString             = "empty_string"
	CodeTooShort                = "too_short"
	CodeTooLong                 = "too_long"
	CodeTooSmall                = "too_small"
	CodeTooBig                  = "too_big"
	CodeWrongLength             = "wrong_length"
	CodePattern                 = "pattern"
	CodeInvalidEnum             = "invalid_enum"
	CodeIsNotExactly            = "is_not_exactly"
	CodeIsNotNull               = "is_not_null"
	CodeInvalidFormat           = "invalid_format"
	CodeNotEqual                = "not_equal"
	CodeXorConflict             = "xor_conflict"
	CodeXorMissing              = "xor_missing"
)

// Child is one keyed entry of an aggregate Error. Mapping failures are keyed
// by field name, list and alternative failures by their decimal index.
type Child struct {
	Key string
	Err *Error
}

// Error is a node of the validation error tree. A leaf carries Message and
// Code; an aggregate carries Children and optionally a summary Code.
type Error struct {
	Message string
	Code    string
	// Value is the offending input. HasValue distinguishes a recorded nil.
	Value    any
	HasValue bool
	// Checker is the checker that produced this node, when known.
	Checker Checker
	// Params are the message parameters, kept so messages can be re-rendered
	// for another language.
	Params   map[string]string
	Children []Child
}

// NewError returns a leaf error with an explicit message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Fail returns a leaf error whose message is rendered from code and params
// through the current i18n Translator.
func Fail(c Checker, code string, value any, params map[string]string) *Error {
	return &Error{
		Message:  i18n.T(code, params),
		Code:     code,
		Value:    value,
		HasValue: true,
		Checker:  c,
		Params:   params,
	}
}

// Aggregate returns an error whose meaning lives in its children.
func Aggregate(c Checker, code string, children []Child) *Error {
	return &Error{Code: code, Checker: c, Children: children}
}

// IsLeaf reports whether e has no children.
func (e *Error) IsLeaf() bool { return len(e.Children) == 0 }

// Child returns the child stored under key, or nil.
func (e *Error) Child(key string) *Error {
	for _, ch := range e.Children {
		if ch.Key == key {
			return ch.Err
		}
	}
	return nil
}

// Keys returns the child keys in order.
func (e *Error) Keys() []string {
	out := make([]string, len(e.Children))
	for i, ch := range e.Children {
		out[i] = ch.Key
	}
	return out
}

// Error summarises the first few leaf failures as "path: message".
func (e *Error) Error() string {
	if e.IsLeaf() {
		return e.Message
	}
	const maxShown = 3
	iss := e.Issues()
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", iss[i].Path, iss[i].Message)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsDict renders the tree as plain data: a leaf becomes its message string, an
// aggregate a map[string]any keyed like its children. With withValue set,
// leaves that recorded an offending value render as "<message>, got <value>".
func (e *Error) AsDict(withValue bool) any {
	if e.IsLeaf() {
		return e.leafMessage(withValue)
	}
	out := make(map[string]any, len(e.Children))
	for _, ch := range e.Children {
		out[ch.Key] = ch.Err.AsDict(withValue)
	}
	return out
}

// Struct is the structured rendering of an Error.
type Struct struct {
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Nested  map[string]Struct `json:"nested,omitempty"`
}

// ToStruct renders the tree as nested {code, message, nested} values.
// Aggregates carry their summary code and their children under Nested.
func (e *Error) ToStruct(withValue bool) Struct {
	if e.IsLeaf() {
		return Struct{Code: e.Code, Message: e.leafMessage(withValue)}
	}
	s := Struct{Code: e.Code, Message: e.Message, Nested: make(map[string]Struct, len(e.Children))}
	for _, ch := range e.Children {
		s.Nested[ch.Key] = ch.Err.ToStruct(withValue)
	}
	return s
}

// MarshalJSON encodes the structured rendering without values.
func (e *Error) MarshalJSON() ([]byte, error) { return json.Marshal(e.ToStruct(false)) }

func (e *Error) leafMessage(withValue bool) string {
	if withValue && e.HasValue {
		return e.Message + ", got " + formatValue(e.Value)
	}
	return e.Message
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + t + "'"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Translate returns a copy of the tree with every message re-rendered from
// its code and params by tr. Nodes whose code tr does not know keep their
// message.
func (e *Error) Translate(tr i18n.Translator) *Error {
	cp := *e
	if e.Code != "" && e.Message != "" {
		if msg := tr.Message(e.Code, e.Params); msg != e.Code {
			cp.Message = msg
		}
	}
	if len(e.Children) > 0 {
		cp.Children = make([]Child, len(e.Children))
		for i, ch := range e.Children {
			cp.Children[i] = Child{Key: ch.Key, Err: ch.Err.Translate(tr)}
		}
	}
	return &cp
}

// Issue is a single flattened failure addressed by JSON Pointer.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string
	Message string
	Params  map[string]string
}

// Issues is a flat list of failures that implements error.
type Issues []Issue

// Error summarises the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /day
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Issues flattens the tree depth-first into leaf issues, in child order.
func (e *Error) Issues() Issues {
	var out Issues
	e.collect(pathRef{}, &out)
	return out
}

func (e *Error) collect(p pathRef, out *Issues) {
	if e.IsLeaf() {
		*out = append(*out, Issue{Path: p.Pointer(), Code: e.Code, Message: e.Message, Params: e.Params})
		return
	}
	for _, ch := range e.Children {
		ch.Err.collect(p.Field(ch.Key), out)
	}
}

// AsError extracts an *Error from err using errors.As.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// setChild stores err under key, replacing an existing entry in place so the
// original position is kept.
func setChild(children []Child, key string, err *Error) []Child {
	for i := range children {
		if children[i].Key == key {
			children[i].Err = err
			return children
		}
	}
	return append(children, Child{Key: key, Err: err})
}
