package trafo

import (
	"context"
	"strconv"
)

// And chains checkers left to right: each one receives the previous output.
// The first failure is returned unchanged and later checkers are not run.
// Nested And checkers are flattened into one sequence.
func And(cs ...Checker) Checker {
	if len(cs) == 0 {
		configPanic(ErrNoCheckers, "And")
	}
	flat := make([]Checker, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			configPanic(ErrNoCheckers, "And: nil checker")
		}
		if inner, ok := c.(*andChecker); ok {
			flat = append(flat, inner.seq...)
			continue
		}
		flat = append(flat, c)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &andChecker{seq: flat}
}

type andChecker struct{ seq []Checker }

func (a *andChecker) Validate(ctx context.Context, v any) (any, *Error) {
	cur := v
	for _, c := range a.seq {
		out, derr := c.Validate(ctx, cur)
		if derr != nil {
			return nil, derr
		}
		cur = out
	}
	return cur, nil
}

// Or tries each checker against the same input in declaration order and
// returns the first success. When all fail, the result is an aggregate error
// holding every branch failure keyed by its index. Nested Or checkers are
// flattened.
func Or(cs ...Checker) Checker {
	if len(cs) == 0 {
		configPanic(ErrNoCheckers, "Or")
	}
	flat := make([]Checker, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			configPanic(ErrNoCheckers, "Or: nil checker")
		}
		if inner, ok := c.(*orChecker); ok {
			flat = append(flat, inner.alts...)
			continue
		}
		flat = append(flat, c)
	}
	return &orChecker{alts: flat}
}

type orChecker struct{ alts []Checker }

func (o *orChecker) Validate(ctx context.Context, v any) (any, *Error) {
	children := make([]Child, 0, len(o.alts))
	for i, c := range o.alts {
		out, derr := c.Validate(ctx, v)
		if derr == nil {
			return out, nil
		}
		children = append(children, Child{Key: strconv.Itoa(i), Err: derr})
	}
	return nil, Aggregate(o, CodeNoAlternativeMatched, children)
}

// Forward is a placeholder checker bound after construction, which lets a
// schema refer to itself:
//
//	node := trafo.NewForward()
//	node.Provide(trafo.DictOf(map[string]trafo.Checker{
//		"name":     dsl.String(),
//		"children": dsl.List(node),
//	}))
//
// Provide must complete before the schema is used, in particular before any
// concurrent validation starts. Binding is not synchronized.
type Forward struct {
	target Checker
}

// NewForward returns an unbound Forward.
func NewForward() *Forward { return &Forward{} }

// Provide binds the Forward to c. Binding twice or binding nil panics.
func (f *Forward) Provide(c Checker) {
	if c == nil {
		configPanic(ErrNoCheckers, "Forward.Provide(nil)")
	}
	if f.target != nil {
		configPanic(ErrForwardRebound, "")
	}
	f.target = c
}

// Bound reports whether Provide has been called.
func (f *Forward) Bound() bool { return f.target != nil }

// Validate delegates to the bound checker. It panics when unbound.
func (f *Forward) Validate(ctx context.Context, v any) (any, *Error) {
	if f.target == nil {
		configPanic(ErrForwardUnbound, "")
	}
	return f.target.Validate(ctx, v)
}
