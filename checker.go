package trafo

import (
	"context"
	"errors"
)

// Checker validates and optionally converts one value.
//
// Validate returns the converted value and a nil *Error on success, or a
// non-nil *Error describing every structural problem it found. Expected data
// problems never panic; a malformed schema (an unbound Forward, an empty Or)
// does.
//
// ctx is threaded unchanged to every nested checker, so leaf checkers can read
// caller state with ctx.Value.
type Checker interface {
	Validate(ctx context.Context, v any) (any, *Error)
}

// Func adapts a plain function to Checker.
type Func func(ctx context.Context, v any) (any, *Error)

// Validate calls f.
func (f Func) Validate(ctx context.Context, v any) (any, *Error) { return f(ctx, v) }

// Check runs c and converts a failure into an error. It is the only place the
// engine turns an Error tree into a Go error value.
func Check(ctx context.Context, c Checker, v any) (any, error) {
	out, derr := c.Validate(ctx, v)
	if derr != nil {
		return nil, derr
	}
	return out, nil
}

// Is reports whether v passes c.
func Is(ctx context.Context, c Checker, v any) bool {
	_, derr := c.Validate(ctx, v)
	return derr == nil
}

// Configuration errors. They describe a malformed schema, are raised with
// panic and must not be handled as data errors.
var (
	ErrForwardUnbound = errors.New("trafo: forward checker is not bound")
	ErrForwardRebound = errors.New("trafo: forward checker is already bound")
	ErrNoCheckers     = errors.New("trafo: combinator needs at least one checker")
	ErrAmbiguousKey   = errors.New("trafo: ambiguous key declaration")
)

// ConfigError is the panic value used for configuration errors.
type ConfigError struct {
	Err    error
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configPanic(err error, detail string) {
	panic(&ConfigError{Err: err, Detail: detail})
}

// OnError replaces any failure of c with one leaf error carrying message.
func OnError(c Checker, message string) Checker {
	return &onError{inner: c, message: message}
}

type onError struct {
	inner   Checker
	message string
}

func (o *onError) Validate(ctx context.Context, v any) (any, *Error) {
	out, derr := o.inner.Validate(ctx, v)
	if derr != nil {
		return nil, &Error{Message: o.message, Code: CodeInvalid, Value: v, HasValue: true, Checker: o}
	}
	return out, nil
}

// Chain wraps a Checker with combinator methods. Every method returns a new
// Chain; the receiver and the wrapped checkers are never modified.
type Chain struct{ c Checker }

// Wrap starts a Chain from c.
func Wrap(c Checker) Chain { return Chain{c: c} }

// Validate implements Checker.
func (ch Chain) Validate(ctx context.Context, v any) (any, *Error) { return ch.c.Validate(ctx, v) }

// Check runs the chain, returning failures as error.
func (ch Chain) Check(ctx context.Context, v any) (any, error) { return Check(ctx, ch.c, v) }

// And feeds the chain's output into next.
func (ch Chain) And(next ...Checker) Chain {
	return Chain{c: And(append([]Checker{ch.c}, next...)...)}
}

// Or tries alternatives after the chain fails.
func (ch Chain) Or(alts ...Checker) Chain {
	return Chain{c: Or(append([]Checker{ch.c}, alts...)...)}
}

// Then appends a plain conversion function. A non-nil error returned by fn
// becomes a failure (an *Error is kept as-is).
func (ch Chain) Then(fn func(v any) (any, error)) Chain {
	return ch.And(Func(func(_ context.Context, v any) (any, *Error) {
		out, err := fn(v)
		if err != nil {
			return nil, ErrorFrom(err, v)
		}
		return out, nil
	}))
}

// OnError replaces any failure with message.
func (ch Chain) OnError(message string) Chain { return Chain{c: OnError(ch.c, message)} }

// Unwrap returns the wrapped checker.
func (ch Chain) Unwrap() Checker { return ch.c }

// ErrorFrom converts an arbitrary error returned by user code into an *Error.
// An *Error found through errors.As is returned unchanged.
func ErrorFrom(err error, value any) *Error {
	if de, ok := AsError(err); ok {
		return de
	}
	return &Error{Message: err.Error(), Code: CodeInvalid, Value: value, HasValue: true}
}
