package trafo

import (
	"context"
	"io"

	"github.com/reoring/trafo/i18n"
	"github.com/reoring/trafo/source"
)

// Source produces the raw value handed to a checker.
type Source interface {
	Decode() (any, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (any, error)

// Decode calls f.
func (f SourceFunc) Decode() (any, error) { return f() }

// Value wraps an already decoded value.
func Value(v any) Source { return SourceFunc(func() (any, error) { return v, nil }) }

// JSONBytes decodes b as one JSON document.
func JSONBytes(b []byte, opts ...source.Option) Source {
	return SourceFunc(func() (any, error) { return source.JSON(b, opts...) })
}

// JSONReader decodes one JSON document from r.
func JSONReader(r io.Reader, opts ...source.Option) Source {
	return SourceFunc(func() (any, error) { return source.JSONReader(r, opts...) })
}

// YAMLBytes decodes the first YAML document of b.
func YAMLBytes(b []byte, opts ...source.Option) Source {
	return SourceFunc(func() (any, error) { return source.YAML(b, opts...) })
}

// ValidateFrom decodes src and validates the result with c. A decode failure
// is reported as a parse_error leaf.
func ValidateFrom(ctx context.Context, c Checker, src Source) (any, *Error) {
	v, err := src.Decode()
	if err != nil {
		return nil, parseError(err)
	}
	return c.Validate(ctx, v)
}

// CheckFrom is ValidateFrom returning failures as error.
func CheckFrom(ctx context.Context, c Checker, src Source) (any, error) {
	out, derr := ValidateFrom(ctx, c, src)
	if derr != nil {
		return nil, derr
	}
	return out, nil
}

func parseError(err error) *Error {
	params := map[string]string{"reason": err.Error()}
	return &Error{Code: CodeParseError, Message: i18n.T(CodeParseError, params), Params: params}
}
