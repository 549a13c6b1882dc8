// Package middleware validates HTTP request bodies with trafo checkers.
//
// The net/http adapter lives here; echo and gin adapters are separate
// modules under middleware/echo and middleware/gin so the core module does
// not depend on either framework.
package middleware

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/formdata"
)

// MaxMemory bounds the part of a multipart form kept in memory.
const MaxMemory = 32 << 20

// DefaultMaxBodyBytes is the request body limit used unless WithMaxBodyBytes
// is given.
const DefaultMaxBodyBytes = 10 << 20

// Option configures how request bodies are read.
type Option func(*config)

type config struct {
	maxBody int64
}

// WithMaxBodyBytes limits the request body to n bytes. n <= 0 disables the
// limit.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) { c.maxBody = n }
}

func newConfig(opts []Option) config {
	c := config{maxBody: DefaultMaxBodyBytes}
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return c
}

type ctxKeyValue struct{}

// validated boxes the value so a nil result is still found.
type validated struct{ v any }

// ContextWithValue attaches a validated value to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, validated{v: v})
}

// ValueFromContext retrieves the value stored by ContextWithValue.
func ValueFromContext(ctx context.Context) (any, bool) {
	b, ok := ctx.Value(ctxKeyValue{}).(validated)
	return b.v, ok
}

// RequestSource picks a decoder by Content-Type: form bodies are folded
// with formdata, YAML media types go through the YAML decoder and anything
// else is read as strict JSON. The body is capped at DefaultMaxBodyBytes
// unless WithMaxBodyBytes says otherwise; a larger body is a parse error.
func RequestSource(r *http.Request, opts ...Option) trafo.Source {
	cfg := newConfig(opts)
	if cfg.maxBody > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, cfg.maxBody)
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return trafo.SourceFunc(func() (any, error) {
			var err error
			if mt == "multipart/form-data" {
				err = r.ParseMultipartForm(MaxMemory)
			} else {
				err = r.ParseForm()
			}
			if err != nil {
				return nil, fmt.Errorf("read form: %w", err)
			}
			return formdata.Fold(formdata.Values(r.PostForm), "")
		})
	case "application/yaml", "application/x-yaml", "text/yaml":
		return trafo.SourceFunc(func() (any, error) {
			b, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			return trafo.YAMLBytes(b).Decode()
		})
	}
	return trafo.JSONReader(r.Body)
}

// ErrorPayload shapes a validation failure for JSON responses: the flat
// field -> message tree plus the flattened issues.
func ErrorPayload(derr *trafo.Error) map[string]any {
	iss := derr.Issues()
	list := make([]map[string]any, 0, len(iss))
	for _, it := range iss {
		list = append(list, map[string]any{"path": it.Path, "code": it.Code, "message": it.Message})
	}
	return map[string]any{"errors": derr.AsDict(false), "issues": list}
}

// Validate returns net/http middleware that validates the request body with
// c. The result is stored in the request context; failures are answered
// with 400 and ErrorPayload.
func Validate(c trafo.Checker, opts ...Option) func(http.Handler) http.Handler {
	return validate(c, func(r *http.Request) trafo.Source {
		return RequestSource(r, opts...)
	})
}

// Query is Validate for the URL query string. Nested keys are folded with
// formdata and multi-valued parameters keep their first value.
func Query(c trafo.Checker) func(http.Handler) http.Handler {
	folded := formdata.Folded(c, "")
	return validate(folded, func(r *http.Request) trafo.Source {
		return trafo.Value(r.URL.Query())
	})
}

func validate(c trafo.Checker, src func(*http.Request) trafo.Source) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, derr := trafo.ValidateFrom(r.Context(), c, src(r))
			if derr != nil {
				WriteJSON(w, http.StatusBadRequest, ErrorPayload(derr))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
		})
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
