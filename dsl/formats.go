package dsl

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/trafo"
)

// UUIDChecker accepts UUID strings (and uuid.UUID values) and returns a
// uuid.UUID.
type UUIDChecker struct {
	version int
}

// UUID returns a checker accepting any UUID version.
func UUID() UUIDChecker { return UUIDChecker{} }

// Version restricts accepted UUIDs to version v.
func (c UUIDChecker) Version(v int) UUIDChecker {
	c.version = v
	return c
}

func (c UUIDChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	var id uuid.UUID
	switch t := v.(type) {
	case uuid.UUID:
		id = t
	case string:
		parsed, err := uuid.Parse(t)
		if err != nil {
			return nil, trafo.Fail(c, trafo.CodeInvalidFormat, v, map[string]string{"format": "UUID"})
		}
		id = parsed
	default:
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a string"})
	}
	if c.version != 0 && int(id.Version()) != c.version {
		return nil, trafo.Fail(c, trafo.CodeInvalidFormat, v, map[string]string{"format": "UUIDv" + strconv.Itoa(c.version)})
	}
	return id, nil
}

// DateTimeChecker parses timestamps into time.Time.
type DateTimeChecker struct {
	layout string
	utc    bool
}

// DateTime accepts RFC 3339 timestamps, with or without fractional seconds.
func DateTime() DateTimeChecker { return DateTimeChecker{} }

// Layout replaces RFC 3339 with a time.Parse layout.
func (c DateTimeChecker) Layout(layout string) DateTimeChecker {
	c.layout = layout
	return c
}

// UTC normalizes the result to UTC.
func (c DateTimeChecker) UTC() DateTimeChecker {
	c.utc = true
	return c
}

func (c DateTimeChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case string:
		parsed, err := c.parse(x)
		if err != nil {
			format := "RFC 3339 date-time"
			if c.layout != "" {
				format = "date-time (" + c.layout + ")"
			}
			return nil, trafo.Fail(c, trafo.CodeInvalidFormat, v, map[string]string{"format": format})
		}
		t = parsed
	default:
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a string"})
	}
	if c.utc {
		t = t.UTC()
	}
	return t, nil
}

func (c DateTimeChecker) parse(s string) (time.Time, error) {
	if c.layout != "" {
		return time.Parse(c.layout, s)
	}
	// RFC3339Nano also accepts timestamps without fractional seconds
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// URL accepts absolute URLs with a scheme and host and returns them as
// strings.
func URL(schemes ...string) trafo.Checker {
	return urlChecker{schemes: append([]string(nil), schemes...)}
}

type urlChecker struct{ schemes []string }

func (c urlChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	s, ok := v.(string)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a string"})
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" || !c.allowed(u.Scheme) {
		return nil, trafo.Fail(c, trafo.CodeInvalidFormat, v, map[string]string{"format": "URL"})
	}
	return s, nil
}

func (c urlChecker) allowed(scheme string) bool {
	if len(c.schemes) == 0 {
		return true
	}
	for _, s := range c.schemes {
		if s == scheme {
			return true
		}
	}
	return false
}
