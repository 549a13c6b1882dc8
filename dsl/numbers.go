package dsl

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/reoring/trafo"
)

type bounds[N int | float64] struct {
	gte, gt, lte, lt *N
}

func (b bounds[N]) check(c trafo.Checker, raw any, v N) *trafo.Error {
	switch {
	case b.gte != nil && v < *b.gte:
		return limitError(c, trafo.CodeTooSmall, raw, "greater than or equal to", *b.gte)
	case b.gt != nil && v <= *b.gt:
		return limitError(c, trafo.CodeTooSmall, raw, "greater than", *b.gt)
	case b.lte != nil && v > *b.lte:
		return limitError(c, trafo.CodeTooBig, raw, "less than or equal to", *b.lte)
	case b.lt != nil && v >= *b.lt:
		return limitError(c, trafo.CodeTooBig, raw, "less than", *b.lt)
	}
	return nil
}

func limitError(c trafo.Checker, code string, raw any, cmp string, limit any) *trafo.Error {
	return trafo.Fail(c, code, raw, map[string]string{"cmp": cmp, "limit": fmt.Sprint(limit)})
}

// IntChecker accepts integers and returns them as int. Whole floats and
// json.Number values count as integers; strings only with ToInt.
type IntChecker struct {
	convert bool
	b       bounds[int]
}

// Int returns a strict IntChecker.
func Int() IntChecker { return IntChecker{} }

// ToInt returns an IntChecker that also parses decimal strings.
func ToInt() IntChecker { return IntChecker{convert: true} }

// Gte requires v >= n.
func (c IntChecker) Gte(n int) IntChecker {
	c.b.gte = &n
	return c
}

// Gt requires v > n.
func (c IntChecker) Gt(n int) IntChecker {
	c.b.gt = &n
	return c
}

// Lte requires v <= n.
func (c IntChecker) Lte(n int) IntChecker {
	c.b.lte = &n
	return c
}

// Lt requires v < n.
func (c IntChecker) Lt(n int) IntChecker {
	c.b.lt = &n
	return c
}

func (c IntChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	n, ok := asInt(v)
	if !ok {
		s, isStr := v.(string)
		if !c.convert || !isStr {
			return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "an integer"})
		}
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, trafo.Fail(c, trafo.CodeNotConvertible, v, map[string]string{"target": "integer"})
		}
		n = i
	}
	if derr := c.b.check(c, v, n); derr != nil {
		return nil, derr
	}
	return n, nil
}

// FloatChecker accepts any number and returns it as float64.
type FloatChecker struct {
	convert bool
	b       bounds[float64]
}

// Float returns a strict FloatChecker.
func Float() FloatChecker { return FloatChecker{} }

// ToFloat returns a FloatChecker that also parses numeric strings.
func ToFloat() FloatChecker { return FloatChecker{convert: true} }

// Gte requires v >= n.
func (c FloatChecker) Gte(n float64) FloatChecker {
	c.b.gte = &n
	return c
}

// Gt requires v > n.
func (c FloatChecker) Gt(n float64) FloatChecker {
	c.b.gt = &n
	return c
}

// Lte requires v <= n.
func (c FloatChecker) Lte(n float64) FloatChecker {
	c.b.lte = &n
	return c
}

// Lt requires v < n.
func (c FloatChecker) Lt(n float64) FloatChecker {
	c.b.lt = &n
	return c
}

func (c FloatChecker) Validate(_ context.Context, v any) (any, *trafo.Error) {
	f, ok := asFloat(v)
	if !ok {
		s, isStr := v.(string)
		if !c.convert || !isStr {
			return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a number"})
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, trafo.Fail(c, trafo.CodeNotConvertible, v, map[string]string{"target": "float"})
		}
		f = x
	} else if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, trafo.Fail(c, trafo.CodeInvalidType, v, map[string]string{"expected": "a finite number"})
	}
	if derr := c.b.check(c, v, f); derr != nil {
		return nil, derr
	}
	return f, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return wholeFloat(float64(n))
	case float64:
		return wholeFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return asInt(i)
		}
		if f, err := n.Float64(); err == nil {
			return wholeFloat(f)
		}
	}
	return 0, false
}

func wholeFloat(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
