package dsl

import (
	"context"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/reoring/trafo"
)

// StructChecker decodes a mapping into a T using mapstructure. Field names
// come from `json` tags.
type StructChecker[T any] struct {
	weak   bool
	unused bool
}

// Struct returns a StructChecker for T. It is typically the last step of an
// And after a Dict has validated and normalized the mapping:
//
//	trafo.And(userDict, dsl.Struct[User]())
func Struct[T any]() StructChecker[T] { return StructChecker[T]{} }

// Weak enables mapstructure's weakly typed conversions ("1" -> 1 and so on).
func (c StructChecker[T]) Weak() StructChecker[T] {
	c.weak = true
	return c
}

// ErrorUnused fails when the mapping has keys without a matching field.
func (c StructChecker[T]) ErrorUnused() StructChecker[T] {
	c.unused = true
	return c
}

func (c StructChecker[T]) Validate(_ context.Context, v any) (any, *trafo.Error) {
	var out T
	target := reflect.TypeFor[T]().String()
	m, ok := trafo.AsMapping(v)
	if !ok {
		return nil, trafo.Fail(c, trafo.CodeNotMapping, v, nil)
	}
	src := make(map[string]any)
	for _, k := range m.Keys() {
		src[k], _ = m.Get(k)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: c.weak,
		ErrorUnused:      c.unused,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, trafo.Fail(c, trafo.CodeNotConvertible, v, map[string]string{"target": target})
	}
	if err := dec.Decode(src); err != nil {
		return nil, trafo.Fail(c, trafo.CodeNotConvertible, v, map[string]string{"target": target})
	}
	return out, nil
}
