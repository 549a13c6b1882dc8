// Package dsl provides the leaf checkers used to build trafo schemas.
//
// Overview
//   - Scalars: Any, Null, Bool/ToBool, String, Regexp, Int/ToInt, Float/ToFloat.
//   - Exact values: Atom, Enum; Go types: Type[T]; plain functions: Call.
//   - Collections: List, Tuple, Mapping. Element failures are keyed by index or key.
//   - Formats: UUID (google/uuid), DateTime (RFC 3339), URL.
//   - Struct[T] decodes a validated mapping into a Go struct using `json` tags.
//
// Every checker is a small immutable value. Option methods such as Min, Max or
// Gte return a modified copy, so a shared base checker can be refined freely:
//
//	name := dsl.String().Max(64)
//	short := name.Max(8) // name is unchanged
//
// Example
//
//	user := trafo.Dict(
//		trafo.NewKey("id", dsl.UUID()),
//		trafo.NewKey("age", dsl.ToInt().Gte(0)).Optional(),
//		trafo.NewKey("tags", dsl.List(dsl.String()).Max(10)).Default([]any{}),
//	)
//	v, err := trafo.Check(ctx, user, map[string]any{"id": "6f1c...", "age": "42"})
//
// Failures carry stable codes (trafo.CodeInvalidType, trafo.CodeTooShort, ...) and
// messages rendered through i18n.
package dsl
