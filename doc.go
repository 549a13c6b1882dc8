// Package trafo provides:
//
// - Composable checkers that validate and convert values (Checker, And, Or, Forward)
// - Mapping validation with renaming, defaults and an extra key policy (Dict, Key)
// - A structured error tree (Error) with flat and nested renderings and JSON Pointer issues
//
// Design policy:
// - Data problems are returned as *Error values; a malformed schema panics with *ConfigError.
// - Checkers are immutable after construction, except for the one-time Forward binding.
// - Leaf checkers live under dsl/, input decoding under source/, form helpers under formdata/.
//
// Typical usage:
//
//	user := trafo.Dict(
//		trafo.NewKey("name", dsl.String()),
//		trafo.NewKey("age", dsl.Int().Gte(0)).Optional(),
//	)
//	v, err := trafo.CheckFrom(ctx, user, trafo.JSONBytes(data))
//	if e, ok := trafo.AsError(err); ok {
//		fmt.Println(e.AsDict(true))
//	}
package trafo
