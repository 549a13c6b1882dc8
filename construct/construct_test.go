package construct_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/construct"
	"github.com/reoring/trafo/dsl"
)

func TestFrom(t *testing.T) {
	ctx := context.Background()
	user := construct.From(map[string]any{
		"name":   reflect.TypeFor[string](),
		"email?": dsl.String(),
		"tags":   []any{reflect.TypeFor[string]()},
		"kind":   "user",
		"point":  []any{reflect.TypeFor[int](), reflect.TypeFor[float64]()},
		"extra":  reflect.TypeFor[any](),
		"parent": nil,
	})

	in := map[string]any{
		"name":   "",
		"tags":   []any{"a"},
		"kind":   "user",
		"point":  []any{1, 2.5},
		"extra":  map[string]any{"x": 1},
		"parent": nil,
	}
	v, err := trafo.Check(ctx, user, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(in, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, derr := user.Validate(ctx, map[string]any{
		"name":   1,
		"tags":   []any{"a"},
		"kind":   "admin",
		"point":  []any{1},
		"extra":  nil,
		"parent": 3,
	})
	if derr == nil {
		t.Fatalf("expected failure")
	}
	if diff := cmp.Diff([]string{"kind", "name", "parent", "point"}, derr.Keys()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestFrom_Func(t *testing.T) {
	upper := construct.From(func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New("not text")
		}
		return strings.ToUpper(s), nil
	})
	v, err := trafo.Check(context.Background(), upper, "go")
	if err != nil || v != "GO" {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if _, err := trafo.Check(context.Background(), upper, 1); err == nil {
		t.Fatalf("expected failure")
	}
}

func TestFrom_ExactType(t *testing.T) {
	type point struct{ X, Y int }
	c := construct.From(reflect.TypeFor[point]())
	if !trafo.Is(context.Background(), c, point{1, 2}) {
		t.Fatalf("point rejected")
	}
	if trafo.Is(context.Background(), c, map[string]any{"X": 1}) {
		t.Fatalf("map accepted as point")
	}
}

func TestKey(t *testing.T) {
	k := construct.Key("nick?", dsl.String())
	if k.Name() != "nick" || !k.IsOptional() {
		t.Fatalf("optional shorthand: %q %v", k.Name(), k.IsOptional())
	}
	if k := construct.Key("nick", nil); k.IsOptional() {
		t.Fatalf("plain key must be required")
	}
}

func TestFromDocument(t *testing.T) {
	ctx := context.Background()
	c, err := construct.FromDocument(map[string]any{
		"id":     "uuid",
		"name":   "string",
		"age?":   "int",
		"tags":   []any{"string"},
		"bio":    "text",
		"active": "bool",
		"kind":   "=user",
		"sign":   "==",
		"range":  []any{"int", "int"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	v, err := trafo.Check(ctx, c, map[string]any{
		"id":     "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		"name":   "ada",
		"tags":   []any{},
		"bio":    "",
		"active": true,
		"kind":   "user",
		"sign":   "=",
		"range":  []any{1, 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(map[string]any)["age"]; ok {
		t.Fatalf("absent optional key must be omitted")
	}

	_, derr := c.Validate(ctx, map[string]any{"name": "", "age": "x"})
	if derr == nil {
		t.Fatalf("expected failure")
	}
	if derr.Child("name") == nil || derr.Child("age") == nil || derr.Child("id") == nil || derr.Child("kind") == nil {
		t.Fatalf("unexpected result:\n%s", spew.Sdump(derr.ToStruct(true)))
	}
}

func TestFromDocument_Errors(t *testing.T) {
	for name, doc := range map[string]any{
		"unknown type": map[string]any{"a": []any{"strnig"}},
		"twice":        map[string]any{"a": "int", "a?": "int"},
		"empty list":   map[string]any{"a": []any{}},
	} {
		if _, err := construct.FromDocument(doc); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := construct.FromDocument(map[string]any{"a": []any{"strnig"}})
	if err == nil || !strings.Contains(err.Error(), "/a/0") {
		t.Fatalf("error must name the location: %v", err)
	}
}

func TestTypeNames(t *testing.T) {
	got := construct.TypeNames()
	want := []string{"any", "bool", "datetime", "float", "int", "null", "string", "text", "url", "uuid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestFromDocument_Literal(t *testing.T) {
	c, err := construct.FromDocument(map[string]any{"kind": "=user"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, derr := c.Validate(context.Background(), map[string]any{"kind": "admin"})
	if derr == nil || derr.Child("kind").Code != trafo.CodeIsNotExactly {
		t.Fatalf("expected is_not_exactly, got %v", derr)
	}
	if _, err := construct.FromDocument(map[string]any{"kind": "user"}); err == nil {
		t.Fatalf("bare strings must name a type")
	}
}
