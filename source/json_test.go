package source_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/trafo/source"
)

func TestJSON_Tree(t *testing.T) {
	v, err := source.JSON([]byte(`{"a":[1,"x",true,null],"b":{"c":2.5}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"a": []any{1.0, "x", true, nil},
		"b": map[string]any{"c": 2.5},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestJSON_UseNumber(t *testing.T) {
	v, err := source.JSONReader(strings.NewReader(`[12345678901234567890, 1.5]`), source.UseNumber())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []any{json.Number("12345678901234567890"), json.Number("1.5")}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestJSON_DuplicateKeys(t *testing.T) {
	_, err := source.JSON([]byte(`{"a":{"b":1,"b":2}}`))
	var dup *source.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if dup.Key != "b" || dup.Path != "/a/b" {
		t.Fatalf("unexpected error: %+v", dup)
	}

	v, err := source.JSON([]byte(`{"b":1,"b":2}`), source.AllowDuplicateKeys())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"b": 2.0}, v); diff != "" {
		t.Fatalf("last value wins (-want +got):\n%s", diff)
	}
}

func TestJSON_Errors(t *testing.T) {
	if _, err := source.JSON([]byte(`{} []`)); !errors.Is(err, source.ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	if _, err := source.JSON([]byte(`   `)); !errors.Is(err, source.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := source.JSON([]byte(`[1, 2`)); err == nil {
		t.Fatalf("expected error for truncated input")
	}
}

func TestJSON_MissingSeparators(t *testing.T) {
	for _, doc := range []string{
		`{"a" 1}`,
		`[1 2]`,
	} {
		_, err := source.JSON([]byte(doc))
		if !errors.Is(err, source.ErrSyntax) {
			t.Fatalf("%s: expected ErrSyntax, got %v", doc, err)
		}
		if _, err := source.JSONReader(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: reader accepted malformed input", doc)
		}
	}
	for _, doc := range []string{`{"a":1 "b":2}`, `[[1] [2]]`, `{"a":1,}`, `[1,]`, `{"a":}`} {
		if _, err := source.JSON([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", doc)
		}
	}
}
