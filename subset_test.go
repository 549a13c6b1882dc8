package trafo_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/dsl"
)

func TestSubdict_PasswordsMatch(t *testing.T) {
	ctx := context.Background()
	match := trafo.Func(func(_ context.Context, v any) (any, *trafo.Error) {
		m := v.(map[string]any)
		if m["password"] != m["password_confirm"] {
			return nil, trafo.NewError(trafo.CodeNotEqual, "passwords do not match")
		}
		return m["password"], nil
	})
	d := trafo.Dict(
		trafo.NewKey("email", dsl.String()),
		trafo.Subdict("password", match,
			trafo.NewKey("password", dsl.String()),
			trafo.NewKey("password_confirm", dsl.String()),
		),
	)

	v, err := trafo.Check(ctx, d, map[string]any{"email": "a@example.com", "password": "pw", "password_confirm": "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"email": "a@example.com", "password": "pw"}, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, derr := d.Validate(ctx, map[string]any{"email": "a@example.com", "password": "pw", "password_confirm": "other"})
	if diff := cmp.Diff(map[string]any{"password": "passwords do not match"}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, derr = d.Validate(ctx, map[string]any{"email": "a@example.com", "password": "pw"})
	if diff := cmp.Diff(map[string]any{"password_confirm": "is required"}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestKeysSubset_ErrorValuesInResult(t *testing.T) {
	ctx := context.Background()
	cmpPwds := trafo.Func(func(_ context.Context, v any) (any, *trafo.Error) {
		m := v.(map[string]any)
		if m["pwd"] != m["pwd_again"] {
			return map[string]any{"pwd": trafo.NewError(trafo.CodeNotEqual, "not equal")}, nil
		}
		return map[string]any{"pwd": m["pwd"]}, nil
	})
	d := trafo.Dict(
		trafo.NewKey("name", dsl.String()),
		trafo.KeysSubset(cmpPwds, "pwd", "pwd_again"),
	)

	v, err := trafo.Check(ctx, d, map[string]any{"name": "x", "pwd": "a", "pwd_again": "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// pwd_again is consumed, so it is neither copied nor reported as extra
	if diff := cmp.Diff(map[string]any{"name": "x", "pwd": "a"}, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, derr := d.Validate(ctx, map[string]any{"name": "x", "pwd": "a", "pwd_again": "b"})
	if diff := cmp.Diff(map[string]any{"pwd": "not equal"}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestKeysSubset_Failures(t *testing.T) {
	ctx := context.Background()
	leaf := trafo.KeysSubset(trafo.OnError(trafo.DictKeys("from", "to"), "both bounds are needed"), "from", "to")
	_, derr := trafo.Dict(leaf).Validate(ctx, map[string]any{"from": 1})
	if diff := cmp.Diff(map[string]any{"from": "both bounds are needed"}, derr.AsDict(false)); diff != "" {
		t.Fatalf("leaf failure goes to the first name (-want +got):\n%s", diff)
	}

	spread := trafo.KeysSubset(trafo.DictOf(map[string]trafo.Checker{"from": dsl.Int(), "to": dsl.Int()}), "from", "to")
	_, derr = trafo.Dict(spread).Validate(ctx, map[string]any{"from": "x", "to": "y"})
	if diff := cmp.Diff([]string{"from", "to"}, derr.Keys()); diff != "" {
		t.Fatalf("aggregate failure is spread by key (-want +got):\n%s", diff)
	}
}

func TestKeysSubset_ResultShadowsKey(t *testing.T) {
	rename := trafo.Func(func(_ context.Context, v any) (any, *trafo.Error) {
		return map[string]any{"name": "from-subset"}, nil
	})
	d := trafo.Dict(
		trafo.NewKey("name", dsl.String()),
		trafo.KeysSubset(rename, "x"),
	)
	v, derr := d.Validate(context.Background(), map[string]any{"name": "real", "x": 1})
	if derr == nil {
		t.Fatalf("expected a shadowing failure, got %v", v)
	}
	if diff := cmp.Diff(map[string]any{"name": "name key was shadowed"}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if derr.Child("name").Code != trafo.CodeKeyShadowed {
		t.Fatalf("code: %s", derr.Child("name").Code)
	}
}

func TestXorKey(t *testing.T) {
	ctx := context.Background()
	email := dsl.String()
	d := trafo.Dict(trafo.XorKey("email", "login", email))

	v, err := trafo.Check(ctx, d, map[string]any{"login": "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"email": "bob"}, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, derr := d.Validate(ctx, map[string]any{"email": "a", "login": "b"})
	if diff := cmp.Diff(map[string]any{
		"email": "correct only if login is not defined",
		"login": "correct only if email is not defined",
	}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if got := derr.Child("email").Checker; got != trafo.Checker(email) {
		t.Fatalf("conflict should be attributed to the value checker, got %#v", got)
	}

	_, derr = d.Validate(ctx, map[string]any{})
	if diff := cmp.Diff(map[string]any{
		"email": "is required if login is not defined",
		"login": "is required if email is not defined",
	}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if derr.Child("login").Checker == nil {
		t.Fatalf("missing pair should carry its checker")
	}
}

func TestConfirmKey(t *testing.T) {
	ctx := context.Background()
	pwd := dsl.String().Min(1)
	d := trafo.Dict(trafo.ConfirmKey("pwd", "pwd_confirm", pwd))

	v, err := trafo.Check(ctx, d, map[string]any{"pwd": "a", "pwd_confirm": "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"pwd": "a", "pwd_confirm": "a"}, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, derr := d.Validate(ctx, map[string]any{"pwd": "a", "pwd_confirm": "b"})
	if diff := cmp.Diff(map[string]any{"pwd_confirm": "must be equal to pwd"}, derr.AsDict(false)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if got := derr.Child("pwd_confirm").Checker; got != trafo.Checker(pwd) {
		t.Fatalf("mismatch should be attributed to the value checker, got %#v", got)
	}
}
