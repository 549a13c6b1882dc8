package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func decodeOutput(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestDecode_YAML(t *testing.T) {
	p := writeFile(t, "doc.yaml", "name: pen\nqty: 2\n")
	out, _, err := run(t, "", "decode", p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pen","qty":2}`, out)
}

func TestDecode_DuplicateKey(t *testing.T) {
	_, _, err := run(t, `{"a":1,"a":2}`, "decode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode stdin")
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, _, err := run(t, `{}`, "decode", "--format", "toml")
	require.Error(t, err)
}

func TestFoldUnfold(t *testing.T) {
	out, _, err := run(t, `{"items__0__name":"pen","items__1__name":"ink","page":"1"}`, "fold")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"name":"pen"},{"name":"ink"}],"page":"1"}`, out)

	out, _, err = run(t, `{"a":{"b":[1,2]}}`, "unfold", "--delim", ".")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a.b.0":1,"a.b.1":2}`, out)

	_, _, err = run(t, `[1]`, "fold")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	schema := writeFile(t, "schema.yaml", "name: string\nage?: int\ntags: [string]\n")

	out, _, err := run(t, `{"name":"ada","tags":["x"]}`, "check", "--schema", schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","tags":["x"]}`, out)

	out, _, err = run(t, `{"name":"","age":"x","tags":[],"extra":1}`, "check", "-s", schema, "--flat")
	require.ErrorIs(t, err, errInvalid)
	assert.Equal(t, map[string]any{
		"name":  "blank value is not allowed",
		"age":   "value is not an integer",
		"extra": "extra is not allowed key",
	}, decodeOutput(t, out))

	_, _, err = run(t, `{"name":"ada","tags":[],"extra":1}`, "check", "-s", schema, "--allow-extra")
	require.NoError(t, err)
}

func TestCheck_Structured(t *testing.T) {
	schema := writeFile(t, "schema.json", `{"name":"string"}`)
	out, _, err := run(t, `{}`, "check", "-s", schema, "--lang", "ja")
	require.ErrorIs(t, err, errInvalid)
	assert.Equal(t, map[string]any{
		"code": "some_elements_did_not_match",
		"nested": map[string]any{
			"name": map[string]any{"code": "required", "message": "必須です"},
		},
	}, decodeOutput(t, out))
}

func TestCheck_LogsAndMetrics(t *testing.T) {
	schema := writeFile(t, "schema.json", `{"n":"int"}`)
	_, stderr, err := run(t, `{"n":"x"}`, "check", "-s", schema, "--log-level", "debug", "--metrics")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, stderr, `msg="check failed"`)
	assert.Contains(t, stderr, `path=/n code=invalid_type`)
	assert.Contains(t, stderr, `trafo_checks_total{checker="`+schema+`",outcome="invalid"} 1`)
}

func TestCheck_SchemaErrors(t *testing.T) {
	_, _, err := run(t, `{}`, "check")
	require.Error(t, err)

	bad := writeFile(t, "bad.json", `{"n":"integer"}`)
	_, _, err = run(t, `{}`, "check", "-s", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := run(t, `{}`, "decode", "--log-level", "loud")
	require.Error(t, err)
}

func TestCheck_ManyFiles(t *testing.T) {
	schema := writeFile(t, "schema.json", `{"n":"int"}`)
	good := writeFile(t, "good.json", `{"n":1}`)
	bad := writeFile(t, "bad.yaml", "n: x\n")

	out, _, err := run(t, "", "check", "-s", schema, "--flat", good, bad)
	require.ErrorIs(t, err, errInvalid)
	assert.Equal(t, []any{
		map[string]any{"file": good, "valid": true, "value": map[string]any{"n": 1.0}},
		map[string]any{"file": bad, "valid": false, "errors": map[string]any{"n": "value is not an integer"}},
	}, decodeOutput(t, out))

	_, _, err = run(t, "", "check", "-s", schema, good, "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin")
}
