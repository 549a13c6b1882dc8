package observe_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/dsl"
	"github.com/reoring/trafo/observe"
)

func TestLogged_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := observe.Logged(logger, "user", trafo.Dict(
		trafo.NewKey("name", dsl.String()),
		trafo.NewKey("age", dsl.Int()),
	))

	_, derr := c.Validate(context.Background(), map[string]any{"age": "x"})
	require.NotNil(t, derr)
	out := buf.String()
	assert.Contains(t, out, `msg="check failed" checker=user issues=2`)
	assert.Contains(t, out, `path=/name code=required`)
	assert.Contains(t, out, `path=/age code=invalid_type`)

	buf.Reset()
	_, derr = c.Validate(context.Background(), map[string]any{"name": "a", "age": 1})
	require.Nil(t, derr)
	assert.Contains(t, buf.String(), `msg="check passed" checker=user`)
}

func TestLogged_QuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	c := observe.Logged(logger, "n", dsl.Int())
	_, derr := c.Validate(context.Background(), "x")
	require.NotNil(t, derr)
	assert.Empty(t, buf.String())
}
