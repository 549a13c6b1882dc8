package observe

import (
	"context"
	"log/slog"

	"github.com/reoring/trafo"
)

// Logged returns a checker that logs each failure of inner at debug level,
// one record per flattened issue, and successes at debug level as well.
func Logged(logger *slog.Logger, name string, inner trafo.Checker) trafo.Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &logged{log: logger.With("checker", name), inner: inner}
}

type logged struct {
	log   *slog.Logger
	inner trafo.Checker
}

func (l *logged) Validate(ctx context.Context, v any) (any, *trafo.Error) {
	out, derr := l.inner.Validate(ctx, v)
	if !l.log.Enabled(ctx, slog.LevelDebug) {
		return out, derr
	}
	if derr == nil {
		l.log.DebugContext(ctx, "check passed")
		return out, nil
	}
	iss := derr.Issues()
	l.log.DebugContext(ctx, "check failed", "issues", len(iss))
	for _, it := range iss {
		l.log.DebugContext(ctx, "issue", "path", it.Path, "code", it.Code, "message", it.Message)
	}
	return out, derr
}
