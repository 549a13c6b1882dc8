package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/middleware"
)

// Validate checks the request body with c, stores the result in the request
// context on success, or answers 400 with middleware.ErrorPayload. opts
// control how the body is read.
func Validate(c trafo.Checker, opts ...middleware.Option) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			req := ec.Request()
			v, derr := trafo.ValidateFrom(req.Context(), c, middleware.RequestSource(req, opts...))
			if derr != nil {
				return ec.JSON(http.StatusBadRequest, middleware.ErrorPayload(derr))
			}
			ec.SetRequest(req.WithContext(middleware.ContextWithValue(req.Context(), v)))
			return next(ec)
		}
	}
}

// GetValue fetches the validated value from echo.Context.
func GetValue(ec echo.Context) (any, bool) {
	return middleware.ValueFromContext(ec.Request().Context())
}
