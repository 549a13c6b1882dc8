package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/middleware"
)

// Validate checks the request body with c and stores the result in the
// request context. On failure it answers 400 with middleware.ErrorPayload
// and aborts the chain. opts control how the body is read.
func Validate(c trafo.Checker, opts ...middleware.Option) gin.HandlerFunc {
	return func(gc *gin.Context) {
		v, derr := trafo.ValidateFrom(gc.Request.Context(), c, middleware.RequestSource(gc.Request, opts...))
		if derr != nil {
			gc.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(derr))
			return
		}
		gc.Request = gc.Request.WithContext(middleware.ContextWithValue(gc.Request.Context(), v))
		gc.Next()
	}
}

// GetValue fetches the validated value from gin.Context.
func GetValue(gc *gin.Context) (any, bool) {
	return middleware.ValueFromContext(gc.Request.Context())
}
