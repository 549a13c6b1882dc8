package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/trafo"
	"github.com/reoring/trafo/dsl"
	ginmw "github.com/reoring/trafo/middleware/gin"
)

func TestValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	schema := trafo.Dict(
		trafo.NewKey("name", dsl.String()),
		trafo.NewKey("age", dsl.ToInt()),
	)
	r.POST("/people", ginmw.Validate(schema), func(c *gin.Context) {
		v, ok := ginmw.GetValue(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	form := url.Values{"name": {"ada"}, "age": {"36"}}
	req := httptest.NewRequest(http.MethodPost, "/people", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":"ada","age":36}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/people", strings.NewReader(`{"name":"ada","age":"old"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":{"age":"value can't be converted to integer"},"issues":[{"path":"/age","code":"not_convertible","message":"value can't be converted to integer"}]}`, rec.Body.String())
}
