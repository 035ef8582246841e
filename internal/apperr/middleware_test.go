package apperr_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tokowa/commerce-agent/internal/apperr"
)

func newTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperr.Middleware())
	r.GET("/thing", handler)
	return r
}

func TestMiddlewareMapsValidationTo400(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) {
		c.Error(apperr.Validation("missing field"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thing", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing field")
}

func TestMiddlewareMapsNotFoundTo404(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) {
		c.Error(apperr.NotFound("tenant not found"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMiddlewareMapsUnknownErrorTo500(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) {
		c.Error(errors.New("unexpected"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thing", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMiddlewareLeavesSuccessResponsesUntouched(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thing", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusForMapsEachKind(t *testing.T) {
	cases := map[error]int{
		apperr.Validation("x"):                http.StatusBadRequest,
		apperr.NotFound("x"):                  http.StatusNotFound,
		apperr.PolicyViolation("x"):           http.StatusForbidden,
		apperr.TransientInfra(nil, "x"):       http.StatusServiceUnavailable,
		apperr.CircuitOpen("x"):               http.StatusServiceUnavailable,
		apperr.Fatal(nil, "x"):                http.StatusInternalServerError,
		errors.New("plain"):                   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, apperr.StatusFor(err))
	}
}
