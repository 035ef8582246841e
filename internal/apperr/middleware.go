package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusFor maps an Error's Kind to the HTTP status the middleware writes.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPolicyViolation:
		return http.StatusForbidden
	case KindTransientInfra, KindCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Middleware maps the last error a handler attached via c.Error into an
// HTTP response, so handlers only need to construct a typed Error and
// return; gin.Recovery (registered at the engine level) still owns panics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		c.AbortWithStatusJSON(StatusFor(err), gin.H{"error": err.Error()})
	}
}
