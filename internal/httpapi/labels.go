package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tokowa/commerce-agent/internal/apperr"
)

// ListLabels returns a tenant's configured labels.
func (s *Server) ListLabels(c *gin.Context) {
	labels, err := s.labels.ListAvailable(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "list labels"))
		return
	}
	c.JSON(http.StatusOK, labels)
}
