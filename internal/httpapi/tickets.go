package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tokowa/commerce-agent/internal/apperr"
)

// ListTickets returns a tenant's support tickets.
func (s *Server) ListTickets(c *gin.Context) {
	tickets, err := s.tickets.List(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "list tickets"))
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTicket fetches one ticket by id.
func (s *Server) GetTicket(c *gin.Context) {
	ticket, err := s.tickets.GetByID(c.Request.Context(), c.Param("tenant_id"), c.Param("id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "get ticket"))
		return
	}
	if ticket == nil {
		c.Error(apperr.NotFound("ticket not found"))
		return
	}
	c.JSON(http.StatusOK, ticket)
}
