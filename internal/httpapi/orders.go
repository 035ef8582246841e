package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tokowa/commerce-agent/internal/apperr"
)

// GetOrder fetches one order by id.
func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orders.GetByID(c.Request.Context(), c.Param("tenant_id"), c.Param("id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "get order"))
		return
	}
	if order == nil {
		c.Error(apperr.NotFound("order not found"))
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListCustomerOrders lists a customer's orders, most recent first.
func (s *Server) ListCustomerOrders(c *gin.Context) {
	orders, err := s.orders.ListByCustomer(c.Request.Context(), c.Param("tenant_id"), c.Param("customer_id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "list customer orders"))
		return
	}
	c.JSON(http.StatusOK, orders)
}
