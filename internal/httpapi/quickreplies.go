package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/apperr"
	"github.com/tokowa/commerce-agent/internal/domain"
)

type quickReplyRequest struct {
	Shortcut string `json:"shortcut" binding:"required"`
	Body     string `json:"body" binding:"required"`
}

// ListQuickReplies returns a tenant's canned responses.
func (s *Server) ListQuickReplies(c *gin.Context) {
	replies, err := s.quickReplies.List(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "list quick replies"))
		return
	}
	c.JSON(http.StatusOK, replies)
}

// CreateQuickReply adds a new canned response.
func (s *Server) CreateQuickReply(c *gin.Context) {
	var req quickReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(err.Error()))
		return
	}

	reply := &domain.QuickReply{
		ID:       uuid.NewString(),
		TenantID: c.Param("tenant_id"),
		Shortcut: req.Shortcut,
		Body:     req.Body,
	}
	if err := s.quickReplies.Create(c.Request.Context(), reply); err != nil {
		c.Error(apperr.Fatal(err, "create quick reply"))
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// DeleteQuickReply removes a canned response.
func (s *Server) DeleteQuickReply(c *gin.Context) {
	if err := s.quickReplies.Delete(c.Request.Context(), c.Param("tenant_id"), c.Param("id")); err != nil {
		c.Error(apperr.Fatal(err, "delete quick reply"))
		return
	}
	c.Status(http.StatusNoContent)
}
