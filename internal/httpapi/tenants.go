package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/apperr"
	"github.com/tokowa/commerce-agent/internal/domain"
)

type tenantRequest struct {
	Name          string `json:"name" binding:"required"`
	Currency      string `json:"currency" binding:"required,len=3"`
	Timezone      string `json:"timezone" binding:"required"`
	Active        bool   `json:"active"`
	WASession     string `json:"wa_session" binding:"required"`
	LLMConfigName string `json:"llm_config_name" binding:"required"`
	AgentPrompt   string `json:"agent_prompt"`
}

// ListTenants returns every configured tenant.
func (s *Server) ListTenants(c *gin.Context) {
	tenants, err := s.tenants.List(c.Request.Context())
	if err != nil {
		c.Error(apperr.Fatal(err, "list tenants"))
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// GetTenant fetches one tenant by id.
func (s *Server) GetTenant(c *gin.Context) {
	tenant, err := s.tenants.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "get tenant"))
		return
	}
	if tenant == nil {
		c.Error(apperr.NotFound("tenant not found"))
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// CreateTenant onboards a new tenant.
func (s *Server) CreateTenant(c *gin.Context) {
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(err.Error()))
		return
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Currency:      req.Currency,
		Timezone:      req.Timezone,
		Active:        req.Active,
		WASession:     req.WASession,
		LLMConfigName: req.LLMConfigName,
		AgentPrompt:   req.AgentPrompt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tenants.Create(c.Request.Context(), tenant); err != nil {
		c.Error(apperr.Fatal(err, "create tenant"))
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

// UpdateTenant replaces a tenant's editable fields.
func (s *Server) UpdateTenant(c *gin.Context) {
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(err.Error()))
		return
	}

	existing, err := s.tenants.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "get tenant"))
		return
	}
	if existing == nil {
		c.Error(apperr.NotFound("tenant not found"))
		return
	}

	existing.Name = req.Name
	existing.Currency = req.Currency
	existing.Timezone = req.Timezone
	existing.Active = req.Active
	existing.WASession = req.WASession
	existing.LLMConfigName = req.LLMConfigName
	existing.AgentPrompt = req.AgentPrompt

	if err := s.tenants.Update(c.Request.Context(), existing); err != nil {
		c.Error(apperr.Fatal(err, "update tenant"))
		return
	}
	c.JSON(http.StatusOK, existing)
}
