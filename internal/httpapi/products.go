package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/agent/tools"
	"github.com/tokowa/commerce-agent/internal/apperr"
	"github.com/tokowa/commerce-agent/internal/domain"
)

type productRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	BaseAmount  int64    `json:"base_amount" binding:"required,gte=0"`
	Currency    string   `json:"currency" binding:"required,len=3"`
	Stock       int      `json:"stock" binding:"gte=0"`
	VariantSKUs []string `json:"variant_skus"`
}

// SearchProducts matches a tenant's products by a query string.
func (s *Server) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	products, err := s.products.Search(c.Request.Context(), c.Param("tenant_id"), query)
	if err != nil {
		c.Error(apperr.Fatal(err, "search products"))
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct fetches one product by id.
func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.products.GetByID(c.Request.Context(), c.Param("tenant_id"), c.Param("id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "get product"))
		return
	}
	if product == nil {
		c.Error(apperr.NotFound("product not found"))
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a new product to a tenant's catalog.
func (s *Server) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(err.Error()))
		return
	}

	product := &tools.ProductSummary{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   domain.Money{Amount: req.BaseAmount, Currency: req.Currency},
		Stock:       req.Stock,
		VariantSKUs: req.VariantSKUs,
	}
	if err := s.products.Create(c.Request.Context(), c.Param("tenant_id"), product); err != nil {
		c.Error(apperr.Fatal(err, "create product"))
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces a product's editable fields.
func (s *Server) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(err.Error()))
		return
	}

	product := &tools.ProductSummary{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   domain.Money{Amount: req.BaseAmount, Currency: req.Currency},
		Stock:       req.Stock,
		VariantSKUs: req.VariantSKUs,
	}
	if err := s.products.Update(c.Request.Context(), c.Param("tenant_id"), product); err != nil {
		c.Error(apperr.Fatal(err, "update product"))
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog.
func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.products.Delete(c.Request.Context(), c.Param("tenant_id"), c.Param("id")); err != nil {
		c.Error(apperr.Fatal(err, "delete product"))
		return
	}
	c.Status(http.StatusNoContent)
}
