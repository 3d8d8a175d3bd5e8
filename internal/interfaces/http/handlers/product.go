// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	products *product.Service
	logger   *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// ListProducts handles GET /products. Inactive products are listed for admins only.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req product.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	if !middleware.IsAdminFromContext(c) {
		req.IncludeInactive = false
	}

	page, err := h.products.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, page, len(page.Products))
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, p)
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, p)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Product created successfully", created)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req product.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Product updated successfully", updated)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Product deleted successfully", nil)
}
