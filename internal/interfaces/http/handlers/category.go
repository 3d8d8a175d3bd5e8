// internal/interfaces/http/handlers/category.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/category"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categories *category.Service
	logger     *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *category.Service, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	roots, err := h.categories.ListRoots(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, roots, len(roots))
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	detail, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, detail)
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req category.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Category created successfully", created)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req category.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.categories.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Category updated successfully", updated)
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Category deleted successfully", nil)
}
