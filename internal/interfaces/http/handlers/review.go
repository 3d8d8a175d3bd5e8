// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviews *product.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *product.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// ApprovalRequest toggles review moderation
type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ListProductReviews handles GET /reviews/product/:id
func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	reviews, err := h.reviews.ListForProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, reviews, len(reviews))
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req product.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Review created successfully", review)
}

// UpdateReview handles PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req product.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Review updated successfully", review)
}

// DeleteReview handles DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	err := h.reviews.Delete(c.Request.Context(), c.Param("id"), userID, middleware.IsAdminFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Review deleted successfully", nil)
}

// SetApproval handles PUT /reviews/:id/approval
func (h *ReviewHandler) SetApproval(c *gin.Context) {
	var req ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.SetApproval(c.Request.Context(), c.Param("id"), *req.Approved)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Review moderation updated", review)
}
