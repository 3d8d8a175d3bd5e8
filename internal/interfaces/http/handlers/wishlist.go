// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/wishlist"
)

// WishlistHandler handles wishlist-related HTTP requests
type WishlistHandler struct {
	wishlists *wishlist.Service
	logger    *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *wishlist.Service, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, logger: logger}
}

// GetWishlist handles GET /users/wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	products, err := h.wishlists.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, products, len(products))
}

// AddToWishlist handles POST /users/wishlist/:productId
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ids, err := h.wishlists.Add(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Product added to wishlist", ids)
}

// RemoveFromWishlist handles DELETE /users/wishlist/:productId
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ids, err := h.wishlists.Remove(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Product removed from wishlist", ids)
}
