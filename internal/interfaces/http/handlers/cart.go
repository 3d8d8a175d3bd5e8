// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	carts  *cart.Service
	logger *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// GetCart handles GET /users/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	resp, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// AddToCart handles POST /users/cart. A missing quantity adds one unit.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req cart.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	lines, err := h.carts.Add(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Item added to cart", lines)
}

// UpdateCartItem handles PUT /users/cart/:productId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	lines, err := h.carts.SetQuantity(c.Request.Context(), userID, c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Cart updated", lines)
}

// RemoveFromCart handles DELETE /users/cart/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	lines, err := h.carts.Remove(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Item removed from cart", lines)
}
