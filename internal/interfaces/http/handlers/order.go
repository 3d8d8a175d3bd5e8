// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orders *order.Service
	carts  *cart.Service
	logger *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, carts *cart.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts, logger: logger}
}

// CancelOrderRequest carries an optional cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateStatusRequest is an admin status change
type UpdateStatusRequest struct {
	Status         order.OrderStatus `json:"status" binding:"required"`
	Comment        string            `json:"comment" binding:"max=500"`
	TrackingNumber string            `json:"tracking_number" binding:"max=100"`
}

// UpdatePaymentRequest is an admin payment status change
type UpdatePaymentRequest struct {
	PaymentStatus order.PaymentStatus `json:"payment_status" binding:"required"`
}

// CreateOrder handles POST /orders. When items are omitted the current cart
// is ordered and the ordered lines are cleared from it afterwards.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req order.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	fromCart := len(req.Items) == 0
	if fromCart {
		lines, err := h.carts.Lines(ctx, userID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		for _, line := range lines {
			req.Items = append(req.Items, order.Line{ProductID: line.ProductID, Quantity: line.Quantity})
		}
	}

	created, err := h.orders.Create(ctx, userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if fromCart {
		ordered := make([]string, 0, len(created.Items))
		for _, item := range created.Items {
			ordered = append(ordered, item.ProductID)
		}
		if err := h.carts.Clear(context.WithoutCancel(ctx), userID, ordered...); err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":  userID,
				"order_id": created.ID,
			}).Warn("Order placed but cart could not be cleared")
		}
	}

	respondMessage(c, http.StatusCreated, "Order created successfully", created)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, orders, len(orders))
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	h.respondVisible(c, o, err)
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	o, err := h.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	h.respondVisible(c, o, err)
}

func (h *OrderHandler) respondVisible(c *gin.Context, o *order.Order, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	if !o.IsOwnedBy(userID) && !middleware.IsAdminFromContext(c) {
		respondError(c, h.logger, apperror.Forbidden("you cannot view this order"))
		return
	}
	respondData(c, http.StatusOK, o)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	cancelled, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Order cancelled successfully", cancelled)
}

// UpdateStatus handles PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.orders.Transition(c.Request.Context(), c.Param("id"), req.Status, order.TransitionOptions{
		Reason:         req.Comment,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Order status updated", updated)
}

// UpdatePayment handles PUT /orders/:id/payment
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.orders.SetPaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Payment status updated", updated)
}
