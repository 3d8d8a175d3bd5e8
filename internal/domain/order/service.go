// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/your-org/ecommerce-core/internal/domain/order")

// maxNumberAttempts bounds retries after an order number collision
const maxNumberAttempts = 5

// Service assembles orders and drives their status transitions
type Service struct {
	orders   Repository
	products product.Repository
	numbers  *NumberGenerator
	logger   *logrus.Entry
	now      func() time.Time
}

// NewService creates a new order service
func NewService(orders Repository, products product.Repository, numbers *NumberGenerator, logger *logrus.Logger) *Service {
	return &Service{
		orders:   orders,
		products: products,
		numbers:  numbers,
		logger:   logger.WithField("component", "order"),
		now:      time.Now,
	}
}

// Line is one requested product and quantity
type Line struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents order creation data. Items is the cart
// snapshot being ordered.
type CreateOrderRequest struct {
	Items           []Line        `json:"items" binding:"omitempty,dive"`
	ShippingAddress Address       `json:"shipping_address" binding:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method" binding:"required"`
	Tax             float64       `json:"tax" binding:"gte=0"`
	ShippingCost    float64       `json:"shipping_cost" binding:"gte=0"`
	Discount        float64       `json:"discount" binding:"gte=0"`
	Notes           string        `json:"notes" binding:"max=1000"`
}

// TransitionOptions carries data recorded with a status change
type TransitionOptions struct {
	Reason         string
	TrackingNumber string
	// OwnerID marks a customer cancellation: the order must belong to this
	// user and must not have shipped.
	OwnerID string
}

// Create validates the snapshot, prices it from current product data and
// persists a pending order under a freshly allocated number.
func (s *Service) Create(ctx context.Context, userID string, req CreateOrderRequest) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.Create")
	defer span.End()

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lines))
	var subtotal float64
	for _, line := range lines {
		p, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.NotFound("product not found: " + line.ProductID)
			}
			return nil, apperror.Internal("failed to load product", err)
		}
		item := Item{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			LineTotal: round2(p.Price * float64(line.Quantity)),
		}
		if len(p.Images) > 0 {
			item.Image = p.Images[0]
		}
		items = append(items, item)
		subtotal += item.LineTotal
	}

	subtotal = round2(subtotal)
	total := round2(subtotal + req.Tax + req.ShippingCost - req.Discount)
	if total < 0 {
		return nil, apperror.Validation("discount exceeds order total")
	}

	now := s.now().UTC()
	order := &Order{
		ID:              repository.NewID(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   PaymentStatusPending,
		OrderStatus:     OrderStatusPending,
		Subtotal:        subtotal,
		Tax:             round2(req.Tax),
		ShippingCost:    round2(req.ShippingCost),
		Discount:        round2(req.Discount),
		Total:           total,
		Notes:           req.Notes,
		StatusHistory:   []StatusChange{{Status: string(OrderStatusPending), Comment: "Order created", At: now}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for attempt := 1; ; attempt++ {
		number, err := s.numbers.Next(ctx)
		if err != nil {
			span.SetStatus(codes.Error, "number allocation failed")
			return nil, apperror.Internal("failed to create order", err)
		}
		order.OrderNumber = number

		err = s.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			span.SetStatus(codes.Error, "persist failed")
			return nil, apperror.Internal("failed to create order", err)
		}
		metrics.OrderNumberCollisions.Inc()
		s.logger.WithField("order_number", number).Warn("Order number collision, allocating another")
		if attempt >= maxNumberAttempts {
			return nil, apperror.Concurrency("could not allocate a unique order number", err)
		}
	}

	metrics.OrdersCreated.Inc()
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	)
	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total,
	}).Info("Order created")
	return order, nil
}

// Get retrieves an order by id
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return order, nil
}

// GetByNumber retrieves an order by its order number
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, lookupError(err)
	}
	return order, nil
}

// ListForUser returns a user's orders, newest first
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve orders", err)
	}
	return orders, nil
}

// Transition moves an order to a new status, stamping delivery and
// cancellation times.
func (s *Service) Transition(ctx context.Context, id string, target OrderStatus, opts TransitionOptions) (*Order, error) {
	if !target.Valid() {
		return nil, apperror.Validation("unknown order status: " + string(target))
	}

	order, err := repository.Mutate[*Order](ctx, s.orders, id, func(o *Order) error {
		if opts.OwnerID != "" {
			if !o.IsOwnedBy(opts.OwnerID) {
				return apperror.Forbidden("you cannot cancel this order")
			}
			if o.OrderStatus == OrderStatusShipped {
				return apperror.Validation("shipped orders cannot be cancelled by the customer")
			}
		}
		if o.OrderStatus.IsFinal() {
			return apperror.ErrOrderFinalized
		}
		if !CanTransition(o.OrderStatus, target) {
			return apperror.ErrInvalidTransition
		}

		now := s.now().UTC()
		o.OrderStatus = target
		switch target {
		case OrderStatusShipped:
			if opts.TrackingNumber != "" {
				o.TrackingNumber = opts.TrackingNumber
			}
		case OrderStatusDelivered:
			o.DeliveredAt = &now
		case OrderStatusCancelled:
			o.CancelledAt = &now
			o.CancelReason = opts.Reason
		}
		o.StatusHistory = append(o.StatusHistory, StatusChange{Status: string(target), Comment: opts.Reason, At: now})
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, writeError(err)
	}

	metrics.OrderTransitions.WithLabelValues(string(target)).Inc()
	s.logger.WithFields(logrus.Fields{"order_id": id, "status": target}).Info("Order status changed")
	return order, nil
}

// Cancel lets the owner cancel an order that has not shipped yet. The
// ownership and shipping checks run against the version being written.
func (s *Service) Cancel(ctx context.Context, id, userID, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "Cancelled by customer"
	}
	return s.Transition(ctx, id, OrderStatusCancelled, TransitionOptions{Reason: reason, OwnerID: userID})
}

// SetPaymentStatus records a payment status change
func (s *Service) SetPaymentStatus(ctx context.Context, id string, target PaymentStatus) (*Order, error) {
	if !target.Valid() {
		return nil, apperror.Validation("unknown payment status: " + string(target))
	}

	order, err := repository.Mutate[*Order](ctx, s.orders, id, func(o *Order) error {
		if o.OrderStatus.IsFinal() {
			return apperror.ErrOrderFinalized
		}
		if !CanTransitionPayment(o.PaymentStatus, target) {
			return apperror.ErrInvalidTransition
		}
		now := s.now().UTC()
		o.PaymentStatus = target
		o.StatusHistory = append(o.StatusHistory, StatusChange{Status: "payment_" + string(target), At: now})
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, writeError(err)
	}

	s.logger.WithFields(logrus.Fields{"order_id": id, "payment_status": target}).Info("Payment status changed")
	return order, nil
}

// mergeLines rejects an empty snapshot and folds repeated products into one line
func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, apperror.ErrEmptyOrder
	}

	merged := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, apperror.Validation("product_id is required for every item")
		}
		if line.Quantity < 1 {
			return nil, apperror.Validation("quantity must be at least 1")
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func validateRequest(req CreateOrderRequest) error {
	if !req.PaymentMethod.Valid() {
		return apperror.Validation("unsupported payment method: " + string(req.PaymentMethod))
	}
	if req.Tax < 0 || req.ShippingCost < 0 || req.Discount < 0 {
		return apperror.Validation("order amounts cannot be negative")
	}
	addr := req.ShippingAddress
	if strings.TrimSpace(addr.Street) == "" || strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.ZipCode) == "" || strings.TrimSpace(addr.Country) == "" {
		return apperror.Validation("shipping address requires street, city, zip code and country")
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("order not found")
	}
	return apperror.Internal("failed to retrieve order", err)
}

func writeError(err error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("order not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return apperror.Concurrency("order was modified concurrently, please retry", err)
	default:
		return apperror.Internal("failed to update order", err)
	}
}
