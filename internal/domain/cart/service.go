// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
)

// Service handles cart business logic. Cart lines live on the user
// aggregate and every change is an optimistic read-modify-write of it.
type Service struct {
	users    user.Repository
	products product.Repository
	logger   *logrus.Entry
	now      func() time.Time
}

// NewService creates a new cart service
func NewService(users user.Repository, products product.Repository, logger *logrus.Logger) *Service {
	return &Service{
		users:    users,
		products: products,
		logger:   logger.WithField("component", "cart"),
		now:      time.Now,
	}
}

// AddToCartRequest represents add to cart request. A zero quantity means one.
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ItemResponse represents a cart line with product details
type ItemResponse struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	LineTotal float64          `json:"line_total"`
	Product   *product.Product `json:"product,omitempty"`
	AddedAt   time.Time        `json:"added_at"`
}

// Response represents a shopping cart with items and summary
type Response struct {
	Items      []ItemResponse `json:"items"`
	TotalItems int            `json:"total_items"`
	Subtotal   float64        `json:"subtotal"`
}

// Add puts quantity units of a product in the cart, merging into an
// existing line for the same product.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) ([]user.CartLine, error) {
	if quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	u, err := repository.Mutate[*user.User](ctx, s.users, userID, func(u *user.User) error {
		if i := u.CartLineIndex(productID); i >= 0 {
			u.Cart[i].Quantity += quantity
		} else {
			u.Cart = append(u.Cart, user.CartLine{
				ProductID: productID,
				Quantity:  quantity,
				AddedAt:   s.now().UTC(),
			})
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, user.MutateError(err, "failed to add item to cart")
	}
	return u.Cart, nil
}

// SetQuantity overwrites the quantity of an existing line
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) ([]user.CartLine, error) {
	if quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}

	u, err := repository.Mutate[*user.User](ctx, s.users, userID, func(u *user.User) error {
		i := u.CartLineIndex(productID)
		if i < 0 {
			return apperror.NotFound("item not found in cart")
		}
		if u.Cart[i].Quantity == quantity {
			return repository.ErrNoChange
		}
		u.Cart[i].Quantity = quantity
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, user.MutateError(err, "failed to update cart item")
	}
	return u.Cart, nil
}

// Remove drops the product's line. Removing an absent line is not an error.
func (s *Service) Remove(ctx context.Context, userID, productID string) ([]user.CartLine, error) {
	u, err := repository.Mutate[*user.User](ctx, s.users, userID, func(u *user.User) error {
		i := u.CartLineIndex(productID)
		if i < 0 {
			return repository.ErrNoChange
		}
		u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, user.MutateError(err, "failed to remove item from cart")
	}
	return u.Cart, nil
}

// Clear removes the given products from the cart, or every line when no
// products are named.
func (s *Service) Clear(ctx context.Context, userID string, productIDs ...string) error {
	drop := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}

	_, err := repository.Mutate[*user.User](ctx, s.users, userID, func(u *user.User) error {
		if len(u.Cart) == 0 {
			return repository.ErrNoChange
		}
		kept := make([]user.CartLine, 0, len(u.Cart))
		for _, line := range u.Cart {
			if len(drop) > 0 && !drop[line.ProductID] {
				kept = append(kept, line)
			}
		}
		if len(kept) == len(u.Cart) {
			return repository.ErrNoChange
		}
		u.Cart = kept
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return user.MutateError(err, "failed to clear cart")
	}
	return nil
}

// Lines returns the raw cart lines
func (s *Service) Lines(ctx context.Context, userID string) ([]user.CartLine, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, user.MutateError(err, "failed to load cart")
	}
	return u.Cart, nil
}

// Get returns the cart with product details and totals. Lines whose product
// no longer exists are returned without details.
func (s *Service) Get(ctx context.Context, userID string) (*Response, error) {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	byID := map[string]*product.Product{}
	if len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, apperror.Internal("failed to load cart products", err)
		}
		for _, p := range products {
			byID[p.ID] = p
		}
	}

	resp := &Response{Items: make([]ItemResponse, 0, len(lines))}
	for _, line := range lines {
		item := ItemResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt,
		}
		if p, ok := byID[line.ProductID]; ok {
			item.Product = p
			item.LineTotal = p.Price * float64(line.Quantity)
			resp.Subtotal += item.LineTotal
		}
		resp.TotalItems += line.Quantity
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

func (s *Service) ensureProduct(ctx context.Context, productID string) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("product not found")
		}
		return apperror.Internal("failed to verify product", err)
	}
	return nil
}
