// internal/domain/wishlist/service.go
package wishlist

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

// Service manages the wishlist stored on the user aggregate
type Service struct {
	users    user.Repository
	products product.Repository
	logger   *logrus.Entry
	now      func() time.Time
}

// NewService creates a new wishlist service
func NewService(users user.Repository, products product.Repository, logger *logrus.Logger) *Service {
	return &Service{
		users:    users,
		products: products,
		logger:   logger.WithField("component", "wishlist"),
		now:      time.Now,
	}
}

// Add appends a product to the wishlist. Adding a product twice is rejected.
func (s *Service) Add(ctx context.Context, userID, productID string) ([]string, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, apperror.Internal("failed to verify product", err)
	}

	u, err := repository.Mutate[*user.User](ctx, s.users, userID, func(u *user.User) error {
		if u.InWishlist(productID) {
			return apperror.ErrAlreadyInWishlist
		}
		u.Wishlist = append(u.Wishlist, productID)
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, user.MutateError(err, "failed to add item to wishlist")
	}
	return u.Wishlist, nil
}

// Remove drops a product from the wishlist. Removing an absent product is
// not an error.
func (s *Service) Remove(ctx context.Context, userID, productID string) ([]string, error) {
	u, err := repository.Mutate[*user.User](ctx, s.users, userID, func(u *user.User) error {
		for i, id := range u.Wishlist {
			if id == productID {
				u.Wishlist = append(u.Wishlist[:i], u.Wishlist[i+1:]...)
				u.UpdatedAt = s.now().UTC()
				return nil
			}
		}
		return repository.ErrNoChange
	})
	if err != nil {
		return nil, user.MutateError(err, "failed to remove item from wishlist")
	}
	return u.Wishlist, nil
}

// List returns the wishlisted products that still exist, in wishlist order
func (s *Service) List(ctx context.Context, userID string) ([]*product.Product, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, user.MutateError(err, "failed to load wishlist")
	}
	if len(u.Wishlist) == 0 {
		return []*product.Product{}, nil
	}

	found, err := s.products.FindByIDs(ctx, u.Wishlist)
	if err != nil {
		return nil, apperror.Internal("failed to load wishlist products", err)
	}
	byID := make(map[string]*product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*product.Product, 0, len(u.Wishlist))
	for _, id := range u.Wishlist {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
