package wishlist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/domain/wishlist"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/memory"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &user.User{ID: "u1", Email: "u1@example.com", Wishlist: []string{}, Cart: []user.CartLine{}}))
	products := memory.NewProductRepository()
	require.NoError(t, products.Create(ctx, &product.Product{ID: "p1", SKU: "P1", Slug: "p1", Name: "P1", Price: 1}))
	require.NoError(t, products.Create(ctx, &product.Product{ID: "p2", SKU: "P2", Slug: "p2", Name: "P2", Price: 1}))
	svc := wishlist.NewService(users, products, logger.Discard())

	ids, err := svc.Add(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids)
	ids, err = svc.Add(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	_, err = svc.Add(ctx, "u1", "p1")
	assert.ErrorIs(t, err, apperror.ErrAlreadyInWishlist)

	_, err = svc.Add(ctx, "u1", "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	listed, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "p2", listed[0].ID)

	ids, err = svc.Remove(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	ids, err = svc.Remove(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	// A deleted product drops out of the listing but stays in the list.
	require.NoError(t, products.Delete(ctx, "p1"))
	listed, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
