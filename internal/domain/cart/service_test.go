package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/memory"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

const userID = "user-1"

func newService(t *testing.T) (*cart.Service, *memory.UserRepository) {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &user.User{ID: userID, Email: "u@example.com", Wishlist: []string{}, Cart: []user.CartLine{}}))

	products := memory.NewProductRepository()
	for _, p := range []*product.Product{
		{ID: "p1", SKU: "P1", Slug: "p1", Name: "P1", Price: 10, IsActive: true},
		{ID: "p2", SKU: "P2", Slug: "p2", Name: "P2", Price: 2.5, IsActive: true},
	} {
		require.NoError(t, products.Create(ctx, p))
	}

	return cart.NewService(users, products, logger.Discard()), users
}

func TestAdd_MergesLines(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, "p1", 2)
	require.NoError(t, err)
	lines, err := svc.Add(ctx, userID, "p1", 3)
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, "p1", 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Add(ctx, userID, "missing", 1)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Add(ctx, "no-such-user", "p1", 1)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSetQuantityAndRemove(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, userID, "p1", 1)
	require.NoError(t, err)

	lines, err := svc.SetQuantity(ctx, userID, "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, lines[0].Quantity)

	_, err = svc.SetQuantity(ctx, userID, "p2", 1)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.SetQuantity(ctx, userID, "p1", 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	lines, err = svc.Remove(ctx, userID, "p1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = svc.Remove(ctx, userID, "p1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGet_ComputesTotals(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, userID, "p1", 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, "p2", 4)
	require.NoError(t, err)

	resp, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 6, resp.TotalItems)
	assert.InDelta(t, 30.0, resp.Subtotal, 0.001)
	assert.Equal(t, "p1", resp.Items[0].ProductID)
}

func TestClear(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, userID, "p1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, "p2", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID, "p2"))
	lines, err := svc.Lines(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)

	require.NoError(t, svc.Clear(ctx, userID))
	lines, err = svc.Lines(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestConcurrentAdds(t *testing.T) {
	svc, users := newService(t)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			productID := "p1"
			if i%2 == 1 {
				productID = "p2"
			}
			_, err := svc.Add(context.Background(), userID, productID, 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	u, err := users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, u.Cart, 2)
	total := 0
	for _, line := range u.Cart {
		assert.Equal(t, n/2, line.Quantity)
		total += line.Quantity
	}
	assert.Equal(t, n, total)
	assert.Equal(t, int64(n+1), u.Version)
}
