package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

func TestBuild_WiresJournalHandlers(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Database.Driver = config.DriverMemory
	a := Build(cfg, logger.Discard(), database.NewMemory(), nil)
	ctx := context.Background()

	root, err := a.Categories.Create(ctx, category.CreateRequest{Name: "Root"})
	require.NoError(t, err)
	_, err = a.Categories.Create(ctx, category.CreateRequest{Name: "Leaf", ParentID: &root.ID})
	require.NoError(t, err)

	p, err := a.Products.Create(ctx, product.CreateRequest{SKU: "S1", Name: "Thing", Price: 5, CategoryID: root.ID})
	require.NoError(t, err)
	_, err = a.Reviews.Create(ctx, "u1", product.CreateReviewRequest{ProductID: p.ID, Rating: 4})
	require.NoError(t, err)

	stored, err := a.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Rating{Average: 4, Count: 1}, stored.Rating)

	o, err := a.Orders.Create(ctx, "u1", order.CreateOrderRequest{
		Items:           []order.Line{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: order.Address{Street: "s", City: "c", ZipCode: "z", Country: "IN"},
		PaymentMethod:   order.PaymentMethodCOD,
	})
	require.NoError(t, err)
	assert.Contains(t, o.OrderNumber, cfg.Orders.NumberPrefix)

	pending, err := a.Journal.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.NoError(t, a.Ready(ctx))
	assert.NoError(t, a.Close())
}
