// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/domain/wishlist"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
)

// App holds the wired services of one process
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	Stores *database.Stores
	// Redis is nil when Redis is disabled or unreachable.
	Redis *redis.Client

	JWT     *auth.JWTManager
	Journal *journal.Journal

	Categories *category.Service
	Products   *product.Service
	Reviews    *product.ReviewService
	Ratings    *product.RatingAggregator
	Users      *user.Service
	Carts      *cart.Service
	Wishlists  *wishlist.Service
	Orders     *order.Service
}

// New opens the configured backends and wires every service
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	stores, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(cfg, log)
		if err != nil {
			if cfg.Orders.SequenceBackend == config.SequenceRedis {
				_ = stores.Close()
				return nil, fmt.Errorf("order sequence requires Redis: %w", err)
			}
			log.WithError(err).Warn("Redis unavailable, continuing without cache and rate limiting")
			redisClient = nil
		}
	}

	return Build(cfg, log, stores, redisClient), nil
}

// Build wires services over already opened backends
func Build(cfg *config.Config, log *logrus.Logger, stores *database.Stores, redisClient *redis.Client) *App {
	a := &App{
		Config: cfg,
		Logger: log,
		Stores: stores,
		Redis:  redisClient,
		JWT:    auth.NewJWTManager(cfg),
	}

	a.Journal = journal.New(stores.Operations, log)

	var cache category.Cache = category.NopCache{}
	sequence := stores.Sequence
	if redisClient != nil {
		cache = redis.NewJSONCache(redisClient.Redis, "cache:")
		if cfg.Orders.SequenceBackend == config.SequenceRedis {
			sequence = redis.NewOrderSequence(redisClient.Redis)
		}
	}

	a.Categories = category.NewService(stores.Categories, a.Journal, cache, cfg.Catalog.CategoryCacheTTL, log)
	a.Products = product.NewService(stores.Products, stores.Categories, log)
	a.Ratings = product.NewRatingAggregator(stores.Products, stores.Reviews, a.Journal, log)
	a.Reviews = product.NewReviewService(stores.Reviews, stores.Products, stores.Users, a.Journal, cfg.Catalog.ReviewsAutoApprove, log)
	a.Users = user.NewService(stores.Users, a.JWT, auth.NewPasswordManager(cfg.Security.BcryptCost), log)
	a.Carts = cart.NewService(stores.Users, stores.Products, log)
	a.Wishlists = wishlist.NewService(stores.Users, stores.Products, log)
	a.Orders = order.NewService(stores.Orders, stores.Products, order.NewNumberGenerator(sequence, cfg.Orders.NumberPrefix), log)

	return a
}

// Ready reports whether every backend is reachable
func (a *App) Ready(ctx context.Context) error {
	if err := a.Stores.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases every backend connection
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.Stores.Close())
	return errors.Join(errs...)
}
