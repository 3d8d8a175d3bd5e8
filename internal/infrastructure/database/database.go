// Package database opens the configured storage backend and exposes its
// repositories as one bundle.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/memory"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/mongo"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/postgres"
)

// ErrSeedUnsupported is returned by Seed for drivers without seed data.
var ErrSeedUnsupported = errors.New("seeding is only supported for the postgres driver")

// Stores bundles every repository of one backend
type Stores struct {
	Driver     string
	Categories category.Repository
	Products   product.Repository
	Reviews    product.ReviewRepository
	Users      user.Repository
	Orders     order.Repository
	Operations journal.Repository
	// Sequence is the backend's own order number sequence.
	Sequence order.Sequence

	migrate func(ctx context.Context) error
	seed    func(email, password string) error
	ping    func(ctx context.Context) error
	close   func() error
}

// Open connects to the backend selected by cfg.Database.Driver
func Open(cfg *config.Config, log *logrus.Logger) (*Stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			return nil, err
		}
		migration := postgres.NewMigration(db.DB, log)
		return &Stores{
			Driver:     config.DriverPostgres,
			Categories: postgres.NewCategoryRepository(db.DB),
			Products:   postgres.NewProductRepository(db.DB),
			Reviews:    postgres.NewReviewRepository(db.DB),
			Users:      postgres.NewUserRepository(db.DB),
			Orders:     postgres.NewOrderRepository(db.DB),
			Operations: postgres.NewOperationRepository(db.DB),
			Sequence:   postgres.NewOrderSequence(db.DB),
			migrate:    func(context.Context) error { return migration.Run() },
			seed:       migration.SeedInitialData,
			ping:       db.Health,
			close:      db.Close,
		}, nil

	case config.DriverMongo:
		client, err := mongo.NewConnection(cfg, log)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:     config.DriverMongo,
			Categories: mongo.NewCategoryRepository(client.DB),
			Products:   mongo.NewProductRepository(client.DB),
			Reviews:    mongo.NewReviewRepository(client.DB),
			Users:      mongo.NewUserRepository(client.DB),
			Orders:     mongo.NewOrderRepository(client.DB),
			Operations: mongo.NewOperationRepository(client.DB),
			Sequence:   mongo.NewOrderSequence(client.DB),
			migrate:    func(ctx context.Context) error { return mongo.EnsureIndexes(ctx, client.DB) },
			ping:       client.Health,
			close:      client.Close,
		}, nil

	case config.DriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// NewMemory returns process-local stores
func NewMemory() *Stores {
	return &Stores{
		Driver:     config.DriverMemory,
		Categories: memory.NewCategoryRepository(),
		Products:   memory.NewProductRepository(),
		Reviews:    memory.NewReviewRepository(),
		Users:      memory.NewUserRepository(),
		Orders:     memory.NewOrderRepository(),
		Operations: memory.NewOperationRepository(),
		Sequence:   memory.NewOrderSequence(),
	}
}

// Migrate brings the schema or indexes up to date
func (s *Stores) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Seed inserts development data
func (s *Stores) Seed(adminEmail, adminPassword string) error {
	if s.seed == nil {
		return ErrSeedUnsupported
	}
	return s.seed(adminEmail, adminPassword)
}

// Ping checks that the backend is reachable
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend's connections
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
