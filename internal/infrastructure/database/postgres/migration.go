// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger.WithField("component", "migration"),
	}
}

// Run applies schema migrations, the order number sequence and indexes
func (m *Migration) Run() error {
	if err := m.RunAutoMigrations(); err != nil {
		return err
	}
	if err := m.CreateSequences(); err != nil {
		return err
	}
	return m.CreateIndexes()
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&user.User{},
		&category.Category{},
		&product.Product{},
		&product.Review{},
		&order.Order{},
		&journal.Operation{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateSequences creates the sequence order numbers are drawn from
func (m *Migration) CreateSequences() error {
	sql := "CREATE SEQUENCE IF NOT EXISTS " + orderNumberSequence + " START 1"
	if err := m.db.Exec(sql).Error; err != nil {
		return fmt.Errorf("failed to create sequence %s: %w", orderNumberSequence, err)
	}
	return nil
}

// CreateIndexes creates additional indexes for list queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order, name)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC, id DESC)",

		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",

		"CREATE INDEX IF NOT EXISTS idx_pending_operations_created ON pending_operations(created_at, id)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{"created": len(indexes) - failed, "failed": failed}).Info("Indexes created")
	return nil
}

// SeedInitialData inserts root categories and an administrator for local
// development. Existing rows are left alone.
func (m *Migration) SeedInitialData(adminEmail, adminPassword string) error {
	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(adminEmail, adminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

func (m *Migration) seedCategories() error {
	seeds := []struct {
		name, slug, description string
	}{
		{"Electronics", "electronics", "Electronic devices, gadgets, and accessories"},
		{"Clothing", "clothing", "Fashion, apparel, and accessories"},
		{"Books", "books", "Books, eBooks, and educational materials"},
		{"Home & Garden", "home-garden", "Home improvement, furniture, and garden supplies"},
	}

	now := time.Now().UTC()
	for i, seed := range seeds {
		var existing category.Category
		err := m.db.Where("slug = ?", seed.slug).Take(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		c := category.Category{
			ID:          repository.NewID(),
			Name:        seed.name,
			Slug:        seed.slug,
			Description: seed.description,
			ChildIDs:    []string{},
			IsActive:    true,
			Order:       i + 1,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := m.db.Create(&c).Error; err != nil {
			return err
		}
		m.logger.WithField("slug", seed.slug).Info("Seeded category")
	}
	return nil
}

func (m *Migration) seedAdminUser(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing user.User
	err := m.db.Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	admin := user.User{
		ID:           repository.NewID(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		Wishlist:     []string{},
		Cart:         []user.CartLine{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}
	m.logger.WithField("email", email).Info("Seeded admin user")
	return nil
}
