// internal/infrastructure/database/postgres/repositories.go
package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"gorm.io/gorm"
)

// CategoryRepository stores categories in PostgreSQL
type CategoryRepository struct {
	*Table[category.Category, *category.Category]
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{Table: NewTable[category.Category, *category.Category](db), db: db}
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	return first[category.Category](r.db.WithContext(ctx).Where("name = ?", name))
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return first[category.Category](r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]*category.Category, error) {
	if len(ids) == 0 {
		return []*category.Category{}, nil
	}
	return find[category.Category](r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *CategoryRepository) FindRoots(ctx context.Context) ([]*category.Category, error) {
	return find[category.Category](r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("sort_order ASC, name ASC"))
}

func (r *CategoryRepository) FindByParent(ctx context.Context, parentID string) ([]*category.Category, error) {
	return find[category.Category](r.db.WithContext(ctx).Where("parent_id = ?", parentID))
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*category.Category, error) {
	return find[category.Category](r.db.WithContext(ctx).Order("id ASC"))
}

// ProductRepository stores products in PostgreSQL
type ProductRepository struct {
	*Table[product.Product, *product.Product]
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{Table: NewTable[product.Product, *product.Product](db), db: db}
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return first[product.Product](r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return first[product.Product](r.db.WithContext(ctx).Where("sku = ?", sku))
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	if len(ids) == 0 {
		return []*product.Product{}, nil
	}
	return find[product.Product](r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&product.Product{})
		if !filter.IncludeInactive {
			query = query.Where("is_active = ?", true)
		}
		if filter.CategoryID != "" {
			query = query.Where("category_id = ? OR subcategory_id = ?", filter.CategoryID, filter.CategoryID)
		}
		if filter.Featured != nil {
			query = query.Where("is_featured = ?", *filter.Featured)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	page := scoped().Order("created_at DESC, id DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	products, err := find[product.Product](page)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ReviewRepository stores reviews in PostgreSQL
type ReviewRepository struct {
	*Table[product.Review, *product.Review]
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{Table: NewTable[product.Review, *product.Review](db), db: db}
}

func (r *ReviewRepository) FindByProduct(ctx context.Context, productID string, approvedOnly bool) ([]*product.Review, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}
	return find[product.Review](query.Order("created_at DESC, id DESC"))
}

func (r *ReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID string) (*product.Review, error) {
	return first[product.Review](r.db.WithContext(ctx).Where("product_id = ? AND user_id = ?", productID, userID))
}

// UserRepository stores users in PostgreSQL
type UserRepository struct {
	*Table[user.User, *user.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Table: NewTable[user.User, *user.User](db), db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return first[user.User](r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)))
}

// OrderRepository stores orders in PostgreSQL
type OrderRepository struct {
	*Table[order.Order, *order.Order]
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{Table: NewTable[order.Order, *order.Order](db), db: db}
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return first[order.Order](r.db.WithContext(ctx).Where("order_number = ?", orderNumber))
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return find[order.Order](r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC"))
}

// OperationRepository stores pending journal operations in PostgreSQL
type OperationRepository struct {
	*Table[journal.Operation, *journal.Operation]
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{Table: NewTable[journal.Operation, *journal.Operation](db), db: db}
}

func (r *OperationRepository) FindPending(ctx context.Context, cutoff time.Time, limit int) ([]*journal.Operation, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if !cutoff.IsZero() {
		query = query.Where("created_at < ?", cutoff)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return find[journal.Operation](query)
}
