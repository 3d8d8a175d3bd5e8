package memory

import (
	"context"
	"strings"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// CategoryRepository is an in-memory category.Repository
type CategoryRepository struct {
	*Table[category.Category, *category.Category]
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{NewTable[category.Category, *category.Category](
		func(c *category.Category) string { return c.Name },
		func(c *category.Category) string { return c.Slug },
	)}
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	return r.First(ctx, func(c *category.Category) bool { return c.Name == name })
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return r.First(ctx, func(c *category.Category) bool { return c.Slug == slug })
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]*category.Category, error) {
	set := toSet(ids)
	return r.Select(ctx, func(c *category.Category) bool { return set[c.ID] }, nil)
}

func (r *CategoryRepository) FindRoots(ctx context.Context) ([]*category.Category, error) {
	return r.Select(ctx, func(c *category.Category) bool { return c.ParentID == nil }, func(a, b *category.Category) bool {
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
}

func (r *CategoryRepository) FindByParent(ctx context.Context, parentID string) ([]*category.Category, error) {
	return r.Select(ctx, func(c *category.Category) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	}, nil)
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*category.Category, error) {
	return r.Select(ctx, nil, func(a, b *category.Category) bool { return a.ID < b.ID })
}

// ProductRepository is an in-memory product.Repository
type ProductRepository struct {
	*Table[product.Product, *product.Product]
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{NewTable[product.Product, *product.Product](
		func(p *product.Product) string { return p.Slug },
		func(p *product.Product) string { return p.SKU },
	)}
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.First(ctx, func(p *product.Product) bool { return p.Slug == slug })
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.First(ctx, func(p *product.Product) bool { return p.SKU == sku })
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	set := toSet(ids)
	return r.Select(ctx, func(p *product.Product) bool { return set[p.ID] }, nil)
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, int64, error) {
	all, err := r.Select(ctx, func(p *product.Product) bool {
		if !filter.IncludeInactive && !p.IsActive {
			return false
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID &&
			(p.SubcategoryID == nil || *p.SubcategoryID != filter.CategoryID) {
			return false
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			return false
		}
		return true
	}, newestFirst(func(p *product.Product) (time.Time, string) { return p.CreatedAt, p.ID }))
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, filter.Offset, filter.Limit), int64(len(all)), nil
}

// ReviewRepository is an in-memory product.ReviewRepository
type ReviewRepository struct {
	*Table[product.Review, *product.Review]
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{NewTable[product.Review, *product.Review](
		func(r *product.Review) string { return r.ProductID + "\x00" + r.UserID },
	)}
}

func (r *ReviewRepository) FindByProduct(ctx context.Context, productID string, approvedOnly bool) ([]*product.Review, error) {
	return r.Select(ctx, func(rv *product.Review) bool {
		return rv.ProductID == productID && (!approvedOnly || rv.IsApproved)
	}, newestFirst(func(rv *product.Review) (time.Time, string) { return rv.CreatedAt, rv.ID }))
}

func (r *ReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID string) (*product.Review, error) {
	return r.First(ctx, func(rv *product.Review) bool {
		return rv.ProductID == productID && rv.UserID == userID
	})
}

// UserRepository is an in-memory user.Repository
type UserRepository struct {
	*Table[user.User, *user.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{NewTable[user.User, *user.User](
		func(u *user.User) string { return strings.ToLower(u.Email) },
	)}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	email = strings.ToLower(email)
	return r.First(ctx, func(u *user.User) bool { return strings.ToLower(u.Email) == email })
}

// OrderRepository is an in-memory order.Repository
type OrderRepository struct {
	*Table[order.Order, *order.Order]
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{NewTable[order.Order, *order.Order](
		func(o *order.Order) string { return o.OrderNumber },
	)}
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return r.First(ctx, func(o *order.Order) bool { return o.OrderNumber == orderNumber })
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.Select(ctx, func(o *order.Order) bool { return o.UserID == userID },
		newestFirst(func(o *order.Order) (time.Time, string) { return o.CreatedAt, o.ID }))
}

// OperationRepository is an in-memory journal.Repository
type OperationRepository struct {
	*Table[journal.Operation, *journal.Operation]
}

func NewOperationRepository() *OperationRepository {
	return &OperationRepository{NewTable[journal.Operation, *journal.Operation]()}
}

func (r *OperationRepository) FindPending(ctx context.Context, cutoff time.Time, limit int) ([]*journal.Operation, error) {
	ops, err := r.Select(ctx, func(op *journal.Operation) bool {
		return cutoff.IsZero() || op.CreatedAt.Before(cutoff)
	}, func(a, b *journal.Operation) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return paginate(ops, 0, limit), nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func newestFirst[T any](key func(T) (time.Time, string)) func(a, b T) bool {
	return func(a, b T) bool {
		ta, ia := key(a)
		tb, ib := key(b)
		if ta.Equal(tb) {
			return ia > ib
		}
		return ta.After(tb)
	}
}

func paginate[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return rows[:0]
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
