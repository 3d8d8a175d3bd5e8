// internal/infrastructure/database/mongo/repositories.go
package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/category"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CategoriesCollection = "categories"
	ProductsCollection   = "products"
	ReviewsCollection    = "reviews"
	UsersCollection      = "users"
	OrdersCollection     = "orders"
	OperationsCollection = "pending_operations"
	CountersCollection   = "counters"
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// CategoryRepository stores categories in MongoDB
type CategoryRepository struct {
	*Collection[category.Category, *category.Category]
	coll *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	coll := db.Collection(CategoriesCollection)
	return &CategoryRepository{Collection: NewCollection[category.Category, *category.Category](coll), coll: coll}
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	return findOne[category.Category](ctx, r.coll, bson.M{"name": name})
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return findOne[category.Category](ctx, r.coll, bson.M{"slug": slug})
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]*category.Category, error) {
	if len(ids) == 0 {
		return []*category.Category{}, nil
	}
	return findMany[category.Category](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *CategoryRepository) FindRoots(ctx context.Context) ([]*category.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	return findMany[category.Category](ctx, r.coll, bson.M{"parent_id": nil}, opts)
}

func (r *CategoryRepository) FindByParent(ctx context.Context, parentID string) ([]*category.Category, error) {
	return findMany[category.Category](ctx, r.coll, bson.M{"parent_id": parentID})
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*category.Category, error) {
	return findMany[category.Category](ctx, r.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// ProductRepository stores products in MongoDB
type ProductRepository struct {
	*Collection[product.Product, *product.Product]
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	coll := db.Collection(ProductsCollection)
	return &ProductRepository{Collection: NewCollection[product.Product, *product.Product](coll), coll: coll}
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return findOne[product.Product](ctx, r.coll, bson.M{"slug": slug})
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return findOne[product.Product](ctx, r.coll, bson.M{"sku": sku})
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	if len(ids) == 0 {
		return []*product.Product{}, nil
	}
	return findMany[product.Product](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, int64, error) {
	query := bson.M{}
	if !filter.IncludeInactive {
		query["is_active"] = true
	}
	if filter.CategoryID != "" {
		query["$or"] = bson.A{
			bson.M{"category_id": filter.CategoryID},
			bson.M{"subcategory_id": filter.CategoryID},
		}
	}
	if filter.Featured != nil {
		query["is_featured"] = *filter.Featured
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	products, err := findMany[product.Product](ctx, r.coll, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ReviewRepository stores reviews in MongoDB
type ReviewRepository struct {
	*Collection[product.Review, *product.Review]
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	coll := db.Collection(ReviewsCollection)
	return &ReviewRepository{Collection: NewCollection[product.Review, *product.Review](coll), coll: coll}
}

func (r *ReviewRepository) FindByProduct(ctx context.Context, productID string, approvedOnly bool) ([]*product.Review, error) {
	query := bson.M{"product_id": productID}
	if approvedOnly {
		query["is_approved"] = true
	}
	return findMany[product.Review](ctx, r.coll, query, options.Find().SetSort(newestFirst))
}

func (r *ReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID string) (*product.Review, error) {
	return findOne[product.Review](ctx, r.coll, bson.M{"product_id": productID, "user_id": userID})
}

// UserRepository stores users in MongoDB. Emails are stored lowercased.
type UserRepository struct {
	*Collection[user.User, *user.User]
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	coll := db.Collection(UsersCollection)
	return &UserRepository{Collection: NewCollection[user.User, *user.User](coll), coll: coll}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return findOne[user.User](ctx, r.coll, bson.M{"email": strings.ToLower(email)})
}

// OrderRepository stores orders in MongoDB
type OrderRepository struct {
	*Collection[order.Order, *order.Order]
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	coll := db.Collection(OrdersCollection)
	return &OrderRepository{Collection: NewCollection[order.Order, *order.Order](coll), coll: coll}
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return findOne[order.Order](ctx, r.coll, bson.M{"order_number": orderNumber})
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return findMany[order.Order](ctx, r.coll, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst))
}

// OperationRepository stores pending journal operations in MongoDB
type OperationRepository struct {
	*Collection[journal.Operation, *journal.Operation]
	coll *mongo.Collection
}

func NewOperationRepository(db *mongo.Database) *OperationRepository {
	coll := db.Collection(OperationsCollection)
	return &OperationRepository{Collection: NewCollection[journal.Operation, *journal.Operation](coll), coll: coll}
}

func (r *OperationRepository) FindPending(ctx context.Context, cutoff time.Time, limit int) ([]*journal.Operation, error) {
	query := bson.M{}
	if !cutoff.IsZero() {
		query["created_at"] = bson.M{"$lt": cutoff}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findMany[journal.Operation](ctx, r.coll, query, opts)
}
