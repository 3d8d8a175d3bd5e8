// internal/infrastructure/database/mongo/indexes.go
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func unique(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
}

func plain(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

// EnsureIndexes creates the unique constraints the repositories rely on
// and the indexes behind list queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CategoriesCollection: {
			unique(bson.D{{Key: "name", Value: 1}}),
			unique(bson.D{{Key: "slug", Value: 1}}),
			plain(bson.D{{Key: "parent_id", Value: 1}, {Key: "order", Value: 1}}),
		},
		ProductsCollection: {
			unique(bson.D{{Key: "slug", Value: 1}}),
			unique(bson.D{{Key: "sku", Value: 1}}),
			plain(bson.D{{Key: "category_id", Value: 1}, {Key: "is_active", Value: 1}}),
			plain(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
		},
		ReviewsCollection: {
			unique(bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}}),
			plain(bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}),
		},
		UsersCollection: {
			unique(bson.D{{Key: "email", Value: 1}}),
		},
		OrdersCollection: {
			unique(bson.D{{Key: "order_number", Value: 1}}),
			plain(bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
		},
		OperationsCollection: {
			plain(bson.D{{Key: "created_at", Value: 1}}),
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
