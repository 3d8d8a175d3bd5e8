// internal/infrastructure/database/mongo/sequence.go
package mongo

import (
	"context"
	"fmt"

	"github.com/your-org/ecommerce-core/internal/domain/order"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const orderCounter = "order_number"

type orderSequence struct {
	coll *mongo.Collection
}

// NewOrderSequence returns an order.Sequence backed by an atomic counter
// document.
func NewOrderSequence(db *mongo.Database) order.Sequence {
	return &orderSequence{coll: db.Collection(CountersCollection)}
}

func (s *orderSequence) Next(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": orderCounter},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("increment %s counter: %w", orderCounter, err)
	}
	return counter.Seq, nil
}
