// internal/infrastructure/database/mongo/collection.go
package mongo

import (
	"context"
	"errors"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is the constraint for documents stored through Collection.
type Record[E any] interface {
	*E
	repository.Entity
}

// Collection implements repository.CRUD over one MongoDB collection.
// Replacements match on both _id and version.
type Collection[E any, P Record[E]] struct {
	coll *mongo.Collection
}

func NewCollection[E any, P Record[E]](coll *mongo.Collection) *Collection[E, P] {
	return &Collection[E, P]{coll: coll}
}

func (c *Collection[E, P]) Create(ctx context.Context, entity P) error {
	entity.SetVersion(1)
	if _, err := c.coll.InsertOne(ctx, entity); err != nil {
		entity.SetVersion(0)
		return translate(err)
	}
	return nil
}

func (c *Collection[E, P]) FindByID(ctx context.Context, id string) (P, error) {
	return findOne[E, P](ctx, c.coll, bson.M{"_id": id})
}

func (c *Collection[E, P]) Update(ctx context.Context, entity P) error {
	old := entity.GetVersion()
	entity.SetVersion(old + 1)

	result, err := c.coll.ReplaceOne(ctx, bson.M{"_id": entity.GetID(), "version": old}, entity)
	if err != nil {
		entity.SetVersion(old)
		return translate(err)
	}
	if result.MatchedCount == 0 {
		entity.SetVersion(old)
		count, err := c.coll.CountDocuments(ctx, bson.M{"_id": entity.GetID()})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	return nil
}

func (c *Collection[E, P]) Delete(ctx context.Context, id string) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (c *Collection[E, P]) DeleteVersion(ctx context.Context, id string, version int64) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id, "version": version})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		count, err := c.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	return nil
}

func findOne[E any, P Record[E]](ctx context.Context, coll *mongo.Collection, filter any) (P, error) {
	var doc E
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return P(&doc), nil
}

func findMany[E any, P Record[E]](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]P, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []E
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]P, len(docs))
	for i := range docs {
		out[i] = P(&docs[i])
	}
	return out, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}
