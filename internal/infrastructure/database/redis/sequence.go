// internal/infrastructure/database/redis/sequence.go
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/ecommerce-core/internal/domain/order"
)

// OrderSequenceKey holds the last allocated order sequence value
const OrderSequenceKey = "order_number_seq"

type orderSequence struct {
	client *redis.Client
}

// NewOrderSequence returns an order.Sequence backed by INCR
func NewOrderSequence(client *redis.Client) order.Sequence {
	return &orderSequence{client: client}
}

func (s *orderSequence) Next(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, OrderSequenceKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", OrderSequenceKey, err)
	}
	return n, nil
}
