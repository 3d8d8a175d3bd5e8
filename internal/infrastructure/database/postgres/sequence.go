// internal/infrastructure/database/postgres/sequence.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/ecommerce-core/internal/domain/order"
	"gorm.io/gorm"
)

const orderNumberSequence = "order_number_seq"

type orderSequence struct {
	db *gorm.DB
}

// NewOrderSequence returns an order.Sequence backed by a PostgreSQL sequence
func NewOrderSequence(db *gorm.DB) order.Sequence {
	return &orderSequence{db: db}
}

func (s *orderSequence) Next(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Raw("SELECT nextval('" + orderNumberSequence + "')").Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("nextval %s: %w", orderNumberSequence, err)
	}
	return n, nil
}
