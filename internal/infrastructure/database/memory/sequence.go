package memory

import "github.com/your-org/ecommerce-core/internal/domain/order"

// NewOrderSequence returns a process-local order number sequence
func NewOrderSequence() order.Sequence {
	return &order.MemorySequence{}
}
