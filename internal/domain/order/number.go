// internal/domain/order/number.go
package order

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Sequence hands out strictly increasing numbers, atomically across every
// process sharing the backing store.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// MemorySequence is a process-local Sequence
type MemorySequence struct {
	n atomic.Int64
}

func (s *MemorySequence) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.n.Add(1), nil
}

// NumberGenerator formats sequence values as order numbers:
// <prefix><YYYYMMDD><sequence, at least six digits>.
type NumberGenerator struct {
	seq    Sequence
	prefix string
	now    func() time.Time
}

func NewNumberGenerator(seq Sequence, prefix string) *NumberGenerator {
	return &NumberGenerator{seq: seq, prefix: prefix, now: time.Now}
}

// Next returns a fresh order number
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	n, err := g.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return fmt.Sprintf("%s%s%06d", g.prefix, g.now().UTC().Format("20060102"), n), nil
}
