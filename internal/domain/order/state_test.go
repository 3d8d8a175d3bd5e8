package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransitionPayment(t *testing.T) {
	assert.True(t, CanTransitionPayment(PaymentStatusPending, PaymentStatusPaid))
	assert.True(t, CanTransitionPayment(PaymentStatusPending, PaymentStatusFailed))
	assert.True(t, CanTransitionPayment(PaymentStatusPaid, PaymentStatusRefunded))
	assert.False(t, CanTransitionPayment(PaymentStatusPending, PaymentStatusRefunded))
	assert.False(t, CanTransitionPayment(PaymentStatusFailed, PaymentStatusPaid))
	assert.False(t, CanTransitionPayment(PaymentStatusRefunded, PaymentStatusPaid))
	assert.False(t, CanTransitionPayment(PaymentStatusPaid, PaymentStatusPaid))
}

func TestNumberGenerator_Format(t *testing.T) {
	gen := NewNumberGenerator(&MemorySequence{}, "BLM")
	gen.now = func() time.Time { return time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC) }

	first, err := gen.Next(context.Background())
	require.NoError(t, err)
	second, err := gen.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "BLM20240309000001", first)
	assert.Equal(t, "BLM20240309000002", second)
}
