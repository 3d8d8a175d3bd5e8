package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("create review: %w", ErrDuplicateReview)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrDuplicateReview))
	assert.False(t, errors.Is(wrapped, ErrAlreadyInWishlist))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("category not found")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindInvalidHierarchy, http.StatusBadRequest},
		{KindHasChildren, http.StatusBadRequest},
		{KindConcurrency, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestMessage_HidesInternalCause(t *testing.T) {
	err := Internal("failed to load cart", errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	assert.Equal(t, "Internal server error", Message(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "order is finalized", Message(fmt.Errorf("x: %w", ErrOrderFinalized)))
}
