// internal/pkg/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindValidation
	KindConflict
	KindInvalidHierarchy
	KindHasChildren
	KindConcurrency
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidHierarchy:
		return "invalid_hierarchy"
	case KindHasChildren:
		return "has_children"
	case KindConcurrency:
		return "concurrency"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code returned to clients.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation, KindConflict, KindInvalidHierarchy, KindHasChildren:
		return http.StatusBadRequest
	case KindConcurrency:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Named errors shared across services.
var (
	ErrDuplicateReview   = &Error{Kind: KindConflict, Message: "you have already reviewed this product"}
	ErrAlreadyInWishlist = &Error{Kind: KindConflict, Message: "product already in wishlist"}
	ErrEmptyOrder        = &Error{Kind: KindValidation, Message: "order must contain at least one item"}
	ErrInvalidHierarchy  = &Error{Kind: KindInvalidHierarchy, Message: "category cannot be its own ancestor"}
	ErrHasChildren       = &Error{Kind: KindHasChildren, Message: "cannot delete category with subcategories"}
	ErrInvalidTransition = &Error{Kind: KindValidation, Message: "invalid status transition"}
	ErrOrderFinalized    = &Error{Kind: KindValidation, Message: "order is finalized"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

func Concurrency(message string, err error) *Error {
	return Wrap(KindConcurrency, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err. Internal errors never
// expose their cause.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == KindInternal {
			return "Internal server error"
		}
		return appErr.Message
	}
	return "Internal server error"
}
