// Package repository defines the storage contract shared by every aggregate.
//
// Entities are addressed by opaque string ids and carry a version number.
// Update succeeds only when the stored version equals the entity's version,
// which serializes writers per aggregate without holding locks across
// aggregates.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrDuplicate       = errors.New("record violates a unique constraint")
)

// Entity is implemented by every persisted aggregate.
type Entity interface {
	GetID() string
	GetVersion() int64
	SetVersion(version int64)
}

// CRUD is the per-aggregate storage contract.
type CRUD[T Entity] interface {
	// Create stores a new entity at version 1.
	Create(ctx context.Context, entity T) error
	FindByID(ctx context.Context, id string) (T, error)
	// Update replaces the stored entity if its version still matches and
	// bumps the version on success.
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id string) error
	// DeleteVersion removes the entity only while its stored version still
	// equals version, returning ErrVersionConflict otherwise.
	DeleteVersion(ctx context.Context, id string, version int64) error
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}
