// internal/domain/journal/entity.go
package journal

import (
	"context"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

// Operation is a cross-aggregate write whose second half has not been
// confirmed yet. It is recorded before the first write and removed once the
// follow-up write has been applied.
type Operation struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Kind        string    `gorm:"size:64;not null;index" json:"kind" bson:"kind"`
	AggregateID string    `gorm:"size:36;not null" json:"aggregate_id" bson:"aggregate_id"`
	SubjectID   string    `gorm:"size:36;not null" json:"subject_id" bson:"subject_id"`
	Attempts    int       `gorm:"not null;default:0" json:"attempts" bson:"attempts"`
	LastError   string    `gorm:"type:text" json:"last_error,omitempty" bson:"last_error,omitempty"`
	Version     int64     `gorm:"not null" json:"version" bson:"version"`
	CreatedAt   time.Time `gorm:"index" json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (Operation) TableName() string { return "pending_operations" }

func (o *Operation) GetID() string            { return o.ID }
func (o *Operation) GetVersion() int64        { return o.Version }
func (o *Operation) SetVersion(version int64) { o.Version = version }

func (o *Operation) Clone() *Operation {
	c := *o
	return &c
}

// Repository stores pending operations.
type Repository interface {
	repository.CRUD[*Operation]
	// FindPending returns operations created before cutoff, oldest first.
	// A zero cutoff returns every pending operation.
	FindPending(ctx context.Context, cutoff time.Time, limit int) ([]*Operation, error)
}
