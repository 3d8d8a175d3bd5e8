// internal/domain/category/entity.go
package category

import (
	"context"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

// Category is a node of the catalog tree. ChildIDs mirrors the set of
// categories whose ParentID points here and is maintained only by Service.
type Category struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name        string            `gorm:"size:100;not null;uniqueIndex" json:"name" bson:"name"`
	Slug        string            `gorm:"size:120;not null;uniqueIndex" json:"slug" bson:"slug"`
	Description string            `gorm:"type:text" json:"description" bson:"description"`
	Image       string            `gorm:"size:500" json:"image" bson:"image"`
	Icon        string            `gorm:"size:100" json:"icon" bson:"icon"`
	ParentID    *string           `gorm:"size:36;index" json:"parent_id" bson:"parent_id"`
	ChildIDs    []string          `gorm:"serializer:json;type:jsonb" json:"child_ids" bson:"child_ids"`
	IsActive    bool              `gorm:"not null" json:"is_active" bson:"is_active"`
	Order       int               `gorm:"column:sort_order;not null;default:0" json:"order" bson:"order"`
	Metadata    map[string]string `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty" bson:"metadata,omitempty"`
	Version     int64             `gorm:"not null" json:"version" bson:"version"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}

func (c *Category) GetID() string            { return c.ID }
func (c *Category) GetVersion() int64        { return c.Version }
func (c *Category) SetVersion(version int64) { c.Version = version }

// Clone returns a deep copy.
func (c *Category) Clone() *Category {
	out := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		out.ParentID = &parent
	}
	out.ChildIDs = append([]string(nil), c.ChildIDs...)
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasChild reports whether id is linked as a direct child.
func (c *Category) HasChild(id string) bool {
	for _, childID := range c.ChildIDs {
		if childID == id {
			return true
		}
	}
	return false
}

func (c *Category) addChild(id string) bool {
	if c.HasChild(id) {
		return false
	}
	c.ChildIDs = append(c.ChildIDs, id)
	return true
}

func (c *Category) removeChild(id string) bool {
	for i, childID := range c.ChildIDs {
		if childID == id {
			c.ChildIDs = append(c.ChildIDs[:i], c.ChildIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Detail is a category resolved with its parent and direct children.
type Detail struct {
	*Category
	Parent   *Category   `json:"parent,omitempty"`
	Children []*Category `json:"children"`
}

// Repository stores categories.
type Repository interface {
	repository.CRUD[*Category]
	FindByName(ctx context.Context, name string) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindByIDs returns the categories that exist, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*Category, error)
	// FindRoots returns parentless categories ordered by Order then Name.
	FindRoots(ctx context.Context) ([]*Category, error)
	FindByParent(ctx context.Context, parentID string) ([]*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
