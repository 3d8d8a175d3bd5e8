// internal/domain/product/entity.go
package product

import (
	"context"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

// Rating is the aggregate of every review of a product
type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

// Product represents a catalog item. Rating and ReviewIDs are derived from
// the product's reviews and written only by RatingAggregator.
type Product struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name             string    `gorm:"size:255;not null" json:"name" bson:"name"`
	Slug             string    `gorm:"size:255;not null;uniqueIndex" json:"slug" bson:"slug"`
	Description      string    `gorm:"type:text" json:"description" bson:"description"`
	ShortDescription string    `gorm:"size:500" json:"short_description" bson:"short_description"`
	Price            float64   `gorm:"not null" json:"price" bson:"price"`
	ComparePrice     float64   `json:"compare_price" bson:"compare_price"`
	DiscountPercent  float64   `json:"discount_percent" bson:"discount_percent"`
	CategoryID       string    `gorm:"size:36;not null;index" json:"category_id" bson:"category_id"`
	SubcategoryID    *string   `gorm:"size:36;index" json:"subcategory_id,omitempty" bson:"subcategory_id,omitempty"`
	Brand            string    `gorm:"size:100" json:"brand" bson:"brand"`
	SKU              string    `gorm:"size:100;not null;uniqueIndex" json:"sku" bson:"sku"`
	Stock            int       `gorm:"not null;default:0" json:"stock" bson:"stock"`
	Images           []string  `gorm:"serializer:json;type:jsonb" json:"images" bson:"images"`
	Tags             []string  `gorm:"serializer:json;type:jsonb" json:"tags" bson:"tags"`
	Rating           Rating    `gorm:"embedded;embeddedPrefix:rating_" json:"rating" bson:"rating"`
	ReviewIDs        []string  `gorm:"serializer:json;type:jsonb" json:"review_ids" bson:"review_ids"`
	IsFeatured       bool      `gorm:"not null" json:"is_featured" bson:"is_featured"`
	IsActive         bool      `gorm:"not null" json:"is_active" bson:"is_active"`
	Version          int64     `gorm:"not null" json:"version" bson:"version"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Product) GetID() string            { return p.ID }
func (p *Product) GetVersion() int64        { return p.Version }
func (p *Product) SetVersion(version int64) { p.Version = version }

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	out := *p
	if p.SubcategoryID != nil {
		sub := *p.SubcategoryID
		out.SubcategoryID = &sub
	}
	out.Images = append([]string(nil), p.Images...)
	out.Tags = append([]string(nil), p.Tags...)
	out.ReviewIDs = append([]string(nil), p.ReviewIDs...)
	return &out
}

// ListFilter narrows product listings
type ListFilter struct {
	CategoryID      string
	Featured        *bool
	IncludeInactive bool
	Offset          int
	Limit           int
}

// Repository stores products
type Repository interface {
	repository.CRUD[*Product]
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	// List returns one page of products, newest first, and the total match count.
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
}

// Review is one user's rating of one product
type Review struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	ProductID  string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_product_user" json:"product_id" bson:"product_id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_product_user" json:"user_id" bson:"user_id"`
	Rating     int       `gorm:"not null" json:"rating" bson:"rating"`
	Title      string    `gorm:"size:255" json:"title" bson:"title"`
	Comment    string    `gorm:"type:text" json:"comment" bson:"comment"`
	Images     []string  `gorm:"serializer:json;type:jsonb" json:"images" bson:"images"`
	IsApproved bool      `gorm:"not null;index" json:"is_approved" bson:"is_approved"`
	Version    int64     `gorm:"not null" json:"version" bson:"version"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

func (r *Review) GetID() string            { return r.ID }
func (r *Review) GetVersion() int64        { return r.Version }
func (r *Review) SetVersion(version int64) { r.Version = version }

// Clone returns a deep copy.
func (r *Review) Clone() *Review {
	out := *r
	out.Images = append([]string(nil), r.Images...)
	return &out
}

// CanBeEditedBy checks if a review can be edited by a user
func (r *Review) CanBeEditedBy(userID string) bool {
	return r.UserID == userID
}

// ReviewRepository stores reviews
type ReviewRepository interface {
	repository.CRUD[*Review]
	// FindByProduct returns the product's reviews, newest first.
	FindByProduct(ctx context.Context, productID string, approvedOnly bool) ([]*Review, error)
	FindByProductAndUser(ctx context.Context, productID, userID string) (*Review, error)
}
