// internal/domain/user/entity.go
package user

import (
	"context"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

// CartLine is one product in a user's cart
type CartLine struct {
	ProductID string    `json:"product_id" bson:"product_id"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
}

// User represents the user entity. Wishlist and Cart are owned by the user
// aggregate so every change to them is serialized on the user's version.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name         string     `gorm:"size:100;not null" json:"name" bson:"name"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email" bson:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-" bson:"password_hash"`
	Phone        string     `gorm:"size:20" json:"phone" bson:"phone"`
	Avatar       string     `gorm:"size:500" json:"avatar" bson:"avatar"`
	Role         string     `gorm:"size:20;not null" json:"role" bson:"role"`
	Wishlist     []string   `gorm:"serializer:json;type:jsonb" json:"wishlist" bson:"wishlist"`
	Cart         []CartLine `gorm:"serializer:json;type:jsonb" json:"cart" bson:"cart"`
	Version      int64      `gorm:"not null" json:"version" bson:"version"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

func (u *User) GetID() string            { return u.ID }
func (u *User) GetVersion() int64        { return u.Version }
func (u *User) SetVersion(version int64) { u.Version = version }

// Clone returns a deep copy.
func (u *User) Clone() *User {
	out := *u
	out.Wishlist = append([]string(nil), u.Wishlist...)
	out.Cart = append([]CartLine(nil), u.Cart...)
	return &out
}

// CartLineIndex returns the index of the product's cart line or -1
func (u *User) CartLineIndex(productID string) int {
	for i, line := range u.Cart {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// InWishlist reports whether the product is in the wishlist
func (u *User) InWishlist(productID string) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// Repository stores users
type Repository interface {
	repository.CRUD[*User]
	FindByEmail(ctx context.Context, email string) (*User, error)
}
