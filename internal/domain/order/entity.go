// internal/domain/order/entity.go
package order

import (
	"context"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/repository"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod is how the customer intends to pay
type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
	PaymentMethodCOD        PaymentMethod = "cod"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetbanking, PaymentMethodCOD, PaymentMethodWallet:
		return true
	}
	return false
}

// Item is a priced snapshot of one product at order time
type Item struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	SKU       string  `json:"sku" bson:"sku"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	LineTotal float64 `json:"line_total" bson:"line_total"`
}

// Address is the shipping destination
type Address struct {
	Street  string `json:"street" bson:"street" binding:"required"`
	City    string `json:"city" bson:"city" binding:"required"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zip_code" bson:"zip_code" binding:"required"`
	Country string `json:"country" bson:"country" binding:"required"`
	Phone   string `json:"phone" bson:"phone"`
}

// StatusChange records one status or payment transition
type StatusChange struct {
	Status  string    `json:"status" bson:"status"`
	Comment string    `json:"comment,omitempty" bson:"comment,omitempty"`
	At      time.Time `json:"at" bson:"at"`
}

// Order represents a customer order. Pricing is fixed at creation and
// statuses change only through the transition rules in state.go.
type Order struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	OrderNumber     string         `gorm:"size:40;not null;uniqueIndex" json:"order_number" bson:"order_number"`
	UserID          string         `gorm:"size:36;not null;index" json:"user_id" bson:"user_id"`
	Items           []Item         `gorm:"serializer:json;type:jsonb" json:"items" bson:"items"`
	ShippingAddress Address        `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   PaymentMethod  `gorm:"size:20;not null" json:"payment_method" bson:"payment_method"`
	PaymentStatus   PaymentStatus  `gorm:"size:20;not null" json:"payment_status" bson:"payment_status"`
	OrderStatus     OrderStatus    `gorm:"size:20;not null;index" json:"order_status" bson:"order_status"`
	Subtotal        float64        `gorm:"not null" json:"subtotal" bson:"subtotal"`
	Tax             float64        `gorm:"not null" json:"tax" bson:"tax"`
	ShippingCost    float64        `gorm:"not null" json:"shipping_cost" bson:"shipping_cost"`
	Discount        float64        `gorm:"not null" json:"discount" bson:"discount"`
	Total           float64        `gorm:"not null" json:"total" bson:"total"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty" bson:"notes,omitempty"`
	TrackingNumber  string         `gorm:"size:100" json:"tracking_number,omitempty" bson:"tracking_number,omitempty"`
	CancelReason    string         `gorm:"type:text" json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	StatusHistory   []StatusChange `gorm:"serializer:json;type:jsonb" json:"status_history" bson:"status_history"`
	DeliveredAt     *time.Time     `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CancelledAt     *time.Time     `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	Version         int64          `gorm:"not null" json:"version" bson:"version"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
}

func (o *Order) GetID() string            { return o.ID }
func (o *Order) GetVersion() int64        { return o.Version }
func (o *Order) SetVersion(version int64) { o.Version = version }

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	out := *o
	out.Items = append([]Item(nil), o.Items...)
	out.StatusHistory = append([]StatusChange(nil), o.StatusHistory...)
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		out.DeliveredAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		out.CancelledAt = &t
	}
	return &out
}

// IsOwnedBy reports whether the order belongs to the user
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

// Repository stores orders
type Repository interface {
	repository.CRUD[*Order]
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	// FindByUser returns the user's orders, newest first.
	FindByUser(ctx context.Context, userID string) ([]*Order, error)
}
