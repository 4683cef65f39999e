// Package domain contains persistence models for the order lifecycle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Order is the priced, numbered document produced from a cart. All money
// fields are minor currency units. Orders are never physically deleted;
// cancellation is a status.
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID     snowflake.ID `gorm:"column:owner_id;not null;uniqueIndex:ux_orders_owner_number,priority:1" json:"owner_id"`
	CustomerID  snowflake.ID `gorm:"not null;index" json:"customer_id"`
	OrderNumber string       `gorm:"type:text;not null;uniqueIndex:ux_orders_owner_number,priority:2" json:"order_number"`

	Status        Status        `gorm:"type:text;not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:text;not null;default:'unpaid'" json:"payment_status"`

	// Pricing block. amount_due = total - amount_paid at all times;
	// total = subtotal + shipping + packaging, the subtotal already netting
	// per-line tax and discount.
	Subtotal      int64 `gorm:"not null;default:0" json:"subtotal"`
	DiscountTotal int64 `gorm:"not null;default:0" json:"discount_total"`
	TaxTotal      int64 `gorm:"not null;default:0" json:"tax_total"`
	Shipping      int64 `gorm:"not null;default:0" json:"shipping"`
	Packaging     int64 `gorm:"not null;default:0" json:"packaging"`
	Total         int64 `gorm:"not null;default:0" json:"total"`
	AmountPaid    int64 `gorm:"not null;default:0" json:"amount_paid"`
	AmountDue     int64 `gorm:"not null;default:0" json:"amount_due"`

	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
	CancelReason     string     `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
	ActualDelivery   *time.Time `json:"actual_delivery,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items    []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Tracking []TrackingEntry `gorm:"foreignKey:OrderID" json:"tracking,omitempty"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem is an immutable snapshot of the product at order time. It is
// never re-derived from the live product row.
type OrderItem struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID   snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	OrderID   snowflake.ID `gorm:"not null;index" json:"order_id"`
	ProductID snowflake.ID `gorm:"not null;index" json:"product_id"`
	Position  int          `gorm:"not null;default:0" json:"position"`

	SKU       string  `gorm:"type:text;not null" json:"sku"`
	Name      string  `gorm:"type:text;not null" json:"name"`
	UnitPrice int64   `gorm:"not null" json:"unit_price"`
	Quantity  int64   `gorm:"not null" json:"quantity"`
	Discount  int64   `gorm:"not null;default:0" json:"discount"`
	TaxRate   float64 `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount int64   `gorm:"not null;default:0" json:"tax_amount"`
	Total     int64   `gorm:"not null" json:"total"`

	Tracked   bool      `gorm:"not null;default:true" json:"tracked"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

// TrackingEntry is one row of the append-only status history.
type TrackingEntry struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OrderID   snowflake.ID `gorm:"not null;index" json:"order_id"`
	Status    Status       `gorm:"type:text;not null" json:"status"`
	Location  string       `gorm:"type:text" json:"location,omitempty"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (TrackingEntry) TableName() string { return "order_tracking" }
