// Package domain contains persistence models for invoice settlement.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the invoice settlement state. Overdue is both a computed
// predicate (OverdueAt) and a stored status persisted by the periodic sweep.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Invoice carries its own line-item and pricing snapshot, copied from the
// order when derived, so later catalog or order edits never change what was
// billed.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID       snowflake.ID  `gorm:"column:owner_id;not null;uniqueIndex:ux_invoices_owner_number,priority:1" json:"owner_id"`
	CustomerID    snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	OrderID       *snowflake.ID `gorm:"index" json:"order_id,omitempty"`
	InvoiceNumber string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_owner_number,priority:2" json:"invoice_number"`

	Status Status `gorm:"type:text;not null;default:'pending'" json:"status"`

	Subtotal      int64 `gorm:"not null;default:0" json:"subtotal"`
	DiscountTotal int64 `gorm:"not null;default:0" json:"discount_total"`
	TaxTotal      int64 `gorm:"not null;default:0" json:"tax_total"`
	Shipping      int64 `gorm:"not null;default:0" json:"shipping"`
	Packaging     int64 `gorm:"not null;default:0" json:"packaging"`
	Total         int64 `gorm:"not null;default:0" json:"total"`
	PaidAmount    int64 `gorm:"not null;default:0" json:"paid_amount"`
	// AmountDue goes negative on accepted overpayment; the excess is
	// tracked, never clamped or silently dropped.
	AmountDue int64 `gorm:"not null;default:0" json:"amount_due"`

	AmountInWords    string `gorm:"type:text;not null;default:''" json:"amount_in_words"`
	PaymentTermsDays int    `gorm:"not null;default:30" json:"payment_terms_days"`

	IssueDate time.Time  `gorm:"not null" json:"issue_date"`
	DueDate   time.Time  `gorm:"not null" json:"due_date"`
	PaidDate  *time.Time `json:"paid_date,omitempty"`

	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// OverdueAt reports the computed overdue predicate, independent of whether
// the sweep has persisted the stored status yet.
func (i Invoice) OverdueAt(now time.Time) bool {
	return (i.Status == StatusPending || i.Status == StatusPartial) && i.DueDate.Before(now)
}

// InvoiceItem is an immutable billing line.
type InvoiceItem struct {
	ID        snowflake.ID  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID   snowflake.ID  `gorm:"column:owner_id;not null;index" json:"owner_id"`
	InvoiceID snowflake.ID  `gorm:"not null;index" json:"invoice_id"`
	ProductID *snowflake.ID `json:"product_id,omitempty"`
	Position  int           `gorm:"not null;default:0" json:"position"`

	SKU       string  `gorm:"type:text" json:"sku,omitempty"`
	Name      string  `gorm:"type:text;not null" json:"name"`
	UnitPrice int64   `gorm:"not null" json:"unit_price"`
	Quantity  int64   `gorm:"not null" json:"quantity"`
	Discount  int64   `gorm:"not null;default:0" json:"discount"`
	TaxRate   float64 `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount int64   `gorm:"not null;default:0" json:"tax_amount"`
	Total     int64   `gorm:"not null" json:"total"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// Payment is one append-only settlement record against an invoice.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID   snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	Method    string       `gorm:"type:text;not null" json:"method"`
	Reference string       `gorm:"type:text;not null" json:"reference"`
	PaidAt    time.Time    `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "invoice_payments" }
