// Package domain contains persistence models for the product catalog and
// inventory ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is the live catalog entry. Quantity is owned exclusively by the
// inventory ledger; no other component writes it.
type Product struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OwnerID        snowflake.ID      `json:"owner_id" gorm:"column:owner_id;not null;uniqueIndex:ux_products_owner_sku,priority:1"`
	SKU            string            `json:"sku" gorm:"type:text;not null;uniqueIndex:ux_products_owner_sku,priority:2"`
	Name           string            `json:"name" gorm:"type:text;not null"`
	CostPrice      int64             `json:"cost_price" gorm:"not null;default:0"`
	SellingPrice   int64             `json:"selling_price" gorm:"not null;default:0"`
	TaxRate        float64           `json:"tax_rate" gorm:"not null;default:0"`
	Quantity       int64             `json:"quantity" gorm:"not null;default:0"`
	MinStock       int64             `json:"min_stock" gorm:"not null;default:0"`
	TrackInventory bool              `json:"track_inventory" gorm:"not null;default:true"`
	Active         bool              `json:"active" gorm:"not null;default:true"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// LowStock reports whether on-hand quantity has fallen to the minimum
// threshold on a tracked product.
func (p Product) LowStock() bool {
	return p.TrackInventory && p.Quantity <= p.MinStock
}
