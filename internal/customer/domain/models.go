package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Customer struct {
	ID      snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Name    string       `gorm:"not null" json:"name"`
	Email   string       `gorm:"not null" json:"email"`
	Phone   string       `gorm:"type:text" json:"phone,omitempty"`
	Active  bool         `gorm:"not null;default:true" json:"active"`

	// Aggregates are maintained inside the order-creation transaction,
	// never recomputed from order rows at read time.
	TotalOrders       int64 `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent        int64 `gorm:"not null;default:0" json:"total_spent"`
	AverageOrderValue int64 `gorm:"not null;default:0" json:"average_order_value"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
