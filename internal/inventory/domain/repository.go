package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListProductFilter struct {
	SKU      string
	Name     string
	LowStock bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Product, error)
	FindBySKU(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, sku string) (*Product, error)
	// LockByIDs loads product rows FOR UPDATE in ascending ID order.
	LockByIDs(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, ids []snowflake.ID) (map[snowflake.ID]*Product, error)
	UpdateQuantity(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, quantity int64) error
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListProductFilter, page pagination.Pagination) ([]*Product, int, error)
}
