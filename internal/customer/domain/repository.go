package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListCustomerFilter struct {
	Name  string
	Email string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Customer, error)
	// FindActiveForUpdate locks the customer row so aggregate updates
	// serialize with concurrent order creation.
	FindActiveForUpdate(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Customer, error)
	// ApplyOrderStats bumps totalOrders/totalSpent/averageOrderValue for one
	// newly created order. Must run in the order-creation transaction.
	ApplyOrderStats(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, orderTotal int64) error
	SetActive(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, active bool) error
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, int, error)
}
