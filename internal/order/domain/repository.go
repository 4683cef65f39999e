package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListOrderFilter struct {
	CustomerID    snowflake.ID
	Status        Status
	PaymentStatus PaymentStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	InsertTracking(ctx context.Context, db *gorm.DB, entry *TrackingEntry) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Order, error)
	// FindForUpdate locks the order row for a status, cancellation or
	// payment mutation.
	FindForUpdate(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Order, error)
	FindItems(ctx context.Context, db *gorm.DB, ownerID, orderID snowflake.ID) ([]OrderItem, error)
	FindTracking(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]TrackingEntry, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListOrderFilter, page pagination.Pagination) ([]*Order, int, error)
}
