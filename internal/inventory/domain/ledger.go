package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ReserveLine is one product-quantity pair in a reservation.
type ReserveLine struct {
	ProductID snowflake.ID
	Quantity  int64
}

// Ledger applies reversible stock deltas inside a caller-owned transaction.
// Order creation and cancellation run through it so the stock mutation
// commits or rolls back with the order.
//
// Every mutation is a read-modify-write under a row lock. Multi-product
// reservations lock rows sorted by product ID, so two orders contending on
// overlapping product sets cannot deadlock.
type Ledger interface {
	// Reserve decrements on-hand quantity for every line, failing the whole
	// batch with ErrInsufficientStock if any tracked product has too little
	// stock. Untracked products are priced but never decremented. The
	// returned map holds the locked product rows keyed by ID, for line-item
	// snapshotting.
	Reserve(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, lines []ReserveLine) (map[snowflake.ID]*Product, error)

	// Restore increments on-hand quantity for every tracked line. Used on
	// order cancellation.
	Restore(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, lines []ReserveLine) error
}
