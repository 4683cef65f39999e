package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	CustomerID snowflake.ID
	Status     Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Invoice, error)
	// FindForUpdate locks the invoice row for a settlement mutation.
	FindForUpdate(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, ownerID, invoiceID snowflake.ID) ([]InvoiceItem, error)
	FindPayments(ctx context.Context, db *gorm.DB, ownerID, invoiceID snowflake.ID) ([]Payment, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	// MarkOverdue flips pending and partial invoices past due across all
	// owners, returning the number of rows changed.
	MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, int, error)
}
