package domain

import (
	"context"
	"errors"
	"time"
)

type CreateFromOrderRequest struct {
	OrderID string `json:"-"`
	// TermsDays overrides the configured payment terms when > 0.
	TermsDays int    `json:"terms_days"`
	Notes     string `json:"notes"`
}

type InvoiceItemRequest struct {
	Name      string  `json:"name"`
	UnitPrice int64   `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
	Discount  int64   `json:"discount"`
	TaxRate   float64 `json:"tax_rate"`
}

// CreateInvoiceRequest builds a standalone invoice not derived from an order,
// for work billed directly (services, manual sales).
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customer_id"`
	Items      []InvoiceItemRequest `json:"items"`
	Shipping   int64                `json:"shipping"`
	Packaging  int64                `json:"packaging"`
	TermsDays  int                  `json:"terms_days"`
	Notes      string               `json:"notes"`
}

type RecordPaymentRequest struct {
	InvoiceID string `json:"-"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	// Reference is generated when empty.
	Reference string `json:"reference"`
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int
	CustomerID string
	Status     Status
}

type ListInvoiceResponse struct {
	NextPageToken string    `json:"next_page_token"`
	HasMore       bool      `json:"has_more"`
	Invoices      []Invoice `json:"invoices"`
}

// Service settles invoices: creation, payment recording, overdue handling.
type Service interface {
	CreateFromOrder(ctx context.Context, req CreateFromOrderRequest) (Invoice, error)
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (Invoice, error)
	// MarkOverdue persists the overdue status on every pending or partial
	// invoice past its due date, across all owners. Called by the sweep.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

var (
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrOrderNotFound     = errors.New("order_not_found")
	ErrOrderNotBillable  = errors.New("order_not_billable")
	ErrEmptyInvoice      = errors.New("empty_invoice")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidMethod     = errors.New("invalid_method")
	ErrOverpayment       = errors.New("overpayment_rejected")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrCustomerInactive  = errors.New("customer_inactive")
)
