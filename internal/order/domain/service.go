package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Discount  int64  `json:"discount"`
}

type CreateOrderRequest struct {
	CustomerID       string             `json:"customer_id"`
	Items            []OrderItemRequest `json:"items"`
	Shipping         int64              `json:"shipping"`
	Packaging        int64              `json:"packaging"`
	Notes            string             `json:"notes"`
	ExpectedDelivery *time.Time         `json:"expected_delivery"`
	Metadata         map[string]any     `json:"metadata"`
}

type TransitionRequest struct {
	OrderID  string `json:"-"`
	Status   Status `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type CancelOrderRequest struct {
	OrderID string `json:"-"`
	Reason  string `json:"reason"`
}

type ListOrderRequest struct {
	PageToken     string
	PageSize      int
	CustomerID    string
	Status        Status
	PaymentStatus PaymentStatus
}

type ListOrderResponse struct {
	NextPageToken string  `json:"next_page_token"`
	HasMore       bool    `json:"has_more"`
	Orders        []Order `json:"orders"`
}

// Service drives the order lifecycle from creation through fulfillment and
// cancellation.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)
	// TransitionStatus moves the order forward through fulfillment and
	// appends a tracking entry. Re-asserting the current status succeeds
	// without recording anything.
	TransitionStatus(ctx context.Context, req TransitionRequest) (Order, error)
	// Cancel restores reserved stock and marks the order cancelled.
	// Cancelling an already cancelled order fails with ErrAlreadyTerminal
	// and never restores stock a second time.
	Cancel(ctx context.Context, req CancelOrderRequest) (Order, error)
}

// PaymentApplier is how invoice settlement pushes collected money back onto
// the originating order. Only the order package mutates order rows, so the
// invoice service calls through this narrow surface inside its own
// transaction.
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, tx *gorm.DB, ownerID, orderID snowflake.ID, amount int64) error
}

var (
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrEmptyOrder        = errors.New("empty_order")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidCharge     = errors.New("invalid_charge")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrAlreadyTerminal   = errors.New("order_terminal")
	ErrNotCancellable    = errors.New("order_not_cancellable")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrCustomerInactive  = errors.New("customer_inactive")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrInvalidAmount     = errors.New("invalid_amount")
)
