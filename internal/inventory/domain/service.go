package domain

import (
	"context"
	"errors"
	"time"
)

type CreateProductRequest struct {
	SKU            string         `json:"sku"`
	Name           string         `json:"name"`
	CostPrice      int64          `json:"cost_price"`
	SellingPrice   int64          `json:"selling_price"`
	TaxRate        float64        `json:"tax_rate"`
	Quantity       int64          `json:"quantity"`
	MinStock       int64          `json:"min_stock"`
	TrackInventory *bool          `json:"track_inventory"`
	Metadata       map[string]any `json:"metadata"`
}

type ListProductRequest struct {
	PageToken string
	PageSize  int
	SKU       string
	Name      string
	LowStock  bool
	CreatedAt *time.Time
}

type ListProductResponse struct {
	NextPageToken string    `json:"next_page_token"`
	HasMore       bool      `json:"has_more"`
	Products      []Product `json:"products"`
}

type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
}

type SetStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Service exposes catalog maintenance and out-of-transaction ledger
// operations.
type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, req ListProductRequest) (ListProductResponse, error)
	SetLevel(ctx context.Context, req SetStockRequest) (Product, error)
	Adjust(ctx context.Context, req AdjustStockRequest) (Product, error)
}

var (
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidSKU        = errors.New("invalid_sku")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidTaxRate    = errors.New("invalid_tax_rate")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrDuplicateSKU      = errors.New("duplicate_sku")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
