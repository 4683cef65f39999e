// Package assistant answers read-only back-office questions for a classified
// intent. Natural-language understanding happens outside; callers send an
// intent label plus parameters and get a short textual answer with the
// backing data.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	inventorydomain "github.com/smallbiznis/dukaan/internal/inventory/domain"
	invoicedomain "github.com/smallbiznis/dukaan/internal/invoice/domain"
	"github.com/smallbiznis/dukaan/internal/money"
	orderdomain "github.com/smallbiznis/dukaan/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Intent is the externally classified question kind.
type Intent string

const (
	IntentStockLevel          Intent = "stock_level"
	IntentOrderStatus         Intent = "order_status"
	IntentOutstandingInvoices Intent = "outstanding_invoices"
)

var (
	ErrUnknownIntent    = errors.New("unknown_intent")
	ErrMissingParameter = errors.New("missing_parameter")
)

type AskRequest struct {
	Intent Intent            `json:"intent"`
	Params map[string]string `json:"params"`
}

// Answer is the assistant reply: a human-readable line plus the records it
// was derived from.
type Answer struct {
	Intent Intent `json:"intent"`
	Text   string `json:"text"`
	Data   any    `json:"data,omitempty"`
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Inventory inventorydomain.Service
	Orders    orderdomain.Service
	Invoices  invoicedomain.Service
}

type Service struct {
	log       *zap.Logger
	inventory inventorydomain.Service
	orders    orderdomain.Service
	invoices  invoicedomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:       p.Log.Named("assistant.service"),
		inventory: p.Inventory,
		orders:    p.Orders,
		invoices:  p.Invoices,
	}
}

func (s *Service) Ask(ctx context.Context, req AskRequest) (Answer, error) {
	switch req.Intent {
	case IntentStockLevel:
		return s.stockLevel(ctx, req.Params)
	case IntentOrderStatus:
		return s.orderStatus(ctx, req.Params)
	case IntentOutstandingInvoices:
		return s.outstandingInvoices(ctx, req.Params)
	default:
		return Answer{}, ErrUnknownIntent
	}
}

func (s *Service) stockLevel(ctx context.Context, params map[string]string) (Answer, error) {
	sku := strings.TrimSpace(params["sku"])
	if sku == "" {
		return Answer{}, fmt.Errorf("%w: sku", ErrMissingParameter)
	}

	resp, err := s.inventory.List(ctx, inventorydomain.ListProductRequest{SKU: sku})
	if err != nil {
		return Answer{}, err
	}
	if len(resp.Products) == 0 {
		return Answer{}, inventorydomain.ErrNotFound
	}

	product := resp.Products[0]
	text := fmt.Sprintf("%s (%s): %d on hand", product.Name, product.SKU, product.Quantity)
	if !product.TrackInventory {
		text = fmt.Sprintf("%s (%s): inventory not tracked", product.Name, product.SKU)
	} else if product.LowStock() {
		text += fmt.Sprintf(", below the minimum of %d", product.MinStock)
	}

	return Answer{Intent: IntentStockLevel, Text: text, Data: product}, nil
}

func (s *Service) orderStatus(ctx context.Context, params map[string]string) (Answer, error) {
	orderID := strings.TrimSpace(params["order_id"])
	if orderID == "" {
		return Answer{}, fmt.Errorf("%w: order_id", ErrMissingParameter)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return Answer{}, err
	}

	text := fmt.Sprintf("Order %s is %s, payment %s, total %s due %s",
		order.OrderNumber,
		order.Status,
		order.PaymentStatus,
		money.Format(order.Total),
		money.Format(order.AmountDue),
	)
	return Answer{Intent: IntentOrderStatus, Text: text, Data: order}, nil
}

func (s *Service) outstandingInvoices(ctx context.Context, params map[string]string) (Answer, error) {
	var outstanding []invoicedomain.Invoice
	var due int64

	for _, status := range []invoicedomain.Status{
		invoicedomain.StatusPending,
		invoicedomain.StatusPartial,
		invoicedomain.StatusOverdue,
	} {
		resp, err := s.invoices.List(ctx, invoicedomain.ListInvoiceRequest{
			Status:     status,
			CustomerID: strings.TrimSpace(params["customer_id"]),
		})
		if err != nil {
			return Answer{}, err
		}
		for _, invoice := range resp.Invoices {
			outstanding = append(outstanding, invoice)
			due += invoice.AmountDue
		}
	}

	text := fmt.Sprintf("%d outstanding invoices, %s due in total", len(outstanding), money.Format(due))
	return Answer{Intent: IntentOutstandingInvoices, Text: text, Data: outstanding}, nil
}
