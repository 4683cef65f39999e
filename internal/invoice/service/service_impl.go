package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/dukaan/internal/clock"
	"github.com/smallbiznis/dukaan/internal/config"
	customerdomain "github.com/smallbiznis/dukaan/internal/customer/domain"
	"github.com/smallbiznis/dukaan/internal/invoice/domain"
	"github.com/smallbiznis/dukaan/internal/invoice/format"
	"github.com/smallbiznis/dukaan/internal/money"
	"github.com/smallbiznis/dukaan/internal/notification"
	"github.com/smallbiznis/dukaan/internal/numbering"
	obsmetrics "github.com/smallbiznis/dukaan/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/dukaan/internal/order/domain"
	"github.com/smallbiznis/dukaan/internal/ownerctx"
	pkgdb "github.com/smallbiznis/dukaan/pkg/db"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const numberingAttempts = 3

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Billing       config.BillingConfig
	Repo          domain.Repository
	CustomerRepo  customerdomain.Repository
	OrderRepo     orderdomain.Repository
	OrderPayments orderdomain.PaymentApplier
	Numbering     *numbering.Service
	Dispatcher    notification.Dispatcher
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	billing       config.BillingConfig
	repo          domain.Repository
	customerRepo  customerdomain.Repository
	orderRepo     orderdomain.Repository
	orderPayments orderdomain.PaymentApplier
	numbering     *numbering.Service
	dispatcher    notification.Dispatcher
	obsMetrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("invoice.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		billing:       p.Billing,
		repo:          p.Repo,
		customerRepo:  p.CustomerRepo,
		orderRepo:     p.OrderRepo,
		orderPayments: p.OrderPayments,
		numbering:     p.Numbering,
		dispatcher:    p.Dispatcher,
		obsMetrics:    p.ObsMetrics,
	}
}

func (s *Service) CreateFromOrder(ctx context.Context, req domain.CreateFromOrderRequest) (domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	orderID, err := s.parseID(req.OrderID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var (
		invoice  domain.Invoice
		customer *customerdomain.Customer
	)
	err = s.withNumberingRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			order, err := s.orderRepo.FindByID(ctx, tx, ownerID, orderID)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrOrderNotFound
			}
			if order.Status == orderdomain.StatusCancelled || order.Status == orderdomain.StatusRefunded {
				return domain.ErrOrderNotBillable
			}

			orderItems, err := s.orderRepo.FindItems(ctx, tx, ownerID, orderID)
			if err != nil {
				return err
			}

			customer, err = s.customerRepo.FindByID(ctx, tx, ownerID, order.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return domain.ErrCustomerNotFound
			}

			now := s.clock.Now()
			invoiceID := s.genID.Generate()

			items := make([]domain.InvoiceItem, 0, len(orderItems))
			for i, item := range orderItems {
				productID := item.ProductID
				items = append(items, domain.InvoiceItem{
					ID:        s.genID.Generate(),
					OwnerID:   ownerID,
					InvoiceID: invoiceID,
					ProductID: &productID,
					Position:  i,
					SKU:       item.SKU,
					Name:      item.Name,
					UnitPrice: item.UnitPrice,
					Quantity:  item.Quantity,
					Discount:  item.Discount,
					TaxRate:   item.TaxRate,
					TaxAmount: item.TaxAmount,
					Total:     item.Total,
					CreatedAt: now,
				})
			}

			number, err := s.numbering.Next(ctx, tx, ownerID, numbering.KindInvoice, now)
			if err != nil {
				return err
			}

			terms := s.terms(req.TermsDays)
			linkedOrderID := order.ID
			invoice = domain.Invoice{
				ID:               invoiceID,
				OwnerID:          ownerID,
				CustomerID:       order.CustomerID,
				OrderID:          &linkedOrderID,
				InvoiceNumber:    number,
				Status:           domain.StatusPending,
				Subtotal:         order.Subtotal,
				DiscountTotal:    order.DiscountTotal,
				TaxTotal:         order.TaxTotal,
				Shipping:         order.Shipping,
				Packaging:        order.Packaging,
				Total:            order.Total,
				PaidAmount:       0,
				AmountDue:        order.Total,
				AmountInWords:    format.AmountInWords(order.Total),
				PaymentTermsDays: terms,
				IssueDate:        now,
				DueDate:          now.AddDate(0, 0, terms),
				Notes:            strings.TrimSpace(req.Notes),
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
				return err
			}
			if err := s.repo.InsertItems(ctx, tx, items); err != nil {
				return err
			}

			invoice.Items = items
			return nil
		})
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.afterCreate(ctx, invoice, customer)
	return invoice, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if len(req.Items) == 0 {
		return domain.Invoice{}, domain.ErrEmptyInvoice
	}

	var (
		invoice  domain.Invoice
		customer *customerdomain.Customer
	)
	err = s.withNumberingRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			customer, err = s.customerRepo.FindByID(ctx, tx, ownerID, customerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return domain.ErrCustomerNotFound
			}
			if !customer.Active {
				return domain.ErrCustomerInactive
			}

			now := s.clock.Now()
			invoiceID := s.genID.Generate()

			moneyLines := make([]money.Line, 0, len(req.Items))
			items := make([]domain.InvoiceItem, 0, len(req.Items))
			for i, item := range req.Items {
				line := money.Line{
					UnitPrice: item.UnitPrice,
					Quantity:  item.Quantity,
					Discount:  item.Discount,
					TaxRate:   item.TaxRate,
				}
				lt, err := money.ComputeLine(line)
				if err != nil {
					return err
				}
				moneyLines = append(moneyLines, line)

				items = append(items, domain.InvoiceItem{
					ID:        s.genID.Generate(),
					OwnerID:   ownerID,
					InvoiceID: invoiceID,
					Position:  i,
					Name:      strings.TrimSpace(item.Name),
					UnitPrice: item.UnitPrice,
					Quantity:  item.Quantity,
					Discount:  item.Discount,
					TaxRate:   item.TaxRate,
					TaxAmount: lt.Tax,
					Total:     lt.Total,
					CreatedAt: now,
				})
			}

			totals, err := money.ComputeOrder(moneyLines, req.Shipping, req.Packaging)
			if err != nil {
				return err
			}

			number, err := s.numbering.Next(ctx, tx, ownerID, numbering.KindInvoice, now)
			if err != nil {
				return err
			}

			terms := s.terms(req.TermsDays)
			invoice = domain.Invoice{
				ID:               invoiceID,
				OwnerID:          ownerID,
				CustomerID:       customerID,
				InvoiceNumber:    number,
				Status:           domain.StatusPending,
				Subtotal:         totals.Subtotal,
				DiscountTotal:    totals.DiscountTotal,
				TaxTotal:         totals.TaxTotal,
				Shipping:         totals.Shipping,
				Packaging:        totals.Packaging,
				Total:            totals.Total,
				PaidAmount:       0,
				AmountDue:        totals.Total,
				AmountInWords:    format.AmountInWords(totals.Total),
				PaymentTermsDays: terms,
				IssueDate:        now,
				DueDate:          now.AddDate(0, 0, terms),
				Notes:            strings.TrimSpace(req.Notes),
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
				return err
			}
			if err := s.repo.InsertItems(ctx, tx, items); err != nil {
				return err
			}

			invoice.Items = items
			return nil
		})
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.afterCreate(ctx, invoice, customer)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	invoiceID, err := s.parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, ownerID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, ownerID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items

	payments, err := s.repo.FindPayments(ctx, s.db, ownerID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Payments = payments

	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOwner
	}

	filter := domain.ListInvoiceFilter{Status: req.Status}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := s.parseID(req.CustomerID)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.CustomerID = customerID
	}

	items, size, err := s.repo.List(ctx, s.db, ownerID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, size, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.NextPageToken = pageInfo.NextPageToken
		resp.HasMore = pageInfo.HasMore
	}
	return resp, nil
}

func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (domain.Invoice, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOwner
	}

	invoiceID, err := s.parseID(req.InvoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if req.Amount <= 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return domain.Invoice{}, domain.ErrInvalidMethod
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = ulid.Make().String()
	}

	var invoice domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindForUpdate(ctx, tx, ownerID, invoiceID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		if !s.billing.AllowOverpayment && current.PaidAmount+req.Amount > current.Total {
			return domain.ErrOverpayment
		}

		now := s.clock.Now()
		payment := domain.Payment{
			ID:        s.genID.Generate(),
			OwnerID:   ownerID,
			InvoiceID: invoiceID,
			Amount:    req.Amount,
			Method:    method,
			Reference: reference,
			PaidAt:    now,
			CreatedAt: now,
		}
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		current.PaidAmount += req.Amount
		current.AmountDue = current.Total - current.PaidAmount
		switch {
		case current.PaidAmount >= current.Total:
			current.Status = domain.StatusPaid
			if current.PaidDate == nil {
				current.PaidDate = &now
			}
		default:
			current.Status = domain.StatusPartial
		}
		current.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}

		if current.OrderID != nil {
			if err := s.orderPayments.ApplyPayment(ctx, tx, ownerID, *current.OrderID, req.Amount); err != nil {
				return err
			}
		}

		invoice = *current
		invoice.Payments = append(invoice.Payments, payment)
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPayment(method, invoice.Total)
	}
	s.log.Info("payment recorded",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int64("amount", req.Amount),
		zap.String("method", method),
		zap.String("status", string(invoice.Status)),
	)
	s.dispatcher.Dispatch(ctx, notification.NewEvent(notification.EventPaymentReceived, ownerID, map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"amount":         money.Format(req.Amount),
		"status":         string(invoice.Status),
		"reference":      reference,
	}))

	return invoice, nil
}

func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	changed, err := s.repo.MarkOverdue(ctx, s.db, now)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", changed))
	}
	return changed, nil
}

// withNumberingRetry reruns fn when the insert loses a race on the allocated
// invoice number.
func (s *Service) withNumberingRetry(fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !pkgdb.IsDuplicateKeyErr(err) || attempt >= numberingAttempts {
			return err
		}
		if s.obsMetrics != nil {
			s.obsMetrics.RecordNumberingRetry()
		}
		s.log.Warn("invoice number collision, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
}

func (s *Service) afterCreate(ctx context.Context, invoice domain.Invoice, customer *customerdomain.Customer) {
	payload := map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"total":          money.Format(invoice.Total),
		"due_date":       invoice.DueDate.Format("2006-01-02"),
	}
	if customer != nil {
		payload["customer_name"] = customer.Name
		payload["customer_email"] = customer.Email
	}

	s.log.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int64("total", invoice.Total),
	)
	s.dispatcher.Dispatch(ctx, notification.NewEvent(notification.EventInvoiceSent, invoice.OwnerID, payload))
}

func (s *Service) terms(override int) int {
	if override > 0 {
		return override
	}
	return s.billing.TermsDays()
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
