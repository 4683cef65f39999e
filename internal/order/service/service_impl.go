package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/internal/clock"
	customerdomain "github.com/smallbiznis/dukaan/internal/customer/domain"
	inventorydomain "github.com/smallbiznis/dukaan/internal/inventory/domain"
	"github.com/smallbiznis/dukaan/internal/money"
	"github.com/smallbiznis/dukaan/internal/notification"
	"github.com/smallbiznis/dukaan/internal/numbering"
	obsmetrics "github.com/smallbiznis/dukaan/internal/observability/metrics"
	"github.com/smallbiznis/dukaan/internal/order/domain"
	"github.com/smallbiznis/dukaan/internal/ownerctx"
	pkgdb "github.com/smallbiznis/dukaan/pkg/db"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// numberingAttempts bounds retries when a concurrently committed order wins
// the same document number.
const numberingAttempts = 3

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	Ledger       inventorydomain.Ledger
	Numbering    *numbering.Service
	Dispatcher   notification.Dispatcher
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
	ledger       inventorydomain.Ledger
	numbering    *numbering.Service
	dispatcher   notification.Dispatcher
	obsMetrics   *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return newService(p)
}

// NewPaymentApplier exposes the same service through the narrow surface the
// invoice settlement transaction uses.
func NewPaymentApplier(p Params) domain.PaymentApplier {
	return newService(p)
}

func newService(p Params) *Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("order.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		ledger:       p.Ledger,
		numbering:    p.Numbering,
		dispatcher:   p.Dispatcher,
		obsMetrics:   p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Order{}, domain.ErrInvalidOwner
	}

	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(req.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	if req.Shipping < 0 || req.Packaging < 0 {
		return domain.Order{}, domain.ErrInvalidCharge
	}

	lines := make([]inventorydomain.ReserveLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, domain.ErrInvalidQuantity
		}
		productID, err := s.parseID(item.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		lines = append(lines, inventorydomain.ReserveLine{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	var (
		order    domain.Order
		customer *customerdomain.Customer
	)

	// The allocated number is globally unique per owner but the insert can
	// still collide with a number handed out by a transaction that committed
	// after ours read the counter. Retry the whole transaction on a
	// duplicate-key error.
	for attempt := 1; ; attempt++ {
		order, customer, err = s.createOnce(ctx, ownerID, customerID, req, lines)
		if err == nil {
			break
		}
		if !pkgdb.IsDuplicateKeyErr(err) || attempt >= numberingAttempts {
			return domain.Order{}, err
		}
		if s.obsMetrics != nil {
			s.obsMetrics.RecordNumberingRetry()
		}
		s.log.Warn("order number collision, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordOrderCreated(string(order.Status))
	}
	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("order_id", order.ID.String()),
		zap.Int64("total", order.Total),
	)
	s.dispatcher.Dispatch(ctx, notification.NewEvent(notification.EventOrderCreated, ownerID, map[string]any{
		"order_number":   order.OrderNumber,
		"customer_name":  customer.Name,
		"customer_email": customer.Email,
		"total":          money.Format(order.Total),
	}))

	return order, nil
}

func (s *Service) createOnce(ctx context.Context, ownerID, customerID snowflake.ID, req domain.CreateOrderRequest, lines []inventorydomain.ReserveLine) (domain.Order, *customerdomain.Customer, error) {
	var (
		order    domain.Order
		customer *customerdomain.Customer
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		customer, err = s.customerRepo.FindActiveForUpdate(ctx, tx, ownerID, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			existing, err := s.customerRepo.FindByID(ctx, tx, ownerID, customerID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrCustomerNotFound
			}
			return domain.ErrCustomerInactive
		}

		products, err := s.ledger.Reserve(ctx, tx, ownerID, lines)
		if err != nil {
			if errors.Is(err, inventorydomain.ErrNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}

		now := s.clock.Now()
		orderID := s.genID.Generate()

		moneyLines := make([]money.Line, 0, len(req.Items))
		items := make([]domain.OrderItem, 0, len(req.Items))
		for i, item := range req.Items {
			productID, _ := s.parseID(item.ProductID)
			product := products[productID]

			line := money.Line{
				UnitPrice: product.SellingPrice,
				Quantity:  item.Quantity,
				Discount:  item.Discount,
				TaxRate:   product.TaxRate,
			}
			lt, err := money.ComputeLine(line)
			if err != nil {
				return err
			}
			moneyLines = append(moneyLines, line)

			items = append(items, domain.OrderItem{
				ID:        s.genID.Generate(),
				OwnerID:   ownerID,
				OrderID:   orderID,
				ProductID: product.ID,
				Position:  i,
				SKU:       product.SKU,
				Name:      product.Name,
				UnitPrice: product.SellingPrice,
				Quantity:  item.Quantity,
				Discount:  item.Discount,
				TaxRate:   product.TaxRate,
				TaxAmount: lt.Tax,
				Total:     lt.Total,
				Tracked:   product.TrackInventory,
				CreatedAt: now,
			})
		}

		totals, err := money.ComputeOrder(moneyLines, req.Shipping, req.Packaging)
		if err != nil {
			return err
		}

		number, err := s.numbering.Next(ctx, tx, ownerID, numbering.KindOrder, now)
		if err != nil {
			return err
		}

		metadata := datatypes.JSONMap{}
		for k, v := range req.Metadata {
			metadata[k] = v
		}

		order = domain.Order{
			ID:               orderID,
			OwnerID:          ownerID,
			CustomerID:       customerID,
			OrderNumber:      number,
			Status:           domain.StatusPending,
			PaymentStatus:    domain.PaymentUnpaid,
			Subtotal:         totals.Subtotal,
			DiscountTotal:    totals.DiscountTotal,
			TaxTotal:         totals.TaxTotal,
			Shipping:         totals.Shipping,
			Packaging:        totals.Packaging,
			Total:            totals.Total,
			AmountPaid:       0,
			AmountDue:        totals.Total,
			Notes:            strings.TrimSpace(req.Notes),
			ExpectedDelivery: req.ExpectedDelivery,
			Metadata:         metadata,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		if err := s.repo.InsertTracking(ctx, tx, &domain.TrackingEntry{
			ID:        s.genID.Generate(),
			OrderID:   orderID,
			Status:    domain.StatusPending,
			Notes:     "order placed",
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if err := s.customerRepo.ApplyOrderStats(ctx, tx, ownerID, customerID, order.Total); err != nil {
			return err
		}

		order.Items = items
		return nil
	})
	if err != nil {
		return domain.Order{}, nil, err
	}
	return order, customer, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Order, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Order{}, domain.ErrInvalidOwner
	}

	orderID, err := s.parseID(id)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, ownerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, ownerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	tracking, err := s.repo.FindTracking(ctx, s.db, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Tracking = tracking

	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.ListOrderResponse{}, domain.ErrInvalidOwner
	}

	filter := domain.ListOrderFilter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := s.parseID(req.CustomerID)
		if err != nil {
			return domain.ListOrderResponse{}, err
		}
		filter.CustomerID = customerID
	}

	items, size, err := s.repo.List(ctx, s.db, ownerID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, size, func(order *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListOrderResponse{Orders: orders}
	if pageInfo != nil {
		resp.NextPageToken = pageInfo.NextPageToken
		resp.HasMore = pageInfo.HasMore
	}
	return resp, nil
}

func (s *Service) TransitionStatus(ctx context.Context, req domain.TransitionRequest) (domain.Order, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Order{}, domain.ErrInvalidOwner
	}

	orderID, err := s.parseID(req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !req.Status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	var (
		order   domain.Order
		changed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindForUpdate(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		if current.Status.Terminal() {
			return domain.ErrAlreadyTerminal
		}
		if current.Status == req.Status {
			// Re-asserting the current status is accepted but records nothing.
			order = *current
			return nil
		}
		if !domain.CanTransition(current.Status, req.Status) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		current.Status = req.Status
		current.UpdatedAt = now
		if req.Status == domain.StatusDelivered {
			current.ActualDelivery = &now
		}
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}
		if err := s.repo.InsertTracking(ctx, tx, &domain.TrackingEntry{
			ID:        s.genID.Generate(),
			OrderID:   orderID,
			Status:    req.Status,
			Location:  strings.TrimSpace(req.Location),
			Notes:     strings.TrimSpace(req.Notes),
			CreatedAt: now,
		}); err != nil {
			return err
		}

		order = *current
		changed = true
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if changed {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordOrderTransition(string(order.Status))
		}
		s.dispatcher.Dispatch(ctx, notification.NewEvent(notification.EventStatusChanged, ownerID, map[string]any{
			"order_number": order.OrderNumber,
			"status":       string(order.Status),
		}))
	}

	return order, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelOrderRequest) (domain.Order, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Order{}, domain.ErrInvalidOwner
	}

	orderID, err := s.parseID(req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindForUpdate(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		// Stock was already restored by the first cancel; failing here keeps
		// the restore from ever running twice.
		if current.Status == domain.StatusCancelled {
			return domain.ErrAlreadyTerminal
		}
		if current.Status == domain.StatusDelivered {
			return domain.ErrNotCancellable
		}

		items, err := s.repo.FindItems(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		restore := make([]inventorydomain.ReserveLine, 0, len(items))
		for _, item := range items {
			if !item.Tracked {
				continue
			}
			restore = append(restore, inventorydomain.ReserveLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		if len(restore) > 0 {
			if err := s.ledger.Restore(ctx, tx, ownerID, restore); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		current.Status = domain.StatusCancelled
		current.CancelReason = strings.TrimSpace(req.Reason)
		current.CancelledAt = &now
		current.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}
		if err := s.repo.InsertTracking(ctx, tx, &domain.TrackingEntry{
			ID:        s.genID.Generate(),
			OrderID:   orderID,
			Status:    domain.StatusCancelled,
			Notes:     current.CancelReason,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		order = *current
		order.Items = items
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordOrderCancelled()
	}
	s.log.Info("order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", order.CancelReason),
	)
	s.dispatcher.Dispatch(ctx, notification.NewEvent(notification.EventOrderCancelled, ownerID, map[string]any{
		"order_number": order.OrderNumber,
		"reason":       order.CancelReason,
	}))

	return order, nil
}

// ApplyPayment implements domain.PaymentApplier. It runs inside the invoice
// settlement transaction so order and invoice amounts move together.
func (s *Service) ApplyPayment(ctx context.Context, tx *gorm.DB, ownerID, orderID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	order, err := s.repo.FindForUpdate(ctx, tx, ownerID, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}

	order.AmountPaid += amount
	order.AmountDue = order.Total - order.AmountPaid
	order.PaymentStatus = domain.PaymentStatusFor(order.Total, order.AmountPaid)
	order.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, tx, order)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
