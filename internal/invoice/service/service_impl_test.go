package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/dukaan/internal/clock"
	"github.com/smallbiznis/dukaan/internal/config"
	customerdomain "github.com/smallbiznis/dukaan/internal/customer/domain"
	customerrepo "github.com/smallbiznis/dukaan/internal/customer/repository"
	inventorydomain "github.com/smallbiznis/dukaan/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/dukaan/internal/inventory/repository"
	inventoryservice "github.com/smallbiznis/dukaan/internal/inventory/service"
	"github.com/smallbiznis/dukaan/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/dukaan/internal/invoice/repository"
	"github.com/smallbiznis/dukaan/internal/notification"
	"github.com/smallbiznis/dukaan/internal/numbering"
	orderdomain "github.com/smallbiznis/dukaan/internal/order/domain"
	orderrepo "github.com/smallbiznis/dukaan/internal/order/repository"
	orderservice "github.com/smallbiznis/dukaan/internal/order/service"
	"github.com/smallbiznis/dukaan/internal/ownerctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event notification.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

type fixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	clock      *clock.FakeClock
	dispatcher *recordingDispatcher
	orders     orderdomain.Service
	svc        domain.Service
	ownerID    snowflake.ID
}

func setup(t *testing.T, billing config.BillingConfig) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_invoice_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&inventorydomain.Product{},
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.TrackingEntry{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.Payment{},
		&numbering.Counter{},
	))

	// sqlite allows one writer; funnel concurrent tests through a single conn.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	dispatcher := &recordingDispatcher{}
	numberingSvc := numbering.New(numbering.Params{Log: zap.NewNop()})

	ledger := inventoryservice.NewLedger(inventoryservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  inventoryrepo.Provide(),
	})

	orderParams := orderservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fakeClock,
		Repo:         orderrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		Ledger:       ledger,
		Numbering:    numberingSvc,
		Dispatcher:   dispatcher,
	}

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fakeClock,
		Billing:       billing,
		Repo:          invoicerepo.Provide(),
		CustomerRepo:  customerrepo.Provide(),
		OrderRepo:     orderrepo.Provide(),
		OrderPayments: orderservice.NewPaymentApplier(orderParams),
		Numbering:     numberingSvc,
		Dispatcher:    dispatcher,
	})

	return &fixture{
		db:         db,
		node:       node,
		clock:      fakeClock,
		dispatcher: dispatcher,
		orders:     orderservice.New(orderParams),
		svc:        svc,
		ownerID:    node.Generate(),
	}
}

func (f *fixture) ctx() context.Context {
	return ownerctx.WithOwnerID(context.Background(), f.ownerID)
}

func (f *fixture) seedOrder(t *testing.T) orderdomain.Order {
	t.Helper()

	customer := customerdomain.Customer{
		ID:      f.node.Generate(),
		OwnerID: f.ownerID,
		Name:    "Asha Traders",
		Email:   "asha@example.com",
		Active:  true,
	}
	require.NoError(t, f.db.Create(&customer).Error)

	product := inventorydomain.Product{
		ID:             f.node.Generate(),
		OwnerID:        f.ownerID,
		SKU:            "WIDGET",
		Name:           "Widget",
		SellingPrice:   50000,
		TaxRate:        18,
		Quantity:       10,
		TrackInventory: true,
		Active:         true,
	}
	require.NoError(t, f.db.Create(&product).Error)

	order, err := f.orders.Create(f.ctx(), orderdomain.CreateOrderRequest{
		CustomerID: customer.ID.String(),
		Items: []orderdomain.OrderItemRequest{
			{ProductID: product.ID.String(), Quantity: 2},
		},
		Shipping: 5000,
	})
	require.NoError(t, err)
	return order
}

func TestCreateFromOrderCopiesSnapshot(t *testing.T) {
	f := setup(t, config.BillingConfig{AllowOverpayment: true})
	order := f.seedOrder(t)

	invoice, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
		OrderID: order.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV/260315/0001", invoice.InvoiceNumber)
	assert.Equal(t, domain.StatusPending, invoice.Status)
	assert.Equal(t, order.Total, invoice.Total)
	assert.Equal(t, order.Subtotal, invoice.Subtotal)
	assert.Equal(t, order.TaxTotal, invoice.TaxTotal)
	assert.Equal(t, int64(123000), invoice.AmountDue)
	assert.Equal(t,
		"One Thousand Two Hundred Thirty Rupees",
		invoice.AmountInWords,
	)

	// Default 30-day terms.
	assert.Equal(t, 30, invoice.PaymentTermsDays)
	assert.Equal(t, f.clock.Now().AddDate(0, 0, 30), invoice.DueDate)
	require.NotNil(t, invoice.OrderID)
	assert.Equal(t, order.ID, *invoice.OrderID)

	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "WIDGET", invoice.Items[0].SKU)
	assert.Equal(t, int64(118000), invoice.Items[0].Total)
}

func TestCreateFromOrderValidation(t *testing.T) {
	f := setup(t, config.BillingConfig{AllowOverpayment: true})
	order := f.seedOrder(t)

	_, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
		OrderID: f.node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.orders.Cancel(f.ctx(), orderdomain.CancelOrderRequest{
		OrderID: order.ID.String(),
		Reason:  "test",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
		OrderID: order.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotBillable)
}

func TestPaymentLifecycle(t *testing.T) {
	f := setup(t, config.BillingConfig{AllowOverpayment: true})
	order := f.seedOrder(t)

	invoice, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
		OrderID: order.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(123000), invoice.Total)

	partial, err := f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    23000,
		Method:    "upi",
		Reference: "UPI-123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, partial.Status)
	assert.Equal(t, int64(23000), partial.PaidAmount)
	assert.Equal(t, int64(100000), partial.AmountDue)
	assert.Nil(t, partial.PaidDate)

	f.clock.Advance(time.Hour)
	paid, err := f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    100000,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	assert.Zero(t, paid.AmountDue)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, f.clock.Now(), paid.PaidDate.UTC())

	// The linked order tracks the same settlement.
	settled, err := f.orders.GetByID(f.ctx(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, orderdomain.PaymentPaid, settled.PaymentStatus)
	assert.Equal(t, int64(123000), settled.AmountPaid)
	assert.Zero(t, settled.AmountDue)

	loaded, err := f.svc.GetByID(f.ctx(), invoice.ID.String())
	require.NoError(t, err)
	require.Len(t, loaded.Payments, 2)
	assert.Equal(t, "UPI-123", loaded.Payments[0].Reference)
	// A missing reference is generated, never left empty.
	assert.NotEmpty(t, loaded.Payments[1].Reference)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := setup(t, config.BillingConfig{AllowOverpayment: true})
	order := f.seedOrder(t)

	invoice, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
		OrderID: order.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    0,
		Method:    "cash",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	_, err = f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
		InvoiceID: f.node.Generate().String(),
		Amount:    100,
		Method:    "cash",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverpaymentPolicy(t *testing.T) {
	t.Run("accepted and tracked by default", func(t *testing.T) {
		f := setup(t, config.BillingConfig{AllowOverpayment: true})
		order := f.seedOrder(t)

		invoice, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
			OrderID: order.ID.String(),
		})
		require.NoError(t, err)

		over, err := f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
			InvoiceID: invoice.ID.String(),
			Amount:    130000,
			Method:    "cash",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, over.Status)
		assert.Equal(t, int64(130000), over.PaidAmount)
		// The excess stays visible as a negative balance.
		assert.Equal(t, int64(-7000), over.AmountDue)
	})

	t.Run("rejected when disabled", func(t *testing.T) {
		f := setup(t, config.BillingConfig{AllowOverpayment: false})
		order := f.seedOrder(t)

		invoice, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
			OrderID: order.ID.String(),
		})
		require.NoError(t, err)

		_, err = f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
			InvoiceID: invoice.ID.String(),
			Amount:    130000,
			Method:    "cash",
		})
		assert.ErrorIs(t, err, domain.ErrOverpayment)

		loaded, err := f.svc.GetByID(f.ctx(), invoice.ID.String())
		require.NoError(t, err)
		assert.Zero(t, loaded.PaidAmount)
		assert.Empty(t, loaded.Payments)
	})
}

func TestStandaloneCreate(t *testing.T) {
	f := setup(t, config.BillingConfig{AllowOverpayment: true})

	customer := customerdomain.Customer{
		ID:      f.node.Generate(),
		OwnerID: f.ownerID,
		Name:    "Asha Traders",
		Email:   "asha@example.com",
		Active:  true,
	}
	require.NoError(t, f.db.Create(&customer).Error)

	invoice, err := f.svc.Create(f.ctx(), domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Items: []domain.InvoiceItemRequest{
			{Name: "Installation", UnitPrice: 150000, Quantity: 1, TaxRate: 0.05},
		},
		TermsDays: 15,
	})
	require.NoError(t, err)

	// 1500.00 at 0.05% tax rounds to 0.75.
	assert.Equal(t, int64(150075), invoice.Total)
	assert.Equal(t, "One Thousand Five Hundred Rupees and Seventy Five Paise", invoice.AmountInWords)
	assert.Equal(t, 15, invoice.PaymentTermsDays)
	assert.Nil(t, invoice.OrderID)

	_, err = f.svc.Create(f.ctx(), domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)

	_, err = f.svc.Create(f.ctx(), domain.CreateInvoiceRequest{
		CustomerID: f.node.Generate().String(),
		Items:      []domain.InvoiceItemRequest{{Name: "X", UnitPrice: 100, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestMarkOverdueSweepsPastDueInvoices(t *testing.T) {
	f := setup(t, config.BillingConfig{AllowOverpayment: true})
	order := f.seedOrder(t)

	invoice, err := f.svc.CreateFromOrder(f.ctx(), domain.CreateFromOrderRequest{
		OrderID: order.ID.String(),
		TermsDays: 7,
	})
	require.NoError(t, err)
	assert.False(t, invoice.OverdueAt(f.clock.Now()))

	// Not yet due: sweep changes nothing.
	changed, err := f.svc.MarkOverdue(f.ctx(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, changed)

	f.clock.Advance(8 * 24 * time.Hour)
	assert.True(t, invoice.OverdueAt(f.clock.Now()))

	changed, err = f.svc.MarkOverdue(f.ctx(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	loaded, err := f.svc.GetByID(f.ctx(), invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverdue, loaded.Status)

	// Paid invoices are never swept.
	_, err = f.svc.RecordPayment(f.ctx(), domain.RecordPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    invoice.Total,
		Method:    "cash",
	})
	require.NoError(t, err)
	changed, err = f.svc.MarkOverdue(f.ctx(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, changed)
}
