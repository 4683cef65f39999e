package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/dukaan/internal/inventory/domain"
	"github.com/smallbiznis/dukaan/internal/inventory/repository"
	"github.com/smallbiznis/dukaan/internal/ownerctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     *Service
	ownerID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_inventory_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	// sqlite allows one writer; funnel concurrent tests through a single conn.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	svc := newService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	return &fixture{db: db, node: node, svc: svc, ownerID: node.Generate()}
}

func (f *fixture) ctx() context.Context {
	return ownerctx.WithOwnerID(context.Background(), f.ownerID)
}

func (f *fixture) seedProduct(t *testing.T, sku string, qty int64, tracked bool) domain.Product {
	t.Helper()
	product := domain.Product{
		ID:             f.node.Generate(),
		OwnerID:        f.ownerID,
		SKU:            sku,
		Name:           "Product " + sku,
		SellingPrice:   10000,
		Quantity:       qty,
		TrackInventory: tracked,
		Active:         true,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func (f *fixture) productQty(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	var product domain.Product
	require.NoError(t, f.db.Where("id = ?", id).First(&product).Error)
	return product.Quantity
}

func TestCreateProductDefaultsAndSKU(t *testing.T) {
	f := setup(t)

	product, err := f.svc.Create(f.ctx(), domain.CreateProductRequest{
		Name:         "Gel Pen Blue",
		SellingPrice: 1500,
		TaxRate:      18,
		Quantity:     40,
		MinStock:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, "GEL-PEN-BLUE", product.SKU)
	assert.True(t, product.TrackInventory)
	assert.True(t, product.Active)
	assert.False(t, product.LowStock())
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "NOTEBOOK-A5", 10, true)

	_, err := f.svc.Create(f.ctx(), domain.CreateProductRequest{
		SKU:          "NOTEBOOK-A5",
		Name:         "Another notebook",
		SellingPrice: 9000,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestCreateProductValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(f.ctx(), domain.CreateProductRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(f.ctx(), domain.CreateProductRequest{Name: "Pen", SellingPrice: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = f.svc.Create(f.ctx(), domain.CreateProductRequest{Name: "Pen", TaxRate: 101})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	_, err = f.svc.Create(f.ctx(), domain.CreateProductRequest{Name: "Pen", Quantity: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Create(context.Background(), domain.CreateProductRequest{Name: "Pen"})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestSetLevelAndAdjust(t *testing.T) {
	f := setup(t)
	product := f.seedProduct(t, "WIDGET", 10, true)

	updated, err := f.svc.SetLevel(f.ctx(), domain.SetStockRequest{ProductID: product.ID.String(), Quantity: 25})
	require.NoError(t, err)
	assert.Equal(t, int64(25), updated.Quantity)

	updated, err = f.svc.Adjust(f.ctx(), domain.AdjustStockRequest{ProductID: product.ID.String(), Delta: -5})
	require.NoError(t, err)
	assert.Equal(t, int64(20), updated.Quantity)

	// A negative adjustment past zero clamps instead of going negative.
	updated, err = f.svc.Adjust(f.ctx(), domain.AdjustStockRequest{ProductID: product.ID.String(), Delta: -100})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Quantity)

	_, err = f.svc.SetLevel(f.ctx(), domain.SetStockRequest{ProductID: product.ID.String(), Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestStockMutationsSkipUntrackedProducts(t *testing.T) {
	f := setup(t)
	product := f.seedProduct(t, "GIFT-WRAP", 0, false)

	updated, err := f.svc.SetLevel(f.ctx(), domain.SetStockRequest{ProductID: product.ID.String(), Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Quantity)
	assert.Equal(t, int64(0), f.productQty(t, product.ID))
}

func TestReserveDecrementsAndRestoreReplenishes(t *testing.T) {
	f := setup(t)
	product := f.seedProduct(t, "WIDGET", 10, true)
	lines := []domain.ReserveLine{{ProductID: product.ID, Quantity: 4}}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.svc.Reserve(f.ctx(), tx, f.ownerID, lines)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.productQty(t, product.ID))

	err = f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.Restore(f.ctx(), tx, f.ownerID, lines)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.productQty(t, product.ID))
}

func TestReserveInsufficientStock(t *testing.T) {
	f := setup(t)
	product := f.seedProduct(t, "WIDGET", 3, true)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.svc.Reserve(f.ctx(), tx, f.ownerID, []domain.ReserveLine{
			{ProductID: product.ID, Quantity: 4},
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), f.productQty(t, product.ID))
}

func TestReserveIgnoresUntrackedLines(t *testing.T) {
	f := setup(t)
	product := f.seedProduct(t, "GIFT-WRAP", 0, false)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.svc.Reserve(f.ctx(), tx, f.ownerID, []domain.ReserveLine{
			{ProductID: product.ID, Quantity: 7},
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.productQty(t, product.ID))
}

func TestListFiltersLowStock(t *testing.T) {
	f := setup(t)
	low := f.seedProduct(t, "ALMOST-OUT", 2, true)
	low.MinStock = 5
	require.NoError(t, f.db.Save(&low).Error)
	f.seedProduct(t, "PLENTY", 100, true)

	resp, err := f.svc.List(f.ctx(), domain.ListProductRequest{LowStock: true})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "ALMOST-OUT", resp.Products[0].SKU)
	assert.True(t, resp.Products[0].LowStock())
}
