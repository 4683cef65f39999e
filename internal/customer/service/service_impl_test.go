package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/dukaan/internal/customer/domain"
	"github.com/smallbiznis/dukaan/internal/customer/repository"
	"github.com/smallbiznis/dukaan/internal/ownerctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	repo    domain.Repository
	svc     domain.Service
	ownerID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_customer_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	repo := repository.Provide()
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repo,
	})

	return &fixture{db: db, node: node, repo: repo, svc: svc, ownerID: node.Generate()}
}

func (f *fixture) ctx() context.Context {
	return ownerctx.WithOwnerID(context.Background(), f.ownerID)
}

func TestCreateCustomer(t *testing.T) {
	f := setup(t)

	customer, err := f.svc.Create(f.ctx(), domain.CreateCustomerRequest{
		Name:  "  Asha Traders  ",
		Email: "asha@example.com",
		Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Traders", customer.Name)
	assert.True(t, customer.Active)

	fetched, err := f.svc.GetByID(f.ctx(), customer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, customer.ID, fetched.ID)
}

func TestCreateCustomerValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(f.ctx(), domain.CreateCustomerRequest{Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(f.ctx(), domain.CreateCustomerRequest{Name: "Asha", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Asha", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestDeactivateHidesCustomerFromActiveLookup(t *testing.T) {
	f := setup(t)

	customer, err := f.svc.Create(f.ctx(), domain.CreateCustomerRequest{
		Name:  "Asha Traders",
		Email: "asha@example.com",
	})
	require.NoError(t, err)

	deactivated, err := f.svc.Deactivate(f.ctx(), customer.ID.String())
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	found, err := f.repo.FindActiveForUpdate(f.ctx(), f.db, f.ownerID, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	// The record itself is kept for history.
	fetched, err := f.svc.GetByID(f.ctx(), customer.ID.String())
	require.NoError(t, err)
	assert.False(t, fetched.Active)
}

func TestApplyOrderStatsAggregates(t *testing.T) {
	f := setup(t)

	customer, err := f.svc.Create(f.ctx(), domain.CreateCustomerRequest{
		Name:  "Asha Traders",
		Email: "asha@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, f.repo.ApplyOrderStats(f.ctx(), f.db, f.ownerID, customer.ID, 123000))
	require.NoError(t, f.repo.ApplyOrderStats(f.ctx(), f.db, f.ownerID, customer.ID, 50000))

	fetched, err := f.svc.GetByID(f.ctx(), customer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fetched.TotalOrders)
	assert.Equal(t, int64(173000), fetched.TotalSpent)
	// 173000 / 2 with integer division.
	assert.Equal(t, int64(86500), fetched.AverageOrderValue)
}

func TestListCustomersFiltersByName(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(f.ctx(), domain.CreateCustomerRequest{Name: "Asha Traders", Email: "asha@example.com"})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx(), domain.CreateCustomerRequest{Name: "Binod Stores", Email: "binod@example.com"})
	require.NoError(t, err)

	resp, err := f.svc.List(f.ctx(), domain.ListCustomerRequest{Name: "Asha"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Asha Traders", resp.Customers[0].Name)
}
