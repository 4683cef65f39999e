package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/internal/customer/domain"
	pkgdb "github.com/smallbiznis/dukaan/pkg/db"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM customers WHERE owner_id = ? AND id = ?`,
		ownerID,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) FindActiveForUpdate(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := pkgdb.ForUpdate(db.WithContext(ctx)).
		Where("owner_id = ? AND id = ? AND active = ?", ownerID, id, true).
		Limit(1).
		Find(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) ApplyOrderStats(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, orderTotal int64) error {
	// Integer division matches the minor-unit arithmetic used everywhere else.
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET total_orders = total_orders + 1,
		     total_spent = total_spent + ?,
		     average_order_value = (total_spent + ?) / (total_orders + 1),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE owner_id = ? AND id = ?`,
		orderTotal,
		orderTotal,
		ownerID,
		id,
	).Error
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE owner_id = ? AND id = ?`,
		active,
		ownerID,
		id,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, int, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("owner_id = ?", ownerID)
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}

	stmt, size := pagination.Apply(stmt, page)

	var customers []*domain.Customer
	err := stmt.
		Order("created_at desc, id desc").
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, size, nil
}
