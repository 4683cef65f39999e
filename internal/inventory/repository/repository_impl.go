package repository

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/internal/inventory/domain"
	pkgdb "github.com/smallbiznis/dukaan/pkg/db"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE owner_id = ? AND id = ?`,
		ownerID,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, sku string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE owner_id = ? AND sku = ?`,
		ownerID,
		sku,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) LockByIDs(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, ids []snowflake.ID) (map[snowflake.ID]*domain.Product, error) {
	// Fixed lock order prevents deadlock between overlapping reservations.
	sorted := make([]snowflake.ID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	products := make(map[snowflake.ID]*domain.Product, len(sorted))
	for _, id := range sorted {
		if _, ok := products[id]; ok {
			continue
		}
		var product domain.Product
		err := pkgdb.ForUpdate(db.WithContext(ctx)).
			Where("owner_id = ? AND id = ?", ownerID, id).
			Limit(1).
			Find(&product).Error
		if err != nil {
			return nil, err
		}
		if product.ID == 0 {
			continue
		}
		products[id] = &product
	}
	return products, nil
}

func (r *repo) UpdateQuantity(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, quantity int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE owner_id = ? AND id = ?`,
		quantity,
		ownerID,
		id,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListProductFilter, page pagination.Pagination) ([]*domain.Product, int, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("owner_id = ?", ownerID)
	if filter.SKU != "" {
		stmt = stmt.Where("sku = ?", filter.SKU)
	}
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.LowStock {
		stmt = stmt.Where("track_inventory = ? AND quantity <= min_stock", true)
	}

	stmt, size := pagination.Apply(stmt, page)

	var products []*domain.Product
	err := stmt.
		Order("created_at desc, id desc").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, size, nil
}
