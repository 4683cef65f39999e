// Package seed bootstraps demo data for local development so the API is
// exercisable immediately after first start.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/dukaan/internal/customer/domain"
	inventorydomain "github.com/smallbiznis/dukaan/internal/inventory/domain"
	"gorm.io/gorm"
)

// DemoOwnerID is the fixed tenant used by local development seeds. Requests
// carrying X-Owner-ID: 1 operate on this catalog.
const DemoOwnerID = snowflake.ID(1)

// EnsureDemoCatalog inserts a small product catalog and one customer for the
// demo owner if none exist yet. Safe to call on every startup.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&inventorydomain.Product{}).
			Where("owner_id = ?", DemoOwnerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		products := []inventorydomain.Product{
			{
				ID:             node.Generate(),
				OwnerID:        DemoOwnerID,
				SKU:            "NOTEBOOK-A5",
				Name:           "A5 Notebook",
				CostPrice:      3000,
				SellingPrice:   5000,
				TaxRate:        12,
				Quantity:       200,
				MinStock:       20,
				TrackInventory: true,
				Active:         true,
			},
			{
				ID:             node.Generate(),
				OwnerID:        DemoOwnerID,
				SKU:            "PEN-GEL-BLUE",
				Name:           "Blue Gel Pen",
				CostPrice:      500,
				SellingPrice:   1000,
				TaxRate:        18,
				Quantity:       500,
				MinStock:       50,
				TrackInventory: true,
				Active:         true,
			},
			{
				ID:             node.Generate(),
				OwnerID:        DemoOwnerID,
				SKU:            "GIFT-WRAP",
				Name:           "Gift Wrapping",
				SellingPrice:   2500,
				TaxRate:        18,
				TrackInventory: false,
				Active:         true,
			},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		customer := customerdomain.Customer{
			ID:      node.Generate(),
			OwnerID: DemoOwnerID,
			Name:    "Walk-in Customer",
			Email:   "walkin@example.com",
			Active:  true,
		}
		return tx.Create(&customer).Error
	})
}
