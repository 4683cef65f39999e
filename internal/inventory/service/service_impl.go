package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/dukaan/internal/inventory/domain"
	obsmetrics "github.com/smallbiznis/dukaan/internal/observability/metrics"
	"github.com/smallbiznis/dukaan/internal/ownerctx"
	pkgdb "github.com/smallbiznis/dukaan/pkg/db"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return newService(p)
}

// NewLedger exposes the same instance as the transactional stock ledger.
func NewLedger(p Params) domain.Ledger {
	return newService(p)
}

func newService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("inventory.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Product{}, domain.ErrInvalidOwner
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = strings.ToUpper(slug.Make(name))
	}

	if req.CostPrice < 0 || req.SellingPrice < 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if req.TaxRate < 0 || req.TaxRate > 100 {
		return domain.Product{}, domain.ErrInvalidTaxRate
	}
	if req.Quantity < 0 || req.MinStock < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	track := true
	if req.TrackInventory != nil {
		track = *req.TrackInventory
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		metadata[key] = value
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:             s.genID.Generate(),
		OwnerID:        ownerID,
		SKU:            sku,
		Name:           name,
		CostPrice:      req.CostPrice,
		SellingPrice:   req.SellingPrice,
		TaxRate:        req.TaxRate,
		Quantity:       req.Quantity,
		MinStock:       req.MinStock,
		TrackInventory: track,
		Active:         true,
		Metadata:       metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateSKU
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Product{}, domain.ErrInvalidOwner
	}

	productID, err := s.parseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, ownerID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.ListProductResponse{}, domain.ErrInvalidOwner
	}

	filter := domain.ListProductFilter{
		SKU:      strings.TrimSpace(req.SKU),
		Name:     strings.TrimSpace(req.Name),
		LowStock: req.LowStock,
	}

	items, size, err := s.repo.List(ctx, s.db, ownerID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, size, func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        product.ID.String(),
			CreatedAt: product.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	resp := domain.ListProductResponse{Products: products}
	if pageInfo != nil {
		resp.NextPageToken = pageInfo.NextPageToken
		resp.HasMore = pageInfo.HasMore
	}
	return resp, nil
}

// SetLevel replaces on-hand quantity. No-op for untracked products.
func (s *Service) SetLevel(ctx context.Context, req domain.SetStockRequest) (domain.Product, error) {
	if req.Quantity < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}
	return s.mutateStock(ctx, req.ProductID, func(product *domain.Product) error {
		product.Quantity = req.Quantity
		return nil
	})
}

// Adjust applies a signed delta, clamped at zero. No-op for untracked products.
func (s *Service) Adjust(ctx context.Context, req domain.AdjustStockRequest) (domain.Product, error) {
	return s.mutateStock(ctx, req.ProductID, func(product *domain.Product) error {
		product.Quantity += req.Delta
		if product.Quantity < 0 {
			product.Quantity = 0
		}
		return nil
	})
}

func (s *Service) mutateStock(ctx context.Context, id string, mutate func(*domain.Product) error) (domain.Product, error) {
	ownerID, ok := ownerctx.OwnerIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return domain.Product{}, domain.ErrInvalidOwner
	}

	productID, err := s.parseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	var result domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.repo.LockByIDs(ctx, tx, ownerID, []snowflake.ID{productID})
		if err != nil {
			return err
		}
		product, ok := products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if !product.TrackInventory {
			result = *product
			return nil
		}
		if err := mutate(product); err != nil {
			return err
		}
		if err := s.repo.UpdateQuantity(ctx, tx, ownerID, productID, product.Quantity); err != nil {
			return err
		}
		result = *product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return result, nil
}

// Reserve implements domain.Ledger.
func (s *Service) Reserve(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, lines []domain.ReserveLine) (map[snowflake.ID]*domain.Product, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	ids := make([]snowflake.ID, 0, len(lines))
	want := make(map[snowflake.ID]int64, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		ids = append(ids, line.ProductID)
		want[line.ProductID] += line.Quantity
	}

	products, err := s.repo.LockByIDs(ctx, tx, ownerID, ids)
	if err != nil {
		return nil, err
	}

	for id, qty := range want {
		product, ok := products[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if !product.TrackInventory {
			continue
		}
		if product.Quantity < qty {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordStockRejection(product.SKU)
			}
			s.log.Warn("insufficient stock",
				zap.String("sku", product.SKU),
				zap.Int64("on_hand", product.Quantity),
				zap.Int64("requested", qty),
			)
			return nil, domain.ErrInsufficientStock
		}
	}

	for id, qty := range want {
		product := products[id]
		if !product.TrackInventory {
			continue
		}
		product.Quantity -= qty
		if err := s.repo.UpdateQuantity(ctx, tx, ownerID, id, product.Quantity); err != nil {
			return nil, err
		}
	}

	return products, nil
}

// Restore implements domain.Ledger.
func (s *Service) Restore(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, lines []domain.ReserveLine) error {
	if ownerID == 0 {
		return domain.ErrInvalidOwner
	}

	ids := make([]snowflake.ID, 0, len(lines))
	want := make(map[snowflake.ID]int64, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		ids = append(ids, line.ProductID)
		want[line.ProductID] += line.Quantity
	}

	products, err := s.repo.LockByIDs(ctx, tx, ownerID, ids)
	if err != nil {
		return err
	}

	for id, qty := range want {
		product, ok := products[id]
		if !ok {
			// Product deleted since the order was placed; nothing to restore.
			continue
		}
		if !product.TrackInventory {
			continue
		}
		product.Quantity += qty
		if err := s.repo.UpdateQuantity(ctx, tx, ownerID, id, product.Quantity); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
