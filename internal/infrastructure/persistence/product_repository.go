package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// FindByID finds a product by its ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a product by its ERP identifier
func (r *GormProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalIDs finds the subset of products that exist for the given ERP identifiers
func (r *GormProductRepository) FindByExternalIDs(ctx context.Context, tenantID uuid.UUID, externalIDs []int64) ([]catalog.Product, error) {
	if len(externalIDs) == 0 {
		return []catalog.Product{}, nil
	}

	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id IN ?", tenantID, externalIDs).
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(productModels))
	for i, model := range productModels {
		products[i] = *model.ToDomain()
	}
	return products, nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Upsert creates or updates a product by its (tenant, external ID) key.
// The conflict update set deliberately excludes is_parent and parent_id,
// which are managed by MarkParent and AssignParent so that a routine re-sync
// never flattens an established hierarchy. is_virtual_parent IS included:
// synced records always carry false, so a real record arriving with the id
// of a synthesized parent adopts that row.
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	model := &models.ProductModel{}
	model.FromDomain(product)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sku", "barcode", "name", "category_id", "brand_id",
				"base_price", "base_cost", "tax_rate", "is_active",
				"is_virtual_parent", "size", "color", "raw_payload", "updated_at",
			}),
		}).
		Create(model).Error; err != nil {
		return err
	}

	var persisted models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND external_id = ?", product.TenantID, product.ExternalID).
		Take(&persisted).Error; err != nil {
		return err
	}
	product.ID = persisted.ID
	return nil
}

// UpsertPrice creates or updates a per-list price by its (product, price list) key
func (r *GormProductRepository) UpsertPrice(ctx context.Context, price *catalog.ProductPrice) error {
	model := &models.ProductPriceModel{}
	model.FromDomain(price)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "price_list_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "net_price", "cost", "updated_at"}),
		}).
		Create(model).Error
}

// UpsertStock creates or updates per-branch stock by its (product, branch) key
func (r *GormProductRepository) UpsertStock(ctx context.Context, stock *catalog.ProductStock) error {
	model := &models.ProductStockModel{}
	model.FromDomain(stock)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "branch_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "reserved", "available", "updated_at"}),
		}).
		Create(model).Error
}

// AssignParent sets the parent reference on every listed variant in one statement
func (r *GormProductRepository) AssignParent(ctx context.Context, tenantID, parentID uuid.UUID, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id IN ?", tenantID, variantIDs).
		Updates(map[string]any{
			"parent_id":  parentID,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

// MarkParent flags a product as a parent
func (r *GormProductRepository) MarkParent(ctx context.Context, tenantID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(map[string]any{
			"is_parent":  true,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// Deactivate sets is_active=false; rows are never removed
func (r *GormProductRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, externalID int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// CountByTenant counts the tenant's products
func (r *GormProductRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
