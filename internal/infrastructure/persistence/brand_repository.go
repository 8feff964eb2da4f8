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

// GormBrandRepository implements BrandRepository using GORM
type GormBrandRepository struct {
	db *gorm.DB
}

// NewGormBrandRepository creates a new GormBrandRepository
func NewGormBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// FindByExternalID finds a brand by its ERP identifier
func (r *GormBrandRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Brand, error) {
	var model models.BrandModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBrandNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates or updates a brand by its (tenant, external ID) key
func (r *GormBrandRepository) Upsert(ctx context.Context, brand *catalog.Brand) error {
	model := &models.BrandModel{}
	model.FromDomain(brand)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return err
	}

	var persisted models.BrandModel
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND external_id = ?", brand.TenantID, brand.ExternalID).
		Take(&persisted).Error; err != nil {
		return err
	}
	brand.ID = persisted.ID
	return nil
}

// CountByTenant counts the tenant's brands
func (r *GormBrandRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BrandModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormBrandRepository implements BrandRepository
var _ catalog.BrandRepository = (*GormBrandRepository)(nil)
