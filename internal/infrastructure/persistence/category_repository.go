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

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByExternalID finds a category by its ERP identifier
func (r *GormCategoryRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates or updates a category by its (tenant, external ID) key
func (r *GormCategoryRepository) Upsert(ctx context.Context, category *catalog.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(category)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "parent_id", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return err
	}

	var persisted models.CategoryModel
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND external_id = ?", category.TenantID, category.ExternalID).
		Take(&persisted).Error; err != nil {
		return err
	}
	category.ID = persisted.ID
	return nil
}

// CountByTenant counts the tenant's categories
func (r *GormCategoryRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
