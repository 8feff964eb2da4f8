package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
)

// GormBranchRepository implements BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by its ID within a tenant
func (r *GormBranchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Branch, error) {
	var model models.BranchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBranchNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a branch by its ERP identifier
func (r *GormBranchRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Branch, error) {
	var model models.BranchModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBranchNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnlinked finds the tenant's branches with no ERP identifier assigned
func (r *GormBranchRepository) FindUnlinked(ctx context.Context, tenantID uuid.UUID) ([]catalog.Branch, error) {
	var branchModels []models.BranchModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id IS NULL", tenantID).
		Order("created_at ASC").
		Find(&branchModels).Error; err != nil {
		return nil, err
	}

	branches := make([]catalog.Branch, len(branchModels))
	for i, model := range branchModels {
		branches[i] = *model.ToDomain()
	}
	return branches, nil
}

// Create inserts a new branch
func (r *GormBranchRepository) Create(ctx context.Context, branch *catalog.Branch) error {
	model := models.BranchModelFromDomain(branch)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing branch
func (r *GormBranchRepository) Update(ctx context.Context, branch *catalog.Branch) error {
	model := models.BranchModelFromDomain(branch)
	result := r.db.WithContext(ctx).
		Model(&models.BranchModel{}).
		Where("id = ? AND tenant_id = ?", branch.ID, branch.TenantID).
		Select("*").Omit("id", "tenant_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrBranchNotFound
	}
	return nil
}

// CountByTenant counts the tenant's branches
func (r *GormBranchRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BranchModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormBranchRepository implements BranchRepository
var _ catalog.BranchRepository = (*GormBranchRepository)(nil)
