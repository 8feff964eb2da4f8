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

// GormPriceListRepository implements PriceListRepository using GORM
type GormPriceListRepository struct {
	db *gorm.DB
}

// NewGormPriceListRepository creates a new GormPriceListRepository
func NewGormPriceListRepository(db *gorm.DB) *GormPriceListRepository {
	return &GormPriceListRepository{db: db}
}

// FindByExternalID finds a price list by its ERP identifier
func (r *GormPriceListRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.PriceList, error) {
	var model models.PriceListModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrPriceListNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates or updates a price list by its (tenant, external ID) key
func (r *GormPriceListRepository) Upsert(ctx context.Context, list *catalog.PriceList) error {
	model := &models.PriceListModel{}
	model.FromDomain(list)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "currency", "is_default", "is_active", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return err
	}

	// On conflict the pre-existing row keeps its ID, so read it back.
	var persisted models.PriceListModel
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND external_id = ?", list.TenantID, list.ExternalID).
		Take(&persisted).Error; err != nil {
		return err
	}
	list.ID = persisted.ID
	return nil
}

// CountByTenant counts the tenant's price lists
func (r *GormPriceListRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PriceListModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPriceListRepository implements PriceListRepository
var _ catalog.PriceListRepository = (*GormPriceListRepository)(nil)
