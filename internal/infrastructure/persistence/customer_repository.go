package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByExternalID finds a customer by its ERP identifier
func (r *GormCustomerRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates or updates a customer by its (tenant, external ID) key
func (r *GormCustomerRepository) Upsert(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"type", "tax_id", "tax_type", "tax_category", "name",
				"email", "phone", "address", "price_list_id",
				"credit_limit", "credit_balance", "payment_term_days",
				"global_discount", "is_active", "updated_at",
			}),
		}).
		Create(model).Error; err != nil {
		return err
	}

	var persisted models.CustomerModel
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("tenant_id = ? AND external_id = ?", customer.TenantID, customer.ExternalID).
		Take(&persisted).Error; err != nil {
		return err
	}
	customer.ID = persisted.ID
	return nil
}

// CountByTenant counts the tenant's customers
func (r *GormCustomerRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
