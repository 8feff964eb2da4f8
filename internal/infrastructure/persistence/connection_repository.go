package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailpos/backend/internal/domain/integration"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
)

// GormConnectionRepository implements ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindByTenant finds the ERP connection for a tenant
func (r *GormConnectionRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*integration.Connection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).First(&model, "tenant_id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllActive finds every active connection across tenants
func (r *GormConnectionRepository) FindAllActive(ctx context.Context) ([]integration.Connection, error) {
	var connectionModels []models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("tenant_id ASC").
		Find(&connectionModels).Error; err != nil {
		return nil, err
	}

	connections := make([]integration.Connection, len(connectionModels))
	for i, model := range connectionModels {
		connections[i] = *model.ToDomain()
	}
	return connections, nil
}

// Save creates or updates a connection, keyed by tenant
func (r *GormConnectionRepository) Save(ctx context.Context, conn *integration.Connection) error {
	model := models.ConnectionModelFromDomain(conn)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Ensure GormConnectionRepository implements ConnectionRepository
var _ integration.ConnectionRepository = (*GormConnectionRepository)(nil)
