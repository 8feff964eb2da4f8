package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultPriceListExternalID is the ERP's conventional ID for the default
// price list.
const DefaultPriceListExternalID = 0

// PriceList is a named set of product prices synced from the ERP.
type PriceList struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ExternalID int64
	Name       string
	Currency   string
	IsDefault  bool
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PriceListRepository persists price lists keyed by (tenant, external ID).
type PriceListRepository interface {
	// FindByExternalID returns ErrPriceListNotFound on a miss.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*PriceList, error)

	// Upsert creates or updates by the (tenant, external ID) compound key
	// and populates the internal ID on the given entity.
	Upsert(ctx context.Context, list *PriceList) error

	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
