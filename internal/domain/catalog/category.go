package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a product category. The hierarchy is single-level-of-
// indirection self-referential; a parent is always written before any child
// that references it, so ParentID either resolves or stays nil.
type Category struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ExternalID int64
	Name       string
	ParentID   *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CategoryRepository persists categories keyed by (tenant, external ID).
type CategoryRepository interface {
	// FindByExternalID returns ErrCategoryNotFound on a miss.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Category, error)

	Upsert(ctx context.Context, category *Category) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// Brand is a product brand.
type Brand struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ExternalID int64
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BrandRepository persists brands keyed by (tenant, external ID).
type BrandRepository interface {
	// FindByExternalID returns ErrBrandNotFound on a miss.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Brand, error)

	Upsert(ctx context.Context, brand *Brand) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
