package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Branch is a physical store location. A branch may predate the ERP
// integration, in which case ExternalID is nil until the auto-matcher
// attaches one; once assigned the external ID is immutable.
type Branch struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ExternalID *int64
	Code       string
	Name       string
	Address    string
	City       string
	Province   string
	Phone      string
	IsDefault  bool
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBranch creates an active branch for a tenant.
func NewBranch(tenantID uuid.UUID, name string) *Branch {
	now := time.Now()
	return &Branch{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AttachExternalID permanently binds an ERP branch ID to this branch.
func (b *Branch) AttachExternalID(externalID int64) error {
	if b.ExternalID != nil {
		if *b.ExternalID == externalID {
			return nil
		}
		return ErrExternalIDAssigned
	}
	b.ExternalID = &externalID
	b.UpdatedAt = time.Now()
	return nil
}

// BranchRepository persists branches, implicitly scoped by tenant ID.
type BranchRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Branch, error)

	// FindByExternalID returns ErrBranchNotFound on a miss.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Branch, error)

	// FindUnlinked returns the tenant's branches with no external ID
	// assigned yet, the auto-matcher's candidate pool.
	FindUnlinked(ctx context.Context, tenantID uuid.UUID) ([]Branch, error)

	Create(ctx context.Context, branch *Branch) error
	Update(ctx context.Context, branch *Branch) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
