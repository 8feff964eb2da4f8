package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

// BrandSyncer reconciles ERP brands.
type BrandSyncer struct {
	brands catalog.BrandRepository
	logger *zap.Logger
}

// NewBrandSyncer creates the brand reconciler.
func NewBrandSyncer(brands catalog.BrandRepository, logger *zap.Logger) *BrandSyncer {
	return &BrandSyncer{brands: brands, logger: logger}
}

// Sync upserts every ERP brand and returns how many were processed.
func (s *BrandSyncer) Sync(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (int, error) {
	records, err := gw.ListBrands(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		brand := &catalog.Brand{
			ID:         uuid.New(),
			TenantID:   tenantID,
			ExternalID: rec.ID,
			Name:       brandName(rec),
		}
		if err := s.brands.Upsert(ctx, brand); err != nil {
			return 0, fmt.Errorf("brand %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}

func brandName(rec integration.ExternalBrand) string {
	if rec.Description != "" {
		return rec.Description
	}
	return fmt.Sprintf("Brand %d", rec.ID)
}
