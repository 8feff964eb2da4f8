package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

// PriceListSyncer reconciles ERP price lists, keyed by tenant and external
// id.
type PriceListSyncer struct {
	priceLists catalog.PriceListRepository
	logger     *zap.Logger
}

// NewPriceListSyncer creates the price list reconciler.
func NewPriceListSyncer(priceLists catalog.PriceListRepository, logger *zap.Logger) *PriceListSyncer {
	return &PriceListSyncer{priceLists: priceLists, logger: logger}
}

// Sync upserts every ERP price list and returns how many were processed.
func (s *PriceListSyncer) Sync(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (int, error) {
	records, err := gw.ListPriceLists(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		list := &catalog.PriceList{
			ID:         uuid.New(),
			TenantID:   tenantID,
			ExternalID: rec.ID,
			Name:       priceListName(rec),
			Currency:   rec.Currency,
			IsDefault:  rec.Default,
			IsActive:   integration.IsActive(rec.Active),
		}
		if err := s.priceLists.Upsert(ctx, list); err != nil {
			return 0, fmt.Errorf("price list %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}

func priceListName(rec integration.ExternalPriceList) string {
	if rec.Description != "" {
		return rec.Description
	}
	return fmt.Sprintf("Price list %d", rec.ID)
}
