package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

// CategorySyncer reconciles ERP categories. Records are written in
// ascending parent id order so that every parent exists before any child
// that references it; the ERP assigns parent categories lower ids than
// their children.
type CategorySyncer struct {
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewCategorySyncer creates the category reconciler.
func NewCategorySyncer(categories catalog.CategoryRepository, logger *zap.Logger) *CategorySyncer {
	return &CategorySyncer{categories: categories, logger: logger}
}

// Sync upserts every ERP category and returns how many were processed.
func (s *CategorySyncer) Sync(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (int, error) {
	records, err := gw.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ParentID < records[j].ParentID
	})

	for _, rec := range records {
		parentID, err := s.resolveParent(ctx, tenantID, rec.ParentID)
		if err != nil {
			return 0, fmt.Errorf("category %d: %w", rec.ID, err)
		}
		category := &catalog.Category{
			ID:         uuid.New(),
			TenantID:   tenantID,
			ExternalID: rec.ID,
			Name:       categoryName(rec),
			ParentID:   parentID,
		}
		if err := s.categories.Upsert(ctx, category); err != nil {
			return 0, fmt.Errorf("category %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}

// resolveParent maps an external parent id to the internal category id. A
// zero id means no parent; a missing parent yields nil rather than an
// error, and a later run self-heals the link.
func (s *CategorySyncer) resolveParent(ctx context.Context, tenantID uuid.UUID, parentExternalID int64) (*uuid.UUID, error) {
	if parentExternalID == 0 {
		return nil, nil
	}
	parent, err := s.categories.FindByExternalID(ctx, tenantID, parentExternalID)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			s.logger.Debug("Parent category not synced yet, leaving reference unset",
				zap.String("tenant_id", tenantID.String()),
				zap.Int64("parent_external_id", parentExternalID),
			)
			return nil, nil
		}
		return nil, err
	}
	return &parent.ID, nil
}

func categoryName(rec integration.ExternalCategory) string {
	if rec.Description != "" {
		return rec.Description
	}
	return fmt.Sprintf("Category %d", rec.ID)
}
