package integration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

// HierarchyResolver links variant products to their parents. The ERP only
// expresses the style/variant hierarchy through parent id back-references on
// variants; the parent may never arrive as a record of its own, in which
// case a virtual parent is synthesized from the first variant seen.
type HierarchyResolver struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewHierarchyResolver creates the resolver.
func NewHierarchyResolver(products catalog.ProductRepository, logger *zap.Logger) *HierarchyResolver {
	return &HierarchyResolver{products: products, logger: logger}
}

// Resolve groups the batch's variants by parent external id, ensures a
// parent row exists for every group and bulk-assigns the variants to it. It
// returns how many virtual parents were synthesized. Only groups touched by
// the batch are visited, so webhook-driven partial syncs stay cheap.
func (r *HierarchyResolver) Resolve(ctx context.Context, tenantID uuid.UUID, records []integration.ExternalProduct) (int, error) {
	groups := map[int64][]int64{}
	representative := map[int64]integration.ExternalProduct{}
	for _, rec := range records {
		if rec.ParentID == 0 {
			continue
		}
		groups[rec.ParentID] = append(groups[rec.ParentID], rec.ID)
		if _, ok := representative[rec.ParentID]; !ok {
			representative[rec.ParentID] = rec
		}
	}

	parentIDs := make([]int64, 0, len(groups))
	for id := range groups {
		parentIDs = append(parentIDs, id)
	}
	sort.Slice(parentIDs, func(i, j int) bool { return parentIDs[i] < parentIDs[j] })

	synthesized := 0
	for _, parentExternalID := range parentIDs {
		parent, created, err := r.ensureParent(ctx, tenantID, parentExternalID, representative[parentExternalID])
		if err != nil {
			return synthesized, fmt.Errorf("parent %d: %w", parentExternalID, err)
		}
		if created {
			synthesized++
		}
		if err := r.assignVariants(ctx, tenantID, parent.ID, groups[parentExternalID]); err != nil {
			return synthesized, fmt.Errorf("parent %d: %w", parentExternalID, err)
		}
	}
	return synthesized, nil
}

// ensureParent returns the parent product for a group, synthesizing a
// virtual parent from the representative variant when the ERP never sent
// one. An existing product that was not yet flagged as a parent gets the
// flag set.
func (r *HierarchyResolver) ensureParent(ctx context.Context, tenantID uuid.UUID, externalID int64, variant integration.ExternalProduct) (*catalog.Product, bool, error) {
	parent, err := r.products.FindByExternalID(ctx, tenantID, externalID)
	if err == nil {
		if !parent.IsParent {
			if err := r.products.MarkParent(ctx, tenantID, parent.ID); err != nil {
				return nil, false, err
			}
			parent.IsParent = true
		}
		return parent, false, nil
	}
	if !errors.Is(err, catalog.ErrProductNotFound) {
		return nil, false, err
	}

	// The variant's own row carries the resolved category/brand references,
	// so read it back rather than re-resolving from the wire record.
	source, err := r.products.FindByExternalID(ctx, tenantID, variant.ID)
	if err != nil {
		return nil, false, err
	}

	parent = &catalog.Product{
		ID:              uuid.New(),
		TenantID:        tenantID,
		ExternalID:      externalID,
		Name:            DeriveParentName(variant.Description),
		CategoryID:      source.CategoryID,
		BrandID:         source.BrandID,
		BasePrice:       source.BasePrice,
		BaseCost:        source.BaseCost,
		TaxRate:         source.TaxRate,
		IsActive:        true,
		IsParent:        true,
		IsVirtualParent: true,
	}
	if parent.Name == "" {
		parent.Name = fmt.Sprintf("Product %d", externalID)
	}
	if err := r.products.Upsert(ctx, parent); err != nil {
		return nil, false, err
	}
	r.logger.Info("Synthesized virtual parent product",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("external_id", externalID),
		zap.String("name", parent.Name),
	)
	return parent, true, nil
}

func (r *HierarchyResolver) assignVariants(ctx context.Context, tenantID, parentID uuid.UUID, variantExternalIDs []int64) error {
	variants, err := r.products.FindByExternalIDs(ctx, tenantID, variantExternalIDs)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(variants))
	for i := range variants {
		ids = append(ids, variants[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return r.products.AssignParent(ctx, tenantID, parentID, ids)
}

// Variant names typically append the size and color to the style name, in a
// handful of formats seen in practice. Each pattern strips one such suffix.
var variantSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`\s*-\s*\d+(\.\d+)?\s+\S.*$`),        // "Zapatilla Runner - 42 Negro"
	regexp.MustCompile(`(?i)\s+T\.\s*\S+(\s+\S+)*$`),        // "Remera Basica T.M Azul"
	regexp.MustCompile(`(?i)\s+Talle\s+\S+(\s+\S+)*$`),      // "Pantalon Cargo Talle 40"
	regexp.MustCompile(`\s+\d+(\.\d+)?$`),                   // "Short Deportivo 38"
}

// DeriveParentName strips a trailing size/color suffix from a variant name
// to produce the style name. When no pattern applies, or stripping would
// empty the name, the variant name is returned as is.
func DeriveParentName(variantName string) string {
	name := strings.TrimSpace(variantName)
	for _, re := range variantSuffixes {
		loc := re.FindStringIndex(name)
		if loc == nil || loc[0] == 0 {
			continue
		}
		if stripped := strings.TrimSpace(name[:loc[0]]); stripped != "" {
			return stripped
		}
	}
	return name
}
