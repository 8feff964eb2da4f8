package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

// ProductSyncer reconciles ERP products in two passes: first every record is
// upserted flat with its prices and stock, then the hierarchy resolver links
// variants to their parents, synthesizing parents the ERP never sent.
type ProductSyncer struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	brands     catalog.BrandRepository
	priceLists catalog.PriceListRepository
	branches   *BranchSyncer
	hierarchy  *HierarchyResolver
	logger     *zap.Logger
}

// NewProductSyncer creates the product reconciler.
func NewProductSyncer(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	brands catalog.BrandRepository,
	priceLists catalog.PriceListRepository,
	branches *BranchSyncer,
	logger *zap.Logger,
) *ProductSyncer {
	return &ProductSyncer{
		products:   products,
		categories: categories,
		brands:     brands,
		priceLists: priceLists,
		branches:   branches,
		hierarchy:  NewHierarchyResolver(products, logger),
		logger:     logger,
	}
}

// Sync reconciles the full ERP product catalog and returns how many records
// were processed.
func (s *ProductSyncer) Sync(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (int, error) {
	records, err := gw.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	return s.reconcile(ctx, tenantID, records)
}

// SyncByIDs reconciles just the given products, fetched in batches. It is
// the path webhook events take; hierarchy resolution is restricted to the
// parent groups the affected products belong to.
func (s *ProductSyncer) SyncByIDs(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID, externalIDs []int64) (int, error) {
	total := 0
	for _, batch := range chunkIDs(externalIDs, integration.MaxBatchIDs) {
		records, err := gw.ListProductsByIDs(ctx, batch)
		if err != nil {
			return total, err
		}
		n, err := s.reconcile(ctx, tenantID, records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Deactivate soft-deletes a product; the row and its history stay.
func (s *ProductSyncer) Deactivate(ctx context.Context, tenantID uuid.UUID, externalID int64) error {
	err := s.products.Deactivate(ctx, tenantID, externalID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		s.logger.Warn("Deactivation requested for unknown product",
			zap.String("tenant_id", tenantID.String()),
			zap.Int64("external_id", externalID),
		)
		return nil
	}
	return err
}

func (s *ProductSyncer) reconcile(ctx context.Context, tenantID uuid.UUID, records []integration.ExternalProduct) (int, error) {
	for _, rec := range records {
		if err := s.upsertRecord(ctx, tenantID, rec); err != nil {
			return 0, fmt.Errorf("product %d: %w", rec.ID, err)
		}
	}
	if _, err := s.hierarchy.Resolve(ctx, tenantID, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *ProductSyncer) upsertRecord(ctx context.Context, tenantID uuid.UUID, rec integration.ExternalProduct) error {
	categoryID, err := s.resolveCategory(ctx, tenantID, rec.CategoryID)
	if err != nil {
		return err
	}
	brandID, err := s.resolveBrand(ctx, tenantID, rec.BrandID)
	if err != nil {
		return err
	}
	parentID, err := s.resolveParent(ctx, tenantID, rec.ParentID)
	if err != nil {
		return err
	}

	product := &catalog.Product{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ExternalID: rec.ID,
		Barcode:    rec.Barcode,
		Name:       productName(rec),
		CategoryID: categoryID,
		BrandID:    brandID,
		BasePrice:  rec.Price,
		BaseCost:   rec.Cost,
		TaxRate:    catalog.NormalizeTaxRate(rec.VAT),
		IsActive:   integration.IsActive(rec.Active),
		ParentID:   parentID,
		Size:       rec.Size,
		Color:      rec.Color,
		RawPayload: string(rec.Raw),
	}
	if rec.Code != "" {
		product.SKU = &rec.Code
	}
	if err := s.products.Upsert(ctx, product); err != nil {
		return err
	}

	for _, pr := range rec.Prices {
		if err := s.upsertPrice(ctx, tenantID, product.ID, pr); err != nil {
			return err
		}
	}
	for _, st := range rec.Stocks {
		if err := s.upsertStock(ctx, tenantID, product.ID, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductSyncer) upsertPrice(ctx context.Context, tenantID, productID uuid.UUID, pr integration.ExternalPrice) error {
	list, err := s.priceLists.FindByExternalID(ctx, tenantID, pr.PriceListID)
	if err != nil {
		if errors.Is(err, catalog.ErrPriceListNotFound) {
			s.logger.Debug("Price references an unsynced price list, skipping",
				zap.String("tenant_id", tenantID.String()),
				zap.Int64("price_list_external_id", pr.PriceListID),
			)
			return nil
		}
		return err
	}
	return s.products.UpsertPrice(ctx, &catalog.ProductPrice{
		ID:          uuid.New(),
		ProductID:   productID,
		PriceListID: list.ID,
		Price:       pr.Price,
		NetPrice:    pr.Net,
		Cost:        pr.Cost,
	})
}

func (s *ProductSyncer) upsertStock(ctx context.Context, tenantID, productID uuid.UUID, st integration.ExternalStock) error {
	branch, err := s.branches.ResolveID(ctx, tenantID, st.BranchID)
	if err != nil {
		return err
	}
	return s.products.UpsertStock(ctx, &catalog.ProductStock{
		ID:        uuid.New(),
		ProductID: productID,
		BranchID:  branch.ID,
		Quantity:  st.Quantity,
		Reserved:  st.Reserved,
		Available: catalog.AvailableStock(st.Quantity, st.Reserved, st.Available),
	})
}

func (s *ProductSyncer) resolveCategory(ctx context.Context, tenantID uuid.UUID, externalID int64) (*uuid.UUID, error) {
	if externalID == 0 {
		return nil, nil
	}
	category, err := s.categories.FindByExternalID(ctx, tenantID, externalID)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category.ID, nil
}

func (s *ProductSyncer) resolveBrand(ctx context.Context, tenantID uuid.UUID, externalID int64) (*uuid.UUID, error) {
	if externalID == 0 {
		return nil, nil
	}
	brand, err := s.brands.FindByExternalID(ctx, tenantID, externalID)
	if err != nil {
		if errors.Is(err, catalog.ErrBrandNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand.ID, nil
}

// resolveParent links a variant to an already-synced parent. A miss is
// normal; the hierarchy pass creates the parent and assigns the link.
func (s *ProductSyncer) resolveParent(ctx context.Context, tenantID uuid.UUID, externalID int64) (*uuid.UUID, error) {
	if externalID == 0 {
		return nil, nil
	}
	parent, err := s.products.FindByExternalID(ctx, tenantID, externalID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &parent.ID, nil
}

func productName(rec integration.ExternalProduct) string {
	if rec.Description != "" {
		return rec.Description
	}
	return fmt.Sprintf("Product %d", rec.ID)
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]int64
	for size < len(ids) {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
