package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

func newProductSyncer(products *MockProductRepository, categories *MockCategoryRepository, brands *MockBrandRepository, priceLists *MockPriceListRepository, branches *MockBranchRepository) *ProductSyncer {
	logger := zap.NewNop()
	return NewProductSyncer(products, categories, brands, priceLists, NewBranchSyncer(branches, logger), logger)
}

func TestProductSyncer_Sync(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("maps a record with references, prices and stock", func(t *testing.T) {
		category := &catalog.Category{ID: uuid.New(), TenantID: tenantID, ExternalID: 10}
		brand := &catalog.Brand{ID: uuid.New(), TenantID: tenantID, ExternalID: 3}
		list := &catalog.PriceList{ID: uuid.New(), TenantID: tenantID, ExternalID: 0, IsDefault: true}
		branch := catalog.NewBranch(tenantID, "Casa Central")
		assert.NoError(t, branch.AttachExternalID(1))

		gw := new(MockGateway)
		gw.On("ListProducts", mock.Anything).Return([]integration.ExternalProduct{
			{
				ID:          600,
				Code:        "SKU-600",
				Description: "Gorra Trucker",
				CategoryID:  10,
				BrandID:     3,
				Price:       decimal.NewFromInt(150),
				Cost:        decimal.NewFromInt(90),
				VAT:         decimal.RequireFromString("1.21"),
				Prices: []integration.ExternalPrice{
					{PriceListID: 0, Price: decimal.NewFromInt(150)},
				},
				Stocks: []integration.ExternalStock{
					{BranchID: 1, Quantity: decimal.NewFromInt(12), Reserved: decimal.NewFromInt(2)},
				},
			},
		}, nil)

		categories := new(MockCategoryRepository)
		categories.On("FindByExternalID", mock.Anything, tenantID, int64(10)).Return(category, nil)
		brands := new(MockBrandRepository)
		brands.On("FindByExternalID", mock.Anything, tenantID, int64(3)).Return(brand, nil)
		priceLists := new(MockPriceListRepository)
		priceLists.On("FindByExternalID", mock.Anything, tenantID, int64(0)).Return(list, nil)
		branches := new(MockBranchRepository)
		branches.On("FindByExternalID", mock.Anything, tenantID, int64(1)).Return(branch, nil)

		products := new(MockProductRepository)
		var row *catalog.Product
		products.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			row = args.Get(1).(*catalog.Product)
		})
		var price *catalog.ProductPrice
		products.On("UpsertPrice", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			price = args.Get(1).(*catalog.ProductPrice)
		})
		var stock *catalog.ProductStock
		products.On("UpsertStock", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			stock = args.Get(1).(*catalog.ProductStock)
		})

		syncer := newProductSyncer(products, categories, brands, priceLists, branches)
		count, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, "Gorra Trucker", row.Name)
		assert.Equal(t, "SKU-600", *row.SKU)
		assert.Equal(t, category.ID, *row.CategoryID)
		assert.Equal(t, brand.ID, *row.BrandID)
		assert.True(t, row.TaxRate.Equal(decimal.RequireFromString("21")))
		assert.True(t, row.IsActive)

		assert.Equal(t, list.ID, price.PriceListID)
		assert.Equal(t, branch.ID, stock.BranchID)
		assert.True(t, stock.Available.Equal(decimal.NewFromInt(10)))
	})

	t.Run("missing references resolve to nil, not an error", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListProducts", mock.Anything).Return([]integration.ExternalProduct{
			{ID: 601, CategoryID: 999, BrandID: 998},
		}, nil)

		categories := new(MockCategoryRepository)
		categories.On("FindByExternalID", mock.Anything, tenantID, int64(999)).Return(nil, catalog.ErrCategoryNotFound)
		brands := new(MockBrandRepository)
		brands.On("FindByExternalID", mock.Anything, tenantID, int64(998)).Return(nil, catalog.ErrBrandNotFound)
		priceLists := new(MockPriceListRepository)
		branches := new(MockBranchRepository)

		products := new(MockProductRepository)
		var row *catalog.Product
		products.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			row = args.Get(1).(*catalog.Product)
		})

		syncer := newProductSyncer(products, categories, brands, priceLists, branches)
		_, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		assert.Nil(t, row.CategoryID)
		assert.Nil(t, row.BrandID)
		assert.Nil(t, row.SKU)
		assert.Equal(t, "Product 601", row.Name)
		// absent tax defaults to 21 percent
		assert.True(t, row.TaxRate.Equal(decimal.NewFromInt(21)))
	})

	t.Run("a price on an unsynced list is skipped", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListProducts", mock.Anything).Return([]integration.ExternalProduct{
			{ID: 602, Description: "Short Deportivo", Prices: []integration.ExternalPrice{
				{PriceListID: 77, Price: decimal.NewFromInt(80)},
			}},
		}, nil)

		categories := new(MockCategoryRepository)
		brands := new(MockBrandRepository)
		priceLists := new(MockPriceListRepository)
		priceLists.On("FindByExternalID", mock.Anything, tenantID, int64(77)).Return(nil, catalog.ErrPriceListNotFound)
		branches := new(MockBranchRepository)

		products := new(MockProductRepository)
		products.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		syncer := newProductSyncer(products, categories, brands, priceLists, branches)
		_, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		products.AssertNotCalled(t, "UpsertPrice", mock.Anything, mock.Anything)
	})

	t.Run("stock for an unknown branch auto-creates it", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListProducts", mock.Anything).Return([]integration.ExternalProduct{
			{ID: 603, Description: "Medias Pack x3", Stocks: []integration.ExternalStock{
				{BranchID: 4, Quantity: decimal.NewFromInt(50), Reserved: decimal.Zero},
			}},
		}, nil)

		categories := new(MockCategoryRepository)
		brands := new(MockBrandRepository)
		priceLists := new(MockPriceListRepository)
		branches := new(MockBranchRepository)
		branches.On("FindByExternalID", mock.Anything, tenantID, int64(4)).Return(nil, catalog.ErrBranchNotFound)
		branches.On("FindUnlinked", mock.Anything, tenantID).Return([]catalog.Branch{}, nil)
		var created *catalog.Branch
		branches.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			created = args.Get(1).(*catalog.Branch)
		})

		products := new(MockProductRepository)
		products.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		products.On("UpsertStock", mock.Anything, mock.Anything).Return(nil)

		syncer := newProductSyncer(products, categories, brands, priceLists, branches)
		_, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "Branch 4", created.Name)
	})
}

func TestProductSyncer_Deactivate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("tolerates an unknown product", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("Deactivate", mock.Anything, tenantID, int64(700)).Return(catalog.ErrProductNotFound)

		syncer := newProductSyncer(products, new(MockCategoryRepository), new(MockBrandRepository), new(MockPriceListRepository), new(MockBranchRepository))
		assert.NoError(t, syncer.Deactivate(context.Background(), tenantID, 700))
	})
}

func TestChunkIDs(t *testing.T) {
	ids := make([]int64, 450)
	for i := range ids {
		ids[i] = int64(i)
	}
	chunks := chunkIDs(ids, integration.MaxBatchIDs)

	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 200)
	assert.Len(t, chunks[1], 200)
	assert.Len(t, chunks[2], 50)
	assert.Nil(t, chunkIDs(nil, integration.MaxBatchIDs))
}
