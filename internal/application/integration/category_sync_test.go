package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

func TestCategorySyncer_Sync(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("writes parents before the children that reference them", func(t *testing.T) {
		// Children arrive before their parents; the syncer must reorder.
		gw := new(MockGateway)
		gw.On("ListCategories", mock.Anything).Return([]integration.ExternalCategory{
			{ID: 30, Description: "Zapatillas", ParentID: 10},
			{ID: 10, Description: "Calzado"},
			{ID: 31, Description: "Botas", ParentID: 10},
		}, nil)

		var order []int64
		parent := &catalog.Category{ID: uuid.New(), TenantID: tenantID, ExternalID: 10, Name: "Calzado"}

		categories := new(MockCategoryRepository)
		categories.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			order = append(order, args.Get(1).(*catalog.Category).ExternalID)
		})
		categories.On("FindByExternalID", mock.Anything, tenantID, int64(10)).Return(parent, nil)

		syncer := NewCategorySyncer(categories, zap.NewNop())
		count, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Equal(t, []int64{10, 30, 31}, order)
	})

	t.Run("missing parent leaves the reference unset", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCategories", mock.Anything).Return([]integration.ExternalCategory{
			{ID: 40, Description: "Huerfana", ParentID: 999},
		}, nil)

		categories := new(MockCategoryRepository)
		categories.On("FindByExternalID", mock.Anything, tenantID, int64(999)).
			Return(nil, catalog.ErrCategoryNotFound)
		var got *catalog.Category
		categories.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			got = args.Get(1).(*catalog.Category)
		})

		syncer := NewCategorySyncer(categories, zap.NewNop())
		_, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		assert.Nil(t, got.ParentID)
	})

	t.Run("resolves the parent reference when the parent exists", func(t *testing.T) {
		parent := &catalog.Category{ID: uuid.New(), TenantID: tenantID, ExternalID: 10, Name: "Calzado"}

		gw := new(MockGateway)
		gw.On("ListCategories", mock.Anything).Return([]integration.ExternalCategory{
			{ID: 30, Description: "Zapatillas", ParentID: 10},
		}, nil)

		categories := new(MockCategoryRepository)
		categories.On("FindByExternalID", mock.Anything, tenantID, int64(10)).Return(parent, nil)
		var got *catalog.Category
		categories.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			got = args.Get(1).(*catalog.Category)
		})

		syncer := NewCategorySyncer(categories, zap.NewNop())
		_, err := syncer.Sync(ctx, gw, tenantID)

		assert.NoError(t, err)
		assert.NotNil(t, got.ParentID)
		assert.Equal(t, parent.ID, *got.ParentID)
	})
}
