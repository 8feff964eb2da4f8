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

func TestDeriveParentName(t *testing.T) {
	tests := []struct {
		name    string
		variant string
		want    string
	}{
		{"dash size color", "Zapatilla Runner - 42 Negro", "Zapatilla Runner"},
		{"dot size marker", "Remera Basica T.M Azul", "Remera Basica"},
		{"spelled size marker", "Pantalon Cargo Talle 40", "Pantalon Cargo"},
		{"spelled size with color", "Pantalon Cargo Talle 40 Verde", "Pantalon Cargo"},
		{"bare trailing size", "Short Deportivo 38", "Short Deportivo"},
		{"no suffix", "Gorra Trucker", "Gorra Trucker"},
		{"stripping would empty", "42 Negro", "42 Negro"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveParentName(tt.variant))
		})
	}
}

func TestHierarchyResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	variantRow := func(externalID int64) *catalog.Product {
		categoryID := uuid.New()
		return &catalog.Product{
			ID:         uuid.New(),
			TenantID:   tenantID,
			ExternalID: externalID,
			CategoryID: &categoryID,
			BasePrice:  decimal.NewFromInt(100),
			BaseCost:   decimal.NewFromInt(60),
			TaxRate:    decimal.NewFromInt(21),
		}
	}

	t.Run("synthesizes a virtual parent the source never sent", func(t *testing.T) {
		v1 := variantRow(501)
		v2 := variantRow(502)

		products := new(MockProductRepository)
		products.On("FindByExternalID", mock.Anything, tenantID, int64(500)).
			Return(nil, catalog.ErrProductNotFound)
		products.On("FindByExternalID", mock.Anything, tenantID, int64(501)).Return(v1, nil)

		var parent *catalog.Product
		products.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			parent = args.Get(1).(*catalog.Product)
		})
		products.On("FindByExternalIDs", mock.Anything, tenantID, []int64{501, 502}).
			Return([]catalog.Product{*v1, *v2}, nil)
		products.On("AssignParent", mock.Anything, tenantID, mock.Anything, []uuid.UUID{v1.ID, v2.ID}).
			Return(nil)

		resolver := NewHierarchyResolver(products, zap.NewNop())
		synthesized, err := resolver.Resolve(ctx, tenantID, []integration.ExternalProduct{
			{ID: 501, ParentID: 500, Description: "Zapatilla Runner - 42 Negro"},
			{ID: 502, ParentID: 500, Description: "Zapatilla Runner - 43 Negro"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, synthesized)
		assert.NotNil(t, parent)
		assert.Equal(t, int64(500), parent.ExternalID)
		assert.Equal(t, "Zapatilla Runner", parent.Name)
		assert.True(t, parent.IsParent)
		assert.True(t, parent.IsVirtualParent)
		assert.True(t, parent.IsActive)
		// attributes copied from the first variant seen
		assert.Equal(t, v1.CategoryID, parent.CategoryID)
		assert.True(t, parent.BasePrice.Equal(v1.BasePrice))
		products.AssertCalled(t, "AssignParent", mock.Anything, tenantID, parent.ID, []uuid.UUID{v1.ID, v2.ID})
	})

	t.Run("uses an existing product as the parent, flagging it", func(t *testing.T) {
		existing := variantRow(500)
		v1 := variantRow(501)

		products := new(MockProductRepository)
		products.On("FindByExternalID", mock.Anything, tenantID, int64(500)).Return(existing, nil)
		products.On("MarkParent", mock.Anything, tenantID, existing.ID).Return(nil)
		products.On("FindByExternalIDs", mock.Anything, tenantID, []int64{501}).
			Return([]catalog.Product{*v1}, nil)
		products.On("AssignParent", mock.Anything, tenantID, existing.ID, []uuid.UUID{v1.ID}).Return(nil)

		resolver := NewHierarchyResolver(products, zap.NewNop())
		synthesized, err := resolver.Resolve(ctx, tenantID, []integration.ExternalProduct{
			{ID: 501, ParentID: 500, Description: "Zapatilla Runner - 42 Negro"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, synthesized)
		products.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		products.AssertCalled(t, "MarkParent", mock.Anything, tenantID, existing.ID)
	})

	t.Run("products without a parent reference are left alone", func(t *testing.T) {
		products := new(MockProductRepository)

		resolver := NewHierarchyResolver(products, zap.NewNop())
		synthesized, err := resolver.Resolve(ctx, tenantID, []integration.ExternalProduct{
			{ID: 600, Description: "Gorra Trucker"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, synthesized)
		products.AssertNotCalled(t, "AssignParent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
